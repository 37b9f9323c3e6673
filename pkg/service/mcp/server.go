// Package mcp serves the memory store operations over the Model
// Context Protocol, so any MCP-capable agent can store, search, and
// delete the user's long-term memories.
package mcp

import (
	"context"

	"github.com/google/uuid"
	memtool "github.com/m-mizutani/engram/pkg/tool/memory"
	"github.com/m-mizutani/engram/pkg/usecase/memory"
	"github.com/m-mizutani/engram/pkg/utils/logging"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type storeMemoryParams struct {
	Content    string   `json:"content"`
	Category   string   `json:"category,omitempty"`
	Importance *float64 `json:"importance,omitempty"`
	Topics     []string `json:"topics,omitempty"`
}

type searchMemoryParams struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

type deleteMemoryParams struct{}

// Server is an MCP stdio server bound to one user namespace
type Server struct {
	server  *mcp.Server
	uc      *memory.UseCase
	userKey string
}

// New creates a new MCP server exposing store_memory, search_memory
// and delete_all_memories for the given user namespace
func New(uc *memory.UseCase, userKey string) *Server {
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "engram",
			Version: "1.0.0",
		}, nil),
		uc:      uc,
		userKey: userKey,
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "store_memory",
		Description: "Store important information about the user in long-term memory. Store one specific, concise fact per call.",
		InputSchema: memtool.StoreSchema(),
	}, s.storeMemory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_memory",
		Description: "Search long-term memory for information about the user using a semantic, natural-language query.",
		InputSchema: memtool.SearchSchema(),
	}, s.searchMemory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_all_memories",
		Description: "Permanently delete ALL stored memories about the user. This action cannot be undone.",
		InputSchema: memtool.DeleteSchema(),
	}, s.deleteAllMemories)

	return s
}

// Run serves MCP over stdio until the context is canceled or the
// client disconnects
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// withRequestLogger tags every tool invocation with a request ID so
// concurrent calls can be told apart in the logs
func (s *Server) withRequestLogger(ctx context.Context, toolName string) context.Context {
	logger := logging.From(ctx).With(
		"request_id", uuid.NewString(),
		"tool", toolName,
	)
	return logging.With(ctx, logger)
}

func (s *Server) storeMemory(ctx context.Context, req *mcp.CallToolRequest, params *storeMemoryParams) (*mcp.CallToolResult, any, error) {
	ctx = s.withRequestLogger(ctx, "store_memory")

	category := params.Category
	if category == "" {
		category = memtool.DefaultCategory
	}
	importance := memtool.DefaultImportance
	if params.Importance != nil {
		importance = *params.Importance
	}

	result, err := s.uc.Add(ctx, s.userKey, memory.AddInput{
		Content:    params.Content,
		Importance: importance,
		Category:   category,
		Topics:     params.Topics,
	})
	if err != nil {
		return nil, nil, err
	}

	return textResult(result), nil, nil
}

func (s *Server) searchMemory(ctx context.Context, req *mcp.CallToolRequest, params *searchMemoryParams) (*mcp.CallToolResult, any, error) {
	ctx = s.withRequestLogger(ctx, "search_memory")

	results, err := s.uc.Search(ctx, s.userKey, params.Query, memtool.ClampTopK(params.TopK))
	if err != nil {
		return nil, nil, err
	}

	return textResult(memtool.FormatResults(results)), nil, nil
}

func (s *Server) deleteAllMemories(ctx context.Context, req *mcp.CallToolRequest, params *deleteMemoryParams) (*mcp.CallToolResult, any, error) {
	ctx = s.withRequestLogger(ctx, "delete_all_memories")

	result, err := s.uc.DeleteAll(ctx, s.userKey)
	if err != nil {
		return nil, nil, err
	}

	return textResult(result), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
