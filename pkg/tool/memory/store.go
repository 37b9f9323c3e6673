// Package memory exposes the memory store operations as LLM-callable
// tools: store one fact, search by natural-language query, and delete
// everything for the current user.
package memory

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/engram/pkg/tool"
	"github.com/m-mizutani/engram/pkg/usecase/memory"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

// DefaultImportance is used when a store request does not specify one
const DefaultImportance = 0.5

// DefaultCategory is used when a store request does not specify one
const DefaultCategory = "general"

type storeMemoryInput struct {
	Content    string   `json:"content"`
	Category   string   `json:"category"`
	Importance *float64 `json:"importance"`
	Topics     []string `json:"topics"`
}

// Store is the store_memory tool
type Store struct {
	uc      *memory.UseCase
	userKey string
}

// NewStore creates a new store_memory tool bound to a user namespace
func NewStore(uc *memory.UseCase, userKey string) *Store {
	return &Store{uc: uc, userKey: userKey}
}

// Flags returns CLI flags for this tool
func (x *Store) Flags() []cli.Flag {
	return nil
}

// Prompt returns additional information to be added to the system prompt
func (x *Store) Prompt(ctx context.Context) string {
	return `When the user shares personal details, preferences, goals, plans, or any fact worth remembering, store it with the store_memory tool. Do not ask permission; store one specific, concise fact per call.`
}

// StoreSchema returns the JSON Schema of the store_memory arguments
func StoreSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"content": {
				Type:        "string",
				Description: "The memory content to store. Should be a clear, concise fact about the user.",
			},
			"category": {
				Type:        "string",
				Description: "Category of the info (e.g., 'preferences', 'personal_info', 'goals', 'plans', 'context')",
			},
			"importance": {
				Type:        "number",
				Description: "Importance score between 0 and 1. Higher means more important to remember.",
			},
			"topics": {
				Type:        "array",
				Items:       &jsonschema.Schema{Type: "string"},
				Description: "Related topics or tags for the memory",
			},
		},
		Required: []string{"content"},
	}
}

// Spec returns the tool specification for Gemini function calling
func (x *Store) Spec() (*genai.Tool, error) {
	params, err := tool.ConvertSchema(StoreSchema())
	if err != nil {
		return nil, err
	}

	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "store_memory",
				Description: "Store important information about the user in long-term memory. Store ONE fact per call. Be specific and concise in content.",
				Parameters:  params,
			},
		},
	}, nil
}

// Execute runs the tool with the given function call
func (x *Store) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	paramsJSON, err := json.Marshal(fc.Args)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal function arguments")
	}

	var input storeMemoryInput
	if err := json.Unmarshal(paramsJSON, &input); err != nil {
		return nil, goerr.Wrap(err, "failed to parse input parameters")
	}

	if input.Category == "" {
		input.Category = DefaultCategory
	}
	importance := DefaultImportance
	if input.Importance != nil {
		importance = *input.Importance
	}

	result, err := x.uc.Add(ctx, x.userKey, memory.AddInput{
		Content:    input.Content,
		Importance: importance,
		Category:   input.Category,
		Topics:     input.Topics,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store memory")
	}

	return &genai.FunctionResponse{
		Name:     fc.Name,
		Response: map[string]any{"result": result},
	}, nil
}
