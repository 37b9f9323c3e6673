package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/tool"
	"github.com/m-mizutani/engram/pkg/usecase/memory"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

// MaxTopK bounds the result count a search request may ask for
const MaxTopK = 20

type searchMemoryInput struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// Search is the search_memory tool
type Search struct {
	uc      *memory.UseCase
	userKey string
}

// NewSearch creates a new search_memory tool bound to a user namespace
func NewSearch(uc *memory.UseCase, userKey string) *Search {
	return &Search{uc: uc, userKey: userKey}
}

// Flags returns CLI flags for this tool
func (x *Search) Flags() []cli.Flag {
	return nil
}

// Prompt returns additional information to be added to the system prompt
func (x *Search) Prompt(ctx context.Context) string {
	return `Before answering questions that may relate to stored user information (name, location, job, preferences, goals), search long-term memory with the search_memory tool. The search is semantic, so use natural language queries.`
}

// SearchSchema returns the JSON Schema of the search_memory arguments
func SearchSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query": {
				Type:        "string",
				Description: "The search query. Can be a question or keywords to find relevant memories.",
			},
			"top_k": {
				Type:        "integer",
				Description: "Number of most relevant memories to return (1-20, default 5).",
			},
		},
		Required: []string{"query"},
	}
}

// Spec returns the tool specification for Gemini function calling
func (x *Search) Spec() (*genai.Tool, error) {
	params, err := tool.ConvertSchema(SearchSchema())
	if err != nil {
		return nil, err
	}

	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "search_memory",
				Description: "Search long-term memory for information about the user using a semantic, natural-language query.",
				Parameters:  params,
			},
		},
	}, nil
}

// Execute runs the tool with the given function call
func (x *Search) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	paramsJSON, err := json.Marshal(fc.Args)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal function arguments")
	}

	var input searchMemoryInput
	if err := json.Unmarshal(paramsJSON, &input); err != nil {
		return nil, goerr.Wrap(err, "failed to parse input parameters")
	}

	results, err := x.uc.Search(ctx, x.userKey, input.Query, ClampTopK(input.TopK))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search memories")
	}

	return &genai.FunctionResponse{
		Name:     fc.Name,
		Response: map[string]any{"result": FormatResults(results)},
	}, nil
}

// ClampTopK normalizes a requested result count to the valid range:
// non-positive falls back to the default, larger values are capped.
func ClampTopK(topK int) int {
	if topK <= 0 {
		return memory.DefaultTopK
	}
	if topK > MaxTopK {
		return MaxTopK
	}
	return topK
}

// FormatResults renders search results as a markdown list for LLM and
// human consumption
func FormatResults(results []*model.MemoryData) string {
	if len(results) == 0 {
		return "No memories found."
	}

	lines := []string{"**Found memories:**", ""}
	for i, data := range results {
		lines = append(lines, fmt.Sprintf("%d. **%s**", i+1, data.Content))
		lines = append(lines, fmt.Sprintf("   - Category: %s", data.Category))
		if len(data.Topics) > 0 {
			lines = append(lines, fmt.Sprintf("   - Topics: %s", strings.Join(data.Topics, ", ")))
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
