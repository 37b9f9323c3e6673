package memory

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/engram/pkg/tool"
	"github.com/m-mizutani/engram/pkg/usecase/memory"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

// Delete is the delete_all_memories tool
type Delete struct {
	uc      *memory.UseCase
	userKey string
}

// NewDelete creates a new delete_all_memories tool bound to a user namespace
func NewDelete(uc *memory.UseCase, userKey string) *Delete {
	return &Delete{uc: uc, userKey: userKey}
}

// Flags returns CLI flags for this tool
func (x *Delete) Flags() []cli.Flag {
	return nil
}

// Prompt returns additional information to be added to the system prompt
func (x *Delete) Prompt(ctx context.Context) string {
	return `Only call delete_all_memories when the user explicitly asks to delete their memories or clear their data, and confirm with the user first. The deletion cannot be undone.`
}

// DeleteSchema returns the JSON Schema of the delete_all_memories
// arguments. The tool takes no parameters.
func DeleteSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{},
	}
}

// Spec returns the tool specification for Gemini function calling
func (x *Delete) Spec() (*genai.Tool, error) {
	params, err := tool.ConvertSchema(DeleteSchema())
	if err != nil {
		return nil, err
	}

	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "delete_all_memories",
				Description: "Permanently delete ALL stored memories about the user. This action cannot be undone.",
				Parameters:  params,
			},
		},
	}, nil
}

// Execute runs the tool with the given function call
func (x *Delete) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	result, err := x.uc.DeleteAll(ctx, x.userKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to delete memories")
	}

	return &genai.FunctionResponse{
		Name:     fc.Name,
		Response: map[string]any{"result": result},
	}, nil
}
