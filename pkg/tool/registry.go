package tool

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

var errToolNotFound = goerr.New("tool not found")

// Registry manages available tools for the LLM
type Registry struct {
	tools    map[string]Tool
	allTools []Tool
	specs    []*genai.Tool
}

// New creates a new tool registry with the given tools
func New(tools ...Tool) (*Registry, error) {
	r := &Registry{
		tools:    make(map[string]Tool),
		allTools: tools,
	}

	for _, t := range tools {
		spec, err := t.Spec()
		if err != nil {
			return nil, err
		}
		if spec == nil || len(spec.FunctionDeclarations) == 0 {
			continue
		}

		r.specs = append(r.specs, spec)
		for _, fd := range spec.FunctionDeclarations {
			if _, exists := r.tools[fd.Name]; exists {
				return nil, goerr.New("duplicated tool name", goerr.V("name", fd.Name))
			}
			r.tools[fd.Name] = t
		}
	}

	return r, nil
}

// Specs returns all tool specifications for Gemini function calling
func (r *Registry) Specs() []*genai.Tool {
	return r.specs
}

// Prompts returns all tool prompts concatenated
func (r *Registry) Prompts(ctx context.Context) string {
	var prompts []string
	for _, t := range r.allTools {
		if prompt := t.Prompt(ctx); prompt != "" {
			prompts = append(prompts, prompt)
		}
	}
	return strings.Join(prompts, "\n\n")
}

// Flags returns all tool flags combined
func (r *Registry) Flags() []cli.Flag {
	var flags []cli.Flag
	for _, t := range r.allTools {
		if toolFlags := t.Flags(); toolFlags != nil {
			flags = append(flags, toolFlags...)
		}
	}
	return flags
}

// Execute runs the tool with the given function call
func (r *Registry) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	tool, ok := r.tools[fc.Name]
	if !ok {
		return nil, goerr.Wrap(errToolNotFound, "unknown function call", goerr.V("name", fc.Name))
	}

	return tool.Execute(ctx, fc)
}
