// Package policy provides an optional Rego gate evaluated before a
// memory is stored. Deny rules under data.memory reject the record
// with human-readable reasons, e.g. to keep secrets or disallowed
// categories out of long-term storage.
package policy

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/open-policy-agent/opa/v1/rego"
)

// ErrDenied indicates the policy rejected the memory
var ErrDenied = goerr.New("memory rejected by policy")

// Gate evaluates store requests against Rego policies. A zero-value
// Gate (no policies loaded) allows everything.
type Gate struct {
	query *rego.PreparedEvalQuery
}

// New loads all Rego files from policyDir and prepares the data.memory
// query. An empty policyDir or a directory without .rego files yields
// a gate that allows everything.
func New(ctx context.Context, policyDir string) (*Gate, error) {
	if policyDir == "" {
		return &Gate{}, nil
	}

	files, err := filepath.Glob(filepath.Join(policyDir, "*.rego"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to glob policy files")
	}
	if len(files) == 0 {
		return &Gate{}, nil
	}

	options := make([]func(*rego.Rego), 0, len(files)+1)
	options = append(options, rego.Query("data.memory"))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", file))
		}
		options = append(options, rego.Module(file, string(data)))
	}

	prepared, err := rego.New(options...).PrepareForEval(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare policy query")
	}

	return &Gate{query: &prepared}, nil
}

// Check evaluates the policy against the memory data. It returns
// ErrDenied with the deny reasons if any deny rule matches.
func (g *Gate) Check(ctx context.Context, data *model.MemoryData) error {
	if g == nil || g.query == nil {
		return nil
	}

	input, err := toInput(data)
	if err != nil {
		return err
	}

	rs, err := g.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return goerr.Wrap(err, "failed to evaluate memory policy")
	}

	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return nil
	}

	result, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return nil
	}

	denyData, ok := result["deny"]
	if !ok {
		return nil
	}

	denies, ok := denyData.([]any)
	if !ok || len(denies) == 0 {
		return nil
	}

	reasons := make([]string, 0, len(denies))
	for _, d := range denies {
		if s, ok := d.(string); ok {
			reasons = append(reasons, s)
		}
	}

	return goerr.Wrap(ErrDenied, "store request denied", goerr.V("reasons", reasons))
}

// toInput converts the memory data to the generic JSON structure that
// Rego evaluates, so policies see the persisted field names.
func toInput(data *model.MemoryData) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal policy input")
	}

	var input map[string]any
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal policy input")
	}
	return input, nil
}
