package mcp_test

import (
	"testing"

	"github.com/m-mizutani/engram/pkg/service/mcp"
	"github.com/m-mizutani/gt"
)

func TestNewRegistersTools(t *testing.T) {
	// Duplicate tool registration or a malformed input schema would
	// panic inside the SDK at construction time.
	server := mcp.New(nil, "alice")
	gt.NotNil(t, server)
}
