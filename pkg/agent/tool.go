// Package agent defines the skill contract shared by every action-group function:
// a static descriptor (schemas, permissions) and a single Invoke operation that
// turns a flat parameter map into a JSON-serializable result or a compact error.
package agent

import (
	"context"
)

// ToolPermission describes a capability a tool requires.
// Example: network:outbound, secret:amadeus
type ToolPermission struct {
	// Name is a stable, lower_snake identifier of the permission.
	Name string `json:"name"`
	// Description explains what the permission allows.
	Description string `json:"description,omitempty"`
}

// ToolDescriptor declares the static interface of a tool.
// InputSchema and OutputSchema are JSON Schemas (draft 2020-12) in UTF-8 bytes.
type ToolDescriptor struct {
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	InputSchema  []byte           `json:"input_schema"`
	OutputSchema []byte           `json:"output_schema"`
	Permissions  []ToolPermission `json:"permissions,omitempty"`
}

// Call carries everything one invocation hands to a tool.
type Call struct {
	Args Args
	// Credentials are supplied by the caller per invocation (e.g. CLIENT_ID, CLIENT_SECRET).
	Credentials map[string]string
}

// Tool defines a callable unit with schema-validated inputs/outputs and a permission model.
type Tool interface {
	// Describe returns the public descriptor (schemas, permissions).
	Describe() ToolDescriptor
	// Invoke executes the tool. The result must be JSON-serializable and conform to
	// OutputSchema; failures should be *errmodel.Error so callers can map a status.
	Invoke(ctx context.Context, call Call) (any, error)
}

// DescribeTool is a helper to get a ToolDescriptor from a Tool (nil-safe).
func DescribeTool(t Tool) ToolDescriptor {
	if t == nil {
		return ToolDescriptor{}
	}
	return t.Describe()
}
