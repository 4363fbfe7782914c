// Package mcpserver exports the registered skills as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wilhg/actionskills/pkg/actiongroup"
	"github.com/wilhg/actionskills/pkg/agent"
)

// Server wraps an MCP server whose tools dispatch through an actiongroup.Dispatcher,
// so permission checks, schema validation, metrics and the journal all apply.
type Server struct {
	srv         *mcp.Server
	d           *actiongroup.Dispatcher
	name        string
	version     string
	actionGroup string
}

type Option func(*Server)

// WithImplementation overrides the name/version reported during initialization.
func WithImplementation(name, version string) Option {
	return func(s *Server) { s.name, s.version = name, version }
}

// WithActionGroup sets the action group recorded for MCP invocations.
func WithActionGroup(group string) Option { return func(s *Server) { s.actionGroup = group } }

// New creates the server and registers every skill known to d.
func New(d *actiongroup.Dispatcher, opts ...Option) (*Server, error) {
	s := &Server{d: d, name: "actionskills", version: "dev", actionGroup: "mcp"}
	for _, o := range opts {
		o(s)
	}
	s.srv = mcp.NewServer(&mcp.Implementation{Name: s.name, Version: s.version}, nil)

	var regErr error
	d.Registry().Range(func(name string, t agent.Tool) {
		if regErr != nil {
			return
		}
		desc := t.Describe()
		schema, err := inputSchema(desc.InputSchema)
		if err != nil {
			regErr = fmt.Errorf("tool %q: %w", name, err)
			return
		}
		s.srv.AddTool(&mcp.Tool{
			Name:        desc.Name,
			Description: desc.Description,
			InputSchema: schema,
		}, s.handler(desc.Name))
	})
	if regErr != nil {
		return nil, regErr
	}
	return s, nil
}

// MCP returns the underlying SDK server (in-memory transports in tests).
func (s *Server) MCP() *mcp.Server { return s.srv }

// Run serves over stdin/stdout until the client disconnects or ctx ends.
func (s *Server) Run(ctx context.Context) error {
	return s.srv.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) handler(function string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var raw json.RawMessage
		if req != nil && req.Params != nil {
			raw = req.Params.Arguments
		}
		args, err := actiongroup.ParseArgs(raw)
		if err != nil {
			return textResult(actiongroup.FailureEnvelope{StatusCode: 400, Error: "Invalid arguments: " + err.Error()}, true)
		}
		out := s.d.Execute(ctx, actiongroup.Invocation{Function: function, ActionGroup: s.actionGroup, Args: args})
		if out.Err != nil {
			return textResult(actiongroup.FailureEnvelope{StatusCode: out.Status, Error: out.Err.Message}, true)
		}
		return textResult(out.Value, false)
	}
}

func textResult(v any, isError bool) (*mcp.CallToolResult, error) {
	b, err := actiongroup.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
		IsError: isError,
	}, nil
}

// inputSchema converts descriptor bytes; MCP requires an object schema.
func inputSchema(b []byte) (*jsonschema.Schema, error) {
	if len(b) == 0 {
		return &jsonschema.Schema{Type: "object"}, nil
	}
	var sch jsonschema.Schema
	if err := json.Unmarshal(b, &sch); err != nil {
		return nil, fmt.Errorf("input schema: %w", err)
	}
	if sch.Type != "object" {
		return nil, fmt.Errorf("input schema must have type object, got %q", sch.Type)
	}
	return &sch, nil
}
