// Package mcp serves the primitive catalog as MCP tools.
package mcp

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"interpagent/internal/logging"
	"interpagent/internal/tools"
)

// ServerName is reported to MCP clients.
const ServerName = "interpagent"

const serverInstructions = "Each tool forwards to one interpreter built-in. " +
	"Results are the interpreter representation of the return value; failures carry the exception text."

// Server exposes catalog entries over MCP.
type Server struct {
	registry  *tools.Registry
	mcpServer *sdk.Server
	names     []string
}

// NewServer registers one MCP tool per name. Every name must be in the
// registry.
func NewServer(registry *tools.Registry, names []string, version string) (*Server, error) {
	defs, err := registry.Definitions(names)
	if err != nil {
		return nil, fmt.Errorf("build tool definitions: %w", err)
	}

	s := &Server{
		registry: registry,
		names:    names,
		mcpServer: sdk.NewServer(&sdk.Implementation{Name: ServerName, Version: version}, &sdk.ServerOptions{
			Instructions: serverInstructions,
		}),
	}
	for _, d := range defs {
		tool := registry.Get(d.Name)
		s.mcpServer.AddTool(&sdk.Tool{
			Name:        d.Name,
			Description: d.Description + "\n\n" + d.Name + tool.Signature.String(),
			InputSchema: d.Schema,
		}, s.handler(d.Name))
	}
	logging.MCP("MCP server ready: %d tools", len(defs))
	return s, nil
}

// Names returns the served tool names in registration order.
func (s *Server) Names() []string {
	return append([]string(nil), s.names...)
}

// handler forwards a call to the registry. Tool failures become error
// results so the client sees the exception text.
func (s *Server) handler(name string) sdk.ToolHandler {
	return func(ctx context.Context, req *sdk.CallToolRequest) (*sdk.CallToolResult, error) {
		var raw []byte
		if req != nil && req.Params != nil {
			raw = req.Params.Arguments
		}
		logging.MCPDebug("tools/call %s args=%s", name, string(raw))

		res, err := s.registry.ExecuteJSON(ctx, name, raw)
		if err != nil {
			return &sdk.CallToolResult{
				IsError: true,
				Content: []sdk.Content{&sdk.TextContent{Text: err.Error()}},
			}, nil
		}
		return &sdk.CallToolResult{
			Content: []sdk.Content{&sdk.TextContent{Text: res.Text()}},
		}, nil
	}
}

// Run serves on transport until the client disconnects or ctx ends.
func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// ServeStdio serves on the process's standard input and output.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Run(ctx, &sdk.StdioTransport{})
}
