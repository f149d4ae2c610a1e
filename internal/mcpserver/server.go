// Package mcpserver exposes a tool registry over the Model Context Protocol,
// so other agents can call rmk's tools through the same dispatcher the agent
// loop uses.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rootagent/rmk/internal/logging"
	"github.com/rootagent/rmk/internal/tools"
)

const serverName = "rmk"

// Server wraps an MCP server whose tools are the registry's tools.
type Server struct {
	mcp        *server.MCPServer
	dispatcher *tools.Dispatcher
	log        *logging.Logger
}

// New registers every tool of registry in order.
func New(registry *tools.Registry, version string) (*Server, error) {
	s := &Server{
		mcp: server.NewMCPServer(
			serverName,
			version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
		),
		dispatcher: tools.NewDispatcher(registry),
		log:        logging.Global().WithPrefix("mcp"),
	}

	for _, def := range registry.GetDefinitions() {
		schema, err := json.Marshal(def.Parameters)
		if err != nil {
			return nil, err
		}
		s.mcp.AddTool(mcp.NewToolWithRawSchema(def.Name, def.Description, schema), s.handler(def.Name))
	}
	return s, nil
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ServeStdio serves requests on stdin/stdout until the input closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		s.log.Debug("tool call", logging.ToolName(name), logging.Preview("args", string(args)))

		result, failed := s.dispatcher.ExecuteDetailed(ctx, name, string(args))
		if failed {
			return mcp.NewToolResultError(result), nil
		}
		return mcp.NewToolResultText(result), nil
	}
}
