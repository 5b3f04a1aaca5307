// Package mcp serves the MealWheel function catalog as an MCP server, so
// MCP-capable clients can call the same functions the dish picker offers
// its chat model.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"mealwheel/config"
	"mealwheel/functions"
	"mealwheel/model"
)

const ServerName = "mealwheel"

// NewServer registers every catalog function of dispatcher as an MCP tool.
func NewServer(dispatcher *functions.Dispatcher, version string) *server.MCPServer {
	s := server.NewMCPServer(ServerName, version, server.WithToolCapabilities(false))

	for _, tool := range dispatcher.Catalog().Tools() {
		s.AddTool(tool, toolHandler(dispatcher, tool.Name))
	}

	return s
}

// ServeStdio runs the server on stdin/stdout until the client disconnects.
func ServeStdio(dispatcher *functions.Dispatcher, version string) error {
	if config.DebugLog != nil {
		config.DebugLog.Printf("[MCP] Serving %d tools over stdio", dispatcher.Catalog().Len())
	}
	return server.ServeStdio(NewServer(dispatcher, version))
}

// toolHandler adapts Dispatch to an MCP tool call. Function failures are
// reported as tool errors (IsError) so the client sees the message; only a
// request we can't encode is a protocol error.
func toolHandler(dispatcher *functions.Dispatcher, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
		args, err := json.Marshal(request.GetArguments())
		if err != nil {
			return nil, fmt.Errorf("failed to encode arguments for %s: %w", name, err)
		}

		res, err := dispatcher.Dispatch(ctx, model.FunctionCall{Name: name, Arguments: string(args)})
		if err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[MCP] %s failed: %v", name, err)
			}
			return mcptypes.NewToolResultError(err.Error()), nil
		}

		return mcptypes.NewToolResultText(res.Content), nil
	}
}
