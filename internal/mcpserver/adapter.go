package mcpserver

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Adapter bridges toolsets and the MCP server.
// Single responsibility: adapt toolset capabilities to MCP registration.
type Adapter struct {
	toolsets  []Toolset
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

func NewAdapter(toolsets []Toolset, mcpServer *server.MCPServer, logger *slog.Logger) *Adapter {
	return &Adapter{
		toolsets:  toolsets,
		mcpServer: mcpServer,
		logger:    logger,
	}
}

// RegisterAll registers every capability of every toolset with the MCP server.
func (a *Adapter) RegisterAll(ctx context.Context) error {
	for _, ts := range a.toolsets {
		if err := a.registerToolset(ctx, ts); err != nil {
			return err
		}
	}
	a.logger.Info("All toolsets registered", "count", len(a.toolsets))
	return nil
}

func (a *Adapter) registerToolset(ctx context.Context, ts Toolset) error {
	if provider, ok := ts.(ToolProvider); ok {
		tools, err := provider.GetTools(ctx)
		if err != nil {
			a.logger.Error("Failed to get tools from toolset",
				"toolset", ts.ID(), "error", err)
			return err
		}
		for _, tool := range tools {
			a.mcpServer.AddTool(tool.Builder(), tool.Handler)
			a.logger.Debug("Tool registered", "toolset", ts.ID(), "tool", tool.Name)
		}
	}

	if provider, ok := ts.(ResourceProvider); ok {
		resources, err := provider.GetResources(ctx)
		if err != nil {
			a.logger.Error("Failed to get resources from toolset",
				"toolset", ts.ID(), "error", err)
			return err
		}
		for _, resource := range resources {
			mcpResource := mcp.NewResource(
				resource.URI,
				resource.Name,
				mcp.WithResourceDescription(resource.Description),
				mcp.WithMIMEType(resource.MIMEType),
			)
			a.mcpServer.AddResource(mcpResource, resource.Handler)
			a.logger.Debug("Resource registered",
				"toolset", ts.ID(), "resource", resource.Name, "uri", resource.URI)
		}
	}

	if provider, ok := ts.(PromptProvider); ok {
		prompts, err := provider.GetPrompts(ctx)
		if err != nil {
			a.logger.Error("Failed to get prompts from toolset",
				"toolset", ts.ID(), "error", err)
			return err
		}
		for _, prompt := range prompts {
			a.mcpServer.AddPrompt(prompt.Builder(), prompt.Handler)
			a.logger.Debug("Prompt registered", "toolset", ts.ID(), "prompt", prompt.Name)
		}
	}

	return nil
}
