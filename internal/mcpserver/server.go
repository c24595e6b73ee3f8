package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/fx"

	"github.com/certsentry/certsentry/pkg/config"
)

// NewMCPServerInstance creates the MCP server the assistant connects to.
func NewMCPServerInstance(logger *slog.Logger) *server.MCPServer {
	logger.Debug("Creating MCP server instance")
	version := "dev"
	return server.NewMCPServer(
		"Certsentry Diagnostics",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
		server.WithPromptCapabilities(true),
	)
}

// registerServerHooks uses fx.Hook to manage the server's lifecycle.
func registerServerHooks(lc fx.Lifecycle, cfg *config.ServerConfig, mcpServer *server.MCPServer, adapter *Adapter, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := adapter.RegisterAll(ctx); err != nil {
				return fmt.Errorf("failed to register toolsets: %w", err)
			}

			switch cfg.Transport.Type {
			case "sse":
				logger.Info("Starting MCP server with 'sse' transport.")
				sseServer := server.NewSSEServer(mcpServer)
				go func() {
					addr := fmt.Sprintf("%s:%d", cfg.Transport.Host, cfg.Transport.Port)
					logger.Info("SSE server listening", "address", addr)
					if err := sseServer.Start(addr); err != nil && err != http.ErrServerClosed {
						logger.Error("SSE server failed", "error", err)
					}
				}()
			case "stdio":
				logger.Info("Starting MCP server with 'stdio' transport.")
				go func() {
					if err := server.ServeStdio(mcpServer); err != nil {
						logger.Error("Stdio server failed", "error", err)
					}
				}()
			default:
				return fmt.Errorf("unknown transport type: %s", cfg.Transport.Type)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("MCP server shutdown.")
			return nil
		},
	})
}

var Module = fx.Module("mcpserver",
	fx.Provide(
		NewMCPServerInstance,
		fx.Annotate(
			NewAdapter,
			fx.ParamTags(`group:"toolsets"`),
		),
	),
	fx.Invoke(registerServerHooks),
)
