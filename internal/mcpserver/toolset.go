package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Toolset is a named bundle of MCP capabilities the assistant can use.
type Toolset interface {
	ID() string
	Name() string
	Description() string
}

// ResourceProvider defines toolsets that expose resources
type ResourceProvider interface {
	Toolset
	GetResources(ctx context.Context) ([]Resource, error)
}

// ToolProvider defines toolsets that expose tools
type ToolProvider interface {
	Toolset
	GetTools(ctx context.Context) ([]Tool, error)
}

// PromptProvider defines toolsets that expose prompts
type PromptProvider interface {
	Toolset
	GetPrompts(ctx context.Context) ([]Prompt, error)
}

// Resource represents a readable resource capability
type Resource struct {
	URI         string
	Name        string
	Description string
	MIMEType    string
	Handler     ResourceHandler
}

// Tool represents a callable tool capability
type Tool struct {
	Name        string
	Description string
	Builder     func() mcp.Tool
	Handler     ToolHandler
}

// Prompt represents a prompt capability
type Prompt struct {
	Name        string
	Description string
	Builder     func() mcp.Prompt
	Handler     PromptHandler
}

// Handler type aliases - properly reference MCP server types
type ResourceHandler = server.ResourceHandlerFunc
type ToolHandler = server.ToolHandlerFunc
type PromptHandler = server.PromptHandlerFunc
