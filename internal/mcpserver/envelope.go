package mcpserver

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// ToolStatus represents the high-level status of a tool call
type ToolStatus string

const (
	ToolStatusOK    ToolStatus = "ok"
	ToolStatusError ToolStatus = "error"
)

// ToolResponse is the canonical envelope returned by tools
type ToolResponse struct {
	Status  ToolStatus `json:"status"`
	Code    string     `json:"code,omitempty"`
	Message string     `json:"message,omitempty"`
	Data    any        `json:"data,omitempty"`
	Hint    string     `json:"hint,omitempty"`
}

// marshal pretty JSON for readability in clients
func (r ToolResponse) marshal() string {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		fallback := ToolResponse{Status: ToolStatusError, Code: "tool_response_marshal_error", Message: "failed to serialize tool response"}
		fb, _ := json.MarshalIndent(fallback, "", "  ")
		return string(fb)
	}
	return string(b)
}

// NewResult builds an MCP result from a ToolResponse in one line
func NewResult(resp ToolResponse) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{mcp.TextContent{Type: "text", Text: resp.marshal()}}}
}

// OK is a convenience for success responses
func OK(message string, data any) *mcp.CallToolResult {
	return NewResult(ToolResponse{Status: ToolStatusOK, Message: message, Data: data})
}

// Error is a convenience for error responses
func Error(code, message, hint string, data any) *mcp.CallToolResult {
	return NewResult(ToolResponse{Status: ToolStatusError, Code: code, Message: message, Hint: hint, Data: data})
}
