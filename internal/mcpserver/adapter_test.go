package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// stubToolset provides one of everything, or fails on demand.
type stubToolset struct {
	toolsErr   error
	toolCalled bool
}

func (s *stubToolset) ID() string          { return "stub" }
func (s *stubToolset) Name() string        { return "Stub" }
func (s *stubToolset) Description() string { return "stub toolset" }

func (s *stubToolset) GetTools(ctx context.Context) ([]Tool, error) {
	if s.toolsErr != nil {
		return nil, s.toolsErr
	}
	return []Tool{{
		Name: "ping",
		Builder: func() mcp.Tool {
			return mcp.NewTool("ping", mcp.WithDescription("ping"))
		},
		Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			s.toolCalled = true
			return OK("pong", nil), nil
		},
	}}, nil
}

func (s *stubToolset) GetResources(ctx context.Context) ([]Resource, error) {
	return []Resource{{
		URI:      "stub://report",
		Name:     "Report",
		MIMEType: "text/plain",
		Handler: func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return []mcp.ResourceContents{mcp.TextResourceContents{URI: req.Params.URI, Text: "ok"}}, nil
		},
	}}, nil
}

func (s *stubToolset) GetPrompts(ctx context.Context) ([]Prompt, error) {
	return []Prompt{{
		Name: "advise",
		Builder: func() mcp.Prompt {
			return mcp.NewPrompt("advise", mcp.WithPromptDescription("advise"))
		},
		Handler: func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			return mcp.NewGetPromptResult("advice", nil), nil
		},
	}}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ = Describe("Adapter", func() {
	var (
		ctx context.Context
		srv *server.MCPServer
	)

	BeforeEach(func() {
		ctx = context.Background()
		srv = server.NewMCPServer("test", "0.0.0",
			server.WithToolCapabilities(true),
			server.WithResourceCapabilities(true, true),
			server.WithPromptCapabilities(true),
		)
	})

	It("registers every capability of every toolset", func() {
		ts := &stubToolset{}
		adapter := NewAdapter([]Toolset{ts}, srv, testLogger())

		Expect(adapter.RegisterAll(ctx)).To(Succeed())
	})

	It("propagates toolset failures", func() {
		ts := &stubToolset{toolsErr: errors.New("broken toolset")}
		adapter := NewAdapter([]Toolset{ts}, srv, testLogger())

		err := adapter.RegisterAll(ctx)
		Expect(err).To(MatchError("broken toolset"))
	})

	It("ignores toolsets that provide no capabilities", func() {
		adapter := NewAdapter([]Toolset{bareToolset{}}, srv, testLogger())
		Expect(adapter.RegisterAll(ctx)).To(Succeed())
	})
})

// bareToolset implements only the identity interface.
type bareToolset struct{}

func (bareToolset) ID() string          { return "bare" }
func (bareToolset) Name() string        { return "Bare" }
func (bareToolset) Description() string { return "no capabilities" }

var _ = Describe("ToolResponse", func() {
	It("serializes the ok envelope", func() {
		result := OK("all good", map[string]any{"count": 2})
		text := result.Content[0].(mcp.TextContent).Text

		var resp ToolResponse
		Expect(json.Unmarshal([]byte(text), &resp)).To(Succeed())
		Expect(resp.Status).To(Equal(ToolStatusOK))
		Expect(resp.Message).To(Equal("all good"))
		Expect(resp.Code).To(BeEmpty())
	})

	It("serializes the error envelope with code and hint", func() {
		result := Error("DOMAIN_NOT_FOUND", "no such domain", "list domains first", nil)
		text := result.Content[0].(mcp.TextContent).Text

		var resp ToolResponse
		Expect(json.Unmarshal([]byte(text), &resp)).To(Succeed())
		Expect(resp.Status).To(Equal(ToolStatusError))
		Expect(resp.Code).To(Equal("DOMAIN_NOT_FOUND"))
		Expect(resp.Hint).To(Equal("list domains first"))
	})

	It("omits empty fields from the wire form", func() {
		result := OK("done", nil)
		text := result.Content[0].(mcp.TextContent).Text
		Expect(text).NotTo(ContainSubstring("code"))
		Expect(text).NotTo(ContainSubstring("hint"))
		Expect(text).NotTo(ContainSubstring("data"))
	})
})
