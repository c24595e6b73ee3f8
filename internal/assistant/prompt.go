package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/certsentry/certsentry/internal/mcpserver"
	"github.com/certsentry/certsentry/internal/site"
)

const troubleshootTemplate = `Investigate the TLS certificate problem for "%s".

Work through these steps, calling each tool at most once:
1. Query the monitoring store for the last known state (get_domain_status)
2. Perform one live certificate check (check_certificate)
3. Run a DNS lookup if resolution looks suspect (dns_lookup)
4. Analyze the results and state your conclusion

Report the exact failure mode (DNS resolution, TLS handshake, expired or
soon-to-expire certificate), the certificate fields you observed, and
concrete remediation steps. Suggest openssl/dig commands as examples for
the operator to run manually; do not attempt to execute them.`

// PromptProvider implementation
func (t *Toolset) GetPrompts(ctx context.Context) ([]mcpserver.Prompt, error) {
	return []mcpserver.Prompt{
		{
			Name:        "troubleshoot_domain",
			Description: "Guided TLS certificate troubleshooting for one domain",
			Builder:     t.buildTroubleshootPrompt,
			Handler:     t.handleTroubleshootPrompt,
		},
	}, nil
}

func (t *Toolset) buildTroubleshootPrompt() mcp.Prompt {
	return mcp.NewPrompt(
		"troubleshoot_domain",
		mcp.WithPromptDescription("Diagnose why a monitored domain's certificate check is failing"),
		mcp.WithArgument("domain",
			mcp.RequiredArgument(),
			mcp.ArgumentDescription("The domain to troubleshoot"),
		),
	)
}

func (t *Toolset) handleTroubleshootPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	domain := ""
	if req.Params.Arguments != nil {
		domain = req.Params.Arguments["domain"]
	}
	if domain == "" {
		return nil, fmt.Errorf("domain parameter is required")
	}

	text := fmt.Sprintf(troubleshootTemplate, site.Hostname(domain))
	if suggestions := t.suggestedQuestions(); len(suggestions) > 0 {
		text += "\n\nOther domains currently in trouble:\n" + strings.Join(suggestions, "\n")
	}

	message := mcp.NewPromptMessage(
		mcp.RoleUser,
		mcp.NewTextContent(text),
	)
	return mcp.NewGetPromptResult(
		fmt.Sprintf("Certificate troubleshooting: %s", domain),
		[]mcp.PromptMessage{message},
	), nil
}

// suggestedQuestions lists errored domains worth investigating next.
func (t *Toolset) suggestedQuestions() []string {
	errored, err := t.store.Errored()
	if err != nil {
		return nil
	}
	var out []string
	for i, w := range errored {
		if i == 2 {
			break
		}
		out = append(out, fmt.Sprintf("- Investigate the SSL error for %s", site.Hostname(w.URL)))
	}
	return out
}
