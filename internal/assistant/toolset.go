package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/certsentry/certsentry/internal/mcpserver"
	"github.com/certsentry/certsentry/internal/probe"
	"github.com/certsentry/certsentry/internal/site"
	"github.com/certsentry/certsentry/internal/store"
	"github.com/certsentry/certsentry/pkg/config"
)

// Toolset exposes certificate diagnostics to the hosted assistant: live
// certificate checks, DNS lookups and read-only views of the monitoring
// store. The assistant's own reasoning loop lives on the client side.
type Toolset struct {
	prober    probe.Prober
	store     *store.Store
	resolver  *net.Resolver
	threshold int
	logger    *slog.Logger
	now       func() time.Time
}

func NewToolset(prober probe.Prober, st *store.Store, cfg *config.ServerConfig, logger *slog.Logger) *Toolset {
	return &Toolset{
		prober:    prober,
		store:     st,
		resolver:  net.DefaultResolver,
		threshold: cfg.ExpiringThreshold,
		logger:    logger,
		now:       time.Now,
	}
}

func (t *Toolset) ID() string   { return "diagnostics" }
func (t *Toolset) Name() string { return "Certificate Diagnostics" }
func (t *Toolset) Description() string {
	return "Live TLS certificate checks, DNS lookups and monitoring store queries"
}

// ToolProvider implementation
func (t *Toolset) GetTools(ctx context.Context) ([]mcpserver.Tool, error) {
	return []mcpserver.Tool{
		{
			Name:        "check_certificate",
			Description: "Check the TLS certificate for a specific domain",
			Builder:     t.buildCheckCertificateTool,
			Handler:     t.handleCheckCertificate,
		},
		{
			Name:        "dns_lookup",
			Description: "Perform a DNS lookup for a domain",
			Builder:     t.buildDNSLookupTool,
			Handler:     t.handleDNSLookup,
		},
		{
			Name:        "get_errored_domains",
			Description: "List domains currently showing errors or unknown status",
			Builder:     t.buildErroredDomainsTool,
			Handler:     t.handleErroredDomains,
		},
		{
			Name:        "get_domain_status",
			Description: "Get the current monitoring status for a specific domain",
			Builder:     t.buildDomainStatusTool,
			Handler:     t.handleDomainStatus,
		},
	}, nil
}

// ResourceProvider implementation
func (t *Toolset) GetResources(ctx context.Context) ([]mcpserver.Resource, error) {
	return []mcpserver.Resource{
		{
			URI:         "certsentry://sites/report",
			Name:        "Monitored Sites Report",
			Description: "Full collection of monitored sites with their latest certificate status",
			MIMEType:    "application/json",
			Handler:     t.handleSitesReportResource,
		},
	}, nil
}

func (t *Toolset) buildCheckCertificateTool() mcp.Tool {
	return mcp.NewTool(
		"check_certificate",
		mcp.WithDescription("Check the TLS certificate for a specific domain and report its expiry date, issuer and validity"),
		mcp.WithString("domain",
			mcp.Required(),
			mcp.Description("The domain name to check (e.g. 'example.com')"),
		),
	)
}

func (t *Toolset) handleCheckCertificate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	domain, err := req.RequireString("domain")
	if err != nil {
		return mcp.NewToolResultError("Domain is required"), nil
	}
	hostname := site.Hostname(domain)

	info, err := t.prober.Probe(ctx, hostname)
	if err != nil {
		return mcpserver.Error(
			certErrorCode(probe.Kind(err)),
			err.Error(),
			"Run dns_lookup to rule out resolution problems before retrying",
			map[string]any{
				"domain":     hostname,
				"error_type": string(probe.Kind(err)),
			},
		), nil
	}

	days := probe.DaysUntil(info.NotAfter, t.now())
	return mcpserver.OK(fmt.Sprintf("Certificate check for %s", hostname), map[string]any{
		"domain":         hostname,
		"expiry_date":    info.NotAfter.Format(site.DateFormat),
		"days_remaining": days,
		"issuer":         info.Issuer,
		"subject_cn":     info.SubjectCN,
		"status":         string(probe.Classify(days, t.threshold)),
		"valid":          days > 0,
	}), nil
}

func (t *Toolset) buildDNSLookupTool() mcp.Tool {
	return mcp.NewTool(
		"dns_lookup",
		mcp.WithDescription("Resolve a domain to its IP addresses and canonical name"),
		mcp.WithString("domain",
			mcp.Required(),
			mcp.Description("The domain name to look up"),
		),
	)
}

func (t *Toolset) handleDNSLookup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	domain, err := req.RequireString("domain")
	if err != nil {
		return mcp.NewToolResultError("Domain is required"), nil
	}
	hostname := site.Hostname(domain)

	ips, err := t.resolver.LookupHost(ctx, hostname)
	if err != nil {
		return mcpserver.Error("DNS_LOOKUP_FAILED",
			fmt.Sprintf("DNS lookup failed for %s: %v", hostname, err),
			"",
			map[string]any{"domain": hostname, "resolved": false},
		), nil
	}

	canonical := hostname
	if cname, err := t.resolver.LookupCNAME(ctx, hostname); err == nil && cname != "" {
		canonical = strings.TrimSuffix(cname, ".")
	}

	return mcpserver.OK(fmt.Sprintf("DNS lookup for %s", hostname), map[string]any{
		"domain":         hostname,
		"ip_addresses":   ips,
		"canonical_name": canonical,
		"resolved":       len(ips) > 0,
	}), nil
}

func (t *Toolset) buildErroredDomainsTool() mcp.Tool {
	return mcp.NewTool(
		"get_errored_domains",
		mcp.WithDescription("List all domains currently showing errors or unknown status in the monitoring system"),
	)
}

func (t *Toolset) handleErroredDomains(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	errored, err := t.store.Errored()
	if err != nil {
		return mcpserver.Error("STORE_READ_FAILED", fmt.Sprintf("Failed to load websites: %v", err), "", nil), nil
	}

	out := make([]map[string]any, 0, len(errored))
	for _, w := range errored {
		out = append(out, map[string]any{
			"name":           w.Name,
			"url":            w.URL,
			"status":         string(w.Status),
			"days_remaining": w.DaysRemaining.String(),
			"expiry_date":    w.ExpiryDate,
		})
	}
	return mcpserver.OK(fmt.Sprintf("%d domains with errors", len(out)), map[string]any{"domains": out}), nil
}

func (t *Toolset) buildDomainStatusTool() mcp.Tool {
	return mcp.NewTool(
		"get_domain_status",
		mcp.WithDescription("Get the current monitoring status for a specific domain from the store"),
		mcp.WithString("domain_name",
			mcp.Required(),
			mcp.Description("The domain name to look up (substring match on name or URL)"),
		),
	)
}

func (t *Toolset) handleDomainStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("domain_name")
	if err != nil {
		return mcp.NewToolResultError("Domain name is required"), nil
	}

	w, found, err := t.store.Find(query)
	if err != nil {
		return mcpserver.Error("STORE_READ_FAILED", fmt.Sprintf("Failed to load websites: %v", err), "", nil), nil
	}
	if !found {
		return mcpserver.Error("DOMAIN_NOT_FOUND",
			fmt.Sprintf("Domain '%s' not found in monitoring system", query),
			"Use get_errored_domains to list known domains",
			map[string]any{"found": false},
		), nil
	}

	return mcpserver.OK(fmt.Sprintf("Status for %s", w.Name), map[string]any{
		"found":           true,
		"name":            w.Name,
		"url":             w.URL,
		"status":          string(w.Status),
		"expiry_date":     w.ExpiryDate,
		"days_remaining":  w.DaysRemaining.String(),
		"added_date":      w.AddedDate,
		"related_domains": w.RelatedDomains,
	}), nil
}

func (t *Toolset) handleSitesReportResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sites, err := t.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load websites: %w", err)
	}
	jsonData, err := json.MarshalIndent(sites, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize sites report: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

func certErrorCode(kind probe.FailureKind) string {
	switch kind {
	case probe.FailureDNS:
		return "DNS_RESOLUTION_FAILED"
	case probe.FailureTLS:
		return "TLS_HANDSHAKE_FAILED"
	default:
		return "CERT_CHECK_FAILED"
	}
}
