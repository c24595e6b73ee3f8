package checker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/certsentry/certsentry/internal/notify"
	"github.com/certsentry/certsentry/internal/probe"
	"github.com/certsentry/certsentry/internal/site"
	"github.com/certsentry/certsentry/pkg/config"
)

// Checker runs the probe pipeline over monitored sites: classify the primary
// certificate, correlate related domains and dispatch alerts. Probing is
// sequential; one bad site never blocks the rest of the cycle.
type Checker struct {
	prober    probe.Prober
	publisher notify.Publisher
	topicARN  string
	threshold int
	logger    *slog.Logger
	now       func() time.Time
}

func New(prober probe.Prober, publisher notify.Publisher, cfg *config.ServerConfig, logger *slog.Logger) *Checker {
	return &Checker{
		prober:    prober,
		publisher: publisher,
		topicARN:  cfg.SNS.TopicARN,
		threshold: cfg.ExpiringThreshold,
		logger:    logger,
		now:       time.Now,
	}
}

// CheckAll probes every site in order and returns the merged records.
// Sites with an empty hostname are dropped from the result, matching the
// persisted-collection semantics of a cycle.
func (c *Checker) CheckAll(ctx context.Context, sites []site.Site) []site.Site {
	results := make([]site.Site, 0, len(sites))
	for _, w := range sites {
		hostname := site.Hostname(w.URL)
		if hostname == "" {
			continue
		}
		c.CheckSite(ctx, &w)
		results = append(results, w)
	}
	return results
}

// CheckSite probes one site and its related domains, merging the outcome
// into the record in place and dispatching an alert when warranted.
func (c *Checker) CheckSite(ctx context.Context, w *site.Site) {
	hostname := site.Hostname(w.URL)

	expiry, ok := c.probeInto(ctx, hostname, &w.Status, &w.ExpiryDate, &w.DaysRemaining)
	c.correlateRelated(ctx, w, expiry, ok)

	if c.topicARN != "" && (w.Status == site.StatusExpiring || w.Status == site.StatusExpired) {
		c.dispatchAlert(ctx, hostname, w)
	}
}

// probeInto runs one probe and writes the classified outcome into the given
// fields. It reports the parsed expiry and whether the probe succeeded.
func (c *Checker) probeInto(ctx context.Context, hostname string, status *site.Status, expiryDate *string, days *site.Days) (time.Time, bool) {
	info, err := c.prober.Probe(ctx, hostname)
	if err != nil {
		c.logger.Warn("Certificate probe failed",
			"hostname", hostname,
			"kind", string(probe.Kind(err)),
			"error", err)
		*status = site.StatusError
		*expiryDate = site.Unknown
		*days = site.Days{}
		return time.Time{}, false
	}

	remaining := probe.DaysUntil(info.NotAfter, c.now())
	*status = probe.Classify(remaining, c.threshold)
	*expiryDate = info.NotAfter.Format(site.DateFormat)
	*days = site.KnownDays(remaining)
	return info.NotAfter, true
}

// correlateRelated probes each declared related domain independently.
// Two domains are judged to share a certificate iff both probes succeeded
// and their expiry dates are equal at day granularity. That is a heuristic,
// not a fingerprint comparison. Related failures never touch the primary
// site's own status.
func (c *Checker) correlateRelated(ctx context.Context, w *site.Site, primaryExpiry time.Time, primaryOK bool) {
	w.RelatedStatus = make([]site.RelatedStatus, 0, len(w.RelatedDomains))
	for _, related := range w.RelatedDomains {
		hostname := site.Hostname(related)
		rs := site.RelatedStatus{
			Domain:   related,
			Hostname: hostname,
		}
		expiry, ok := c.probeInto(ctx, hostname, &rs.Status, &rs.ExpiryDate, &rs.DaysRemaining)
		rs.SameCert = primaryOK && ok &&
			primaryExpiry.Format(site.DateFormat) == expiry.Format(site.DateFormat)
		w.RelatedStatus = append(w.RelatedStatus, rs)
	}
}

// dispatchAlert publishes an expiry alert. Failures are logged and
// swallowed; alerting never affects the stored status or the cycle.
// The alert is re-sent every cycle while the site stays expiring or expired.
func (c *Checker) dispatchAlert(ctx context.Context, hostname string, w *site.Site) {
	subject := fmt.Sprintf("SSL Certificate Alert: %s", hostname)

	var b strings.Builder
	fmt.Fprintf(&b, "SSL Certificate Alert for %s\n\n", hostname)
	fmt.Fprintf(&b, "Status: %s\n", strings.ToUpper(string(w.Status)))
	fmt.Fprintf(&b, "Expiry Date: %s\n", w.ExpiryDate)
	fmt.Fprintf(&b, "Days Remaining: %s\n", w.DaysRemaining)

	var shared []string
	for _, rs := range w.RelatedStatus {
		if rs.SameCert {
			shared = append(shared, rs.Hostname)
		}
	}
	if len(shared) > 0 {
		b.WriteString("\nRelated domains with the same certificate:\n")
		for _, h := range shared {
			fmt.Fprintf(&b, "- %s\n", h)
		}
	}
	b.WriteString("\nPlease take action to renew this certificate.\n")

	if err := c.publisher.Publish(ctx, c.topicARN, subject, b.String()); err != nil {
		c.logger.Error("Failed to publish certificate alert",
			"hostname", hostname, "error", err)
	}
}
