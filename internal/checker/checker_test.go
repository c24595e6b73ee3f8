package checker_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/certsentry/certsentry/internal/checker"
	"github.com/certsentry/certsentry/internal/probe"
	"github.com/certsentry/certsentry/internal/site"
	"github.com/certsentry/certsentry/pkg/config"
)

// createTestLogger creates a quiet logger for testing that discards output
func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// fakeProber returns canned certificates or errors per hostname.
type fakeProber struct {
	certs  map[string]probe.CertInfo
	errs   map[string]error
	probed []string
}

func (f *fakeProber) Probe(ctx context.Context, hostname string) (probe.CertInfo, error) {
	f.probed = append(f.probed, hostname)
	if err, ok := f.errs[hostname]; ok {
		return probe.CertInfo{}, err
	}
	if info, ok := f.certs[hostname]; ok {
		return info, nil
	}
	return probe.CertInfo{}, &probe.Error{Kind: probe.FailureDNS, Host: hostname, Err: errors.New("no such host")}
}

type publishedAlert struct {
	TopicARN string
	Subject  string
	Message  string
}

// fakePublisher records every publish and can be told to fail.
type fakePublisher struct {
	published []publishedAlert
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, topicARN, subject, message string) error {
	f.published = append(f.published, publishedAlert{topicARN, subject, message})
	return f.err
}

// expiringIn returns an expiry that is n whole days out from now.
func expiringIn(n int) time.Time {
	return time.Now().Add(time.Duration(n)*24*time.Hour + time.Hour)
}

var _ = Describe("Checker", func() {
	var (
		prober    *fakeProber
		publisher *fakePublisher
		cfg       *config.ServerConfig
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		prober = &fakeProber{
			certs: map[string]probe.CertInfo{},
			errs:  map[string]error{},
		}
		publisher = &fakePublisher{}
		cfg = &config.ServerConfig{
			ExpiringThreshold: 30,
			SNS:               config.SNSConfig{TopicARN: "arn:aws:sns:us-east-1:123456789012:cert-alerts"},
		}
	})

	newChecker := func() *checker.Checker {
		return checker.New(prober, publisher, cfg, createTestLogger())
	}

	Describe("primary site classification", func() {
		It("marks a long-lived certificate as good", func() {
			expiry := expiringIn(90)
			prober.certs["a.example.com"] = probe.CertInfo{NotAfter: expiry}
			w := site.Site{ID: 1, URL: "https://a.example.com"}

			newChecker().CheckSite(ctx, &w)

			Expect(w.Status).To(Equal(site.StatusGood))
			Expect(w.DaysRemaining).To(Equal(site.KnownDays(90)))
			Expect(w.ExpiryDate).To(Equal(expiry.Format(site.DateFormat)))
			Expect(publisher.published).To(BeEmpty())
		})

		It("marks a certificate inside the threshold as expiring and alerts", func() {
			prober.certs["a.example.com"] = probe.CertInfo{NotAfter: expiringIn(10)}
			w := site.Site{ID: 1, URL: "https://a.example.com"}

			newChecker().CheckSite(ctx, &w)

			Expect(w.Status).To(Equal(site.StatusExpiring))
			Expect(publisher.published).To(HaveLen(1))
			alert := publisher.published[0]
			Expect(alert.TopicARN).To(Equal(cfg.SNS.TopicARN))
			Expect(alert.Subject).To(Equal("SSL Certificate Alert: a.example.com"))
			Expect(alert.Message).To(ContainSubstring("Status: EXPIRING"))
			Expect(alert.Message).To(ContainSubstring("Days Remaining: 10"))
		})

		It("marks a past-expiry certificate as expired and alerts", func() {
			prober.certs["a.example.com"] = probe.CertInfo{NotAfter: time.Now().Add(-48 * time.Hour)}
			w := site.Site{ID: 1, URL: "https://a.example.com"}

			newChecker().CheckSite(ctx, &w)

			Expect(w.Status).To(Equal(site.StatusExpired))
			Expect(publisher.published).To(HaveLen(1))
			Expect(publisher.published[0].Message).To(ContainSubstring("Status: EXPIRED"))
		})

		It("records sentinels on probe failure and never alerts", func() {
			prober.errs["a.example.com"] = &probe.Error{Kind: probe.FailureTLS, Host: "a.example.com", Err: errors.New("handshake failure")}
			w := site.Site{ID: 1, URL: "https://a.example.com"}

			newChecker().CheckSite(ctx, &w)

			Expect(w.Status).To(Equal(site.StatusError))
			Expect(w.ExpiryDate).To(Equal(site.Unknown))
			Expect(w.DaysRemaining.Known).To(BeFalse())
			Expect(publisher.published).To(BeEmpty())
		})
	})

	Describe("related-domain correlation", func() {
		It("flags same_cert when expiry dates match at day granularity", func() {
			shared := expiringIn(60)
			prober.certs["a.example.com"] = probe.CertInfo{NotAfter: shared}
			prober.certs["b.example.com"] = probe.CertInfo{NotAfter: shared.Add(2 * time.Hour)}
			w := site.Site{ID: 1, URL: "https://a.example.com", RelatedDomains: []string{"https://b.example.com"}}

			newChecker().CheckSite(ctx, &w)

			Expect(w.RelatedStatus).To(HaveLen(1))
			rs := w.RelatedStatus[0]
			Expect(rs.Domain).To(Equal("https://b.example.com"))
			Expect(rs.Hostname).To(Equal("b.example.com"))
			Expect(rs.SameCert).To(BeTrue())
		})

		It("does not flag same_cert when expiry dates differ", func() {
			prober.certs["a.example.com"] = probe.CertInfo{NotAfter: expiringIn(60)}
			prober.certs["b.example.com"] = probe.CertInfo{NotAfter: expiringIn(90)}
			w := site.Site{ID: 1, URL: "https://a.example.com", RelatedDomains: []string{"b.example.com"}}

			newChecker().CheckSite(ctx, &w)

			Expect(w.RelatedStatus[0].SameCert).To(BeFalse())
			Expect(w.RelatedStatus[0].Status).To(Equal(site.StatusGood))
		})

		It("treats a failed related probe as not sharing the certificate", func() {
			prober.certs["a.example.com"] = probe.CertInfo{NotAfter: expiringIn(60)}
			prober.errs["b.example.com"] = &probe.Error{Kind: probe.FailureDNS, Host: "b.example.com", Err: errors.New("no such host")}
			w := site.Site{ID: 1, URL: "https://a.example.com", RelatedDomains: []string{"b.example.com"}}

			newChecker().CheckSite(ctx, &w)

			// The related failure is isolated: primary status is untouched.
			Expect(w.Status).To(Equal(site.StatusGood))
			rs := w.RelatedStatus[0]
			Expect(rs.Status).To(Equal(site.StatusError))
			Expect(rs.ExpiryDate).To(Equal(site.Unknown))
			Expect(rs.SameCert).To(BeFalse())
		})

		It("never flags same_cert when the primary probe failed", func() {
			prober.errs["a.example.com"] = &probe.Error{Kind: probe.FailureTLS, Host: "a.example.com", Err: errors.New("handshake failure")}
			prober.certs["b.example.com"] = probe.CertInfo{NotAfter: expiringIn(60)}
			w := site.Site{ID: 1, URL: "https://a.example.com", RelatedDomains: []string{"b.example.com"}}

			newChecker().CheckSite(ctx, &w)

			Expect(w.RelatedStatus[0].SameCert).To(BeFalse())
		})

		It("lists only same-cert related domains in the alert body", func() {
			shared := expiringIn(5)
			prober.certs["a.example.com"] = probe.CertInfo{NotAfter: shared}
			prober.certs["b.example.com"] = probe.CertInfo{NotAfter: shared}
			prober.certs["c.example.com"] = probe.CertInfo{NotAfter: expiringIn(200)}
			w := site.Site{ID: 1, URL: "https://a.example.com", RelatedDomains: []string{"b.example.com", "c.example.com"}}

			newChecker().CheckSite(ctx, &w)

			Expect(publisher.published).To(HaveLen(1))
			msg := publisher.published[0].Message
			Expect(msg).To(ContainSubstring("- b.example.com"))
			Expect(msg).NotTo(ContainSubstring("- c.example.com"))
		})
	})

	Describe("alert dispatch", func() {
		It("stays silent when no topic is configured", func() {
			cfg.SNS.TopicARN = ""
			prober.certs["a.example.com"] = probe.CertInfo{NotAfter: expiringIn(5)}
			w := site.Site{ID: 1, URL: "https://a.example.com"}

			newChecker().CheckSite(ctx, &w)

			Expect(w.Status).To(Equal(site.StatusExpiring))
			Expect(publisher.published).To(BeEmpty())
		})

		It("swallows publish failures without touching the stored status", func() {
			publisher.err = errors.New("sns unavailable")
			prober.certs["a.example.com"] = probe.CertInfo{NotAfter: expiringIn(5)}
			w := site.Site{ID: 1, URL: "https://a.example.com"}

			newChecker().CheckSite(ctx, &w)

			Expect(w.Status).To(Equal(site.StatusExpiring))
			Expect(w.DaysRemaining).To(Equal(site.KnownDays(5)))
		})
	})

	Describe("CheckAll", func() {
		It("probes sites sequentially and keeps their order", func() {
			prober.certs["a.example.com"] = probe.CertInfo{NotAfter: expiringIn(90)}
			prober.errs["b.example.com"] = &probe.Error{Kind: probe.FailureGeneric, Host: "b.example.com", Err: errors.New("timeout")}
			prober.certs["c.example.com"] = probe.CertInfo{NotAfter: expiringIn(90)}

			sites := []site.Site{
				{ID: 1, URL: "https://a.example.com"},
				{ID: 2, URL: "https://b.example.com"},
				{ID: 3, URL: "https://c.example.com"},
			}

			results := newChecker().CheckAll(ctx, sites)

			Expect(results).To(HaveLen(3))
			Expect(results[0].Status).To(Equal(site.StatusGood))
			Expect(results[1].Status).To(Equal(site.StatusError))
			Expect(results[2].Status).To(Equal(site.StatusGood))
			Expect(prober.probed).To(Equal([]string{"a.example.com", "b.example.com", "c.example.com"}))
		})

		It("drops records with an empty hostname", func() {
			prober.certs["a.example.com"] = probe.CertInfo{NotAfter: expiringIn(90)}
			sites := []site.Site{
				{ID: 1, URL: ""},
				{ID: 2, URL: "https://a.example.com"},
			}

			results := newChecker().CheckAll(ctx, sites)

			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal(2))
		})
	})
})
