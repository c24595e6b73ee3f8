package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"time"
)

// FailureKind is the probe failure taxonomy visible to callers.
type FailureKind string

const (
	// FailureDNS means the hostname did not resolve.
	FailureDNS FailureKind = "dns"
	// FailureTLS means the handshake or certificate validation failed.
	FailureTLS FailureKind = "tls"
	// FailureGeneric covers everything else: refused connections, timeouts.
	FailureGeneric FailureKind = "general"
)

// Error wraps a failed probe with its classification.
type Error struct {
	Kind FailureKind
	Host string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case FailureDNS:
		return fmt.Sprintf("DNS resolution failed for %s: %v", e.Host, e.Err)
	case FailureTLS:
		return fmt.Sprintf("TLS handshake failed for %s: %v", e.Host, e.Err)
	default:
		return fmt.Sprintf("probe failed for %s: %v", e.Host, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Kind extracts the failure classification from a probe error.
func Kind(err error) FailureKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return FailureGeneric
}

// CertInfo is the subset of the peer leaf certificate the monitor cares about.
type CertInfo struct {
	NotAfter  time.Time
	Issuer    string
	SubjectCN string
}

// Prober retrieves the expiry of the certificate served by a hostname.
// One probe is the unit of work per call; implementations do not retry.
type Prober interface {
	Probe(ctx context.Context, hostname string) (CertInfo, error)
}

// TLSProber opens a TCP connection to port 443, performs a TLS handshake
// with default trust validation and returns the leaf certificate's NotAfter.
type TLSProber struct {
	Timeout time.Duration
	Port    string // defaults to "443"

	// roots overrides the system trust store; only tests set it.
	roots *x509.CertPool
}

// NewTLSProber returns a prober with the given bounded connect/handshake
// timeout. A zero timeout falls back to 10 seconds.
func NewTLSProber(timeout time.Duration) *TLSProber {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TLSProber{Timeout: timeout}
}

func (p *TLSProber) Probe(ctx context.Context, hostname string) (CertInfo, error) {
	port := p.Port
	if port == "" {
		port = "443"
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: p.Timeout},
		Config:    &tls.Config{ServerName: hostname, RootCAs: p.roots},
	}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(hostname, port))
	if err != nil {
		return CertInfo{}, &Error{Kind: classifyDialError(err), Host: hostname, Err: err}
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return CertInfo{}, &Error{Kind: FailureTLS, Host: hostname, Err: errors.New("no peer certificates returned")}
	}

	// Index 0 is the leaf certificate.
	leaf := state.PeerCertificates[0]
	return CertInfo{
		NotAfter:  leaf.NotAfter,
		Issuer:    issuerOrganization(leaf),
		SubjectCN: leaf.Subject.CommonName,
	}, nil
}

func issuerOrganization(cert *x509.Certificate) string {
	if len(cert.Issuer.Organization) > 0 {
		return cert.Issuer.Organization[0]
	}
	if cert.Issuer.CommonName != "" {
		return cert.Issuer.CommonName
	}
	return "Unknown"
}

func classifyDialError(err error) FailureKind {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FailureDNS
	}
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return FailureTLS
	}
	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return FailureTLS
	}
	var x509Err x509.UnknownAuthorityError
	if errors.As(err, &x509Err) {
		return FailureTLS
	}
	var hostErr x509.HostnameError
	if errors.As(err, &hostErr) {
		return FailureTLS
	}
	return FailureGeneric
}
