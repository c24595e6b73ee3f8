package site

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Unknown is the sentinel stored in place of a date or day count when a
// probe did not produce a usable result.
const Unknown = "Unknown"

// DateFormat is the day-granularity layout used for expiry and added dates.
const DateFormat = "2006-01-02"

// Status classifies a site's certificate.
type Status string

const (
	StatusUnknown  Status = "unknown"
	StatusGood     Status = "good"
	StatusExpiring Status = "expiring"
	StatusExpired  Status = "expired"
	StatusError    Status = "error"
)

// Days is a day count that may be absent. It marshals as a JSON number when
// known and as the string "Unknown" otherwise, matching the persisted layout.
type Days struct {
	Known bool
	Count int
}

// KnownDays returns a Days holding n.
func KnownDays(n int) Days {
	return Days{Known: true, Count: n}
}

func (d Days) MarshalJSON() ([]byte, error) {
	if !d.Known {
		return json.Marshal(Unknown)
	}
	return json.Marshal(d.Count)
}

func (d *Days) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*d = Days{Known: true, Count: n}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("days_remaining must be a number or %q: %w", Unknown, err)
	}
	if s != Unknown {
		return fmt.Errorf("unexpected days_remaining value %q", s)
	}
	*d = Days{}
	return nil
}

func (d Days) String() string {
	if !d.Known {
		return Unknown
	}
	return fmt.Sprintf("%d", d.Count)
}

// RelatedStatus is the per-cycle probe result for one related domain.
// It is transient state, recomputed on every probe of the parent site.
type RelatedStatus struct {
	Domain        string `json:"domain"`
	Hostname      string `json:"hostname"`
	Status        Status `json:"status"`
	ExpiryDate    string `json:"expiry_date"`
	DaysRemaining Days   `json:"days_remaining"`
	SameCert      bool   `json:"same_cert"`
}

// Site is a monitored domain record, the unit of persistence and probing.
type Site struct {
	ID             int             `json:"id"`
	URL            string          `json:"url"`
	Name           string          `json:"name"`
	Status         Status          `json:"status"`
	ExpiryDate     string          `json:"expiry_date"`
	DaysRemaining  Days            `json:"days_remaining"`
	AddedDate      string          `json:"added_date"`
	RelatedDomains []string        `json:"related_domains"`
	RelatedStatus  []RelatedStatus `json:"related_status,omitempty"`
}

// Hostname canonicalizes a URL or domain into the bare hostname used for
// probing: scheme and path are stripped.
func Hostname(raw string) string {
	h := strings.TrimPrefix(raw, "https://")
	h = strings.TrimPrefix(h, "http://")
	if i := strings.IndexByte(h, '/'); i >= 0 {
		h = h[:i]
	}
	return h
}

// CanonicalURL ensures a registered URL carries an https scheme.
func CanonicalURL(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}
