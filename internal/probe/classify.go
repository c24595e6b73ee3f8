package probe

import (
	"time"

	"github.com/certsentry/certsentry/internal/site"
)

// DefaultExpiringThreshold is the day count under which a certificate is
// reported as expiring soon.
const DefaultExpiringThreshold = 30

// DaysUntil computes the whole days between now and expiry, truncating
// toward the earlier boundary.
func DaysUntil(expiry, now time.Time) int {
	return int(expiry.Sub(now).Hours() / 24)
}

// Classify maps a remaining day count onto a certificate status.
func Classify(daysRemaining, threshold int) site.Status {
	switch {
	case daysRemaining <= 0:
		return site.StatusExpired
	case daysRemaining <= threshold:
		return site.StatusExpiring
	default:
		return site.StatusGood
	}
}
