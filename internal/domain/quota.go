package domain

import "time"

// QuotaRecord is the persisted counter state for one scope (device id or
// source IP). WindowDate is used by the daily tracker, ResetAt by the
// fixed-window limiter; each tracker ignores the other field.
type QuotaRecord struct {
	ScopeKey   string
	Count      int
	WindowDate string
	ResetAt    time.Time
	UpdatedAt  time.Time
}
