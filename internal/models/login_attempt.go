package models

import "time"

// LoginAttempt is a single secret verification against the gate, keyed by client IP.
type LoginAttempt struct {
	ID            string    `db:"id"`
	IPAddress     string    `db:"ip_address"`
	UserAgent     string    `db:"user_agent"`
	AttemptTime   time.Time `db:"attempt_time"`
	Success       bool      `db:"success"`
	FailureReason *string   `db:"failure_reason"`
	ExpiresAt     time.Time `db:"expires_at"`
}

// LoginAttemptStats aggregates attempts for one IP inside the lookback window
type LoginAttemptStats struct {
	IPAddress         string
	FailedCount       int        // failures since the last success
	RecentFailureTime *time.Time // most recent failure
	LastSuccessTime   *time.Time
}
