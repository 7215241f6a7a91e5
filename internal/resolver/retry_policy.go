package resolver

import "time"

// DefaultBackoff is the wait between rate-limited attempts.
const DefaultBackoff = time.Second

// RetryPolicy decides whether a rate-limited link is probed again.
type RetryPolicy struct {
	// Enabled turns on retrying 429 responses.
	Enabled bool
	// MaxAttempts caps the number of retries after the first probe.
	MaxAttempts int
	// Interval is the fixed wait before each retry.
	Interval time.Duration
}

// ShouldRetry reports whether a 429 seen on the given zero-based attempt
// warrants another probe.
func (p RetryPolicy) ShouldRetry(attempt int) bool {
	return p.Enabled && attempt < p.MaxAttempts
}

// Backoff returns the wait duration before the next attempt.
func (p RetryPolicy) Backoff(int) time.Duration {
	if p.Interval <= 0 {
		return DefaultBackoff
	}
	return p.Interval
}
