package core

import "time"

// Reporter rate-limits the periodic status heartbeat. It keeps no
// business state, only its own last-emit timestamp.
type Reporter struct {
	interval time.Duration
	lastEmit time.Time
}

// NewReporter creates a reporter that fires at most once per interval.
func NewReporter(interval time.Duration) *Reporter {
	return &Reporter{interval: interval}
}

// ShouldEmit reports whether a heartbeat is due at now, and if so
// records the emission.
func (r *Reporter) ShouldEmit(now time.Time) bool {
	if now.Sub(r.lastEmit) > r.interval {
		r.lastEmit = now
		return true
	}
	return false
}
