package strategy

import (
	"time"

	"github.com/shopspring/decimal"
)

// ═══════════════════════════════════════════════════════════════════════════════
// MOMENTUM - Windowed return over a bounded trade-print history
// ═══════════════════════════════════════════════════════════════════════════════
//
// The signal is intentionally crude: the relative change between the
// current price and the oldest print still inside the lookback window.
// No rate normalization, no smoothing. Ticks arrive irregularly, so a
// fast market sees more prints per window than a quiet one.
//
// ═══════════════════════════════════════════════════════════════════════════════

// Sample is a single observed trade print.
type Sample struct {
	Time  time.Time
	Price decimal.Decimal
}

// PriceHistory keeps the newest N samples in arrival order.
// Appends are O(1); the oldest sample is overwritten once full.
// Not safe for concurrent use, the engine serializes all access.
type PriceHistory struct {
	samples []Sample
	size    int
	index   int
	filled  bool
}

// NewPriceHistory creates a history bounded to size samples.
func NewPriceHistory(size int) *PriceHistory {
	return &PriceHistory{
		samples: make([]Sample, size),
		size:    size,
	}
}

// Append records a new print. Timestamps are expected to be
// non-decreasing; the feed delivers them in arrival order.
func (h *PriceHistory) Append(t time.Time, price decimal.Decimal) {
	h.samples[h.index] = Sample{Time: t, Price: price}
	h.index = (h.index + 1) % h.size
	if h.index == 0 {
		h.filled = true
	}
}

// Len returns the number of stored samples.
func (h *PriceHistory) Len() int {
	if h.filled {
		return h.size
	}
	return h.index
}

// scan visits samples oldest to newest, stopping early if fn returns false.
func (h *PriceHistory) scan(fn func(Sample) bool) {
	if h.filled {
		for _, s := range h.samples[h.index:] {
			if !fn(s) {
				return
			}
		}
	}
	for _, s := range h.samples[:h.index] {
		if !fn(s) {
			return
		}
	}
}

// Momentum returns the windowed relative return of current against the
// oldest sample still inside the lookback window ending at now.
// It returns zero (no signal) when fewer than two samples exist, when
// no sample lies inside the window, or when the reference price is
// zero — none of these are errors.
func Momentum(h *PriceHistory, current decimal.Decimal, lookback time.Duration, now time.Time) decimal.Decimal {
	if h.Len() < 2 {
		return decimal.Zero
	}

	cutoff := now.Add(-lookback)
	var ref decimal.Decimal
	found := false
	h.scan(func(s Sample) bool {
		if !s.Time.Before(cutoff) {
			ref = s.Price
			found = true
			return false
		}
		return true
	})

	if !found || ref.IsZero() {
		return decimal.Zero
	}
	return current.Sub(ref).Div(ref)
}
