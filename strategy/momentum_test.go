package strategy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var base = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestMomentumNoSignal(t *testing.T) {
	t.Parallel()

	lookback := 10 * time.Second

	tests := []struct {
		name    string
		samples []Sample
		now     time.Time
	}{
		{
			name:    "empty_history",
			samples: nil,
			now:     base,
		},
		{
			name: "single_sample",
			samples: []Sample{
				{Time: base, Price: dec("10")},
			},
			now: base.Add(time.Second),
		},
		{
			name: "all_samples_outside_window",
			samples: []Sample{
				{Time: base.Add(-30 * time.Second), Price: dec("10")},
				{Time: base.Add(-20 * time.Second), Price: dec("11")},
			},
			now: base,
		},
		{
			name: "zero_reference_price",
			samples: []Sample{
				{Time: base.Add(-5 * time.Second), Price: decimal.Zero},
				{Time: base.Add(-1 * time.Second), Price: dec("10")},
			},
			now: base,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewPriceHistory(100)
			for _, s := range tt.samples {
				h.Append(s.Time, s.Price)
			}
			got := Momentum(h, dec("10.5"), lookback, tt.now)
			assert.True(t, got.IsZero(), "expected zero momentum, got %s", got)
		})
	}
}

func TestMomentumWindowedReturn(t *testing.T) {
	t.Parallel()

	h := NewPriceHistory(100)
	h.Append(base.Add(-15*time.Second), dec("9"))  // outside window
	h.Append(base.Add(-8*time.Second), dec("10"))  // reference
	h.Append(base.Add(-2*time.Second), dec("10.2")) // inside, but not the reference

	got := Momentum(h, dec("10.05"), 10*time.Second, base)
	assert.True(t, got.Equal(dec("0.005")), "got %s", got)
}

func TestMomentumNegativeReturn(t *testing.T) {
	t.Parallel()

	h := NewPriceHistory(100)
	h.Append(base.Add(-5*time.Second), dec("10"))
	h.Append(base.Add(-1*time.Second), dec("9.97"))

	got := Momentum(h, dec("9.95"), 10*time.Second, base)
	assert.True(t, got.Equal(dec("-0.005")), "got %s", got)
}

func TestPriceHistoryEviction(t *testing.T) {
	t.Parallel()

	h := NewPriceHistory(3)
	for i := 0; i < 5; i++ {
		h.Append(base.Add(time.Duration(i)*time.Second), decimal.NewFromInt(int64(10+i)))
	}

	assert.Equal(t, 3, h.Len())

	// Oldest surviving sample is the third append (price 12).
	got := Momentum(h, dec("13.2"), time.Minute, base.Add(4*time.Second))
	assert.True(t, got.Equal(dec("0.1")), "got %s", got)
}

func TestPriceHistoryScanOrder(t *testing.T) {
	t.Parallel()

	h := NewPriceHistory(3)
	for i := 0; i < 5; i++ {
		h.Append(base.Add(time.Duration(i)*time.Second), decimal.NewFromInt(int64(i)))
	}

	var seen []time.Time
	h.scan(func(s Sample) bool {
		seen = append(seen, s.Time)
		return true
	})

	assert.Len(t, seen, 3)
	for i := 1; i < len(seen); i++ {
		assert.True(t, seen[i].After(seen[i-1]), "samples out of order at %d", i)
	}
}
