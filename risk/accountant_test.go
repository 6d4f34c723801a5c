package risk

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3guy0/scalpbot/types"
)

var now = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func long(size, entry string, entryTime time.Time) types.Position {
	return types.Position{Side: types.Long, Size: dec(size), EntryPrice: dec(entry), EntryTime: entryTime}
}

func short(size, entry string, entryTime time.Time) types.Position {
	return types.Position{Side: types.Short, Size: dec(size).Neg(), EntryPrice: dec(entry), EntryTime: entryTime}
}

func TestApplyClose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		pos         types.Position
		exitPrice   string
		wantPnL     string
		wantBalance string
		wantWins    int
	}{
		{
			name:        "long_profit",
			pos:         long("50", "10", now),
			exitPrice:   "10.04",
			wantPnL:     "1.8996", // 50*0.04 - 50*10.04*0.0002
			wantBalance: "101.8996",
			wantWins:    1,
		},
		{
			name:        "long_loss",
			pos:         long("50", "10", now),
			exitPrice:   "9.94",
			wantPnL:     "-3.0994", // 50*-0.06 - 50*9.94*0.0002
			wantBalance: "96.9006",
			wantWins:    0,
		},
		{
			name:        "short_profit",
			pos:         short("50", "10", now),
			exitPrice:   "9.94",
			wantPnL:     "2.9006", // -50*-0.06 - 50*9.94*0.0002
			wantBalance: "102.9006",
			wantWins:    1,
		},
		{
			name:        "short_loss",
			pos:         short("50", "10", now),
			exitPrice:   "10.04",
			wantPnL:     "-2.1004",
			wantBalance: "97.8996",
			wantWins:    0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := NewAccountant(dec("100"), dec("0.0002"))

			trade := a.ApplyClose(tt.pos, dec(tt.exitPrice), types.ExitTakeProfit, now.Add(5*time.Second))

			assert.True(t, trade.PnL.Equal(dec(tt.wantPnL)), "pnl %s", trade.PnL)
			assert.True(t, a.Balance().Equal(dec(tt.wantBalance)), "balance %s", a.Balance())
			assert.Equal(t, 5*time.Second, trade.HoldTime)

			trades, wins, realized, _, _ := a.Stats()
			assert.Equal(t, 1, trades)
			assert.Equal(t, tt.wantWins, wins)
			assert.True(t, realized.Equal(trade.PnL))
		})
	}
}

func TestRoundTripAtSamePriceCostsOnlyFees(t *testing.T) {
	t.Parallel()

	a := NewAccountant(dec("100"), dec("0.0002"))
	pos := long("50", "10", now)

	entryFee := a.ApplyOpen(pos.Size, pos.EntryPrice)
	trade := a.ApplyClose(pos, pos.EntryPrice, types.ExitTime, now.Add(time.Second))

	require.True(t, entryFee.Equal(dec("0.1")), "entry fee %s", entryFee)
	assert.True(t, trade.Fee.Equal(dec("0.1")), "exit fee %s", trade.Fee)
	assert.True(t, trade.PnL.Equal(trade.Fee.Neg()), "close pnl %s", trade.PnL)

	// Net round-trip loss is exactly the two fees.
	assert.True(t, a.Balance().Equal(dec("100").Sub(entryFee).Sub(trade.Fee)),
		"balance %s", a.Balance())
}

func TestZeroPnLCloseIsNotAWin(t *testing.T) {
	t.Parallel()

	a := NewAccountant(dec("100"), decimal.Zero)
	a.ApplyClose(long("50", "10", now), dec("10"), types.ExitTime, now)

	trades, wins, _, _, _ := a.Stats()
	assert.Equal(t, 1, trades)
	assert.Equal(t, 0, wins)
}

func TestPeakAndDrawdownMonotonic(t *testing.T) {
	t.Parallel()

	a := NewAccountant(dec("100"), decimal.Zero)

	exits := []string{"9.9", "10.3", "9.8", "10.05", "9.95"}
	prevPeak := decimal.Zero
	prevDD := decimal.Zero

	for _, exit := range exits {
		a.ApplyClose(long("10", "10", now), dec(exit), types.ExitTime, now)

		_, _, _, peak, maxDD := a.Stats()
		assert.True(t, peak.GreaterThanOrEqual(prevPeak), "peak decreased: %s < %s", peak, prevPeak)
		assert.True(t, maxDD.GreaterThanOrEqual(prevDD), "drawdown decreased: %s < %s", maxDD, prevDD)
		assert.True(t, peak.GreaterThanOrEqual(a.Balance()))
		prevPeak, prevDD = peak, maxDD
	}

	// First trade lost $1 from a $100 peak.
	_, _, _, _, maxDD := a.Stats()
	assert.True(t, maxDD.GreaterThanOrEqual(dec("1")), "max drawdown %s", maxDD)
}
