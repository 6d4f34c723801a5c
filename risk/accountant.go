package risk

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/web3guy0/scalpbot/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// ACCOUNTANT - Paper account, fees, PnL and drawdown tracking
// ═══════════════════════════════════════════════════════════════════════════════
//
// Responsibilities:
// 1. Own the notional balance and realized PnL
// 2. Debit taker fees on open and close
// 3. Track trade/win counts, peak balance and max drawdown
//
// ═══════════════════════════════════════════════════════════════════════════════

var hundred = decimal.NewFromInt(100)

type Accountant struct {
	mu sync.RWMutex

	feeRate decimal.Decimal

	balance     decimal.Decimal
	realizedPnL decimal.Decimal
	totalTrades int
	totalWins   int
	peakBalance decimal.Decimal
	maxDrawdown decimal.Decimal // percent, non-decreasing
}

// NewAccountant creates an accountant with the given starting balance.
func NewAccountant(startingBalance, feeRate decimal.Decimal) *Accountant {
	return &Accountant{
		feeRate:     feeRate,
		balance:     startingBalance,
		peakBalance: startingBalance,
	}
}

// ApplyOpen debits the entry fee for a position of the given signed
// size at price and returns the fee charged.
func (a *Accountant) ApplyOpen(size, price decimal.Decimal) decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()

	fee := size.Mul(price).Abs().Mul(a.feeRate)
	a.balance = a.balance.Sub(fee)
	return fee
}

// ApplyClose settles pos at exitPrice: PnL net of the exit fee is
// credited, trade statistics and drawdown are updated.
// Signed size already encodes direction, so the same formula covers
// longs and shorts.
func (a *Accountant) ApplyClose(pos types.Position, exitPrice decimal.Decimal, reason types.ExitReason, now time.Time) types.ClosedTrade {
	a.mu.Lock()
	defer a.mu.Unlock()

	pnl := pos.Size.Mul(exitPrice.Sub(pos.EntryPrice))
	fee := pos.Size.Mul(exitPrice).Abs().Mul(a.feeRate)
	pnl = pnl.Sub(fee)

	a.balance = a.balance.Add(pnl)
	a.realizedPnL = a.realizedPnL.Add(pnl)
	a.totalTrades++
	if pnl.IsPositive() {
		a.totalWins++
	}

	if a.balance.GreaterThan(a.peakBalance) {
		a.peakBalance = a.balance
	}
	// peakBalance starts positive and never decreases, so the division
	// is safe for any reachable state.
	drawdown := a.peakBalance.Sub(a.balance).Div(a.peakBalance).Mul(hundred)
	if drawdown.GreaterThan(a.maxDrawdown) {
		a.maxDrawdown = drawdown
	}

	log.Debug().
		Str("pnl", pnl.StringFixed(4)).
		Str("fee", fee.StringFixed(4)).
		Str("balance", a.balance.StringFixed(2)).
		Str("max_drawdown", a.maxDrawdown.StringFixed(2)+"%").
		Msg("Trade settled")

	return types.ClosedTrade{
		Side:      pos.Side,
		Reason:    reason,
		PnL:       pnl,
		Fee:       fee,
		ExitPrice: exitPrice,
		ExitTime:  now,
		HoldTime:  now.Sub(pos.EntryTime),
		Balance:   a.balance,
	}
}

// Balance returns the current account balance.
func (a *Accountant) Balance() decimal.Decimal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.balance
}

// Stats returns the lifetime trading statistics.
func (a *Accountant) Stats() (trades, wins int, realizedPnL, peakBalance, maxDrawdownPct decimal.Decimal) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.totalTrades, a.totalWins, a.realizedPnL, a.peakBalance, a.maxDrawdown
}
