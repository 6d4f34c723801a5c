package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SHARED TYPES - Avoid import cycles
// ═══════════════════════════════════════════════════════════════════════════════

// Side of a position.
type Side string

const (
	Flat  Side = "FLAT"
	Long  Side = "LONG"
	Short Side = "SHORT"
)

// ExitReason explains why a position was closed.
type ExitReason string

const (
	ExitStopLoss   ExitReason = "STOP_LOSS"
	ExitTakeProfit ExitReason = "TAKE_PROFIT"
	ExitTime       ExitReason = "TIME_EXIT"
	ExitLiquidated ExitReason = "LIQUIDATED"
)

// Position is the single open paper trade. Size is signed:
// positive = long, negative = short, magnitude = contract quantity.
type Position struct {
	Side       Side
	Size       decimal.Decimal
	EntryPrice decimal.Decimal
	EntryTime  time.Time
}

// Notional returns the absolute dollar value of the position at price.
func (p Position) Notional(price decimal.Decimal) decimal.Decimal {
	return p.Size.Mul(price).Abs()
}

// ClosedTrade is the settled result of a close.
type ClosedTrade struct {
	Side      Side
	Reason    ExitReason
	PnL       decimal.Decimal // net of exit fee
	Fee       decimal.Decimal
	ExitPrice decimal.Decimal
	ExitTime  time.Time
	HoldTime  time.Duration
	Balance   decimal.Decimal // account balance after the close
}
