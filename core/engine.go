package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/web3guy0/scalpbot/feeds"
	"github.com/web3guy0/scalpbot/internal/config"
	"github.com/web3guy0/scalpbot/risk"
	"github.com/web3guy0/scalpbot/strategy"
	"github.com/web3guy0/scalpbot/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// ENGINE - Single-position entry/exit state machine
// ═══════════════════════════════════════════════════════════════════════════════
//
// Flow:
//   Feed → History → Momentum → Entry/Exit → Accountant → Status
//
// At most one position is open at any time. Ticks are processed
// strictly sequentially off a single subscriber channel; every
// evaluation uses the tick timestamp as "now".
//
// ═══════════════════════════════════════════════════════════════════════════════

// TickSource delivers deduplicated price ticks.
type TickSource interface {
	Start()
	Stop()
	Subscribe() chan feeds.Tick
}

// TradeNotifier pushes open/close events to an external channel (Telegram).
type TradeNotifier interface {
	NotifyOpen(symbol string, side types.Side, entry, momentum, notional decimal.Decimal)
	NotifyClose(symbol string, trade types.ClosedTrade)
}

// exitRule pairs a close reason with its trigger predicate. Rules are
// evaluated in order and the first hit wins, so at most one exit fires
// per tick.
type exitRule struct {
	reason types.ExitReason
	hit    func(pctMove decimal.Decimal, holdTime time.Duration) bool
}

type Engine struct {
	mu sync.Mutex

	cfg  *config.Config
	feed TickSource
	acct *risk.Accountant

	history   *strategy.PriceHistory
	position  types.Position
	lastExit  time.Time
	lastPrice decimal.Decimal

	exitRules []exitRule
	status    *Reporter
	notifier  TradeNotifier

	running bool
	stopCh  chan struct{}
}

// NewEngine creates the trading engine.
func NewEngine(cfg *config.Config, feed TickSource, acct *risk.Accountant) *Engine {
	return &Engine{
		cfg:       cfg,
		feed:      feed,
		acct:      acct,
		history:   strategy.NewPriceHistory(cfg.HistorySize),
		position:  types.Position{Side: types.Flat},
		exitRules: buildExitRules(cfg),
		status:    NewReporter(cfg.StatusInterval),
		stopCh:    make(chan struct{}),
	}
}

// buildExitRules returns the exit conditions in priority order.
func buildExitRules(cfg *config.Config) []exitRule {
	liquidation := decimal.NewFromInt(1).Div(decimal.NewFromInt(cfg.Leverage)).Neg()
	stopLoss := cfg.StopLossPct.Neg()

	return []exitRule{
		{types.ExitStopLoss, func(pct decimal.Decimal, _ time.Duration) bool {
			return pct.LessThanOrEqual(stopLoss)
		}},
		{types.ExitTakeProfit, func(pct decimal.Decimal, _ time.Duration) bool {
			return pct.GreaterThanOrEqual(cfg.TakeProfitPct)
		}},
		{types.ExitTime, func(_ decimal.Decimal, hold time.Duration) bool {
			return hold >= cfg.MaxHold
		}},
		// Unreachable whenever stopLossPct < 1/leverage (true for the
		// defaults: 0.005 < 0.02): the stop loss always fires first.
		// Kept for configurations with tighter leverage than stop.
		{types.ExitLiquidated, func(pct decimal.Decimal, _ time.Duration) bool {
			return pct.LessThanOrEqual(liquidation)
		}},
	}
}

// SetNotifier wires an optional trade notifier.
func (e *Engine) SetNotifier(n TradeNotifier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notifier = n
}

// Start subscribes to the feed and begins the tick loop.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	e.feed.Start()
	tickCh := e.feed.Subscribe()
	go e.mainLoop(tickCh)

	log.Info().
		Str("symbol", e.cfg.Symbol).
		Int64("leverage", e.cfg.Leverage).
		Str("balance", "$"+e.acct.Balance().StringFixed(2)).
		Msg("⚡ Engine started")
}

// Stop halts the tick loop and the feed.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}

	e.running = false
	close(e.stopCh)
	e.feed.Stop()

	trades, wins, realized, _, maxDD := e.acct.Stats()
	log.Info().
		Int("trades", trades).
		Int("wins", wins).
		Str("realized_pnl", realized.StringFixed(4)).
		Str("max_drawdown", maxDD.StringFixed(2)+"%").
		Msg("Engine stopped")
}

// mainLoop processes incoming ticks sequentially.
func (e *Engine) mainLoop(tickCh <-chan feeds.Tick) {
	for {
		select {
		case <-e.stopCh:
			return
		case tick := <-tickCh:
			e.OnTick(tick)
		}
	}
}

// OnTick runs one full evaluation: record the print, check the state
// machine, maybe emit a heartbeat. Ticks with an unchanged price are
// ignored entirely.
func (e *Engine) OnTick(tick feeds.Tick) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tick.Price.Equal(e.lastPrice) {
		return
	}
	e.lastPrice = tick.Price
	e.history.Append(tick.Time, tick.Price)

	if e.position.Side != types.Flat {
		e.checkExit(tick)
	} else {
		e.checkEntry(tick)
	}

	e.maybeStatus(tick)
}

// Position returns a copy of the current position.
func (e *Engine) Position() types.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

// LastExit returns the time of the most recent close.
func (e *Engine) LastExit() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastExit
}

// pctMove returns the favorable signed move against entry: positive
// means the position is in profit, for longs and shorts alike.
func (e *Engine) pctMove(price decimal.Decimal) decimal.Decimal {
	entry := e.position.EntryPrice
	if e.position.Side == types.Long {
		return price.Sub(entry).Div(entry)
	}
	return entry.Sub(price).Div(entry)
}

// checkExit evaluates the ordered exit rules and closes on first hit.
func (e *Engine) checkExit(tick feeds.Tick) {
	pct := e.pctMove(tick.Price)
	hold := tick.Time.Sub(e.position.EntryTime)

	for _, rule := range e.exitRules {
		if rule.hit(pct, hold) {
			e.closePosition(tick, rule.reason)
			return
		}
	}
}

// closePosition settles the open position at the tick price.
func (e *Engine) closePosition(tick feeds.Tick, reason types.ExitReason) {
	trade := e.acct.ApplyClose(e.position, tick.Price, reason, tick.Time)

	icon := "❌"
	if trade.PnL.IsPositive() {
		icon = "✅"
	}
	log.Info().
		Str("pnl", "$"+trade.PnL.StringFixed(4)).
		Str("reason", string(reason)).
		Str("hold", trade.HoldTime.Truncate(100*time.Millisecond).String()).
		Str("balance", "$"+trade.Balance.StringFixed(2)).
		Msg(icon + " CLOSE " + string(trade.Side))

	if e.notifier != nil {
		e.notifier.NotifyClose(e.cfg.Symbol, trade)
	}

	e.position = types.Position{Side: types.Flat}
	e.lastExit = tick.Time
}

// checkEntry opens a position when momentum clears the threshold and
// the post-close cooldown has elapsed.
func (e *Engine) checkEntry(tick feeds.Tick) {
	if tick.Time.Sub(e.lastExit) < e.cfg.Cooldown {
		return
	}

	momentum := strategy.Momentum(e.history, tick.Price, e.cfg.MomentumLookback, tick.Time)
	if momentum.Abs().LessThan(e.cfg.MomentumThreshold) {
		return
	}

	// Size from the pre-fee balance, sign by momentum direction.
	size := e.acct.Balance().
		Mul(decimal.NewFromInt(e.cfg.Leverage)).
		Mul(e.cfg.RiskPerTrade).
		Div(tick.Price)

	side := types.Long
	if momentum.IsNegative() {
		side = types.Short
		size = size.Neg()
	}

	e.acct.ApplyOpen(size, tick.Price)

	e.position = types.Position{
		Side:       side,
		Size:       size,
		EntryPrice: tick.Price,
		EntryTime:  tick.Time,
	}

	notional := e.position.Notional(tick.Price)
	log.Info().
		Str("entry", tick.Price.String()).
		Str("momentum", momentum.Mul(hundred).StringFixed(4)+"%").
		Str("size", "$"+notional.StringFixed(2)).
		Msg("🚀 OPEN " + string(side))

	if e.notifier != nil {
		e.notifier.NotifyOpen(e.cfg.Symbol, side, tick.Price, momentum, notional)
	}
}

var hundred = decimal.NewFromInt(100)

// maybeStatus emits the rate-limited heartbeat line.
func (e *Engine) maybeStatus(tick feeds.Tick) {
	if !e.status.ShouldEmit(tick.Time) {
		return
	}

	momentum := strategy.Momentum(e.history, tick.Price, e.cfg.MomentumLookback, tick.Time)
	log.Info().
		Str("price", tick.Price.String()).
		Str("momentum", momentum.Mul(hundred).StringFixed(4)+"%").
		Str("position", string(e.position.Side)).
		Str("balance", "$"+e.acct.Balance().StringFixed(2)).
		Msg("Running...")
}
