package bot

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/web3guy0/scalpbot/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// TELEGRAM NOTIFIER - Push-only trade notifications
// ═══════════════════════════════════════════════════════════════════════════════

// Notifier pushes open/close events to a Telegram chat. Sends are
// best-effort: a delivery failure is logged and never blocks trading.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier creates a notifier for the given bot token and chat.
func NewNotifier(token string, chatID int64) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	log.Info().Str("username", api.Self.UserName).Msg("🤖 Telegram notifier initialized")

	return &Notifier{api: api, chatID: chatID}, nil
}

// NotifyOpen announces a new position.
func (n *Notifier) NotifyOpen(symbol string, side types.Side, entry, momentum, notional decimal.Decimal) {
	msg := fmt.Sprintf("🚀 OPEN %s %s @ %s\nMomentum: %s%%\nSize: $%s",
		side, symbol, entry.String(),
		momentum.Mul(decimal.NewFromInt(100)).StringFixed(4),
		notional.StringFixed(2))
	n.send(msg)
}

// NotifyClose announces a settled trade.
func (n *Notifier) NotifyClose(symbol string, trade types.ClosedTrade) {
	icon := "❌"
	if trade.PnL.IsPositive() {
		icon = "✅"
	}
	msg := fmt.Sprintf("%s CLOSE %s %s\nPnL: $%s (%s)\nHold: %s\nBalance: $%s",
		icon, trade.Side, symbol,
		trade.PnL.StringFixed(4), trade.Reason,
		trade.HoldTime.Truncate(100*time.Millisecond).String(),
		trade.Balance.StringFixed(2))
	n.send(msg)
}

func (n *Notifier) send(text string) {
	if _, err := n.api.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		log.Warn().Err(err).Msg("Telegram send failed")
	}
}
