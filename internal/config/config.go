package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all configuration for the bot.
//
// Only the operational knobs (symbol, endpoint, notifier, debug) are
// read from the environment. The strategy and risk constants are fixed
// defaults baked in at build time; they are exposed here as fields so
// tests and callers can construct variants, but Load never overrides
// them.
type Config struct {
	// Instrument
	Symbol string
	WSURL  string

	// Mode
	Debug bool

	// Telegram (optional, notifier disabled when token is empty)
	TelegramToken  string
	TelegramChatID int64

	// Strategy
	MomentumLookback  time.Duration   // window for the momentum reference price
	MomentumThreshold decimal.Decimal // min |windowed return| to open
	MaxHold           time.Duration   // force-close after this hold time
	TakeProfitPct     decimal.Decimal
	StopLossPct       decimal.Decimal
	Cooldown          time.Duration // gap between a close and the next entry

	// Risk
	AccountBalance decimal.Decimal // starting paper balance, USD
	Leverage       int64
	RiskPerTrade   decimal.Decimal // fraction of balance committed per entry
	FeeRate        decimal.Decimal // taker fee, applied on open and close

	// Plumbing
	HistorySize    int // newest trade prints kept for the momentum window
	StatusInterval time.Duration
	PingInterval   time.Duration
	ReconnectDelay time.Duration
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Symbol: "SUI_USDT",
		WSURL:  "wss://contract.mexc.com/edge",

		MomentumLookback:  10 * time.Second,
		MomentumThreshold: decimal.NewFromFloat(0.0005), // 0.05%
		MaxHold:           15 * time.Second,
		TakeProfitPct:     decimal.NewFromFloat(0.003), // 0.3%
		StopLossPct:       decimal.NewFromFloat(0.005), // 0.5%
		Cooldown:          10 * time.Second,

		AccountBalance: decimal.NewFromInt(100),
		Leverage:       50,
		RiskPerTrade:   decimal.NewFromFloat(0.10),
		FeeRate:        decimal.NewFromFloat(0.0002), // 0.02% taker

		HistorySize:    2000,
		StatusInterval: 60 * time.Second,
		PingInterval:   10 * time.Second,
		ReconnectDelay: 5 * time.Second,
	}
}

// Load builds the configuration from defaults plus environment overrides.
func Load() (*Config, error) {
	cfg := Default()

	cfg.Symbol = getEnv("SYMBOL", cfg.Symbol)
	cfg.WSURL = getEnv("WS_URL", cfg.WSURL)
	cfg.Debug = getEnvBool("DEBUG", false)
	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	if cfg.Symbol == "" {
		return nil, fmt.Errorf("SYMBOL must not be empty")
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}

	return cfg, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
