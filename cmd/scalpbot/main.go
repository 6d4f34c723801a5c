// Scalpbot - Simulated momentum scalper for MEXC futures
//
// Consumes the live trade-print stream for one symbol, opens and closes
// a single paper position on short-horizon momentum, and logs every
// trade plus a periodic status heartbeat. No real orders are routed;
// fills, fees and balance are computed locally from the observed price.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/web3guy0/scalpbot/bot"
	"github.com/web3guy0/scalpbot/core"
	"github.com/web3guy0/scalpbot/feeds"
	"github.com/web3guy0/scalpbot/internal/config"
	"github.com/web3guy0/scalpbot/risk"
)

const version = "2.0.0"

func main() {
	// Setup logging: one line per event on stdout, local timestamps
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
	})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// Load environment
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Info().
		Str("version", version).
		Str("symbol", cfg.Symbol).
		Int64("leverage", cfg.Leverage).
		Msg("⚡ Scalpbot starting...")

	// ====== CORE COMPONENTS ======

	feed := feeds.NewMexcFeed(cfg.WSURL, cfg.Symbol, cfg.PingInterval, cfg.ReconnectDelay)
	acct := risk.NewAccountant(cfg.AccountBalance, cfg.FeeRate)
	engine := core.NewEngine(cfg, feed, acct)

	if cfg.TelegramToken != "" {
		notifier, err := bot.NewNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ Telegram notifier disabled")
		} else {
			engine.SetNotifier(notifier)
		}
	}

	engine.Start()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("🛑 Received shutdown signal")
	engine.Stop()
	log.Info().Msg("👋 Goodbye!")
}
