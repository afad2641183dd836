package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/oneedge/orderengine/internal/config"
	"github.com/oneedge/orderengine/internal/httpapi"
	"github.com/oneedge/orderengine/internal/ops"
	"github.com/oneedge/orderengine/internal/priceview"
	"github.com/oneedge/orderengine/internal/registry"
	"github.com/oneedge/orderengine/internal/scheduler"
	"github.com/oneedge/orderengine/internal/signer"
	"github.com/oneedge/orderengine/internal/store"
	"github.com/oneedge/orderengine/internal/strategy"
	"github.com/oneedge/orderengine/internal/submit"
)

const VERSION = "v1.0"

func main() {
	// ═══════════════════════════════════════════════════════════════
	// BOOTSTRAP
	// ═══════════════════════════════════════════════════════════════

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	} else {
		log.Info().Msg("✅ .env file loaded successfully")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	if os.Getenv("DEBUG") == "true" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Info().Msg("═══════════════════════════════════════════════════")
	log.Info().Msgf("   ORDERENGINE %s - CONDITIONAL ORDER EXECUTION ENGINE", VERSION)
	log.Info().Msg("═══════════════════════════════════════════════════")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// ═══════════════════════════════════════════════════════════════
	// LAYER 1: STORAGE
	// ═══════════════════════════════════════════════════════════════

	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = cfg.DatabasePath
	}
	orderStore, err := store.New(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open order store")
	}
	log.Info().Msg("✅ Order Store initialized")

	// ═══════════════════════════════════════════════════════════════
	// LAYER 2: PRICE VIEW (Market Data)
	// ═══════════════════════════════════════════════════════════════

	priceView := priceview.New(cfg.StalenessThreshold)
	log.Info().Msg("✅ Price View initialized")

	var priceFeed *priceview.Feed
	if wsURL := os.Getenv("PRICE_FEED_WS_URL"); wsURL != "" {
		priceFeed = priceview.NewFeed(wsURL, priceView)
		priceFeed.Start()
		log.Info().Msg("✅ Price Feed connected")
	} else {
		log.Warn().Msg("PRICE_FEED_WS_URL not set - price view stays empty; no collector is writing to it")
	}

	// ═══════════════════════════════════════════════════════════════
	// LAYER 3: SUBMISSION CLIENT
	// ═══════════════════════════════════════════════════════════════

	transport := submit.NewHTTPTransport(cfg.SubmissionBaseURL, cfg.SubmissionTimeout)
	submitClient, err := submit.New(cfg.OperatorPrivateKey, cfg.ChainID, cfg.ExchangeAddress, transport)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize submission client")
	}
	log.Info().Msg("✅ Submission Client initialized")

	// ═══════════════════════════════════════════════════════════════
	// LAYER 4: STRATEGY REGISTRY + WATCHER SCHEDULER
	// ═══════════════════════════════════════════════════════════════

	strategyRegistry := strategy.NewRegistry()

	sched := scheduler.New(orderStore, strategyRegistry, priceView, submitClient, cfg.PollInterval)

	// ═══════════════════════════════════════════════════════════════
	// LAYER 5: NOTIFICATIONS (Telegram)
	// ═══════════════════════════════════════════════════════════════

	notifier, err := ops.New(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Warn().Err(err).Msg("Telegram unavailable")
	} else if notifier != nil {
		sched.SetNotifier(notifier)
		log.Info().Msg("✅ Operator notifier initialized")
	}

	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start watcher scheduler")
	}
	log.Info().Msg("✅ Watcher Scheduler started")

	// ═══════════════════════════════════════════════════════════════
	// LAYER 6: REGISTRY API
	// ═══════════════════════════════════════════════════════════════

	orderRegistry := registry.New(orderStore, signer.Verify, strategyRegistry, sched)
	log.Info().Msg("✅ Registry API initialized")

	// ═══════════════════════════════════════════════════════════════
	// LAYER 7: HTTP API
	// ═══════════════════════════════════════════════════════════════

	var httpSrv *http.Server
	if addr := os.Getenv("HTTP_LISTEN_ADDR"); addr != "" {
		httpSrv = &http.Server{Addr: addr, Handler: httpapi.NewServer(orderRegistry)}
		go func() {
			log.Info().Str("addr", addr).Msg("✅ HTTP API listening")
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("HTTP API stopped unexpectedly")
			}
		}()
	} else {
		log.Warn().Msg("HTTP_LISTEN_ADDR not set - Registry API is only reachable in-process")
	}

	log.Info().Msg("🚀 Running...")

	// ═══════════════════════════════════════════════════════════════
	// GRACEFUL SHUTDOWN
	// ═══════════════════════════════════════════════════════════════

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Warn().Msg("🛑 Shutdown signal received...")
	log.Info().Msg("═══════════════════════════════════════════════════")
	log.Info().Msg("                GRACEFUL SHUTDOWN")
	log.Info().Msg("═══════════════════════════════════════════════════")

	if httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := httpSrv.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("HTTP API did not shut down cleanly")
		}
		cancel()
	}

	log.Info().Msg("Stopping Watcher Scheduler...")
	sched.Stop()

	if priceFeed != nil {
		priceFeed.Stop()
	}

	log.Info().Msg("═══════════════════════════════════════════════════")
	log.Info().Msg("                 SHUTDOWN COMPLETE")
	log.Info().Msg("═══════════════════════════════════════════════════")
	log.Info().Msg("👋 Goodbye!")
}
