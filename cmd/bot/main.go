package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/invalid8th/bookingbot/internal/booking"
	"github.com/invalid8th/bookingbot/internal/config"
	"github.com/invalid8th/bookingbot/internal/dialog"
	"github.com/invalid8th/bookingbot/internal/export"
	"github.com/invalid8th/bookingbot/internal/lifecycle"
	"github.com/invalid8th/bookingbot/internal/observability/metrics"
	"github.com/invalid8th/bookingbot/internal/ops"
	"github.com/invalid8th/bookingbot/internal/telegram"
	"github.com/invalid8th/bookingbot/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking bot",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)

	store := booking.NewStore(logger)
	dialogs := dialog.NewManager(store, logger, bookingMetrics)

	client, err := telegram.NewClient(cfg.TelegramToken, cfg.TelegramDebug, logger)
	if err != nil {
		logger.Error("failed to connect to Telegram", "error", err)
		os.Exit(1)
	}

	sink := export.NewCSVAppender(cfg.BookingsCSVPath)
	lm := lifecycle.NewManager(store, client, sink, lifecycle.Options{
		OperatorChatID: cfg.OperatorChatID,
		BusinessName:   cfg.BusinessName,
		PaymentNote:    cfg.PaymentNote,
		PaymentLink:    cfg.PaymentLink,
	}, logger, bookingMetrics)

	bot := telegram.NewBot(client, dialogs, lm, store, cfg.OperatorChatID, logger)

	// Operational HTTP surface: liveness probe, metrics, bookings listing.
	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: ops.New(&ops.Config{
			Logger:   logger,
			Store:    store,
			Registry: registry,
			OpsToken: cfg.OpsToken,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("ops server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("ops server error", "error", err)
			os.Exit(1)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	botDone := make(chan struct{})
	go func() {
		bot.Run(ctx)
		close(botDone)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	cancel()
	<-botDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("ops server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("stopped")
}
