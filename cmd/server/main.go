package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docmap/internal/api"
	"github.com/dgallion1/docmap/internal/billing"
	"github.com/dgallion1/docmap/internal/config"
	"github.com/dgallion1/docmap/internal/extract"
	"github.com/dgallion1/docmap/internal/pipeline"
	"github.com/dgallion1/docmap/internal/session"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	gen, err := extract.NewGenerator(ctx, cfg)
	if err != nil {
		log.Error("content generator", "error", err)
		os.Exit(1)
	}
	timed := extract.NewTimed(gen, time.Hour)

	sessions, err := session.NewStore(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		log.Error("session store", "error", err)
		os.Exit(1)
	}

	var bill api.Billing
	var billClient *billing.Client
	if cfg.BillingEnabled() {
		billClient = billing.NewClient(cfg.StripeAPIURL, cfg.StripeSecretKey, cfg.StripePriceID, cfg.PublicBaseURL)
		bill = billClient
	} else {
		log.Info("billing disabled, all sessions use the free tier")
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, timed, sessions, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, sessions, bill, timed, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()

		if c, ok := gen.(*extract.ClaudeClient); ok {
			c.Close()
		}
		if billClient != nil {
			billClient.Close()
		}
	}()

	log.Info("starting docmap",
		"port", cfg.Port,
		"provider", gen.Name(),
		"model", gen.Model(),
		"workers", cfg.WorkerCount,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
