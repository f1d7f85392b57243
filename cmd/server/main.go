package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/underwriterhq/underwriter/internal/analyzer"
	"github.com/underwriterhq/underwriter/internal/api"
	"github.com/underwriterhq/underwriter/internal/config"
	"github.com/underwriterhq/underwriter/internal/feedback"
	"github.com/underwriterhq/underwriter/internal/grader"
	"github.com/underwriterhq/underwriter/internal/llm"
	"github.com/underwriterhq/underwriter/internal/pipeline"
	"github.com/underwriterhq/underwriter/internal/store"
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

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	client := llm.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	if !client.Enabled() {
		log.Warn("no anthropic api key set, companion feedback degrades to deterministic fallbacks")
	}

	tok := analyzer.ForName(cfg.TokenizerName)
	gen := feedback.NewGenerator(client, log)
	ing := pipeline.NewIngestor(st, gen, tok, log, cfg.SnapshotInterval)
	flow := pipeline.NewFlowService(st, gen, tok, log, cfg.BaselineDays)
	ext := grader.NewExtractor(client, log)

	orch := pipeline.NewOrchestrator(cfg, ing, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, flow, ext, st, client, log, cfg)

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

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		client.Close()
	}()

	log.Info("starting underwriter", "port", cfg.Port, "db", cfg.DBPath)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
