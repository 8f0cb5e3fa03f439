package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/gongwen/internal/api"
	"github.com/dgallion1/gongwen/internal/config"
	"github.com/dgallion1/gongwen/internal/pathstore"
	"github.com/dgallion1/gongwen/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	policy, err := config.LoadPolicy(cfg.LayoutPolicyFile)
	if err != nil {
		log.Error("invalid layout policy", "error", err)
		os.Exit(1)
	}
	engine := policy.Engine()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ps := pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)

	orch := pipeline.NewOrchestrator(cfg, ps, engine, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, ps, engine, log, cfg)

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

		ps.Close()
	}()

	log.Info("starting gongwen", "port", cfg.Port, "policy_file", cfg.LayoutPolicyFile)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
