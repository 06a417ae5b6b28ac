package main

import (
	"context"
	"log/slog"
	mathrand "math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wondesk/internal/api"
	"wondesk/internal/clock"
	"wondesk/internal/config"
	"wondesk/internal/game"
	"wondesk/internal/market"
	"wondesk/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	seed := cfg.WalkSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := mathrand.New(mathrand.NewSource(seed))

	catalog := market.NewCatalog()
	board := market.NewBoard(catalog, mathrand.New(mathrand.NewSource(seed+1)))
	engine := game.NewEngine(board, rng, logger)

	snapStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("open snapshot store failed", "err", err)
		os.Exit(1)
	}
	defer snapStore.Close()

	if cfg.SnapshotLoad {
		snap, ok, err := snapStore.Load(ctx)
		if err != nil {
			logger.Error("snapshot load failed", "err", err)
			os.Exit(1)
		}
		if ok {
			engine.Restore(snap)
		}
	}

	// Quote board refresh, independent of the game clock.
	go func() {
		ticker := time.NewTicker(cfg.QuoteRefreshEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				board.Refresh()
			}
		}
	}()

	gameClock := clock.New(engine, logger, cfg.AccrualEvery, cfg.SimTickEvery)
	go gameClock.Run(ctx)

	// Periodic snapshot of clock-driven drift; API mutations save inline.
	go func() {
		ticker := time.NewTicker(cfg.SnapshotEvery)
		defer ticker.Stop()
		var saved uint64
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				v := engine.Version()
				if v == saved {
					continue
				}
				if err := snapStore.Save(ctx, engine.Snapshot()); err != nil {
					logger.Warn("snapshot save failed", "err", err)
					continue
				}
				saved = v
			}
		}
	}()

	server := api.New(cfg, logger, catalog, board, engine, snapStore, mathrand.New(mathrand.NewSource(seed+2)))
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		if err := snapStore.Save(shutdownCtx, engine.Snapshot()); err != nil {
			logger.Warn("final snapshot save failed", "err", err)
		}
	}()

	logger.Info("wondesk api listening", "addr", cfg.Addr, "seed", seed)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg config.APIConfig) (store.Store, error) {
	if cfg.DatabaseURL != "" {
		return store.ConnectPG(ctx, cfg.DatabaseURL)
	}
	return store.NewFileStore(cfg.SnapshotPath)
}
