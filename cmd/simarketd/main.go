package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"simarket/internal/api"
	"simarket/internal/catalog"
	"simarket/internal/clock"
	"simarket/internal/config"
	"simarket/internal/market"
	"simarket/internal/portfolio"
	"simarket/internal/store"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadServerFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		cat, err = catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			logger.Error("load catalog", "path", cfg.CatalogPath, "err", err)
			os.Exit(1)
		}
	}

	snapshots, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open snapshot store", "err", err)
		os.Exit(1)
	}
	if snapshots != nil {
		defer snapshots.Close()
	}

	book := portfolio.NewBook(logger)
	ledger := market.NewLedger(cat, book, logger)
	if snapshots != nil {
		prices, err := snapshots.Load(ctx)
		if err != nil {
			logger.Error("load snapshot", "err", err)
			os.Exit(1)
		}
		if n := ledger.Seed(prices); n > 0 {
			logger.Info("ledger seeded from snapshot", "assets", n)
		}
	}

	clk := clock.New(clock.Config{HourEvery: cfg.GameHourEvery}, logger)
	econ := newEconomy(cfg, logger)
	gen := newGenerator(cfg, logger)
	guard := market.NewGuard(logger)

	notifiers := market.Notifiers{
		market.NotifierFunc(func(market.TickBatch) {
			book.Recalculate(ledger)
		}),
	}
	// Saves must never block the scheduler loop, so they go through the
	// coalescing background saver rather than running on the notifier path.
	var saver *store.AsyncSaver
	if snapshots != nil {
		saver = store.NewAsyncSaver(snapshots, 10*time.Second, logger)
		if err := saver.Start(ctx); err != nil {
			logger.Error("start snapshot saver", "err", err)
			os.Exit(1)
		}
		notifiers = append(notifiers, market.NotifierFunc(func(market.TickBatch) {
			saver.Enqueue(ledger.Snapshot())
		}))
	}

	sched := market.NewScheduler(
		market.SchedulerConfig{
			TickEvery:   cfg.TickEvery,
			MinInterval: cfg.MinTickInterval,
			VerifyDelay: cfg.VerifyDelay,
		},
		market.SchedulerDeps{
			Catalog:   cat,
			Clock:     clk,
			Events:    clk.Subscribe(),
			Economy:   econ,
			Generator: gen,
			Ledger:    ledger,
			Guard:     guard,
			Notifier:  notifiers,
		},
		logger,
	)

	if err := clk.Start(ctx); err != nil {
		logger.Error("start clock", "err", err)
		os.Exit(1)
	}
	if err := sched.Start(ctx); err != nil {
		logger.Error("start scheduler", "err", err)
		os.Exit(1)
	}

	server := api.New(logger, cat, ledger, econ, clk, book, sched)
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
		_ = sched.Stop(shutdownCtx)
		_ = clk.Stop(shutdownCtx)
		if saver != nil {
			saver.Enqueue(ledger.Snapshot())
			if err := saver.Stop(shutdownCtx); err != nil {
				logger.Warn("final snapshot save failed", "err", err)
			}
		}
	}()

	logger.Info("simarketd listening", "addr", cfg.Addr, "assets", cat.Len())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg config.ServerConfig, logger *slog.Logger) (store.Store, error) {
	switch {
	case cfg.DatabaseURL != "":
		return store.NewPostgres(ctx, cfg.DatabaseURL, logger)
	case cfg.SnapshotPath != "":
		return store.NewFile(cfg.SnapshotPath, logger)
	default:
		logger.Info("running without snapshot persistence")
		return nil, nil
	}
}

func newEconomy(cfg config.ServerConfig, logger *slog.Logger) *market.Economy {
	if cfg.RandomSeed != 0 {
		return market.NewEconomyWithSeed(cfg.RandomSeed, logger)
	}
	return market.NewEconomy(logger)
}

func newGenerator(cfg config.ServerConfig, logger *slog.Logger) *market.Generator {
	if cfg.RandomSeed != 0 {
		return market.NewGeneratorWithSeed(cfg.RandomSeed, logger)
	}
	return market.NewGenerator(logger)
}
