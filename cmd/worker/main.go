// Package main runs the wallet profiling worker: addresses are consumed from
// a Redis queue, analyzed, and the outcomes persisted to Postgres and the
// ClickHouse swap archive.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"solana-wallet-profiler/internal/analyzer"
	"solana-wallet-profiler/internal/botdetect"
	"solana-wallet-profiler/internal/config"
	"solana-wallet-profiler/internal/intake"
	"solana-wallet-profiler/internal/logging"
	"solana-wallet-profiler/internal/pricing"
	"solana-wallet-profiler/internal/solana"
	"solana-wallet-profiler/internal/storage"
	chstore "solana-wallet-profiler/internal/storage/clickhouse"
	"solana-wallet-profiler/internal/storage/memory"
	"solana-wallet-profiler/internal/storage/migrations"
	pgstore "solana-wallet-profiler/internal/storage/postgres"
	"solana-wallet-profiler/internal/swap"
	"solana-wallet-profiler/internal/worker"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	useMemory := flag.Bool("memory", false, "use in-memory stores instead of Postgres/ClickHouse")
	flag.Parse()

	if err := run(*configPath, *useMemory); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, useMemory bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Development)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Price resolution
	cache := pricing.NewCache(cfg.PriceCacheFile)
	if err := cache.Load(); err != nil {
		log.Warn("price cache load failed, starting empty", zap.Error(err))
	}
	defer func() {
		if err := cache.Flush(); err != nil {
			log.Warn("final price cache flush failed", zap.Error(err))
		}
	}()

	resolver := pricing.NewResolver(pricing.ResolverOptions{
		Cache:         cache,
		NativeHistory: pricing.NewNativeHistoryAPI(cfg.NativeHistoryURL, cfg.PriceAPITimeout),
		TokenCandles:  pricing.NewCandleAPI(cfg.CandleAPIURL, cfg.PriceAPITimeout),
		Quotes:        pricing.NewQuoteAPI(cfg.QuoteAPIURL, cfg.PriceAPITimeout),
		MaxRetries:    cfg.PriceMaxRetries,
		Logger:        log,
	})

	// Classifier: load failure is degraded mode, not a startup error.
	var classifier botdetect.Classifier
	if model, err := botdetect.LoadModel(cfg.ModelPath); err != nil {
		log.Warn("classifier unavailable, running degraded (probability 0)",
			zap.String("path", cfg.ModelPath), zap.Error(err))
	} else {
		classifier = model
	}

	ledger := solana.NewHTTPClient(cfg.RPCURL, solana.WithTimeout(cfg.RequestTimeout))

	a := analyzer.New(analyzer.Options{
		Ledger:     ledger,
		Extractor:  swap.NewExtractor(swap.NewRegistry(cfg.SwapPrograms)),
		Classifier: classifier,
		Pricer:     resolver,
		Config:     cfg,
		Logger:     log,
	})

	stats, archive, closeStores, err := buildStores(ctx, cfg, useMemory, log)
	if err != nil {
		return err
	}
	defer closeStores()

	queue, err := intake.NewQueue(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisQueue)
	if err != nil {
		return fmt.Errorf("connect intake queue: %w", err)
	}
	defer queue.Close()

	log.Info("worker started",
		zap.String("queue", cfg.RedisQueue),
		zap.Bool("memory_stores", useMemory),
		zap.Bool("classifier_loaded", classifier != nil))

	p := worker.New(worker.Options{
		Source:   queue,
		Analyzer: a,
		Stats:    stats,
		Archive:  archive,
		Config:   cfg,
		Logger:   log,
	})
	return p.Run(ctx)
}

// buildStores wires the persistence backends. With useMemory or missing DSNs
// the in-memory implementations serve instead.
func buildStores(ctx context.Context, cfg *config.Config, useMemory bool, log *zap.Logger) (storage.WalletStatsStore, storage.SwapArchiveStore, func(), error) {
	if useMemory || cfg.PostgresURL == "" {
		log.Info("using in-memory wallet stats store")
		stats := memory.NewWalletStatsStore()
		archive := memory.NewSwapArchiveStore()
		return stats, archive, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}
	stats := pgstore.NewWalletStatsStore(pool)

	var archive storage.SwapArchiveStore
	closeArchive := func() {}
	if cfg.ClickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, cfg.ClickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("connect clickhouse: %w", err)
		}
		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			conn.Close()
			pool.Close()
			return nil, nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		archive = chstore.NewSwapArchiveStore(conn)
		closeArchive = func() { conn.Close() }
	} else {
		log.Info("no clickhouse dsn, archiving swaps in memory")
		archive = memory.NewSwapArchiveStore()
	}

	closeAll := func() {
		closeArchive()
		pool.Close()
	}
	return stats, archive, closeAll, nil
}
