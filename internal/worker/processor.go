// Package worker runs the long-lived analysis loop: addresses come in from a
// queue, results go out to the stores.
package worker

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"solana-wallet-profiler/internal/analyzer"
	"solana-wallet-profiler/internal/config"
	"solana-wallet-profiler/internal/domain"
	"solana-wallet-profiler/internal/intake"
	"solana-wallet-profiler/internal/storage"
)

// Source yields wallet addresses to analyze. *intake.Queue satisfies it.
type Source interface {
	Next(ctx context.Context) (string, error)
}

// Processor consumes addresses and persists analysis outcomes. A failed
// wallet is logged and skipped; the loop only stops on context cancellation.
type Processor struct {
	source   Source
	analyzer *analyzer.Analyzer
	stats    storage.WalletStatsStore
	archive  storage.SwapArchiveStore // optional
	cfg      *config.Config
	log      *zap.Logger
}

// Options configures a Processor. Source, Analyzer, Stats and Config are
// required; Archive may be nil to disable swap archiving.
type Options struct {
	Source   Source
	Analyzer *analyzer.Analyzer
	Stats    storage.WalletStatsStore
	Archive  storage.SwapArchiveStore
	Config   *config.Config
	Logger   *zap.Logger
}

// New creates a Processor.
func New(opts Options) *Processor {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		source:   opts.Source,
		analyzer: opts.Analyzer,
		stats:    opts.Stats,
		archive:  opts.Archive,
		cfg:      opts.Config,
		log:      log,
	}
}

// Run processes addresses until ctx is done.
func (p *Processor) Run(ctx context.Context) error {
	for {
		address, err := p.source.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("next address: %w", err)
		}

		if err := p.Process(ctx, address); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.log.Error("wallet processing failed",
				zap.String("wallet", address), zap.Error(err))
		}
	}
}

// Process analyzes one wallet and persists the outcome.
func (p *Processor) Process(ctx context.Context, address string) error {
	if err := intake.ValidateAddress(address); err != nil {
		p.log.Warn("invalid wallet address skipped", zap.Error(err))
		return nil
	}

	result, err := p.analyzer.Analyze(ctx, address, p.cfg.DefaultMaxTransactions)
	if err != nil {
		return err
	}

	behavior := &domain.BehaviorMetrics{
		IsBot:                result.BotProbability >= p.cfg.BotThreshold,
		BotProbability:       result.BotProbability,
		TotalSwaps:           len(result.Swaps),
		TransactionsAnalyzed: result.EarlyDetection.TransactionsAnalyzed,
		EarlyDetection:       result.EarlyDetection.Triggered,
		AnalysisTime:         result.ExecutionTime,
	}
	if err := p.stats.UpsertBehaviorMetrics(ctx, address, behavior); err != nil {
		return fmt.Errorf("persist behavior metrics: %w", err)
	}

	// High-confidence bots skip the expensive per-token accounting; their
	// PnL is not interesting, only the flag.
	if behavior.IsBot && result.BotProbability > p.cfg.HighConfidenceBotThreshold {
		p.log.Info("high-confidence bot, detailed PnL skipped",
			zap.String("wallet", address),
			zap.Float64("probability", result.BotProbability))
	} else {
		if err := p.analyzer.AccountPnL(ctx, result); err != nil {
			return fmt.Errorf("pnl accounting: %w", err)
		}
		if err := p.stats.UpsertTradeMetrics(ctx, address, result.TradeMetrics); err != nil {
			return fmt.Errorf("persist trade metrics: %w", err)
		}
	}

	if p.archive != nil && len(result.Swaps) > 0 {
		if err := p.archive.InsertBatch(ctx, address, result.Swaps); err != nil {
			// Archive loss is tolerable; the stats row already landed.
			p.log.Warn("swap archive insert failed",
				zap.String("wallet", address), zap.Error(err))
		}
	}

	return nil
}
