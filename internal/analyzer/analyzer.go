// Package analyzer orchestrates a full wallet analysis: throttled sequential
// transaction collection, swap extraction, bot scoring and PnL accounting.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"solana-wallet-profiler/internal/botdetect"
	"solana-wallet-profiler/internal/config"
	"solana-wallet-profiler/internal/domain"
	"solana-wallet-profiler/internal/pnl"
	"solana-wallet-profiler/internal/solana"
	"solana-wallet-profiler/internal/swap"
)

// Analyzer runs wallet analyses. Instances are independent; concurrent runs
// share only the price cache, which tolerates concurrent fills.
type Analyzer struct {
	ledger     solana.LedgerClient
	extractor  *swap.Extractor
	classifier botdetect.Classifier // nil = degraded mode
	pricer     pnl.Pricer
	cfg        *config.Config
	log        *zap.Logger

	lastRequest time.Time
	sleep       func(time.Duration) // test hook
	now         func() time.Time    // test hook
}

// Options configures an Analyzer. Ledger, Extractor and Config are required;
// Classifier may be nil (degraded mode) and Pricer may be nil when PnL
// accounting is not wanted.
type Options struct {
	Ledger     solana.LedgerClient
	Extractor  *swap.Extractor
	Classifier botdetect.Classifier
	Pricer     pnl.Pricer
	Config     *config.Config
	Logger     *zap.Logger
}

// New creates an Analyzer.
func New(opts Options) *Analyzer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{
		ledger:     opts.Ledger,
		extractor:  opts.Extractor,
		classifier: opts.Classifier,
		pricer:     opts.Pricer,
		cfg:        opts.Config,
		log:        log,
		sleep:      time.Sleep,
		now:        time.Now,
	}
}

// Analyze runs the full pipeline for one wallet. maxTransactions <= 0 uses
// the configured default. Signature or transaction fetch failures are fatal
// for the run; price failures only skip the affected values.
func (a *Analyzer) Analyze(ctx context.Context, address string, maxTransactions int) (*domain.AnalysisResult, error) {
	start := a.now()
	if maxTransactions <= 0 {
		maxTransactions = a.cfg.DefaultMaxTransactions
	}

	a.log.Info("starting wallet analysis",
		zap.String("wallet", address), zap.Int("max_transactions", maxTransactions))

	a.throttle()
	sigs, err := a.ledger.GetSignaturesForAddress(ctx, address, maxTransactions)
	if err != nil {
		return nil, fmt.Errorf("fetch signatures for %s: %w", address, err)
	}

	pipeline := botdetect.NewPipeline(a.classifier, a.cfg.BotThreshold, a.cfg.EarlyDetectionCount, a.log)
	var swaps []*domain.SwapEvent

	for _, sig := range sigs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		a.throttle()
		tx, err := a.ledger.GetTransaction(ctx, sig.Signature)
		if err != nil {
			return nil, fmt.Errorf("fetch transaction %s: %w", sig.Signature, err)
		}
		if tx == nil {
			a.log.Debug("transaction not found, skipped", zap.String("signature", sig.Signature))
			continue
		}

		if ev := a.extractor.Extract(tx); ev != nil {
			swaps = append(swaps, ev)
		}

		halted, err := pipeline.Add(tx)
		if err != nil {
			return nil, err
		}
		if halted {
			// Early detection is the only cancellation point: no further
			// ledger calls for this wallet.
			break
		}

		if a.cfg.TxProcessingDelay > 0 {
			a.sleep(a.cfg.TxProcessingDelay)
		}
	}

	probability, err := pipeline.Finish()
	if err != nil {
		return nil, err
	}

	result := &domain.AnalysisResult{
		WalletAddress:     address,
		TotalTransactions: pipeline.WindowSize(),
		BotProbability:    probability,
		EarlyDetection: domain.EarlyDetection{
			Triggered:            pipeline.EarlyStopped(),
			TransactionsAnalyzed: pipeline.WindowSize(),
		},
		Swaps:         swaps,
		ExecutionTime: a.now().Sub(start).Seconds(),
	}

	a.log.Info("wallet analysis finished",
		zap.String("wallet", address),
		zap.Int("transactions", result.TotalTransactions),
		zap.Int("swaps", len(swaps)),
		zap.Float64("bot_probability", probability),
		zap.Bool("early_stopped", result.EarlyDetection.Triggered),
		zap.Float64("seconds", result.ExecutionTime))

	return result, nil
}

// AccountPnL runs detailed PnL accounting over a result's swaps and attaches
// trade metrics and per-token summaries to it.
func (a *Analyzer) AccountPnL(ctx context.Context, result *domain.AnalysisResult) error {
	if a.pricer == nil {
		return fmt.Errorf("no price resolver configured")
	}

	acc := pnl.NewAccountant(a.pricer, a.cfg, a.log)
	for _, ev := range result.Swaps {
		acc.ProcessSwap(ctx, ev)
	}
	acc.Finalize(ctx, a.now().Unix())

	result.TradeMetrics = acc.Metrics()
	result.TokenSummary = acc.TokenSummaries()
	return nil
}

// throttle enforces the minimum inter-request interval before a ledger call.
func (a *Analyzer) throttle() {
	if a.cfg.MinRequestInterval <= 0 {
		return
	}
	if elapsed := a.now().Sub(a.lastRequest); elapsed < a.cfg.MinRequestInterval {
		a.sleep(a.cfg.MinRequestInterval - elapsed)
	}
	a.lastRequest = a.now()
}
