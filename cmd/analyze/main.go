// Package main analyzes a single wallet and prints a report.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"solana-wallet-profiler/internal/analyzer"
	"solana-wallet-profiler/internal/botdetect"
	"solana-wallet-profiler/internal/config"
	"solana-wallet-profiler/internal/domain"
	"solana-wallet-profiler/internal/intake"
	"solana-wallet-profiler/internal/logging"
	"solana-wallet-profiler/internal/pricing"
	"solana-wallet-profiler/internal/solana"
	"solana-wallet-profiler/internal/swap"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	wallet := flag.String("wallet", "", "wallet address to analyze")
	maxTx := flag.Int("max-tx", 0, "transaction window size (0 = configured default)")
	skipPnL := flag.Bool("skip-pnl", false, "skip detailed PnL accounting")
	asJSON := flag.Bool("json", false, "print the raw result as JSON")
	flag.Parse()

	if *wallet == "" && flag.NArg() > 0 {
		*wallet = flag.Arg(0)
	}
	if *wallet == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze [-config path] [-max-tx n] [-skip-pnl] [-json] <wallet>")
		os.Exit(2)
	}

	if err := run(*configPath, *wallet, *maxTx, *skipPnL, *asJSON); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, wallet string, maxTx int, skipPnL, asJSON bool) error {
	if err := intake.ValidateAddress(wallet); err != nil {
		return err
	}

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

	var classifier botdetect.Classifier
	if model, err := botdetect.LoadModel(cfg.ModelPath); err != nil {
		log.Warn("classifier unavailable, running degraded (probability 0)",
			zap.String("path", cfg.ModelPath), zap.Error(err))
	} else {
		classifier = model
	}

	a := analyzer.New(analyzer.Options{
		Ledger:     solana.NewHTTPClient(cfg.RPCURL, solana.WithTimeout(cfg.RequestTimeout)),
		Extractor:  swap.NewExtractor(swap.NewRegistry(cfg.SwapPrograms)),
		Classifier: classifier,
		Pricer:     resolver,
		Config:     cfg,
		Logger:     log,
	})

	result, err := a.Analyze(ctx, wallet, maxTx)
	if err != nil {
		return err
	}
	if !skipPnL {
		if err := a.AccountPnL(ctx, result); err != nil {
			return err
		}
	}

	if asJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	printReport(result)
	return nil
}

func printReport(r *domain.AnalysisResult) {
	fmt.Printf("Wallet:         %s\n", r.WalletAddress)
	fmt.Printf("Transactions:   %d\n", r.TotalTransactions)
	fmt.Printf("Swaps:          %d\n", len(r.Swaps))
	fmt.Printf("Bot probability: %.4f\n", r.BotProbability)
	if r.EarlyDetection.Triggered {
		fmt.Printf("Early detection: triggered after %d transactions\n",
			r.EarlyDetection.TransactionsAnalyzed)
	}
	fmt.Printf("Elapsed:        %.2fs\n", r.ExecutionTime)

	if r.TradeMetrics == nil {
		return
	}
	m := r.TradeMetrics
	fmt.Println()
	fmt.Printf("Invested:       $%.2f\n", m.TotalInvested)
	fmt.Printf("Gross profit:   $%.2f\n", m.GrossProfit)
	fmt.Printf("Realized PnL:   $%.2f\n", m.TotalRealizedPnL)
	fmt.Printf("Unrealized PnL: $%.2f\n", m.TotalUnrealizedPnL)
	fmt.Printf("Volume:         $%.2f over %d trades\n", m.TotalVolume, m.TotalTrades)
	fmt.Printf("Win rate:       %.1f%% (%d/%d tokens)\n", m.WinRate, m.WinningTokens, m.TotalTokensTraded)
	fmt.Printf("ROI:            %.1f%%\n", m.TotalROI)

	if len(r.TokenSummary) == 0 {
		return
	}
	fmt.Println()
	fmt.Printf("%-12s %12s %12s %12s %6s %12s %12s\n",
		"token", "invested", "withdrawn", "balance", "trades", "realized", "unrealized")
	for _, ts := range r.TokenSummary {
		fmt.Printf("%-12s %12.2f %12.2f %12.4f %6d %12.2f %12.2f\n",
			ts.Token, ts.USDInvested, ts.USDWithdrawn, ts.Balance,
			ts.TradeCount, ts.RealizedPnL, ts.UnrealizedPnL)
	}
}
