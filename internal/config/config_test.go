package config

import (
	"os"
	"testing"
)

func TestLoad_DefaultsWithRPCURL(t *testing.T) {
	t.Setenv("PROFILER_RPC_URL", "http://localhost:8899")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.RPCURL != "http://localhost:8899" {
		t.Errorf("rpc_url not read from environment: %q", cfg.RPCURL)
	}
	if cfg.BotThreshold != 0.75 {
		t.Errorf("expected default bot_threshold 0.75, got %v", cfg.BotThreshold)
	}
	if cfg.HighConfidenceBotThreshold != 0.95 {
		t.Errorf("expected default high-confidence threshold 0.95, got %v", cfg.HighConfidenceBotThreshold)
	}
	if cfg.EarlyDetectionCount != 80 {
		t.Errorf("expected default early_detection_count 80, got %d", cfg.EarlyDetectionCount)
	}
	if cfg.DefaultMaxTransactions != 500 {
		t.Errorf("expected default default_max_transactions 500, got %d", cfg.DefaultMaxTransactions)
	}
	if len(cfg.SwapPrograms) == 0 {
		t.Error("expected default swap program registry")
	}
	if cfg.SwapPrograms["JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4"] != "Jupiter" {
		t.Error("expected Jupiter in default swap programs")
	}
}

func TestLoad_MissingRPCURL(t *testing.T) {
	os.Unsetenv("PROFILER_RPC_URL")

	if _, err := Load(""); err == nil {
		t.Error("expected error without rpc_url")
	}
}

func TestLoad_ValidationRejectsBadThresholds(t *testing.T) {
	t.Setenv("PROFILER_RPC_URL", "http://localhost:8899")
	t.Setenv("PROFILER_BOT_THRESHOLD", "1.5")

	if _, err := Load(""); err == nil {
		t.Error("expected error for bot_threshold > 1")
	}
}

func TestLoad_EarlyCountMustFitWindow(t *testing.T) {
	t.Setenv("PROFILER_RPC_URL", "http://localhost:8899")
	t.Setenv("PROFILER_EARLY_DETECTION_COUNT", "600")

	if _, err := Load(""); err == nil {
		t.Error("expected error for early count above window size")
	}
}

func TestMintClassification(t *testing.T) {
	t.Setenv("PROFILER_RPC_URL", "http://localhost:8899")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.IsNative(WSOLMint) || !cfg.IsNative(SOLMint) {
		t.Error("expected WSOL and SOL to be native")
	}
	if cfg.IsNative("TokenXMint1111111111111111111111111111111") {
		t.Error("unexpected native classification")
	}
	if !cfg.IsExcluded("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v") {
		t.Error("expected USDC to be excluded")
	}
	if cfg.IsExcluded(WSOLMint) {
		t.Error("native mint must not be excluded")
	}
}
