package swap

import (
	"testing"

	"solana-wallet-profiler/internal/domain"
)

const (
	jupiterProgram = "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4"
	orcaProgram    = "whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"
)

func testRegistry() *Registry {
	return NewRegistry(map[string]string{
		jupiterProgram: "Jupiter",
		orcaProgram:    "Orca",
	})
}

func TestClassify_InstructionMatch(t *testing.T) {
	tx := &domain.RawTransaction{
		Instructions: []domain.Instruction{
			{ProgramID: "11111111111111111111111111111111"},
			{ProgramID: jupiterProgram},
		},
	}

	protocol, ok := testRegistry().Classify(tx)
	if !ok {
		t.Fatal("expected swap classification")
	}
	if protocol != "Jupiter" {
		t.Errorf("expected Jupiter, got %s", protocol)
	}
}

func TestClassify_LogFallback(t *testing.T) {
	tx := &domain.RawTransaction{
		Instructions: []domain.Instruction{
			{ProgramID: "11111111111111111111111111111111"},
		},
		LogMessages: []string{
			"Program ComputeBudget111111111111111111111111111111 invoke [1]",
			"Program " + orcaProgram + " invoke [1]",
		},
	}

	protocol, ok := testRegistry().Classify(tx)
	if !ok {
		t.Fatal("expected swap classification via logs")
	}
	if protocol != "Orca" {
		t.Errorf("expected Orca, got %s", protocol)
	}
}

func TestClassify_LogScanIsDeterministic(t *testing.T) {
	// A log line naming two known programs must attribute the same protocol
	// on every run: ids are scanned in sorted order.
	registry := NewRegistry(map[string]string{
		jupiterProgram: "Jupiter",
		orcaProgram:    "Orca",
	})
	tx := &domain.RawTransaction{
		LogMessages: []string{
			"Program " + orcaProgram + " invoke [1] via " + jupiterProgram,
		},
	}

	for i := 0; i < 20; i++ {
		protocol, ok := registry.Classify(tx)
		if !ok {
			t.Fatal("expected swap classification")
		}
		if protocol != "Jupiter" {
			t.Fatalf("run %d: expected Jupiter (first sorted id), got %s", i, protocol)
		}
	}
}

func TestClassify_NoMatch(t *testing.T) {
	tx := &domain.RawTransaction{
		Instructions: []domain.Instruction{{ProgramID: "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"}},
		LogMessages:  []string{"Program log: Instruction: Transfer"},
	}

	if _, ok := testRegistry().Classify(tx); ok {
		t.Error("expected no classification for a plain transfer")
	}
}

func TestDiffBalances_InflowAndOutflow(t *testing.T) {
	pre := []domain.TokenBalance{
		{Mint: "NativeMint11111111111111111111111111111111", Amount: 50.0, Symbol: "SOL"},
		{Mint: "TokenXMint1111111111111111111111111111111", Amount: 0.0, Symbol: "TOKX"},
	}
	post := []domain.TokenBalance{
		{Mint: "NativeMint11111111111111111111111111111111", Amount: 40.0, Symbol: "SOL"},
		{Mint: "TokenXMint1111111111111111111111111111111", Amount: 2.0, Symbol: "TOKX"},
	}

	in, out := DiffBalances(pre, post)

	if len(in) != 1 || in[0].Symbol != "TOKX" || in[0].Amount != 2.0 {
		t.Errorf("unexpected inflows: %+v", in)
	}
	if len(out) != 1 || out[0].Symbol != "SOL" || out[0].Amount != 10.0 {
		t.Errorf("unexpected outflows: %+v", out)
	}
}

func TestDiffBalances_IdenticalSnapshots(t *testing.T) {
	balances := []domain.TokenBalance{
		{Mint: "NativeMint11111111111111111111111111111111", Amount: 50.0, Symbol: "SOL"},
	}

	in, out := DiffBalances(balances, balances)
	if len(in) != 0 || len(out) != 0 {
		t.Errorf("expected no flows for identical snapshots, got in=%v out=%v", in, out)
	}
}

func TestDiffBalances_NoiseFloor(t *testing.T) {
	pre := []domain.TokenBalance{{Mint: "MintA", Amount: 1.0}}
	post := []domain.TokenBalance{{Mint: "MintA", Amount: 1.0 + 5e-7}}

	in, out := DiffBalances(pre, post)
	if len(in) != 0 || len(out) != 0 {
		t.Errorf("expected sub-threshold delta to be discarded, got in=%v out=%v", in, out)
	}
}

func TestDiffBalances_AbsentEntryIsZero(t *testing.T) {
	post := []domain.TokenBalance{{Mint: "FreshMint111111111111111111111111111111111", Amount: 3.5}}

	in, out := DiffBalances(nil, post)
	if len(out) != 0 {
		t.Errorf("unexpected outflows: %+v", out)
	}
	if len(in) != 1 || in[0].Amount != 3.5 {
		t.Fatalf("unexpected inflows: %+v", in)
	}
	// No symbol anywhere: falls back to the mint prefix.
	if in[0].Symbol != "FreshMin" {
		t.Errorf("expected mint-prefix symbol, got %q", in[0].Symbol)
	}
}

func TestExtract_SwapWithNoMaterialMovement(t *testing.T) {
	balances := []domain.TokenBalance{{Mint: "MintA", Amount: 10.0, Symbol: "A"}}
	tx := &domain.RawTransaction{
		Signature:    "sig1",
		BlockTime:    1700000000,
		Instructions: []domain.Instruction{{ProgramID: jupiterProgram}},
		PreBalances:  balances,
		PostBalances: balances,
	}

	if ev := NewExtractor(testRegistry()).Extract(tx); ev != nil {
		t.Errorf("expected nil event for swap with no balance movement, got %+v", ev)
	}
}

func TestExtract_FullSwap(t *testing.T) {
	tx := &domain.RawTransaction{
		Signature:    "sig2",
		BlockTime:    1700000000,
		Instructions: []domain.Instruction{{ProgramID: orcaProgram}},
		PreBalances: []domain.TokenBalance{
			{Mint: "NativeMint11111111111111111111111111111111", Amount: 12.0, Symbol: "SOL"},
		},
		PostBalances: []domain.TokenBalance{
			{Mint: "NativeMint11111111111111111111111111111111", Amount: 10.0, Symbol: "SOL"},
			{Mint: "TokenXMint1111111111111111111111111111111", Amount: 100.0, Symbol: "TOKX"},
		},
	}

	ev := NewExtractor(testRegistry()).Extract(tx)
	if ev == nil {
		t.Fatal("expected swap event")
	}
	if ev.Protocol != "Orca" || ev.Signature != "sig2" || ev.Timestamp != 1700000000 {
		t.Errorf("unexpected event header: %+v", ev)
	}
	if len(ev.TokensIn) != 1 || ev.TokensIn[0].Symbol != "TOKX" || ev.TokensIn[0].Amount != 100.0 {
		t.Errorf("unexpected tokens in: %+v", ev.TokensIn)
	}
	if len(ev.TokensOut) != 1 || ev.TokensOut[0].Symbol != "SOL" || ev.TokensOut[0].Amount != 2.0 {
		t.Errorf("unexpected tokens out: %+v", ev.TokensOut)
	}
}
