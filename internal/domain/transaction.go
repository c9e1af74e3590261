// Package domain holds the data types shared across the profiler: raw ledger
// transactions, derived swap events, per-token ledgers and analysis results.
package domain

// Instruction is one top-level instruction of a transaction. Only the owning
// program matters for swap classification.
type Instruction struct {
	ProgramID string
}

// TokenBalance is a wallet's balance in one token at a snapshot boundary.
type TokenBalance struct {
	Mint   string
	Amount float64 // UI units (decimal-adjusted)
	Symbol string  // may be empty; display fallback is derived from the mint
}

// RawTransaction is a confirmed ledger transaction as fetched from the RPC
// node, reduced to the fields swap extraction and feature computation need.
type RawTransaction struct {
	Signature  string
	Signatures []string // all signatures; first is the transaction id
	Slot       int64
	BlockTime  int64 // Unix seconds; 0 when the node did not report one
	Fee        uint64

	Instructions []Instruction
	LogMessages  []string
	AccountKeys  []string

	PreBalances  []TokenBalance // token balances before execution
	PostBalances []TokenBalance // token balances after execution
}
