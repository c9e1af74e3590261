package solana

import (
	"context"

	"solana-wallet-profiler/internal/domain"
)

// LedgerClient is the ledger-source interface the analyzer depends on.
type LedgerClient interface {
	// GetSignaturesForAddress retrieves up to limit signatures for an address,
	// newest first.
	GetSignaturesForAddress(ctx context.Context, address string, limit int) ([]SignatureInfo, error)

	// GetTransaction retrieves a transaction by signature.
	// Returns (nil, nil) when the ledger does not know the signature.
	GetTransaction(ctx context.Context, signature string) (*domain.RawTransaction, error)
}

// SignatureInfo is one entry of a getSignaturesForAddress response.
type SignatureInfo struct {
	Signature string
	Slot      int64
	BlockTime *int64
	Err       interface{}
}
