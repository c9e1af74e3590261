package storage

import (
	"context"

	"solana-wallet-profiler/internal/domain"
)

// WalletStatsStore provides access to wallet_stats storage. Rows are keyed by
// wallet address; repeated analyses of the same wallet upsert in place.
type WalletStatsStore interface {
	// UpsertBehaviorMetrics writes the classification-side columns for a
	// wallet, creating the row if absent.
	UpsertBehaviorMetrics(ctx context.Context, address string, m *domain.BehaviorMetrics) error

	// UpsertTradeMetrics writes the PnL-side columns for a wallet, creating
	// the row if absent.
	UpsertTradeMetrics(ctx context.Context, address string, m *domain.TradeMetrics) error

	// GetByAddress retrieves a wallet's row. Returns ErrNotFound if not exists.
	GetByAddress(ctx context.Context, address string) (*domain.WalletStats, error)
}

// SwapArchiveStore provides access to the append-only swap event archive.
type SwapArchiveStore interface {
	// InsertBatch archives a wallet's swap events. Re-archiving the same
	// (wallet, signature) pair is tolerated; readers see one row per pair.
	InsertBatch(ctx context.Context, wallet string, swaps []*domain.SwapEvent) error

	// GetByWallet retrieves a wallet's archived swaps, ordered by timestamp ASC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.SwapEvent, error)
}
