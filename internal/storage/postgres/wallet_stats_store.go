package postgres

import (
	"context"
	"fmt"

	"solana-wallet-profiler/internal/domain"
	"solana-wallet-profiler/internal/storage"
)

// WalletStatsStore implements storage.WalletStatsStore using PostgreSQL.
type WalletStatsStore struct {
	pool *Pool
}

// NewWalletStatsStore creates a new WalletStatsStore.
func NewWalletStatsStore(pool *Pool) *WalletStatsStore {
	return &WalletStatsStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletStatsStore = (*WalletStatsStore)(nil)

// UpsertBehaviorMetrics writes the classification-side columns for a wallet,
// creating the row if absent.
func (s *WalletStatsStore) UpsertBehaviorMetrics(ctx context.Context, address string, m *domain.BehaviorMetrics) error {
	query := `
		INSERT INTO wallet_stats (
			address, is_bot, bot_probability, total_swaps,
			transactions_analyzed, early_detection, analysis_time, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (address) DO UPDATE SET
			is_bot                = EXCLUDED.is_bot,
			bot_probability       = EXCLUDED.bot_probability,
			total_swaps           = EXCLUDED.total_swaps,
			transactions_analyzed = EXCLUDED.transactions_analyzed,
			early_detection       = EXCLUDED.early_detection,
			analysis_time         = EXCLUDED.analysis_time,
			updated_at            = now()
	`

	_, err := s.pool.Exec(ctx, query,
		address,
		m.IsBot,
		m.BotProbability,
		m.TotalSwaps,
		m.TransactionsAnalyzed,
		m.EarlyDetection,
		m.AnalysisTime,
	)
	if err != nil {
		return fmt.Errorf("upsert behavior metrics: %w", err)
	}
	return nil
}

// UpsertTradeMetrics writes the PnL-side columns for a wallet, creating the
// row if absent.
func (s *WalletStatsStore) UpsertTradeMetrics(ctx context.Context, address string, m *domain.TradeMetrics) error {
	query := `
		INSERT INTO wallet_stats (
			address, total_realized_pnl, total_unrealized_pnl, gross_profit,
			total_invested, total_trades, total_volume, winning_trades,
			total_token_traded, win_rate, total_roi, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		ON CONFLICT (address) DO UPDATE SET
			total_realized_pnl   = EXCLUDED.total_realized_pnl,
			total_unrealized_pnl = EXCLUDED.total_unrealized_pnl,
			gross_profit         = EXCLUDED.gross_profit,
			total_invested       = EXCLUDED.total_invested,
			total_trades         = EXCLUDED.total_trades,
			total_volume         = EXCLUDED.total_volume,
			winning_trades       = EXCLUDED.winning_trades,
			total_token_traded   = EXCLUDED.total_token_traded,
			win_rate             = EXCLUDED.win_rate,
			total_roi            = EXCLUDED.total_roi,
			updated_at           = now()
	`

	_, err := s.pool.Exec(ctx, query,
		address,
		m.TotalRealizedPnL,
		m.TotalUnrealizedPnL,
		m.GrossProfit,
		m.TotalInvested,
		m.TotalTrades,
		m.TotalVolume,
		m.WinningTokens,
		m.TotalTokensTraded,
		m.WinRate,
		m.TotalROI,
	)
	if err != nil {
		return fmt.Errorf("upsert trade metrics: %w", err)
	}
	return nil
}

// GetByAddress retrieves a wallet's row. Returns ErrNotFound if not exists.
func (s *WalletStatsStore) GetByAddress(ctx context.Context, address string) (*domain.WalletStats, error) {
	query := `
		SELECT address, is_bot, bot_probability, total_swaps,
		       transactions_analyzed, early_detection, analysis_time,
		       total_realized_pnl, total_unrealized_pnl, gross_profit,
		       total_invested, total_trades, total_volume, winning_trades,
		       total_token_traded, win_rate, total_roi, updated_at
		FROM wallet_stats
		WHERE address = $1
	`

	var ws domain.WalletStats
	err := s.pool.QueryRow(ctx, query, address).Scan(
		&ws.Address,
		&ws.Behavior.IsBot,
		&ws.Behavior.BotProbability,
		&ws.Behavior.TotalSwaps,
		&ws.Behavior.TransactionsAnalyzed,
		&ws.Behavior.EarlyDetection,
		&ws.Behavior.AnalysisTime,
		&ws.Trade.TotalRealizedPnL,
		&ws.Trade.TotalUnrealizedPnL,
		&ws.Trade.GrossProfit,
		&ws.Trade.TotalInvested,
		&ws.Trade.TotalTrades,
		&ws.Trade.TotalVolume,
		&ws.Trade.WinningTokens,
		&ws.Trade.TotalTokensTraded,
		&ws.Trade.WinRate,
		&ws.Trade.TotalROI,
		&ws.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get wallet stats by address: %w", err)
	}
	return &ws, nil
}
