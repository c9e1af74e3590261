package clickhouse

import (
	"context"
	"fmt"

	"solana-wallet-profiler/internal/domain"
	"solana-wallet-profiler/internal/storage"
)

// SwapArchiveStore implements storage.SwapArchiveStore using ClickHouse.
// Token legs are stored as parallel arrays; the ReplacingMergeTree engine
// collapses re-archived (wallet, signature) pairs.
type SwapArchiveStore struct {
	conn *Conn
}

// NewSwapArchiveStore creates a new SwapArchiveStore.
func NewSwapArchiveStore(conn *Conn) *SwapArchiveStore {
	return &SwapArchiveStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SwapArchiveStore = (*SwapArchiveStore)(nil)

// InsertBatch archives a wallet's swap events.
func (s *SwapArchiveStore) InsertBatch(ctx context.Context, wallet string, swaps []*domain.SwapEvent) error {
	if len(swaps) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO swap_events (
			wallet, signature, timestamp, protocol,
			in_mints, in_amounts, in_symbols,
			out_mints, out_amounts, out_symbols
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, ev := range swaps {
		inMints, inAmounts, inSymbols := splitLegs(ev.TokensIn)
		outMints, outAmounts, outSymbols := splitLegs(ev.TokensOut)

		err = batch.Append(
			wallet, ev.Signature, ev.Timestamp, ev.Protocol,
			inMints, inAmounts, inSymbols,
			outMints, outAmounts, outSymbols,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByWallet retrieves a wallet's archived swaps, ordered by timestamp ASC.
func (s *SwapArchiveStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.SwapEvent, error) {
	query := `
		SELECT signature, timestamp, protocol,
		       in_mints, in_amounts, in_symbols,
		       out_mints, out_amounts, out_symbols
		FROM swap_events FINAL
		WHERE wallet = ?
		ORDER BY timestamp ASC, signature ASC
	`

	rows, err := s.conn.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("query swaps by wallet: %w", err)
	}
	defer rows.Close()

	var events []*domain.SwapEvent
	for rows.Next() {
		var ev domain.SwapEvent
		var inMints, inSymbols, outMints, outSymbols []string
		var inAmounts, outAmounts []float64

		err := rows.Scan(
			&ev.Signature, &ev.Timestamp, &ev.Protocol,
			&inMints, &inAmounts, &inSymbols,
			&outMints, &outAmounts, &outSymbols,
		)
		if err != nil {
			return nil, fmt.Errorf("scan swap row: %w", err)
		}

		ev.TokensIn = joinLegs(inMints, inAmounts, inSymbols)
		ev.TokensOut = joinLegs(outMints, outAmounts, outSymbols)
		events = append(events, &ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swap rows: %w", err)
	}
	return events, nil
}

func splitLegs(legs []domain.TokenAmount) (mints []string, amounts []float64, symbols []string) {
	mints = make([]string, len(legs))
	amounts = make([]float64, len(legs))
	symbols = make([]string, len(legs))
	for i, leg := range legs {
		mints[i] = leg.Mint
		amounts[i] = leg.Amount
		symbols[i] = leg.Symbol
	}
	return mints, amounts, symbols
}

func joinLegs(mints []string, amounts []float64, symbols []string) []domain.TokenAmount {
	legs := make([]domain.TokenAmount, 0, len(mints))
	for i := range mints {
		legs = append(legs, domain.TokenAmount{
			Mint:   mints[i],
			Amount: amounts[i],
			Symbol: symbols[i],
		})
	}
	return legs
}
