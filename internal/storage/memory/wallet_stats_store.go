// Package memory provides in-memory storage backends for tests and runs
// without external databases.
package memory

import (
	"context"
	"sync"
	"time"

	"solana-wallet-profiler/internal/domain"
	"solana-wallet-profiler/internal/storage"
)

// WalletStatsStore is an in-memory implementation of storage.WalletStatsStore.
type WalletStatsStore struct {
	mu   sync.RWMutex
	data map[string]*domain.WalletStats // keyed by address
}

// NewWalletStatsStore creates a new in-memory wallet stats store.
func NewWalletStatsStore() *WalletStatsStore {
	return &WalletStatsStore{
		data: make(map[string]*domain.WalletStats),
	}
}

// Verify interface compliance at compile time.
var _ storage.WalletStatsStore = (*WalletStatsStore)(nil)

// UpsertBehaviorMetrics writes the classification-side fields for a wallet.
func (s *WalletStatsStore) UpsertBehaviorMetrics(_ context.Context, address string, m *domain.BehaviorMetrics) error {
	if address == "" || m == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ws := s.ensure(address)
	ws.Behavior = *m
	ws.UpdatedAt = time.Now()
	return nil
}

// UpsertTradeMetrics writes the PnL-side fields for a wallet.
func (s *WalletStatsStore) UpsertTradeMetrics(_ context.Context, address string, m *domain.TradeMetrics) error {
	if address == "" || m == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ws := s.ensure(address)
	ws.Trade = *m
	ws.UpdatedAt = time.Now()
	return nil
}

// GetByAddress retrieves a wallet's row. Returns ErrNotFound if not exists.
func (s *WalletStatsStore) GetByAddress(_ context.Context, address string) (*domain.WalletStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, exists := s.data[address]
	if !exists {
		return nil, storage.ErrNotFound
	}

	// Return a copy
	statsCopy := *ws
	return &statsCopy, nil
}

func (s *WalletStatsStore) ensure(address string) *domain.WalletStats {
	ws, exists := s.data[address]
	if !exists {
		ws = &domain.WalletStats{Address: address}
		s.data[address] = ws
	}
	return ws
}
