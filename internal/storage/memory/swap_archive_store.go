package memory

import (
	"context"
	"sort"
	"sync"

	"solana-wallet-profiler/internal/domain"
	"solana-wallet-profiler/internal/storage"
)

// SwapArchiveStore is an in-memory implementation of storage.SwapArchiveStore.
type SwapArchiveStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.SwapEvent // wallet -> signature -> event
}

// NewSwapArchiveStore creates a new in-memory swap archive.
func NewSwapArchiveStore() *SwapArchiveStore {
	return &SwapArchiveStore{
		data: make(map[string]map[string]*domain.SwapEvent),
	}
}

// Verify interface compliance at compile time.
var _ storage.SwapArchiveStore = (*SwapArchiveStore)(nil)

// InsertBatch archives a wallet's swap events. Re-archived signatures replace
// the stored event, mirroring the ReplacingMergeTree backend.
func (s *SwapArchiveStore) InsertBatch(_ context.Context, wallet string, swaps []*domain.SwapEvent) error {
	if wallet == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bySig, exists := s.data[wallet]
	if !exists {
		bySig = make(map[string]*domain.SwapEvent)
		s.data[wallet] = bySig
	}
	for _, ev := range swaps {
		eventCopy := *ev
		bySig[ev.Signature] = &eventCopy
	}
	return nil
}

// GetByWallet retrieves a wallet's archived swaps, ordered by timestamp ASC.
func (s *SwapArchiveStore) GetByWallet(_ context.Context, wallet string) ([]*domain.SwapEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SwapEvent
	for _, ev := range s.data[wallet] {
		eventCopy := *ev
		result = append(result, &eventCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp < result[j].Timestamp
		}
		return result[i].Signature < result[j].Signature
	})

	return result, nil
}
