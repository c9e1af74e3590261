// Package stub provides an in-memory LedgerClient for tests and offline runs.
package stub

import (
	"context"
	"sync"

	"solana-wallet-profiler/internal/domain"
	"solana-wallet-profiler/internal/solana"
)

// Client is an in-memory LedgerClient. Signatures are served in the order
// given (callers expect newest first, matching the real ledger).
type Client struct {
	mu           sync.Mutex
	Signatures   []solana.SignatureInfo
	Transactions map[string]*domain.RawTransaction

	SignatureCalls   int
	TransactionCalls int

	// Errs, when set, are returned by the corresponding method.
	SignaturesErr  error
	TransactionErr error
}

var _ solana.LedgerClient = (*Client)(nil)

// New creates an empty stub client.
func New() *Client {
	return &Client{Transactions: make(map[string]*domain.RawTransaction)}
}

// AddTransaction registers a transaction and appends its signature entry.
func (c *Client) AddTransaction(tx *domain.RawTransaction) {
	bt := tx.BlockTime
	c.Signatures = append(c.Signatures, solana.SignatureInfo{
		Signature: tx.Signature,
		Slot:      tx.Slot,
		BlockTime: &bt,
	})
	c.Transactions[tx.Signature] = tx
}

// GetSignaturesForAddress returns the configured signatures, truncated to limit.
func (c *Client) GetSignaturesForAddress(_ context.Context, _ string, limit int) ([]solana.SignatureInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SignatureCalls++
	if c.SignaturesErr != nil {
		return nil, c.SignaturesErr
	}
	sigs := c.Signatures
	if limit > 0 && len(sigs) > limit {
		sigs = sigs[:limit]
	}
	out := make([]solana.SignatureInfo, len(sigs))
	copy(out, sigs)
	return out, nil
}

// GetTransaction returns the configured transaction, or (nil, nil) if unknown.
func (c *Client) GetTransaction(_ context.Context, signature string) (*domain.RawTransaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.TransactionCalls++
	if c.TransactionErr != nil {
		return nil, c.TransactionErr
	}
	return c.Transactions[signature], nil
}
