package domain

import "time"

// WalletStats is the persisted per-wallet row: behavior classification plus
// trade metrics, upserted under the wallet address.
type WalletStats struct {
	Address   string
	Behavior  BehaviorMetrics
	Trade     TradeMetrics
	UpdatedAt time.Time
}
