package domain

// TokenLedgerEntry tracks trading activity for one token symbol within a
// single analysis run. Created on first encounter of the symbol, mutated by
// every swap touching it, never deleted until the next run clears the set.
//
// Balance follows the source accounting convention: receiving a token
// decreases the balance field, sending it increases it. Realized-PnL sign
// correctness depends on this; do not invert it.
type TokenLedgerEntry struct {
	RealizedPnL    float64 // USD, computed once after all swaps are applied
	UnrealizedPnL  float64 // USD, mark-to-market of positive balances
	USDInvested    float64 // monotonically non-decreasing
	USDWithdrawn   float64 // monotonically non-decreasing
	Balance        float64 // native units, may go negative
	TradeCount     int     // number of swap legs applied
	FirstTradeTime int64   // Unix seconds of first swap touching the token
	LastTradeTime  int64   // Unix seconds of last swap touching the token
}

// TokenSummary is the per-token export row, one per distinct symbol traded.
type TokenSummary struct {
	Token          string  `json:"token"`
	USDInvested    float64 `json:"usd_invested"`
	USDWithdrawn   float64 `json:"usd_withdrawn"`
	Balance        float64 `json:"balance"`
	TradeCount     int     `json:"trade_count"`
	FirstTradeTime int64   `json:"first_trade_date"`
	LastTradeTime  int64   `json:"last_trade_date"`
	RealizedPnL    float64 `json:"realized_pnl"`
	UnrealizedPnL  float64 `json:"unrealized_pnl"`
}

// TradeMetrics aggregates the ledger across all tokens of one wallet.
type TradeMetrics struct {
	TotalRealizedPnL   float64 `json:"total_realized_pnl"`
	TotalUnrealizedPnL float64 `json:"total_unrealized_pnl"`
	GrossProfit        float64 `json:"gross_profit"`
	TotalInvested      float64 `json:"total_invested"`
	TotalTrades        int     `json:"total_trades"`
	TotalVolume        float64 `json:"total_volume"`
	WinningTokens      int     `json:"winning_trades"`
	TotalTokensTraded  int     `json:"total_token_traded"`
	WinRate            float64 `json:"win_rate"`  // percent
	TotalROI           float64 `json:"total_roi"` // percent
}
