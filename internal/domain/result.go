package domain

// EarlyDetection records whether bot detection halted collection before the
// full transaction window was fetched.
type EarlyDetection struct {
	Triggered            bool `json:"triggered"`
	TransactionsAnalyzed int  `json:"transactions_analyzed"`
}

// AnalysisResult is the outcome of one wallet analysis run.
// Produced once per run; immutable thereafter. TradeMetrics and TokenSummary
// are nil when detailed PnL accounting was skipped or not yet performed.
type AnalysisResult struct {
	WalletAddress     string         `json:"wallet_address"`
	TotalTransactions int            `json:"total_transactions"`
	BotProbability    float64        `json:"bot_probability"`
	EarlyDetection    EarlyDetection `json:"early_detection"`
	Swaps             []*SwapEvent   `json:"swaps"`
	ExecutionTime     float64        `json:"execution_time"` // seconds
	TradeMetrics      *TradeMetrics  `json:"trade_metrics,omitempty"`
	TokenSummary      []TokenSummary `json:"token_summary,omitempty"`
}

// BehaviorMetrics is the classification-side summary persisted per wallet.
type BehaviorMetrics struct {
	IsBot                bool    `json:"is_bot"`
	BotProbability       float64 `json:"bot_probability"`
	TotalSwaps           int     `json:"total_swaps"`
	TransactionsAnalyzed int     `json:"transactions_analyzed"`
	EarlyDetection       bool    `json:"early_detection"`
	AnalysisTime         float64 `json:"analysis_time"` // seconds
}
