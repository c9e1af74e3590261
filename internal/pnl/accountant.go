// Package pnl maintains per-token trading ledgers for a wallet and derives
// realized/unrealized PnL and portfolio aggregates from its swap events.
package pnl

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"solana-wallet-profiler/internal/domain"
)

// Pricer resolves USD prices at swap time. *pricing.Resolver satisfies it.
type Pricer interface {
	NativePrice(ctx context.Context, ts int64) (float64, error)
	TokenPriceUSD(ctx context.Context, mint string, ts int64) (float64, error)
}

// TokenPolicy tells the accountant which identifiers are the native asset and
// which are excluded from accounting. *config.Config satisfies it.
type TokenPolicy interface {
	IsNative(mint string) bool
	IsExcluded(mint string) bool
}

// Accountant applies swap events to per-token ledgers. One Accountant serves
// one wallet analysis run; it is not safe for concurrent use.
type Accountant struct {
	pricer Pricer
	policy TokenPolicy
	log    *zap.Logger

	ledger map[string]*domain.TokenLedgerEntry // keyed by token symbol
	mints  map[string]string                   // symbol -> mint, for mark-to-market
}

// NewAccountant creates an accountant with empty ledgers.
func NewAccountant(pricer Pricer, policy TokenPolicy, log *zap.Logger) *Accountant {
	if log == nil {
		log = zap.NewNop()
	}
	return &Accountant{
		pricer: pricer,
		policy: policy,
		log:    log,
		ledger: make(map[string]*domain.TokenLedgerEntry),
		mints:  make(map[string]string),
	}
}

// Reset clears all ledgers for a new analysis batch.
func (a *Accountant) Reset() {
	a.ledger = make(map[string]*domain.TokenLedgerEntry)
	a.mints = make(map[string]string)
}

// ProcessSwap applies one swap event to the ledgers. Each token leg is
// handled independently: an excluded token or an unresolvable price skips
// that leg without touching its ledger or failing the swap.
func (a *Accountant) ProcessSwap(ctx context.Context, ev *domain.SwapEvent) {
	for _, leg := range ev.TokensOut {
		a.applyLeg(ctx, leg, ev.Timestamp, false)
	}
	for _, leg := range ev.TokensIn {
		a.applyLeg(ctx, leg, ev.Timestamp, true)
	}
}

// applyLeg updates one token's ledger for one swap leg. inflow means the
// wallet received the token.
func (a *Accountant) applyLeg(ctx context.Context, leg domain.TokenAmount, ts int64, inflow bool) {
	if a.policy.IsExcluded(leg.Mint) {
		return
	}

	var price float64
	var err error
	if a.policy.IsNative(leg.Mint) {
		price, err = a.pricer.NativePrice(ctx, ts)
	} else {
		price, err = a.pricer.TokenPriceUSD(ctx, leg.Mint, ts)
	}
	if err != nil {
		a.log.Debug("price unresolvable, leg skipped",
			zap.String("symbol", leg.Symbol), zap.String("mint", leg.Mint), zap.Int64("ts", ts))
		return
	}
	value := leg.Amount * price

	entry, ok := a.ledger[leg.Symbol]
	if !ok {
		entry = &domain.TokenLedgerEntry{FirstTradeTime: ts}
		a.ledger[leg.Symbol] = entry
		a.mints[leg.Symbol] = leg.Mint
	}

	// Receiving a token increases USD invested and decreases the balance
	// field; sending does the opposite. Realized-PnL sign depends on this.
	if inflow {
		entry.USDInvested += value
		entry.Balance -= leg.Amount
	} else {
		entry.USDWithdrawn += value
		entry.Balance += leg.Amount
	}

	entry.TradeCount++
	if ts < entry.FirstTradeTime {
		entry.FirstTradeTime = ts
	}
	if ts > entry.LastTradeTime {
		entry.LastTradeTime = ts
	}
}

// Finalize computes realized and unrealized PnL for every ledger entry.
// now is the analysis instant used for mark-to-market pricing.
func (a *Accountant) Finalize(ctx context.Context, now int64) {
	for symbol, entry := range a.ledger {
		entry.RealizedPnL = realized(entry)
		entry.UnrealizedPnL = a.unrealized(ctx, symbol, entry, now)
	}
}

// realized applies the three-branch rule over a finished ledger.
func realized(e *domain.TokenLedgerEntry) float64 {
	switch {
	case e.USDInvested > 0 && e.USDWithdrawn == 0 && e.Balance > 0:
		// Position fully open, nothing closed yet.
		return 0
	case e.Balance < 0:
		// Anomalous position (received more than the ledger convention can
		// account for); excluded from realized accounting.
		return 0
	default:
		return e.USDWithdrawn - e.USDInvested
	}
}

// unrealized marks a positive balance to market. Unresolvable prices yield 0.
func (a *Accountant) unrealized(ctx context.Context, symbol string, e *domain.TokenLedgerEntry, now int64) float64 {
	if e.Balance <= 0 {
		return 0
	}
	mint := a.mints[symbol]

	var price float64
	var err error
	if a.policy.IsNative(mint) {
		price, err = a.pricer.NativePrice(ctx, now)
	} else {
		price, err = a.pricer.TokenPriceUSD(ctx, mint, now)
	}
	if err != nil {
		a.log.Info("current price unresolvable, unrealized set to 0",
			zap.String("symbol", symbol), zap.String("mint", mint))
		return 0
	}
	return e.Balance * price
}

// Metrics aggregates the ledgers into portfolio-level trade metrics.
// Finalize must have been called first.
func (a *Accountant) Metrics() *domain.TradeMetrics {
	m := &domain.TradeMetrics{}
	for _, entry := range a.ledger {
		m.TotalRealizedPnL += entry.RealizedPnL
		m.TotalUnrealizedPnL += entry.UnrealizedPnL
		m.TotalInvested += entry.USDInvested
		m.TotalTrades += entry.TradeCount
		m.TotalVolume += entry.USDInvested + entry.USDWithdrawn
		m.TotalTokensTraded++
		if entry.USDWithdrawn+entry.UnrealizedPnL > entry.USDInvested {
			m.WinningTokens++
		}
	}
	m.GrossProfit = m.TotalRealizedPnL + m.TotalUnrealizedPnL
	if m.TotalTokensTraded > 0 {
		m.WinRate = float64(m.WinningTokens) / float64(m.TotalTokensTraded) * 100
	}
	if m.TotalInvested > 0 {
		m.TotalROI = m.GrossProfit / m.TotalInvested * 100
	}
	return m
}

// TokenSummaries exports the per-token rows, sorted by symbol for stable
// output.
func (a *Accountant) TokenSummaries() []domain.TokenSummary {
	symbols := make([]string, 0, len(a.ledger))
	for symbol := range a.ledger {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	out := make([]domain.TokenSummary, 0, len(symbols))
	for _, symbol := range symbols {
		e := a.ledger[symbol]
		out = append(out, domain.TokenSummary{
			Token:          symbol,
			USDInvested:    e.USDInvested,
			USDWithdrawn:   e.USDWithdrawn,
			Balance:        e.Balance,
			TradeCount:     e.TradeCount,
			FirstTradeTime: e.FirstTradeTime,
			LastTradeTime:  e.LastTradeTime,
			RealizedPnL:    e.RealizedPnL,
			UnrealizedPnL:  e.UnrealizedPnL,
		})
	}
	return out
}

// Entry returns the ledger entry for a symbol, or nil.
func (a *Accountant) Entry(symbol string) *domain.TokenLedgerEntry {
	return a.ledger[symbol]
}
