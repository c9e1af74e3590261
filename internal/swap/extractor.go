package swap

import (
	"math"
	"sort"

	"solana-wallet-profiler/internal/domain"
)

// noiseFloor discards balance deltas attributable to rounding of the
// decimal-adjusted amounts rather than real movement.
const noiseFloor = 1e-6

// Extractor turns raw transactions into swap events.
type Extractor struct {
	registry *Registry
}

// NewExtractor creates an extractor over the given program registry.
func NewExtractor(registry *Registry) *Extractor {
	return &Extractor{registry: registry}
}

// Extract returns the swap event derived from tx, or nil when the transaction
// is not a swap or moved no token above the noise floor.
func (e *Extractor) Extract(tx *domain.RawTransaction) *domain.SwapEvent {
	protocol, ok := e.registry.Classify(tx)
	if !ok {
		return nil
	}

	in, out := DiffBalances(tx.PreBalances, tx.PostBalances)
	if len(in) == 0 && len(out) == 0 {
		return nil
	}

	return &domain.SwapEvent{
		Signature: tx.Signature,
		Timestamp: tx.BlockTime,
		Protocol:  protocol,
		TokensIn:  in,
		TokensOut: out,
	}
}

// DiffBalances computes the wallet's token flows between two balance
// snapshots. A mint absent from one snapshot counts as zero there. Positive
// deltas are tokens received, negative deltas tokens sent; amounts are always
// reported positive. Deltas at or below the noise floor are dropped.
func DiffBalances(pre, post []domain.TokenBalance) (in, out []domain.TokenAmount) {
	preByMint := make(map[string]domain.TokenBalance, len(pre))
	for _, b := range pre {
		preByMint[b.Mint] = b
	}
	postByMint := make(map[string]domain.TokenBalance, len(post))
	for _, b := range post {
		postByMint[b.Mint] = b
	}

	mints := make([]string, 0, len(preByMint)+len(postByMint))
	for mint := range preByMint {
		mints = append(mints, mint)
	}
	for mint := range postByMint {
		if _, seen := preByMint[mint]; !seen {
			mints = append(mints, mint)
		}
	}
	sort.Strings(mints)

	for _, mint := range mints {
		delta := postByMint[mint].Amount - preByMint[mint].Amount
		if math.Abs(delta) <= noiseFloor {
			continue
		}
		amount := domain.TokenAmount{
			Mint:   mint,
			Amount: math.Abs(delta),
			Symbol: displaySymbol(mint, preByMint[mint], postByMint[mint]),
		}
		if delta > 0 {
			in = append(in, amount)
		} else {
			out = append(out, amount)
		}
	}
	return in, out
}

// displaySymbol prefers the post-snapshot symbol, then the pre-snapshot one,
// then a mint prefix.
func displaySymbol(mint string, pre, post domain.TokenBalance) string {
	if post.Symbol != "" {
		return post.Symbol
	}
	if pre.Symbol != "" {
		return pre.Symbol
	}
	if len(mint) > 8 {
		return mint[:8]
	}
	return mint
}
