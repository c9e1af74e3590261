// Package pricing resolves USD prices for the native asset and arbitrary
// tokens at the instants swaps occurred, with an idempotent persisted cache
// and a deterministic source-fallback chain.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrPriceNotFound is returned when every source in the fallback chain failed
// to produce a price. Callers skip the affected value rather than aborting.
var ErrPriceNotFound = errors.New("price not found")

// DefaultMaxRetries bounds the step-back-one-hour retry loop for native
// price history.
const DefaultMaxRetries = 3

// Resolver answers price lookups against a cache plus three remote sources.
type Resolver struct {
	cache      *Cache
	nativeHist NativeHistorySource
	candles    TokenCandleSource
	quotes     QuoteSource
	maxRetries int
	log        *zap.Logger
	now        func() time.Time
}

// ResolverOptions configures a Resolver. Cache is required; sources may be
// nil, in which case the corresponding chain link reports no data.
type ResolverOptions struct {
	Cache         *Cache
	NativeHistory NativeHistorySource
	TokenCandles  TokenCandleSource
	Quotes        QuoteSource
	MaxRetries    int
	Logger        *zap.Logger
	Now           func() time.Time // test hook; defaults to time.Now
}

// NewResolver creates a Resolver.
func NewResolver(opts ResolverOptions) *Resolver {
	r := &Resolver{
		cache:      opts.Cache,
		nativeHist: opts.NativeHistory,
		candles:    opts.TokenCandles,
		quotes:     opts.Quotes,
		maxRetries: opts.MaxRetries,
		log:        opts.Logger,
		now:        opts.Now,
	}
	if r.maxRetries <= 0 {
		r.maxRetries = DefaultMaxRetries
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// RoundToHour rounds a Unix-seconds timestamp to the nearest hour boundary
// (half up on minute >= 30). If rounding lands in the future relative to
// now, the result is pushed back two hours so a future price is never
// requested.
func RoundToHour(ts int64, now time.Time) time.Time {
	t := time.Unix(ts, 0).UTC()
	rounded := t.Truncate(time.Hour)
	if t.Minute() >= 30 {
		rounded = rounded.Add(time.Hour)
	}
	if rounded.After(now) {
		rounded = rounded.Add(-2 * time.Hour)
	}
	return rounded
}

// NativePrice returns the USD price of the native asset at the given
// Unix-seconds timestamp. The hour window is stepped back one hour per
// attempt when the history source has no data; the value found is cached
// under the originally requested hour.
func (r *Resolver) NativePrice(ctx context.Context, ts int64) (float64, error) {
	rounded := RoundToHour(ts, r.now())
	key := rounded.Format(time.RFC3339)

	if price, ok := r.cache.get(bucketNative, key); ok {
		return price, nil
	}
	if r.nativeHist == nil {
		return 0, ErrPriceNotFound
	}

	// Bounded step-back loop: attempt 0 is the requested hour, each further
	// attempt moves one hour into the past. Stepping back is reserved for
	// windows the source reports empty; a transient remote error must not
	// shift the hour and fetch a neighboring close instead.
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		start := rounded.Add(-time.Duration(attempt) * time.Hour)
		price, err := r.nativeHist.HourlyClose(ctx, start)
		if err != nil {
			if errors.Is(err, ErrNoData) {
				continue
			}
			r.log.Warn("native price fetch failed",
				zap.Time("window", start), zap.Error(err))
			return 0, ErrPriceNotFound
		}
		price = r.cache.put(bucketNative, key, price)
		if err := r.cache.Flush(); err != nil {
			r.log.Warn("price cache flush failed", zap.Error(err))
		}
		return price, nil
	}

	r.log.Warn("native price unavailable after retries",
		zap.String("hour", key), zap.Int("retries", r.maxRetries))
	return 0, ErrPriceNotFound
}

// TokenPriceInNative returns the token price denominated in the native
// asset. The token candle source is tried first; on failure the USD quote is
// divided by the native price at the same timestamp.
func (r *Resolver) TokenPriceInNative(ctx context.Context, mint string, ts int64) (float64, error) {
	key := r.tokenKey(mint, ts)
	if price, ok := r.cache.get(bucketTokenNative, key); ok {
		return price, nil
	}

	if r.candles != nil {
		price, err := r.candles.LatestClose(ctx, mint)
		if err == nil {
			return r.storeToken(bucketTokenNative, key, price), nil
		}
		r.logMiss("token candle lookup failed", mint, err)
	}

	// Fallback: USD quote converted through the native price.
	if r.quotes != nil {
		usd, err := r.quotes.USDPrice(ctx, mint)
		if err != nil {
			r.logMiss("token quote lookup failed", mint, err)
			return 0, ErrPriceNotFound
		}
		nativeUSD, err := r.NativePrice(ctx, ts)
		if err != nil || nativeUSD == 0 {
			return 0, ErrPriceNotFound
		}
		return r.storeToken(bucketTokenNative, key, usd/nativeUSD), nil
	}

	return 0, ErrPriceNotFound
}

// TokenPriceInUSD returns the token's USD price from the quote source
// directly. No further fallback.
func (r *Resolver) TokenPriceInUSD(ctx context.Context, mint string, ts int64) (float64, error) {
	key := r.tokenKey(mint, ts)
	if price, ok := r.cache.get(bucketTokenUSD, key); ok {
		return price, nil
	}
	if r.quotes == nil {
		return 0, ErrPriceNotFound
	}
	price, err := r.quotes.USDPrice(ctx, mint)
	if err != nil {
		r.logMiss("token USD quote failed", mint, err)
		return 0, ErrPriceNotFound
	}
	return r.storeToken(bucketTokenUSD, key, price), nil
}

// TokenPriceUSD resolves a non-native token's USD price by the composite
// rule: token-in-native times native price first, direct USD quote second.
// Returns ErrPriceNotFound when both chains fail; the caller skips that
// token's value rather than failing the run.
func (r *Resolver) TokenPriceUSD(ctx context.Context, mint string, ts int64) (float64, error) {
	if inNative, err := r.TokenPriceInNative(ctx, mint, ts); err == nil {
		nativeUSD, nerr := r.NativePrice(ctx, ts)
		if nerr == nil {
			return inNative * nativeUSD, nil
		}
	}
	if usd, err := r.TokenPriceInUSD(ctx, mint, ts); err == nil {
		return usd, nil
	}
	return 0, ErrPriceNotFound
}

func (r *Resolver) tokenKey(mint string, ts int64) string {
	rounded := RoundToHour(ts, r.now())
	return fmt.Sprintf("%s_%d", mint, rounded.Unix())
}

func (r *Resolver) storeToken(bucket, key string, price float64) float64 {
	price = r.cache.put(bucket, key, price)
	if err := r.cache.Flush(); err != nil {
		r.log.Warn("price cache flush failed", zap.Error(err))
	}
	return price
}

func (r *Resolver) logMiss(msg, mint string, err error) {
	if errors.Is(err, ErrNoData) {
		r.log.Debug(msg, zap.String("mint", mint))
		return
	}
	r.log.Warn(msg, zap.String("mint", mint), zap.Error(err))
}
