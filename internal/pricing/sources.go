package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// ErrNoData is returned by sources when the remote answered but carried no
// usable price for the requested asset/window.
var ErrNoData = errors.New("no price data")

// NativeHistorySource resolves the USD close of the native asset for the
// 1-hour candle starting at the given instant.
type NativeHistorySource interface {
	HourlyClose(ctx context.Context, start time.Time) (float64, error)
}

// TokenCandleSource resolves the latest candle close of a token, denominated
// in the native asset.
type TokenCandleSource interface {
	LatestClose(ctx context.Context, mint string) (float64, error)
}

// QuoteSource resolves a token's current USD price.
type QuoteSource interface {
	USDPrice(ctx context.Context, mint string) (float64, error)
}

// NativeHistoryAPI is an HTTP NativeHistorySource over a kline endpoint. The
// URL template receives the window start in Unix milliseconds as its single
// %d verb and must answer a JSON array of kline rows, where each row is an
// array with the close price as a string at index 4.
type NativeHistoryAPI struct {
	urlTemplate string
	client      *http.Client
}

// NewNativeHistoryAPI creates a native history source with the given per-call
// timeout.
func NewNativeHistoryAPI(urlTemplate string, timeout time.Duration) *NativeHistoryAPI {
	return &NativeHistoryAPI{
		urlTemplate: urlTemplate,
		client:      &http.Client{Timeout: timeout},
	}
}

var _ NativeHistorySource = (*NativeHistoryAPI)(nil)

// HourlyClose fetches the close of the 1-hour candle starting at start.
func (a *NativeHistoryAPI) HourlyClose(ctx context.Context, start time.Time) (float64, error) {
	var klines [][]json.RawMessage
	url := fmt.Sprintf(a.urlTemplate, start.UnixMilli())
	if err := getJSON(ctx, a.client, url, &klines); err != nil {
		return 0, err
	}
	if len(klines) == 0 || len(klines[0]) < 5 {
		return 0, ErrNoData
	}

	var closeStr string
	if err := json.Unmarshal(klines[0][4], &closeStr); err != nil {
		return 0, fmt.Errorf("parse kline close: %w", err)
	}
	price, err := strconv.ParseFloat(closeStr, 64)
	if err != nil {
		return 0, fmt.Errorf("parse kline close %q: %w", closeStr, err)
	}
	return price, nil
}

// CandleAPI is an HTTP TokenCandleSource. The URL template receives the mint
// as its single %s verb and must answer a JSON array of candle objects with a
// "close" field, newest first.
type CandleAPI struct {
	urlTemplate string
	client      *http.Client
}

// NewCandleAPI creates a candle source with the given per-call timeout.
func NewCandleAPI(urlTemplate string, timeout time.Duration) *CandleAPI {
	return &CandleAPI{
		urlTemplate: urlTemplate,
		client:      &http.Client{Timeout: timeout},
	}
}

var _ TokenCandleSource = (*CandleAPI)(nil)

// LatestClose fetches the most recent candle close for mint.
func (a *CandleAPI) LatestClose(ctx context.Context, mint string) (float64, error) {
	var candles []struct {
		Close float64 `json:"close"`
	}
	if err := a.getJSON(ctx, fmt.Sprintf(a.urlTemplate, mint), &candles); err != nil {
		return 0, err
	}
	if len(candles) == 0 {
		return 0, ErrNoData
	}
	return candles[0].Close, nil
}

func (a *CandleAPI) getJSON(ctx context.Context, url string, out interface{}) error {
	return getJSON(ctx, a.client, url, out)
}

// QuoteAPI is an HTTP QuoteSource. The URL template receives the mint as its
// single %s verb and must answer {"data": {"<mint>": {"price": "<usd>"}}}.
type QuoteAPI struct {
	urlTemplate string
	client      *http.Client
}

// NewQuoteAPI creates a quote source with the given per-call timeout.
func NewQuoteAPI(urlTemplate string, timeout time.Duration) *QuoteAPI {
	return &QuoteAPI{
		urlTemplate: urlTemplate,
		client:      &http.Client{Timeout: timeout},
	}
}

var _ QuoteSource = (*QuoteAPI)(nil)

// USDPrice fetches the current USD quote for mint.
func (a *QuoteAPI) USDPrice(ctx context.Context, mint string) (float64, error) {
	var resp struct {
		Data map[string]struct {
			Price json.Number `json:"price"`
		} `json:"data"`
	}
	if err := getJSON(ctx, a.client, fmt.Sprintf(a.urlTemplate, mint), &resp); err != nil {
		return 0, err
	}
	entry, ok := resp.Data[mint]
	if !ok {
		return 0, ErrNoData
	}
	price, err := entry.Price.Float64()
	if err != nil {
		return 0, fmt.Errorf("parse quote price: %w", err)
	}
	return price, nil
}

// getJSON performs a GET and decodes the JSON body into out.
func getJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
