// Package price quotes SUI in fiat currencies via CoinGecko.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultBaseURL is the public CoinGecko API.
	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	suiID = "sui"
	ttl   = time.Minute
)

// Fetcher retrieves the SUI price from CoinGecko. Quotes are cached for a
// minute.
type Fetcher struct {
	client   *http.Client
	baseURL  string
	currency string

	mu       sync.Mutex
	quote    decimal.Decimal
	quotedAt time.Time
}

// NewFetcher creates a price fetcher quoting in currency (default usd).
func NewFetcher(currency string) *Fetcher {
	if currency == "" {
		currency = "usd"
	}
	return &Fetcher{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  DefaultBaseURL,
		currency: strings.ToLower(currency),
	}
}

// WithBaseURL points the fetcher at a different CoinGecko-compatible API.
func (f *Fetcher) WithBaseURL(u string) *Fetcher {
	f.baseURL = strings.TrimRight(u, "/")
	return f
}

// Currency returns the lower-case quote currency.
func (f *Fetcher) Currency() string { return f.currency }

// SUIPrice returns the price of one SUI.
func (f *Fetcher) SUIPrice(ctx context.Context) (decimal.Decimal, error) {
	f.mu.Lock()
	if !f.quotedAt.IsZero() && time.Since(f.quotedAt) < ttl {
		q := f.quote
		f.mu.Unlock()
		return q, nil
	}
	f.mu.Unlock()

	prices, err := f.fetch(ctx, suiID)
	if err != nil {
		return decimal.Zero, err
	}
	p, ok := prices[suiID]
	if !ok {
		return decimal.Zero, fmt.Errorf("price not available for %s in %s", suiID, f.currency)
	}

	f.mu.Lock()
	f.quote, f.quotedAt = p, time.Now()
	f.mu.Unlock()
	return p, nil
}

// Value converts an amount of MIST into the quote currency.
func (f *Fetcher) Value(ctx context.Context, mist *big.Int) (decimal.Decimal, error) {
	p, err := f.SUIPrice(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromBigInt(mist, -9).Mul(p), nil
}

// Format renders an amount in the quote currency: "$12.34" for usd, otherwise
// "12.34 EUR". Amounts under one cent keep four decimals.
func (f *Fetcher) Format(v decimal.Decimal) string {
	places := int32(2)
	if !v.IsZero() && v.Abs().LessThan(decimal.New(1, -2)) {
		places = 4
	}
	s := v.StringFixed(places)
	if f.currency == "usd" {
		return "$" + s
	}
	return s + " " + strings.ToUpper(f.currency)
}

func (f *Fetcher) fetch(ctx context.Context, ids ...string) (map[string]decimal.Decimal, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", f.currency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/simple/price?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching prices: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading price response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching prices: HTTP %d", resp.StatusCode)
	}

	// Response: {"sui":{"usd":1.2345}}
	var raw map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing price response: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(raw))
	for id, currencies := range raw {
		if p, ok := currencies[f.currency]; ok {
			prices[id] = p
		}
	}
	return prices, nil
}
