package price

import (
	"context"
	"io"
	"math/big"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// fixedTransport: replaces the HTTP client without needing a real server.
// ---------------------------------------------------------------------------

type fixedTransport struct {
	body  string
	code  int
	err   error
	count int
	query string
}

func (ft *fixedTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	ft.count++
	ft.query = r.URL.RawQuery
	if ft.err != nil {
		return nil, ft.err
	}
	return &http.Response{
		StatusCode: ft.code,
		Body:       io.NopCloser(strings.NewReader(ft.body)),
		Header:     make(http.Header),
	}, nil
}

// newMockFetcher returns a Fetcher whose HTTP calls are intercepted.
func newMockFetcher(currency, body string, code int) (*Fetcher, *fixedTransport) {
	ft := &fixedTransport{body: body, code: code}
	f := NewFetcher(currency)
	f.client = &http.Client{Transport: ft}
	return f, ft
}

// networkError satisfies the error interface for transport-level failures.
type networkError struct{ msg string }

func (e *networkError) Error() string { return e.msg }

// ---------------------------------------------------------------------------
// NewFetcher
// ---------------------------------------------------------------------------

func TestNewFetcherDefaultCurrency(t *testing.T) {
	f := NewFetcher("")
	assert.Equal(t, "usd", f.Currency())
	assert.Equal(t, DefaultBaseURL, f.baseURL)
}

func TestNewFetcherLowercasesCurrency(t *testing.T) {
	assert.Equal(t, "eur", NewFetcher("EUR").Currency())
}

func TestWithBaseURLTrimsSlash(t *testing.T) {
	f := NewFetcher("usd").WithBaseURL("http://localhost:1234/api/")
	assert.Equal(t, "http://localhost:1234/api", f.baseURL)
}

// ---------------------------------------------------------------------------
// SUIPrice
// ---------------------------------------------------------------------------

func TestSUIPrice(t *testing.T) {
	f, ft := newMockFetcher("usd", `{"sui":{"usd":1.2345}}`, http.StatusOK)

	p, err := f.SUIPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.2345", p.String())
	assert.Contains(t, ft.query, "ids=sui")
	assert.Contains(t, ft.query, "vs_currencies=usd")
}

func TestSUIPriceCached(t *testing.T) {
	f, ft := newMockFetcher("usd", `{"sui":{"usd":2}}`, http.StatusOK)

	for range 3 {
		_, err := f.SUIPrice(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, ft.count, "quote should be cached")
}

func TestSUIPriceOtherCurrency(t *testing.T) {
	f, _ := newMockFetcher("eur", `{"sui":{"eur":0.9}}`, http.StatusOK)

	p, err := f.SUIPrice(context.Background())
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.RequireFromString("0.9")))
}

func TestSUIPriceMissingCurrency(t *testing.T) {
	f, _ := newMockFetcher("gbp", `{"sui":{"usd":1}}`, http.StatusOK)

	_, err := f.SUIPrice(context.Background())
	assert.ErrorContains(t, err, "price not available")
}

func TestSUIPriceHTTPError(t *testing.T) {
	f := NewFetcher("usd")
	f.client = &http.Client{Transport: &fixedTransport{err: &networkError{msg: "connection refused"}}}

	_, err := f.SUIPrice(context.Background())
	assert.ErrorContains(t, err, "fetching prices")
}

func TestSUIPriceRateLimited(t *testing.T) {
	f, _ := newMockFetcher("usd", `{"status":{"error_code":429}}`, http.StatusTooManyRequests)

	_, err := f.SUIPrice(context.Background())
	assert.ErrorContains(t, err, "HTTP 429")
}

func TestSUIPriceInvalidJSON(t *testing.T) {
	f, _ := newMockFetcher("usd", "{not valid json", http.StatusOK)

	_, err := f.SUIPrice(context.Background())
	assert.ErrorContains(t, err, "parsing price response")
}

// ---------------------------------------------------------------------------
// Value / Format
// ---------------------------------------------------------------------------

func TestValueConvertsMist(t *testing.T) {
	f, _ := newMockFetcher("usd", `{"sui":{"usd":2.5}}`, http.StatusOK)

	v, err := f.Value(context.Background(), big.NewInt(3_000_000_000))
	require.NoError(t, err)
	assert.Equal(t, "$7.50", f.Format(v))
}

func TestFormat(t *testing.T) {
	usd := NewFetcher("usd")
	eur := NewFetcher("eur")

	assert.Equal(t, "$0.00", usd.Format(decimal.Zero))
	assert.Equal(t, "$1234.57", usd.Format(decimal.RequireFromString("1234.567")))
	assert.Equal(t, "$0.0042", usd.Format(decimal.RequireFromString("0.0042")))
	assert.Equal(t, "3.10 EUR", eur.Format(decimal.RequireFromString("3.1")))
}
