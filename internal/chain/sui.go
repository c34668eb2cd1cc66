package chain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SUIClient is a JSON-RPC client for a Sui fullnode.
type SUIClient struct {
	url          string
	client       *http.Client
	pollInterval time.Duration
}

// Balance holds a SUI balance.
type Balance struct {
	Mist *big.Int
	SUI  string
}

// RPCError is an error object returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("SUI RPC error %d: %s", e.Code, e.Message)
}

// NewSUIClient creates a new Sui RPC client.
func NewSUIClient(url string) *SUIClient {
	return &SUIClient{
		url:          url,
		client:       &http.Client{Timeout: 30 * time.Second},
		pollInterval: time.Second,
	}
}

// WithPollInterval sets how often WaitForTransaction queries the node.
func (c *SUIClient) WithPollInterval(d time.Duration) *SUIClient {
	c.pollInterval = d
	return c
}

// URL returns the endpoint the client talks to.
func (c *SUIClient) URL() string { return c.url }

// GetBalance returns the SUI balance for an address.
func (c *SUIClient) GetBalance(ctx context.Context, address string) (*Balance, error) {
	mist, err := c.GetCoinBalance(ctx, address, SUICoinType)
	if err != nil {
		return nil, err
	}
	return &Balance{Mist: mist, SUI: MistToSUI(mist)}, nil
}

// GetCoinBalance returns the total balance of coinType held by address, in
// the coin's smallest unit.
func (c *SUIClient) GetCoinBalance(ctx context.Context, address, coinType string) (*big.Int, error) {
	var resp struct {
		TotalBalance string `json:"totalBalance"`
	}
	if err := c.call(ctx, &resp, "suix_getBalance", address, coinType); err != nil {
		return nil, err
	}
	n, ok := new(big.Int).SetString(resp.TotalBalance, 10)
	if !ok {
		n = big.NewInt(0)
	}
	return n, nil
}

// CoinMetadata is the on-chain metadata object of a coin type.
type CoinMetadata struct {
	ID          string `json:"id"`
	Decimals    uint8  `json:"decimals"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl"`
}

// GetCoinMetadata returns the metadata of coinType. A coin whose metadata
// object was never shared or frozen yields (nil, nil).
func (c *SUIClient) GetCoinMetadata(ctx context.Context, coinType string) (*CoinMetadata, error) {
	var resp *CoinMetadata
	if err := c.call(ctx, &resp, "suix_getCoinMetadata", coinType); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetLatestCheckpoint returns the latest checkpoint sequence number.
func (c *SUIClient) GetLatestCheckpoint(ctx context.Context) (uint64, error) {
	var raw json.RawMessage
	if err := c.call(ctx, &raw, "sui_getLatestCheckpointSequenceNumber"); err != nil {
		return 0, err
	}
	n, err := parseU64(raw)
	if err != nil {
		return 0, fmt.Errorf("could not parse checkpoint: %w", err)
	}
	return n, nil
}

// GetReferenceGasPrice returns the reference gas price for the current epoch
// in MIST.
func (c *SUIClient) GetReferenceGasPrice(ctx context.Context) (uint64, error) {
	var raw json.RawMessage
	if err := c.call(ctx, &raw, "suix_getReferenceGasPrice"); err != nil {
		return 0, err
	}
	n, err := parseU64(raw)
	if err != nil {
		return 0, fmt.Errorf("could not parse gas price: %w", err)
	}
	return n, nil
}

// Ping tests the endpoint and returns latency + checkpoint.
func (c *SUIClient) Ping(ctx context.Context) (time.Duration, uint64, error) {
	start := time.Now()
	cp, err := c.GetLatestCheckpoint(ctx)
	return time.Since(start), cp, err
}

// UnsafePublish asks the node to assemble an unsigned publish transaction for
// modules. gasObject may be empty to let the node pick a coin.
func (c *SUIClient) UnsafePublish(ctx context.Context, sender string, modules [][]byte, deps []string, gasObject string, budget uint64) ([]byte, error) {
	encoded := make([]string, len(modules))
	for i, m := range modules {
		encoded[i] = base64.StdEncoding.EncodeToString(m)
	}
	var gas interface{}
	if gasObject != "" {
		gas = gasObject
	}

	var resp struct {
		TxBytes string `json:"txBytes"`
	}
	if err := c.call(ctx, &resp, "unsafe_publish", sender, encoded, deps, gas, strconv.FormatUint(budget, 10)); err != nil {
		return nil, err
	}
	tx, err := base64.StdEncoding.DecodeString(resp.TxBytes)
	if err != nil {
		return nil, fmt.Errorf("decoding txBytes: %w", err)
	}
	return tx, nil
}

// DryRun executes txBytes without committing it.
func (c *SUIClient) DryRun(ctx context.Context, txBytes []byte) (*DryRunResult, error) {
	var resp DryRunResult
	if err := c.call(ctx, &resp, "sui_dryRunTransactionBlock", base64.StdEncoding.EncodeToString(txBytes)); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Execute submits a signed transaction and returns the node's response,
// including effects and object changes.
func (c *SUIClient) Execute(ctx context.Context, txBytes []byte, signatures []string) (*TransactionResponse, error) {
	var resp TransactionResponse
	err := c.call(ctx, &resp, "sui_executeTransactionBlock",
		base64.StdEncoding.EncodeToString(txBytes), signatures, responseOptions)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTransaction fetches an executed transaction by digest.
func (c *SUIClient) GetTransaction(ctx context.Context, digest string) (*TransactionResponse, error) {
	var resp TransactionResponse
	if err := c.call(ctx, &resp, "sui_getTransactionBlock", digest, responseOptions); err != nil {
		return nil, err
	}
	return &resp, nil
}

// WaitForTransaction polls until the node knows digest or ctx is done. Node
// errors (typically "not found" while the transaction is indexed) are retried;
// transport errors are returned.
func (c *SUIClient) WaitForTransaction(ctx context.Context, digest string) (*TransactionResponse, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		resp, err := c.GetTransaction(ctx, digest)
		if err == nil && resp.Effects != nil {
			return resp, nil
		}
		var rpcErr *RPCError
		if err != nil && !errors.As(err, &rpcErr) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", digest, ctx.Err())
		case <-ticker.C:
		}
	}
}

// --- internal ---

var responseOptions = map[string]bool{
	"showEffects":       true,
	"showObjectChanges": true,
}

type suiRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type suiResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

func (c *SUIClient) call(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	body, err := json.Marshal(suiRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("SUI RPC request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading SUI response: %w", err)
	}
	var rpcResp suiResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return fmt.Errorf("parsing SUI response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if out == nil || len(rpcResp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("parsing %s result: %w", method, err)
	}
	return nil
}

// parseU64 accepts a u64 encoded either as a JSON string or a JSON number.
func parseU64(raw json.RawMessage) (uint64, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	return strconv.ParseUint(s, 10, 64)
}

// SUICoinType is the fully qualified type of the native coin.
const SUICoinType = "0x2::sui::SUI"

// FormatUnits formats an integer amount with the given number of decimals.
func FormatUnits(amount *big.Int, decimals uint8) string {
	return decimal.NewFromBigInt(amount, -int32(decimals)).StringFixed(int32(decimals))
}

// MistToSUI formats a MIST amount as SUI with nine decimals.
func MistToSUI(mist *big.Int) string {
	return decimal.NewFromBigInt(mist, -9).StringFixed(9)
}
