package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrFaucet is returned when a faucet refuses or fails a gas request.
var ErrFaucet = errors.New("faucet request failed")

// FaucetCoin is one gas coin sent by the faucet.
type FaucetCoin struct {
	Amount   uint64 `json:"amount"`
	ID       string `json:"id"`
	TxDigest string `json:"transferTxDigest"`
}

type faucetResponse struct {
	Status    json.RawMessage `json:"status"`
	CoinsSent []FaucetCoin    `json:"coins_sent"`
	Error     *string         `json:"error"`
}

// RequestGas asks the faucet at url to send test SUI to address.
func RequestGas(ctx context.Context, url, address string) ([]FaucetCoin, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: network has no faucet", ErrFaucet)
	}
	body, err := json.Marshal(map[string]any{
		"FixedAmountRequest": map[string]string{"recipient": address},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := (&http.Client{Timeout: 60 * time.Second}).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFaucet, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrFaucet, err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: rate limited, try again later", ErrFaucet)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s: %s", ErrFaucet, resp.Status, strings.TrimSpace(string(respBody)))
	}

	var fr faucetResponse
	if err := json.Unmarshal(respBody, &fr); err != nil {
		return nil, fmt.Errorf("%w: parsing response: %v", ErrFaucet, err)
	}
	if fr.Error != nil && *fr.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrFaucet, *fr.Error)
	}
	if len(fr.Status) > 0 && string(fr.Status) != `"Success"` {
		return nil, fmt.Errorf("%w: %s", ErrFaucet, fr.Status)
	}
	return fr.CoinsSent, nil
}
