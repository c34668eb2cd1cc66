// Package walrus uploads blobs to a Walrus publisher and builds aggregator
// URLs for them.
package walrus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPublisher  = "https://publisher.walrus-testnet.walrus.space"
	DefaultAggregator = "https://aggregator.walrus-testnet.walrus.space"
	DefaultEpochs     = 1

	// MaxBlobSize caps uploads; icons are small.
	MaxBlobSize = 10 << 20
)

var (
	ErrUpload       = errors.New("walrus upload failed")
	ErrBlobTooLarge = errors.New("blob exceeds maximum size")
)

// Client talks to a Walrus publisher and aggregator.
type Client struct {
	publisher  string
	aggregator string
	http       *http.Client
}

// NewClient returns a client; empty URLs fall back to the public testnet
// services.
func NewClient(publisher, aggregator string) *Client {
	if publisher == "" {
		publisher = DefaultPublisher
	}
	if aggregator == "" {
		aggregator = DefaultAggregator
	}
	return &Client{
		publisher:  strings.TrimRight(publisher, "/"),
		aggregator: strings.TrimRight(aggregator, "/"),
		http:       &http.Client{Timeout: 2 * time.Minute},
	}
}

type storeResponse struct {
	NewlyCreated *struct {
		BlobObject struct {
			BlobID string `json:"blobId"`
		} `json:"blobObject"`
	} `json:"newlyCreated"`
	AlreadyCertified *struct {
		BlobID string `json:"blobId"`
	} `json:"alreadyCertified"`
}

// Store uploads the contents of r for the given number of epochs and returns
// the blob id. A publisher configured with the legacy /v1/store path is used
// as is.
func (c *Client) Store(ctx context.Context, r io.Reader, epochs int) (string, error) {
	if epochs <= 0 {
		epochs = DefaultEpochs
	}
	body, err := io.ReadAll(io.LimitReader(r, MaxBlobSize+1))
	if err != nil {
		return "", fmt.Errorf("reading blob: %w", err)
	}
	if len(body) > MaxBlobSize {
		return "", ErrBlobTooLarge
	}

	u, err := url.Parse(c.storeEndpoint())
	if err != nil {
		return "", fmt.Errorf("invalid publisher URL: %w", err)
	}
	q := u.Query()
	q.Set("epochs", strconv.Itoa(epochs))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u.String(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrUpload, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: publisher returned %s: %s", ErrUpload, resp.Status, strings.TrimSpace(string(respBody)))
	}

	var sr storeResponse
	if err := json.Unmarshal(respBody, &sr); err != nil {
		return "", fmt.Errorf("%w: parsing response: %v", ErrUpload, err)
	}
	switch {
	case sr.NewlyCreated != nil && sr.NewlyCreated.BlobObject.BlobID != "":
		return sr.NewlyCreated.BlobObject.BlobID, nil
	case sr.AlreadyCertified != nil && sr.AlreadyCertified.BlobID != "":
		return sr.AlreadyCertified.BlobID, nil
	}
	return "", fmt.Errorf("%w: response carries no blob id", ErrUpload)
}

// BlobURL returns the aggregator URL serving blob id.
func (c *Client) BlobURL(id string) string {
	return c.aggregator + "/v1/blobs/" + url.PathEscape(id)
}

func (c *Client) storeEndpoint() string {
	if strings.HasSuffix(c.publisher, "/v1/store") || strings.HasSuffix(c.publisher, "/v1/blobs") {
		return c.publisher
	}
	return c.publisher + "/v1/blobs"
}
