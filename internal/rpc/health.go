package rpc

import (
	"context"
	"time"

	"github.com/Mohsinsiddi/suiforge/internal/chain"
)

// HealthCheck pings a single Sui RPC. A node is healthy if it answers within
// five seconds and, when best is non-zero, its checkpoint is within the stale
// threshold of best.
func HealthCheck(ctx context.Context, url string, best uint64) (Endpoint, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	latency, cp, err := chain.NewSUIClient(url).Ping(timeoutCtx)
	ep := Endpoint{
		URL:        url,
		Latency:    latency,
		Checkpoint: cp,
		Healthy:    err == nil && !stale(cp, best),
		Checked:    true,
	}
	return ep, err
}
