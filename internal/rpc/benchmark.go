package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/Mohsinsiddi/suiforge/internal/chain"
)

// BenchmarkResult holds the result of a single endpoint benchmark.
type BenchmarkResult struct {
	URL        string
	Latency    time.Duration
	Checkpoint uint64
	Err        error
}

// Benchmark pings all Sui RPC URLs in parallel and returns results in input
// order.
func Benchmark(ctx context.Context, urls []string) []BenchmarkResult {
	results := make([]BenchmarkResult, len(urls))
	var wg sync.WaitGroup

	for i, url := range urls {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			latency, cp, err := chain.NewSUIClient(u).Ping(ctx)
			results[idx] = BenchmarkResult{
				URL:        u,
				Latency:    latency,
				Checkpoint: cp,
				Err:        err,
			}
		}(i, url)
	}

	wg.Wait()
	return results
}

// ResultsToEndpoints converts benchmark results to picker Endpoints, all
// marked Checked.
func ResultsToEndpoints(results []BenchmarkResult) []Endpoint {
	endpoints := make([]Endpoint, 0, len(results))
	for _, r := range results {
		endpoints = append(endpoints, Endpoint{
			URL:        r.URL,
			Latency:    r.Latency,
			Checkpoint: r.Checkpoint,
			Healthy:    r.Err == nil,
			Checked:    true,
		})
	}
	return endpoints
}

// Best runs a benchmark and returns the best endpoint URL using algo.
func Best(ctx context.Context, urls []string, algo Algorithm) (string, error) {
	if len(urls) == 1 {
		return urls[0], nil
	}

	endpoints := ResultsToEndpoints(Benchmark(ctx, urls))
	winner, err := NewPicker(algo).Pick(endpoints)
	if err != nil {
		return "", err
	}
	return winner.URL, nil
}
