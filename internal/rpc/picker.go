// Package rpc benchmarks Sui fullnodes and picks one to talk to.
package rpc

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm defines how an RPC endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest    Algorithm = "fastest"
	AlgorithmRoundRobin Algorithm = "round-robin"
	AlgorithmFailover   Algorithm = "failover"

	// Discard nodes more than this many checkpoints behind the best. Sui
	// produces several checkpoints a second, so this is a few seconds.
	staleCheckpointThreshold = 20
	// Cache winner for this duration before re-benchmarking.
	cacheTTL = 5 * time.Minute
)

// Algorithms lists the accepted algorithm names.
var Algorithms = []Algorithm{AlgorithmFastest, AlgorithmRoundRobin, AlgorithmFailover}

// ParseAlgorithm validates an algorithm name; empty means fastest.
func ParseAlgorithm(s string) (Algorithm, error) {
	if s == "" {
		return AlgorithmFastest, nil
	}
	for _, a := range Algorithms {
		if string(a) == strings.ToLower(s) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown RPC algorithm %q (want fastest, round-robin or failover)", s)
}

// Endpoint represents a single RPC endpoint with its measured attributes.
type Endpoint struct {
	URL        string
	Latency    time.Duration
	Checkpoint uint64
	Healthy    bool // meaningful only when Checked == true
	Checked    bool // true when the endpoint has been health-checked
}

// Picker selects an RPC endpoint according to the configured algorithm.
type Picker struct {
	algo        Algorithm
	mu          sync.Mutex
	rrIndex     int
	cachedURL   string
	cacheExpiry time.Time
	onBenchmark func()
}

// NewPicker creates a new Picker with the given algorithm.
func NewPicker(algo Algorithm) *Picker {
	return &Picker{algo: algo}
}

// OnBenchmark registers a hook called each time a fresh selection is scored.
func (p *Picker) OnBenchmark(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onBenchmark = fn
}

// Pick selects an endpoint from the provided list according to the algorithm.
func (p *Picker) Pick(endpoints []Endpoint) (*Endpoint, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoHealthyRPC
	}

	switch p.algo {
	case AlgorithmRoundRobin:
		return p.pickRoundRobin(endpoints)
	case AlgorithmFailover:
		return p.pickFailover(endpoints)
	default:
		return p.pickFastest(endpoints)
	}
}

// pickFastest selects the fastest fresh endpoint, caching the result for cacheTTL.
func (p *Picker) pickFastest(endpoints []Endpoint) (*Endpoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cachedURL != "" && time.Now().Before(p.cacheExpiry) {
		for i := range endpoints {
			if endpoints[i].URL == p.cachedURL {
				return &endpoints[i], nil
			}
		}
	}

	if p.onBenchmark != nil {
		p.onBenchmark()
	}

	var best uint64
	for _, e := range endpoints {
		if e.Checkpoint > best {
			best = e.Checkpoint
		}
	}

	candidates := healthyEndpoints(endpoints)
	if len(candidates) == 0 {
		return nil, ErrNoHealthyRPC
	}

	var winner *Endpoint
	var bestScore float64
	for _, e := range candidates {
		if stale(e.Checkpoint, best) {
			continue
		}
		s := score(e, best)
		if winner == nil || s > bestScore {
			winner = e
			bestScore = s
		}
	}
	if winner == nil {
		return nil, ErrNoHealthyRPC
	}

	p.cachedURL = winner.URL
	p.cacheExpiry = time.Now().Add(cacheTTL)
	return winner, nil
}

// pickRoundRobin cycles through all healthy endpoints.
func (p *Picker) pickRoundRobin(endpoints []Endpoint) (*Endpoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	healthy := healthyEndpoints(endpoints)
	if len(healthy) == 0 {
		return nil, ErrNoHealthyRPC
	}

	idx := p.rrIndex % len(healthy)
	p.rrIndex = (idx + 1) % len(healthy)
	return healthy[idx], nil
}

// pickFailover tries endpoints in order, skipping explicitly unhealthy ones.
func (p *Picker) pickFailover(endpoints []Endpoint) (*Endpoint, error) {
	for i := range endpoints {
		e := &endpoints[i]
		if e.Checked && !e.Healthy {
			continue
		}
		return e, nil
	}
	return nil, ErrNoHealthyRPC
}

// --- scoring ---

func stale(checkpoint, best uint64) bool {
	return best > checkpoint && best-checkpoint > staleCheckpointThreshold
}

// score favours low latency, then closeness to the newest checkpoint.
func score(e *Endpoint, best uint64) float64 {
	var s float64
	if e.Latency > 0 {
		s += 1.0 / e.Latency.Seconds()
	}
	if best > 0 {
		s -= float64(best - e.Checkpoint)
	}
	return s
}

// healthyEndpoints returns endpoints eligible for selection. If none has been
// checked, all are candidates; otherwise unchecked and healthy ones are.
func healthyEndpoints(endpoints []Endpoint) []*Endpoint {
	anyChecked := false
	for _, e := range endpoints {
		if e.Checked {
			anyChecked = true
			break
		}
	}

	var out []*Endpoint
	for i := range endpoints {
		e := &endpoints[i]
		if !anyChecked || !e.Checked || e.Healthy {
			out = append(out, e)
		}
	}
	return out
}
