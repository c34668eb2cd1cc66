package config

import "time"

// DefaultGasBudget is the publish gas budget in MIST (0.1 SUI).
const DefaultGasBudget = uint64(100_000_000)

// Timeout constants used across cmd.
const (
	RPCSelectTimeout = 10 * time.Second // endpoint benchmark / RPC selection
	DryRunTimeout    = 30 * time.Second // unsafe_publish + dry-run round trip
	TxConfirmTimeout = 2 * time.Minute  // publish confirmation wait
	UploadTimeout    = 2 * time.Minute  // Walrus blob upload
)
