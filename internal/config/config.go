// Package config loads and saves the suiforge configuration directory.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/suiforge/internal/price"
	"github.com/Mohsinsiddi/suiforge/internal/walrus"
)

const (
	defaultNetwork   = "testnet"
	defaultAlgorithm = "fastest"
	defaultCurrency  = "usd"
	noCurrency       = "none"

	// DirEnvVar overrides the default config directory.
	DirEnvVar = "SUIFORGE_CONFIG_DIR"

	configFile  = "config.json"
	walletsFile = "wallets.json"
)

// ErrUnknownKey is returned by Get and Set for keys that are not settable.
var ErrUnknownKey = errors.New("unknown config key")

// Keys lists the settable keys in display order.
var Keys = []string{
	"default_network",
	"default_wallet",
	"rpc_algorithm",
	"gas_budget",
	"template_dir",
	"template_source",
	"price_currency",
	"walrus_publisher",
	"walrus_aggregator",
	"walrus_epochs",
}

// DefaultDir returns $SUIFORGE_CONFIG_DIR or ~/.suiforge.
func DefaultDir() (string, error) {
	if dir := os.Getenv(DirEnvVar); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home dir: %w", err)
	}
	return filepath.Join(home, ".suiforge"), nil
}

// Load reads config from dir (or creates defaults). dir defaults to DefaultDir.
func Load(dir string) (*Config, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	if cfg.GasBudget == 0 {
		cfg.GasBudget = DefaultGasBudget
	}
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Get returns the string form of a settable key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "default_network":
		return c.DefaultNetwork, nil
	case "default_wallet":
		return c.DefaultWallet, nil
	case "rpc_algorithm":
		return c.RPCAlgorithm, nil
	case "gas_budget":
		return strconv.FormatUint(c.GasBudget, 10), nil
	case "template_dir":
		return c.TemplateDir, nil
	case "template_source":
		return c.TemplateSource, nil
	case "price_currency":
		return c.PriceCurrency, nil
	case "walrus_publisher":
		return c.WalrusPublisher, nil
	case "walrus_aggregator":
		return c.WalrusAggregator, nil
	case "walrus_epochs":
		return strconv.Itoa(c.WalrusEpochs), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Set assigns a settable key from its string form. Numeric keys must be
// positive.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "default_network":
		c.DefaultNetwork = strings.ToLower(value)
	case "default_wallet":
		c.DefaultWallet = value
	case "rpc_algorithm":
		c.RPCAlgorithm = strings.ToLower(value)
	case "gas_budget":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil || n == 0 {
			return fmt.Errorf("gas_budget must be a positive integer (MIST), got %q", value)
		}
		c.GasBudget = n
	case "template_dir":
		c.TemplateDir = value
	case "template_source":
		c.TemplateSource = value
	case "price_currency":
		c.PriceCurrency = strings.ToLower(value)
	case "walrus_publisher":
		c.WalrusPublisher = value
	case "walrus_aggregator":
		c.WalrusAggregator = value
	case "walrus_epochs":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("walrus_epochs must be a positive integer, got %q", value)
		}
		c.WalrusEpochs = n
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// AddRPC adds a custom RPC URL for a network.
func (c *Config) AddRPC(network, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[network], url) {
		return fmt.Errorf("RPC %s already exists for network %s", url, network)
	}
	c.CustomRPCs[network] = append(c.CustomRPCs[network], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a network.
func (c *Config) RemoveRPC(network, url string) error {
	rpcs := c.CustomRPCs[network]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for network %s", url, network)
	}
	c.CustomRPCs[network] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// GetRPCs returns custom RPCs for a network.
func (c *Config) GetRPCs(network string) []string {
	return c.CustomRPCs[network]
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is the location of wallets.json.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// TemplatesPath is where synced templates go when template_dir is unset.
func (c *Config) TemplatesPath() string {
	if c.TemplateDir != "" {
		return c.TemplateDir
	}
	return filepath.Join(c.configDir, "templates")
}

// Prices returns a price fetcher for the configured currency, or nil when
// fiat values are disabled.
func (c *Config) Prices() *price.Fetcher {
	if c.PriceCurrency == "" || c.PriceCurrency == noCurrency {
		return nil
	}
	return price.NewFetcher(c.PriceCurrency)
}

// Walrus returns a Walrus client for the configured endpoints.
func (c *Config) Walrus() *walrus.Client {
	return walrus.NewClient(c.WalrusPublisher, c.WalrusAggregator)
}

func defaults(dir string) *Config {
	return &Config{
		DefaultNetwork:   defaultNetwork,
		RPCAlgorithm:     defaultAlgorithm,
		CustomRPCs:       make(map[string][]string),
		GasBudget:        DefaultGasBudget,
		PriceCurrency:    defaultCurrency,
		WalrusPublisher:  walrus.DefaultPublisher,
		WalrusAggregator: walrus.DefaultAggregator,
		WalrusEpochs:     walrus.DefaultEpochs,
		configDir:        dir,
	}
}
