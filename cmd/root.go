package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/suiforge/internal/chain"
	"github.com/Mohsinsiddi/suiforge/internal/config"
	"github.com/Mohsinsiddi/suiforge/internal/logging"
	"github.com/Mohsinsiddi/suiforge/internal/rpc"
	"github.com/Mohsinsiddi/suiforge/internal/ui"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/suiforge/cmd.Version=1.2.3" .
var Version = ui.Version

var (
	cfgDir      string
	cfg         *config.Config
	log         = zerolog.Nop()
	verbose     bool
	logFormat   string
	networkFlag string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "suiforge",
	Short: "Mint Sui coins from precompiled templates",
	Long: `suiforge — create fungible coin types on Sui without a Move toolchain.

  Pick a template, describe the coin, and suiforge patches the precompiled
  module and publishes it with your wallet. Icons can be uploaded to Walrus
  on the way.

The --network flag overrides the configured default network for a single
invocation. Persist with: suiforge network use <name>`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if verbose {
			level = "debug"
		}
		l, err := logging.New(os.Stderr, logFormat, level)
		if err != nil {
			return err
		}
		log = l

		// Load config (skip for commands that don't need it).
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		log.Debug().Str("dir", cfg.Dir()).Str("network", cfg.DefaultNetwork).Msg("config loaded")
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $SUIFORGE_CONFIG_DIR or ~/.suiforge)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatText, "log format: text or json")
	rootCmd.PersistentFlags().StringVarP(&networkFlag, "network", "n", "", "network to use: mainnet, testnet, devnet, localnet")

	// Register all sub-commands.
	rootCmd.AddCommand(
		initCmd,
		coinCmd,
		walletCmd,
		networkCmd,
		rpcCmd,
		configCmd,
		balanceCmd,
		txCmd,
		faucetCmd,
		uploadCmd,
	)
}

// resolveNetwork returns the --network flag's network or the configured
// default.
func resolveNetwork() (*chain.Network, error) {
	name := networkFlag
	if name == "" {
		name = cfg.DefaultNetwork
	}
	n, err := chain.NewRegistry().GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("unknown network %q — run `suiforge network list` to see all networks", name)
	}
	return n, nil
}

// rpcURLs returns custom RPCs for the network ahead of the built-in ones.
func rpcURLs(n *chain.Network) []string {
	urls := append([]string(nil), cfg.GetRPCs(n.Name)...)
	return append(urls, n.RPCs...)
}

// pickBestRPC selects an endpoint for n using the configured algorithm.
func pickBestRPC(n *chain.Network) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), config.RPCSelectTimeout)
	defer cancel()

	start := time.Now()
	url, err := rpc.SelectBest(ctx, rpcURLs(n), cfg.RPCAlgorithm)
	if err != nil {
		return "", fmt.Errorf("selecting %s RPC: %w", n.Name, err)
	}
	log.Debug().Str("network", n.Name).Str("rpc", url).Dur("took", time.Since(start)).Msg("rpc selected")
	return url, nil
}

// suiClient resolves the network and returns a client for its best RPC.
func suiClient() (*chain.Network, *chain.SUIClient, error) {
	n, err := resolveNetwork()
	if err != nil {
		return nil, nil, err
	}
	url, err := pickBestRPC(n)
	if err != nil {
		return nil, nil, err
	}
	return n, chain.NewSUIClient(url), nil
}
