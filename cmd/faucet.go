package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/suiforge/internal/chain"
	"github.com/Mohsinsiddi/suiforge/internal/config"
	"github.com/Mohsinsiddi/suiforge/internal/ui"
	"github.com/Mohsinsiddi/suiforge/internal/wallet"
)

var faucetCmd = &cobra.Command{
	Use:   "faucet [wallet|address]",
	Short: "Request test SUI from the network faucet",
	Long: `Request gas coins from the faucet of the selected network.

Without an argument the default wallet is funded. Mainnet has no faucet.

Examples:
  suiforge faucet
  suiforge faucet deployer
  suiforge faucet 0x304a...737d --network devnet`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		n, err := resolveNetwork()
		if err != nil {
			return err
		}
		if n.FaucetURL == "" {
			return fmt.Errorf("%s has no faucet", n.DisplayName)
		}

		target := ""
		if len(args) == 1 {
			target = args[0]
		}
		addr, err := resolveAddress(target)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.TxConfirmTimeout)
		defer cancel()

		sp := ui.NewSpinnerTo(cmd.ErrOrStderr(), fmt.Sprintf("Requesting gas on %s...", n.Name))
		sp.Start()
		coins, err := chain.RequestGas(ctx, n.FaucetURL, addr)
		sp.Stop()
		if err != nil {
			return err
		}
		log.Debug().Str("network", n.Name).Str("address", addr).Int("coins", len(coins)).Msg("faucet funded")

		fmt.Fprintln(out, ui.Success("Gas requested for "+ui.Addr(addr)))
		for _, c := range coins {
			fmt.Fprintf(out, "  %s  %s SUI  %s\n", ui.Meta("coin"), chain.MistToSUI(new(big.Int).SetUint64(c.Amount)), ui.TruncateAddr(c.ID))
		}
		return nil
	},
}

// resolveAddress turns a wallet name, a raw address or "" (the default
// wallet) into a normalized Sui address.
func resolveAddress(target string) (string, error) {
	mgr := newWalletManager()
	if target == "" {
		d := mgr.Default()
		if d == nil && cfg.DefaultWallet != "" {
			d, _ = mgr.Get(cfg.DefaultWallet)
		}
		if d == nil {
			return "", fmt.Errorf("no wallet specified — pass a wallet or address, or set a default:\n  suiforge wallet use <name>")
		}
		return d.Address, nil
	}
	if w, err := mgr.Get(target); err == nil {
		return w.Address, nil
	}
	if !wallet.ValidAddress(target) {
		return "", fmt.Errorf("%q is neither a wallet name nor a Sui address", target)
	}
	return chain.NormalizeAddress(target)
}
