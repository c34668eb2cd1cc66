package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/suiforge/internal/chain"
	"github.com/Mohsinsiddi/suiforge/internal/rpc"
	"github.com/Mohsinsiddi/suiforge/internal/ui"
	"github.com/Mohsinsiddi/suiforge/internal/wallet"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup wizard",
	Long:  "Launch the interactive setup wizard to configure suiforge.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Banner())

		algos := make([]string, len(rpc.Algorithms))
		for i, a := range rpc.Algorithms {
			algos[i] = string(a)
		}
		answers, err := ui.RunForm("suiforge setup", []ui.FormField{
			{Key: "network", Label: "Default network", Choices: networkNames(chain.NewRegistry())},
			{Key: "algorithm", Label: "RPC selection algorithm", Choices: algos},
			{Key: "wallet", Label: "Wallet", Choices: []string{"generate", "watch-only", "skip"}},
			{Key: "name", Label: "Wallet name", Default: "deployer"},
		})
		if errors.Is(err, ui.ErrFormCancelled) {
			fmt.Fprintln(out, ui.Meta("Setup cancelled."))
			return nil
		}
		if err != nil {
			return err
		}

		cfg.DefaultNetwork = answers["network"]
		cfg.RPCAlgorithm = answers["algorithm"]

		name := answers["name"]
		mgr := newWalletManager()
		switch answers["wallet"] {
		case "generate":
			w, err := mgr.Generate(name)
			if err != nil {
				fmt.Fprintln(out, ui.Warn(fmt.Sprintf("Could not create wallet: %v", err)))
				break
			}
			cfg.DefaultWallet = w.Name
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Wallet %q created: %s", w.Name, ui.Addr(w.Address))))
			fmt.Fprintln(out, ui.Hint(fmt.Sprintf("Back up its key with: suiforge wallet export %s", w.Name)))
		case "watch-only":
			addr := ui.Ask("Address (0x...)", "")
			if err := mgr.Add(name, &wallet.Wallet{Address: addr, Type: wallet.TypeWatchOnly, IsDefault: true}); err != nil {
				fmt.Fprintln(out, ui.Warn(fmt.Sprintf("Could not add wallet: %v", err)))
				break
			}
			cfg.DefaultWallet = name
		}

		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintln(out, ui.Success("suiforge configured! Run `suiforge coin create` to mint your first coin."))
		return nil
	},
}
