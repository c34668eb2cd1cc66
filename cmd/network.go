package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/suiforge/internal/chain"
	"github.com/Mohsinsiddi/suiforge/internal/ui"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage Sui networks",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the supported Sui networks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		reg := chain.NewRegistry()
		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 10},
			{Title: "Display", Width: 14},
			{Title: "RPCs", Width: 5},
			{Title: "Faucet", Width: 6},
			{Title: "Explorer"},
			{Title: "Default", Width: 7},
		})
		for _, n := range reg.All() {
			def := ""
			if n.Name == cfg.DefaultNetwork {
				def = "✓"
			}
			t.AddRow(ui.Row{
				n.Name,
				n.DisplayName,
				fmt.Sprintf("%d", len(rpcURLs(&n))),
				yesNo(n.FaucetURL != ""),
				orDash(n.Explorer),
				def,
			})
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d networks total", len(reg.All()))))
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use [network]",
	Short: "Set the default network",
	Long: `Set the default network and persist it to config.

Examples:
  suiforge network use testnet
  suiforge network use              # pick from a list`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := chain.NewRegistry()

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			items := make([]ui.PickerItem, 0, len(reg.All()))
			for _, n := range reg.All() {
				items = append(items, ui.PickerItem{Label: n.Name, SubLabel: n.DisplayName, Value: n.Name})
			}
			picked, err := ui.PickItem("Default network", items, cfg.DefaultNetwork)
			if err != nil || picked == "" {
				return err
			}
			name = picked
		}

		n, err := reg.GetByName(name)
		if err != nil {
			return fmt.Errorf("unknown network %q — choose one of: %s", name, strings.Join(networkNames(reg), ", "))
		}
		cfg.DefaultNetwork = n.Name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Default network set to "+ui.NetworkName(n.Name)))
		if n.Name == "mainnet" {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Warn("Publishing on mainnet spends real SUI."))
		}
		return nil
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkUseCmd)
}

func networkNames(reg *chain.Registry) []string {
	names := make([]string, 0, len(reg.All()))
	for _, n := range reg.All() {
		names = append(names, n.Name)
	}
	return names
}
