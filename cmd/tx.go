package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/suiforge/internal/chain"
	"github.com/Mohsinsiddi/suiforge/internal/config"
	"github.com/Mohsinsiddi/suiforge/internal/ui"
)

var txCmd = &cobra.Command{
	Use:   "tx <digest>",
	Short: "Show transaction details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, client, err := suiClient()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.DryRunTimeout)
		defer cancel()

		sp := ui.NewSpinnerTo(cmd.ErrOrStderr(), "Fetching transaction...")
		sp.Start()
		resp, err := client.GetTransaction(ctx, args[0])
		sp.Stop()
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Transaction Details", txPairs(n, resp)))
		return nil
	},
}

func txPairs(n *chain.Network, resp *chain.TransactionResponse) [][2]string {
	pairs := [][2]string{{"Digest", ui.Addr(resp.Digest)}}
	if resp.Effects != nil {
		status := ui.Success(resp.Effects.Status.Status)
		if err := resp.Effects.Err(); err != nil {
			status = ui.Err(err.Error())
		}
		pairs = append(pairs,
			[2]string{"Status", status},
			[2]string{"Gas Used", chain.MistToSUI(resp.Effects.GasUsed.Total()) + " SUI"},
		)
	}
	if pkg, err := resp.PackageID(); err == nil {
		pairs = append(pairs, [2]string{"Package", ui.Addr(pkg)})
	}
	for _, c := range resp.ObjectChanges {
		if c.Type == "created" {
			pairs = append(pairs, [2]string{"Created", fmt.Sprintf("%s  %s", ui.TruncateAddr(c.ObjectID), ui.Meta(shortType(c.ObjectType)))})
		}
	}
	if u := n.TxURL(resp.Digest); u != "" {
		pairs = append(pairs, [2]string{"Explorer", u})
	}
	return pairs
}
