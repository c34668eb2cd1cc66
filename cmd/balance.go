package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/suiforge/internal/chain"
	"github.com/Mohsinsiddi/suiforge/internal/config"
	"github.com/Mohsinsiddi/suiforge/internal/ui"
)

var balanceCoinType string

var balanceCmd = &cobra.Command{
	Use:   "balance [wallet|address]",
	Short: "Check a SUI or coin balance",
	Long: `Check the SUI balance of a wallet, or the balance of any coin type
with --coin (for example a coin created with 'suiforge coin create').

Examples:
  suiforge balance
  suiforge balance deployer --network devnet
  suiforge balance --coin 0x5f3a...::my_coin::MY_COIN`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := ""
		if len(args) == 1 {
			target = args[0]
		}
		addr, err := resolveAddress(target)
		if err != nil {
			return err
		}
		n, client, err := suiClient()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.DryRunTimeout)
		defer cancel()

		sp := ui.NewSpinnerTo(cmd.ErrOrStderr(), fmt.Sprintf("Fetching balance on %s...", n.Name))
		sp.Start()
		pairs, err := balancePairs(ctx, client, addr, balanceCoinType)
		sp.Stop()
		if err != nil {
			return err
		}
		pairs = append([][2]string{{"Address", ui.Addr(addr)}, {"Network", n.DisplayName}}, pairs...)
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Balance on "+n.DisplayName, pairs))
		return nil
	},
}

// balancePairs fetches the balance of coinType (SUI when empty) and formats
// it using the coin's on-chain decimals.
func balancePairs(ctx context.Context, client *chain.SUIClient, addr, coinType string) ([][2]string, error) {
	if coinType == "" || coinType == chain.SUICoinType {
		bal, err := client.GetBalance(ctx, addr)
		if err != nil {
			return nil, err
		}
		pairs := [][2]string{{"Balance", bal.SUI + " SUI"}}
		if v := fiatValue(ctx, bal.Mist); v != "" {
			pairs = append(pairs, [2]string{"Value", v})
		}
		return pairs, nil
	}

	amount, err := client.GetCoinBalance(ctx, addr, coinType)
	if err != nil {
		return nil, err
	}
	md, err := client.GetCoinMetadata(ctx, coinType)
	if err != nil {
		return nil, err
	}
	if md == nil {
		log.Debug().Str("coin", coinType).Msg("no coin metadata; showing raw units")
		return [][2]string{
			{"Coin", shortType(coinType)},
			{"Balance", amount.String() + " (raw units)"},
		}, nil
	}
	return [][2]string{
		{"Coin", fmt.Sprintf("%s (%s)", md.Name, shortType(coinType))},
		{"Balance", chain.FormatUnits(amount, md.Decimals) + " " + md.Symbol},
	}, nil
}

// fiatValue quotes mist in the configured currency. It returns "" when
// quotes are disabled or unavailable.
func fiatValue(ctx context.Context, mist *big.Int) string {
	p := cfg.Prices()
	if p == nil {
		return ""
	}
	v, err := p.Value(ctx, mist)
	if err != nil {
		log.Debug().Err(err).Msg("price quote unavailable")
		return ""
	}
	return p.Format(v)
}

func init() {
	balanceCmd.Flags().StringVar(&balanceCoinType, "coin", "", "coin type to query (default: SUI)")
}
