package cmd

import (
	"context"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/suiforge/internal/chain"
	"github.com/Mohsinsiddi/suiforge/internal/config"
	"github.com/Mohsinsiddi/suiforge/internal/rpc"
	"github.com/Mohsinsiddi/suiforge/internal/ui"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage RPC endpoints",
}

var rpcAddCmd = &cobra.Command{
	Use:   "add <network> <url>",
	Short: "Add a custom RPC URL for a network",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := chain.NewRegistry().GetByName(args[0])
		if err != nil {
			return fmt.Errorf("unknown network %q", args[0])
		}
		if u, err := url.Parse(args[1]); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid RPC URL %q", args[1])
		}
		if err := cfg.AddRPC(n.Name, args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Added RPC for %s: %s", ui.NetworkName(n.Name), args[1])))
		return nil
	},
}

var rpcRemoveCmd = &cobra.Command{
	Use:   "remove <network> <url>",
	Short: "Remove a custom RPC URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RemoveRPC(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Removed RPC for %s: %s", args[0], args[1])))
		return nil
	},
}

var rpcListCmd = &cobra.Command{
	Use:   "list [network]",
	Short: "List all RPCs for a network",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := networkArg(args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.StyleTitle.Render(fmt.Sprintf("RPCs for %s", n.DisplayName)))

		fmt.Fprintln(out, ui.StyleHeader.Render("Built-in RPCs:"))
		for _, r := range n.RPCs {
			fmt.Fprintf(out, "  %s\n", r)
		}
		if custom := cfg.GetRPCs(n.Name); len(custom) > 0 {
			fmt.Fprintln(out, ui.StyleHeader.Render("Custom RPCs:"))
			for _, r := range custom {
				fmt.Fprintf(out, "  %s\n", r)
			}
		}
		fmt.Fprintln(out, ui.Meta("Selection algorithm: "+cfg.RPCAlgorithm))
		return nil
	},
}

var rpcBenchmarkCmd = &cobra.Command{
	Use:   "benchmark [network]",
	Short: "Benchmark all RPCs for a network and show the one that would be picked",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := networkArg(args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n\n", ui.StyleTitle.Render(fmt.Sprintf("Benchmarking %s RPCs...", n.DisplayName)))

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()

		sp := ui.NewSpinnerTo(cmd.ErrOrStderr(), "Pinging endpoints...")
		sp.Start()
		results := rpc.Benchmark(ctx, rpcURLs(n))
		sp.StopWithMsg(ui.Meta(fmt.Sprintf("Pinged %d endpoints on %s.", len(results), n.Name)))

		t := ui.NewTable([]ui.Column{
			{Title: "RPC URL"},
			{Title: "Latency", Width: 10},
			{Title: "Checkpoint", Width: 12},
			{Title: "Status", Width: 8},
		})
		for _, r := range results {
			status := ui.Success("healthy")
			latency := fmt.Sprintf("%dms", r.Latency.Milliseconds())
			checkpoint := fmt.Sprintf("%d", r.Checkpoint)
			if r.Err != nil {
				log.Debug().Err(r.Err).Str("rpc", r.URL).Msg("benchmark failed")
				status = ui.Err("down")
				latency = "—"
				checkpoint = "—"
			}
			t.AddRow(ui.Row{r.URL, latency, checkpoint, status})
		}
		fmt.Fprintln(out, t.Render())

		algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		if err != nil {
			return err
		}
		winner, err := rpc.NewPicker(algo).Pick(rpc.ResultsToEndpoints(results))
		if err != nil {
			fmt.Fprintln(out, ui.Warn(err.Error()))
			return nil
		}
		fmt.Fprintln(out, ui.Info(fmt.Sprintf("%s picks %s", algo, winner.URL)))
		return nil
	},
}

var rpcAlgorithmCmd = &cobra.Command{
	Use:   "algorithm",
	Short: "Show or set the RPC selection algorithm",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), cfg.RPCAlgorithm)
		return nil
	},
}

var rpcAlgorithmSetCmd = &cobra.Command{
	Use:   "set <fastest|round-robin|failover>",
	Short: "Set the RPC selection algorithm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		algo, err := rpc.ParseAlgorithm(args[0])
		if err != nil {
			return err
		}
		cfg.RPCAlgorithm = string(algo)
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("RPC algorithm set to %q", algo)))
		return nil
	},
}

func init() {
	rpcAlgorithmCmd.AddCommand(rpcAlgorithmSetCmd)
	rpcCmd.AddCommand(rpcAddCmd, rpcRemoveCmd, rpcListCmd, rpcBenchmarkCmd, rpcAlgorithmCmd)
}

// networkArg resolves an optional positional network argument, falling back
// to --network and the configured default.
func networkArg(args []string) (*chain.Network, error) {
	if len(args) == 0 {
		return resolveNetwork()
	}
	n, err := chain.NewRegistry().GetByName(args[0])
	if err != nil {
		return nil, fmt.Errorf("unknown network %q", args[0])
	}
	return n, nil
}
