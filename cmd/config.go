package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/suiforge/internal/chain"
	"github.com/Mohsinsiddi/suiforge/internal/config"
	"github.com/Mohsinsiddi/suiforge/internal/rpc"
	"github.com/Mohsinsiddi/suiforge/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"show"},
	Short:   "Show current configuration",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs := make([][2]string, 0, len(config.Keys)+1)
		for _, k := range config.Keys {
			v, err := cfg.Get(k)
			if err != nil {
				return err
			}
			pairs = append(pairs, [2]string{k, orDash(v)})
		}
		for network, urls := range cfg.CustomRPCs {
			pairs = append(pairs, [2]string{"rpcs." + network, strings.Join(urls, ", ")})
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.KeyValueBlock("Current Configuration", pairs))
		fmt.Fprintln(out, ui.Meta("Config directory: "+cfg.Dir()))
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := cfg.Get(args[0])
		if err != nil {
			return unknownKey(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save it.

Keys: ` + strings.Join(config.Keys, ", "),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := validateConfigValue(key, value); err != nil {
			return err
		}
		if err := cfg.Set(key, value); err != nil {
			return unknownKey(err)
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		v, _ := cfg.Get(key)
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("%s set to %q", key, v)))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configListCmd, configGetCmd, configSetCmd)
}

// validateConfigValue rejects values Set would accept syntactically but the
// rest of the CLI could not use.
func validateConfigValue(key, value string) error {
	switch key {
	case "default_network":
		if _, err := chain.NewRegistry().GetByName(value); err != nil {
			return fmt.Errorf("unknown network %q", value)
		}
	case "rpc_algorithm":
		if _, err := rpc.ParseAlgorithm(value); err != nil {
			return err
		}
	}
	return nil
}

func unknownKey(err error) error {
	if errors.Is(err, config.ErrUnknownKey) {
		return fmt.Errorf("%w\n  Valid keys: %s", err, strings.Join(config.Keys, ", "))
	}
	return err
}
