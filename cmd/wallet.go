package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/suiforge/internal/ui"
	"github.com/Mohsinsiddi/suiforge/internal/wallet"
)

var walletKeyFlag string

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage Sui wallets",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a wallet",
	Long: `Add a watch-only wallet by address, or a signing wallet with --key.

--key accepts a 32-byte ed25519 seed as hex, or an entry copied from
sui.keystore (base64 of flag byte + seed).

Examples:
  suiforge wallet add treasury 0x304a...737d
  suiforge wallet add deployer --key 0x9d61...7f60`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		name := args[0]
		mgr := newWalletManager()

		if walletKeyFlag != "" {
			w, err := mgr.AddWithKey(name, walletKeyFlag)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
			fmt.Fprintln(out, ui.Hint(fmt.Sprintf("Set as default with: suiforge wallet use %s", name)))
			return nil
		}

		if len(args) < 2 {
			return fmt.Errorf("address required for watch-only wallet\n  Usage: suiforge wallet add <name> <address>\n  Or for signing: suiforge wallet add <name> --key <private-key>")
		}
		if err := mgr.Add(name, &wallet.Wallet{
			Address: args[1],
			Type:    wallet.TypeWatchOnly,
		}); err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(args[1]))))
		fmt.Fprintln(out, ui.Hint(fmt.Sprintf("Set as default with: suiforge wallet use %s", name)))
		return nil
	},
}

var walletGenerateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Generate a new ed25519 wallet",
	Long: `Generate a fresh ed25519 keypair and store the seed in the OS keychain.

The private key is displayed ONCE immediately after creation.
Copy it and store it in a password manager.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		name := args[0]
		mgr := newWalletManager()
		w, err := mgr.Generate(name)
		if err != nil {
			return err
		}
		key, err := mgr.ExportKey(name)
		if err != nil {
			return err
		}

		fmt.Fprintln(out)
		fmt.Fprintf(out, "  %s  %s\n", ui.Meta("Wallet :"), ui.Val(w.Name))
		fmt.Fprintf(out, "  %s  %s\n\n", ui.Meta("Address:"), ui.Addr(w.Address))
		fmt.Fprintln(out, ui.DangerBox(
			ui.Warn("SAVE YOUR PRIVATE KEY. It is shown only once. Never share it.")+"\n\n"+
				ui.Val(key)+"\n\n"+
				ui.Hint("Fund it on testnet with: suiforge faucet "+name),
		))
		fmt.Fprintln(out)
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		wallets := newWalletManager().List()

		if len(wallets) == 0 {
			fmt.Fprintln(out, ui.Info("No wallets configured yet."))
			fmt.Fprintln(out, ui.Hint("Create one with: suiforge wallet generate deployer"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 66},
			{Title: "Type", Width: 10},
			{Title: "Session", Width: 8},
			{Title: "Default", Width: 7},
		})
		for _, w := range wallets {
			def := ""
			if w.IsDefault || w.Name == cfg.DefaultWallet {
				def = "✓"
			}
			session := ""
			if w.Type == wallet.TypeSigning && wallet.IsUnlocked(w.Name) {
				session = "unlocked"
			}
			t.AddRow(ui.Row{w.Name, w.Address, walletTypeLabel(w.Type), session, def})
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Set the default wallet",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			picked, err := pickWallet(mgr, "Default wallet", false)
			if err != nil || picked == "" {
				return err
			}
			name = picked
		}
		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

var walletRemoveYes bool

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		name := args[0]
		if !walletRemoveYes && !ui.ConfirmDanger(fmt.Sprintf("Remove wallet %q and delete its key?", name)) {
			fmt.Fprintln(out, ui.Meta("Cancelled."))
			return nil
		}
		if err := newWalletManager().Remove(name); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletExportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Reveal the private key of a signing wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		name := args[0]

		fmt.Fprintln(out, ui.Warn("You are about to reveal a private key. Keep it secret."))
		if ui.Ask(fmt.Sprintf("Type wallet name %q to confirm", name), "") != name {
			fmt.Fprintln(out, ui.Err("Name mismatch. Export cancelled."))
			return nil
		}
		key, err := newWalletManager().ExportKey(name)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ui.DangerBox(ui.Warn("PRIVATE KEY. Do not share this with anyone.")+"\n\n"+ui.Val(key)))
		return nil
	},
}

var walletUnlockAll bool

var walletUnlockCmd = &cobra.Command{
	Use:   "unlock [name]",
	Short: "Cache wallet key(s) for the session (skips future keychain prompts)",
	Long: `Retrieve private keys from the OS keychain once and cache them in a
restricted session file so later publishes run without a prompt.

  suiforge wallet unlock            # pick a wallet from a list
  suiforge wallet unlock deployer   # unlock one wallet
  suiforge wallet unlock --all      # unlock every signing wallet`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		mgr := newWalletManager()

		var names []string
		switch {
		case walletUnlockAll:
			for _, w := range mgr.List() {
				if w.Type == wallet.TypeSigning && !wallet.IsUnlocked(w.Name) {
					names = append(names, w.Name)
				}
			}
		case len(args) == 1:
			names = args
		default:
			picked, err := pickWallet(mgr, "Unlock wallet  ·  select to cache key", true)
			if err != nil || picked == "" {
				return err
			}
			names = []string{picked}
		}
		if len(names) == 0 {
			fmt.Fprintln(out, ui.Info("Nothing to unlock."))
			return nil
		}

		fmt.Fprintln(out, ui.Info("Your OS keychain may prompt once per wallet being unlocked."))
		if err := mgr.Unlock(names...); err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("  %-20s unlocked", n)))
		}
		fmt.Fprintln(out, ui.Hint("Clear the session with: suiforge wallet lock"))
		return nil
	},
}

var walletLockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Clear the session cache (re-enables keychain prompts)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if !wallet.SessionActive() {
			fmt.Fprintln(out, ui.Meta("No active session. Nothing to clear."))
			return nil
		}
		if err := wallet.Lock(); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
		fmt.Fprintln(out, ui.Success("Session cleared. Keychain will be used on next access."))
		return nil
	},
}

var walletSignCmd = &cobra.Command{
	Use:   "sign <name> <message>",
	Short: "Sign a personal message",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, mgr, err := loadSigningWallet(args[0])
		if err != nil {
			return err
		}
		sig, err := wallet.SignMessage(w, mgr.Keystore(), []byte(args[1]))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Signed message", [][2]string{
			{"Signer", ui.Addr(w.Address)},
			{"Message", args[1]},
			{"Signature", sig},
		}))
		return nil
	},
}

var walletVerifyCmd = &cobra.Command{
	Use:   "verify <message> <signature>",
	Short: "Verify a personal message signature and print the signer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := wallet.VerifyMessage([]byte(args[0]), args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Valid signature from "+ui.Addr(addr)))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "private key for a signing wallet (stored in the OS keychain)")
	walletRemoveCmd.Flags().BoolVarP(&walletRemoveYes, "yes", "y", false, "skip confirmation")
	walletUnlockCmd.Flags().BoolVar(&walletUnlockAll, "all", false, "unlock all signing wallets")
	walletCmd.AddCommand(walletAddCmd, walletGenerateCmd, walletListCmd, walletUseCmd, walletRemoveCmd,
		walletExportCmd, walletUnlockCmd, walletLockCmd, walletSignCmd, walletVerifyCmd)
}

// warnIfNoSession prints a one-line hint when no session file is active.
// Call this before signing so the user understands why the OS keychain
// dialog is about to appear.
func warnIfNoSession(out io.Writer) {
	if !wallet.SessionActive() {
		fmt.Fprintln(out, ui.Info("No session active. The keychain may prompt before signing."))
		fmt.Fprintln(out, ui.Hint("Run 'suiforge wallet unlock --all' once to skip future prompts."))
	}
}

// walletTypeLabel converts an internal wallet type to a user-friendly label.
func walletTypeLabel(t string) string {
	if t == wallet.TypeSigning {
		return "signing"
	}
	return t
}

// newWalletManager creates a Manager backed by the config-dir JSON store.
func newWalletManager() *wallet.Manager {
	return wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())))
}

// loadSigningWallet loads a wallet by name and verifies it can sign
// transactions.
func loadSigningWallet(name string) (*wallet.Wallet, *wallet.Manager, error) {
	mgr := newWalletManager()
	if name == "" {
		if d := mgr.Default(); d != nil {
			name = d.Name
		}
	}
	if name == "" {
		return nil, nil, fmt.Errorf("no wallet selected; pass --wallet or set a default with `suiforge wallet use <name>`")
	}
	w, err := mgr.Get(name)
	if errors.Is(err, wallet.ErrWalletNotFound) {
		return nil, nil, fmt.Errorf("wallet %q not found; run `suiforge wallet list`", name)
	}
	if err != nil {
		return nil, nil, err
	}
	if w.Type != wallet.TypeSigning {
		return nil, nil, fmt.Errorf(
			"wallet %q is watch-only and cannot sign transactions\n  To add a signing wallet: suiforge wallet add <name> --key <private-key>", name)
	}
	return w, mgr, nil
}

func pickWallet(mgr *wallet.Manager, title string, signingOnly bool) (string, error) {
	var items []ui.PickerItem
	for _, w := range mgr.List() {
		if signingOnly && w.Type != wallet.TypeSigning {
			continue
		}
		sub := ui.TruncateAddr(w.Address)
		if wallet.IsUnlocked(w.Name) {
			sub += "  [cached]"
		}
		items = append(items, ui.PickerItem{Label: w.Name, SubLabel: sub, Value: w.Name})
	}
	if len(items) == 0 {
		return "", fmt.Errorf("no wallets; add one with `suiforge wallet generate <name>`")
	}
	return ui.PickItem(title, items, cfg.DefaultWallet)
}
