package cmd

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/suiforge/internal/chain"
	"github.com/Mohsinsiddi/suiforge/internal/coin"
	"github.com/Mohsinsiddi/suiforge/internal/config"
	tmplsync "github.com/Mohsinsiddi/suiforge/internal/sync"
	"github.com/Mohsinsiddi/suiforge/internal/ui"
)

// Output encodings for built modules.
const (
	formatHex    = "hex"
	formatBase64 = "base64"
	formatRaw    = "raw"
)

// moduleMagic starts every Move binary module.
var moduleMagic = []byte{0xa1, 0x1c, 0xeb, 0x0b}

var coinCmd = &cobra.Command{
	Use:   "coin",
	Short: "Build, inspect and publish coin modules",
}

// coinFlags holds the flags of `coin create`.
type coinFlags struct {
	name, symbol, description string
	iconURL, iconFile         string
	decimals                  uint8
	supply                    string
	kind                      string
	dropTreasury              bool
	metadataMutable           bool
	out, format               string
	publish, dryRun           bool
	wallet                    string
	yes, interactive          bool
	noValidate                bool
	gasBudget                 uint64
}

var createFlags coinFlags

var coinCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Build a coin module from a template and optionally publish it",
	Long: `Build a coin module by patching a precompiled template with your coin's
metadata. Without --publish or --dry-run the module is written to --out (or
printed as hex).

Examples:
  suiforge coin create --name Token --symbol TSTTK --supply 1000 --out coin.mv --format raw
  suiforge coin create --name Token --symbol TSTTK --supply 1000 --icon-file logo.png --dry-run
  suiforge coin create --type regulated --name Token --symbol TSTTK --supply 1000 --publish
  suiforge coin create --interactive --publish`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		f := createFlags

		if f.interactive {
			if err := runCoinForm(&f); err != nil {
				return err
			}
		}
		md, err := f.metadata()
		if err != nil {
			return err
		}
		if !f.noValidate {
			if err := md.Validate(); err != nil {
				return err
			}
		}
		if f.iconFile != "" {
			if md.IconURL, err = uploadIcon(cmd.Context(), f.iconFile); err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success("Icon uploaded: "+ui.Addr(md.IconURL)))
		}

		module, err := newParameterizer().BuildModule(md)
		if err != nil {
			return err
		}
		supply, err := coin.Supply(md.MintAmount, md.Decimals)
		if err != nil {
			return err
		}
		modName, witness := md.Kind.Placeholders()
		modName, witness = renamedIdentifiers(md.Symbol, modName, witness)
		fmt.Fprintln(out, ui.KeyValueBlock("Coin module", [][2]string{
			{"Template", string(md.Kind)},
			{"Module", modName + "::" + witness},
			{"Name", md.Name},
			{"Symbol", md.Symbol},
			{"Decimals", strconv.Itoa(int(md.Decimals))},
			{"Supply", md.MintAmount.String() + " (" + supply.String() + " base units)"},
			{"Icon", orDash(md.IconURL)},
			{"Metadata mutable", yesNo(md.IsMetadataMutable)},
			{"Freeze treasury", yesNo(md.IsDropTreasury)},
			{"Size", fmt.Sprintf("%d bytes", len(module))},
		}))

		if !f.publish && !f.dryRun {
			return writeModule(out, module, f.out, f.format)
		}
		if f.out != "" {
			if err := writeModule(out, module, f.out, f.format); err != nil {
				return err
			}
		}
		return publishCoin(cmd.Context(), out, module, modName, witness, f)
	},
}

// metadata converts flags into coin metadata.
func (f coinFlags) metadata() (coin.Metadata, error) {
	kind, err := coin.ParseTemplateKind(f.kind)
	if err != nil {
		return coin.Metadata{}, err
	}
	supply := decimal.Zero
	if strings.TrimSpace(f.supply) != "" {
		if supply, err = decimal.NewFromString(strings.TrimSpace(f.supply)); err != nil {
			return coin.Metadata{}, fmt.Errorf("invalid --supply %q: %w", f.supply, err)
		}
	}
	return coin.Metadata{
		Name:              f.name,
		Symbol:            f.symbol,
		Description:       f.description,
		IconURL:           f.iconURL,
		Decimals:          f.decimals,
		MintAmount:        supply,
		IsDropTreasury:    f.dropTreasury,
		IsMetadataMutable: f.metadataMutable,
		Kind:              kind,
	}, nil
}

func runCoinForm(f *coinFlags) error {
	kinds := make([]string, len(coin.Kinds))
	for i, k := range coin.Kinds {
		kinds[i] = string(k)
	}
	answers, err := ui.RunForm("New coin", []ui.FormField{
		{Key: "type", Label: "Template", Choices: kinds, Default: f.kind},
		{Key: "name", Label: "Name", Default: f.name},
		{Key: "symbol", Label: "Symbol", Default: f.symbol},
		{Key: "description", Label: "Description", Default: f.description},
		{Key: "icon", Label: "Icon URL (or leave empty)", Default: f.iconURL},
		{Key: "decimals", Label: "Decimals", Default: strconv.Itoa(int(f.decimals)), Validate: func(s string) error {
			_, err := strconv.ParseUint(s, 10, 8)
			return err
		}},
		{Key: "supply", Label: "Total supply", Default: f.supply, Validate: func(s string) error {
			_, err := decimal.NewFromString(s)
			return err
		}},
		{Key: "mutable", Label: "Metadata mutable after publish?", Choices: []string{"no", "yes"}, Default: yesNo(f.metadataMutable)},
		{Key: "drop", Label: "Freeze the treasury cap?", Choices: []string{"no", "yes"}, Default: yesNo(f.dropTreasury)},
	})
	if err != nil {
		return err
	}
	return f.applyAnswers(answers)
}

// applyAnswers copies the create form's answers into f. f is left unchanged
// when an answer cannot be parsed.
func (f *coinFlags) applyAnswers(answers map[string]string) error {
	d, err := strconv.ParseUint(strings.TrimSpace(answers["decimals"]), 10, 8)
	if err != nil {
		return fmt.Errorf("decimals must be a whole number between 0 and 255: %w", err)
	}
	f.kind = answers["type"]
	f.name = answers["name"]
	f.symbol = answers["symbol"]
	f.description = answers["description"]
	f.iconURL = answers["icon"]
	f.decimals = uint8(d)
	f.supply = answers["supply"]
	f.metadataMutable = answers["mutable"] == "yes"
	f.dropTreasury = answers["drop"] == "yes"
	return nil
}

func publishCoin(ctx context.Context, out io.Writer, module []byte, modName, witness string, f coinFlags) error {
	net, client, err := suiClient()
	if err != nil {
		return err
	}
	walletName := f.wallet
	if walletName == "" {
		walletName = cfg.DefaultWallet
	}
	w, mgr, err := loadSigningWallet(walletName)
	if err != nil {
		return err
	}
	signer, err := mgr.Signer(w.Name)
	if err != nil {
		return err
	}
	budget := f.gasBudget
	if budget == 0 {
		budget = cfg.GasBudget
	}
	if !f.dryRun {
		warnIfNoSession(out)
	}

	p := &publisher{
		client: client,
		signer: signer,
		budget: budget,
		log:    log,
		confirm: func(res *publishResult) bool {
			if f.yes {
				return true
			}
			return ui.Confirm(fmt.Sprintf("Publish on %s from %s for about %s?",
				net.Name, ui.TruncateAddr(signer.Address()), gasSummary(ctx, res)))
		},
	}

	timeout := config.TxConfirmTimeout
	if f.dryRun {
		timeout = config.DryRunTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	spin := ui.NewSpinner(fmt.Sprintf("Publishing on %s...", ui.NetworkName(net.Name)))
	spin.Start()
	p.progress = func(step string) { spin.Update(step + "...") }
	// The confirm prompt needs the terminal, so the spinner is paused around it.
	ask := p.confirm
	p.confirm = func(res *publishResult) bool {
		spin.Stop()
		if !ask(res) {
			return false
		}
		spin = ui.NewSpinner("Signing...")
		spin.Start()
		return true
	}
	res, err := p.Publish(ctx, [][]byte{module}, f.dryRun)
	spin.Stop()
	if errors.Is(err, errPublishCancelled) {
		fmt.Fprintln(out, ui.Meta("Cancelled."))
		return nil
	}
	if err != nil {
		return err
	}

	if f.dryRun {
		fmt.Fprintln(out, ui.Success("Dry run succeeded. Estimated gas: "+gasSummary(ctx, res)))
		fmt.Fprintln(out, ui.Hint("Publish with --publish instead of --dry-run."))
		return nil
	}

	pairs := [][2]string{
		{"Package", ui.Addr(res.PackageID)},
		{"Coin type", res.CoinType(modName, witness)},
		{"Digest", ui.Addr(res.Digest)},
		{"Gas", chain.MistToSUI(res.GasUsed) + " SUI"},
	}
	for _, c := range res.Created {
		pairs = append(pairs, [2]string{shortType(c.ObjectType), ui.Addr(c.ObjectID)})
	}
	if u := net.TxURL(res.Digest); u != "" {
		pairs = append(pairs, [2]string{"Explorer", u})
	}
	fmt.Fprintln(out, ui.KeyValueBlock("Coin published", pairs))
	if ct := res.CoinType(modName, witness); ct != "" && !f.dropTreasury {
		fmt.Fprintln(out, ui.Hint("Check the minted supply with: suiforge balance --coin "+ct))
	}
	return nil
}

// gasSummary renders the dry-run gas cost with its fiat value and the
// reference gas price when known.
func gasSummary(ctx context.Context, res *publishResult) string {
	cost := chain.MistToSUI(res.GasUsed) + " SUI"
	if v := fiatValue(ctx, res.GasUsed); v != "" {
		cost += " (" + v + ")"
	}
	if res.GasPrice > 0 {
		cost += fmt.Sprintf(" at %d MIST/unit", res.GasPrice)
	}
	return cost
}

var inspectKind string

var coinInspectCmd = &cobra.Command{
	Use:   "inspect <file|hex>",
	Short: "Show the coin fields patched into a built module",
	Long: `Decode the placeholder constants of a module built from a template.
The argument is a file (raw, hex or base64) or a hex string. Without --type
both templates are tried.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		module, err := readModuleArg(args[0])
		if err != nil {
			return err
		}
		report, err := inspectModule(module, inspectKind)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.KeyValueBlock("Module", [][2]string{
			{"Template", string(report.Kind)},
			{"Module", report.Module},
			{"Witness", report.Witness},
		}))
		t := ui.NewTable([]ui.Column{{Title: "Constant"}, {Title: "Type"}, {Title: "Value"}, {Title: "Patched"}})
		for _, fld := range report.Fields {
			t.AddRow(ui.Row{string(fld.Name), string(fld.Type), fmt.Sprint(fld.Value), yesNo(fld.Patched)})
		}
		fmt.Fprintln(out, t.Render())
		return nil
	},
}

var coinTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List template kinds and their placeholder constants",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		z := newParameterizer()

		kinds := ui.NewTable([]ui.Column{{Title: "Kind"}, {Title: "Module"}, {Title: "Witness"}, {Title: "Size"}, {Title: "Description"}})
		for _, k := range coin.Kinds {
			b, err := z.SelectTemplate(k)
			if err != nil {
				return err
			}
			m, w := k.Placeholders()
			kinds.AddRow(ui.Row{string(k), m, w, fmt.Sprintf("%d B", len(b)), k.Description()})
		}
		fmt.Fprintln(out, kinds.Render())

		consts := ui.NewTable([]ui.Column{{Title: "Constant"}, {Title: "Type"}, {Title: "Placeholder"}})
		for _, d := range coin.Descriptors() {
			consts.AddRow(ui.Row{string(d.Name), string(d.Type), fmt.Sprintf("%v", d.Default)})
		}
		fmt.Fprintln(out, consts.Render())
		if cfg.TemplateDir != "" {
			fmt.Fprintln(out, ui.Info("Templates are read from "+cfg.TemplateDir+" when present."))
		}
		return nil
	},
}

var coinTemplatesSyncCmd = &cobra.Command{
	Use:   "sync [manifest-url]",
	Short: "Download the latest templates from a manifest",
	Long: `Fetch a templates manifest and install each listed template into the
template directory (template_dir, or <config>/templates). Every template is
checked for its placeholder identifiers and constants before it replaces the
file on disk.

The URL defaults to the template_source config key; passing one saves it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		source := cfg.TemplateSource
		if len(args) == 1 {
			source = args[0]
		}
		dir := cfg.TemplatesPath()

		ctx, cancel := context.WithTimeout(cmd.Context(), config.UploadTimeout)
		defer cancel()

		sp := ui.NewSpinnerTo(cmd.ErrOrStderr(), "Syncing templates...")
		sp.Start()
		results, err := tmplsync.New(dir, log).Run(ctx, source)
		sp.Stop()
		if err != nil {
			return err
		}

		changed := source != cfg.TemplateSource || cfg.TemplateDir != dir
		cfg.TemplateSource = source
		cfg.TemplateDir = dir
		if changed {
			if err := cfg.Save(); err != nil {
				return err
			}
		}

		t := ui.NewTable([]ui.Column{{Title: "Kind"}, {Title: "File"}, {Title: "Size"}, {Title: "Status"}})
		for _, r := range results {
			status := ui.Meta("unchanged")
			if r.Updated {
				status = ui.Success("updated")
			}
			t.AddRow(ui.Row{string(r.Kind), r.Path, fmt.Sprintf("%d B", r.Size), status})
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Info(fmt.Sprintf("%d template(s) synced into %s", len(results), dir)))
		return nil
	},
}

func init() {
	f := coinCreateCmd.Flags()
	f.StringVar(&createFlags.name, "name", "", "coin name")
	f.StringVar(&createFlags.symbol, "symbol", "", "coin symbol, 5-8 letters; also names the module, so names the template already uses (option, sender, transfer...) are rejected")
	f.StringVar(&createFlags.description, "description", "", "coin description")
	f.StringVar(&createFlags.iconURL, "icon-url", "", "icon URL")
	f.StringVar(&createFlags.iconFile, "icon-file", "", "upload this image to Walrus and use it as the icon")
	f.Uint8Var(&createFlags.decimals, "decimals", 9, "decimal places")
	f.StringVar(&createFlags.supply, "supply", "", "total supply in whole coins (e.g. 1000 or 1.5)")
	f.StringVar(&createFlags.kind, "type", string(coin.SimpleCoin), "template: simpleCoin or regulatedCoin")
	f.BoolVar(&createFlags.dropTreasury, "drop-treasury", false, "freeze the treasury cap after minting")
	f.BoolVar(&createFlags.metadataMutable, "metadata-mutable", false, "keep the coin metadata editable")
	f.StringVarP(&createFlags.out, "out", "o", "", "write the module to this file (- for stdout)")
	f.StringVar(&createFlags.format, "format", formatHex, "output encoding: hex, base64 or raw")
	f.BoolVar(&createFlags.publish, "publish", false, "publish the module")
	f.BoolVar(&createFlags.dryRun, "dry-run", false, "dry-run the publish without executing it")
	f.StringVar(&createFlags.wallet, "wallet", "", "signing wallet (default: configured default wallet)")
	f.BoolVarP(&createFlags.yes, "yes", "y", false, "skip the publish confirmation")
	f.BoolVarP(&createFlags.interactive, "interactive", "i", false, "fill in the coin details with a form")
	f.BoolVar(&createFlags.noValidate, "no-validate", false, "skip the name/symbol form rules")
	f.Uint64Var(&createFlags.gasBudget, "gas-budget", 0, "gas budget in MIST (default: config gas_budget)")
	coinCreateCmd.MarkFlagsMutuallyExclusive("publish", "dry-run")
	coinCreateCmd.MarkFlagsMutuallyExclusive("icon-url", "icon-file")

	coinInspectCmd.Flags().StringVar(&inspectKind, "type", "", "template kind the module was built from")

	coinTemplatesCmd.AddCommand(coinTemplatesSyncCmd)
	coinCmd.AddCommand(coinCreateCmd, coinInspectCmd, coinTemplatesCmd)
}

// --- helpers ---

func newParameterizer() *coin.Parameterizer {
	opts := []coin.Option{coin.WithLogger(log)}
	if cfg != nil && cfg.TemplateDir != "" {
		opts = append(opts, coin.WithTemplates(coin.DirTemplates{Dir: cfg.TemplateDir}))
	}
	return coin.New(opts...)
}

func renamedIdentifiers(symbol, module, witness string) (string, string) {
	ids := coin.IdentifierMap(symbol)
	if m, ok := ids[module]; ok {
		module = m
	}
	if w, ok := ids[witness]; ok {
		witness = w
	}
	return module, witness
}

// encodeModule renders module in the requested output format.
func encodeModule(module []byte, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case formatHex, "":
		return []byte(hexutil.Encode(module) + "\n"), nil
	case formatBase64:
		return []byte(base64.StdEncoding.EncodeToString(module) + "\n"), nil
	case formatRaw:
		return module, nil
	}
	return nil, fmt.Errorf("unknown --format %q (want hex, base64 or raw)", format)
}

func writeModule(out io.Writer, module []byte, path, format string) error {
	data, err := encodeModule(module, format)
	if err != nil {
		return err
	}
	if path == "" || path == "-" {
		_, err := out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing module: %w", err)
	}
	fmt.Fprintln(out, ui.Success(fmt.Sprintf("Module written to %s (%s)", path, strings.ToLower(format))))
	return nil
}

// decodeModule accepts raw bytecode or its hex / base64 text form.
func decodeModule(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, moduleMagic) {
		return data, nil
	}
	s := strings.TrimSpace(string(data))
	if b, err := hexutil.Decode(s); err == nil {
		return b, nil
	}
	if b, err := hexutil.Decode("0x" + s); err == nil {
		return b, nil
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil && bytes.HasPrefix(b, moduleMagic) {
		return b, nil
	}
	return nil, fmt.Errorf("input is not a Move module in raw, hex or base64 form")
}

func readModuleArg(arg string) ([]byte, error) {
	data, err := os.ReadFile(arg)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		data = []byte(arg)
	}
	return decodeModule(data)
}

func inspectModule(module []byte, kind string) (*coin.Report, error) {
	z := newParameterizer()
	if kind != "" {
		k, err := coin.ParseTemplateKind(kind)
		if err != nil {
			return nil, err
		}
		return z.Inspect(k, module)
	}
	var firstErr error
	for _, k := range coin.Kinds {
		r, err := z.Inspect(k, module)
		if err == nil {
			return r, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
