package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Mohsinsiddi/suiforge/internal/chain"
)

// errPublishCancelled is returned when the user declines after the dry run.
var errPublishCancelled = errors.New("publish cancelled")

// txSigner is the part of wallet.Signer the publisher needs.
type txSigner interface {
	Address() string
	SignTransaction(txBytes []byte) (string, error)
}

// publisher runs unsafe_publish → dry-run → confirm → sign → execute → wait.
type publisher struct {
	client  *chain.SUIClient
	signer  txSigner
	budget  uint64
	confirm func(*publishResult) bool
	// progress, when set, is told which step is running.
	progress func(step string)
	log      zerolog.Logger
}

// publishResult is what a publish (or dry run) produced.
type publishResult struct {
	DryRun    *chain.DryRunResult
	Digest    string
	PackageID string
	GasUsed   *big.Int
	// GasPrice is the epoch's reference gas price in MIST; 0 if the node
	// did not report one.
	GasPrice uint64
	Created  []chain.ObjectChange
}

// CoinType returns "<package>::<module>::<WITNESS>" for the published coin.
func (r *publishResult) CoinType(module, witness string) string {
	if r.PackageID == "" {
		return ""
	}
	return r.PackageID + "::" + module + "::" + witness
}

// Publish builds and dry-runs the publish transaction for modules. With
// dryRunOnly it stops there; otherwise it asks confirm, signs, executes and
// waits for the transaction to be indexed.
func (p *publisher) Publish(ctx context.Context, modules [][]byte, dryRunOnly bool) (*publishResult, error) {
	sender := p.signer.Address()
	p.step("Building publish transaction")
	txBytes, err := p.client.UnsafePublish(ctx, sender, modules, chain.FrameworkDependencies, "", p.budget)
	if err != nil {
		return nil, fmt.Errorf("building publish transaction: %w", err)
	}
	localDigest := chain.TransactionDigest(txBytes)
	p.log.Debug().Str("sender", sender).Int("tx_bytes", len(txBytes)).Str("digest", localDigest).Msg("publish transaction built")

	p.step("Dry-running publish")
	dry, err := p.client.DryRun(ctx, txBytes)
	if err != nil {
		return nil, fmt.Errorf("dry run: %w", err)
	}
	if err := dry.Effects.Err(); err != nil {
		return nil, fmt.Errorf("dry run: %w", err)
	}
	res := &publishResult{DryRun: dry, GasUsed: dry.Effects.GasUsed.Total()}
	if price, err := p.client.GetReferenceGasPrice(ctx); err != nil {
		p.log.Debug().Err(err).Msg("reference gas price unavailable")
	} else {
		res.GasPrice = price
	}
	p.log.Debug().Str("gas", res.GasUsed.String()).Uint64("gas_price", res.GasPrice).Msg("dry run succeeded")
	if dryRunOnly {
		return res, nil
	}
	if p.confirm != nil && !p.confirm(res) {
		return nil, errPublishCancelled
	}

	sig, err := p.signer.SignTransaction(txBytes)
	if err != nil {
		return nil, fmt.Errorf("signing: %w", err)
	}
	p.step("Executing publish")
	resp, err := p.client.Execute(ctx, txBytes, []string{sig})
	if err != nil {
		return nil, fmt.Errorf("executing: %w", err)
	}
	if resp.Digest != "" && resp.Digest != localDigest {
		p.log.Warn().Str("node", resp.Digest).Str("local", localDigest).Msg("digest mismatch")
	}
	if resp.Effects == nil {
		digest := resp.Digest
		if digest == "" {
			digest = localDigest
		}
		p.step("Waiting for " + digest)
		if resp, err = p.client.WaitForTransaction(ctx, digest); err != nil {
			return nil, err
		}
	}
	if err := resp.Effects.Err(); err != nil {
		return nil, err
	}

	res.Digest = resp.Digest
	res.GasUsed = resp.Effects.GasUsed.Total()
	if res.PackageID, err = resp.PackageID(); err != nil {
		return nil, err
	}
	for _, c := range resp.ObjectChanges {
		if c.Type == "created" {
			res.Created = append(res.Created, c)
		}
	}
	return res, nil
}

func (p *publisher) step(name string) {
	if p.progress != nil {
		p.progress(name)
	}
}

// shortType trims the package prefix from a Move type for display:
// "0x2::coin::TreasuryCap<0xabc::m::M>" becomes "TreasuryCap<…::m::M>".
func shortType(t string) string {
	head, generic, hasGeneric := strings.Cut(t, "<")
	if i := strings.LastIndex(head, "::"); i >= 0 {
		head = head[i+2:]
	}
	if !hasGeneric {
		return head
	}
	if i := strings.Index(generic, "::"); i >= 0 {
		generic = "…" + generic[i:]
	}
	return head + "<" + generic
}
