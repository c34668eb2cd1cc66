package chain

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

// Errors returned while interpreting transaction results.
var (
	ErrExecutionFailed = errors.New("transaction execution failed")
	ErrPackageNotFound = errors.New("no published package in transaction effects")
	ErrInvalidAddress  = errors.New("invalid Sui address")
)

// FrameworkDependencies are the package ids every published coin module
// links against: MoveStdlib (0x1) and Sui (0x2).
var FrameworkDependencies = []string{
	"0x0000000000000000000000000000000000000000000000000000000000000001",
	"0x0000000000000000000000000000000000000000000000000000000000000002",
}

// ExecutionStatus is the outcome recorded in transaction effects.
type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// GasCostSummary is the gas charged for a transaction, in MIST.
type GasCostSummary struct {
	ComputationCost         string `json:"computationCost"`
	StorageCost             string `json:"storageCost"`
	StorageRebate           string `json:"storageRebate"`
	NonRefundableStorageFee string `json:"nonRefundableStorageFee"`
}

// Total returns computation + storage - rebate.
func (g GasCostSummary) Total() *big.Int {
	total := new(big.Int)
	for _, s := range []string{g.ComputationCost, g.StorageCost} {
		if n, ok := new(big.Int).SetString(s, 10); ok {
			total.Add(total, n)
		}
	}
	if n, ok := new(big.Int).SetString(g.StorageRebate, 10); ok {
		total.Sub(total, n)
	}
	return total
}

// Owner identifies who owns an object. Kind is "AddressOwner",
// "ObjectOwner", "Shared" or "Immutable".
type Owner struct {
	Kind    string
	Address string
}

// UnmarshalJSON accepts both the bare string form ("Immutable") and the
// tagged object form ({"AddressOwner": "0x..."}).
func (o *Owner) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		o.Kind = s
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("parsing owner: %w", err)
	}
	for k, v := range m {
		o.Kind = k
		var addr string
		if json.Unmarshal(v, &addr) == nil {
			o.Address = addr
		}
	}
	return nil
}

// ObjectRef points at an object version.
type ObjectRef struct {
	ObjectID string `json:"objectId"`
	Digest   string `json:"digest"`
}

// OwnedObjectRef is an object reference and its owner.
type OwnedObjectRef struct {
	Owner     Owner     `json:"owner"`
	Reference ObjectRef `json:"reference"`
}

// TransactionEffects is the subset of effects suiforge reads.
type TransactionEffects struct {
	Status            ExecutionStatus  `json:"status"`
	GasUsed           GasCostSummary   `json:"gasUsed"`
	TransactionDigest string           `json:"transactionDigest"`
	Created           []OwnedObjectRef `json:"created"`
}

// Err returns nil for a successful transaction and ErrExecutionFailed
// otherwise.
func (e *TransactionEffects) Err() error {
	if e.Status.Status == "success" {
		return nil
	}
	msg := e.Status.Error
	if msg == "" {
		msg = e.Status.Status
	}
	return fmt.Errorf("%w: %s", ErrExecutionFailed, msg)
}

// ObjectChange is one entry of a transaction's object changes.
type ObjectChange struct {
	Type       string   `json:"type"`
	PackageID  string   `json:"packageId,omitempty"`
	ObjectID   string   `json:"objectId,omitempty"`
	ObjectType string   `json:"objectType,omitempty"`
	Modules    []string `json:"modules,omitempty"`
}

// TransactionResponse is returned by execute and getTransactionBlock.
type TransactionResponse struct {
	Digest        string              `json:"digest"`
	Effects       *TransactionEffects `json:"effects"`
	ObjectChanges []ObjectChange      `json:"objectChanges"`
	Errors        []string            `json:"errors,omitempty"`
}

// PackageID returns the id of the package published by this transaction,
// preferring the "published" object change over the effects scan.
func (r *TransactionResponse) PackageID() (string, error) {
	for _, c := range r.ObjectChanges {
		if c.Type == "published" && c.PackageID != "" {
			return c.PackageID, nil
		}
	}
	if r.Effects == nil {
		return "", ErrPackageNotFound
	}
	return PublishedPackageID(r.Effects)
}

// DryRunResult is the response of sui_dryRunTransactionBlock.
type DryRunResult struct {
	Effects       TransactionEffects `json:"effects"`
	ObjectChanges []ObjectChange     `json:"objectChanges"`
}

// PublishedPackageID returns the created object owned by "Immutable": the
// only immutable object a publish creates is the package itself.
func PublishedPackageID(effects *TransactionEffects) (string, error) {
	for _, c := range effects.Created {
		if c.Owner.Kind == "Immutable" {
			return c.Reference.ObjectID, nil
		}
	}
	return "", ErrPackageNotFound
}

// TransactionDigest computes the digest a node assigns to txBytes:
// base58(blake2b256("TransactionData::" || txBytes)).
func TransactionDigest(txBytes []byte) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte("TransactionData::"))
	h.Write(txBytes)
	return base58.Encode(h.Sum(nil))
}

// NormalizeAddress left-pads a hex address or object id to 32 bytes and
// returns it lower-case with a 0x prefix. "0x2" becomes 0x000...002.
func NormalizeAddress(s string) (string, error) {
	h := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X"))
	if h == "" || len(h) > 64 {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	h = strings.Repeat("0", 64-len(h)) + h
	if _, err := hex.DecodeString(h); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return "0x" + h, nil
}
