package wallet

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Intent scopes prepended to signed payloads.
const (
	IntentTransactionData byte = 0
	IntentPersonalMessage byte = 3
)

// Signer signs Sui transactions for a signing wallet.
type Signer struct {
	wallet *Wallet
	ks     KeystoreBackend
}

// NewSigner creates a signer for the given wallet.
func NewSigner(w *Wallet, ks KeystoreBackend) *Signer {
	return &Signer{wallet: w, ks: ks}
}

// SignTransaction signs BCS transaction bytes and returns the serialized
// signature expected by sui_executeTransactionBlock.
func (s *Signer) SignTransaction(txBytes []byte) (string, error) {
	priv, err := s.privateKey()
	if err != nil {
		return "", err
	}
	return signWithIntent(priv, IntentTransactionData, txBytes), nil
}

// Address returns the wallet's address.
func (s *Signer) Address() string {
	return s.wallet.Address
}

func (s *Signer) privateKey() (ed25519.PrivateKey, error) {
	if s.wallet.Type != TypeSigning {
		return nil, fmt.Errorf("wallet %q is watch-only and cannot sign", s.wallet.Name)
	}
	seed, err := s.ks.Retrieve(s.wallet.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}
	priv, err := ParsePrivateKey(seed)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	if got := AddressFromPublicKey(priv.Public().(ed25519.PublicKey)); got != s.wallet.Address {
		return nil, fmt.Errorf("%w: stored key belongs to %s, not %s", ErrInvalidKey, got, s.wallet.Address)
	}
	return priv, nil
}

// intentDigest is blake2b-256 over [scope, version 0, app id 0] ‖ payload.
func intentDigest(scope byte, payload []byte) []byte {
	h, _ := blake2b.New256(nil)
	h.Write([]byte{scope, 0, 0})
	h.Write(payload)
	return h.Sum(nil)
}

// signWithIntent returns base64(flag ‖ signature ‖ public key).
func signWithIntent(priv ed25519.PrivateKey, scope byte, payload []byte) string {
	sig := ed25519.Sign(priv, intentDigest(scope, payload))
	pub := priv.Public().(ed25519.PublicKey)

	out := make([]byte, 0, 1+ed25519.SignatureSize+ed25519.PublicKeySize)
	out = append(out, FlagED25519)
	out = append(out, sig...)
	out = append(out, pub...)
	return base64.StdEncoding.EncodeToString(out)
}
