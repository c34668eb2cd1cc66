package wallet

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/suiforge/internal/bcs"
)

// ErrBadSignature is returned when a serialized signature does not verify.
var ErrBadSignature = errors.New("signature verification failed")

// SignMessage signs message with the personal-message intent. The message is
// BCS-encoded as vector<u8> before hashing, as wallets do, so the result
// verifies with Sui's verifyPersonalMessageSignature.
func SignMessage(w *Wallet, ks KeystoreBackend, message []byte) (string, error) {
	priv, err := NewSigner(w, ks).privateKey()
	if err != nil {
		return "", err
	}
	return signWithIntent(priv, IntentPersonalMessage, bcs.EncodeBytes(message)), nil
}

// VerifyMessage checks a serialized personal-message signature and returns
// the signer's address.
func VerifyMessage(message []byte, serialized string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(serialized)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if len(raw) != 1+ed25519.SignatureSize+ed25519.PublicKeySize {
		return "", fmt.Errorf("%w: expected %d bytes, got %d", ErrBadSignature, 1+ed25519.SignatureSize+ed25519.PublicKeySize, len(raw))
	}
	if raw[0] != FlagED25519 {
		return "", fmt.Errorf("%w: unsupported scheme flag 0x%02x", ErrBadSignature, raw[0])
	}
	sig := raw[1 : 1+ed25519.SignatureSize]
	pub := ed25519.PublicKey(raw[1+ed25519.SignatureSize:])

	if !ed25519.Verify(pub, intentDigest(IntentPersonalMessage, bcs.EncodeBytes(message)), sig) {
		return "", ErrBadSignature
	}
	return AddressFromPublicKey(pub), nil
}
