package wallet

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/blake2b"
)

// FlagED25519 is the signature scheme flag Sui prepends to ed25519 keys and
// signatures.
const FlagED25519 byte = 0x00

// AddressFromPublicKey derives the Sui address of an ed25519 public key:
// blake2b-256 over the scheme flag followed by the key.
func AddressFromPublicKey(pub ed25519.PublicKey) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte{FlagED25519})
	h.Write(pub)
	return hexutil.Encode(h.Sum(nil))
}

// ParsePrivateKey accepts a 32-byte ed25519 seed as hex (with or without
// 0x) or in the base64 form used by sui.keystore (flag byte + seed).
func ParsePrivateKey(s string) (ed25519.PrivateKey, error) {
	s = strings.TrimSpace(s)

	if b, err := hexutil.Decode("0x" + normaliseHexKey(s)); err == nil {
		if len(b) != ed25519.SeedSize {
			return nil, fmt.Errorf("%w: seed must be %d bytes, got %d", ErrInvalidKey, ed25519.SeedSize, len(b))
		}
		return ed25519.NewKeyFromSeed(b), nil
	}

	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: not hex or base64", ErrInvalidKey)
	}
	if len(b) != ed25519.SeedSize+1 {
		return nil, fmt.Errorf("%w: keystore entry must be %d bytes, got %d", ErrInvalidKey, ed25519.SeedSize+1, len(b))
	}
	if b[0] != FlagED25519 {
		return nil, fmt.Errorf("%w: unsupported key scheme flag 0x%02x", ErrInvalidKey, b[0])
	}
	return ed25519.NewKeyFromSeed(b[1:]), nil
}

// seedHex returns the hex-encoded seed of priv, the form kept in the keychain.
func seedHex(priv ed25519.PrivateKey) string {
	return hex.EncodeToString(priv.Seed())
}

// ValidAddress reports whether s is a full-length 0x-prefixed Sui address.
func ValidAddress(s string) bool {
	if len(s) != 66 || !strings.HasPrefix(s, "0x") {
		return false
	}
	_, err := hex.DecodeString(s[2:])
	return err == nil
}
