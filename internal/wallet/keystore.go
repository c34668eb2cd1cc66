package wallet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

const (
	keychainService = "suiforge"
	// keyEnvVar, when set, supplies the signing key for every wallet. Meant
	// for CI where no keychain is available.
	keyEnvVar = "SUIFORGE_KEY"
	// passwordEnvVar unlocks the encrypted file backend.
	passwordEnvVar = "SUIFORGE_KEYRING_PASSWORD"
)

// ErrKeyNotFound is returned when no source holds the key for a ref.
var ErrKeyNotFound = errors.New("key not found")

// KeystoreBackend stores private key seeds by reference.
type KeystoreBackend interface {
	Store(name, hexKey string) (string, error)
	Retrieve(ref string) (string, error)
	Delete(ref string) error
}

// sessionCache holds keys retrieved during this process so the keychain is
// asked at most once per wallet.
var sessionCache sync.Map

// Keystore wraps OS keychain access.
type Keystore struct {
	ring keyring.Keyring
}

// DefaultKeystore returns a keystore backed by the OS keychain.
func DefaultKeystore() *Keystore {
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
		FileDir:                  fileKeyDir(),
		FilePasswordFunc:         filePassword,
	}

	// On Linux without a GUI, fall back to file-based storage.
	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		ring, _ = keyring.Open(keyring.Config{
			ServiceName:      keychainService,
			AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
			FileDir:          fileKeyDir(),
			FilePasswordFunc: filePassword,
		})
	}

	return &Keystore{ring: ring}
}

// Store saves a private key seed for a wallet name and returns a reference.
func (k *Keystore) Store(name, hexKey string) (string, error) {
	ref := keyRef(name)
	key := normaliseHexKey(hexKey)
	if k.ring != nil {
		err := k.ring.Set(keyring.Item{
			Key:   ref,
			Data:  []byte(key),
			Label: "suiforge wallet " + name,
		})
		if err != nil {
			return "", fmt.Errorf("keychain store: %w", err)
		}
	}
	sessionCache.Store(ref, key)
	return ref, nil
}

// Retrieve fetches a key by reference. Sources are consulted in order: the
// SUIFORGE_KEY environment variable, keys already read by this process, the
// unlocked-session file, then the keychain.
func (k *Keystore) Retrieve(ref string) (string, error) {
	if v := os.Getenv(keyEnvVar); v != "" {
		return normaliseHexKey(v), nil
	}
	if v, ok := sessionCache.Load(ref); ok {
		return v.(string), nil
	}
	if v, ok := GetSessionKey(ref); ok {
		sessionCache.Store(ref, v)
		return v, nil
	}
	if k.ring == nil {
		return "", fmt.Errorf("%w: %s (keystore not available)", ErrKeyNotFound, ref)
	}
	item, err := k.ring.Get(ref)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, ref)
	}
	if err != nil {
		return "", fmt.Errorf("keychain retrieve: %w", err)
	}
	key := string(item.Data)
	sessionCache.Store(ref, key)
	return key, nil
}

// Delete removes a stored key from the keychain and every cache.
func (k *Keystore) Delete(ref string) error {
	sessionCache.Delete(ref)
	RemoveSessionKey(ref)
	if k.ring == nil {
		return nil
	}
	if err := k.ring.Remove(ref); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && !os.IsNotExist(err) {
		return fmt.Errorf("keychain delete: %w", err)
	}
	return nil
}

// InMemoryKeystore stores keys in memory (for tests).
type InMemoryKeystore struct {
	mu   sync.Mutex
	data map[string]string
}

// NewInMemoryKeystore creates an in-memory keystore.
func NewInMemoryKeystore() *InMemoryKeystore {
	return &InMemoryKeystore{data: make(map[string]string)}
}

func (k *InMemoryKeystore) Store(name, hexKey string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	ref := keyRef(name)
	k.data[ref] = normaliseHexKey(hexKey)
	return ref, nil
}

func (k *InMemoryKeystore) Retrieve(ref string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.data[ref]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, ref)
	}
	return v, nil
}

func (k *InMemoryKeystore) Delete(ref string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.data, ref)
	return nil
}

// --- internal ---

func keyRef(name string) string {
	return keychainService + "." + name
}

// normaliseHexKey trims whitespace and any 0x prefix.
func normaliseHexKey(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s[2:]
	}
	return s
}

func fileKeyDir() string {
	if dir := os.Getenv("SUIFORGE_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, "keys")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "suiforge-keys")
	}
	return filepath.Join(home, ".suiforge", "keys")
}

func filePassword(prompt string) (string, error) {
	if v := os.Getenv(passwordEnvVar); v != "" {
		return v, nil
	}
	return keyring.TerminalPrompt(prompt)
}
