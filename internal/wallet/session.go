package wallet

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// cacheDirEnvVar overrides where the session file lives.
const cacheDirEnvVar = "SUIFORGE_CACHE_DIR"

// sessionFilePath returns the per-user session file holding keys of
// unlocked wallets. It is written with 0600 permissions.
//
//	macOS:   ~/Library/Caches/suiforge/session.json
//	Linux:   ~/.cache/suiforge/session.json
//	Windows: %LocalAppData%\suiforge\session.json
func sessionFilePath() string {
	if dir := os.Getenv(cacheDirEnvVar); dir != "" {
		return filepath.Join(dir, "session.json")
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "suiforge", "session.json")
}

// loadSessionKeys returns the ref → seed map, empty (never nil) on any error.
func loadSessionKeys() map[string]string {
	data, err := os.ReadFile(sessionFilePath())
	if err != nil {
		return make(map[string]string)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return make(map[string]string)
	}
	return m
}

func saveSessionKeys(m map[string]string) error {
	path := sessionFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	_ = os.Chmod(path, 0o600)
	return nil
}

// LoadSessionSnapshot returns a copy of the session map in one file read.
func LoadSessionSnapshot() map[string]string {
	return loadSessionKeys()
}

// GetSessionKey returns a cached key for ref, or ("", false) if not cached.
func GetSessionKey(ref string) (string, bool) {
	v, ok := loadSessionKeys()[ref]
	return v, ok
}

// IsUnlocked reports whether the named wallet's key is in the session file.
func IsUnlocked(name string) bool {
	_, ok := GetSessionKey(keyRef(name))
	return ok
}

// PutSessionKey caches a key for ref in the session file.
func PutSessionKey(ref, hexKey string) error {
	m := loadSessionKeys()
	m[ref] = normaliseHexKey(hexKey)
	return saveSessionKeys(m)
}

// BulkPutSessionKeys merges keys into the session file in a single write.
func BulkPutSessionKeys(keys map[string]string) error {
	if len(keys) == 0 {
		return nil
	}
	m := loadSessionKeys()
	for ref, hexKey := range keys {
		m[ref] = normaliseHexKey(hexKey)
	}
	return saveSessionKeys(m)
}

// RemoveSessionKey evicts a single key from the session file.
func RemoveSessionKey(ref string) {
	m := loadSessionKeys()
	if _, ok := m[ref]; !ok {
		return
	}
	delete(m, ref)
	_ = saveSessionKeys(m)
}

// ClearSession removes all cached keys by deleting the session file.
func ClearSession() error {
	err := os.Remove(sessionFilePath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// SessionActive reports whether a non-empty session file exists.
func SessionActive() bool {
	return len(loadSessionKeys()) > 0
}

// Unlock copies the keys of the named signing wallets from the keystore
// into the session file, so later commands sign without a keychain prompt.
func (m *Manager) Unlock(names ...string) error {
	keys := make(map[string]string, len(names))
	for _, name := range names {
		w, err := m.Get(name)
		if err != nil {
			return err
		}
		if w.Type != TypeSigning {
			continue
		}
		key, err := m.Keystore().Retrieve(w.KeyRef)
		if err != nil {
			return err
		}
		keys[w.KeyRef] = key
	}
	return BulkPutSessionKeys(keys)
}

// Lock clears the session file and this process's key cache.
func Lock() error {
	sessionCache.Range(func(k, _ any) bool {
		sessionCache.Delete(k)
		return true
	})
	return ClearSession()
}
