package wallet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetSession points the session file at a fresh temp dir.
func resetSession(t *testing.T) {
	t.Helper()
	t.Setenv(cacheDirEnvVar, t.TempDir())
	t.Setenv(keyEnvVar, "")
	t.Cleanup(func() {
		sessionCache.Range(func(k, _ any) bool {
			sessionCache.Delete(k)
			return true
		})
	})
}

// ---------------------------------------------------------------------------
// SessionActive
// ---------------------------------------------------------------------------

func TestSessionActiveEmpty(t *testing.T) {
	resetSession(t)
	assert.False(t, SessionActive())
}

func TestSessionActiveAfterPut(t *testing.T) {
	resetSession(t)
	require.NoError(t, PutSessionKey("suiforge.test", "0xdeadbeef"))
	assert.True(t, SessionActive())
}

// ---------------------------------------------------------------------------
// PutSessionKey / GetSessionKey
// ---------------------------------------------------------------------------

func TestPutAndGetSessionKey(t *testing.T) {
	resetSession(t)
	require.NoError(t, PutSessionKey("suiforge.mywallet", "0xabcdef"))

	got, ok := GetSessionKey("suiforge.mywallet")
	require.True(t, ok)
	assert.Equal(t, "abcdef", got)
}

func TestGetSessionKeyMissing(t *testing.T) {
	resetSession(t)
	_, ok := GetSessionKey("suiforge.nonexistent")
	assert.False(t, ok)
}

func TestPutSessionKeyOverwrites(t *testing.T) {
	resetSession(t)
	require.NoError(t, PutSessionKey("suiforge.wallet1", "first"))
	require.NoError(t, PutSessionKey("suiforge.wallet1", "second"))

	got, ok := GetSessionKey("suiforge.wallet1")
	require.True(t, ok)
	assert.Equal(t, "second", got)
}

// ---------------------------------------------------------------------------
// BulkPutSessionKeys / LoadSessionSnapshot
// ---------------------------------------------------------------------------

func TestBulkPutSessionKeysEmpty(t *testing.T) {
	resetSession(t)
	require.NoError(t, BulkPutSessionKeys(map[string]string{}))
	assert.False(t, SessionActive())
}

func TestBulkPutSessionKeysMerges(t *testing.T) {
	resetSession(t)
	require.NoError(t, PutSessionKey("suiforge.existing", "k0"))
	require.NoError(t, BulkPutSessionKeys(map[string]string{
		"suiforge.new1": "k1",
		"suiforge.new2": "k2",
	}))

	snap := LoadSessionSnapshot()
	assert.Equal(t, map[string]string{
		"suiforge.existing": "k0",
		"suiforge.new1":     "k1",
		"suiforge.new2":     "k2",
	}, snap)
}

func TestLoadSessionSnapshotIsACopy(t *testing.T) {
	resetSession(t)
	require.NoError(t, PutSessionKey("suiforge.x", "original"))

	snap := LoadSessionSnapshot()
	snap["suiforge.x"] = "mutated"

	got, ok := GetSessionKey("suiforge.x")
	require.True(t, ok)
	assert.Equal(t, "original", got)
}

// ---------------------------------------------------------------------------
// IsUnlocked / RemoveSessionKey / ClearSession
// ---------------------------------------------------------------------------

func TestIsUnlocked(t *testing.T) {
	resetSession(t)
	require.NoError(t, PutSessionKey(keyRef("mywallet"), "somekey"))
	assert.True(t, IsUnlocked("mywallet"))
	assert.False(t, IsUnlocked("ghost"))
}

func TestRemoveSessionKey(t *testing.T) {
	resetSession(t)
	require.NoError(t, PutSessionKey("suiforge.target", "a"))
	require.NoError(t, PutSessionKey("suiforge.other", "b"))

	RemoveSessionKey("suiforge.target")
	assert.NotPanics(t, func() { RemoveSessionKey("suiforge.ghost") })

	_, ok := GetSessionKey("suiforge.target")
	assert.False(t, ok)
	_, ok = GetSessionKey("suiforge.other")
	assert.True(t, ok)
}

func TestClearSessionIdempotent(t *testing.T) {
	resetSession(t)
	require.NoError(t, PutSessionKey("suiforge.a", "ka"))
	require.NoError(t, ClearSession())
	assert.False(t, SessionActive())
	require.NoError(t, ClearSession())
}

func TestSessionFilePermissions(t *testing.T) {
	resetSession(t)
	require.NoError(t, PutSessionKey("suiforge.perm", "testkey"))

	info, err := os.Stat(sessionFilePath())
	require.NoError(t, err)
	if info.Mode().Perm() != 0 {
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestSessionFilePathDefault(t *testing.T) {
	t.Setenv(cacheDirEnvVar, "")
	path := sessionFilePath()
	assert.Equal(t, "session.json", filepath.Base(path))
	assert.Contains(t, path, "suiforge")
}

func TestLoadSessionKeysCorruptFile(t *testing.T) {
	resetSession(t)
	path := sessionFilePath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("{corrupt:json"), 0o600))

	assert.Empty(t, loadSessionKeys())
}

// ---------------------------------------------------------------------------
// Manager.Unlock / Lock
// ---------------------------------------------------------------------------

func TestUnlockCopiesKeysIntoSession(t *testing.T) {
	resetSession(t)
	mgr := NewManager(WithInMemoryStore())
	w, err := mgr.AddWithKey("alice", testSeedHex)
	require.NoError(t, err)
	require.NoError(t, mgr.Add("watch", &Wallet{Address: testAddress, Type: TypeWatchOnly}))

	require.NoError(t, mgr.Unlock("alice", "watch"))
	assert.True(t, IsUnlocked("alice"))
	assert.False(t, IsUnlocked("watch"))

	got, ok := GetSessionKey(w.KeyRef)
	require.True(t, ok)
	assert.Equal(t, testSeedHex, got)
}

func TestUnlockUnknownWallet(t *testing.T) {
	resetSession(t)
	mgr := NewManager(WithInMemoryStore())
	assert.ErrorIs(t, mgr.Unlock("ghost"), ErrWalletNotFound)
}

func TestLockClearsEverything(t *testing.T) {
	resetSession(t)
	sessionCache.Store("suiforge.cached", "k")
	require.NoError(t, PutSessionKey("suiforge.cached", "k"))

	require.NoError(t, Lock())
	assert.False(t, SessionActive())
	_, ok := sessionCache.Load("suiforge.cached")
	assert.False(t, ok)
}
