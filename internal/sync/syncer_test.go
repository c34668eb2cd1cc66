package sync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/suiforge/internal/coin"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func embedded(t *testing.T, kind coin.TemplateKind) []byte {
	t.Helper()
	b, err := coin.EmbeddedTemplates{}.Template(kind)
	require.NoError(t, err)
	return b
}

func sum(b []byte) string {
	s := sha256.Sum256(b)
	return hex.EncodeToString(s[:])
}

// templateServer serves /manifest.json plus the given files.
func templateServer(t *testing.T, m Manifest, files map[string][]byte) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/manifest.json" {
			json.NewEncoder(w).Encode(m) //nolint:errcheck
			return
		}
		b, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(b) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/manifest.json"
}

func testSyncer(t *testing.T) (*Syncer, string) {
	dir := filepath.Join(t.TempDir(), "templates")
	return New(dir, zerolog.Nop()), dir
}

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

func TestRunInstallsTemplates(t *testing.T) {
	simple, regulated := embedded(t, coin.SimpleCoin), embedded(t, coin.RegulatedCoin)
	src := templateServer(t, Manifest{Templates: map[string]ManifestEntry{
		"simpleCoin":    {URL: "v2/simple_coin.mv", SHA256: sum(simple)},
		"regulatedCoin": {URL: "/v2/regulated_coin.mv"},
	}}, map[string][]byte{
		"/v2/simple_coin.mv":    simple,
		"/v2/regulated_coin.mv": regulated,
	})

	s, dir := testSyncer(t)
	results, err := s.Run(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.Updated, r.Kind)
	}

	got, err := os.ReadFile(filepath.Join(dir, "simple_coin.mv"))
	require.NoError(t, err)
	assert.Equal(t, simple, got)

	// The synced directory is what DirTemplates reads.
	b, err := coin.DirTemplates{Dir: dir}.Template(coin.RegulatedCoin)
	require.NoError(t, err)
	assert.Equal(t, regulated, b)
}

func TestRunIsIdempotent(t *testing.T) {
	simple := embedded(t, coin.SimpleCoin)
	src := templateServer(t, Manifest{Templates: map[string]ManifestEntry{
		"simple": {URL: "simple_coin.mv"},
	}}, map[string][]byte{"/simple_coin.mv": simple})

	s, _ := testSyncer(t)
	_, err := s.Run(context.Background(), src)
	require.NoError(t, err)

	results, err := s.Run(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Updated)
}

func TestRunOrdersByName(t *testing.T) {
	src := templateServer(t, Manifest{Templates: map[string]ManifestEntry{
		"simpleCoin":    {URL: "simple_coin.mv"},
		"regulatedCoin": {URL: "regulated_coin.mv"},
	}}, map[string][]byte{
		"/simple_coin.mv":    embedded(t, coin.SimpleCoin),
		"/regulated_coin.mv": embedded(t, coin.RegulatedCoin),
	})

	s, _ := testSyncer(t)
	for range 5 {
		results, err := s.Run(context.Background(), src)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, coin.RegulatedCoin, results[0].Kind)
		assert.Equal(t, coin.SimpleCoin, results[1].Kind)
	}
}

func TestRunSkipsDuplicateKind(t *testing.T) {
	simple := embedded(t, coin.SimpleCoin)
	// "simpleCoin" sorts after "simple"; fetching its file would fail verification.
	src := templateServer(t, Manifest{Templates: map[string]ManifestEntry{
		"simple":     {URL: "a.mv"},
		"simpleCoin": {URL: "b.mv"},
	}}, map[string][]byte{
		"/a.mv": simple,
		"/b.mv": []byte("not a module"),
	})

	s, dir := testSyncer(t)
	results, err := s.Run(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, coin.SimpleCoin, results[0].Kind)

	got, err := os.ReadFile(filepath.Join(dir, "simple_coin.mv"))
	require.NoError(t, err)
	assert.Equal(t, simple, got)
}

func TestRunSkipsUnknownKinds(t *testing.T) {
	src := templateServer(t, Manifest{Templates: map[string]ManifestEntry{
		"nftCoin": {URL: "nft.mv"},
	}}, nil)

	s, _ := testSyncer(t)
	results, err := s.Run(context.Background(), src)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRunChecksumMismatch(t *testing.T) {
	simple := embedded(t, coin.SimpleCoin)
	src := templateServer(t, Manifest{Templates: map[string]ManifestEntry{
		"simpleCoin": {URL: "simple_coin.mv", SHA256: sum([]byte("something else"))},
	}}, map[string][]byte{"/simple_coin.mv": simple})

	s, dir := testSyncer(t)
	_, err := s.Run(context.Background(), src)
	assert.ErrorIs(t, err, ErrChecksum)
	assert.NoFileExists(t, filepath.Join(dir, "simple_coin.mv"))
}

func TestRunRejectsWrongTemplate(t *testing.T) {
	// A regulated template served as the simple one has the wrong layout.
	src := templateServer(t, Manifest{Templates: map[string]ManifestEntry{
		"simpleCoin": {URL: "simple_coin.mv"},
	}}, map[string][]byte{"/simple_coin.mv": embedded(t, coin.RegulatedCoin)})

	s, dir := testSyncer(t)
	_, err := s.Run(context.Background(), src)
	assert.ErrorContains(t, err, "not a usable simpleCoin template")
	assert.NoFileExists(t, filepath.Join(dir, "simple_coin.mv"))
}

func TestRunMissingFile(t *testing.T) {
	src := templateServer(t, Manifest{Templates: map[string]ManifestEntry{
		"simpleCoin": {URL: "missing.mv"},
	}}, nil)

	s, _ := testSyncer(t)
	_, err := s.Run(context.Background(), src)
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestRunNoSource(t *testing.T) {
	s, _ := testSyncer(t)
	_, err := s.Run(context.Background(), "")
	assert.ErrorContains(t, err, "no template source")
}

func TestRunBadManifest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json")) //nolint:errcheck
	}))
	defer srv.Close()

	s, _ := testSyncer(t)
	_, err := s.Run(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "parsing manifest")
}

// ---------------------------------------------------------------------------
// Verify
// ---------------------------------------------------------------------------

func TestVerify(t *testing.T) {
	for _, k := range coin.Kinds {
		assert.NoError(t, Verify(k, embedded(t, k)), k)
	}
	assert.Error(t, Verify(coin.SimpleCoin, []byte{0xa1, 0x1c, 0xeb, 0x0b}))
}

func TestManifestJSON(t *testing.T) {
	var m Manifest
	require.NoError(t, json.Unmarshal([]byte(`{"templates":{"simpleCoin":{"url":"a.mv","sha256":"ab"}}}`), &m))
	assert.Equal(t, ManifestEntry{URL: "a.mv", SHA256: "ab"}, m.Templates["simpleCoin"])
}
