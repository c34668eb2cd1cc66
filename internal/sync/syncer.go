// Package sync refreshes the coin templates in the template directory from
// a remote manifest.
package sync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mohsinsiddi/suiforge/internal/bytecode"
	"github.com/Mohsinsiddi/suiforge/internal/coin"
)

// maxTemplateSize bounds a downloaded template.
const maxTemplateSize = 1 << 20

// ErrChecksum is returned when a downloaded template does not match the
// manifest's digest.
var ErrChecksum = errors.New("template checksum mismatch")

// Manifest is the structure of a templates manifest:
//
//	{"templates": {"simpleCoin": {"url": "simple_coin.mv", "sha256": "…"}}}
//
// Relative URLs resolve against the manifest's own URL.
type Manifest struct {
	Templates map[string]ManifestEntry `json:"templates"`
}

// ManifestEntry is a single template download.
type ManifestEntry struct {
	URL    string `json:"url"`
	SHA256 string `json:"sha256,omitempty"`
}

// Result reports what happened to one template kind.
type Result struct {
	Kind    coin.TemplateKind
	Path    string
	Size    int
	Updated bool // false when the file on disk was already identical
}

// Syncer downloads templates listed in a manifest into a directory.
type Syncer struct {
	dir    string
	client *http.Client
	log    zerolog.Logger
}

// New creates a Syncer writing into dir.
func New(dir string, log zerolog.Logger) *Syncer {
	return &Syncer{
		dir:    dir,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    log,
	}
}

// Run fetches the manifest at source and installs every template it lists.
// Each template must parse as a Move module and carry all placeholder
// constants of its kind before it replaces the file on disk. Unknown kinds
// are skipped, as are further entries for a kind already installed. Entries
// are processed in name order.
func (s *Syncer) Run(ctx context.Context, source string) ([]Result, error) {
	if source == "" {
		return nil, fmt.Errorf("no template source configured — run: suiforge config set template_source <url>")
	}
	base, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("invalid template source %q: %w", source, err)
	}

	manifest, err := s.fetchManifest(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("fetching manifest: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating template dir: %w", err)
	}

	names := make([]string, 0, len(manifest.Templates))
	for name := range manifest.Templates {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []Result
	installed := make(map[coin.TemplateKind]string, len(coin.Kinds))
	for _, name := range names {
		entry := manifest.Templates[name]
		kind, err := coin.ParseTemplateKind(name)
		if err != nil {
			s.log.Warn().Str("template", name).Msg("skipping unknown template kind")
			continue
		}
		if prev, dup := installed[kind]; dup {
			s.log.Warn().Str("template", name).Str("installed_as", prev).Msg("skipping duplicate template kind")
			continue
		}
		installed[kind] = name
		ref, err := url.Parse(entry.URL)
		if err != nil {
			return results, fmt.Errorf("%s: invalid url %q: %w", kind, entry.URL, err)
		}
		res, err := s.install(ctx, kind, base.ResolveReference(ref).String(), entry.SHA256)
		if err != nil {
			return results, fmt.Errorf("%s: %w", kind, err)
		}
		s.log.Debug().Str("template", string(kind)).Bool("updated", res.Updated).Int("size", res.Size).Msg("template synced")
		results = append(results, res)
	}
	return results, nil
}

func (s *Syncer) install(ctx context.Context, kind coin.TemplateKind, src, digest string) (Result, error) {
	b, err := s.get(ctx, src)
	if err != nil {
		return Result{}, err
	}
	if digest != "" {
		sum := sha256.Sum256(b)
		if got := hex.EncodeToString(sum[:]); !strings.EqualFold(got, strings.TrimPrefix(digest, "0x")) {
			return Result{}, fmt.Errorf("%w: got %s", ErrChecksum, got)
		}
	}
	if err := Verify(kind, b); err != nil {
		return Result{}, err
	}

	path := filepath.Join(s.dir, kind.FileName())
	res := Result{Kind: kind, Path: path, Size: len(b)}
	if old, err := os.ReadFile(path); err == nil && string(old) == string(b) {
		return res, nil
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return Result{}, err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return Result{}, err
	}
	res.Updated = true
	return res, nil
}

// Verify checks that b is usable as the template for kind: it must declare
// the kind's placeholder identifiers and every placeholder constant.
func Verify(kind coin.TemplateKind, b []byte) error {
	m, err := bytecode.Parse(b)
	if err != nil {
		return fmt.Errorf("not a usable %s template: %w", kind, err)
	}
	module, witness := kind.Placeholders()
	for _, id := range []string{module, witness} {
		if m.IdentifierIndex(id) < 0 {
			return fmt.Errorf("not a usable %s template: identifier %s missing", kind, id)
		}
	}
	z := coin.New(coin.WithTemplates(coin.StaticTemplates{kind: b}))
	if _, err := z.Inspect(kind, b); err != nil {
		return fmt.Errorf("not a usable %s template: %w", kind, err)
	}
	return nil
}

func (s *Syncer) fetchManifest(ctx context.Context, src string) (*Manifest, error) {
	body, err := s.get(ctx, src)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

func (s *Syncer) get(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: HTTP %d", src, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTemplateSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxTemplateSize {
		return nil, fmt.Errorf("GET %s: response larger than %d bytes", src, maxTemplateSize)
	}
	return body, nil
}
