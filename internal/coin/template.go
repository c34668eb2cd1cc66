package coin

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TemplateKind selects one of the precompiled coin modules.
type TemplateKind string

// Template kinds.
const (
	SimpleCoin    TemplateKind = "simpleCoin"
	RegulatedCoin TemplateKind = "regulatedCoin"
)

// Kinds lists the supported template kinds in display order.
var Kinds = []TemplateKind{SimpleCoin, RegulatedCoin}

//go:embed templates/*.mv
var embedded embed.FS

var templateFiles = map[TemplateKind]string{
	SimpleCoin:    "simple_coin.mv",
	RegulatedCoin: "regulated_coin.mv",
}

// ParseTemplateKind maps user input to a TemplateKind. Besides the canonical
// names it accepts "simple", "regulated" and the dashboard's "RegionalCoin".
func ParseTemplateKind(s string) (TemplateKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simplecoin", "simple", "simple_coin":
		return SimpleCoin, nil
	case "regulatedcoin", "regulated", "regulated_coin", "regionalcoin":
		return RegulatedCoin, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTemplateKind, s)
}

// Description is a one-line summary used in listings.
func (k TemplateKind) Description() string {
	switch k {
	case SimpleCoin:
		return "plain coin: treasury cap and metadata, optional freeze"
	case RegulatedCoin:
		return "regulated coin: adds a deny-list cap sent to the publisher"
	}
	return ""
}

// Placeholders returns the module and witness identifiers baked into the
// template of this kind.
func (k TemplateKind) Placeholders() (module, witness string) {
	if k == RegulatedCoin {
		return "regtemplate", "REGTEMPLATE"
	}
	return "template", "TEMPLATE"
}

// FileName is the file a template of this kind is stored under.
func (k TemplateKind) FileName() string {
	return templateFiles[k]
}

// TemplateSource supplies template bytecode by kind.
type TemplateSource interface {
	Template(kind TemplateKind) ([]byte, error)
}

// EmbeddedTemplates serves the templates compiled into the binary.
type EmbeddedTemplates struct{}

// Template returns a fresh copy of the embedded template.
func (EmbeddedTemplates) Template(kind TemplateKind) ([]byte, error) {
	name, ok := templateFiles[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplateKind, kind)
	}
	b, err := embedded.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("reading embedded template %s: %w", name, err)
	}
	return b, nil
}

// DirTemplates reads simple_coin.mv / regulated_coin.mv from a directory,
// falling back to the embedded copy when a file is missing.
type DirTemplates struct {
	Dir string
}

// Template returns the template for kind.
func (d DirTemplates) Template(kind TemplateKind) ([]byte, error) {
	name, ok := templateFiles[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplateKind, kind)
	}
	b, err := os.ReadFile(filepath.Join(d.Dir, name))
	if os.IsNotExist(err) {
		return EmbeddedTemplates{}.Template(kind)
	}
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", name, err)
	}
	return b, nil
}

// StaticTemplates serves templates held in memory.
type StaticTemplates map[TemplateKind][]byte

// Template returns a copy of the template for kind.
func (s StaticTemplates) Template(kind TemplateKind) ([]byte, error) {
	b, ok := s[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplateKind, kind)
	}
	return append([]byte(nil), b...), nil
}
