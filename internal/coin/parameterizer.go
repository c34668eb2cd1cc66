// Package coin turns a precompiled coin module template and a set of coin
// metadata into a module ready to publish.
package coin

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Mohsinsiddi/suiforge/internal/bytecode"
)

// Patcher is the byte-level rewriting primitive the parameterizer drives.
type Patcher interface {
	ReplaceIdentifiers(module []byte, mapping map[string]string) ([]byte, error)
	ReplaceConstantBytes(module, newValue, expected []byte, typeTag string) ([]byte, error)
}

// Parameterizer builds coin modules from templates. It holds no mutable
// state and may be shared between goroutines.
type Parameterizer struct {
	patcher   Patcher
	templates TemplateSource
	log       zerolog.Logger
}

// Option configures a Parameterizer.
type Option func(*Parameterizer)

// WithPatcher replaces the default bytecode patcher.
func WithPatcher(p Patcher) Option {
	return func(z *Parameterizer) {
		z.patcher = p
	}
}

// WithTemplates replaces the embedded template set.
func WithTemplates(s TemplateSource) Option {
	return func(z *Parameterizer) {
		z.templates = s
	}
}

// WithLogger sets the logger used for per-step debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(z *Parameterizer) {
		z.log = l
	}
}

// New returns a Parameterizer using the embedded templates and the bytecode
// patcher unless overridden.
func New(opts ...Option) *Parameterizer {
	z := &Parameterizer{
		patcher:   bytecode.Patcher{},
		templates: EmbeddedTemplates{},
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(z)
	}
	return z
}

// SelectTemplate returns a private copy of the template for kind.
func (z *Parameterizer) SelectTemplate(kind TemplateKind) ([]byte, error) {
	if _, ok := templateFiles[kind]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplateKind, kind)
	}
	b, err := z.templates.Template(kind)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(b), nil
}

// SubstituteIdentifiers renames the template's module and witness
// identifiers after symbol.
func (z *Parameterizer) SubstituteIdentifiers(module []byte, symbol string) ([]byte, error) {
	mapping := IdentifierMap(symbol)
	upper, lower := NormalizeSymbol(symbol)
	if !bytecode.ValidIdentifier(upper) || !bytecode.ValidIdentifier(lower) {
		return nil, fmt.Errorf("%w: symbol %q does not yield a Move identifier", ErrIdentifierSubstitution, symbol)
	}
	out, err := z.patcher.ReplaceIdentifiers(module, mapping)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIdentifierSubstitution, err)
	}
	z.log.Debug().Str("witness", upper).Str("module", lower).Msg("identifiers substituted")
	return out, nil
}

// CheckSymbol reports whether the identifiers derived from symbol clash with
// a name the kind template already uses, such as "option" or "transfer".
func (z *Parameterizer) CheckSymbol(kind TemplateKind, symbol string) error {
	tmpl, err := z.SelectTemplate(kind)
	if err != nil {
		return err
	}
	m, err := bytecode.Parse(tmpl)
	if err != nil {
		return fmt.Errorf("template %s: %w", kind, err)
	}
	mapping := IdentifierMap(symbol)
	for _, id := range m.Identifiers {
		if _, placeholder := mapping[id]; placeholder {
			continue
		}
		for _, to := range mapping {
			if id == to {
				return fmt.Errorf("%w: %q is already used by the %s template", ErrIdentifierSubstitution, id, kind)
			}
		}
	}
	return nil
}

// PatchConstant replaces the placeholder value of the named constant.
func (z *Parameterizer) PatchConstant(module []byte, name ConstantName, value any) ([]byte, error) {
	d, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: no constant named %q", ErrConstantNotFound, name)
	}
	return z.patch(module, d, value)
}

func (z *Parameterizer) patch(module []byte, d Descriptor, value any) ([]byte, error) {
	expected, err := d.EncodeDefault()
	if err != nil {
		return nil, err
	}
	encoded, err := EncodeValue(d.Type, value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Name, err)
	}
	out, err := z.patcher.ReplaceConstantBytes(module, encoded, expected, string(d.Type))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Name, translatePatchError(err))
	}
	z.log.Debug().Str("constant", string(d.Name)).Hex("value", encoded).Msg("constant patched")
	return out, nil
}

// BuildModule produces the publishable module for md.
func (z *Parameterizer) BuildModule(md Metadata) ([]byte, error) {
	module, err := z.SelectTemplate(md.Kind)
	if err != nil {
		return nil, err
	}
	module, err = z.SubstituteIdentifiers(module, md.Symbol)
	if err != nil {
		return nil, err
	}

	supply, err := Supply(md.MintAmount, md.Decimals)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MintAmount, err)
	}

	patches := []patchStep{
		{name: Decimals, value: md.Decimals},
		{name: Symbol, value: trim(md.Symbol)},
		{name: Name, value: trim(md.Name)},
		{name: Description, value: trim(md.Description)},
		{name: IconURL, value: md.IconURL},
		{name: IsDropTreasury, value: flag(md.IsDropTreasury)},
		{name: IsMetadataMut, value: flag(md.IsMetadataMutable)},
		{name: MintAmount, value: supply.String()},
	}
	ordered, err := orderPatches(patches)
	if err != nil {
		return nil, err
	}
	for _, p := range ordered {
		module, err = z.patch(module, p.desc, p.value)
		if err != nil {
			return nil, err
		}
	}
	z.log.Debug().Str("kind", string(md.Kind)).Int("bytes", len(module)).Msg("module built")
	return module, nil
}

type patchStep struct {
	name    ConstantName
	value   any
	desc    Descriptor
	encoded []byte
	def     []byte
}

// orderPatches keeps the given order except where a new value equals the
// placeholder of a constant not yet patched: that constant must be patched
// first or the search for its placeholder would hit the new value instead.
func orderPatches(steps []patchStep) ([]patchStep, error) {
	for i := range steps {
		d, ok := Lookup(steps[i].name)
		if !ok {
			return nil, fmt.Errorf("%w: no constant named %q", ErrConstantNotFound, steps[i].name)
		}
		enc, err := EncodeValue(d.Type, steps[i].value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name, err)
		}
		def, err := d.EncodeDefault()
		if err != nil {
			return nil, err
		}
		steps[i].desc, steps[i].encoded, steps[i].def = d, enc, def
	}

	// before[i] lists steps that must run before step i.
	before := make([][]int, len(steps))
	for i, a := range steps {
		for j, b := range steps {
			if i != j && a.desc.Type == b.desc.Type && bytes.Equal(a.encoded, b.def) {
				before[i] = append(before[i], j)
			}
		}
	}

	out := make([]patchStep, 0, len(steps))
	done := make([]bool, len(steps))
	for len(out) < len(steps) {
		progressed := false
		for i := range steps {
			if done[i] || !ready(before[i], done) {
				continue
			}
			out = append(out, steps[i])
			done[i] = true
			progressed = true
			break
		}
		if !progressed {
			return nil, fmt.Errorf("%w: new values swap placeholder values between constants", ErrEncoding)
		}
	}
	return out, nil
}

func ready(deps []int, done []bool) bool {
	for _, j := range deps {
		if !done[j] {
			return false
		}
	}
	return true
}

func translatePatchError(err error) error {
	switch {
	case errors.Is(err, bytecode.ErrConstantNotFound):
		return fmt.Errorf("%w: %w", ErrConstantNotFound, err)
	case errors.Is(err, bytecode.ErrUnsupportedType):
		return fmt.Errorf("%w: %w", ErrUnsupportedConstantType, err)
	}
	return err
}

func flag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
