package coin

import (
	"bytes"
	"fmt"

	"github.com/Mohsinsiddi/suiforge/internal/bytecode"
)

// Field is one decoded constant of a built module.
type Field struct {
	Name    ConstantName
	Type    ValueType
	Value   any
	Patched bool
}

// Report describes a module built from a template.
type Report struct {
	Kind    TemplateKind
	Module  string
	Witness string
	Fields  []Field
}

// Field returns the decoded field named name.
func (r *Report) Field(name ConstantName) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Inspect decodes the placeholder regions of a module built from the kind
// template. Positions are taken from the pristine template, so values that
// happen to equal another placeholder are still attributed correctly.
func (z *Parameterizer) Inspect(kind TemplateKind, module []byte) (*Report, error) {
	tmplBytes, err := z.SelectTemplate(kind)
	if err != nil {
		return nil, err
	}
	tmpl, err := bytecode.Parse(tmplBytes)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", kind, err)
	}
	m, err := bytecode.Parse(module)
	if err != nil {
		return nil, err
	}
	if len(m.Constants) != len(tmpl.Constants) || len(m.Identifiers) != len(tmpl.Identifiers) {
		return nil, fmt.Errorf("%w: module layout does not match the %s template", ErrConstantNotFound, kind)
	}

	r := &Report{Kind: kind}
	modName, witness := kind.Placeholders()
	if i := tmpl.IdentifierIndex(modName); i >= 0 {
		r.Module = m.Identifiers[i]
	}
	if i := tmpl.IdentifierIndex(witness); i >= 0 {
		r.Witness = m.Identifiers[i]
	}

	for _, d := range descriptors {
		tok, err := bytecode.ParseTypeTag(string(d.Type))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedConstantType, err)
		}
		def, err := d.EncodeDefault()
		if err != nil {
			return nil, err
		}
		idx := tmpl.FindConstant(tok, def)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s placeholder missing from %s template", ErrConstantNotFound, d.Name, kind)
		}
		c := m.Constants[idx]
		if !c.Type.Equal(tok) {
			return nil, fmt.Errorf("%w: %s has type %s, want %s", ErrUnsupportedConstantType, d.Name, c.Type, tok)
		}
		v, err := DecodeValue(d.Type, c.Data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name, err)
		}
		r.Fields = append(r.Fields, Field{
			Name:    d.Name,
			Type:    d.Type,
			Value:   v,
			Patched: !bytes.Equal(c.Data, def),
		})
	}
	return r, nil
}
