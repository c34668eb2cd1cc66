package bytecode

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/Mohsinsiddi/suiforge/internal/bcs"
)

// Patcher rewrites identifiers and constants inside compiled modules. Every
// call parses its input afresh and returns a new slice; the input is never
// modified, so a Patcher is safe for concurrent use.
type Patcher struct{}

// ReplaceIdentifiers renames every identifier that appears as a key in
// mapping. Keys absent from the module are ignored, but at least one must be
// present. The renamed identifiers must be valid Move identifiers and must
// not collide with any other identifier in the module.
func (Patcher) ReplaceIdentifiers(module []byte, mapping map[string]string) ([]byte, error) {
	m, err := Parse(module)
	if err != nil {
		return nil, err
	}

	replaced := 0
	for i, id := range m.Identifiers {
		to, ok := mapping[id]
		if !ok {
			continue
		}
		if !ValidIdentifier(to) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, to)
		}
		m.Identifiers[i] = to
		replaced++
	}
	if replaced == 0 {
		keys := make([]string, 0, len(mapping))
		for k := range mapping {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%w: none of %s", ErrIdentifierNotFound, strings.Join(keys, ", "))
	}

	seen := make(map[string]struct{}, len(m.Identifiers))
	for _, id := range m.Identifiers {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateIdentifier, id)
		}
		seen[id] = struct{}{}
	}
	return m.Serialize()
}

// ReplaceConstantBytes finds the first constant of type typeTag whose
// serialized value equals expected and replaces that value with newValue.
func (Patcher) ReplaceConstantBytes(module, newValue, expected []byte, typeTag string) ([]byte, error) {
	tok, err := ParseTypeTag(typeTag)
	if err != nil {
		return nil, err
	}
	if err := checkValue(tok, newValue); err != nil {
		return nil, err
	}

	m, err := Parse(module)
	if err != nil {
		return nil, err
	}
	idx := m.FindConstant(tok, expected)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s %x", ErrConstantNotFound, tok, expected)
	}
	m.Constants[idx].Data = append([]byte(nil), newValue...)
	return m.Serialize()
}

// FindConstant returns the index of the first constant matching tok and
// data, or -1.
func (m *Module) FindConstant(tok SignatureToken, data []byte) int {
	for i, c := range m.Constants {
		if c.Type.Equal(tok) && bytes.Equal(c.Data, data) {
			return i
		}
	}
	return -1
}

// ValidIdentifier reports whether s is a legal Move identifier:
// [a-zA-Z][a-zA-Z0-9_]* or _[a-zA-Z0-9_]+.
func ValidIdentifier(s string) bool {
	if s == "" || len(s) > maxIdentifier {
		return false
	}
	if s[0] == '_' && len(s) == 1 {
		return false
	}
	if !isAlpha(s[0]) && s[0] != '_' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !isAlpha(c) && !(c >= '0' && c <= '9') && c != '_' {
			return false
		}
	}
	return true
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// checkValue rejects values whose width does not fit the declared type.
func checkValue(tok SignatureToken, data []byte) error {
	widths := map[TokenKind]int{
		TokenBool: 1, TokenU8: 1, TokenU16: 2, TokenU32: 4,
		TokenU64: 8, TokenU128: 16, TokenU256: 32, TokenAddress: 32,
	}
	if w, ok := widths[tok.Kind]; ok {
		if len(data) != w {
			return fmt.Errorf("%w: %s value must be %d bytes, got %d", ErrUnsupportedType, tok, w, len(data))
		}
		if tok.Kind == TokenBool && data[0] > 1 {
			return fmt.Errorf("%w: bool value 0x%02x", ErrUnsupportedType, data[0])
		}
		return nil
	}
	if tok.Kind == TokenVector && tok.Elem != nil && tok.Elem.Kind == TokenU8 {
		if _, err := bcs.DecodeBytes(data); err != nil {
			return fmt.Errorf("%w: %s value: %v", ErrUnsupportedType, tok, err)
		}
	}
	return nil
}
