package bytecode

import (
	"fmt"
	"strings"
)

// TokenKind is the serialized tag of a signature token.
type TokenKind uint8

// Signature token tags that may appear in a constant pool.
const (
	TokenBool    TokenKind = 0x01
	TokenU8      TokenKind = 0x02
	TokenU64     TokenKind = 0x03
	TokenU128    TokenKind = 0x04
	TokenAddress TokenKind = 0x05
	TokenVector  TokenKind = 0x0a
	TokenU16     TokenKind = 0x0d
	TokenU32     TokenKind = 0x0e
	TokenU256    TokenKind = 0x0f
)

// Nesting limit for vector element types.
const maxTokenDepth = 16

var tokenNames = map[TokenKind]string{
	TokenBool:    "Bool",
	TokenU8:      "U8",
	TokenU16:     "U16",
	TokenU32:     "U32",
	TokenU64:     "U64",
	TokenU128:    "U128",
	TokenU256:    "U256",
	TokenAddress: "Address",
}

// SignatureToken is the type of a constant. Elem is set only for vectors.
type SignatureToken struct {
	Kind TokenKind
	Elem *SignatureToken
}

// Primitive returns a token for a non-vector kind.
func Primitive(k TokenKind) SignatureToken {
	return SignatureToken{Kind: k}
}

// VectorOf returns a vector token with the given element type.
func VectorOf(elem SignatureToken) SignatureToken {
	return SignatureToken{Kind: TokenVector, Elem: &elem}
}

// String renders the token the way type tags are written: U8, U64,
// Vector(U8), Vector(Vector(Address)).
func (t SignatureToken) String() string {
	if t.Kind == TokenVector {
		if t.Elem == nil {
			return "Vector(?)"
		}
		return "Vector(" + t.Elem.String() + ")"
	}
	if n, ok := tokenNames[t.Kind]; ok {
		return n
	}
	return fmt.Sprintf("Token(0x%02x)", uint8(t.Kind))
}

// Equal reports whether two tokens describe the same type.
func (t SignatureToken) Equal(o SignatureToken) bool {
	if t.Kind != o.Kind {
		return false
	}
	if t.Kind != TokenVector {
		return true
	}
	if t.Elem == nil || o.Elem == nil {
		return t.Elem == o.Elem
	}
	return t.Elem.Equal(*o.Elem)
}

// ParseTypeTag parses U8, U64, Vector(U8) and the other forms produced by
// String. Matching is case-insensitive.
func ParseTypeTag(s string) (SignatureToken, error) {
	return parseTypeTag(strings.TrimSpace(s), 0)
}

func parseTypeTag(s string, depth int) (SignatureToken, error) {
	if depth > maxTokenDepth {
		return SignatureToken{}, fmt.Errorf("%w: %q nests too deeply", ErrUnsupportedType, s)
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "vector(") && strings.HasSuffix(lower, ")") {
		elem, err := parseTypeTag(strings.TrimSpace(s[len("vector("):len(s)-1]), depth+1)
		if err != nil {
			return SignatureToken{}, err
		}
		return VectorOf(elem), nil
	}
	for k, n := range tokenNames {
		if strings.EqualFold(n, s) {
			return Primitive(k), nil
		}
	}
	return SignatureToken{}, fmt.Errorf("%w: %q", ErrUnsupportedType, s)
}

func readSignatureToken(r *reader, depth int) (SignatureToken, error) {
	if depth > maxTokenDepth {
		return SignatureToken{}, fmt.Errorf("%w: type nests too deeply", ErrUnsupportedType)
	}
	b, err := r.byte()
	if err != nil {
		return SignatureToken{}, err
	}
	k := TokenKind(b)
	if k == TokenVector {
		elem, err := readSignatureToken(r, depth+1)
		if err != nil {
			return SignatureToken{}, err
		}
		return VectorOf(elem), nil
	}
	if _, ok := tokenNames[k]; !ok {
		return SignatureToken{}, fmt.Errorf("%w: tag 0x%02x", ErrUnsupportedType, b)
	}
	return Primitive(k), nil
}

func (t SignatureToken) encode() ([]byte, error) {
	if t.Kind == TokenVector {
		if t.Elem == nil {
			return nil, fmt.Errorf("%w: vector without element type", ErrUnsupportedType)
		}
		elem, err := t.Elem.encode()
		if err != nil {
			return nil, err
		}
		return append([]byte{byte(TokenVector)}, elem...), nil
	}
	if _, ok := tokenNames[t.Kind]; !ok {
		return nil, fmt.Errorf("%w: tag 0x%02x", ErrUnsupportedType, uint8(t.Kind))
	}
	return []byte{byte(t.Kind)}, nil
}
