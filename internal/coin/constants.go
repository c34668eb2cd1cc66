package coin

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Mohsinsiddi/suiforge/internal/bcs"
)

// ValueType is the type tag of a patchable constant, spelled the way the
// patcher expects it.
type ValueType string

// Supported encodings.
const (
	TypeU8     ValueType = "U8"
	TypeU64    ValueType = "U64"
	TypeString ValueType = "Vector(U8)"
)

// ConstantName names a constant declared in the templates.
type ConstantName string

// Patchable constants.
const (
	Decimals       ConstantName = "DECIMALS"
	Symbol         ConstantName = "SYMBOL"
	Name           ConstantName = "NAME"
	Description    ConstantName = "DESCRIPTION"
	IconURL        ConstantName = "ICON_URL"
	IsMetadataMut  ConstantName = "IS_META_DATA_MUT"
	MintAmount     ConstantName = "MINT_AMOUNT"
	IsDropTreasury ConstantName = "IS_DROP_TREASURY"
)

// Descriptor is a constant's type and the placeholder value compiled into
// both templates.
type Descriptor struct {
	Name    ConstantName
	Type    ValueType
	Default any
}

// descriptors is tied to the template binaries: changing a placeholder here
// requires rebuilding both templates.
var descriptors = [...]Descriptor{
	{Name: Decimals, Type: TypeU8, Default: uint8(44)},
	{Name: Symbol, Type: TypeString, Default: "TMPL"},
	{Name: Name, Type: TypeString, Default: "Template Coin"},
	{Name: Description, Type: TypeString, Default: "Template Coin Description"},
	{Name: IconURL, Type: TypeString, Default: "icon_url"},
	{Name: IsMetadataMut, Type: TypeU8, Default: uint8(55)},
	{Name: MintAmount, Type: TypeU64, Default: uint64(66)},
	{Name: IsDropTreasury, Type: TypeU8, Default: uint8(77)},
}

// Descriptors returns the placeholder table in declaration order.
func Descriptors() []Descriptor {
	return append([]Descriptor(nil), descriptors[:]...)
}

// Lookup returns the descriptor for name.
func Lookup(name ConstantName) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// EncodeDefault serializes the descriptor's placeholder value.
func (d Descriptor) EncodeDefault() ([]byte, error) {
	return EncodeValue(d.Type, d.Default)
}

// EncodeValue serializes v with the encoding of typ. Integers may be given
// as any Go integer type, *big.Int, decimal.Decimal or a base-10 string;
// strings must be valid UTF-8.
func EncodeValue(typ ValueType, v any) ([]byte, error) {
	switch typ {
	case TypeU8:
		n, err := toBigInt(v)
		if err != nil {
			return nil, err
		}
		if n.Sign() < 0 || n.Cmp(big.NewInt(math.MaxUint8)) > 0 {
			return nil, fmt.Errorf("%w: %s out of range for U8", ErrEncoding, n)
		}
		return bcs.EncodeU8(uint8(n.Uint64())), nil
	case TypeU64:
		if str, ok := v.(string); ok {
			b, err := bcs.EncodeU64String(str)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
			}
			return b, nil
		}
		n, err := toBigInt(v)
		if err != nil {
			return nil, err
		}
		b, err := bcs.EncodeU64Big(n)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
		}
		return b, nil
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not a string", ErrEncoding, v)
		}
		b, err := bcs.EncodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedConstantType, typ)
}

// DecodeValue is the inverse of EncodeValue. Integers decode to uint64,
// strings to string.
func DecodeValue(typ ValueType, b []byte) (any, error) {
	switch typ {
	case TypeU8:
		v, err := bcs.DecodeU8(b)
		if err != nil {
			return nil, err
		}
		return uint64(v), nil
	case TypeU64:
		return bcs.DecodeU64(b)
	case TypeString:
		return bcs.DecodeString(b)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedConstantType, typ)
}

func toBigInt(v any) (*big.Int, error) {
	switch n := v.(type) {
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case uint:
		return new(big.Int).SetUint64(uint64(n)), nil
	case int:
		return big.NewInt(int64(n)), nil
	case int32:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case bool:
		if n {
			return big.NewInt(1), nil
		}
		return big.NewInt(0), nil
	case *big.Int:
		if n == nil {
			return nil, fmt.Errorf("%w: nil integer", ErrEncoding)
		}
		return new(big.Int).Set(n), nil
	case decimal.Decimal:
		if !n.IsInteger() {
			return nil, fmt.Errorf("%w: %s is not an integer", ErrEncoding, n)
		}
		return n.BigInt(), nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not numeric", ErrEncoding, n)
		}
		return toBigInt(d)
	}
	return nil, fmt.Errorf("%w: %T is not an integer", ErrEncoding, v)
}
