package coin

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var maxU64 = new(big.Int).SetUint64(^uint64(0))

// Supply returns mintAmount × 10^decimals in base units. The product must be
// a whole number that fits in a u64.
func Supply(mintAmount decimal.Decimal, decimals uint8) (*big.Int, error) {
	if mintAmount.IsNegative() {
		return nil, fmt.Errorf("%w: mint amount %s is negative", ErrEncoding, mintAmount)
	}
	total := mintAmount.Mul(decimal.New(1, int32(decimals)))
	if !total.IsInteger() {
		return nil, fmt.Errorf("%w: %s with %d decimals leaves a fractional base unit", ErrEncoding, mintAmount, decimals)
	}
	n := total.BigInt()
	if n.Cmp(maxU64) > 0 {
		return nil, fmt.Errorf("%w: supply %s overflows u64", ErrEncoding, n)
	}
	return n, nil
}
