package coin_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/suiforge/internal/coin"
)

func TestSupplyExact(t *testing.T) {
	cases := []struct {
		amount   string
		decimals uint8
		want     string
	}{
		{"100", 9, "100000000000"},
		{"1", 18, "1000000000000000000"},
		{"1000", 9, "1000000000000"},
		{"0", 9, "0"},
		{"0", 0, "0"},
		{"7", 0, "7"},
		{"1.5", 9, "1500000000"},
		{"18446744073709551615", 0, "18446744073709551615"},
	}
	for _, tc := range cases {
		got, err := coin.Supply(decimal.RequireFromString(tc.amount), tc.decimals)
		require.NoError(t, err, tc.amount)
		assert.Equal(t, tc.want, got.String(), "%s × 10^%d", tc.amount, tc.decimals)
	}
}

func TestSupplyRejects(t *testing.T) {
	cases := []struct {
		name     string
		amount   string
		decimals uint8
	}{
		{"negative", "-1", 9},
		{"fractional base unit", "0.0000000001", 9},
		{"overflow", "18446744073709551616", 0},
		{"overflow after scaling", "18446744074", 9},
	}
	for _, tc := range cases {
		_, err := coin.Supply(decimal.RequireFromString(tc.amount), tc.decimals)
		assert.ErrorIs(t, err, coin.ErrEncoding, tc.name)
	}
}
