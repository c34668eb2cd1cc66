package coin

import "strings"

// NormalizeSymbol derives the module identifiers from a coin symbol: the
// symbol is trimmed, runs of whitespace become a single underscore, and the
// result is upper-cased for the one-time witness and lower-cased for the
// module name. " My  Coin " yields MY_COIN and my_coin.
func NormalizeSymbol(symbol string) (upper, lower string) {
	joined := strings.Join(strings.Fields(symbol), "_")
	return strings.ToUpper(joined), strings.ToLower(joined)
}

// IdentifierMap maps every template placeholder identifier to the names
// derived from symbol. Both template kinds are covered so one map serves
// either template.
func IdentifierMap(symbol string) map[string]string {
	upper, lower := NormalizeSymbol(symbol)
	m := make(map[string]string, 2*len(Kinds))
	for _, k := range Kinds {
		mod, witness := k.Placeholders()
		m[witness] = upper
		m[mod] = lower
	}
	return m
}

func trim(s string) string { return strings.TrimSpace(s) }
