package coin

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Metadata is the user-supplied description of a new coin.
type Metadata struct {
	Name              string
	Symbol            string
	Description       string
	IconURL           string
	Decimals          uint8
	MintAmount        decimal.Decimal
	IsDropTreasury    bool
	IsMetadataMutable bool
	Kind              TemplateKind
}

// Form limits.
const (
	MinNameLen   = 2
	MaxNameLen   = 32
	MinSymbolLen = 5
	MaxSymbolLen = 8
)

var lettersOnly = regexp.MustCompile(`^[a-zA-Z]*$`)

// Validate applies the input rules of the create form. BuildModule does not
// call it; it exists for front ends that collect metadata from users.
func (m Metadata) Validate() error {
	var problems []string

	name := strings.TrimSpace(m.Name)
	switch {
	case len(name) < MinNameLen || len(name) > MaxNameLen:
		problems = append(problems, fmt.Sprintf("name must be between %d and %d characters", MinNameLen, MaxNameLen))
	case !lettersOnly.MatchString(name):
		problems = append(problems, "name can only contain letters")
	}

	symbol := strings.TrimSpace(m.Symbol)
	symbolOK := false
	switch {
	case len(symbol) < MinSymbolLen || len(symbol) > MaxSymbolLen:
		problems = append(problems, fmt.Sprintf("symbol must be between %d and %d characters", MinSymbolLen, MaxSymbolLen))
	case !lettersOnly.MatchString(symbol):
		problems = append(problems, "symbol can only contain letters")
	default:
		symbolOK = true
	}

	if m.MintAmount.IsNegative() {
		problems = append(problems, "total supply cannot be negative")
	}
	if kind, err := ParseTemplateKind(string(m.Kind)); err != nil {
		problems = append(problems, err.Error())
	} else if symbolOK {
		if err := New().CheckSymbol(kind, symbol); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidMetadata, strings.Join(problems, "; "))
	}
	return nil
}
