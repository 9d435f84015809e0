package parser

import (
	"fmt"

	"github.com/davidmtz-dev/bancos-reader/internal/extractor"
	"github.com/davidmtz-dev/bancos-reader/internal/models"
)

// Parser defines the interface for statement layout parsers.
type Parser interface {
	// Parse extracts the ordered movement list from an open document.
	// A recognized-but-malformed layout yields whatever was salvaged, not an
	// error; errors are reserved for the extraction adapter's own failures.
	Parse(doc *extractor.Document) ([]models.Movement, error)
	// BankName returns the human-readable issuer name.
	BankName() string
}

// Defaults supplies fallback values the detector could not derive from the
// filename.
type Defaults struct {
	Currency      string
	ReferenceYear string
}

// New returns the parser for the detected strategy.
func New(choice models.StrategyChoice, defaults Defaults) (Parser, error) {
	switch choice.Strategy {
	case models.StrategyPositional:
		return &BBVAParser{
			Account:       choice.Account,
			Currency:      firstNonEmpty(choice.Currency, defaults.Currency),
			ReferenceYear: defaults.ReferenceYear,
		}, nil
	case models.StrategyLinePattern:
		return &BBVACardParser{
			Account:  choice.Account,
			Currency: firstNonEmpty(choice.Currency, defaults.Currency),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported strategy: %q", choice.Strategy)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
