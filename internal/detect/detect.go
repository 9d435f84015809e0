// Package detect chooses the extraction strategy for a statement document.
//
// Precedence: explicit product marker in the filename, then a page-one
// content sniff, then account/currency metadata from the filename, then the
// bare positional default. Fast, unambiguous signals win over slower content
// inspection, and a concrete unmatched filename never blocks processing.
package detect

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/davidmtz-dev/bancos-reader/internal/extractor"
	"github.com/davidmtz-dev/bancos-reader/internal/models"
)

// cardNamePatterns are whole-word filename markers for the credit-card product.
var cardNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bTC\b`),
	regexp.MustCompile(`\bTDC\b`),
	regexp.MustCompile(`\bTARJETA\b`),
	regexp.MustCompile(`\bCR[EÉ]DITO\b`),
}

// cardContentMarkers are page-one phrases characteristic of a card statement.
var cardContentMarkers = []string{
	"TARJETA TITULAR",
	"MOVIMIENTOS EFECTUADOS",
	"IMPORTE CARGOS",
	"IMPORTE ABONOS",
	"T NEGOCIO",
	"T NEGOCIO / LCDIGITAL",
}

var (
	separatorPattern = regexp.MustCompile(`[_\-\.\(\)\[\]\{\}]+`)
	spacePattern     = regexp.MustCompile(`\s+`)
	currencyPattern  = regexp.MustCompile(`\b(MXN|USD)\b`)
	accountPattern   = regexp.MustCompile(`\b(\d{4})\b`)
)

// Detect returns the strategy and account/currency defaults for a document,
// or ok=false when the filename does not identify a supported issuer.
func Detect(path string) (models.StrategyChoice, bool) {
	name := strings.ToUpper(filepath.Base(path))
	if !strings.Contains(name, "BBVA") {
		return models.StrategyChoice{}, false
	}

	if nameIndicatesCard(name) || contentIndicatesCard(path) {
		return models.StrategyChoice{
			Strategy: models.StrategyLinePattern,
			Account:  "TC",
			Currency: "MXN",
		}, true
	}

	currency := currencyPattern.FindString(name)
	account := accountPattern.FindString(name)
	if currency != "" && account != "" {
		return models.StrategyChoice{
			Strategy: models.StrategyPositional,
			Account:  account,
			Currency: currency,
		}, true
	}

	// Bare default: the parser falls back to the file stem and the
	// configured currency.
	return models.StrategyChoice{Strategy: models.StrategyPositional}, true
}

// nameIndicatesCard tests the filename for whole-word card-product markers
// after normalizing common delimiters to spaces.
func nameIndicatesCard(upperName string) bool {
	s := separatorPattern.ReplaceAllString(upperName, " ")
	s = strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
	for _, p := range cardNamePatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// contentIndicatesCard sniffs page one for card-statement phrases.
// Any extraction failure means "no match for this fallback", never an error.
func contentIndicatesCard(path string) bool {
	doc, err := extractor.Open(path)
	if err != nil {
		return false
	}
	pages := doc.Pages()
	if len(pages) == 0 {
		return false
	}
	text := strings.ToUpper(pages[0].Text())
	for _, marker := range cardContentMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
