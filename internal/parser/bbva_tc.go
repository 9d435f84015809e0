package parser

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/davidmtz-dev/bancos-reader/internal/extractor"
	"github.com/davidmtz-dev/bancos-reader/internal/models"
)

// BBVACardParser handles BBVA credit-card (TC) statements.
//
// Unlike the debit ledger, this layout renders every transaction as one
// physical text line with a fixed token order, so whole-line regex matching
// is more reliable than word geometry. Two line shapes exist:
//
//	with RFC:    "08/01/25 09/01/25 OXXO GAS AME 1404027R0 ******7111 $ 399.00"
//	without RFC: "01/08/25 02/08/25 PAGO TDC ****0110 $ -12,432.34"
type BBVACardParser struct {
	Account  string
	Currency string
}

// lineMatcher pairs a transaction-line pattern with its capture semantics.
// Matchers are tried in order; the first match wins. New line shapes are
// added by appending a matcher, not by branching.
type lineMatcher struct {
	re     *regexp.Regexp
	hasRFC bool
}

var cardLineMatchers = []lineMatcher{
	// Two dates, description, RFC pair, masked reference, signed amount.
	{
		re: regexp.MustCompile(`^(\d{2}/\d{2}/\d{2,4})\s+(\d{2}/\d{2}/\d{2,4})\s+(.+?)\s+` +
			`([A-ZÑ&]{3})\s+([0-9A-Z]{8,12})\s+([*Xx\d]{4,})\s+\$\s*(-?[\d,]+\.\d{2})\s*$`),
		hasRFC: true,
	},
	// Two dates, description, masked reference, signed amount.
	{
		re: regexp.MustCompile(`^(\d{2}/\d{2}/\d{2,4})\s+(\d{2}/\d{2}/\d{2,4})\s+(.+?)\s+` +
			`([*Xx\d]{4,})\s+\$\s*(-?[\d,]+\.\d{2})\s*$`),
		hasRFC: false,
	},
}

// cardStopMarkers end all transaction data for the document, not just the page.
var cardStopMarkers = []string{
	"TABLA / GRAFICO DE ESTADO DE CUENTA",
	"TABLA / GRÁFICO DE ESTADO DE CUENTA",
	"TABLA/GRAFICO DE ESTADO DE CUENTA",
	"TABLA/GRÁFICO DE ESTADO DE CUENTA",
}

// cardSkipPrefixes are boilerplate lines that are never transactions.
var cardSkipPrefixes = []string{
	"ESTADO DE CUENTA",
	"PAGINA",
	"LINEA BBVA",
	"AV. PASEO",
	"BBVA MEXICO",
	"ESTIMADO TARJETAHABIENTE",
	"IVA",
	"\"SI ESTAS ADHERIDO",
	"SI ESTAS ADHERIDO",
}

func (p *BBVACardParser) BankName() string {
	return "BBVA"
}

func (p *BBVACardParser) Parse(doc *extractor.Document) ([]models.Movement, error) {
	account := p.Account
	if account == "" {
		account = strings.TrimSuffix(doc.Name, filepath.Ext(doc.Name))
	}
	currency := p.Currency
	if currency == "" {
		currency = "MXN"
	}

	var movements []models.Movement
	stopped := false
	for _, page := range doc.Pages() {
		if stopped {
			break
		}
		for _, line := range strings.Split(page.Text(), "\n") {
			line = normalizeLine(line)
			if line == "" {
				continue
			}

			up := strings.ToUpper(line)
			if containsAny(up, cardStopMarkers) {
				stopped = true
				break
			}
			if hasSkipPrefix(up) {
				continue
			}
			if isCardTableHeader(up) {
				continue
			}

			m, ok := p.matchLine(line, account, currency, doc.Name, page.Number)
			if !ok {
				// Prose or another layout's line; not an error.
				continue
			}
			movements = append(movements, m)
		}
	}

	sortMovements(movements)
	return movements, nil
}

// matchLine tries the ordered matcher list against one normalized line.
func (p *BBVACardParser) matchLine(line, account, currency, source string, pageNum int) (models.Movement, bool) {
	var groups []string
	var withRFC bool
	for _, lm := range cardLineMatchers {
		if g := lm.re.FindStringSubmatch(line); g != nil {
			groups = g
			withRFC = lm.hasRFC
			break
		}
	}
	if groups == nil {
		return models.Movement{}, false
	}

	opRaw, settleRaw, description := groups[1], groups[2], strings.TrimSpace(groups[3])
	var rfc, ref, amountText string
	if withRFC {
		rfc = groups[4] + " " + groups[5]
		ref = groups[6]
		amountText = groups[7]
	} else {
		ref = groups[4]
		amountText = groups[5]
	}

	// Amount is mandatory in this layout; drop the line when unparseable.
	amount := parseAmount(amountText)
	if amount == nil {
		return models.Movement{}, false
	}

	movement := models.Movement{
		OperationDate:  dateOrRaw(opRaw),
		SettlementDate: dateOrRaw(settleRaw),
		Description:    description,
		Account:        account,
		Currency:       currency,
		SourceFile:     source,
		Page:           pageNum,
	}

	if *amount < 0 {
		credit := -*amount
		movement.Credit = &credit
	} else {
		charge := *amount
		movement.Charge = &charge
	}

	var detail []string
	if rfc != "" {
		detail = append(detail, "RFC:"+rfc)
	}
	if ref != "" {
		detail = append(detail, "REF:"+ref)
	}
	movement.Detail = strings.Join(detail, " ")

	return movement, true
}

func dateOrRaw(raw string) string {
	if iso := normalizeDayFirstDate(raw); iso != "" {
		return iso
	}
	return raw
}

func hasSkipPrefix(upperLine string) bool {
	for _, prefix := range cardSkipPrefixes {
		if strings.HasPrefix(upperLine, prefix) {
			return true
		}
	}
	return false
}

// isCardTableHeader detects restatements of the transaction-table header.
func isCardTableHeader(upperLine string) bool {
	if strings.Contains(upperLine, "FECHA") &&
		strings.Contains(upperLine, "AUTORIZACION") &&
		strings.Contains(upperLine, "APLICACION") {
		return true
	}
	if strings.Contains(upperLine, "IMPORTE") &&
		(strings.Contains(upperLine, "CARGOS") || strings.Contains(upperLine, "ABONOS")) {
		return true
	}
	return false
}

// sortMovements orders by settlement date ascending with unparseable dates
// last, then by page. Card statements render cross-referenced entries out of
// chronological order, so this gives a stable, user-meaningful ordering.
func sortMovements(movements []models.Movement) {
	sort.SliceStable(movements, func(a, b int) bool {
		da, okA := isoDate(movements[a].SettlementDate)
		db, okB := isoDate(movements[b].SettlementDate)
		if okA != okB {
			return okA
		}
		if okA && da != db {
			return da < db
		}
		return movements[a].Page < movements[b].Page
	})
}

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func isoDate(s string) (string, bool) {
	if isoDatePattern.MatchString(s) {
		return s, true
	}
	return "", false
}
