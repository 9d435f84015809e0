package parser

import (
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/davidmtz-dev/bancos-reader/internal/extractor"
	"github.com/davidmtz-dev/bancos-reader/internal/models"
)

// BBVAParser handles BBVA debit/checking account statements.
//
// The ledger is a four-column table (CARGOS | ABONOS | OPERACION |
// LIQUIDACION) whose geometry is inferred from the header row's word
// bounding boxes. A row with two DD/MON date tokens opens a movement; rows
// without them are continuation detail for the previous movement.
//
// Example row: "01/JUL 02/JUL A1 SPEI RECIBIDO 45.00 1,000.00"
type BBVAParser struct {
	Account  string
	Currency string
	// ReferenceYear is used when the cover page has no period phrase.
	ReferenceYear string
}

const (
	// Header labels align more tightly than data rows, so the column
	// resolver and the row grouper use separate tolerances.
	headerRowTolerance = 3.0
	dataRowTolerance   = 2.0
)

var (
	// Movement-start date token: 01/JUL
	ledgerDatePattern = regexp.MustCompile(`^\d{2}/[A-Z]{3}$`)
	// Unsigned ledger amount token: 1,234.56
	ledgerAmountPattern = regexp.MustCompile(`^[\d,]+\.\d{2}$`)
	// Statement period on the cover page: "DEL 01/07/2025 AL 31/07/2025"
	statementPeriodPattern = regexp.MustCompile(`DEL\s+\d{2}/\d{2}/(\d{4})\s+AL\s+\d{2}/\d{2}/\d{4}`)
)

// Ledger rows after this marker belong to the totals/footer section.
var ledgerEndMarkers = []string{"TOTAL DE MOVIMIENTOS", "TOTAL MOVIMIENTOS"}

func (p *BBVAParser) BankName() string {
	return "BBVA"
}

func (p *BBVAParser) Parse(doc *extractor.Document) ([]models.Movement, error) {
	account := p.Account
	if account == "" {
		account = strings.TrimSuffix(doc.Name, filepath.Ext(doc.Name))
	}
	currency := p.Currency
	if currency == "" {
		currency = "MXN"
	}

	pages := doc.Pages()

	year := p.ReferenceYear
	if year == "" {
		year = "2025"
	}
	if len(pages) > 0 {
		if m := statementPeriodPattern.FindStringSubmatch(pages[0].Text()); m != nil {
			year = m[1]
		}
	}

	var movements []models.Movement
	for _, page := range pages {
		txt := strings.ToUpper(page.Text())
		// Cover page heuristic: page one without the ledger header markers is
		// the statement summary, not a ledger page. Approximate on purpose.
		if page.Number == 1 && (!strings.Contains(txt, "CARGOS") || !strings.Contains(txt, "ABONOS")) {
			continue
		}

		words := page.Words()
		layout := resolveColumns(words)
		if layout == nil {
			// No valid four-column header: not a ledger page.
			continue
		}

		cursor := movementCursor{movements: &movements, open: -1}
		for _, row := range groupRows(words) {
			if !p.processRow(row, layout, &cursor, year, account, currency, doc.Name, page.Number) {
				break
			}
		}
	}

	return movements, nil
}

// processRow classifies one visual row and updates the cursor.
// Returns false when the ledger's end marker was reached and the remaining
// rows of the page should be ignored.
func (p *BBVAParser) processRow(row models.Row, layout models.ColumnLayout, cursor *movementCursor, year, account, currency, source string, pageNum int) bool {
	texts := make([]string, len(row))
	for i, w := range row {
		texts[i] = w.Text
	}
	rowText := strings.TrimSpace(strings.Join(texts, " "))
	if rowText == "" {
		return true
	}

	if containsAny(strings.ToUpper(rowText), ledgerEndMarkers) {
		return false
	}

	var dateIdx []int
	for i, t := range texts {
		if ledgerDatePattern.MatchString(t) {
			dateIdx = append(dateIdx, i)
		}
	}

	if len(dateIdx) < 2 {
		// Continuation detail, except for the stray column-footer artifact.
		if !strings.HasPrefix(rowText, "FECHA SALDO") {
			cursor.appendDetail(rowText)
		}
		return true
	}

	opRaw := texts[dateIdx[0]]
	settleRaw := texts[dateIdx[1]]
	code := ""
	if dateIdx[1]+1 < len(texts) {
		code = texts[dateIdx[1]+1]
	}

	// Description: words left of the charges column, minus the tokens
	// already consumed as dates and code.
	chargesCenter := layout[models.ColumnCharges]
	var descWords []string
	for _, w := range row {
		if w.Center() >= chargesCenter {
			continue
		}
		if w.Text == opRaw || w.Text == settleRaw || w.Text == code {
			continue
		}
		descWords = append(descWords, w.Text)
	}

	movement := models.Movement{
		OperationDate:  normalizeAbbrevDate(opRaw, year),
		SettlementDate: normalizeAbbrevDate(settleRaw, year),
		Code:           code,
		Description:    strings.TrimSpace(strings.Join(descWords, " ")),
		Account:        account,
		Currency:       currency,
		SourceFile:     source,
		Page:           pageNum,
	}

	for _, w := range row {
		if !ledgerAmountPattern.MatchString(w.Text) {
			continue
		}
		val := parseAmount(w.Text)
		if val == nil {
			continue
		}
		switch nearestColumn(w.Center(), layout) {
		case models.ColumnCharges:
			movement.Charge = val
		case models.ColumnCredits:
			movement.Credit = val
		case models.ColumnBalanceOperation:
			movement.BalanceOperation = val
		case models.ColumnBalanceSettlement:
			movement.BalanceSettlement = val
		}
	}

	cursor.openMovement(movement)
	return true
}

// movementCursor tracks the movement eligible to receive continuation detail.
// It is local to one page-processing pass.
type movementCursor struct {
	movements *[]models.Movement
	open      int
}

func (c *movementCursor) openMovement(m models.Movement) {
	*c.movements = append(*c.movements, m)
	c.open = len(*c.movements) - 1
}

func (c *movementCursor) appendDetail(text string) {
	if c.open < 0 {
		return
	}
	m := &(*c.movements)[c.open]
	if m.Detail == "" {
		m.Detail = text
	} else {
		m.Detail += " | " + text
	}
}

// resolveColumns locates the four monetary-column headers and returns their
// horizontal centers, or nil when no row carries all four labels.
// Statements repeat the labels in summary sub-tables further down the page,
// so among complete candidate rows the topmost one wins.
func resolveColumns(words []models.Word) models.ColumnLayout {
	type hit struct {
		col  models.Column
		word models.Word
	}

	var hits []hit
	for _, w := range words {
		t := foldDiacritics(strings.ToUpper(strings.TrimSpace(w.Text)))
		switch col := models.Column(t); col {
		case models.ColumnCharges, models.ColumnCredits,
			models.ColumnBalanceOperation, models.ColumnBalanceSettlement:
			hits = append(hits, hit{col: col, word: w})
		}
	}
	if len(hits) == 0 {
		return nil
	}

	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].word.Top != hits[b].word.Top {
			return hits[a].word.Top < hits[b].word.Top
		}
		return hits[a].word.Left < hits[b].word.Left
	})

	// Cluster label hits into header-row candidates by vertical offset.
	var groups [][]hit
	for _, h := range hits {
		placed := false
		for i := range groups {
			if math.Abs(h.word.Top-groups[i][0].word.Top) <= headerRowTolerance {
				groups[i] = append(groups[i], h)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []hit{h})
		}
	}

	best := models.ColumnLayout(nil)
	bestTop := math.Inf(1)
	for _, g := range groups {
		centers := models.ColumnLayout{}
		for _, h := range g {
			centers[h.col] = h.word.Center()
		}
		if len(centers) < len(models.Columns) {
			continue
		}
		if g[0].word.Top < bestTop {
			best = centers
			bestTop = g[0].word.Top
		}
	}
	return best
}

// groupRows clusters a page's words into ordered visual rows. A word joins
// the current row when its vertical offset is within tolerance of the row's
// anchor (the first word's offset).
func groupRows(words []models.Word) []models.Row {
	sorted := make([]models.Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].Top != sorted[b].Top {
			return sorted[a].Top < sorted[b].Top
		}
		return sorted[a].Left < sorted[b].Left
	})

	var rows []models.Row
	var current models.Row
	anchor := 0.0
	for _, w := range sorted {
		if len(current) == 0 {
			anchor = w.Top
		} else if math.Abs(w.Top-anchor) > dataRowTolerance {
			rows = append(rows, current)
			current = nil
			anchor = w.Top
		}
		current = append(current, w)
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}
	return rows
}

// nearestColumn returns the column whose center is closest to x.
// Ties keep the first column in iteration order.
func nearestColumn(x float64, layout models.ColumnLayout) models.Column {
	best := models.Columns[0]
	bestDist := math.Inf(1)
	for _, col := range models.Columns {
		center, ok := layout[col]
		if !ok {
			continue
		}
		if d := math.Abs(x - center); d < bestDist {
			best = col
			bestDist = d
		}
	}
	return best
}
