package models

// Word is a single positioned text token on a statement page.
// Top grows downward: the topmost word on a page has the smallest Top.
type Word struct {
	Text  string
	Left  float64
	Right float64
	Top   float64
}

// Center returns the horizontal center of the word's bounding box.
func (w Word) Center() float64 {
	return (w.Left + w.Right) / 2
}

// Row is an ordered group of words sharing a vertical offset within tolerance.
type Row []Word

// Column identifies one of the four monetary columns of the debit ledger.
// Values match the header labels printed on the statement (diacritics folded).
type Column string

const (
	ColumnCharges           Column = "CARGOS"
	ColumnCredits           Column = "ABONOS"
	ColumnBalanceOperation  Column = "OPERACION"
	ColumnBalanceSettlement Column = "LIQUIDACION"
)

// Columns is the fixed iteration order used for nearest-column assignment.
// On an exact distance tie the earlier column wins.
var Columns = []Column{
	ColumnCharges,
	ColumnCredits,
	ColumnBalanceOperation,
	ColumnBalanceSettlement,
}

// ColumnLayout maps each monetary column to its horizontal center coordinate.
// Either all four columns are present, or the layout is undetected.
type ColumnLayout map[Column]float64

// Strategy identifies the extraction algorithm applied to a document.
type Strategy string

const (
	// StrategyPositional is the word-geometry extractor for debit/checking statements.
	StrategyPositional Strategy = "positional"
	// StrategyLinePattern is the whole-line regex extractor for credit-card statements.
	StrategyLinePattern Strategy = "line-pattern"
)

// StrategyChoice is the detector's verdict for one document.
type StrategyChoice struct {
	Strategy Strategy `json:"strategy"`
	Account  string   `json:"account,omitempty"`
	Currency string   `json:"currency,omitempty"`
}

// Movement represents a single extracted statement transaction.
// Dates are ISO (YYYY-MM-DD) when parseable; the positional variant keeps the
// raw token on a failed parse. Monetary fields are nil when the column was
// empty or the token could not be parsed.
type Movement struct {
	OperationDate     string   `json:"operationDate"`
	SettlementDate    string   `json:"settlementDate"`
	Code              string   `json:"code,omitempty"`
	Description       string   `json:"description"`
	Charge            *float64 `json:"charge"`
	Credit            *float64 `json:"credit"`
	BalanceOperation  *float64 `json:"balanceOperation"`
	BalanceSettlement *float64 `json:"balanceSettlement"`
	Detail            string   `json:"detail,omitempty"`
	Account           string   `json:"account"`
	Currency          string   `json:"currency"`
	SourceFile        string   `json:"sourceFile"`
	Page              int      `json:"page"`
}
