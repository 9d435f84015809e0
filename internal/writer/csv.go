package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/davidmtz-dev/bancos-reader/internal/models"
)

// CSVWriter writes extracted movements to CSV format.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes movements to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, movements []models.Movement) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, movements)
}

// Write writes movements in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, movements []models.Movement) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	// Write account metadata as comment rows
	if w.IncludeHeader && len(movements) > 0 {
		first := movements[0]
		if first.Account != "" {
			writer.Write([]string{"# Account", first.Account})
		}
		if first.Currency != "" {
			writer.Write([]string{"# Currency", first.Currency})
		}
		if first.SourceFile != "" {
			writer.Write([]string{"# Source", first.SourceFile})
		}
	}

	header := []string{
		"Operation Date", "Settlement Date", "Code", "Description",
		"Charge", "Credit", "Balance (Operation)", "Balance (Settlement)",
		"Detail", "Account", "Currency", "Source", "Page",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, m := range movements {
		row := []string{
			m.OperationDate,
			m.SettlementDate,
			m.Code,
			m.Description,
			formatAmount(m.Charge),
			formatAmount(m.Credit),
			formatAmount(m.BalanceOperation),
			formatAmount(m.BalanceSettlement),
			m.Detail,
			m.Account,
			m.Currency,
			m.SourceFile,
			strconv.Itoa(m.Page),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
