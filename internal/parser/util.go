package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// monthNumbers maps the statement's Spanish month abbreviations to month numbers.
var monthNumbers = map[string]string{
	"ENE": "01", "FEB": "02", "MAR": "03", "ABR": "04",
	"MAY": "05", "JUN": "06", "JUL": "07", "AGO": "08",
	"SEP": "09", "OCT": "10", "NOV": "11", "DIC": "12",
}

var abbrevDatePattern = regexp.MustCompile(`^(\d{2})/([A-Z]{3})$`)

// normalizeAbbrevDate converts "01/JUL" plus a reference year into
// "2025-07-01". Unknown month abbreviations map to "01"; malformed input is
// returned unchanged.
func normalizeAbbrevDate(raw, year string) string {
	m := abbrevDatePattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(raw)))
	if m == nil {
		return raw
	}
	month, ok := monthNumbers[m[2]]
	if !ok {
		month = "01"
	}
	return year + "-" + month + "-" + m[1]
}

// normalizeDayFirstDate converts a day-first "08/01/25" or "08/01/2025" into
// "2025-01-08". Returns "" when the input cannot be parsed.
func normalizeDayFirstDate(raw string) string {
	s := strings.TrimSpace(raw)
	for _, layout := range []string{"02/01/2006", "02/01/06"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// parseAmount converts a locale-formatted amount like "1,234.56", "1.234,56"
// or "$ -12,432.34" to a float. A single leading minus is kept as the sign.
// Returns nil when the text is not an amount.
func parseAmount(raw string) *float64 {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" || s == "-" {
		return nil
	}

	if strings.Contains(s, ",") && strings.Contains(s, ".") {
		// Comma-thousands, dot-decimal: 1,234.56
		s = strings.ReplaceAll(s, ",", "")
	} else if strings.Contains(s, ",") {
		// Dot-thousands, comma-decimal: 1.234,56
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// normalizeLine collapses internal whitespace and strips non-breaking spaces.
func normalizeLine(line string) string {
	line = strings.ReplaceAll(line, "\u00a0", " ")
	return strings.Join(strings.Fields(line), " ")
}

var diacriticFolder = strings.NewReplacer(
	"Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U",
)

// foldDiacritics folds accented uppercase vowels so header labels like
// "OPERACIÓN" compare equal to their canonical form.
func foldDiacritics(s string) string {
	return diacriticFolder.Replace(s)
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
