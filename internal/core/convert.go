package core

// convert.go provides cell coercion for uploaded spreadsheets.
//
// Spreadsheet exports are messy: quantities arrive as "1,200", " 5 ", "=\"3\"",
// or as text like "N/A". Anything that doesn't survive cleanup is treated as
// zero, which the ingest step skips.

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// numericRegex validates that a string is a plain decimal after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace, an Excel formula prefix (="..."), and quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// ParseQuantity coerces a cell to a quantity. Empty or non-numeric cells
// yield zero. Thousands separators are accepted.
func ParseQuantity(s string) decimal.Decimal {
	s = CleanCell(s)
	if s == "" {
		return decimal.Zero
	}

	s = strings.ReplaceAll(s, ",", "")
	if !numericRegex.MatchString(s) {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatPercent renders a progress value with one decimal, e.g. "30.0%".
func FormatPercent(p float64) string {
	return decimal.NewFromFloat(p).StringFixed(1) + "%"
}

// percent returns part/whole*100, or 0 when whole is not positive.
func percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}
