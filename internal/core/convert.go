package core

// convert.go turns raw spreadsheet text into typed values.
//
// These functions handle the messy reality of registrar exports:
//   - Excel formula prefixes (="00123") and stray quotes in keys and headers
//   - Missing-value tokens written by spreadsheet tools (NA, N/A, #N/A, NaN, ...)
//
// Coercion never fails: text that is not a plain decimal or scientific
// number becomes an invalid pgtype.Float8, and callers treat that as null.
// Formatted counts such as "1,200", "$15" or "(5)" are not numbers.

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// missingTokens are the cell texts read as a missing value.
// Matching is exact, as spreadsheet tools write them.
var missingTokens = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// NewCell builds a Cell from raw text, marking missing tokens as not present.
// Token matching is exact, so " NA" is present text. Present cells keep
// their text verbatim.
func NewCell(s string) Cell {
	if missingTokens[s] {
		return Cell{}
	}
	return Cell{Text: s, Present: true}
}

// IsMissing reports whether raw text is a missing-value token.
func IsMissing(s string) bool {
	return missingTokens[s]
}

// CoerceNumber converts text to a nullable number.
// Surrounding whitespace is ignored; missing tokens and any text that is
// not a plain decimal or scientific number yield Valid=false.
func CoerceNumber(s string) pgtype.Float8 {
	if IsMissing(s) {
		return pgtype.Float8{}
	}
	s = strings.TrimSpace(s)
	if !numericRegex.MatchString(s) {
		return pgtype.Float8{}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: f, Valid: true}
}

// CoerceCell converts a cell to a nullable number; missing cells are null.
func CoerceCell(c Cell) pgtype.Float8 {
	if !c.Present {
		return pgtype.Float8{}
	}
	return CoerceNumber(c.Text)
}

// FormatNumber renders a number the way the export shows it:
// integral values without a decimal point, nulls as "".
func FormatNumber(v pgtype.Float8) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

// MakeHeaderIndex creates a HeaderIndex from a header row.
// Keys are cleaned and lowercased; the first occurrence of a repeated header wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, dup := idx[key]; dup {
			continue
		}
		idx[key] = i
	}
	return idx
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}
