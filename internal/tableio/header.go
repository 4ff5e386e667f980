package tableio

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/enrollview/internal/core"
)

// MaxHeaderSearchRows bounds how far down a sheet the header is looked for.
// Some registrar reports put a title and run date above the column names.
const MaxHeaderSearchRows = 10

// findHeaderRow returns the index of the first row that names the class
// number column within MaxHeaderSearchRows. Otherwise it falls back to the
// first non-blank row. It returns -1 when every row is blank.
func findHeaderRow(records [][]string) int {
	limit := min(len(records), MaxHeaderSearchRows)
	for i := 0; i < limit; i++ {
		for _, cell := range records[i] {
			if strings.EqualFold(core.CleanCell(cell), core.ColClassNbr) {
				return i
			}
		}
	}
	for i, row := range records {
		if !isEmptyRow(row) {
			return i
		}
	}
	return -1
}

// headerNames trims the header and names blank or repeated columns the way
// spreadsheet tools do: "Unnamed: 3" for a blank, "Name.1" for a repeat.
func headerNames(row []string) []string {
	names := make([]string, len(row))
	seen := make(map[string]int, len(row))
	for i, h := range row {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = fmt.Sprintf("%s.%d", h, n+1)
		} else {
			seen[h] = 0
		}
		names[i] = h
	}
	return names
}

// buildTable turns parsed records into a RawTable. Blank lines are dropped.
// Rows wider than the header are truncated.
func buildTable(fileName string, records [][]string) (*core.RawTable, error) {
	at := findHeaderRow(records)
	if at < 0 {
		return nil, &core.ParseError{FileName: fileName, Reason: "empty file"}
	}

	columns := headerNames(records[at])
	rows := make([][]string, 0, len(records)-at-1)
	for _, r := range records[at+1:] {
		if isEmptyRow(r) {
			continue
		}
		rows = append(rows, r)
	}
	return core.NewRawTable(columns, rows), nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
