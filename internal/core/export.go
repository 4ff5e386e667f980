package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ExportFileName is the download name of the cleaned dataset.
const ExportFileName = "cleaned_schedule.csv"

// ExportColumns returns the cleaned header: source columns without Name,
// followed by Name holding the merged instructors.
func (d *Dataset) ExportColumns() []string {
	cols := make([]string, 0, len(d.Columns))
	for _, c := range d.Columns {
		if isNameColumn(c) {
			continue
		}
		cols = append(cols, c)
	}
	return append(cols, ColName)
}

// WriteCSV writes the cleaned dataset as CSV, one line per SOC Class Nbr.
// Canonical-row cells are written verbatim; missing cells are empty.
func WriteCSV(w io.Writer, d *Dataset) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(d.ExportColumns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	keep := make([]int, 0, len(d.Columns))
	for i, c := range d.Columns {
		if !isNameColumn(c) {
			keep = append(keep, i)
		}
	}

	line := make([]string, len(keep)+1)
	for _, rec := range d.Records {
		for j, i := range keep {
			if i < len(rec.Values) {
				line[j] = rec.Values[i].String()
			} else {
				line[j] = ""
			}
		}
		line[len(keep)] = rec.Instructors
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write record %s: %w", rec.ClassNbr, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func isNameColumn(c string) bool {
	return strings.EqualFold(CleanCell(c), ColName)
}
