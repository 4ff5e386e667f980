package core

// normalize.go collapses the multi-row export into one record per class.
//
// The registrar export repeats a section once per instructor. Normalizing:
//  1. Drops rows whose Descr is a non-course activity (coops, internships, ...)
//  2. Drops rows without a SOC Class Nbr (counted, never grouped)
//  3. Keeps the first row per SOC Class Nbr as the canonical row
//  4. Joins every present Name for that key with ", ", repeats included
//
// Output order is the order in which each key was first seen.

import (
	"strings"
)

// DefaultExcludedDescrs lists the Descr values of non-course activities.
var DefaultExcludedDescrs = []string{
	"Engr Coop",
	"Engr Internship",
	"Internship",
	"Cooperative Education",
	"Co-op Work Experience",
	"Research",
	"Independent Research",
	"Thesis",
	"Thesis Research",
	"Masters Thesis",
	"Dissertation",
	"Doctoral Dissertation",
}

// Normalize deduplicates rows by SOC Class Nbr and merges instructor names.
// The table must have passed Ingest. excluded holds Descr values to drop;
// matching is exact, including case and surrounding whitespace.
func Normalize(table *RawTable, excluded []string) ([]EnrollmentRecord, NormalizeReport) {
	report := NormalizeReport{InputRows: len(table.Rows)}

	exclude := make(map[string]bool, len(excluded))
	for _, d := range excluded {
		exclude[d] = true
	}
	filterDescr := table.Has(ColDescr) && len(exclude) > 0

	type group struct {
		canonical RawRow
		names     []string
	}
	groups := make(map[string]*group)
	order := make([]string, 0)

	for _, row := range table.Rows {
		if filterDescr {
			if d := table.Value(row, ColDescr); d.Present && exclude[d.Text] {
				report.Excluded++
				continue
			}
		}

		key := classKey(table.Value(row, ColClassNbr))
		if key == "" {
			report.Unkeyed++
			continue
		}

		g, seen := groups[key]
		if !seen {
			g = &group{canonical: row}
			groups[key] = g
			order = append(order, key)
		} else {
			report.Merged++
		}

		if name := table.Value(row, ColName); name.Present {
			g.names = append(g.names, name.Text)
		}
	}

	records := make([]EnrollmentRecord, 0, len(order))
	for _, key := range order {
		g := groups[key]
		rec := buildRecord(table, g.canonical)
		rec.ClassNbr = key
		rec.Instructors = strings.Join(g.names, ", ")
		records = append(records, rec)
	}
	report.Records = len(records)

	return records, report
}

// classKey returns the grouping key for a SOC Class Nbr cell, "" when unkeyable.
// Spreadsheet tools sometimes write integral keys as "12345.0"; those collapse to "12345".
func classKey(c Cell) string {
	if !c.Present {
		return ""
	}
	key := CleanCell(c.Text)
	if strings.HasSuffix(key, ".0") {
		if n := CoerceNumber(key); n.Valid && n.Float64 == float64(int64(n.Float64)) {
			key = FormatNumber(n)
		}
	}
	return key
}

// buildRecord maps the canonical row onto typed fields.
func buildRecord(table *RawTable, row RawRow) EnrollmentRecord {
	text := func(col string) string {
		return strings.TrimSpace(table.Value(row, col).String())
	}
	num := func(col string) Cell {
		return table.Value(row, col)
	}

	values := make(RawRow, len(row))
	copy(values, row)

	return EnrollmentRecord{
		Subject:   text(ColSubject),
		Num:       text(ColNum),
		Section:   text(ColSection),
		Descr:     text(ColDescr),
		Campus:    text(ColCampus),
		Location:  text(ColLocation),
		BeginTime: text(ColBeginTime),
		EndTime:   text(ColEndTime),
		TotEnrl:   CoerceCell(num(ColTotEnrl)),
		EnrCpcty:  CoerceCell(num(ColEnrCpcty)),
		WaitTot:   CoerceCell(num(ColWaitTot)),
		WaitCap:   CoerceCell(num(ColWaitCap)),
		Values:    values,
	}
}
