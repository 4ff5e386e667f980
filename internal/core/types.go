package core

import (
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// Column headers used by the enrollment export.
const (
	ColClassNbr  = "SOC Class Nbr"
	ColName      = "Name"
	ColSubject   = "Subject"
	ColNum       = "Num"
	ColSection   = "Section"
	ColDescr     = "Descr"
	ColCampus    = "Campus"
	ColLocation  = "Location"
	ColBeginTime = "Begin Time"
	ColEndTime   = "End Time"
	ColTotEnrl   = "Tot Enrl"
	ColEnrCpcty  = "Enr Cpcty"
	ColWaitTot   = "Wait Tot"
	ColWaitCap   = "Wait Cap"
)

// HeaderIndex maps column names (lowercase) to their position in a row.
type HeaderIndex map[string]int

// Cell is a single raw value. Present is false for missing values.
type Cell struct {
	Text    string
	Present bool
}

// String returns the cell text, or "" when the value is missing.
func (c Cell) String() string {
	if !c.Present {
		return ""
	}
	return c.Text
}

// RawRow is one line of the uploaded table, aligned with RawTable.Columns.
type RawRow []Cell

// RawTable is the generic row table produced by a file parser.
// Row order is significant and preserved by every stage.
type RawTable struct {
	Columns []string
	Rows    []RawRow

	index HeaderIndex
}

// NewRawTable builds a RawTable from a header and string rows.
// Short rows are padded with missing cells; missing tokens become missing cells.
func NewRawTable(columns []string, rows [][]string) *RawTable {
	t := &RawTable{
		Columns: columns,
		Rows:    make([]RawRow, 0, len(rows)),
		index:   MakeHeaderIndex(columns),
	}
	for _, r := range rows {
		row := make(RawRow, len(columns))
		for i := range columns {
			if i < len(r) {
				row[i] = NewCell(r[i])
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Has reports whether the table has the named column.
func (t *RawTable) Has(column string) bool {
	_, ok := t.position(column)
	return ok
}

// Value returns the cell for column in row. A missing column yields a missing cell.
func (t *RawTable) Value(row RawRow, column string) Cell {
	pos, ok := t.position(column)
	if !ok || pos >= len(row) {
		return Cell{}
	}
	return row[pos]
}

func (t *RawTable) position(column string) (int, bool) {
	if t.index == nil {
		t.index = MakeHeaderIndex(t.Columns)
	}
	pos, ok := t.index[strings.ToLower(column)]
	return pos, ok
}

// EnrollmentRecord is one normalized class section.
// All fields come from the first row seen for ClassNbr except Instructors.
type EnrollmentRecord struct {
	ClassNbr    string `json:"classNbr"`
	Subject     string `json:"subject"`
	Num         string `json:"num"`
	Section     string `json:"section"`
	Descr       string `json:"descr"`
	Campus      string `json:"campus"`
	Location    string `json:"location"`
	BeginTime   string `json:"beginTime"`
	EndTime     string `json:"endTime"`
	Instructors string `json:"instructors"`

	TotEnrl  pgtype.Float8 `json:"totEnrl"`
	EnrCpcty pgtype.Float8 `json:"enrCpcty"`
	WaitTot  pgtype.Float8 `json:"waitTot"`
	WaitCap  pgtype.Float8 `json:"waitCap"`

	// Values is the canonical row verbatim, aligned with the source columns.
	Values RawRow `json:"-"`
}

// Course returns the course this section belongs to.
func (r EnrollmentRecord) Course() CourseKey {
	return CourseKey{Subject: r.Subject, Num: r.Num}
}

// CourseKey groups sections of the same course.
type CourseKey struct {
	Subject string `json:"subject"`
	Num     string `json:"num"`
}

// Label returns "SUBJ NUM" with both parts trimmed.
func (k CourseKey) Label() string {
	return strings.TrimSpace(k.Subject) + " " + strings.TrimSpace(k.Num)
}

// Sum is a null-tolerant total. Nulls add zero and are not counted.
type Sum struct {
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// Add folds one value into the sum.
func (s *Sum) Add(v pgtype.Float8) {
	if !v.Valid {
		return
	}
	s.Total += v.Float64
	s.Count++
}

// Valid reports whether at least one non-null value contributed.
func (s Sum) Valid() bool {
	return s.Count > 0
}

// LocationAggregate holds summed numeric fields for one location (or campus/location pair).
type LocationAggregate struct {
	Campus   string `json:"campus,omitempty"`
	Location string `json:"location"`
	Sections int    `json:"sections"`
	TotEnrl  Sum    `json:"totEnrl"`
	EnrCpcty Sum    `json:"enrCpcty"`
	WaitTot  Sum    `json:"waitTot"`
	WaitCap  Sum    `json:"waitCap"`
}

// SeatAvailability is one "seats left at location" line.
type SeatAvailability struct {
	Location string  `json:"location"`
	Seats    float64 `json:"seats"`
}

// BreakdownRow is one line of the per-section marker table.
// The synthetic total row has Section "TOTAL", an empty Location and Total set.
type BreakdownRow struct {
	ClassNbr string        `json:"classNbr,omitempty"`
	Section  string        `json:"section"`
	Location string        `json:"location"`
	TotEnrl  pgtype.Float8 `json:"totEnrl"`
	EnrCpcty pgtype.Float8 `json:"enrCpcty"`
	WaitTot  pgtype.Float8 `json:"waitTot"`
	WaitCap  pgtype.Float8 `json:"waitCap"`
	Total    bool          `json:"total,omitempty"`
}

// CourseSummary is the marker-section (DLC) view of one course.
type CourseSummary struct {
	Course    CourseKey          `json:"course"`
	Label     string             `json:"label"`
	EnrCpcty  Sum                `json:"enrCpcty"`
	TotEnrl   Sum                `json:"totEnrl"`
	WaitCap   Sum                `json:"waitCap"`
	WaitTot   Sum                `json:"waitTot"`
	Seats     []SeatAvailability `json:"seats"`
	Breakdown []BreakdownRow     `json:"breakdown"`
}

// NormalizeReport describes what the Normalizer dropped or merged.
type NormalizeReport struct {
	InputRows int `json:"inputRows"`
	Excluded  int `json:"excluded"` // dropped by the Descr exclusion filter
	Unkeyed   int `json:"unkeyed"`  // dropped for a missing SOC Class Nbr
	Merged    int `json:"merged"`   // folded into an earlier record with the same key
	Records   int `json:"records"`
}
