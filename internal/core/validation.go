package core

// validation.go checks that a table carries the columns a capability needs.
//
// Validation happens once per table: at ingestion for the normalization
// columns, and per request for the columns a query needs. A missing column is
// a SchemaError naming every absent header, never a partial answer.

import (
	"errors"
	"fmt"
	"strings"
)

// Capability names a group of operations with a fixed set of required columns.
type Capability string

const (
	CapNormalization     Capability = "normalization"
	CapOpenSections      Capability = "open sections"
	CapLocationAggregate Capability = "location aggregate"
	CapCampusAggregate   Capability = "campus aggregate"
	CapSectionView       Capability = "section view"
	CapMarkerView        Capability = "marker sections"
)

var capabilityColumns = map[Capability][]string{
	CapNormalization: {ColClassNbr, ColName},
	CapOpenSections: {
		ColSubject, ColNum, ColTotEnrl, ColEnrCpcty, ColDescr, ColBeginTime, ColEndTime,
	},
	CapLocationAggregate: {
		ColSubject, ColNum, ColTotEnrl, ColEnrCpcty, ColDescr, ColBeginTime, ColEndTime, ColLocation,
	},
	CapCampusAggregate: {
		ColSubject, ColNum, ColTotEnrl, ColEnrCpcty, ColDescr, ColBeginTime, ColEndTime, ColCampus, ColLocation,
	},
	CapSectionView: {
		ColClassNbr, ColSubject, ColNum, ColSection, ColDescr, ColCampus, ColLocation,
		ColTotEnrl, ColEnrCpcty, ColWaitTot, ColWaitCap, ColName,
	},
	CapMarkerView: {
		ColSubject, ColNum, ColSection, ColLocation, ColTotEnrl, ColEnrCpcty, ColWaitTot, ColWaitCap,
	},
}

// RequiredColumns returns the headers the capability needs, in display order.
func (c Capability) RequiredColumns() []string {
	cols := capabilityColumns[c]
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}

// SchemaError reports required columns absent from a table.
type SchemaError struct {
	Capability Capability
	Missing    []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns for %s: %s", e.Capability, strings.Join(e.Missing, ", "))
}

// ParseError reports a file that could not be turned into a row table.
type ParseError struct {
	FileName string
	Reason   string
	Err      error
}

func (e *ParseError) Error() string {
	msg := e.Reason
	if e.FileName != "" {
		msg = fmt.Sprintf("%s: %s", e.FileName, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError represents a single validation error for a request field.
type ValidationError struct {
	Field   string // Field/parameter name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

var (
	// ErrNoDataset is returned by queries before any upload succeeded.
	ErrNoDataset = errors.New("no dataset loaded")

	// ErrSectionNotFound is returned when a class number has no record.
	ErrSectionNotFound = errors.New("section not found")

	// ErrCourseNotFound is returned when a marker course has no sections.
	ErrCourseNotFound = errors.New("course not found")
)

// ValidateColumns checks that every column the capability needs is present.
// Matching is case-insensitive on cleaned header text.
func ValidateColumns(columns []string, c Capability) error {
	idx := MakeHeaderIndex(columns)
	var missing []string
	for _, col := range capabilityColumns[c] {
		if _, ok := idx[strings.ToLower(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Capability: c, Missing: missing}
	}
	return nil
}

// EmptyResultNotice marks a query that matched nothing.
// It is informational and never returned as an error.
type EmptyResultNotice struct {
	Query   string `json:"query"`
	Message string `json:"message"`
}

// NoticeIfEmpty returns a notice when n is zero, nil otherwise.
func NoticeIfEmpty(n int, query, message string) *EmptyResultNotice {
	if n > 0 {
		return nil
	}
	return &EmptyResultNotice{Query: query, Message: message}
}
