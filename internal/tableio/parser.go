// Package tableio reads uploaded CSV and Excel files into row tables.
//
// File type is chosen by extension. CSV and plain-text files are decoded as
// UTF-8 with a BOM allowed; workbooks are read from their first sheet. Either
// way the result is a core.RawTable whose header is the first row naming
// SOC Class Nbr, or the first non-blank row when none does.
package tableio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/enrollview/internal/core"
)

// Format identifies an upload encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// formats maps lowercase extensions to formats.
var formats = map[string]Format{
	".csv":  FormatCSV,
	".txt":  FormatCSV,
	".xlsx": FormatXLSX,
	".xlsm": FormatXLSX,
}

// SupportedExtensions lists accepted file extensions, for the upload form.
func SupportedExtensions() []string {
	return []string{".csv", ".txt", ".xlsx", ".xlsm"}
}

// DetectFormat returns the format for fileName's extension.
func DetectFormat(fileName string) (Format, bool) {
	f, ok := formats[strings.ToLower(filepath.Ext(fileName))]
	return f, ok
}

// Parser implements core.TableParser.
type Parser struct {
	// MaxBytes caps the bytes read from one upload. Zero means no cap.
	MaxBytes int64
}

// NewParser creates a parser that reads at most maxBytes per upload.
func NewParser(maxBytes int64) *Parser {
	return &Parser{MaxBytes: maxBytes}
}

// Parse reads r as the format implied by fileName.
func (p *Parser) Parse(fileName string, r io.Reader) (*core.RawTable, error) {
	format, ok := DetectFormat(fileName)
	if !ok {
		return nil, &core.ParseError{FileName: fileName, Reason: "unsupported file type"}
	}

	counter := NewCountingReader(r, p.MaxBytes)

	var (
		table *core.RawTable
		err   error
	)
	switch format {
	case FormatXLSX:
		table, err = ParseXLSX(fileName, counter)
	default:
		table, err = ParseCSV(fileName, counter)
	}
	if errors.Is(err, ErrFileTooLarge) {
		return nil, fmt.Errorf("%s: %w (limit %d bytes)", fileName, ErrFileTooLarge, p.MaxBytes)
	}
	if err != nil {
		return nil, err
	}

	slog.Debug("upload parsed",
		"file", fileName,
		"format", format,
		"bytes", counter.BytesRead,
		"columns", len(table.Columns),
		"rows", len(table.Rows),
	)
	return table, nil
}

// ParseCSV reads a comma-separated file. Quotes are handled leniently and
// rows may have any width.
func ParseCSV(fileName string, r io.Reader) (*core.RawTable, error) {
	cr := csv.NewReader(textReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return nil, err
		}
		return nil, &core.ParseError{FileName: fileName, Reason: "invalid csv", Err: err}
	}
	return buildTable(fileName, records)
}

// ParseXLSX reads the first sheet of a workbook.
func ParseXLSX(fileName string, r io.Reader) (*core.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return nil, err
		}
		return nil, &core.ParseError{FileName: fileName, Reason: "invalid workbook", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &core.ParseError{FileName: fileName, Reason: "empty file"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &core.ParseError{FileName: fileName, Reason: "invalid workbook", Err: err}
	}
	return buildTable(fileName, rows)
}
