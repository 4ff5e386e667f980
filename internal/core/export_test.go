package core

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportColumns_NameLast(t *testing.T) {
	d := &Dataset{Columns: []string{ColClassNbr, ColName, ColSubject, ColTotEnrl}}

	assert.Equal(t, []string{ColClassNbr, ColSubject, ColTotEnrl, ColName}, d.ExportColumns())
}

func TestWriteCSV(t *testing.T) {
	table := NewRawTable([]string{ColClassNbr, ColName, ColSubject, ColTotEnrl}, [][]string{
		{"1", "A", "ENGR", "25"},
		{"1", "B", "ENGR", "99"},
		{"2", "NA", "MATH", "TBD"},
		{"3", "C", "", "N/A"},
	})
	records, report := Normalize(table, nil)
	d := &Dataset{Columns: table.Columns, Records: records, Report: report}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, d))

	lines, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"SOC Class Nbr", "Subject", "Tot Enrl", "Name"},
		{"1", "ENGR", "25", "A, B"},
		{"2", "MATH", "TBD", ""},
		{"3", "", "", "C"},
	}, lines)
}

func TestWriteCSV_InstructorWithComma(t *testing.T) {
	table := NewRawTable([]string{ColClassNbr, ColName}, [][]string{
		{"7", "Smith, J"},
	})
	records, _ := Normalize(table, nil)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, &Dataset{Columns: table.Columns, Records: records}))

	assert.Equal(t, "SOC Class Nbr,Name\n7,\"Smith, J\"\n", buf.String())
}
