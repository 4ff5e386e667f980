package core

// Ingest validates a parsed upload and hands it on unchanged.
// It fails with a *SchemaError when SOC Class Nbr or Name is absent;
// rows are neither reordered nor rewritten.
func Ingest(table *RawTable) (*RawTable, error) {
	if table == nil {
		return nil, &ParseError{Reason: "empty file"}
	}
	if err := ValidateColumns(table.Columns, CapNormalization); err != nil {
		return nil, err
	}
	return table, nil
}
