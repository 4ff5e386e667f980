package core

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Dataset is one normalized upload. It is never modified after creation;
// queries derive new slices from Records.
type Dataset struct {
	ID       uuid.UUID
	FileName string
	LoadedAt time.Time
	Columns  []string // source header, in file order
	Records  []EnrollmentRecord
	Report   NormalizeReport
}

// DatasetSummary is the preview shown after an upload.
type DatasetSummary struct {
	ID       string          `json:"id"`
	FileName string          `json:"fileName"`
	LoadedAt time.Time       `json:"loadedAt"`
	Columns  []string        `json:"columns"`
	Report   NormalizeReport `json:"report"`
	Subjects int             `json:"subjects"`
	Open     int             `json:"openSections"`
}

// Require returns a *SchemaError when the dataset lacks a column the capability needs.
func (d *Dataset) Require(c Capability) error {
	return ValidateColumns(d.Columns, c)
}

// Summary describes the dataset for display.
func (d *Dataset) Summary() DatasetSummary {
	return DatasetSummary{
		ID:       d.ID.String(),
		FileName: d.FileName,
		LoadedAt: d.LoadedAt,
		Columns:  d.ExportColumns(),
		Report:   d.Report,
		Subjects: len(Subjects(d.Records)),
		Open:     len(OpenSections(d.Records)),
	}
}

// Session holds the current dataset. Replace swaps it in one step, so a
// reader sees either the old dataset or the new one, never a mix.
type Session struct {
	current atomic.Pointer[Dataset]
}

// Current returns the loaded dataset or ErrNoDataset.
func (s *Session) Current() (*Dataset, error) {
	d := s.current.Load()
	if d == nil {
		return nil, ErrNoDataset
	}
	return d, nil
}

// Replace installs d as the current dataset and returns the previous one, if any.
func (s *Session) Replace(d *Dataset) *Dataset {
	return s.current.Swap(d)
}

// Clear drops the current dataset.
func (s *Session) Clear() {
	s.current.Store(nil)
}
