package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/enrollview/internal/logging"
)

// TableParser turns uploaded bytes into a row table.
type TableParser interface {
	Parse(fileName string, r io.Reader) (*RawTable, error)
}

// Observer receives ingestion and query events, e.g. for metrics.
type Observer interface {
	ObserveUpload(result string, report NormalizeReport, elapsed time.Duration)
	ObserveQuery(name string, results int)
}

type nopObserver struct{}

func (nopObserver) ObserveUpload(string, NormalizeReport, time.Duration) {}
func (nopObserver) ObserveQuery(string, int)                            {}

// Upload outcomes reported to the Observer.
const (
	UploadOK          = "ok"
	UploadParseError  = "parse_error"
	UploadSchemaError = "schema_error"
	UploadCancelled   = "cancelled"
	UploadRejected    = "rejected"
)

// Service is the main entry point: it owns the session and runs the
// ingest → normalize pipeline for each upload.
type Service struct {
	parser   TableParser
	excluded []string
	observer Observer
	limiter  *UploadLimiter
	session  Session
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithObserver reports uploads and queries to o.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithUploadLimiter caps concurrent uploads with l.
func WithUploadLimiter(l *UploadLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a service that parses uploads with parser and drops rows
// whose Descr is in excluded.
func NewService(parser TableParser, excluded []string, opts ...Option) *Service {
	s := &Service{
		parser:   parser,
		excluded: append([]string(nil), excluded...),
		observer: nopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExcludedDescrs returns the Descr values dropped during normalization.
func (s *Service) ExcludedDescrs() []string {
	return append([]string(nil), s.excluded...)
}

// Upload parses, validates and normalizes a file and makes it the current
// dataset. On any error the previous dataset stays current.
func (s *Service) Upload(ctx context.Context, fileName string, r io.Reader) (*Dataset, error) {
	start := s.now()
	logger := logging.WithFields(ctx, "file", fileName)

	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx); err != nil {
			s.observer.ObserveUpload(UploadRejected, NormalizeReport{}, s.now().Sub(start))
			return nil, err
		}
		defer s.limiter.Release()
	}

	table, err := s.parser.Parse(fileName, r)
	if err != nil {
		s.observer.ObserveUpload(UploadParseError, NormalizeReport{}, s.now().Sub(start))
		return nil, fmt.Errorf("parse upload: %w", err)
	}

	if err := ctx.Err(); err != nil {
		s.observer.ObserveUpload(UploadCancelled, NormalizeReport{}, s.now().Sub(start))
		return nil, err
	}

	d, err := s.Load(ctx, fileName, table)
	if err != nil {
		s.observer.ObserveUpload(UploadSchemaError, NormalizeReport{}, s.now().Sub(start))
		return nil, err
	}

	s.observer.ObserveUpload(UploadOK, d.Report, s.now().Sub(start))
	logger.Info("dataset loaded",
		"dataset_id", d.ID,
		"rows", d.Report.InputRows,
		"records", d.Report.Records,
		"excluded", d.Report.Excluded,
		"unkeyed", d.Report.Unkeyed,
	)
	if d.Report.Unkeyed > 0 {
		logger.Warn("rows without SOC Class Nbr were dropped", "count", d.Report.Unkeyed)
	}
	return d, nil
}

// Load ingests and normalizes an already parsed table and makes it current.
// Log lines carry the request fields found on ctx.
func (s *Service) Load(ctx context.Context, fileName string, table *RawTable) (*Dataset, error) {
	table, err := Ingest(table)
	if err != nil {
		return nil, err
	}

	records, report := Normalize(table, s.excluded)
	d := &Dataset{
		ID:       uuid.New(),
		FileName: fileName,
		LoadedAt: s.now(),
		Columns:  append([]string(nil), table.Columns...),
		Records:  records,
		Report:   report,
	}

	if prev := s.session.Replace(d); prev != nil {
		logging.WithFields(ctx, "file", fileName).Debug("dataset replaced",
			"previous_id", prev.ID,
			"dataset_id", d.ID,
		)
	}
	return d, nil
}

// Current returns the current dataset or ErrNoDataset.
func (s *Service) Current() (*Dataset, error) {
	return s.session.Current()
}

// Reset drops the current dataset.
func (s *Service) Reset() {
	s.session.Clear()
}

// Observe records a query and its result size.
func (s *Service) Observe(name string, results int) {
	s.observer.ObserveQuery(name, results)
}
