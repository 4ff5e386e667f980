// Package core provides the normalization and query engine for course-enrollment exports.
//
// This package holds all domain logic independent of any UI or transport
// layer. It can be used by web handlers, CLI tools, or tests without
// modification.
//
// # Architecture
//
// The package is organized around a short pipeline and a set of pure queries:
//
//   - Ingestion: [Ingest] accepts a parsed [RawTable] and checks that the
//     normalization columns (SOC Class Nbr, Name) are present.
//   - Normalization: [Normalize] drops excluded activities and rows with no
//     class number, then collapses one row per instructor into one
//     [EnrollmentRecord] per class with instructor names joined.
//   - Queries: [Subjects], [CourseNums], [SectionsFor], [OpenSections],
//     [LookupSection], [AggregateByLocation], [AggregateByCampus],
//     [MarkerCourses] and [SummarizeCourse] derive views without mutating
//     their input.
//   - Service: [Service] owns the current [Dataset] and runs the pipeline for
//     each upload. A failed upload leaves the previous dataset in place.
//
// # Capabilities
//
// Each view needs its own set of columns. [Dataset.Require] reports a
// [SchemaError] naming every missing column before a view is computed, so a
// file can serve some views and refuse others.
//
// # Numeric Fields
//
// Tot Enrl, Enr Cpcty, Wait Tot and Wait Cap are coerced with [CoerceNumber]
// into pgtype.Float8. Text that is not numeric becomes null (Valid=false);
// sums treat null as zero, and the open-section predicate treats null as
// not open.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - SCH001: Missing required columns
//   - PRS001-PRS003: Unreadable uploads (type, CSV, workbook)
//   - FILE001-FILE005: File errors (size, missing, empty)
//   - DS001, QRY001-QRY002: No dataset, unknown section or course
//   - VAL001, UPL003-UPL005, RATE001: Request errors
package core
