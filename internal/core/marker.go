package core

// marker.go builds the marker-section (DLC) view.
//
// A marker section carries a literal "V" anywhere in its Section code
// (case-sensitive substring, e.g. "05V", "V01"). The view lists the courses
// that have marker sections and, for one course, sums capacity, enrollment
// and waitlists, derives seats left per location and tabulates each section
// with a trailing TOTAL row.

import (
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// MarkerCode is the substring that flags a marker section.
const MarkerCode = "V"

// TotalLabel labels the synthetic total row of a breakdown table.
const TotalLabel = "TOTAL"

// IsMarkerSection reports whether the Section code contains MarkerCode.
func IsMarkerSection(r EnrollmentRecord) bool {
	return strings.Contains(r.Section, MarkerCode)
}

// MarkerSections filters records to marker sections, preserving order.
func MarkerSections(records []EnrollmentRecord) []EnrollmentRecord {
	return filterRecords(records, IsMarkerSection)
}

// MarkerCourses returns the distinct courses that have marker sections,
// sorted by subject then course number.
func MarkerCourses(records []EnrollmentRecord) []CourseKey {
	seen := make(map[CourseKey]bool)
	var out []CourseKey
	for _, r := range MarkerSections(records) {
		k := r.Course()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Subject != out[j].Subject {
			return out[i].Subject < out[j].Subject
		}
		return lessNatural(out[i].Num, out[j].Num)
	})
	return out
}

// SummarizeCourse builds the marker view for one course.
// It returns false when the course has no marker sections.
func SummarizeCourse(records []EnrollmentRecord, course CourseKey) (CourseSummary, bool) {
	course = CourseKey{Subject: strings.TrimSpace(course.Subject), Num: strings.TrimSpace(course.Num)}

	var sections []EnrollmentRecord
	for _, r := range MarkerSections(records) {
		if r.Course() == course {
			sections = append(sections, r)
		}
	}
	if len(sections) == 0 {
		return CourseSummary{}, false
	}

	summary := CourseSummary{
		Course: course,
		Label:  course.Label(),
		Seats:  SeatsAvailable(sections),
	}
	for _, r := range sections {
		summary.EnrCpcty.Add(r.EnrCpcty)
		summary.TotEnrl.Add(r.TotEnrl)
		summary.WaitCap.Add(r.WaitCap)
		summary.WaitTot.Add(r.WaitTot)
	}
	summary.Breakdown = Breakdown(sections)

	return summary, true
}

// SeatsAvailable lists capacity minus enrollment for every section that has
// both numbers, free seats and a location. Other sections are skipped.
func SeatsAvailable(records []EnrollmentRecord) []SeatAvailability {
	var out []SeatAvailability
	for _, r := range records {
		if !r.EnrCpcty.Valid || !r.TotEnrl.Valid {
			continue
		}
		if r.EnrCpcty.Float64 <= r.TotEnrl.Float64 || r.Location == "" {
			continue
		}
		out = append(out, SeatAvailability{
			Location: r.Location,
			Seats:    r.EnrCpcty.Float64 - r.TotEnrl.Float64,
		})
	}
	return out
}

// Breakdown tabulates one row per record followed by a TOTAL row whose
// numeric fields are column sums with nulls counted as zero.
func Breakdown(records []EnrollmentRecord) []BreakdownRow {
	rows := make([]BreakdownRow, 0, len(records)+1)
	var tot, capacity, waitTot, waitCap Sum
	for _, r := range records {
		rows = append(rows, BreakdownRow{
			ClassNbr: r.ClassNbr,
			Section:  r.Section,
			Location: r.Location,
			TotEnrl:  r.TotEnrl,
			EnrCpcty: r.EnrCpcty,
			WaitTot:  r.WaitTot,
			WaitCap:  r.WaitCap,
		})
		tot.Add(r.TotEnrl)
		capacity.Add(r.EnrCpcty)
		waitTot.Add(r.WaitTot)
		waitCap.Add(r.WaitCap)
	}
	rows = append(rows, BreakdownRow{
		Section:  TotalLabel,
		TotEnrl:  pgtype.Float8{Float64: tot.Total, Valid: true},
		EnrCpcty: pgtype.Float8{Float64: capacity.Total, Valid: true},
		WaitTot:  pgtype.Float8{Float64: waitTot.Total, Valid: true},
		WaitCap:  pgtype.Float8{Float64: waitCap.Total, Valid: true},
		Total:    true,
	})
	return rows
}

func lessNatural(a, b string) bool {
	na, nb := CoerceNumber(a), CoerceNumber(b)
	if na.Valid && nb.Valid && na.Float64 != nb.Float64 {
		return na.Float64 < nb.Float64
	}
	return a < b
}
