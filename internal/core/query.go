package core

// query.go provides hierarchical selection over normalized records:
// subject → course number → section, plus the open-section predicate.
//
// Every function is pure: inputs are never modified and results are new slices.

import (
	"sort"
)

// Subjects returns the distinct non-empty Subject values, sorted.
func Subjects(records []EnrollmentRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		if r.Subject == "" || seen[r.Subject] {
			continue
		}
		seen[r.Subject] = true
		out = append(out, r.Subject)
	}
	sortNatural(out)
	return out
}

// CourseNums returns the distinct non-empty Num values for subject, sorted.
func CourseNums(records []EnrollmentRecord, subject string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		if r.Subject != subject || r.Num == "" || seen[r.Num] {
			continue
		}
		seen[r.Num] = true
		out = append(out, r.Num)
	}
	sortNatural(out)
	return out
}

// SectionsFor returns the records of one course in their original order.
func SectionsFor(records []EnrollmentRecord, subject, num string) []EnrollmentRecord {
	var out []EnrollmentRecord
	for _, r := range records {
		if r.Subject == subject && r.Num == num {
			out = append(out, r)
		}
	}
	return out
}

// IsOpen reports whether enrollment is strictly below capacity.
// A record whose enrollment or capacity is not numeric is never open.
func IsOpen(r EnrollmentRecord) bool {
	return r.TotEnrl.Valid && r.EnrCpcty.Valid && r.TotEnrl.Float64 < r.EnrCpcty.Float64
}

// IsClosed reports whether enrollment has reached capacity.
// Like IsOpen, it is false when either value is not numeric.
func IsClosed(r EnrollmentRecord) bool {
	return r.TotEnrl.Valid && r.EnrCpcty.Valid && r.TotEnrl.Float64 >= r.EnrCpcty.Float64
}

// OpenSections filters records to open sections, preserving order.
func OpenSections(records []EnrollmentRecord) []EnrollmentRecord {
	return filterRecords(records, IsOpen)
}

// ClosedSections filters records to full sections, preserving order.
func ClosedSections(records []EnrollmentRecord) []EnrollmentRecord {
	return filterRecords(records, IsClosed)
}

// LookupSection returns the record for classNbr.
// Normalization guarantees at most one match.
func LookupSection(records []EnrollmentRecord, classNbr string) (EnrollmentRecord, bool) {
	key := classKey(NewCell(classNbr))
	for _, r := range records {
		if r.ClassNbr == key {
			return r, true
		}
	}
	return EnrollmentRecord{}, false
}

func filterRecords(records []EnrollmentRecord, keep func(EnrollmentRecord) bool) []EnrollmentRecord {
	var out []EnrollmentRecord
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// sortNatural sorts numerically when every value is a number
// (course numbers such as "101", "2010") and lexicographically otherwise.
func sortNatural(values []string) {
	nums := make(map[string]float64, len(values))
	for _, v := range values {
		n := CoerceNumber(v)
		if !n.Valid {
			sort.Strings(values)
			return
		}
		nums[v] = n.Float64
	}
	sort.SliceStable(values, func(i, j int) bool {
		a, b := nums[values[i]], nums[values[j]]
		if a != b {
			return a < b
		}
		return values[i] < values[j]
	})
}
