package core

// aggregate.go sums enrollment and waitlist fields by location.
//
// Grouping keeps first-seen order so the final stable sort breaks ties by
// encounter order. Records whose grouping key is empty are left out of
// every group. Nulls add zero to a sum but do not count toward Sum.Count.

import (
	"sort"
)

// AggregateByLocation groups records by Location and sums numeric fields,
// largest Tot Enrl first.
func AggregateByLocation(records []EnrollmentRecord) []LocationAggregate {
	return aggregate(records, func(r EnrollmentRecord) (string, string, bool) {
		return "", r.Location, r.Location != ""
	})
}

// AggregateByCampus groups records by (Campus, Location) and sums numeric
// fields, largest Tot Enrl first.
func AggregateByCampus(records []EnrollmentRecord) []LocationAggregate {
	return aggregate(records, func(r EnrollmentRecord) (string, string, bool) {
		return r.Campus, r.Location, r.Campus != "" && r.Location != ""
	})
}

type groupKeyFunc func(EnrollmentRecord) (campus, location string, ok bool)

func aggregate(records []EnrollmentRecord, keyOf groupKeyFunc) []LocationAggregate {
	type key struct{ campus, location string }

	index := make(map[key]int)
	var groups []LocationAggregate

	for _, r := range records {
		campus, location, ok := keyOf(r)
		if !ok {
			continue
		}
		k := key{campus, location}
		i, exists := index[k]
		if !exists {
			i = len(groups)
			index[k] = i
			groups = append(groups, LocationAggregate{Campus: campus, Location: location})
		}
		g := &groups[i]
		g.Sections++
		g.TotEnrl.Add(r.TotEnrl)
		g.EnrCpcty.Add(r.EnrCpcty)
		g.WaitTot.Add(r.WaitTot)
		g.WaitCap.Add(r.WaitCap)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].TotEnrl.Total > groups[j].TotEnrl.Total
	})
	return groups
}
