package core

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateByLocation(t *testing.T) {
	records := []EnrollmentRecord{
		record("1", "ENGR", "101", "01", "Main", num(10), num(20)),
		record("2", "ENGR", "101", "02", "North", num(40), num(40)),
		record("3", "ENGR", "101", "03", "Main", pgtype.Float8{}, num(15)),
		record("4", "ENGR", "101", "04", "", num(99), num(99)),
	}

	got := AggregateByLocation(records)

	require.Len(t, got, 2)

	assert.Equal(t, "North", got[0].Location)
	assert.Equal(t, 40.0, got[0].TotEnrl.Total)

	hub := got[1]
	assert.Equal(t, "Main", hub.Location)
	assert.Equal(t, 2, hub.Sections)
	assert.Equal(t, 10.0, hub.TotEnrl.Total, "null adds zero")
	assert.Equal(t, 1, hub.TotEnrl.Count)
	assert.Equal(t, 35.0, hub.EnrCpcty.Total)
	assert.False(t, hub.WaitTot.Valid(), "no wait values at all")
}

func TestAggregateByLocation_TiesKeepEncounterOrder(t *testing.T) {
	records := []EnrollmentRecord{
		record("1", "A", "1", "01", "East", num(5), num(10)),
		record("2", "A", "1", "02", "West", num(5), num(10)),
		record("3", "A", "1", "03", "Hub", num(7), num(10)),
	}

	got := AggregateByLocation(records)

	var locations []string
	for _, g := range got {
		locations = append(locations, g.Location)
	}
	assert.Equal(t, []string{"Hub", "East", "West"}, locations)
}

func TestAggregateByCampus(t *testing.T) {
	records := []EnrollmentRecord{
		{ClassNbr: "1", Campus: "MAIN", Location: "Hall A", TotEnrl: num(10)},
		{ClassNbr: "2", Campus: "DLC", Location: "Hall A", TotEnrl: num(20)},
		{ClassNbr: "3", Campus: "MAIN", Location: "Hall A", TotEnrl: num(5)},
		{ClassNbr: "4", Campus: "", Location: "Hall A", TotEnrl: num(50)},
		{ClassNbr: "5", Campus: "MAIN", Location: "", TotEnrl: num(50)},
	}

	got := AggregateByCampus(records)

	require.Len(t, got, 2)
	assert.Equal(t, LocationAggregate{
		Campus:   "DLC",
		Location: "Hall A",
		Sections: 1,
		TotEnrl:  Sum{Total: 20, Count: 1},
	}, got[0])
	assert.Equal(t, "MAIN", got[1].Campus)
	assert.Equal(t, 15.0, got[1].TotEnrl.Total)
	assert.Equal(t, 2, got[1].Sections)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, AggregateByLocation(nil))
	assert.Empty(t, AggregateByCampus([]EnrollmentRecord{{Location: "Main"}}))
}
