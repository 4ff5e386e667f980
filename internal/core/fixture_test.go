package core

import (
	"github.com/jackc/pgx/v5/pgtype"
)

var scheduleColumns = []string{
	ColClassNbr, ColSubject, ColNum, ColSection, ColDescr, ColCampus, ColLocation,
	ColBeginTime, ColEndTime, ColTotEnrl, ColEnrCpcty, ColWaitTot, ColWaitCap, ColName,
}

// scheduleTable is a small export with one row per instructor.
func scheduleTable() *RawTable {
	return NewRawTable(scheduleColumns, [][]string{
		{"10001", "ENGR", "101", "01", "Intro to Engineering", "MAIN", "Main", "09:00", "09:50", "25", "30", "0", "10", "Smith, J"},
		{"10001", "ENGR", "101", "01", "Intro to Engineering", "MAIN", "Main", "09:00", "09:50", "25", "30", "0", "10", "Lee, K"},
		{"10002", "ENGR", "101", "05V", "Intro to Engineering", "DLC", "Online", "", "", "40", "50", "2", "5", "Smith, J"},
		{"10003", "ENGR", "20", "01", "Statics", "MAIN", "Main", "10:00", "10:50", "30", "30", "4", "5", "Park, S"},
		{"10004", "ENGR", "399", "01", "Engr Coop", "MAIN", "Main", "", "", "1", "99", "0", "0", "Staff"},
		{"", "ENGR", "101", "02", "Intro to Engineering", "MAIN", "Main", "", "", "5", "30", "0", "0", "Ghost"},
		{"10005", "MATH", "2010", "V01", "Calculus", "DLC", "North", "", "", "TBD", "35", "", "", "NA"},
		{"10006", "MATH", "210", "01", "Linear Algebra", "NORTH", "North", "13:00", "13:50", "10", "", "0", "5", "Diaz, M"},
	})
}

func num(v float64) pgtype.Float8 {
	return pgtype.Float8{Float64: v, Valid: true}
}

func record(classNbr, subject, courseNum, section, location string, tot, capacity pgtype.Float8) EnrollmentRecord {
	return EnrollmentRecord{
		ClassNbr: classNbr,
		Subject:  subject,
		Num:      courseNum,
		Section:  section,
		Location: location,
		TotEnrl:  tot,
		EnrCpcty: capacity,
	}
}
