package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/enrollview/internal/core"
)

// OpenReportData is one course's open sections.
type OpenReportData struct {
	Course   core.CourseKey
	Sections []core.EnrollmentRecord
	Notice   *core.EmptyResultNotice
}

// OpenReport lists the open sections of a course with meeting times,
// instructors and seat counts.
func OpenReport(data OpenReportData) templ.Component {
	title := "Open sections: " + data.Course.Label()
	return Page(title, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h2>`)
		h.text(title)
		h.raw(`</h2>`)
		h.component(ctx, Notice(data.Notice))
		if len(data.Sections) == 0 {
			return h.err
		}

		h.raw(`<table class="open-sections"><thead><tr>`)
		h.raw(`<th>Class Nbr</th><th>Section</th><th>Descr</th><th>Begin</th><th>End</th>`)
		h.raw(`<th>Instructors</th><th>Enrolled</th><th>Capacity</th></tr></thead><tbody>`)
		for _, r := range data.Sections {
			h.raw(`<tr>`)
			for _, v := range []string{
				r.ClassNbr, r.Section, r.Descr, r.BeginTime, r.EndTime, r.Instructors,
				number(r.TotEnrl), number(r.EnrCpcty),
			} {
				h.raw(`<td>`)
				h.text(v)
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	}))
}

// MarkerReport renders the DLC view of one course: totals, seats left per
// location and the per-section breakdown ending in the TOTAL row.
func MarkerReport(s core.CourseSummary) templ.Component {
	return Page("DLC: "+s.Label, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h2>`)
		h.text(s.Label)
		h.raw(`</h2><dl class="totals">`)
		h.rawf(`<dt>Capacity</dt><dd>%s</dd>`, templ.EscapeString(sum(s.EnrCpcty)))
		h.rawf(`<dt>Enrolled</dt><dd>%s</dd>`, templ.EscapeString(sum(s.TotEnrl)))
		h.rawf(`<dt>Waitlist capacity</dt><dd>%s</dd>`, templ.EscapeString(sum(s.WaitCap)))
		h.rawf(`<dt>Waitlisted</dt><dd>%s</dd>`, templ.EscapeString(sum(s.WaitTot)))
		h.raw(`</dl>`)

		h.raw(`<ul class="seats">`)
		for _, seat := range s.Seats {
			h.raw(`<li>`)
			h.text(core.FormatNumber(floatValue(seat.Seats)) + " seats available at " + seat.Location)
			h.raw(`</li>`)
		}
		h.raw(`</ul>`)

		h.raw(`<table class="breakdown"><thead><tr><th>Section</th><th>Location</th>`)
		h.raw(`<th>Enrolled</th><th>Capacity</th><th>Waitlisted</th><th>Waitlist cap</th></tr></thead><tbody>`)
		for _, row := range s.Breakdown {
			if row.Total {
				h.raw(`<tr class="total">`)
			} else {
				h.raw(`<tr>`)
			}
			for _, v := range []string{
				row.Section, row.Location,
				number(row.TotEnrl), number(row.EnrCpcty), number(row.WaitTot), number(row.WaitCap),
			} {
				h.raw(`<td>`)
				h.text(v)
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	}))
}
