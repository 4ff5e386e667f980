package templates

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/enrollview/internal/core"
)

// DashboardData is everything the landing page shows.
type DashboardData struct {
	Summary       *core.DatasetSummary // nil before the first upload
	Subjects      []string
	MarkerCourses []core.CourseKey
	Extensions    []string
}

// Dashboard renders the upload form, the loaded dataset summary and the
// subject and marker-course navigation.
func Dashboard(data DashboardData) templ.Component {
	return Page("Enrollment dashboard", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}

		h.raw(`<section class="upload"><h2>Upload schedule</h2>`)
		h.raw(`<form method="post" action="/upload" enctype="multipart/form-data">`)
		h.rawf(`<input type="file" name="file" accept="%s" required>`,
			templ.EscapeString(strings.Join(data.Extensions, ",")))
		h.raw(`<button type="submit">Upload</button></form></section>`)

		if data.Summary == nil {
			h.raw(`<p class="empty">No schedule loaded yet.</p>`)
			return h.err
		}

		s := data.Summary
		h.raw(`<section class="summary"><h2>`)
		h.text(s.FileName)
		h.raw(`</h2><dl>`)
		h.rawf(`<dt>Rows read</dt><dd>%d</dd>`, s.Report.InputRows)
		h.rawf(`<dt>Sections</dt><dd>%d</dd>`, s.Report.Records)
		h.rawf(`<dt>Open sections</dt><dd>%d</dd>`, s.Open)
		h.rawf(`<dt>Excluded rows</dt><dd>%d</dd>`, s.Report.Excluded)
		h.rawf(`<dt>Rows without class number</dt><dd>%d</dd>`, s.Report.Unkeyed)
		h.raw(`</dl><p><a href="/api/dataset/export">Download cleaned CSV</a></p></section>`)

		h.raw(`<section class="subjects"><h2>Subjects</h2><ul>`)
		for _, subj := range data.Subjects {
			h.rawf(`<li><a href="/api/subjects/%s/courses">`, url.PathEscape(subj))
			h.text(subj)
			h.raw(`</a></li>`)
		}
		h.raw(`</ul></section>`)

		if len(data.MarkerCourses) > 0 {
			h.raw(`<section class="dlc"><h2>DLC courses</h2><ul>`)
			for _, c := range data.MarkerCourses {
				q := url.Values{"subject": {c.Subject}, "num": {c.Num}}
				h.rawf(`<li><a href="/dlc?%s">`, templ.EscapeString(q.Encode()))
				h.text(c.Label())
				h.raw(`</a></li>`)
			}
			h.raw(`</ul></section>`)
		}
		return h.err
	}))
}
