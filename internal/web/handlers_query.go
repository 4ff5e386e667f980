package web

import (
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/render"

	"github.com/JonMunkholm/enrollview/internal/core"
	"github.com/JonMunkholm/enrollview/internal/logging"
	"github.com/JonMunkholm/enrollview/internal/web/templates"
)

// Query names reported to the service observer.
const (
	querySubjects        = "subjects"
	queryCourses         = "courses"
	querySections        = "sections"
	queryOpenSections    = "open_sections"
	queryCourseLocations = "course_locations"
	queryLocations       = "locations"
	querySection         = "section"
	queryMarkerCourses   = "dlc_courses"
	queryMarkerCourse    = "dlc_course"
)

type subjectsResponse struct {
	Subjects []string                `json:"subjects"`
	Notice   *core.EmptyResultNotice `json:"notice,omitempty"`
}

type coursesResponse struct {
	Subject string                  `json:"subject"`
	Courses []string                `json:"courses"`
	Notice  *core.EmptyResultNotice `json:"notice,omitempty"`
}

type sectionsResponse struct {
	Course   core.CourseKey          `json:"course"`
	Sections []core.EnrollmentRecord `json:"sections"`
	Notice   *core.EmptyResultNotice `json:"notice,omitempty"`
}

type locationsResponse struct {
	Course    *core.CourseKey          `json:"course,omitempty"`
	By        string                   `json:"by"`
	Locations []core.LocationAggregate `json:"locations"`
	Notice    *core.EmptyResultNotice  `json:"notice,omitempty"`
}

type markerCoursesResponse struct {
	Courses []core.CourseKey        `json:"courses"`
	Notice  *core.EmptyResultNotice `json:"notice,omitempty"`
}

// dataset returns the current dataset after checking it can serve c.
func (s *Server) dataset(c core.Capability) (*core.Dataset, error) {
	d, err := s.service.Current()
	if err != nil {
		return nil, err
	}
	if err := d.Require(c); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Server) handleSubjects(w http.ResponseWriter, r *http.Request) {
	d, err := s.dataset(core.CapOpenSections)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	subjects := core.Subjects(d.Records)
	s.service.Observe(querySubjects, len(subjects))
	render.JSON(w, r, subjectsResponse{
		Subjects: nonNil(subjects),
		Notice:   core.NoticeIfEmpty(len(subjects), querySubjects, "The dataset has no subjects"),
	})
}

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	params := subjectParams{Subject: pathParam(r, "subject")}
	if err := s.validateParams(params); err != nil {
		s.respondError(w, r, err)
		return
	}
	d, err := s.dataset(core.CapOpenSections)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	courses := core.CourseNums(d.Records, params.Subject)
	s.service.Observe(queryCourses, len(courses))
	render.JSON(w, r, coursesResponse{
		Subject: params.Subject,
		Courses: nonNil(courses),
		Notice:  core.NoticeIfEmpty(len(courses), queryCourses, fmt.Sprintf("No courses found for %s", params.Subject)),
	})
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	s.courseSections(w, r, core.CapSectionView, querySections, core.SectionsFor, "No sections found for %s")
}

func (s *Server) handleOpenSections(w http.ResponseWriter, r *http.Request) {
	open := func(records []core.EnrollmentRecord, subject, num string) []core.EnrollmentRecord {
		return core.OpenSections(core.SectionsFor(records, subject, num))
	}
	s.courseSections(w, r, core.CapOpenSections, queryOpenSections, open, "No open sections for %s")
}

// courseSections answers a per-course record listing produced by selectFn.
func (s *Server) courseSections(
	w http.ResponseWriter, r *http.Request,
	c core.Capability, query string,
	selectFn func(records []core.EnrollmentRecord, subject, num string) []core.EnrollmentRecord,
	emptyFormat string,
) {
	params := courseParams{Subject: pathParam(r, "subject"), Num: pathParam(r, "num")}
	if err := s.validateParams(params); err != nil {
		s.respondError(w, r, err)
		return
	}
	d, err := s.dataset(c)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	sections := selectFn(d.Records, params.Subject, params.Num)
	s.service.Observe(query, len(sections))
	render.JSON(w, r, sectionsResponse{
		Course:   params.key(),
		Sections: nonNil(sections),
		Notice:   core.NoticeIfEmpty(len(sections), query, fmt.Sprintf(emptyFormat, params.key().Label())),
	})
}

func (s *Server) handleCourseLocations(w http.ResponseWriter, r *http.Request) {
	params := courseParams{Subject: pathParam(r, "subject"), Num: pathParam(r, "num")}
	if err := s.validateParams(params); err != nil {
		s.respondError(w, r, err)
		return
	}
	course := params.key()
	s.locations(w, r, &course, queryCourseLocations)
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	s.locations(w, r, nil, queryLocations)
}

// locations aggregates the whole dataset, or one course when course is set.
func (s *Server) locations(w http.ResponseWriter, r *http.Request, course *core.CourseKey, query string) {
	grouping := groupingParams{By: queryParam(r, "by")}
	if err := s.validateParams(grouping); err != nil {
		s.respondError(w, r, err)
		return
	}

	c := core.CapLocationAggregate
	if grouping.byCampus() {
		c = core.CapCampusAggregate
	}
	d, err := s.dataset(c)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	records := d.Records
	if course != nil {
		records = core.SectionsFor(records, course.Subject, course.Num)
	}

	var groups []core.LocationAggregate
	by := "location"
	if grouping.byCampus() {
		by = "campus"
		groups = core.AggregateByCampus(records)
	} else {
		groups = core.AggregateByLocation(records)
	}

	s.service.Observe(query, len(groups))
	render.JSON(w, r, locationsResponse{
		Course:    course,
		By:        by,
		Locations: nonNil(groups),
		Notice:    core.NoticeIfEmpty(len(groups), query, "No sections with a location matched"),
	})
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	params := sectionParams{ClassNbr: pathParam(r, "classNbr")}
	if err := s.validateParams(params); err != nil {
		s.respondError(w, r, err)
		return
	}
	d, err := s.dataset(core.CapSectionView)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	rec, ok := core.LookupSection(d.Records, params.ClassNbr)
	if !ok {
		s.service.Observe(querySection, 0)
		s.respondError(w, r, fmt.Errorf("class %s: %w", params.ClassNbr, core.ErrSectionNotFound))
		return
	}
	s.service.Observe(querySection, 1)
	render.JSON(w, r, rec)
}

func (s *Server) handleMarkerCourses(w http.ResponseWriter, r *http.Request) {
	d, err := s.dataset(core.CapMarkerView)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	courses := core.MarkerCourses(d.Records)
	s.service.Observe(queryMarkerCourses, len(courses))
	render.JSON(w, r, markerCoursesResponse{
		Courses: nonNil(courses),
		Notice:  core.NoticeIfEmpty(len(courses), queryMarkerCourses, "No courses have DLC sections"),
	})
}

func (s *Server) handleMarkerCourse(w http.ResponseWriter, r *http.Request) {
	summary, err := s.markerSummary(courseParams{Subject: pathParam(r, "subject"), Num: pathParam(r, "num")})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// markerSummary validates params and builds the DLC view of one course.
func (s *Server) markerSummary(params courseParams) (core.CourseSummary, error) {
	if err := s.validateParams(params); err != nil {
		return core.CourseSummary{}, err
	}
	d, err := s.dataset(core.CapMarkerView)
	if err != nil {
		return core.CourseSummary{}, err
	}

	summary, ok := core.SummarizeCourse(d.Records, params.key())
	if !ok {
		s.service.Observe(queryMarkerCourse, 0)
		return core.CourseSummary{}, fmt.Errorf("%s: %w", params.key().Label(), core.ErrCourseNotFound)
	}
	s.service.Observe(queryMarkerCourse, len(summary.Breakdown)-1)
	return summary, nil
}

// handleOpenReport renders the open sections of ?subject=&num= as HTML.
func (s *Server) handleOpenReport(w http.ResponseWriter, r *http.Request) {
	params := courseParams{Subject: queryParam(r, "subject"), Num: queryParam(r, "num")}
	if err := s.validateParams(params); err != nil {
		s.respondError(w, r, err)
		return
	}
	d, err := s.dataset(core.CapOpenSections)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	sections := core.OpenSections(core.SectionsFor(d.Records, params.Subject, params.Num))
	s.service.Observe(queryOpenSections, len(sections))
	s.renderPage(w, r, templates.OpenReport(templates.OpenReportData{
		Course:   params.key(),
		Sections: sections,
		Notice: core.NoticeIfEmpty(len(sections), queryOpenSections,
			fmt.Sprintf("No open sections for %s", params.key().Label())),
	}))
}

// handleMarkerReport renders the DLC view of ?subject=&num= as HTML.
func (s *Server) handleMarkerReport(w http.ResponseWriter, r *http.Request) {
	summary, err := s.markerSummary(courseParams{Subject: queryParam(r, "subject"), Num: queryParam(r, "num")})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.renderPage(w, r, templates.MarkerReport(summary))
}

// renderPage writes a full HTML page.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, page templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "path", r.URL.Path, "error", err)
	}
}

// nonNil keeps empty results encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
