package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/enrollview/internal/config"
	"github.com/JonMunkholm/enrollview/internal/core"
	"github.com/JonMunkholm/enrollview/internal/metrics"
	"github.com/JonMunkholm/enrollview/internal/tableio"
)

// scheduleCSV is a registrar export with one row per instructor.
const scheduleCSV = `SOC Class Nbr,Subject,Num,Section,Descr,Campus,Location,Begin Time,End Time,Tot Enrl,Enr Cpcty,Wait Tot,Wait Cap,Name
10001,ENGR,101,01,Intro to Engineering,MAIN,Main,09:00,09:50,25,30,0,10,"Smith, J"
10001,ENGR,101,01,Intro to Engineering,MAIN,Main,09:00,09:50,25,30,0,10,"Lee, K"
10002,ENGR,101,05V,Intro to Engineering,DLC,Online,,,40,50,2,5,"Smith, J"
10003,ENGR,20,01,Statics,MAIN,Main,10:00,10:50,30,30,4,5,"Park, S"
10004,ENGR,399,01,Engr Coop,MAIN,Main,,,1,99,0,0,Staff
,ENGR,101,02,Intro to Engineering,MAIN,Main,,,5,30,0,0,Ghost
10005,MATH,2010,V01,Calculus,DLC,North,,,TBD,35,,,NA
10006,MATH,210,01,Linear Algebra,NORTH,North,13:00,13:50,10,,0,5,"Diaz, M"
`

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, RequestTimeout: 5 * time.Second},
		Upload: config.UploadConfig{
			MaxFileSize:   1 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   time.Second,
			Timeout:       5 * time.Second,
		},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, m *metrics.Metrics) *Server {
	t.Helper()
	opts := []core.Option{
		core.WithUploadLimiter(core.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)),
	}
	if m != nil {
		opts = append(opts, core.WithObserver(m))
	}
	svc := core.NewService(tableio.NewParser(cfg.Upload.MaxFileSize), core.DefaultExcludedDescrs, opts...)
	return NewServer(svc, cfg, m)
}

func uploadRequest(t *testing.T, path, fileName, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	return serve(s, httptest.NewRequest(http.MethodGet, path, nil))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func loadSchedule(t *testing.T, s *Server) {
	t.Helper()
	rec := serve(s, uploadRequest(t, "/api/dataset", "fall.csv", scheduleCSV))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestUpload(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	rec := serve(s, uploadRequest(t, "/api/dataset", "fall.csv", scheduleCSV))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	summary := decode[core.DatasetSummary](t, rec)
	assert.Equal(t, "fall.csv", summary.FileName)
	assert.Equal(t, core.NormalizeReport{InputRows: 8, Excluded: 1, Unkeyed: 1, Merged: 1, Records: 5}, summary.Report)
	assert.Equal(t, 2, summary.Subjects)
	assert.Equal(t, core.ColName, summary.Columns[len(summary.Columns)-1])

	rec = get(s, "/api/dataset")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, summary.ID, decode[core.DatasetSummary](t, rec).ID)
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name     string
		req      func(t *testing.T) *http.Request
		maxSize  int64
		wantCode int
		wantErr  string
	}{
		{
			name: "unsupported type",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/dataset", "fall.pdf", scheduleCSV)
			},
			wantCode: http.StatusUnsupportedMediaType,
			wantErr:  "PRS001",
		},
		{
			name: "missing normalization columns",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/dataset", "fall.csv", "SOC Class Nbr,Subject\n1,ENGR\n")
			},
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "SCH001",
		},
		{
			name: "empty file",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/dataset", "fall.csv", "\n\n")
			},
			wantCode: http.StatusBadRequest,
			wantErr:  "FILE005",
		},
		{
			name: "file too large",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/dataset", "fall.csv", scheduleCSV)
			},
			maxSize:  64,
			wantCode: http.StatusRequestEntityTooLarge,
			wantErr:  "FILE001",
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/dataset", strings.NewReader(`{}`))
				req.Header.Set("Content-Type", "application/json")
				return req
			},
			wantCode: http.StatusBadRequest,
			wantErr:  "FILE004",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.maxSize > 0 {
				cfg.Upload.MaxFileSize = tt.maxSize
			}
			s := newTestServer(t, cfg, nil)

			rec := serve(s, tt.req(t))
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantErr, decode[ErrorResponse](t, rec).Code)

			// A failed upload never installs a dataset.
			assert.Equal(t, http.StatusConflict, get(s, "/api/dataset").Code)
		})
	}
}

func TestUpload_FailureKeepsPreviousDataset(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)
	loadSchedule(t, s)

	rec := serve(s, uploadRequest(t, "/api/dataset", "bad.csv", "Subject\nENGR\n"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = get(s, "/api/dataset")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fall.csv", decode[core.DatasetSummary](t, rec).FileName)
}

func TestQueries_NoDataset(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	for _, path := range []string{
		"/api/dataset",
		"/api/dataset/export",
		"/api/subjects",
		"/api/subjects/ENGR/courses/101/open",
		"/api/locations",
		"/api/sections/10001",
		"/api/dlc/courses",
	} {
		t.Run(path, func(t *testing.T) {
			rec := get(s, path)
			assert.Equal(t, http.StatusConflict, rec.Code)
			assert.Equal(t, "DS001", decode[ErrorResponse](t, rec).Code)
		})
	}
}

func TestHierarchicalQueries(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)
	loadSchedule(t, s)

	t.Run("subjects", func(t *testing.T) {
		rec := get(s, "/api/subjects")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"ENGR", "MATH"}, decode[subjectsResponse](t, rec).Subjects)
	})

	t.Run("courses in numeric order", func(t *testing.T) {
		rec := get(s, "/api/subjects/ENGR/courses")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"20", "101"}, decode[coursesResponse](t, rec).Courses)
	})

	t.Run("unknown subject is a notice", func(t *testing.T) {
		rec := get(s, "/api/subjects/HIST/courses")
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[coursesResponse](t, rec)
		assert.Empty(t, resp.Courses)
		require.NotNil(t, resp.Notice)
		assert.Equal(t, queryCourses, resp.Notice.Query)
	})

	t.Run("sections merge instructors", func(t *testing.T) {
		rec := get(s, "/api/subjects/ENGR/courses/101/sections")
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[sectionsResponse](t, rec)
		require.Len(t, resp.Sections, 2)
		assert.Equal(t, "Smith, J, Lee, K", resp.Sections[0].Instructors)
		assert.Nil(t, resp.Notice)
	})

	t.Run("open sections", func(t *testing.T) {
		rec := get(s, "/api/subjects/ENGR/courses/101/open")
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[sectionsResponse](t, rec)
		require.Len(t, resp.Sections, 2)
		assert.Equal(t, "10001", resp.Sections[0].ClassNbr)
		assert.Equal(t, "10002", resp.Sections[1].ClassNbr)
	})

	t.Run("full course has empty notice", func(t *testing.T) {
		rec := get(s, "/api/subjects/ENGR/courses/20/open")
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[sectionsResponse](t, rec)
		assert.Empty(t, resp.Sections)
		require.NotNil(t, resp.Notice)
		assert.Equal(t, "No open sections for ENGR 20", resp.Notice.Message)
	})

	t.Run("section lookup", func(t *testing.T) {
		rec := get(s, "/api/sections/10003")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Statics", decode[core.EnrollmentRecord](t, rec).Descr)
	})

	t.Run("section not found", func(t *testing.T) {
		rec := get(s, "/api/sections/99999")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "QRY001", decode[ErrorResponse](t, rec).Code)
	})
}

func TestHierarchicalQueries_NonASCII(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)
	csv := `SOC Class Nbr,Subject,Num,Section,Descr,Campus,Location,Begin Time,End Time,Tot Enrl,Enr Cpcty,Wait Tot,Wait Cap,Name
20001,ÉDU,100,01,Pédagogie,MTL,Montréal,09:00,09:50,12,20,0,5,"Côté, A"
20002,ÉDU,100,02,Pédagogie,QC,Québec,10:00,10:50,20,20,1,5,"Roy, B"
`
	rec := serve(s, uploadRequest(t, "/api/dataset", "automne.csv", csv))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = get(s, "/api/subjects")
	require.Equal(t, http.StatusOK, rec.Code)
	subjects := decode[subjectsResponse](t, rec).Subjects
	require.Equal(t, []string{"ÉDU"}, subjects)

	rec = get(s, "/api/subjects/"+url.PathEscape(subjects[0])+"/courses")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	courses := decode[coursesResponse](t, rec).Courses
	require.Equal(t, []string{"100"}, courses)

	rec = get(s, "/api/subjects/%C3%89DU/courses/100/sections")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[sectionsResponse](t, rec)
	require.Len(t, resp.Sections, 2)
	assert.Equal(t, "Côté, A", resp.Sections[0].Instructors)

	rec = get(s, "/api/subjects/%C3%89DU/courses/100/open")
	require.Equal(t, http.StatusOK, rec.Code)
	open := decode[sectionsResponse](t, rec).Sections
	require.Len(t, open, 1)
	assert.Equal(t, "20001", open[0].ClassNbr)
}

func TestPathParamValidation(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)
	loadSchedule(t, s)

	tests := []struct {
		name     string
		path     string
		wantCode int
	}{
		{name: "plain subject", path: "/api/subjects/ENGR/courses", wantCode: http.StatusOK},
		{name: "unknown non-ASCII subject", path: "/api/subjects/%C3%89DU/courses", wantCode: http.StatusOK},
		{name: "control character", path: "/api/subjects/%07ENGR/courses", wantCode: http.StatusBadRequest},
		{name: "too long", path: "/api/subjects/" + strings.Repeat("A", 129) + "/courses", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(s, tt.path)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode == http.StatusBadRequest {
				assert.Equal(t, "VAL001", decode[ErrorResponse](t, rec).Code)
			}
		})
	}
}

func TestLocationAggregates(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)
	loadSchedule(t, s)

	t.Run("by location", func(t *testing.T) {
		rec := get(s, "/api/locations")
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[locationsResponse](t, rec)
		assert.Equal(t, "location", resp.By)
		require.Len(t, resp.Locations, 3)
		assert.Equal(t, "Main", resp.Locations[0].Location)
		assert.Equal(t, 55.0, resp.Locations[0].TotEnrl.Total)
		assert.Equal(t, "Online", resp.Locations[1].Location)
		assert.Equal(t, "North", resp.Locations[2].Location)
		assert.Equal(t, 1, resp.Locations[2].TotEnrl.Count)
	})

	t.Run("by campus", func(t *testing.T) {
		rec := get(s, "/api/locations?by=campus")
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[locationsResponse](t, rec)
		assert.Equal(t, "campus", resp.By)
		require.Len(t, resp.Locations, 4)
		assert.Equal(t, "NORTH", resp.Locations[2].Campus)
		assert.Equal(t, "DLC", resp.Locations[3].Campus)
		assert.Equal(t, "North", resp.Locations[3].Location)
	})

	t.Run("one course", func(t *testing.T) {
		rec := get(s, "/api/subjects/ENGR/courses/101/locations")
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[locationsResponse](t, rec)
		require.NotNil(t, resp.Course)
		assert.Equal(t, "101", resp.Course.Num)
		require.Len(t, resp.Locations, 2)
		assert.Equal(t, "Online", resp.Locations[0].Location)
	})

	t.Run("invalid grouping", func(t *testing.T) {
		rec := get(s, "/api/locations?by=region")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decode[ErrorResponse](t, rec)
		assert.Equal(t, "VAL001", resp.Code)
		assert.Contains(t, resp.Message, "by")
	})
}

func TestMarkerQueries(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)
	loadSchedule(t, s)

	rec := get(s, "/api/dlc/courses")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []core.CourseKey{
		{Subject: "ENGR", Num: "101"},
		{Subject: "MATH", Num: "2010"},
	}, decode[markerCoursesResponse](t, rec).Courses)

	rec = get(s, "/api/dlc/courses/ENGR/101")
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[core.CourseSummary](t, rec)
	assert.Equal(t, "ENGR 101", summary.Label)
	assert.Equal(t, []core.SeatAvailability{{Location: "Online", Seats: 10}}, summary.Seats)
	require.Len(t, summary.Breakdown, 2)
	assert.True(t, summary.Breakdown[1].Total)

	rec = get(s, "/api/dlc/courses/ENGR/20")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "QRY002", decode[ErrorResponse](t, rec).Code)
}

func TestQueries_MissingCapabilityColumns(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)
	rec := serve(s, uploadRequest(t, "/api/dataset", "thin.csv", "SOC Class Nbr,Name,Subject,Num\n1,A,ENGR,101\n"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = get(s, "/api/subjects/ENGR/courses/101/open")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "SCH001", resp.Code)
	assert.Contains(t, resp.Message, "Tot Enrl")

	rec = get(s, "/api/locations?by=campus")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Message, "Campus")
}

func TestExport(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)
	loadSchedule(t, s)

	rec := get(s, "/api/dataset/export")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="cleaned_schedule.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasSuffix(lines[0], ",Wait Cap,Name"))
	assert.True(t, strings.HasSuffix(lines[1], `"Smith, J, Lee, K"`))
}

func TestResetDataset(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)
	loadSchedule(t, s)

	rec := serve(s, httptest.NewRequest(http.MethodDelete, "/api/dataset", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusConflict, get(s, "/api/dataset").Code)
}

func TestUploadRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 100, UploadLimit: 1}
	s := newTestServer(t, cfg, nil)

	loadSchedule(t, s)

	rec := serve(s, uploadRequest(t, "/api/dataset", "fall.csv", scheduleCSV))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Queries use the general budget.
	assert.Equal(t, http.StatusOK, get(s, "/api/subjects").Code)
}

func TestPages(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	rec := get(s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No schedule loaded yet.")
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))

	rec = get(s, "/open?subject=ENGR&num=101")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Code: DS001")

	rec = serve(s, uploadRequest(t, "/upload", "fall.csv", scheduleCSV))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = get(s, "/")
	assert.Contains(t, rec.Body.String(), "fall.csv")
	assert.Contains(t, rec.Body.String(), "ENGR 101")

	rec = get(s, "/open?subject=ENGR&num=101")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Open sections: ENGR 101")
	assert.Contains(t, rec.Body.String(), "Smith, J, Lee, K")

	rec = get(s, "/dlc?subject=MATH&num=2010")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOTAL")

	rec = get(s, "/open?subject=ENGR")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VAL001")
}

func TestHTMXErrorPartial(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/open?subject=ENGR&num=101", nil)
	req.Header.Set("HX-Request", "true")
	rec := serve(s, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), `<div class="alert alert-error"`))
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	s := newTestServer(t, testConfig(), m)
	loadSchedule(t, s)
	get(s, "/api/subjects")

	rec := get(s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `enrollview_uploads_total{result="ok"} 1`)
	assert.Contains(t, body, `enrollview_queries_total{query="subjects"} 1`)
	assert.Contains(t, body, `route="/api/subjects"`)
}
