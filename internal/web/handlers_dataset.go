package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/enrollview/internal/core"
	"github.com/JonMunkholm/enrollview/internal/logging"
	"github.com/JonMunkholm/enrollview/internal/tableio"
	"github.com/JonMunkholm/enrollview/internal/web/templates"
)

// multipartOverhead is the allowance for multipart framing on top of the file.
const multipartOverhead = 1 << 20

// handleDashboard renders the landing page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := templates.DashboardData{Extensions: tableio.SupportedExtensions()}

	if d, err := s.service.Current(); err == nil {
		summary := d.Summary()
		data.Summary = &summary
		data.Subjects = core.Subjects(d.Records)
		if d.Require(core.CapMarkerView) == nil {
			data.MarkerCourses = core.MarkerCourses(d.Records)
		}
	}

	s.renderPage(w, r, templates.Dashboard(data))
}

// handleUpload ingests a multipart "file" and answers with the dataset summary.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	d, err := s.upload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, d.Summary())
}

// handleUploadForm is the browser form variant of handleUpload. It redirects
// back to the dashboard on success.
func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	if _, err := s.upload(w, r); err != nil {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// upload reads the multipart file and runs it through the service under the
// configured upload timeout.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) (*core.Dataset, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, fmt.Errorf("upload: %w (limit %d bytes)", tableio.ErrFileTooLarge, maxSize)
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, errNoFile
		}
		return nil, fmt.Errorf("read upload: %w", err)
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	defer file.Close()

	if header.Size > maxSize {
		return nil, fmt.Errorf("%s: %w (limit %d bytes)", header.Filename, tableio.ErrFileTooLarge, maxSize)
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
	defer cancel()

	logging.WithFields(ctx, "file", header.Filename, "size", header.Size).Info("upload received")
	return s.service.Upload(ctx, header.Filename, file)
}

// handleGetDataset returns the summary of the current dataset.
func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	d, err := s.service.Current()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, d.Summary())
}

// handleResetDataset drops the current dataset.
func (s *Server) handleResetDataset(w http.ResponseWriter, r *http.Request) {
	s.service.Reset()
	if s.metrics != nil {
		s.metrics.DatasetCleared()
	}
	logging.FromContext(r.Context()).Info("dataset reset")
	w.WriteHeader(http.StatusNoContent)
}

// handleExport streams the cleaned dataset as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	d, err := s.service.Current()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, core.ExportFileName))
	if err := core.WriteCSV(w, d); err != nil {
		// Headers are already sent.
		logging.FromContext(r.Context()).Error("csv export failed", "dataset_id", d.ID, "error", err)
	}
}
