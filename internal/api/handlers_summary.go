package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docmap/internal/export"
	"github.com/dgallion1/docmap/internal/parser"
	"github.com/dgallion1/docmap/internal/pipeline"
	"github.com/dgallion1/docmap/internal/session"
)

func (s *Server) handleSummaryUpload(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), "bad_request", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), "bad_request", http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), "unsupported_file", http.StatusUnsupportedMediaType)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", "internal", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), "too_large", http.StatusRequestEntityTooLarge)
		return
	}
	if len(data) == 0 {
		jsonError(w, "file is empty", "bad_request", http.StatusBadRequest)
		return
	}

	if err := sess.Begin(session.ActionSummary); err != nil {
		writeError(w, err)
		return
	}
	s.submit(w, pipeline.NewSummaryJob(sess, filename, data))
}

// submit queues job and answers 202 with its poll URL.
func (s *Server) submit(w http.ResponseWriter, job *pipeline.Job) {
	if err := s.orchestrator.Submit(job); err != nil {
		s.log.Warn("job rejected", "job_id", job.ID, "error", err)
		writeError(w, err)
		return
	}
	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   snap.ID,
		"kind":     snap.Kind,
		"status":   snap.Status,
		"poll_url": "/api/jobs/" + snap.ID,
	})
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	title, md, err := sessionFrom(r.Context()).Summary()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"title": title, "markdown": md})
}

func (s *Server) handleSummaryHTML(w http.ResponseWriter, r *http.Request) {
	title, md, err := sessionFrom(r.Context()).Summary()
	if err != nil {
		writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := export.SummaryHTML(&buf, title, md); err != nil {
		s.log.Error("summary render failed", "error", err)
		jsonError(w, "could not render summary", "internal", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
