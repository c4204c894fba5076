package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docmap/internal/export"
	"github.com/dgallion1/docmap/internal/mindmap"
	"github.com/dgallion1/docmap/internal/pipeline"
	"github.com/dgallion1/docmap/internal/session"
	"github.com/dgallion1/docmap/internal/treeview"
)

type viewResponse struct {
	Title    string            `json:"title"`
	Document *mindmap.Document `json:"document"`
	State    treeview.State    `json:"state"`
	Rows     []treeview.Row    `json:"rows"`
	Changed  *bool             `json:"changed,omitempty"`
}

func newViewResponse(v *treeview.View) viewResponse {
	return viewResponse{
		Title:    v.Document().Title,
		Document: v.Document(),
		State:    v.Snapshot(),
		Rows:     v.Rows(),
	}
}

func (s *Server) handleMindmapGenerate(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	_, md, err := sess.Summary()
	if err != nil {
		writeError(w, err)
		return
	}

	levels := s.cfg.MindmapLevels
	if !sess.Paid() && levels > freeMindmapLevels {
		levels = freeMindmapLevels
	}
	if err := sess.Begin(session.ActionMindmap); err != nil {
		writeError(w, err)
		return
	}
	s.submit(w, pipeline.NewMindmapJob(sess, md, levels))
}

func (s *Server) handleGetMindmap(w http.ResponseWriter, r *http.Request) {
	var resp viewResponse
	err := sessionFrom(r.Context()).WithView(func(v *treeview.View, _ *treeview.Gestures) error {
		resp = newViewResponse(v)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type toggleRequest struct {
	ID string `json:"id" validate:"required,max=256"`
}

type zoomRequest struct {
	Factor float64 `json:"factor" validate:"required,gt=0,lte=100"`
}

type panRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type orientationRequest struct {
	Orientation string `json:"orientation" validate:"required,oneof=left-to-right top-down"`
}

func (s *Server) handleViewOp(w http.ResponseWriter, r *http.Request) {
	op := chi.URLParam(r, "op")

	var apply func(v *treeview.View) *bool
	switch op {
	case "toggle":
		var req toggleRequest
		if !s.decodeJSON(w, r, &req) {
			return
		}
		apply = func(v *treeview.View) *bool {
			changed := v.Toggle(req.ID)
			return &changed
		}
	case "zoom":
		var req zoomRequest
		if !s.decodeJSON(w, r, &req) {
			return
		}
		apply = func(v *treeview.View) *bool { v.Zoom(req.Factor); return nil }
	case "pan":
		var req panRequest
		if !s.decodeJSON(w, r, &req) {
			return
		}
		apply = func(v *treeview.View) *bool { v.Pan(req.DX, req.DY); return nil }
	case "orientation":
		var req orientationRequest
		if !s.decodeJSON(w, r, &req) {
			return
		}
		o, err := treeview.ParseOrientation(req.Orientation)
		if err != nil {
			jsonError(w, err.Error(), "bad_request", http.StatusBadRequest)
			return
		}
		apply = func(v *treeview.View) *bool { v.SetOrientation(o); return nil }
	case "center":
		apply = func(v *treeview.View) *bool { v.Center(); return nil }
	case "expand-all":
		apply = func(v *treeview.View) *bool { v.ExpandAll(); return nil }
	case "collapse-all":
		apply = func(v *treeview.View) *bool { v.CollapseAll(); return nil }
	default:
		jsonError(w, fmt.Sprintf("unknown view operation %q", op), "not_found", http.StatusNotFound)
		return
	}

	var resp viewResponse
	err := sessionFrom(r.Context()).WithView(func(v *treeview.View, _ *treeview.Gestures) error {
		changed := apply(v)
		resp = newViewResponse(v)
		resp.Changed = changed
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type gesturesRequest struct {
	Events []treeview.Event `json:"events" validate:"required,min=1,max=500,dive"`
}

func (s *Server) handleGestures(w http.ResponseWriter, r *http.Request) {
	var req gesturesRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	var (
		resp     viewResponse
		applyErr error
	)
	err := sessionFrom(r.Context()).WithView(func(v *treeview.View, g *treeview.Gestures) error {
		applyErr = g.Apply(req.Events)
		resp = newViewResponse(v)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if applyErr != nil {
		jsonError(w, applyErr.Error(), "bad_request", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// viewSnapshot copies what an export needs so rendering happens outside the
// session lock. Documents are immutable.
func viewSnapshot(sess *session.Session) (*mindmap.Document, treeview.State, error) {
	var (
		doc   *mindmap.Document
		state treeview.State
	)
	err := sess.WithView(func(v *treeview.View, _ *treeview.Gestures) error {
		doc = v.Document()
		state = v.Snapshot()
		return nil
	})
	return doc, state, err
}

func (s *Server) handleExportHTML(w http.ResponseWriter, r *http.Request) {
	s.exportView(w, r, "html", "text/html; charset=utf-8", export.HTML)
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	s.exportView(w, r, "pdf", "application/pdf", export.PDF)
}

func (s *Server) exportView(w http.ResponseWriter, r *http.Request, ext, contentType string,
	render func(io.Writer, *mindmap.Document, treeview.State) error) {
	doc, state, err := viewSnapshot(sessionFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := render(&buf, doc, state); err != nil {
		s.log.Error("export failed", "format", ext, "error", err)
		jsonError(w, "export failed", "internal", http.StatusInternalServerError)
		return
	}
	writeAttachment(w, export.Filename(doc.Title, ext), contentType, buf.Bytes())
}

func writeAttachment(w http.ResponseWriter, filename, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(body)
}
