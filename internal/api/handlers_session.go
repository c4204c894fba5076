package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/docmap/internal/session"
)

type initRequest struct {
	Email string `json:"email" validate:"omitempty,email,max=254"`
}

func (s *Server) handleSessionInit(w http.ResponseWriter, r *http.Request) {
	var req initRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	sess, token, err := s.sessions.Init(req.Email)
	if err != nil {
		s.log.Error("session init failed", "error", err)
		jsonError(w, "could not start session", "internal", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": sess.ID,
		"token":      token,
	})
}

func (s *Server) handleSessionTeardown(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := s.sessions.Teardown(sess.ID); err != nil && !errors.Is(err, session.ErrNotFound) {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
