package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/docmap/internal/billing"
)

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if s.billing == nil {
		jsonError(w, "billing is not configured", "billing_disabled", http.StatusServiceUnavailable)
		return
	}
	sess := sessionFrom(r.Context())
	if sess.Paid() {
		writeJSON(w, http.StatusOK, map[string]any{"paid": true})
		return
	}

	co, err := s.billing.CreateCheckout(r.Context(), sess.ID, sess.Email)
	if err != nil {
		s.log.Error("create checkout failed", "session_id", sess.ID, "error", err)
		jsonError(w, err.Error(), "billing_unavailable", http.StatusBadGateway)
		return
	}
	sess.SetCheckout(co.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"checkout_id": co.ID,
		"url":         co.URL,
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if s.billing == nil {
		jsonError(w, "billing is not configured", "billing_disabled", http.StatusServiceUnavailable)
		return
	}
	sess := sessionFrom(r.Context())
	checkoutID := r.URL.Query().Get("checkout_id")
	if checkoutID == "" {
		checkoutID = sess.Checkout()
	}
	if err := s.validate.Var(checkoutID, "required,max=255,printascii"); err != nil {
		jsonError(w, "checkout_id is required", "bad_request", http.StatusBadRequest)
		return
	}

	v, err := s.billing.VerifySession(r.Context(), checkoutID)
	switch {
	case errors.Is(err, billing.ErrNotFound):
		jsonError(w, "checkout not found", "not_found", http.StatusNotFound)
		return
	case err != nil:
		s.log.Error("verify checkout failed", "session_id", sess.ID, "error", err)
		jsonError(w, err.Error(), "billing_unavailable", http.StatusBadGateway)
		return
	}
	if v.ClientReferenceID != sess.ID {
		jsonError(w, "checkout belongs to another session", "forbidden", http.StatusForbidden)
		return
	}
	if v.Paid() {
		sess.MarkPaid()
	}
	writeJSON(w, http.StatusOK, map[string]any{"paid": sess.Paid()})
}
