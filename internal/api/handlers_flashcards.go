package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docmap/internal/export"
	"github.com/dgallion1/docmap/internal/flashcard"
	"github.com/dgallion1/docmap/internal/pipeline"
	"github.com/dgallion1/docmap/internal/session"
)

func (s *Server) handleFlashcardsGenerate(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	_, md, err := sess.Summary()
	if err != nil {
		writeError(w, err)
		return
	}
	if err := sess.Begin(session.ActionFlashcards); err != nil {
		writeError(w, err)
		return
	}
	s.submit(w, pipeline.NewFlashcardJob(sess, md))
}

func (s *Server) handleGetFlashcards(w http.ResponseWriter, r *http.Request) {
	s.deckOp(w, r, nil)
}

func (s *Server) handleFlashcardOp(w http.ResponseWriter, r *http.Request) {
	op := chi.URLParam(r, "op")
	var apply func(d *flashcard.Deck)
	switch op {
	case "next":
		apply = (*flashcard.Deck).Next
	case "prev":
		apply = (*flashcard.Deck).Prev
	case "flip":
		apply = (*flashcard.Deck).Flip
	default:
		jsonError(w, fmt.Sprintf("unknown flashcard operation %q", op), "not_found", http.StatusNotFound)
		return
	}
	s.deckOp(w, r, apply)
}

func (s *Server) deckOp(w http.ResponseWriter, r *http.Request, apply func(d *flashcard.Deck)) {
	var state flashcard.State
	err := sessionFrom(r.Context()).WithDeck(func(d *flashcard.Deck) error {
		if apply != nil {
			apply(d)
		}
		state = d.State()
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleExportDeckPDF(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	var cards []flashcard.Card
	if err := sess.WithDeck(func(d *flashcard.Deck) error {
		cards = d.Shuffled()
		return nil
	}); err != nil {
		writeError(w, err)
		return
	}

	title, _, err := sess.Summary()
	if err != nil || title == "" {
		title = "Flashcards"
	}
	var buf bytes.Buffer
	if err := export.DeckPDF(&buf, title, cards); err != nil {
		s.log.Error("deck export failed", "error", err)
		writeError(w, err)
		return
	}
	writeAttachment(w, export.Filename(title+" flashcards", "pdf"), "application/pdf", buf.Bytes())
}
