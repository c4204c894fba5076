package pipeline

import (
	"context"
	"errors"
	"net/http"

	"github.com/dgallion1/docmap/internal/extract"
	"github.com/dgallion1/docmap/internal/flashcard"
	"github.com/dgallion1/docmap/internal/mindmap"
	"github.com/dgallion1/docmap/internal/parser"
	"github.com/dgallion1/docmap/internal/session"
)

// ErrorInfo is the user-facing form of a failure.
type ErrorInfo struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	Status    int    `json:"-"`
}

// Classify maps err to the code, message and HTTP status shown to users.
func Classify(err error) ErrorInfo {
	var (
		malformedErr   *extract.MalformedGenerationError
		validationErr  *mindmap.ValidationError
		unavailableErr *extract.GeneratorUnavailableError
	)
	switch {
	case errors.As(err, &malformedErr):
		return ErrorInfo{
			Code:      "malformed_generation",
			Message:   "The generator returned output that could not be read. Try again.",
			Retryable: true,
			Status:    http.StatusBadGateway,
		}
	case errors.As(err, &validationErr):
		return ErrorInfo{
			Code:      "invalid_generation",
			Message:   "The generated mind map was not usable (" + validationErr.Reason + "). Try again.",
			Retryable: true,
			Status:    http.StatusBadGateway,
		}
	case errors.Is(err, flashcard.ErrEmptyDeck):
		return ErrorInfo{
			Code:    "empty_deck",
			Message: "No flashcards could be made from this summary.",
			Status:  http.StatusUnprocessableEntity,
		}
	case errors.As(err, &unavailableErr):
		return ErrorInfo{
			Code:    "generator_unavailable",
			Message: unavailableErr.Message,
			Status:  http.StatusServiceUnavailable,
		}
	case errors.Is(err, ErrQueueFull):
		return ErrorInfo{Code: "queue_full", Message: "The server is busy. Try again shortly.", Retryable: true, Status: http.StatusServiceUnavailable}
	case errors.Is(err, parser.ErrUnsupported):
		return ErrorInfo{Code: "unsupported_file", Message: err.Error(), Status: http.StatusUnsupportedMediaType}
	case errors.Is(err, parser.ErrNoText):
		return ErrorInfo{Code: "no_text", Message: "The document contains no readable text.", Status: http.StatusUnprocessableEntity}
	case errors.Is(err, session.ErrBusy):
		return ErrorInfo{Code: "in_progress", Message: err.Error(), Status: http.StatusConflict}
	case errors.Is(err, session.ErrClosed), errors.Is(err, session.ErrNotFound):
		return ErrorInfo{Code: "session_closed", Message: err.Error(), Status: http.StatusGone}
	case errors.Is(err, session.ErrNoSummary), errors.Is(err, session.ErrNoDocument), errors.Is(err, session.ErrNoDeck):
		return ErrorInfo{Code: "not_ready", Message: err.Error(), Status: http.StatusConflict}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorInfo{Code: "canceled", Message: "The request was interrupted.", Retryable: true, Status: http.StatusServiceUnavailable}
	default:
		return ErrorInfo{Code: "internal", Message: "internal error", Status: http.StatusInternalServerError}
	}
}
