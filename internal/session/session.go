// Package session holds per-user working state: the current summary, mind
// map with its view, and flashcard deck, plus which generation actions are
// in flight. Sessions live only in memory.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/dgallion1/docmap/internal/flashcard"
	"github.com/dgallion1/docmap/internal/mindmap"
	"github.com/dgallion1/docmap/internal/treeview"
)

var (
	ErrNotFound   = errors.New("session: not found")
	ErrClosed     = errors.New("session: closed")
	ErrBusy       = errors.New("session: action already in progress")
	ErrNoSummary  = errors.New("session: no summary yet")
	ErrNoDocument = errors.New("session: no mind map yet")
	ErrNoDeck     = errors.New("session: no flashcards yet")
)

// Action is a generation step that may run at most once at a time per
// session.
type Action string

const (
	ActionSummary    Action = "summary"
	ActionMindmap    Action = "mindmap"
	ActionFlashcards Action = "flashcards"
)

type Session struct {
	mu sync.Mutex

	ID        string
	Email     string
	CreatedAt time.Time
	lastSeen  time.Time

	closed   bool
	paid     bool
	inFlight map[Action]bool

	title    string
	summary  string
	srcHash  string
	doc      *mindmap.Document
	view     *treeview.View
	gestures *treeview.Gestures
	deck     *flashcard.Deck
	checkout string
}

func newSession(id, email string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Email:     email,
		CreatedAt: now,
		lastSeen:  now,
		inFlight:  make(map[Action]bool),
	}
}

// Begin marks a as running. It fails with ErrBusy if a is already running.
func (s *Session) Begin(a Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.inFlight[a] {
		return ErrBusy
	}
	s.inFlight[a] = true
	return nil
}

// End clears the in-flight mark set by Begin.
func (s *Session) End(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, a)
}

func (s *Session) InFlight(a Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight[a]
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) Paid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paid
}

func (s *Session) MarkPaid() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paid = true
}

// SetCheckout remembers the pending payment session id.
func (s *Session) SetCheckout(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkout = id
}

func (s *Session) Checkout() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkout
}

// SetSummary replaces the current summary. sourceHash identifies the
// uploaded content it was made from. Results arriving after Teardown are
// rejected with ErrClosed.
func (s *Session) SetSummary(title, markdown, sourceHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.title = title
	s.summary = markdown
	s.srcHash = sourceHash
	return nil
}

// SummaryHash returns the source hash passed to the last SetSummary.
func (s *Session) SummaryHash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.srcHash
}

func (s *Session) Summary() (title, markdown string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary == "" {
		return "", "", ErrNoSummary
	}
	return s.title, s.summary, nil
}

// SetDocument installs a new mind map with a fresh view. The previous
// view's orientation carries over.
func (s *Session) SetDocument(doc *mindmap.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	o := treeview.LeftToRight
	if s.view != nil {
		o = s.view.Orientation()
	}
	s.doc = doc
	s.view = treeview.New(doc, o)
	s.gestures = treeview.NewGestures(s.view)
	return nil
}

// WithView runs fn with exclusive access to the mind map view.
func (s *Session) WithView(fn func(v *treeview.View, g *treeview.Gestures) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == nil {
		return ErrNoDocument
	}
	return fn(s.view, s.gestures)
}

func (s *Session) SetDeck(d *flashcard.Deck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.deck = d
	return nil
}

// WithDeck runs fn with exclusive access to the flashcard deck.
func (s *Session) WithDeck(fn func(d *flashcard.Deck) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deck == nil {
		return ErrNoDeck
	}
	return fn(s.deck)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
