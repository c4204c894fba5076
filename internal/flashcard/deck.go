// Package flashcard implements a shuffled question/answer deck with a
// two-sided flip and wrap-around navigation. A Deck is not safe for
// concurrent use.
package flashcard

import (
	"errors"
	"math/rand/v2"
)

// ErrEmptyDeck is returned when a deck would have no cards.
var ErrEmptyDeck = errors.New("flashcard: no cards to study")

type Card struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type Deck struct {
	cards   []Card
	order   []int
	cursor  int
	showing bool
}

// New shuffles cards once into a fixed presentation order. A nil src uses a
// randomly seeded generator.
func New(cards []Card, src rand.Source) (*Deck, error) {
	if len(cards) == 0 {
		return nil, ErrEmptyDeck
	}
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	r := rand.New(src)

	d := &Deck{
		cards: append([]Card(nil), cards...),
		order: make([]int, len(cards)),
	}
	for i := range d.order {
		d.order[i] = i
	}
	for i := len(d.order) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		d.order[i], d.order[j] = d.order[j], d.order[i]
	}
	return d, nil
}

func (d *Deck) Len() int            { return len(d.cards) }
func (d *Deck) Cursor() int         { return d.cursor }
func (d *Deck) ShowingAnswer() bool { return d.showing }

// Current returns the card under the cursor.
func (d *Deck) Current() Card {
	return d.cards[d.order[d.cursor]]
}

func (d *Deck) Next() {
	d.cursor = (d.cursor + 1) % len(d.order)
	d.showing = false
}

func (d *Deck) Prev() {
	d.cursor = (d.cursor - 1 + len(d.order)) % len(d.order)
	d.showing = false
}

func (d *Deck) Flip() {
	d.showing = !d.showing
}

// Cards returns the cards in generation order.
func (d *Deck) Cards() []Card {
	return append([]Card(nil), d.cards...)
}

// Shuffled returns the cards in presentation order.
func (d *Deck) Shuffled() []Card {
	out := make([]Card, len(d.order))
	for i, idx := range d.order {
		out[i] = d.cards[idx]
	}
	return out
}

// State is what a client needs to draw the current card. Answer is only
// set while the answer side is showing.
type State struct {
	Index         int    `json:"index"`
	Total         int    `json:"total"`
	Question      string `json:"question"`
	Answer        string `json:"answer,omitempty"`
	ShowingAnswer bool   `json:"showing_answer"`
}

func (d *Deck) State() State {
	c := d.Current()
	s := State{
		Index:         d.cursor,
		Total:         len(d.cards),
		Question:      c.Question,
		ShowingAnswer: d.showing,
	}
	if d.showing {
		s.Answer = c.Answer
	}
	return s
}
