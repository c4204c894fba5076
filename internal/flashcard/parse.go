package flashcard

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/dgallion1/docmap/internal/extract"
)

// Parse recovers question/answer pairs from generator output. Elements that
// are not objects, or whose question or answer is blank, are dropped.
func Parse(raw string) ([]Card, error) {
	msg, err := extract.RecoverArray(raw)
	if err != nil {
		return nil, err
	}
	var items []any
	if err := json.Unmarshal(msg, &items); err != nil {
		return nil, &extract.MalformedGenerationError{Raw: string(msg), Reason: err.Error()}
	}

	var cards []Card
	for _, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			continue
		}
		c := Card{
			Question: field(obj, "question", "front", "q"),
			Answer:   field(obj, "answer", "back", "a"),
		}
		if c.Question == "" || c.Answer == "" {
			continue
		}
		cards = append(cards, c)
	}
	if len(cards) == 0 {
		return nil, ErrEmptyDeck
	}
	return cards, nil
}

func field(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		var s string
		switch v := obj[k].(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			s = strconv.FormatBool(v)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}
