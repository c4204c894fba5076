package extract

import (
	"context"
	"time"
)

// Attachment is inline binary content sent alongside a prompt, e.g. a page
// image or a scanned PDF.
type Attachment struct {
	MediaType string
	Data      []byte
}

// JSONShape is the top-level JSON value a prompt asks for.
type JSONShape string

const (
	JSONNone   JSONShape = ""
	JSONObject JSONShape = "object"
	JSONArray  JSONShape = "array"
)

// Request is one call to a content generator.
type Request struct {
	Prompt      string
	Attachments []Attachment
	MaxTokens   int
	// JSON asks providers that support it for a JSON-only response of this
	// shape. Output still goes through RecoverObject/RecoverArray.
	JSON JSONShape
}

// Generator turns a prompt (plus optional attachments) into raw text.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
	Model() string
}

// Timed wraps a Generator and records call latency.
type Timed struct {
	Generator
	Stats *LLMStats
}

// NewTimed wraps g so every call is recorded into a fresh LLMStats.
func NewTimed(g Generator, window time.Duration) *Timed {
	return &Timed{Generator: g, Stats: NewLLMStats(window)}
}

func (t *Timed) Generate(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := t.Generator.Generate(ctx, req)
	t.Stats.Record(time.Since(start).Milliseconds(), err != nil)
	return out, err
}
