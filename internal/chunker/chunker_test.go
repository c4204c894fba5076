package chunker

import (
	"strings"
	"testing"

	"github.com/dgallion1/docmap/internal/doctree"
)

func outline(sections ...*doctree.Section) *doctree.Outline {
	return &doctree.Outline{Title: "t", Sections: sections}
}

func TestChunk_SmallSectionsPackTogether(t *testing.T) {
	o := outline(
		&doctree.Section{Heading: "Diet", Text: "Cats eat meat.", Page: 1},
		&doctree.Section{Heading: "Sleep", Text: "Cats sleep a lot.", Page: 2},
	)
	chunks := Chunk(o, Config{ChunkSize: 1000})

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	want := "# Diet\n\nCats eat meat.\n\n# Sleep\n\nCats sleep a lot."
	if chunks[0].Text != want {
		t.Errorf("expected %q, got %q", want, chunks[0].Text)
	}
	if chunks[0].PageStart != 1 || chunks[0].PageEnd != 2 {
		t.Errorf("expected pages 1-2, got %d-%d", chunks[0].PageStart, chunks[0].PageEnd)
	}
	if NeedsSplit(o, Config{ChunkSize: 1000}) {
		t.Error("small outline should not need splitting")
	}
}

func TestChunk_PacksUpToLimit(t *testing.T) {
	para := strings.Repeat("word ", 30) // ~39 tokens
	var secs []*doctree.Section
	for i := 0; i < 10; i++ {
		secs = append(secs, &doctree.Section{Text: para})
	}
	o := outline(secs...)
	chunks := Chunk(o, Config{ChunkSize: 100})

	if len(chunks) != 5 {
		t.Fatalf("expected 5 chunks of two sections, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if got := EstimateTokens(c.Text); got > 100 {
			t.Errorf("chunk %d has %d tokens", i, got)
		}
	}
	if !NeedsSplit(o, Config{ChunkSize: 100}) {
		t.Error("expected outline to need splitting")
	}
}

func TestChunk_OversizedSectionSplits(t *testing.T) {
	large := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 300)
	o := outline(&doctree.Section{
		Heading:  "Animals",
		Sections: []*doctree.Section{{Heading: "Foxes", Text: large}},
	})
	chunks := Chunk(o, Config{ChunkSize: 500, ChunkOverlap: 50})

	if len(chunks) < 5 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "# Animals" {
		t.Errorf("expected heading-only first chunk, got %q", chunks[0].Text)
	}
	for _, c := range chunks[1:] {
		if len(c.Breadcrumb) != 2 || c.Breadcrumb[0] != "Animals" || c.Breadcrumb[1] != "Foxes" {
			t.Errorf("unexpected breadcrumb %v", c.Breadcrumb)
		}
		if got := EstimateTokens(c.Text); got > 500 {
			t.Errorf("chunk has %d tokens, want <= 500", got)
		}
	}
}

func TestChunk_EmptyOutline(t *testing.T) {
	if chunks := Chunk(outline(), DefaultConfig()); len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("One. Two! Three? Four")
	want := []string{"One.", "Two!", "Three?", "Four"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestAccumulateOverlap(t *testing.T) {
	pieces := []string{strings.Repeat("a ", 30), strings.Repeat("b ", 30), strings.Repeat("c ", 30)}
	got := accumulate(pieces, " ", 50, 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(got))
	}
	if !strings.HasPrefix(got[1], "a ") {
		t.Errorf("expected overlap from previous group, got %q", got[1][:10])
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"one two three", 3},
		{strings.Repeat("w ", 100), 133},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
