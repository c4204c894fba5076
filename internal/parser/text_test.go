package parser

import (
	"strings"
	"testing"
)

func TestTextParser_ParagraphsJoined(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\n\n\nSecond paragraph.\n   \nThird paragraph."
	p := &TextParser{}
	outline, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outline.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", outline.Title)
	}
	if len(outline.Sections) != 1 {
		t.Fatalf("expected 1 untitled section, got %d", len(outline.Sections))
	}
	want := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	if got := outline.Sections[0].Text; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	outline, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outline.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", outline.Title)
	}
	if outline.HasText() {
		t.Errorf("expected no text for empty input")
	}
}
