package parser

import (
	"errors"
	"strings"
	"testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestPrepare_TextFormats(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
		contains string
	}{
		{"text", "notes.txt", "Cats sleep a lot.", "Cats sleep a lot."},
		{"markdown", "notes.md", "# Cats\n\nThey purr.", "# Cats\n\nThey purr."},
		{"csv", "pets.csv", "name,legs\ncat,4\n", "name: cat, legs: 4"},
		{"html", "page.htm", "<p>Hello</p>", "Hello"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Prepare([]byte(tc.data), tc.filename, Options{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Attachment != nil || p.Outline == nil {
				t.Fatalf("expected outline only, got %+v", p)
			}
			if got := p.Outline.PlainText(); !strings.Contains(got, tc.contains) {
				t.Errorf("expected %q in %q", tc.contains, got)
			}
		})
	}
}

func TestPrepare_Image(t *testing.T) {
	p, err := Prepare(pngHeader, "Photo.PNG", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Attachment == nil || p.Attachment.MediaType != "image/png" {
		t.Fatalf("expected png attachment, got %+v", p)
	}
	if p.Title != "Photo" {
		t.Errorf("expected title %q, got %q", "Photo", p.Title)
	}
}

func TestPrepare_ImageContentMismatch(t *testing.T) {
	_, err := Prepare([]byte("not really a jpeg"), "x.jpg", Options{})
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestPrepare_Errors(t *testing.T) {
	if _, err := Prepare([]byte("x"), "archive.zip", Options{}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
	if _, err := Prepare([]byte("\n\n  \n"), "blank.txt", Options{}); !errors.Is(err, ErrNoText) {
		t.Errorf("expected ErrNoText, got %v", err)
	}
}

func TestIsSupportedExtension(t *testing.T) {
	for name, want := range map[string]bool{
		"a.PDF": true, "b.docx": true, "c.webp": true, "d.exe": false, "noext": false,
	} {
		if got := IsSupportedExtension(name); got != want {
			t.Errorf("IsSupportedExtension(%q) = %v, want %v", name, got, want)
		}
	}
}
