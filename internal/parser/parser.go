// Package parser turns uploaded files into something a generator can
// summarize: a text outline for text-bearing formats, or an inline
// attachment for images and scanned PDFs.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docmap/internal/doctree"
	"github.com/dgallion1/docmap/internal/extract"
)

var (
	ErrUnsupported = errors.New("unsupported file type")
	ErrNoText      = errors.New("document contains no readable text")
)

// Parser converts raw document bytes into an outline.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Outline, error)
}

// imageTypes maps image extensions to the media type sent to generators.
var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".html": true,
	".htm":  true,
	".pdf":  true,
	".docx": true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
}

// ForFile returns the text parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

type Options struct {
	FallbackPdftotext bool
}

// Prepared is an upload ready for summarization. Exactly one of Outline and
// Attachment is set.
type Prepared struct {
	Title      string
	Outline    *doctree.Outline
	Attachment *extract.Attachment
}

// Prepare parses data according to filename. Images are passed through as
// attachments; PDFs without a text layer are too.
func Prepare(data []byte, filename string, opts Options) (*Prepared, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	title := baseTitle(filename)

	if mediaType, ok := imageTypes[ext]; ok {
		if sniffed := http.DetectContentType(data); !strings.HasPrefix(sniffed, "image/") {
			return nil, fmt.Errorf("%w: %s content is %s", ErrUnsupported, ext, sniffed)
		}
		return &Prepared{Title: title, Attachment: &extract.Attachment{MediaType: mediaType, Data: data}}, nil
	}

	p, err := ForFile(filename, opts)
	if err != nil {
		return nil, err
	}
	outline, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, err
	}
	if outline.Title != "" {
		title = outline.Title
	}

	if !outline.HasText() {
		if ext == ".pdf" {
			return &Prepared{Title: title, Attachment: &extract.Attachment{MediaType: "application/pdf", Data: data}}, nil
		}
		return nil, ErrNoText
	}
	return &Prepared{Title: title, Outline: outline}, nil
}

// baseTitle strips the extension from a filename.
func baseTitle(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}
