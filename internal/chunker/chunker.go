// Package chunker splits a document outline into pieces small enough for
// one summarization call each, keeping heading context with every piece.
package chunker

import (
	"strings"

	"github.com/dgallion1/docmap/internal/doctree"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Overlap carried into the next chunk when text is split.
}

func DefaultConfig() Config {
	return Config{ChunkSize: 6000, ChunkOverlap: 200}
}

// NeedsSplit reports whether the whole outline exceeds one chunk.
func NeedsSplit(o *doctree.Outline, cfg Config) bool {
	cfg = withDefaults(cfg)
	return EstimateTokens(o.PlainText()) > cfg.ChunkSize
}

// Chunk packs consecutive sections into chunks of at most ChunkSize tokens.
// Section headings are kept inline as Markdown headings; a section too big
// on its own is split on paragraph and then sentence boundaries.
func Chunk(o *doctree.Outline, cfg Config) []doctree.Chunk {
	cfg = withDefaults(cfg)

	var (
		chunks []doctree.Chunk
		cur    []string
		words  int
		next   doctree.Chunk
	)
	flush := func() {
		if words == 0 {
			return
		}
		next.Text = strings.Join(cur, "\n\n")
		next.Index = len(chunks)
		chunks = append(chunks, next)
		cur, words = nil, 0
	}
	add := func(text string, bc []string, page int) {
		w := wordCount(text)
		if words > 0 && tokensFor(words+w) > cfg.ChunkSize {
			flush()
		}
		if words == 0 {
			next = doctree.Chunk{Breadcrumb: copyBreadcrumb(bc), PageStart: page, PageEnd: page}
		}
		cur = append(cur, text)
		words += w
		next.PageEnd = max(next.PageEnd, page)
	}

	o.Walk(func(s *doctree.Section, bc []string) {
		heading := ""
		if s.Heading != "" {
			heading = strings.Repeat("#", min(len(bc)+1, 6)) + " " + s.Heading
		}
		text := strings.TrimSpace(s.Text)

		switch {
		case text == "":
			if heading != "" {
				add(heading, bc, s.Page)
			}
		case EstimateTokens(heading+" "+text) <= cfg.ChunkSize:
			if heading != "" {
				text = heading + "\n\n" + text
			}
			add(text, bc, s.Page)
		default:
			// Oversized section: each part becomes its own chunk under
			// the section's breadcrumb, the first one led by the heading.
			flush()
			sectionBC := bc
			if s.Heading != "" {
				sectionBC = append(bc[:len(bc):len(bc)], s.Heading)
			}
			parts := splitText(text, cfg.ChunkSize-EstimateTokens(heading), cfg.ChunkOverlap)
			for i, part := range parts {
				if i == 0 && heading != "" {
					part = heading + "\n\n" + part
				}
				add(part, sectionBC, s.Page)
				flush()
			}
		}
	})
	flush()
	return chunks
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = 0
	}
	return cfg
}

// splitText breaks text into pieces of about targetTokens on paragraph
// boundaries, falling back to sentences for oversized paragraphs.
func splitText(text string, targetTokens, overlapTokens int) []string {
	var result []string
	var paras []string
	for _, para := range splitByParagraphs(text) {
		if EstimateTokens(para) <= targetTokens {
			paras = append(paras, para)
			continue
		}
		result = append(result, accumulate(paras, "\n\n", targetTokens, overlapTokens)...)
		paras = nil
		result = append(result, accumulate(splitSentences(para), " ", targetTokens, overlapTokens)...)
	}
	return append(result, accumulate(paras, "\n\n", targetTokens, overlapTokens)...)
}

// accumulate joins pieces with sep into groups of at most targetTokens
// (a single oversized piece stands alone). Each new group starts with the
// last overlapTokens worth of words from the previous one.
func accumulate(pieces []string, sep string, targetTokens, overlapTokens int) []string {
	var result []string
	var current strings.Builder
	words := 0
	fresh := 0 // words in current that are not carried-over overlap

	for _, piece := range pieces {
		pw := wordCount(piece)
		if fresh > 0 && tokensFor(words+pw) > targetTokens {
			result = append(result, current.String())
			overlap := overlapText(current.String(), overlapTokens)
			current.Reset()
			words, fresh = 0, 0
			if ow := wordCount(overlap); ow > 0 && tokensFor(ow+pw) <= targetTokens {
				current.WriteString(overlap)
				words = ow
			}
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(piece)
		words += pw
		fresh += pw
	}
	if fresh > 0 {
		result = append(result, current.String())
	}
	return result
}

func splitByParagraphs(text string) []string {
	var result []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitSentences splits after '.', '!' or '?' followed by a space.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i+1 < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' {
				if s := strings.TrimSpace(text[start : i+1]); s != "" {
					sentences = append(sentences, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// overlapText returns roughly the last targetTokens worth of words.
func overlapText(text string, targetTokens int) string {
	words := strings.Fields(text)
	targetWords := int(float64(targetTokens) / tokensPerWord)
	if targetWords <= 0 || len(words) <= targetWords {
		return ""
	}
	return strings.Join(words[len(words)-targetWords:], " ")
}

func copyBreadcrumb(bc []string) []string {
	if len(bc) == 0 {
		return nil
	}
	return append([]string(nil), bc...)
}
