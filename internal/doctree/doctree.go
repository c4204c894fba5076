// Package doctree is the heading outline of an uploaded document, built by
// the parsers and consumed by the summarizer.
package doctree

import "strings"

// Outline is a parsed document: its title and top-level sections.
type Outline struct {
	Title    string
	Sections []*Section
}

// Section is a heading with its body text and nested sections. Heading is
// empty for text that precedes any heading.
type Section struct {
	Heading  string
	Text     string
	Page     int // 1-based source page, 0 if unknown
	Sections []*Section
}

// Chunk is a slice of document text sized for one generator call.
type Chunk struct {
	Text       string
	Index      int
	Breadcrumb []string // headings above the chunk's first section
	PageStart  int
	PageEnd    int
}

// Walk visits sections depth-first with the headings above each one.
func (o *Outline) Walk(fn func(s *Section, breadcrumb []string)) {
	var walk func(s *Section, bc []string)
	walk = func(s *Section, bc []string) {
		fn(s, bc)
		if s.Heading != "" {
			bc = append(bc[:len(bc):len(bc)], s.Heading)
		}
		for _, c := range s.Sections {
			walk(c, bc)
		}
	}
	for _, s := range o.Sections {
		walk(s, nil)
	}
}

// HasText reports whether any section carries body text.
func (o *Outline) HasText() bool {
	found := false
	o.Walk(func(s *Section, _ []string) {
		if strings.TrimSpace(s.Text) != "" {
			found = true
		}
	})
	return found
}

// PlainText flattens the outline into Markdown-style text with headings
// marked by depth.
func (o *Outline) PlainText() string {
	var b strings.Builder
	o.Walk(func(s *Section, bc []string) {
		if s.Heading != "" {
			if b.Len() > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(strings.Repeat("#", min(len(bc)+1, 6)))
			b.WriteString(" ")
			b.WriteString(s.Heading)
		}
		if t := strings.TrimSpace(s.Text); t != "" {
			if b.Len() > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(t)
		}
	})
	return b.String()
}

// Builder assembles an Outline from a flat stream of headings and text
// blocks, nesting each heading under the nearest shallower one.
type Builder struct {
	root  Section
	stack []level
	text  strings.Builder
	page  int
}

type level struct {
	sec   *Section
	depth int
}

func NewBuilder() *Builder {
	b := &Builder{}
	b.stack = []level{{sec: &b.root, depth: 0}}
	return b
}

// Page sets the source page for sections started from now on.
func (b *Builder) Page(p int) { b.page = p }

// Heading opens a section at depth (1 = top level).
func (b *Builder) Heading(depth int, title string) {
	b.flush()
	if depth < 1 {
		depth = 1
	}
	sec := &Section{Heading: strings.TrimSpace(title), Page: b.page}
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].depth >= depth {
		b.stack = b.stack[:len(b.stack)-1]
	}
	parent := b.stack[len(b.stack)-1].sec
	parent.Sections = append(parent.Sections, sec)
	b.stack = append(b.stack, level{sec: sec, depth: depth})
}

// Text appends a paragraph to the current section.
func (b *Builder) Text(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	if b.text.Len() > 0 {
		b.text.WriteString("\n\n")
	}
	b.text.WriteString(t)
}

func (b *Builder) flush() {
	t := b.text.String()
	b.text.Reset()
	if t == "" {
		return
	}
	top := b.stack[len(b.stack)-1].sec
	if top.Text != "" {
		top.Text += "\n\n" + t
	} else {
		top.Text = t
	}
	if top.Page == 0 {
		top.Page = b.page
	}
}

// Outline finishes the build. Text that came before the first heading
// becomes a leading untitled section.
func (b *Builder) Outline(title string) *Outline {
	b.flush()
	o := &Outline{Title: title}
	if b.root.Text != "" {
		o.Sections = append(o.Sections, &Section{Text: b.root.Text, Page: b.root.Page})
	}
	o.Sections = append(o.Sections, b.root.Sections...)
	return o
}
