package export

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// RenderMarkdown converts generator-written Markdown to HTML that is safe to
// embed. Raw HTML in the source is stripped.
func RenderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("export: render markdown: %w", err)
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes())), nil
}

type summaryPage struct {
	Title   string
	Content template.HTML
	Style   template.CSS
}

var summaryTmpl = template.Must(template.New("summary").Parse(summaryTemplate))

// SummaryHTML writes a standalone page for a Markdown summary.
func SummaryHTML(w io.Writer, title, src string) error {
	content, err := RenderMarkdown(src)
	if err != nil {
		return err
	}
	if title == "" {
		title = "Summary"
	}
	if err := summaryTmpl.Execute(w, summaryPage{Title: title, Content: content, Style: summaryCSS}); err != nil {
		return fmt.Errorf("export: render summary: %w", err)
	}
	return nil
}

const summaryTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <style>{{.Style}}</style>
</head>
<body>
  <article>
    <h1>{{.Title}}</h1>
    {{.Content}}
  </article>
</body>
</html>
`

const summaryCSS = `
body { margin: 0; font-family: system-ui, -apple-system, "Segoe UI", sans-serif; color: #1f2937; background: #f8fafc; line-height: 1.6; }
article { max-width: 46rem; margin: 2rem auto; padding: 2rem; background: #fff; border: 1px solid #e5e7eb; border-radius: 12px; }
h1 { margin-top: 0; }
code { background: #f1f5f9; padding: 0 .25rem; border-radius: 4px; }
table { border-collapse: collapse; }
td, th { border: 1px solid #e5e7eb; padding: .25rem .5rem; }
`
