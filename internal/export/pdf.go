package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/dgallion1/docmap/internal/flashcard"
	"github.com/dgallion1/docmap/internal/mindmap"
	"github.com/dgallion1/docmap/internal/treeview"
)

const (
	pdfMargin   = 15.0
	pdfIndent   = 7.0
	pdfLineHigh = 6.0
)

func newPDF(title string) (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(title), false)
	pdf.SetCreator("docmap", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, tr(title), "", "L", false)
	pdf.Ln(2)
	pageW, _ := pdf.GetPageSize()
	pdf.Line(pdfMargin, pdf.GetY(), pageW-pdfMargin, pdf.GetY())
	pdf.Ln(4)
	return pdf, tr
}

// PDF writes the mind map as an indented outline. Only rows visible under
// state are included.
func PDF(w io.Writer, doc *mindmap.Document, state treeview.State) error {
	if doc == nil || doc.Root == nil {
		return fmt.Errorf("export: empty document")
	}
	v := treeview.New(doc, state.Orientation)
	v.Restore(state)

	pdf, tr := newPDF(doc.Title)
	for _, row := range v.Rows() {
		left := pdfMargin + float64(row.Depth)*pdfIndent
		pdf.SetLeftMargin(left)
		pdf.SetX(left)

		marker := "-"
		switch row.Indicator {
		case treeview.Collapsed:
			marker = "+"
		case treeview.Expanded:
			marker = "v"
		}
		style := ""
		if row.Depth == 0 {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 12)
		pdf.MultiCell(0, pdfLineHigh, tr(marker+" "+row.Label), "", "L", false)
		if row.Note != "" {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.SetX(left + 4)
			pdf.MultiCell(0, 5, tr(row.Note), "", "L", false)
		}
	}
	pdf.SetLeftMargin(pdfMargin)
	return writePDF(pdf, w)
}

// DeckPDF writes the cards in generation order as numbered question and
// answer pairs.
func DeckPDF(w io.Writer, title string, cards []flashcard.Card) error {
	if len(cards) == 0 {
		return flashcard.ErrEmptyDeck
	}
	if title == "" {
		title = "Flashcards"
	}
	pdf, tr := newPDF(title)
	for i, c := range cards {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, pdfLineHigh, tr(fmt.Sprintf("%d. %s", i+1, c.Question)), "", "L", false)
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetX(pdfMargin + pdfIndent)
		pdf.MultiCell(0, pdfLineHigh, tr(c.Answer), "", "L", false)
		pdf.Ln(3)
	}
	return writePDF(pdf, w)
}

func writePDF(pdf *gofpdf.Fpdf, w io.Writer) error {
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export: write pdf: %w", err)
	}
	return nil
}
