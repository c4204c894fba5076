package extract

import (
	"fmt"
	"strings"
)

const summaryInstructions = `Summarize the document below for a student. Write Markdown: a one-line title as a level-1 heading, then short sections with bullet points. Keep every key concept, definition, and number. Do not invent facts.`

const transcribeInstructions = `Read the attached document and summarize it for a student. Write Markdown: a one-line title as a level-1 heading, then short sections with bullet points. Keep every key concept, definition, and number. Do not invent facts.`

const combineInstructions = `The following are summaries of consecutive parts of one document. Merge them into a single coherent summary in Markdown: a one-line title as a level-1 heading, then short sections with bullet points. Remove repetition, keep every key concept.`

const mindmapInstructions = `Turn the summary below into a concept map. Return ONLY a JSON object, no prose, no code fences, with this shape:

{"title": "string", "root": {"id": "root", "label": "string", "children": [{"id": "string", "label": "string", "note": "optional string", "children": [...]}]}}

Rules:
- At most %d levels below the root.
- At most %d children per node.
- Labels are short (max 6 words); put detail in "note".
- ids are unique strings.`

const flashcardInstructions = `Write %d flashcards that test the key ideas of the summary below. Return ONLY a JSON array, no prose, no code fences:

[{"question": "string", "answer": "string"}]

Questions are specific and answerable from the summary. Answers are at most two sentences.`

// SummaryPrompt is the prompt for summarizing locally extracted text.
func SummaryPrompt(title string, breadcrumb []string, text string) string {
	var sb strings.Builder
	sb.WriteString(summaryInstructions)
	sb.WriteString("\n\n---\n")
	sb.WriteString(fmt.Sprintf("Document: %q\n", title))
	if len(breadcrumb) > 0 {
		sb.WriteString("Section: ")
		sb.WriteString(strings.Join(breadcrumb, " > "))
		sb.WriteString("\n")
	}
	sb.WriteString("---\n")
	sb.WriteString(text)
	return sb.String()
}

// AttachmentSummaryPrompt is used when the document travels as an inline
// attachment (images, scanned PDFs).
func AttachmentSummaryPrompt(title string) string {
	return transcribeInstructions + fmt.Sprintf("\n\nDocument: %q", title)
}

// CombinePrompt merges partial summaries of a long document.
func CombinePrompt(title string, parts []string) string {
	var sb strings.Builder
	sb.WriteString(combineInstructions)
	sb.WriteString(fmt.Sprintf("\n\nDocument: %q\n", title))
	for i, p := range parts {
		sb.WriteString(fmt.Sprintf("\n--- Part %d ---\n", i+1))
		sb.WriteString(p)
	}
	return sb.String()
}

// MindmapPrompt asks for a hierarchy. levels and children are advisory
// only; the response is validated, not trusted.
func MindmapPrompt(summary string, levels, children int) string {
	return fmt.Sprintf(mindmapInstructions, levels, children) + "\n\n---\n" + summary
}

// FlashcardPrompt asks for count question/answer pairs.
func FlashcardPrompt(summary string, count int) string {
	return fmt.Sprintf(flashcardInstructions, count) + "\n\n---\n" + summary
}
