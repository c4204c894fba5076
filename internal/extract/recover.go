package extract

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxRawDiagnostic bounds how much raw generator output a
// MalformedGenerationError keeps.
const maxRawDiagnostic = 5000

var (
	leadingFenceRe  = regexp.MustCompile("^```(?:[jJ][sS][oO][nN])?[ \\t]*\\r?\\n?")
	trailingFenceRe = regexp.MustCompile("\\r?\\n?```[ \\t]*$")
)

// RecoverObject pulls a JSON object out of generator output that may be
// wrapped in code fences or surrounded by prose. Attempts run in order:
// the raw text as-is, the text with fences stripped, then the span from the
// first '{' to the last '}' of the stripped text.
func RecoverObject(raw string) (json.RawMessage, error) {
	return recoverJSON(raw, '{', '}')
}

// RecoverArray is RecoverObject for a top-level JSON array.
func RecoverArray(raw string) (json.RawMessage, error) {
	return recoverJSON(raw, '[', ']')
}

func recoverJSON(raw string, open, close byte) (json.RawMessage, error) {
	if msg, ok := parseAs([]byte(raw), open); ok {
		return msg, nil
	}

	cleaned := stripCodeBlock(raw)
	if msg, ok := parseAs([]byte(cleaned), open); ok {
		return msg, nil
	}

	first := strings.IndexByte(cleaned, open)
	last := strings.LastIndexByte(cleaned, close)
	if first >= 0 && last >= 0 && first < last {
		if msg, ok := parseAs([]byte(cleaned[first:last+1]), open); ok {
			return msg, nil
		}
	}

	return nil, &MalformedGenerationError{
		Raw:    Truncate(raw, maxRawDiagnostic),
		Reason: "no parseable JSON " + kindName(open) + " in generator output",
	}
}

// parseAs reports whether b is valid JSON whose top-level value starts with
// the given delimiter.
func parseAs(b []byte, open byte) (json.RawMessage, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != open || !json.Valid(b) {
		return nil, false
	}
	out := make(json.RawMessage, len(b))
	copy(out, b)
	return out, true
}

// stripCodeBlock removes one leading fence (optionally tagged json) and one
// trailing fence, then trims.
func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	s = leadingFenceRe.ReplaceAllString(s, "")
	s = trailingFenceRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func kindName(open byte) string {
	if open == '[' {
		return "array"
	}
	return "object"
}

// Truncate shortens s to at most n bytes plus an ellipsis, backing off to a
// rune boundary so the result stays valid UTF-8.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
