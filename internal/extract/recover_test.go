package extract

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plainDoc = `{"root":{"id":"root","label":"Cats","children":[{"id":"n1","label":"Diet"}]}}`

func TestRecoverObject_Success(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"plain", plainDoc},
		{"padded", "\n\t " + plainDoc + "  \n"},
		{"json fence", "```json\n" + plainDoc + "\n```"},
		{"bare fence", "```\n" + plainDoc + "\n```"},
		{"upper-case tag", "```JSON\n" + plainDoc + "\n```"},
		{"prose around", "Sure! Here is the map:\n" + plainDoc + "\nLet me know if you need more."},
		{"prose and fence", "Here you go:\n```json\n" + plainDoc + "\n```"},
		{"fence without trailing", "```json\n" + plainDoc},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := RecoverObject(tc.raw)
			require.NoError(t, err)
			assert.JSONEq(t, plainDoc, string(msg))
		})
	}
}

func TestRecoverObject_Failure(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"no braces", "I could not produce a map for this document."},
		{"reversed braces", "} nothing here {"},
		{"unbalanced", `{"root": {"label": "Cats"`},
		{"array of scalars", `["Cats", "Diet"]`},
		{"broken inside", "prefix {\"root\": {\"label\": Cats}} suffix"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := RecoverObject(tc.raw)
			assert.Nil(t, msg)
			var mErr *MalformedGenerationError
			require.True(t, errors.As(err, &mErr), "expected MalformedGenerationError, got %v", err)
			assert.Equal(t, tc.raw, mErr.Raw)
		})
	}
}

func TestRecoverObject_TruncatesDiagnostic(t *testing.T) {
	raw := strings.Repeat("x", 7000)
	_, err := RecoverObject(raw)
	var mErr *MalformedGenerationError
	require.True(t, errors.As(err, &mErr))
	assert.Equal(t, maxRawDiagnostic+len("..."), len(mErr.Raw))
	assert.True(t, strings.HasPrefix(raw, strings.TrimSuffix(mErr.Raw, "...")))
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab...", Truncate("abcdef", 2))

	// "é" is two bytes; cutting at 2 would split it.
	got := Truncate("aé€", 2)
	assert.Equal(t, "a...", got)
	assert.True(t, utf8.ValidString(got))

	raw := strings.Repeat("€", 3000)
	_, err := RecoverObject(raw)
	var mErr *MalformedGenerationError
	require.True(t, errors.As(err, &mErr))
	assert.True(t, utf8.ValidString(mErr.Raw))
}

func TestRecoverObject_FirstAttemptWins(t *testing.T) {
	// A valid document whose note contains a fence must not be altered by
	// the stripping step.
	doc := map[string]any{"root": map[string]any{"label": "Code", "note": "use ```json blocks```"}}
	b, err := json.Marshal(doc)
	require.NoError(t, err)

	msg, err := RecoverObject(string(b))
	require.NoError(t, err)
	assert.JSONEq(t, string(b), string(msg))
}

func TestRecoverArray(t *testing.T) {
	cards := `[{"question":"Q1","answer":"A1"},{"question":"Q2","answer":"A2"}]`

	msg, err := RecoverArray("Here are your cards:\n```json\n" + cards + "\n```\nGood luck!")
	require.NoError(t, err)
	assert.JSONEq(t, cards, string(msg))

	_, err = RecoverArray(`{"question":"Q1"}`)
	var mErr *MalformedGenerationError
	assert.True(t, errors.As(err, &mErr))
}
