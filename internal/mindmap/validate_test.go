package mindmap

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docmap/internal/extract"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func labels(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Label
	}
	return out
}

func TestParse_FencedWithProse(t *testing.T) {
	raw := "Here you go:\n```json\n{\"root\":{\"id\":\"root\",\"label\":\"Cats\",\"children\":[{\"id\":\"n1\",\"label\":\"Diet\"},{\"id\":\"n2\",\"label\":\"\"}]}}\n```"

	doc, err := Parse(raw, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, "Cats", doc.Root.Label)
	assert.Equal(t, "Cats", doc.Title)
	require.Len(t, doc.Root.Children, 1)
	assert.Equal(t, "Diet", doc.Root.Children[0].Label)
	assert.Equal(t, "n1", doc.Root.Children[0].ID)
}

func TestParse_MalformedNeverReturnsDocument(t *testing.T) {
	doc, err := Parse("no json here", DefaultLimits())
	assert.Nil(t, doc)
	var mErr *extract.MalformedGenerationError
	assert.True(t, errors.As(err, &mErr))
}

func TestParse_PreservesOrderAndNotes(t *testing.T) {
	raw := `{"title":"Felines","root":{"id":"root","label":" Cats ","children":[
		{"id":"a","label":"Diet","note":"  mostly meat ","children":[{"id":"a1","label":"Fish"}]},
		{"id":"b","label":"Sleep"},
		{"id":"c","label":"Play"}]}}`

	doc, err := Parse(raw, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, "Felines", doc.Title)
	assert.Equal(t, "Cats", doc.Root.Label)
	assert.Equal(t, []string{"Diet", "Sleep", "Play"}, labels(doc.Root.Children))
	assert.Equal(t, "mostly meat", doc.Root.Children[0].Note)
	assert.Equal(t, []string{"Fish"}, labels(doc.Root.Children[0].Children))
}

func TestValidate_PromotesChildrenOfEmptyLabel(t *testing.T) {
	v := decode(t, `{"root":{"label":"R","children":[
		{"label":"A"},
		{"label":"  ","children":[{"label":"B"},{"label":"","children":[{"label":"C"}]}]},
		{"label":"D"}]}}`)

	doc, err := Validate(v, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D"}, labels(doc.Root.Children))
}

func TestValidate_SynthesizesDeterministicIDs(t *testing.T) {
	src := `{"root":{"label":"R","children":[
		{"label":"A","children":[{"label":"A1"},{"id":"x","label":"A2"}]},
		{"id":"x","label":"B"},
		{"id":7,"label":"C"}]}}`

	first, err := Validate(decode(t, src), DefaultLimits())
	require.NoError(t, err)
	second, err := Validate(decode(t, src), DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, "root", first.Root.ID)
	a := first.Root.Children[0]
	assert.Equal(t, "n0", a.ID)
	assert.Equal(t, "n0.0", a.Children[0].ID)
	assert.Equal(t, "x", a.Children[1].ID)
	assert.Equal(t, "n1", first.Root.Children[1].ID, "duplicate id falls back to position")
	assert.Equal(t, "7", first.Root.Children[2].ID)

	seen := map[string]bool{}
	first.Walk(func(n *Node, _ int) bool {
		assert.False(t, seen[n.ID], "duplicate id %q", n.ID)
		seen[n.ID] = true
		return true
	})
}

func TestValidate_PositionIDCollision(t *testing.T) {
	v := decode(t, `{"root":{"label":"R","children":[{"label":"A"},{"id":"n0","label":"B"}]}}`)
	doc, err := Validate(v, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, "n0", doc.Root.Children[0].ID)
	assert.Equal(t, "n1", doc.Root.Children[1].ID)

	v = decode(t, `{"root":{"label":"R","children":[{"id":"n1","label":"A"},{"label":"B"}]}}`)
	doc, err = Validate(v, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, "n1", doc.Root.Children[0].ID)
	assert.Equal(t, "n1-2", doc.Root.Children[1].ID)
}

func TestValidate_AlternateFields(t *testing.T) {
	v := decode(t, `{"title":"Pets","label":"Animals","children":[
		{"title":"Dogs","description":"loyal"},
		{"name":"Birds"},
		"Fish",
		42]}`)

	doc, err := Validate(v, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, "Pets", doc.Title)
	assert.Equal(t, "Animals", doc.Root.Label)
	assert.Equal(t, []string{"Dogs", "Birds", "Fish"}, labels(doc.Root.Children))
	assert.Equal(t, "loyal", doc.Root.Children[0].Note)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"array", `[{"label":"x"}]`},
		{"no root", `{"nodes":[]}`},
		{"empty root label", `{"root":{"label":"   ","children":[{"label":"A"}]}}`},
		{"root not object", `{"root":"Cats"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Validate(decode(t, tc.src), DefaultLimits())
			assert.Nil(t, doc)
			var vErr *ValidationError
			assert.True(t, errors.As(err, &vErr), "got %v", err)
		})
	}
}

func TestValidate_Limits(t *testing.T) {
	deep := strings.Repeat(`{"label":"x","children":[`, 5) + `{"label":"leaf"}` + strings.Repeat(`]}`, 5)
	v := decode(t, `{"root":`+deep+`}`)

	_, err := Validate(v, Limits{MaxDepth: 5, MaxNodes: 100})
	require.NoError(t, err)

	_, err = Validate(v, Limits{MaxDepth: 4, MaxNodes: 100})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Reason, "depth")

	_, err = Validate(v, Limits{MaxDepth: 12, MaxNodes: 5})
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Reason, "nodes")
}

func TestDocumentHelpers(t *testing.T) {
	v := decode(t, `{"root":{"id":"root","label":"R","children":[
		{"id":"a","label":"A","children":[{"id":"a1","label":"A1"}]},
		{"id":"b","label":"B"}]}}`)
	doc, err := Validate(v, DefaultLimits())
	require.NoError(t, err)

	assert.Equal(t, 4, doc.Count())
	assert.Equal(t, []string{"root", "a"}, doc.ParentIDs())
	assert.Equal(t, "A1", doc.Find("a1").Label)
	assert.Nil(t, doc.Find("missing"))
}
