package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/dgallion1/docmap/internal/mindmap"
	"github.com/dgallion1/docmap/internal/treeview"
)

func sampleDoc() *mindmap.Document {
	return &mindmap.Document{
		Title: "Cats",
		Root: &mindmap.Node{ID: "root", Label: "Cats", Children: []*mindmap.Node{
			{ID: "A", Label: "Diet", Note: "carnivore", Children: []*mindmap.Node{
				{ID: "A1", Label: "Fish"},
			}},
			{ID: "B", Label: "Sleep", Children: []*mindmap.Node{
				{ID: "B1", Label: "Naps", Children: []*mindmap.Node{{ID: "B1a", Label: "Sunbeam"}}},
			}},
			{ID: "C", Label: "Play"},
		}},
	}
}

func TestHTMLFidelity(t *testing.T) {
	doc := sampleDoc()
	v := treeview.New(doc, treeview.TopDown)
	v.Toggle("A")
	v.Toggle("B")
	v.Pan(10, -5)
	v.SetScale(1.2)

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, doc, v.Snapshot()))

	snap, err := ReadState(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B"}, snap.State.Open)
	assert.Equal(t, treeview.Camera{X: 10, Y: -5, Scale: 1.2}, snap.State.Camera)
	assert.Equal(t, treeview.TopDown, snap.State.Orientation)
	assert.Equal(t, doc, snap.Document())

	// The server-rendered markup matches the embedded state.
	page, err := html.Parse(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	classes := liClasses(page)
	assert.Contains(t, classes["A"], "open")
	assert.Contains(t, classes["B"], "open")
	assert.NotContains(t, classes["B1"], "open")
	assert.Contains(t, classes["B1"], "toggleable")
	assert.NotContains(t, classes["C"], "toggleable")
	assert.Contains(t, classes["root"], "open")
	assert.NotContains(t, classes["root"], "toggleable")

	assert.Contains(t, buf.String(), "translate(10px, -5px) scale(1.2)")
	assert.Contains(t, buf.String(), `class="canvas top-down"`)
}

func TestHTMLSelfContained(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, sampleDoc(), treeview.State{}))
	out := buf.String()
	assert.NotContains(t, out, "http://")
	assert.NotContains(t, out, "https://")
	assert.NotContains(t, out, "<link")
	assert.Contains(t, out, "pointerdown")
	assert.Contains(t, out, "MIN_SCALE = 0.43")

	snap, err := ReadState(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, treeview.Identity, snap.State.Camera)
	assert.Empty(t, snap.State.Open)
}

func TestHTMLEscapes(t *testing.T) {
	doc := &mindmap.Document{
		Title: `Tom & "Jerry" <script>`,
		Root: &mindmap.Node{ID: "root", Label: `</script><b>x</b>`, Children: []*mindmap.Node{
			{ID: "n0", Label: `a 'quoted' & <tag>`, Note: `<img src=x onerror=alert(1)>`},
		}},
	}
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, doc, treeview.State{}))
	out := buf.String()

	assert.NotContains(t, out, "<b>x</b>")
	assert.NotContains(t, out, "<img")
	assert.NotContains(t, out, "<tag>")
	assert.Equal(t, 2, strings.Count(out, "</script>"), "only the two script elements close")
	assert.Contains(t, out, "&amp;")
	assert.Contains(t, out, "&lt;tag&gt;")
	assert.Contains(t, out, "&#39;quoted&#39;")
	assert.Contains(t, out, "&#34;Jerry&#34;")

	snap, err := ReadState(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, `</script><b>x</b>`, snap.Root.Label)
	assert.Equal(t, `Tom & "Jerry" <script>`, snap.Title)
}

func TestHTMLDropsUnknownOpenIDs(t *testing.T) {
	var buf bytes.Buffer
	state := treeview.State{Camera: treeview.Camera{Scale: 7}, Open: []string{"C", "ghost", "A"}}
	require.NoError(t, HTML(&buf, sampleDoc(), state))

	snap, err := ReadState(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, snap.State.Open)
	assert.Equal(t, treeview.MaxScale, snap.State.Camera.Scale)
}

func TestReadStateErrors(t *testing.T) {
	_, err := ReadState(strings.NewReader("<html><body>nothing</body></html>"))
	assert.Error(t, err)

	_, err = ReadState(strings.NewReader(`<script type="application/json" id="docmap-state">{not json</script>`))
	assert.Error(t, err)
}

func TestHTMLEmptyDocument(t *testing.T) {
	assert.Error(t, HTML(&bytes.Buffer{}, nil, treeview.State{}))
}

func liClasses(n *html.Node) map[string]string {
	out := map[string]string{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "li" {
			var id, class string
			for _, a := range n.Attr {
				switch a.Key {
				case "data-id":
					id = a.Val
				case "class":
					class = a.Val
				}
			}
			out[id] = class
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}
