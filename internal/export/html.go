// Package export renders mind maps, summaries and decks into standalone
// files: an offline interactive HTML page, sanitized summary HTML, and PDFs.
package export

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/dgallion1/docmap/internal/mindmap"
	"github.com/dgallion1/docmap/internal/treeview"
)

// StateElementID is the id of the script element holding the embedded
// document and view state.
const StateElementID = "docmap-state"

// Snapshot is the data embedded in an exported page.
type Snapshot struct {
	Title string         `json:"title"`
	Root  *mindmap.Node  `json:"root"`
	State treeview.State `json:"state"`
}

// Document rebuilds the mind map carried by the snapshot.
func (s Snapshot) Document() *mindmap.Document {
	return &mindmap.Document{Title: s.Title, Root: s.Root}
}

type htmlNode struct {
	ID         string
	Label      string
	Note       string
	Toggleable bool
	Open       bool
	Children   []htmlNode
}

type htmlPage struct {
	Title       string
	Orientation treeview.Orientation
	Transform   template.CSS
	Root        htmlNode
	State       template.JS
	Style       template.CSS
	Script      template.JS
}

var pageTmpl = template.Must(template.New("page").Parse(mindmapTemplate))

// HTML writes a self-contained page showing doc as it looks in a view with
// the given state. The page needs no network access and carries its own
// pan, zoom and expand/collapse handling.
func HTML(w io.Writer, doc *mindmap.Document, state treeview.State) error {
	if doc == nil || doc.Root == nil {
		return fmt.Errorf("export: empty document")
	}

	// Normalise through a view so the embedded state only names real,
	// toggleable nodes and a clamped camera.
	v := treeview.New(doc, state.Orientation)
	v.Restore(state)
	state = v.Snapshot()

	payload, err := json.Marshal(Snapshot{Title: doc.Title, Root: doc.Root, State: state})
	if err != nil {
		return fmt.Errorf("export: encode state: %w", err)
	}

	page := htmlPage{
		Title:       doc.Title,
		Orientation: state.Orientation,
		Transform: template.CSS(fmt.Sprintf("transform: translate(%gpx, %gpx) scale(%g)",
			state.Camera.X, state.Camera.Y, state.Camera.Scale)),
		Root:   buildHTMLNode(doc.Root, v, true),
		State:  template.JS(payload),
		Style:  template.CSS(mindmapCSS),
		Script: template.JS(mindmapJS),
	}
	if err := pageTmpl.Execute(w, page); err != nil {
		return fmt.Errorf("export: render: %w", err)
	}
	return nil
}

func buildHTMLNode(n *mindmap.Node, v *treeview.View, root bool) htmlNode {
	hn := htmlNode{
		ID:         n.ID,
		Label:      n.Label,
		Note:       n.Note,
		Toggleable: v.Toggleable(n.ID),
		Open:       root || v.IsOpen(n.ID),
	}
	for _, c := range n.Children {
		hn.Children = append(hn.Children, buildHTMLNode(c, v, false))
	}
	return hn
}
