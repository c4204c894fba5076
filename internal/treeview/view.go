// Package treeview holds per-viewer interaction state for a mind map: which
// nodes are expanded, the camera transform, and layout orientation. The
// underlying Document is shared and never mutated. A View is not safe for
// concurrent use; callers serialize access.
package treeview

import (
	"fmt"
	"math"

	"github.com/dgallion1/docmap/internal/mindmap"
)

const (
	MinScale = 0.43
	MaxScale = 2.0

	ZoomIn  = 1.1
	ZoomOut = 0.9

	// MaxOffset bounds the camera translation on each axis.
	MaxOffset = 1e6
)

// Camera is the 2D transform applied to the rendered tree.
type Camera struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// Identity is the camera after Center.
var Identity = Camera{X: 0, Y: 0, Scale: 1}

type Orientation string

const (
	LeftToRight Orientation = "left-to-right"
	TopDown     Orientation = "top-down"
)

func ParseOrientation(s string) (Orientation, error) {
	switch Orientation(s) {
	case LeftToRight, TopDown:
		return Orientation(s), nil
	case "":
		return LeftToRight, nil
	}
	return "", fmt.Errorf("unknown orientation %q", s)
}

// State is the serializable part of a View.
type State struct {
	Camera      Camera      `json:"camera"`
	Open        []string    `json:"open"`
	Orientation Orientation `json:"orientation"`
}

type View struct {
	doc         *mindmap.Document
	toggleable  map[string]bool
	open        map[string]bool
	camera      Camera
	orientation Orientation
}

// New returns a view with every non-root node collapsed and an identity camera.
func New(doc *mindmap.Document, o Orientation) *View {
	if o == "" {
		o = LeftToRight
	}
	v := &View{
		doc:         doc,
		toggleable:  make(map[string]bool),
		open:        make(map[string]bool),
		camera:      Identity,
		orientation: o,
	}
	for _, id := range doc.ParentIDs() {
		if id != doc.Root.ID {
			v.toggleable[id] = true
		}
	}
	return v
}

func (v *View) Document() *mindmap.Document { return v.doc }
func (v *View) Camera() Camera              { return v.camera }
func (v *View) Orientation() Orientation    { return v.orientation }

func (v *View) SetOrientation(o Orientation) { v.orientation = o }

// Toggleable reports whether id names a non-root node with visible children.
func (v *View) Toggleable(id string) bool { return v.toggleable[id] }

// Toggle flips id's expanded state. It reports false and does nothing for
// the root, unknown ids, and leaves.
func (v *View) Toggle(id string) bool {
	if !v.toggleable[id] {
		return false
	}
	if v.open[id] {
		delete(v.open, id)
	} else {
		v.open[id] = true
	}
	return true
}

// IsOpen reports whether id's children are shown. The root is always open.
func (v *View) IsOpen(id string) bool {
	if v.doc.Root != nil && id == v.doc.Root.ID {
		return true
	}
	return v.open[id]
}

func (v *View) ExpandAll() {
	for id := range v.toggleable {
		v.open[id] = true
	}
}

func (v *View) CollapseAll() {
	clear(v.open)
}

func (v *View) Zoom(factor float64) {
	v.SetScale(v.camera.Scale * factor)
}

// SetScale sets the camera scale, clamped to [MinScale, MaxScale].
func (v *View) SetScale(s float64) {
	v.camera.Scale = clampScale(s)
}

// Pan moves the camera, keeping each axis within [-MaxOffset, MaxOffset].
func (v *View) Pan(dx, dy float64) {
	v.camera.X = clampOffset(v.camera.X + dx)
	v.camera.Y = clampOffset(v.camera.Y + dy)
}

func (v *View) Center() {
	v.camera = Identity
}

// OpenIDs returns the expanded node ids in display order.
func (v *View) OpenIDs() []string {
	ids := make([]string, 0, len(v.open))
	v.doc.Walk(func(n *mindmap.Node, _ int) bool {
		if v.open[n.ID] {
			ids = append(ids, n.ID)
		}
		return true
	})
	return ids
}

func (v *View) Snapshot() State {
	return State{Camera: v.camera, Open: v.OpenIDs(), Orientation: v.orientation}
}

// Restore applies a previously captured state. Ids that no longer name a
// toggleable node are ignored; scale and translation are clamped.
func (v *View) Restore(s State) {
	scale := s.Camera.Scale
	if scale == 0 {
		scale = 1
	}
	v.camera = Camera{X: clampOffset(s.Camera.X), Y: clampOffset(s.Camera.Y), Scale: clampScale(scale)}
	clear(v.open)
	for _, id := range s.Open {
		if v.toggleable[id] {
			v.open[id] = true
		}
	}
	if o, err := ParseOrientation(string(s.Orientation)); err == nil {
		v.orientation = o
	}
}

// Indicator is the expand/collapse marker drawn beside a row.
type Indicator string

const (
	IndicatorNone Indicator = "none"
	Collapsed     Indicator = "collapsed"
	Expanded      Indicator = "expanded"
)

// Row is one visible line of the rendered tree.
type Row struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Note      string    `json:"note,omitempty"`
	Depth     int       `json:"depth"`
	Indicator Indicator `json:"indicator"`
}

// Rows lists the currently visible nodes in display order.
func (v *View) Rows() []Row {
	var rows []Row
	v.doc.Walk(func(n *mindmap.Node, depth int) bool {
		ind := IndicatorNone
		if v.toggleable[n.ID] {
			ind = Collapsed
			if v.open[n.ID] {
				ind = Expanded
			}
		}
		rows = append(rows, Row{ID: n.ID, Label: n.Label, Note: n.Note, Depth: depth, Indicator: ind})
		return v.IsOpen(n.ID)
	})
	return rows
}

func clampScale(s float64) float64 {
	if math.IsNaN(s) {
		return 1
	}
	return math.Min(MaxScale, math.Max(MinScale, s))
}

func clampOffset(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Min(MaxOffset, math.Max(-MaxOffset, x))
}
