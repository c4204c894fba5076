package treeview

import (
	"fmt"
	"math"
	"slices"
)

// PanThreshold is how far a single pointer must travel from where it went
// down before its movement pans the camera instead of counting as a tap.
const PanThreshold = 3.0

type pointer struct {
	startX, startY float64
	x, y           float64
	target         string
	pinched        bool
}

type pinch struct {
	a, b       int
	startDist  float64
	startScale float64
}

// Gestures turns raw pointer and wheel input into View operations.
type Gestures struct {
	view     *View
	pointers map[int]*pointer
	panning  bool
	pinch    *pinch
}

func NewGestures(v *View) *Gestures {
	return &Gestures{view: v, pointers: make(map[int]*pointer)}
}

// Active returns the number of pointers currently down.
func (g *Gestures) Active() int { return len(g.pointers) }

func (g *Gestures) Panning() bool  { return g.panning }
func (g *Gestures) Pinching() bool { return g.pinch != nil }

// PointerDown registers a pointer. target is the node id under the pointer, or
// empty for the background. A second pointer starts a pinch.
func (g *Gestures) PointerDown(id int, x, y float64, target string) {
	g.pointers[id] = &pointer{startX: x, startY: y, x: x, y: y, target: target}
	if g.pinch == nil && len(g.pointers) >= 2 {
		g.armPinch()
	}
}

// armPinch pinches between the two lowest pointer ids, measured from their
// current positions and the current scale.
func (g *Gestures) armPinch() {
	ids := make([]int, 0, len(g.pointers))
	for pid := range g.pointers {
		ids = append(ids, pid)
	}
	slices.Sort(ids)
	a, b := g.pointers[ids[0]], g.pointers[ids[1]]
	a.pinched, b.pinched = true, true
	g.panning = false
	g.pinch = &pinch{
		a:          ids[0],
		b:          ids[1],
		startDist:  math.Hypot(a.x-b.x, a.y-b.y),
		startScale: g.view.Camera().Scale,
	}
}

func (g *Gestures) PointerMove(id int, x, y float64) {
	p, ok := g.pointers[id]
	if !ok {
		return
	}
	dx, dy := x-p.x, y-p.y
	p.x, p.y = x, y

	if g.pinch != nil {
		a, b := g.pointers[g.pinch.a], g.pointers[g.pinch.b]
		if g.pinch.startDist > 0 {
			d := math.Hypot(a.x-b.x, a.y-b.y)
			g.view.SetScale(g.pinch.startScale * d / g.pinch.startDist)
		}
		return
	}
	if len(g.pointers) != 1 {
		return
	}
	if !g.panning && math.Hypot(x-p.startX, y-p.startY) > PanThreshold {
		g.panning = true
	}
	if g.panning {
		g.view.Pan(dx, dy)
	}
}

// PointerUp releases a pointer. Releasing the only pointer without having panned
// or pinched toggles the node it went down on.
func (g *Gestures) PointerUp(id int) {
	p, ok := g.pointers[id]
	if !ok {
		return
	}
	tap := !p.pinched && !g.panning && len(g.pointers) == 1
	g.release(id)
	if tap && p.target != "" {
		g.view.Toggle(p.target)
	}
}

// PointerCancel releases a pointer without any tap.
func (g *Gestures) PointerCancel(id int) {
	if _, ok := g.pointers[id]; ok {
		g.release(id)
	}
}

func (g *Gestures) release(id int) {
	delete(g.pointers, id)
	if g.pinch != nil && (id == g.pinch.a || id == g.pinch.b) {
		g.pinch = nil
		if len(g.pointers) >= 2 {
			g.armPinch()
		} else {
			// A surviving pointer has to cross the threshold again to pan.
			for _, p := range g.pointers {
				p.startX, p.startY = p.x, p.y
			}
		}
	}
	if len(g.pointers) == 0 {
		g.panning = false
	}
}

// Wheel zooms out for positive deltaY and in for negative.
func (g *Gestures) Wheel(deltaY float64) {
	switch {
	case deltaY > 0:
		g.view.Zoom(ZoomOut)
	case deltaY < 0:
		g.view.Zoom(ZoomIn)
	}
}

// Event is a serialized input event, as replayed by the HTTP API.
type Event struct {
	Type    string  `json:"type" validate:"required,oneof=down move up cancel wheel"`
	Pointer int     `json:"pointer"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Target  string  `json:"target,omitempty"`
	DeltaY  float64 `json:"delta_y,omitempty"`
}

// Apply replays events in order. It stops at the first unknown event type.
func (g *Gestures) Apply(events []Event) error {
	for i, e := range events {
		switch e.Type {
		case "down":
			g.PointerDown(e.Pointer, e.X, e.Y, e.Target)
		case "move":
			g.PointerMove(e.Pointer, e.X, e.Y)
		case "up":
			g.PointerUp(e.Pointer)
		case "cancel":
			g.PointerCancel(e.Pointer)
		case "wheel":
			g.Wheel(e.DeltaY)
		default:
			return fmt.Errorf("event %d: unknown type %q", i, e.Type)
		}
	}
	return nil
}
