// Package mindmap holds the validated hierarchy produced from generator
// output. A Document is immutable once built; view state (camera, expanded
// nodes) lives in the treeview package.
package mindmap

// Node is one concept in the map.
type Node struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Note     string  `json:"note,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// Document is a rooted tree plus its display title.
type Document struct {
	Title string `json:"title"`
	Root  *Node  `json:"root"`
}

// HasChildren reports whether n renders any children.
func (n *Node) HasChildren() bool {
	return n != nil && len(n.Children) > 0
}

// Walk visits every node depth-first in display order. depth is 0 for the
// root. Returning false from fn skips that node's children.
func (d *Document) Walk(fn func(n *Node, depth int) bool) {
	if d == nil || d.Root == nil {
		return
	}
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		if !fn(n, depth) {
			return
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(d.Root, 0)
}

// Find returns the node with the given id, or nil.
func (d *Document) Find(id string) *Node {
	var found *Node
	d.Walk(func(n *Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// ParentIDs returns the ids of every node that has at least one child.
func (d *Document) ParentIDs() []string {
	var ids []string
	d.Walk(func(n *Node, _ int) bool {
		if n.HasChildren() {
			ids = append(ids, n.ID)
		}
		return true
	})
	return ids
}

// Count returns the number of nodes in the document.
func (d *Document) Count() int {
	total := 0
	d.Walk(func(*Node, int) bool {
		total++
		return true
	})
	return total
}
