package mindmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/docmap/internal/extract"
)

// Limits caps what a generator response may expand into. Exceeding either
// is a ValidationError; documents are never truncated.
type Limits struct {
	MaxDepth int // levels below the root
	MaxNodes int
}

func DefaultLimits() Limits {
	return Limits{MaxDepth: 12, MaxNodes: 2000}
}

// ValidationError means the parsed JSON lacks a usable hierarchy.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid mind map: " + e.Reason
}

// Parse is the single gate from raw generator text to a Document.
func Parse(raw string, lim Limits) (*Document, error) {
	msg, err := extract.RecoverObject(raw)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &extract.MalformedGenerationError{Raw: string(msg), Reason: err.Error()}
	}
	return Validate(v, lim)
}

// Validate builds a Document from decoded JSON.
//
// Nodes whose trimmed label is empty are removed and their children take
// their place in the parent's list. Missing or duplicate ids are replaced by
// ids derived from the node's position in the input, so validating the same
// input twice yields the same ids.
func Validate(parsed any, lim Limits) (*Document, error) {
	if lim.MaxDepth <= 0 || lim.MaxNodes <= 0 {
		lim = DefaultLimits()
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, &ValidationError{Reason: "top-level value is not an object"}
	}

	rootRaw, ok := obj["root"].(map[string]any)
	if !ok {
		if !hasLabelField(obj) {
			return nil, &ValidationError{Reason: "no root node with a label"}
		}
		rootRaw = obj
	}

	b := &builder{used: make(map[string]bool)}
	root := b.build(rootRaw, nil)
	if root.Label == "" {
		return nil, &ValidationError{Reason: "root label is empty"}
	}

	doc := &Document{
		Title: strings.TrimSpace(coerceString(obj["title"])),
		Root:  root,
	}
	if doc.Title == "" {
		doc.Title = root.Label
	}

	maxDepth := 0
	doc.Walk(func(_ *Node, depth int) bool {
		if depth > maxDepth {
			maxDepth = depth
		}
		return true
	})
	if maxDepth > lim.MaxDepth {
		return nil, &ValidationError{Reason: fmt.Sprintf("depth %d exceeds limit %d", maxDepth, lim.MaxDepth)}
	}
	if n := doc.Count(); n > lim.MaxNodes {
		return nil, &ValidationError{Reason: fmt.Sprintf("%d nodes exceeds limit %d", n, lim.MaxNodes)}
	}
	return doc, nil
}

type builder struct {
	used map[string]bool
}

// build converts raw into a Node. The returned node may have an empty
// label; callers splice its children in its place.
func (b *builder) build(raw map[string]any, path []int) *Node {
	n := &Node{
		Label: strings.TrimSpace(firstString(raw, "label", "title", "name")),
		Note:  strings.TrimSpace(firstString(raw, "note", "description")),
	}
	if n.Label != "" {
		n.ID = b.assignID(strings.TrimSpace(coerceString(raw["id"])), path)
	}

	children, _ := raw["children"].([]any)
	for i, c := range children {
		childPath := append(append(make([]int, 0, len(path)+1), path...), i)

		var child *Node
		switch v := c.(type) {
		case map[string]any:
			child = b.build(v, childPath)
		case string:
			child = b.build(map[string]any{"label": v}, childPath)
		default:
			continue
		}

		if child.Label == "" {
			n.Children = append(n.Children, child.Children...)
			continue
		}
		n.Children = append(n.Children, child)
	}
	return n
}

func (b *builder) assignID(id string, path []int) string {
	if id == "" || b.used[id] {
		id = positionID(path)
	}
	base := id
	for i := 2; b.used[id]; i++ {
		id = base + "-" + strconv.Itoa(i)
	}
	b.used[id] = true
	return id
}

func positionID(path []int) string {
	if len(path) == 0 {
		return "root"
	}
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return "n" + strings.Join(parts, ".")
}

func hasLabelField(obj map[string]any) bool {
	_, label := obj["label"]
	_, title := obj["title"]
	return label || title
}

func firstString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(coerceString(raw[k])); s != "" {
			return s
		}
	}
	return ""
}

func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
