package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ReadState extracts the embedded snapshot from a page written by HTML.
func ReadState(r io.Reader) (Snapshot, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Snapshot{}, fmt.Errorf("export: parse html: %w", err)
	}

	script := findByID(doc, StateElementID)
	if script == nil {
		return Snapshot{}, fmt.Errorf("export: no #%s element", StateElementID)
	}

	var text strings.Builder
	for c := script.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			text.WriteString(c.Data)
		}
	}

	var s Snapshot
	if err := json.Unmarshal([]byte(text.String()), &s); err != nil {
		return Snapshot{}, fmt.Errorf("export: decode state: %w", err)
	}
	return s, nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}
