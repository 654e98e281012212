package validation

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// node is a namespace-agnostic view of one XML element.
type node struct {
	name     string
	attrs    map[string]string
	text     string
	children []*node
}

// parse decodes doc into a synthetic root whose children are the
// top-level elements. Namespaces are dropped; only local names are kept.
func parse(doc string) (*node, error) {
	dec := xml.NewDecoder(strings.NewReader(doc))
	root := &node{}
	stack := []*node{root}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local, attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				n.attrs[a.Name.Local] = a.Value
			}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			cur := stack[len(stack)-1]
			cur.text += string(t)
		}
	}

	return root, nil
}

// child returns the first child with the given local name.
func (n *node) child(name string) *node {
	if n == nil {
		return nil
	}
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// find follows a "/"-separated path of first matches.
func (n *node) find(path string) *node {
	cur := n
	for _, seg := range strings.Split(path, "/") {
		cur = cur.child(seg)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// hasValue reports whether the element exists and carries non-blank text.
func (n *node) hasValue() bool {
	return n != nil && strings.TrimSpace(n.text) != ""
}

// all returns every child with the given name, so a single element and a
// repeated one are handled alike.
func (n *node) all(name string) []*node {
	var out []*node
	for _, c := range n.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}
