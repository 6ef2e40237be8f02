// Package dom holds the small set of HTML tree operations the site builder
// and dev server need, on top of golang.org/x/net/html.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Matcher reports whether a node is the one being searched for.
type Matcher func(*html.Node) bool

// Parse parses a complete HTML document.
func Parse(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return doc, nil
}

// ParseFile parses the HTML document stored at path.
func ParseFile(path string) (*html.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dom: read %s: %w", path, err)
	}
	doc, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ParseFragment parses an HTML fragment as the content of a <body> element.
func ParseFragment(fragment []byte) ([]*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(bytes.NewReader(fragment), context)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	return nodes, nil
}

// Render serialises n, including n itself.
func Render(n *html.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return nil, fmt.Errorf("dom: render: %w", err)
	}
	return buf.Bytes(), nil
}

// Find returns the first node under root, root included, in document order
// that satisfies match.
func Find(root *html.Node, match Matcher) *html.Node {
	if root == nil {
		return nil
	}
	if match(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if found := Find(c, match); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every node under root satisfying match, in document order.
func FindAll(root *html.Node, match Matcher) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

// Tag matches elements with the given atom.
func Tag(a atom.Atom) Matcher {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a
	}
}

// Class matches elements carrying class name.
func Class(name string) Matcher {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && HasClass(n, name)
	}
}

// All matches nodes satisfying every matcher.
func All(matchers ...Matcher) Matcher {
	return func(n *html.Node) bool {
		for _, m := range matchers {
			if !m(n) {
				return false
			}
		}
		return true
	}
}

// Attr returns the value of attribute key.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets attribute key, replacing an existing value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// HasClass reports whether n lists name in its class attribute.
func HasClass(n *html.Node, name string) bool {
	classes, _ := Attr(n, "class")
	for _, c := range strings.Fields(classes) {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass appends name to the class attribute unless already present.
func AddClass(n *html.Node, name string) {
	if HasClass(n, name) {
		return
	}
	classes, _ := Attr(n, "class")
	SetAttr(n, "class", strings.TrimSpace(classes+" "+name))
}

// Element builds a detached element.
func Element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a, Attr: attrs}
}

// TextNode builds a detached text node.
func TextNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// Text returns the concatenated text content of n.
func Text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// SetText replaces the children of n with a single text node.
func SetText(n *html.Node, text string) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
	n.AppendChild(TextNode(text))
}

// Remove detaches n from its parent.
func Remove(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Replace puts replacement where n was. replacement must be detached.
func Replace(n, replacement *html.Node) {
	if n.Parent == nil {
		return
	}
	n.Parent.InsertBefore(replacement, n)
	n.Parent.RemoveChild(n)
}

// ElementChildren returns the element children of n.
func ElementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// FirstElementChild returns the first element child of n, skipping text
// and comments.
func FirstElementChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}
