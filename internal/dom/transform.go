package dom

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ReplaceFirstText replaces the first occurrence of old found in the text
// nodes under n. It reports whether a replacement happened.
func ReplaceFirstText(n *html.Node, old, replacement string) bool {
	if old == "" {
		return false
	}
	node := Find(n, func(c *html.Node) bool {
		return c.Type == html.TextNode && strings.Contains(c.Data, old)
	})
	if node == nil {
		return false
	}
	node.Data = strings.Replace(node.Data, old, replacement, 1)
	return true
}

// skipLinking lists elements whose text is never turned into links.
var skipLinking = map[atom.Atom]bool{
	atom.A:      true,
	atom.Script: true,
	atom.Style:  true,
}

// LinkTerms wraps every occurrence of a term found in text nodes under n in
// an anchor pointing at targets[term]. Longer terms win when terms overlap.
// Text already inside a link is left alone.
func LinkTerms(n *html.Node, targets map[string]string) {
	if len(targets) == 0 {
		return
	}
	terms := make([]string, 0, len(targets))
	for term := range targets {
		if term != "" {
			terms = append(terms, term)
		}
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})

	var texts []*html.Node
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode && skipLinking[c.DataAtom] {
			return
		}
		if c.Type == html.TextNode {
			texts = append(texts, c)
			return
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)

	for _, text := range texts {
		linkText(text, terms, targets)
	}
}

func linkText(text *html.Node, terms []string, targets map[string]string) {
	data := text.Data
	var parts []*html.Node
	start := 0
	for i := 0; i < len(data); {
		term := matchAt(data, i, terms)
		if term == "" {
			i++
			continue
		}
		if start < i {
			parts = append(parts, TextNode(data[start:i]))
		}
		link := Element(atom.A, html.Attribute{Key: "href", Val: targets[term]})
		link.AppendChild(TextNode(term))
		parts = append(parts, link)
		i += len(term)
		start = i
	}
	if len(parts) == 0 || text.Parent == nil {
		return
	}
	if start < len(data) {
		parts = append(parts, TextNode(data[start:]))
	}
	parent := text.Parent
	for _, part := range parts {
		parent.InsertBefore(part, text)
	}
	parent.RemoveChild(text)
}

func matchAt(data string, i int, terms []string) string {
	for _, term := range terms {
		if strings.HasPrefix(data[i:], term) {
			return term
		}
	}
	return ""
}

// UnwrapImageParagraphs replaces every <p> whose only content is a single
// <img> (ignoring whitespace) with that image.
func UnwrapImageParagraphs(root *html.Node) {
	for _, p := range FindAll(root, Tag(atom.P)) {
		var img *html.Node
		onlyImage := true
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.TextNode && strings.TrimSpace(c.Data) == "":
			case c.Type == html.ElementNode && c.DataAtom == atom.Img && img == nil:
				img = c
			default:
				onlyImage = false
			}
		}
		if !onlyImage || img == nil {
			continue
		}
		p.RemoveChild(img)
		Replace(p, img)
	}
}

// AppendToHead appends node as the last child of the document's <head>. It
// reports false when the document has no head.
func AppendToHead(doc *html.Node, node *html.Node) bool {
	head := Find(doc, Tag(atom.Head))
	if head == nil {
		return false
	}
	head.AppendChild(node)
	return true
}

// Script builds an inline <script> element holding source.
func Script(source string) *html.Node {
	script := Element(atom.Script)
	script.AppendChild(TextNode(source))
	return script
}
