package site

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-press/internal/dom"
	"github.com/goliatone/go-press/internal/history"
)

const (
	mainTemplate    = "main.html"
	articleTemplate = "article.html"
	yearPlaceholder = "Year"
)

// templates holds the raw template sources. Every page parses its own copy
// because rendering mutates the tree.
type templates struct {
	main    []byte
	article []byte
}

func loadTemplates(dir string) (*templates, error) {
	main, err := os.ReadFile(filepath.Join(dir, mainTemplate))
	if err != nil {
		return nil, fmt.Errorf("site: read template: %w", err)
	}
	article, err := os.ReadFile(filepath.Join(dir, articleTemplate))
	if err != nil {
		return nil, fmt.Errorf("site: read template: %w", err)
	}
	return &templates{main: main, article: article}, nil
}

// shell parses the page template, stamps the copyright year and returns the
// document with its <main> element.
func (t *templates) shell(year int) (*html.Node, *html.Node, error) {
	doc, err := dom.Parse(bytes.NewReader(t.main))
	if err != nil {
		return nil, nil, err
	}
	if copyright := dom.Find(doc, dom.Class("copyright")); copyright != nil {
		dom.ReplaceFirstText(copyright, yearPlaceholder, strconv.Itoa(year))
	}
	main := dom.Find(doc, dom.Tag(atom.Main))
	if main == nil {
		return nil, nil, fmt.Errorf("%w: %s has no <main>", ErrTemplateInvalid, mainTemplate)
	}
	return doc, main, nil
}

func renderPost(t *templates, post *Post, all []*Post, year int) ([]byte, error) {
	doc, main, err := t.shell(year)
	if err != nil {
		return nil, err
	}

	articleDoc, err := dom.Parse(bytes.NewReader(t.article))
	if err != nil {
		return nil, err
	}
	article := dom.Find(articleDoc, dom.Tag(atom.Article))
	if article == nil {
		return nil, fmt.Errorf("%w: %s has no <article>", ErrTemplateInvalid, articleTemplate)
	}
	dom.Remove(article)

	if header := dom.Find(article, dom.Class("article-header")); header != nil {
		if h1 := dom.Find(header, dom.Tag(atom.H1)); h1 != nil {
			if post.Title != "" {
				dom.SetText(h1, post.Title)
			} else {
				dom.Remove(h1)
			}
		}
		if timeEl := dom.Find(header, dom.Tag(atom.Time)); timeEl != nil {
			if post.Date != nil {
				dom.SetText(timeEl, FormatShort(*post.Date))
				dom.SetAttr(timeEl, "datetime", post.Date.String())
			} else {
				dom.Remove(timeEl)
			}
		}
	}

	body := dom.Find(article, dom.Class("article-body"))
	if body == nil {
		return nil, fmt.Errorf("%w: %s has no .article-body", ErrTemplateInvalid, articleTemplate)
	}
	links := crossLinks(post, all)
	for _, n := range post.body {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		if n.Type == html.ElementNode {
			dom.LinkTerms(n, links)
		}
		body.AppendChild(n)
	}

	main.AppendChild(article)
	dom.UnwrapImageParagraphs(article)
	return dom.Render(doc)
}

// crossLinks maps the slug of every other post to its page.
func crossLinks(post *Post, all []*Post) map[string]string {
	links := make(map[string]string, len(all))
	for _, other := range all {
		if other == post || other.Slug == post.Slug {
			continue
		}
		links[other.Slug] = other.Slug + ".html"
	}
	return links
}

// renderIndex lists the history newest day first, and within a day the most
// recently changed file first.
func renderIndex(t *templates, entries []history.Entry, year int) ([]byte, error) {
	doc, main, err := t.shell(year)
	if err != nil {
		return nil, err
	}
	dom.AddClass(main, "all-text")

	heading := dom.Element(atom.H2)
	heading.AppendChild(dom.TextNode("Recently updated"))
	main.AppendChild(heading)

	for _, entry := range slices.Backward(entries) {
		day := dom.Element(atom.H3)
		day.AppendChild(dom.TextNode(FormatLong(entry.Date)))
		main.AppendChild(day)

		list := dom.Element(atom.Ul)
		for _, filename := range slices.Backward(entry.Files) {
			slug := SlugOf(filename)
			link := dom.Element(atom.A, html.Attribute{Key: "href", Val: slug + ".html"})
			link.AppendChild(dom.TextNode(slug))
			item := dom.Element(atom.Li)
			item.AppendChild(link)
			list.AppendChild(item)
		}
		main.AppendChild(list)
	}
	return dom.Render(doc)
}
