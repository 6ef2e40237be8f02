package site

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-press/internal/dom"
	"github.com/goliatone/go-press/internal/history"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// Post is a loaded post ready for rendering.
type Post struct {
	Filename string
	// Slug is the file name without its extension.
	Slug     string
	Title    string
	Date     *history.Date
	Document *interfaces.Document

	// body holds the rendered body nodes, minus a heading promoted to title.
	body []*html.Node
}

// SlugOf strips the .md extension from a post file name.
func SlugOf(filename string) string {
	return strings.TrimSuffix(filename, ".md")
}

// loadPosts loads every named post concurrently. The result keeps the order
// of names.
func (s *service) loadPosts(ctx context.Context, names []string) ([]*Post, error) {
	posts := make([]*Post, len(names))
	errs := make([]error, len(names))
	if len(names) == 0 {
		return posts, nil
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < s.workerCount(len(names)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				posts[idx], errs[idx] = s.loadPost(ctx, names[idx])
			}
		}()
	}

	for idx := range names {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("site: load %s: %w", names[i], err)
		}
	}
	return posts, nil
}

func (s *service) loadPost(ctx context.Context, name string) (*Post, error) {
	doc, err := s.deps.Posts.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	body, err := dom.ParseFragment(doc.BodyHTML)
	if err != nil {
		return nil, err
	}

	post := &Post{
		Filename: name,
		Slug:     SlugOf(name),
		Document: doc,
		body:     body,
	}

	if _, ok := doc.FrontMatter.Raw["title"].(string); ok {
		post.Title = doc.FrontMatter.Title
	} else if s.cfg.TitleFromHeading {
		post.Title = post.takeLeadingHeading()
	}

	if hasTextDate(doc.FrontMatter) {
		date, err := parsePostDate(doc.FrontMatter.Date, s.cfg.Location)
		if err != nil {
			return nil, err
		}
		post.Date = &date
	}
	return post, nil
}

// takeLeadingHeading removes the body's first element when it is an <h1>
// and returns its text.
func (p *Post) takeLeadingHeading() string {
	for i, n := range p.body {
		if n.Type != html.ElementNode {
			continue
		}
		if n.DataAtom != atom.H1 {
			return ""
		}
		p.body = append(p.body[:i:i], p.body[i+1:]...)
		return dom.Text(n)
	}
	return ""
}

// hasTextDate reports whether the front matter date is a date or timestamp.
// Numeric values, such as the Unix milliseconds written by the playlist
// importer, are not displayed.
func hasTextDate(fm interfaces.FrontMatter) bool {
	if !fm.HasDate {
		return false
	}
	switch fm.Raw["date"].(type) {
	case string, time.Time:
		return true
	default:
		return false
	}
}
