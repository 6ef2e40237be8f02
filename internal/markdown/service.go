package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-press/pkg/interfaces"
)

// Config controls how the Markdown service discovers and parses posts.
type Config struct {
	// Dir is the flat content directory.
	Dir     string
	Pattern string
	// Exclude names files that are never returned by LoadDirectory.
	Exclude []string
	Parser  interfaces.ParseOptions
}

// Service implements interfaces.MarkdownService for a content directory.
type Service struct {
	cfg    Config
	parser interfaces.MarkdownParser
	loader *Loader
}

var _ interfaces.MarkdownService = (*Service)(nil)

// DocumentResult carries the parsed document along with the raw source.
type DocumentResult struct {
	Document *interfaces.Document
	Source   []byte
}

// NewService builds a Service over cfg.Dir. A nil parser selects a
// GoldmarkParser with cfg.Parser as defaults.
func NewService(cfg Config, parser interfaces.MarkdownParser) (*Service, error) {
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		dir = "."
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("markdown service: stat content dir %s: %w", dir, err)
	}
	return NewServiceFS(os.DirFS(dir), cfg, parser), nil
}

// NewServiceFS builds a Service over an arbitrary filesystem.
func NewServiceFS(filesystem fs.FS, cfg Config, parser interfaces.MarkdownParser) *Service {
	if parser == nil {
		parser = NewGoldmarkParser(cfg.Parser)
	}
	return &Service{
		cfg:    cfg,
		parser: parser,
		loader: NewLoader(filesystem, LoaderConfig{Pattern: cfg.Pattern, Exclude: cfg.Exclude}),
	}
}

// Load reads and renders the named post.
func (s *Service) Load(ctx context.Context, name string) (*interfaces.Document, error) {
	result, err := s.loader.LoadFile(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.renderDocument(ctx, result.Document); err != nil {
		return nil, err
	}
	return result.Document, nil
}

// LoadFrontMatter reads only the front matter of name. A missing file yields
// an empty FrontMatter.
func (s *Service) LoadFrontMatter(ctx context.Context, name string) (interfaces.FrontMatter, error) {
	result, err := s.loader.LoadFile(ctx, name)
	if errors.Is(err, fs.ErrNotExist) {
		return interfaces.FrontMatter{Raw: map[string]any{}}, nil
	}
	if err != nil {
		return interfaces.FrontMatter{}, err
	}
	return result.Document.FrontMatter, nil
}

// List returns the post names LoadDirectory would load.
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.loader.List(ctx)
}

// LoadDirectory reads and renders every post, sorted by file name.
func (s *Service) LoadDirectory(ctx context.Context) ([]*interfaces.Document, error) {
	names, err := s.loader.List(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]*interfaces.Document, 0, len(names))
	for _, name := range names {
		doc, err := s.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Render converts markdown to HTML, merging opts over the configured
// defaults.
func (s *Service) Render(ctx context.Context, markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.parser.ParseWithOptions(markdown, mergeParseOptions(s.cfg.Parser, opts))
}

func (s *Service) renderDocument(ctx context.Context, doc *interfaces.Document) error {
	html, err := s.Render(ctx, doc.Body, interfaces.ParseOptions{})
	if err != nil {
		return fmt.Errorf("markdown render document %s: %w", doc.FilePath, err)
	}
	doc.BodyHTML = html
	return nil
}

func mergeParseOptions(base, override interfaces.ParseOptions) interfaces.ParseOptions {
	result := base
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string(nil), override.Extensions...)
	}
	result.Typographer = result.Typographer || override.Typographer
	result.Sanitize = result.Sanitize || override.Sanitize
	result.HardWraps = result.HardWraps || override.HardWraps
	result.SafeMode = result.SafeMode || override.SafeMode
	return result
}
