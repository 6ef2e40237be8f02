package interfaces

import (
	"context"
	"time"
)

// MarkdownParser converts raw Markdown bytes into HTML.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown rendering. Field names stay readable for
// configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions  []string
	Typographer bool
	Sanitize    bool
	HardWraps   bool
	SafeMode    bool
}

// MarkdownService loads posts from the content directory and renders them.
type MarkdownService interface {
	Load(ctx context.Context, name string) (*Document, error)
	LoadDirectory(ctx context.Context) ([]*Document, error)
	Render(ctx context.Context, markdown []byte, opts ParseOptions) ([]byte, error)
}

// Document is a single Markdown file with its parsed front matter and
// rendered body.
type Document struct {
	// FilePath is the file name relative to the content directory.
	FilePath     string
	FrontMatter  FrontMatter
	Body         []byte
	BodyHTML     []byte
	LastModified time.Time
}

// FrontMatter carries the keys the site pipeline understands. Raw keeps every
// decoded key so definition files can expose arbitrary values.
type FrontMatter struct {
	Title string
	// Date is the raw date value: either a YYYY-MM-DD string or a timestamp.
	Date    string
	HasDate bool
	Raw     map[string]any
}
