package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// LoaderConfig configures how posts are discovered.
type LoaderConfig struct {
	// Pattern limits discovered files (defaults to "*.md").
	Pattern string
	// Exclude lists file names skipped by List, e.g. the definitions file.
	Exclude []string
}

// Loader reads posts from a flat directory exposed as an fs.FS.
type Loader struct {
	fs      fs.FS
	pattern string
	exclude map[string]struct{}
}

// NewLoader returns a Loader rooted at filesystem.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}
	exclude := make(map[string]struct{}, len(cfg.Exclude))
	for _, name := range cfg.Exclude {
		if name = strings.TrimSpace(name); name != "" {
			exclude[name] = struct{}{}
		}
	}
	return &Loader{fs: filesystem, pattern: pattern, exclude: exclude}
}

// List returns the names of the regular files at the root matching the
// pattern, sorted. Subdirectories are not traversed.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(l.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("markdown loader list: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if _, skip := l.exclude[name]; skip {
			continue
		}
		if ok, _ := path.Match(l.pattern, name); !ok {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// LoadFile reads and parses the named post. The body is not rendered.
func (l *Loader) LoadFile(ctx context.Context, name string) (*DocumentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !fs.ValidPath(name) || strings.Contains(name, "/") {
		return nil, fmt.Errorf("markdown loader: invalid post name %q", name)
	}

	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", name, err)
	}
	info, err := fs.Stat(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader stat %s: %w", name, err)
	}

	doc, err := BuildDocument(name, data, info.ModTime())
	if err != nil {
		return nil, err
	}
	return &DocumentResult{Document: doc, Source: data}, nil
}
