package site

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-press/internal/history"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// Service regenerates the whole output directory.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
}

// Config captures the on-disk layout of a site.
type Config struct {
	ContentDir  string
	DefsFile    string
	OutputDir   string
	StaticDir   string
	TemplateDir string
	// Workers bounds concurrent post loading. Zero means runtime.NumCPU.
	Workers int
	// TitleFromHeading promotes a leading <h1> to the title of posts
	// without a front matter title.
	TitleFromHeading bool
	// Location is the zone post dates are displayed in.
	Location *time.Location
}

// PostSource loads posts from the content directory.
type PostSource interface {
	List(ctx context.Context) ([]string, error)
	Load(ctx context.Context, name string) (*interfaces.Document, error)
	LoadFrontMatter(ctx context.Context, name string) (interfaces.FrontMatter, error)
}

// HistoryStore is the subset of the history log a build needs.
type HistoryStore interface {
	UpdateFrom(ctx context.Context, src history.Source) (history.UpdateResult, error)
	Query(ctx context.Context, restrictTo []string) ([]history.Entry, error)
}

// Dependencies lists the collaborators of the builder.
type Dependencies struct {
	Posts   PostSource
	History HistoryStore
	Logger  interfaces.Logger
}

// BuildOptions narrows a build run.
type BuildOptions struct {
	// SkipHistoryUpdate renders from the log as is.
	SkipHistoryUpdate bool
}

// RenderedPage describes one written output file.
type RenderedPage struct {
	Slug     string
	Path     string
	Size     int
	Checksum uint64
}

// BuildResult reports what a build produced.
type BuildResult struct {
	ID            uuid.UUID
	StartedAt     time.Time
	Duration      time.Duration
	Pages         []RenderedPage
	Index         RenderedPage
	StaticFiles   int
	History       []history.Entry
	HistoryUpdate history.UpdateResult
	// Definitions holds the front matter of the definitions file.
	Definitions map[string]any
}

var (
	ErrPostsRequired   = errors.New("site: post source is required")
	ErrHistoryRequired = errors.New("site: history store is required")
	ErrTemplateInvalid = errors.New("site: template is missing a required element")
)

type service struct {
	cfg  Config
	deps Dependencies
	now  func() time.Time
}

// NewService wires a builder.
func NewService(cfg Config, deps Dependencies) (Service, error) {
	if deps.Posts == nil {
		return nil, ErrPostsRequired
	}
	if deps.History == nil {
		return nil, ErrHistoryRequired
	}
	if cfg.Location == nil {
		cfg.Location = history.DefaultLocation()
	}
	deps.Logger = logging.Ensure(deps.Logger)
	return &service{cfg: cfg, deps: deps, now: time.Now}, nil
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := s.now()
	result := &BuildResult{ID: uuid.New(), StartedAt: start}
	logger := logging.WithFields(s.deps.Logger, map[string]any{"build_id": result.ID.String()})
	logger.Info("site.build.started")

	if !opts.SkipHistoryUpdate {
		update, err := s.deps.History.UpdateFrom(ctx, history.DirSource{Dir: s.cfg.ContentDir})
		if err != nil {
			return nil, fmt.Errorf("site: update history: %w", err)
		}
		result.HistoryUpdate = update
	}

	names, err := s.deps.Posts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("site: list posts: %w", err)
	}
	posts, err := s.loadPosts(ctx, names)
	if err != nil {
		return nil, err
	}

	defs, err := s.deps.Posts.LoadFrontMatter(ctx, s.cfg.DefsFile)
	if err != nil {
		return nil, fmt.Errorf("site: load definitions: %w", err)
	}
	result.Definitions = defs.Raw

	tpl, err := loadTemplates(s.cfg.TemplateDir)
	if err != nil {
		return nil, err
	}
	year := s.now().Year()

	// Everything is rendered before the output directory is touched so a
	// failing build leaves the previous output in place.
	pages := make([]pendingPage, 0, len(posts)+1)
	for _, post := range posts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := renderPost(tpl, post, posts, year)
		if err != nil {
			return nil, fmt.Errorf("site: render %s: %w", post.Filename, err)
		}
		pages = append(pages, pendingPage{slug: post.Slug, name: post.Slug + ".html", content: page})
	}

	filenames := make([]string, len(posts))
	for i, post := range posts {
		filenames[i] = post.Filename
	}
	entries, err := s.deps.History.Query(ctx, filenames)
	if err != nil {
		return nil, fmt.Errorf("site: query history: %w", err)
	}
	result.History = entries

	index, err := renderIndex(tpl, entries, year)
	if err != nil {
		return nil, fmt.Errorf("site: render index: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := resetDir(s.cfg.OutputDir); err != nil {
		return nil, err
	}
	for _, page := range pages {
		written, err := s.writePage(page.slug, page.name, page.content)
		if err != nil {
			return nil, err
		}
		result.Pages = append(result.Pages, written)
	}
	if result.Index, err = s.writePage("index", "index.html", index); err != nil {
		return nil, err
	}

	if strings.TrimSpace(s.cfg.StaticDir) != "" {
		copied, err := copyTree(ctx, s.cfg.StaticDir, s.cfg.OutputDir)
		if err != nil {
			return nil, err
		}
		result.StaticFiles = copied
	}

	result.Duration = s.now().Sub(start)
	logger.Info("site.build.completed",
		"pages", len(result.Pages),
		"static_files", result.StaticFiles,
		"history_appended", len(result.HistoryUpdate.Appended),
		"duration", result.Duration,
	)
	return result, nil
}

type pendingPage struct {
	slug    string
	name    string
	content []byte
}

func (s *service) writePage(slug, name string, content []byte) (RenderedPage, error) {
	path := filepath.Join(s.cfg.OutputDir, name)
	if err := writeFile(path, content); err != nil {
		return RenderedPage{}, err
	}
	return RenderedPage{
		Slug:     slug,
		Path:     path,
		Size:     len(content),
		Checksum: checksum(content),
	}, nil
}

func (s *service) workerCount(jobs int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if jobs > 0 && workers > jobs {
		workers = jobs
	}
	return workers
}
