package history

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// Config wires a Store to its log file and content directory.
type Config struct {
	// LogPath is the history log file, created on first Update.
	LogPath string
	// ContentDir is the flat directory holding the tracked markdown files.
	ContentDir string
	// Location decides which calendar day a timestamp belongs to. Defaults
	// to DefaultLocation.
	Location *time.Location
	Logger   interfaces.Logger
}

// DefaultTimezone is the civil zone used when Config.Location is nil.
const DefaultTimezone = "America/Chicago"

// DefaultLocation loads DefaultTimezone, falling back to UTC when the zone
// database is unavailable.
func DefaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Store is the update-history log. It assumes a single writer; concurrent
// Update calls against the same file can interleave.
type Store struct {
	logPath    string
	contentDir string
	location   *time.Location
	logger     interfaces.Logger
}

// NewStore validates cfg and returns a Store bound to it.
func NewStore(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.LogPath) == "" {
		return nil, ErrLogPathRequired
	}
	if strings.TrimSpace(cfg.ContentDir) == "" {
		return nil, ErrContentDirRequired
	}

	loc := cfg.Location
	if loc == nil {
		loc = DefaultLocation()
	}

	return &Store{
		logPath:    filepath.Clean(cfg.LogPath),
		contentDir: filepath.Clean(cfg.ContentDir),
		location:   loc,
		logger:     logging.Ensure(cfg.Logger),
	}, nil
}

// Path returns the log file path.
func (s *Store) Path() string { return s.logPath }

// ContentDir returns the content directory the store tracks.
func (s *Store) ContentDir() string { return s.contentDir }

// Location returns the zone used for calendar-day computations.
func (s *Store) Location() *time.Location { return s.location }

// Records returns every record in the log in file order. A missing log
// yields no records.
func (s *Store) Records(ctx context.Context) ([]Record, error) {
	lines, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Record, len(lines))
	for i, line := range lines {
		out[i] = line.Record
	}
	return out, nil
}

func (s *Store) load(ctx context.Context) ([]logLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.logPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history: read %s: %w", s.logPath, err)
	}
	return parseLog(s.logPath, string(data))
}

// resolve maps a candidate path to a filename inside the content directory.
// Paths outside it, nested paths and non-markdown names are rejected.
func (s *Store) resolve(candidate string) (string, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || !strings.HasSuffix(candidate, ".md") {
		return "", false
	}
	root, err := filepath.Abs(s.contentDir)
	if err != nil {
		return "", false
	}
	path, err := filepath.Abs(candidate)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	if strings.ContainsRune(rel, filepath.Separator) {
		return "", false
	}
	return rel, true
}

func (s *Store) contentPath(filename string) string {
	return filepath.Join(s.contentDir, filename)
}

func (s *Store) isRegularFile(filename string) bool {
	info, err := os.Stat(s.contentPath(filename))
	return err == nil && info.Mode().IsRegular()
}
