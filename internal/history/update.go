package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-press/internal/logging"
)

// UpdateResult reports what an Update did.
type UpdateResult struct {
	// Appended holds the new records in the order they were written.
	Appended []Record
	// Skipped lists filenames whose change was already recorded.
	Skipped []string
	// Missing lists filenames that could not be stat-ed.
	Missing []string
}

// UpdateFrom runs Update with the candidates produced by src.
func (s *Store) UpdateFrom(ctx context.Context, src Source) (UpdateResult, error) {
	candidates, err := src.Candidates(ctx)
	if err != nil {
		return UpdateResult{}, sourceError(err, "collect history candidates")
	}
	return s.Update(ctx, candidates)
}

type observation struct {
	filename string
	mtime    time.Time
	order    int
}

// Update records the modification time of every candidate that changed
// since its latest record. Candidates outside the content directory or not
// ending in ".md" are ignored. New records are appended sorted by
// timestamp and synced before Update returns.
func (s *Store) Update(ctx context.Context, candidates []string) (UpdateResult, error) {
	logger := logging.WithHistoryContext(s.logger, s.logPath, "update")
	var result UpdateResult

	observed := map[string]*observation{}
	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		filename, ok := s.resolve(candidate)
		if !ok {
			continue
		}
		info, err := os.Stat(s.contentPath(filename))
		if err != nil {
			logger.Warn("file removed", "path", candidate, "error", err)
			result.Missing = append(result.Missing, filename)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		if prev, ok := observed[filename]; ok {
			prev.mtime = info.ModTime().UTC()
			continue
		}
		observed[filename] = &observation{filename: filename, mtime: info.ModTime().UTC(), order: i}
	}

	if err := s.ensureLog(); err != nil {
		return result, err
	}
	lines, err := s.load(ctx)
	if err != nil {
		return result, err
	}

	for _, line := range lines {
		obs, ok := observed[line.Filename]
		if !ok {
			continue
		}
		if !line.Timestamp.Before(obs.mtime) {
			result.Skipped = append(result.Skipped, line.Filename)
			delete(observed, line.Filename)
		}
	}

	pending := make([]*observation, 0, len(observed))
	for _, obs := range observed {
		pending = append(pending, obs)
	}
	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].mtime.Equal(pending[j].mtime) {
			return pending[i].mtime.Before(pending[j].mtime)
		}
		return pending[i].order < pending[j].order
	})

	for _, obs := range pending {
		result.Appended = append(result.Appended, Record{Timestamp: obs.mtime, Filename: obs.filename})
	}
	if err := s.appendRecords(result.Appended); err != nil {
		return UpdateResult{Skipped: result.Skipped, Missing: result.Missing}, err
	}

	logger.Debug("history updated",
		"appended", len(result.Appended),
		"skipped", len(result.Skipped),
		"missing", len(result.Missing),
	)
	return result, nil
}

func (s *Store) ensureLog() error {
	if dir := filepath.Dir(s.logPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("history: create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(s.logPath, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return fmt.Errorf("history: create log: %w", err)
	}
	return f.Close()
}

func (s *Store) appendRecords(records []Record) error {
	if len(records) == 0 {
		return nil
	}

	var b strings.Builder
	if needsNewline, err := s.missingTrailingNewline(); err != nil {
		return err
	} else if needsNewline {
		b.WriteByte('\n')
	}
	for _, rec := range records {
		b.WriteString(rec.String())
		b.WriteByte('\n')
	}

	f, err := os.OpenFile(s.logPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("history: open log for append: %w", err)
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		return fmt.Errorf("history: append log: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("history: sync log: %w", err)
	}
	return f.Close()
}

// missingTrailingNewline reports whether the log ends mid-line, as happens
// after a hand edit.
func (s *Store) missingTrailingNewline() (bool, error) {
	f, err := os.Open(s.logPath)
	if err != nil {
		return false, fmt.Errorf("history: open log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("history: stat log: %w", err)
	}
	if info.Size() == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false, fmt.Errorf("history: read log tail: %w", err)
	}
	return last[0] != '\n', nil
}
