package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-press/internal/logging"
)

// CollapseResult reports how many lines survived a Collapse.
type CollapseResult struct {
	Kept    int
	Dropped int
}

// Collapse compacts the log. Per file it keeps the latest unsuppressed record
// of each calendar day and the latest suppressed record overall, and drops
// records of files no longer present in the content directory. Survivors are
// written back verbatim in ascending timestamp order. A missing log is left
// alone.
func (s *Store) Collapse(ctx context.Context) (CollapseResult, error) {
	logger := logging.WithHistoryContext(s.logger, s.logPath, "collapse")

	if _, err := os.Stat(s.logPath); os.IsNotExist(err) {
		return CollapseResult{}, nil
	}
	lines, err := s.load(ctx)
	if err != nil {
		return CollapseResult{}, err
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Timestamp.Before(lines[j].Timestamp)
	})

	seen := make(map[string]struct{}, len(lines))
	exists := map[string]bool{}
	keep := make([]bool, len(lines))
	for i := len(lines) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return CollapseResult{}, err
		}
		line := lines[i]
		key := s.groupKey(line.Record)
		if _, dup := seen[key]; dup {
			continue
		}
		present, checked := exists[line.Filename]
		if !checked {
			present = s.isRegularFile(line.Filename)
			exists[line.Filename] = present
		}
		if !present {
			continue
		}
		seen[key] = struct{}{}
		keep[i] = true
	}

	survivors := make([]string, 0, len(seen))
	for i, line := range lines {
		if keep[i] {
			survivors = append(survivors, line.text)
		}
	}

	if err := s.rewrite(strings.Join(survivors, "\n") + "\n"); err != nil {
		return CollapseResult{}, err
	}

	result := CollapseResult{Kept: len(survivors), Dropped: len(lines) - len(survivors)}
	logger.Debug("history collapsed", "kept", result.Kept, "dropped", result.Dropped)
	return result, nil
}

// groupKey buckets suppressed records by filename and unsuppressed records by
// calendar day and filename.
func (s *Store) groupKey(rec Record) string {
	if rec.Suppressed {
		return suppressedMarker + " " + rec.Filename
	}
	return DateOf(rec.Timestamp, s.location).String() + " " + rec.Filename
}

// chmodFile is swapped in tests.
var chmodFile = os.Chmod

// rewrite replaces the log through a synced temp file and a rename.
func (s *Store) rewrite(content string) error {
	dir := filepath.Dir(s.logPath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.logPath)+".*")
	if err != nil {
		return fmt.Errorf("history: create temp log: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("history: write temp log: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("history: sync temp log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("history: close temp log: %w", err)
	}
	if info, err := os.Stat(s.logPath); err == nil {
		if err := chmodFile(tmpName, info.Mode().Perm()); err != nil {
			s.logger.Warn("history log mode not preserved", "path", s.logPath, "error", err)
		}
	}
	if err := os.Rename(tmpName, s.logPath); err != nil {
		cleanup()
		return fmt.Errorf("history: replace log: %w", err)
	}
	return nil
}
