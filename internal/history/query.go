package history

import (
	"context"
	"slices"

	"github.com/goliatone/go-press/internal/logging"
)

// Entry lists the files changed on one calendar day, most recently changed
// last.
type Entry struct {
	Date  Date
	Files []string
}

// Query groups the unsuppressed records of the files in restrictTo by
// calendar day. Entries are sorted oldest first. Within a day a file that
// changed more than once is listed at the position of its latest change.
// Any unparsable line in the log fails the query.
func (s *Store) Query(ctx context.Context, restrictTo []string) ([]Entry, error) {
	lines, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	allowed := make(map[string]struct{}, len(restrictTo))
	for _, name := range restrictTo {
		allowed[name] = struct{}{}
	}

	byDate := map[Date][]string{}
	for _, line := range lines {
		if line.Suppressed {
			continue
		}
		if _, ok := allowed[line.Filename]; !ok {
			continue
		}
		date := DateOf(line.Timestamp, s.location)
		files := slices.DeleteFunc(byDate[date], func(name string) bool {
			return name == line.Filename
		})
		byDate[date] = append(files, line.Filename)
	}

	entries := make([]Entry, 0, len(byDate))
	for date, files := range byDate {
		entries = append(entries, Entry{Date: date, Files: files})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return a.Date.Compare(b.Date)
	})

	logging.WithHistoryContext(s.logger, s.logPath, "query").
		Debug("history queried", "entries", len(entries), "restricted_to", len(restrictTo))
	return entries, nil
}
