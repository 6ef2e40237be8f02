package history

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
)

// Source yields candidate paths for Update.
type Source interface {
	Candidates(ctx context.Context) ([]string, error)
}

// ReaderSource reads one candidate per line, e.g. piped output of
// `git diff --name-only`.
type ReaderSource struct {
	Reader io.Reader
}

func (r ReaderSource) Candidates(ctx context.Context) ([]string, error) {
	if r.Reader == nil {
		return nil, nil
	}
	var out []string
	scanner := bufio.NewScanner(r.Reader)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, sourceError(err, "read candidate list")
	}
	return out, nil
}

// DirSource lists the regular files of a directory as candidates, joined
// with the directory path.
type DirSource struct {
	Dir string
}

func (d DirSource) Candidates(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return nil, sourceError(err, "list content directory")
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.Type().IsRegular() {
			continue
		}
		out = append(out, filepath.Join(d.Dir, entry.Name()))
	}
	return out, nil
}

// SliceSource serves a fixed candidate list.
type SliceSource []string

func (s SliceSource) Candidates(context.Context) ([]string, error) {
	return append([]string(nil), s...), nil
}
