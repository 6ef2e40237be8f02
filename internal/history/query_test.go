package history

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

func entryStrings(entries []Entry) map[string][]string {
	out := make(map[string][]string, len(entries))
	for _, e := range entries {
		out[e.Date.String()] = e.Files
	}
	return out
}

func TestQueryGroupsByDate(t *testing.T) {
	env := newTestEnv(t, nil)
	env.writeLog(t,
		"2024-01-01T10:00:00Z\ta.md",
		"2024-01-01T15:00:00Z\tb.md",
		"2024-01-02T09:00:00Z\ta.md",
	)

	entries, err := env.store.Query(context.Background(), []string{"a.md", "b.md"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Date.String() != "2024-01-01" || !reflect.DeepEqual(entries[0].Files, []string{"a.md", "b.md"}) {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Date.String() != "2024-01-02" || !reflect.DeepEqual(entries[1].Files, []string{"a.md"}) {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}
}

func TestQueryMovesRepeatedFileToEnd(t *testing.T) {
	env := newTestEnv(t, nil)
	env.writeLog(t,
		"2024-01-01T08:00:00Z\ta.md",
		"2024-01-01T09:00:00Z\tb.md",
		"2024-01-01T10:00:00Z\tc.md",
		"2024-01-01T11:00:00Z\ta.md",
	)

	entries, err := env.store.Query(context.Background(), []string{"a.md", "b.md", "c.md"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if want := []string{"b.md", "c.md", "a.md"}; !reflect.DeepEqual(entries[0].Files, want) {
		t.Fatalf("expected %v, got %v", want, entries[0].Files)
	}
}

func TestQueryRestrictionFilter(t *testing.T) {
	env := newTestEnv(t, nil)
	env.writeLog(t,
		"2024-01-01T10:00:00Z\ta.md",
		"2024-01-02T10:00:00Z\tsecret.md",
		"2024-01-03T10:00:00Z\tb.md",
	)

	entries, err := env.store.Query(context.Background(), []string{"a.md", "b.md"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	got := entryStrings(entries)
	if _, ok := got["2024-01-02"]; ok || len(got) != 2 {
		t.Fatalf("restricted file leaked into %v", got)
	}

	none, err := env.store.Query(context.Background(), nil)
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no entries for empty restriction, got %v %v", none, err)
	}
}

func TestQueryExcludesSuppressedRecords(t *testing.T) {
	env := newTestEnv(t, nil)
	env.writeLog(t,
		"# 2024-01-01T10:00:00Z\ta.md",
		"2024-01-02T10:00:00Z\ta.md",
	)

	entries, err := env.store.Query(context.Background(), []string{"a.md"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 || entries[0].Date.String() != "2024-01-02" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestQuerySortsDatesAscending(t *testing.T) {
	env := newTestEnv(t, nil)
	env.writeLog(t,
		"2024-02-01T10:00:00Z\ta.md",
		"2023-12-31T10:00:00Z\tb.md",
		"2024-01-15T10:00:00Z\tc.md",
	)

	entries, err := env.store.Query(context.Background(), []string{"a.md", "b.md", "c.md"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	var dates []string
	for _, e := range entries {
		dates = append(dates, e.Date.String())
	}
	if want := []string{"2023-12-31", "2024-01-15", "2024-02-01"}; !reflect.DeepEqual(dates, want) {
		t.Fatalf("expected %v, got %v", want, dates)
	}
}

func TestQueryUsesStoreTimezone(t *testing.T) {
	env := newTestEnv(t, nil)
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	env.store.location = chicago
	env.writeLog(t, "2024-01-02T03:00:00Z\ta.md")

	entries, err := env.store.Query(context.Background(), []string{"a.md"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 || entries[0].Date.String() != "2024-01-01" {
		t.Fatalf("expected Chicago date, got %+v", entries)
	}
}

func TestQueryMalformedLogFails(t *testing.T) {
	env := newTestEnv(t, nil)
	env.writeLog(t,
		"2024-01-01T10:00:00Z\ta.md",
		"not-a-time\tunrelated.md",
	)

	_, err := env.store.Query(context.Background(), []string{"a.md"})
	if err == nil {
		t.Fatal("expected malformed log to fail the query")
	}
	if !errors.Is(err, ErrMalformedLine) {
		t.Fatalf("expected ErrMalformedLine, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryInternal) {
		t.Fatalf("expected internal category, got %v", err)
	}
	var typed *goerrors.Error
	if !goerrors.As(err, &typed) || typed.TextCode != TextCodeCorrupt {
		t.Fatalf("expected %s text code, got %v", TextCodeCorrupt, err)
	}
	if typed.Metadata["line"] != 2 {
		t.Fatalf("expected line 2 in metadata, got %v", typed.Metadata)
	}
}

func TestQueryMissingLogIsEmpty(t *testing.T) {
	env := newTestEnv(t, nil)

	entries, err := env.store.Query(context.Background(), []string{"a.md"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %+v", entries)
	}
}
