package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/internal/logging/console"
)

func TestConsoleLogger_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 14, 15, 9, 26, 535897000, time.UTC)

	minLevel := console.LevelDebug
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
		MinLevel: &minLevel,
	})

	logger := provider.GetLogger("press.history")
	logger = logging.WithFields(logger, map[string]any{"module": "press.history"})
	ctx := logging.ContextWithFields(context.Background(), map[string]any{
		"build_id": "b-1",
	})
	logger = logger.WithContext(ctx)

	logger.Warn("file removed", "path", "md/gone.md", "error", errors.New("no such file"))

	got := strings.TrimSpace(buf.String())
	want := `2024-03-14T15:09:26.535897Z WARN file removed build_id=b-1 error="no such file" logger=press.history module=press.history path=md/gone.md`
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	minLevel := console.ParseLevel("info")
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		MinLevel: &minLevel,
	})

	logger := provider.GetLogger("press.test")
	logger.Debug("ignored.debug", "foo", "bar")
	logger.Info("included.info", "foo", "bar")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected single log line, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "included.info") {
		t.Fatalf("expected info log to be written, got %s", lines[0])
	}
}

func TestConsoleLogger_DanglingArgumentIsKept(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})

	provider.GetLogger("press.test").Info("odd", "key", "value", "orphan")

	if !strings.Contains(buf.String(), "arg_2=orphan") {
		t.Fatalf("expected positional field for orphan argument, got %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]console.Level{
		"trace":   console.LevelTrace,
		"DEBUG":   console.LevelDebug,
		"warning": console.LevelWarn,
		"error":   console.LevelError,
		"":        console.LevelInfo,
		"bogus":   console.LevelInfo,
	}
	for input, want := range cases {
		if got := console.ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
