package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

func TestUpdateCreatesLogAndAppends(t *testing.T) {
	env := newTestEnv(t, nil)
	mtime := mustTime(t, "2024-01-01T10:00:00Z")
	env.touch(t, "a.md", mtime)

	result, err := env.store.Update(context.Background(), []string{filepath.Join(env.content, "a.md")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(result.Appended) != 1 || result.Appended[0].Filename != "a.md" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := env.readLog(t); got != "2024-01-01T10:00:00Z\ta.md\n" {
		t.Fatalf("unexpected log %q", got)
	}
}

func TestUpdateCreatesEmptyLogWithoutCandidates(t *testing.T) {
	env := newTestEnv(t, nil)

	if _, err := env.store.Update(context.Background(), nil); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := env.readLog(t); got != "" {
		t.Fatalf("expected empty log, got %q", got)
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	env := newTestEnv(t, nil)
	env.touch(t, "a.md", mustTime(t, "2024-01-01T10:00:00Z"))
	env.touch(t, "b.md", mustTime(t, "2024-01-01T11:00:00Z"))
	src := DirSource{Dir: env.content}

	if _, err := env.store.UpdateFrom(context.Background(), src); err != nil {
		t.Fatalf("first Update: %v", err)
	}
	first := env.readLog(t)

	result, err := env.store.UpdateFrom(context.Background(), src)
	if err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if len(result.Appended) != 0 || len(result.Skipped) != 2 {
		t.Fatalf("expected nothing appended on second run, got %+v", result)
	}
	if second := env.readLog(t); second != first {
		t.Fatalf("log changed between runs:\n%q\n%q", first, second)
	}
}

func TestUpdateIsMonotonic(t *testing.T) {
	env := newTestEnv(t, nil)
	env.writeLog(t, "2024-01-01T10:00:00Z\ta.md")
	latest := mustTime(t, "2024-03-01T08:30:00.5Z")
	env.touch(t, "a.md", latest)

	if _, err := env.store.Update(context.Background(), []string{filepath.Join(env.content, "a.md")}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	records, err := env.store.Records(context.Background())
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	var newest time.Time
	for _, rec := range records {
		if rec.Filename == "a.md" && rec.Timestamp.After(newest) {
			newest = rec.Timestamp
		}
	}
	if newest.Before(latest) {
		t.Fatalf("latest record %s is older than mtime %s", newest, latest)
	}
}

func TestUpdateSuppressedRecordBlocksReinsertion(t *testing.T) {
	env := newTestEnv(t, nil)
	env.writeLog(t, "# 2024-02-01T00:00:00Z\ta.md")
	env.touch(t, "a.md", mustTime(t, "2024-01-15T00:00:00Z"))

	result, err := env.store.Update(context.Background(), []string{filepath.Join(env.content, "a.md")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(result.Appended) != 0 {
		t.Fatalf("expected suppressed record to block insert, got %+v", result.Appended)
	}
	if got := env.readLog(t); got != "# 2024-02-01T00:00:00Z\ta.md\n" {
		t.Fatalf("log should be unchanged, got %q", got)
	}
}

func TestUpdateEqualTimestampIsAlreadyRecorded(t *testing.T) {
	env := newTestEnv(t, nil)
	env.writeLog(t, "2024-01-15T00:00:00Z\ta.md")
	env.touch(t, "a.md", mustTime(t, "2024-01-15T00:00:00Z"))

	result, err := env.store.Update(context.Background(), []string{filepath.Join(env.content, "a.md")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(result.Appended) != 0 {
		t.Fatalf("expected equal timestamp to count as recorded, got %+v", result.Appended)
	}
}

func TestUpdateSortsNewRecordsByTimestamp(t *testing.T) {
	env := newTestEnv(t, nil)
	env.touch(t, "late.md", mustTime(t, "2024-01-03T00:00:00Z"))
	env.touch(t, "early.md", mustTime(t, "2024-01-01T00:00:00Z"))
	env.touch(t, "middle.md", mustTime(t, "2024-01-02T00:00:00Z"))

	candidates := []string{
		filepath.Join(env.content, "late.md"),
		filepath.Join(env.content, "early.md"),
		filepath.Join(env.content, "middle.md"),
	}
	if _, err := env.store.Update(context.Background(), candidates); err != nil {
		t.Fatalf("Update: %v", err)
	}

	want := strings.Join([]string{
		"2024-01-01T00:00:00Z\tearly.md",
		"2024-01-02T00:00:00Z\tmiddle.md",
		"2024-01-03T00:00:00Z\tlate.md",
	}, "\n") + "\n"
	if got := env.readLog(t); got != want {
		t.Fatalf("unexpected log order:\n%s\nwant:\n%s", got, want)
	}
}

func TestUpdateIgnoresForeignCandidates(t *testing.T) {
	env := newTestEnv(t, nil)
	if err := os.WriteFile(filepath.Join(env.content, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	outside := filepath.Join(env.root, "outside.md")
	if err := os.WriteFile(outside, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Mkdir(filepath.Join(env.content, "dir.md"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	result, err := env.store.Update(context.Background(), []string{
		filepath.Join(env.content, "notes.txt"),
		outside,
		filepath.Join(env.content, "dir.md"),
		"",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(result.Appended)+len(result.Missing)+len(result.Skipped) != 0 {
		t.Fatalf("expected all candidates ignored, got %+v", result)
	}
}

func TestUpdateWarnsAndSkipsMissingFiles(t *testing.T) {
	logger := &recordingLogger{}
	env := newTestEnv(t, logger)
	env.touch(t, "a.md", mustTime(t, "2024-01-01T00:00:00Z"))

	result, err := env.store.Update(context.Background(), []string{
		filepath.Join(env.content, "gone.md"),
		filepath.Join(env.content, "a.md"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(result.Missing) != 1 || result.Missing[0] != "gone.md" {
		t.Fatalf("expected gone.md reported missing, got %+v", result)
	}
	if len(result.Appended) != 1 || result.Appended[0].Filename != "a.md" {
		t.Fatalf("expected a.md appended, got %+v", result.Appended)
	}
	if len(logger.warnings) != 1 || logger.warnings[0] != "file removed" {
		t.Fatalf("expected a single file removed warning, got %v", logger.warnings)
	}
}

func TestUpdateFromReaderSource(t *testing.T) {
	env := newTestEnv(t, nil)
	env.touch(t, "a.md", mustTime(t, "2024-01-01T00:00:00Z"))

	input := filepath.Join(env.content, "a.md") + "\n" + filepath.Join(env.content, "a.md") + "\nREADME\n"
	result, err := env.store.UpdateFrom(context.Background(), ReaderSource{Reader: strings.NewReader(input)})
	if err != nil {
		t.Fatalf("UpdateFrom: %v", err)
	}
	if len(result.Appended) != 1 {
		t.Fatalf("expected duplicate candidates to collapse, got %+v", result.Appended)
	}
}

func TestUpdateFromMissingDirectoryFails(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.store.UpdateFrom(context.Background(), DirSource{Dir: filepath.Join(env.root, "absent")})
	if err == nil {
		t.Fatal("expected source error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryOperation) {
		t.Fatalf("expected operation category, got %v", err)
	}
	var typed *goerrors.Error
	if !goerrors.As(err, &typed) || typed.TextCode != TextCodeSourceFailed {
		t.Fatalf("expected %s text code, got %v", TextCodeSourceFailed, err)
	}
}

func TestUpdateRepairsMissingTrailingNewline(t *testing.T) {
	env := newTestEnv(t, nil)
	if err := os.MkdirAll(filepath.Dir(env.log), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(env.log, []byte("2024-01-01T00:00:00Z\tb.md"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	env.touch(t, "a.md", mustTime(t, "2024-01-02T00:00:00Z"))

	if _, err := env.store.Update(context.Background(), []string{filepath.Join(env.content, "a.md")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := "2024-01-01T00:00:00Z\tb.md\n2024-01-02T00:00:00Z\ta.md\n"
	if got := env.readLog(t); got != want {
		t.Fatalf("unexpected log %q", got)
	}
}

func TestUpdateRejectsCorruptLog(t *testing.T) {
	env := newTestEnv(t, nil)
	env.writeLog(t, "garbage")
	env.touch(t, "a.md", mustTime(t, "2024-01-02T00:00:00Z"))

	_, err := env.store.Update(context.Background(), []string{filepath.Join(env.content, "a.md")})
	if !errors.Is(err, ErrMalformedLine) {
		t.Fatalf("expected ErrMalformedLine, got %v", err)
	}
	if got := env.readLog(t); got != "garbage\n" {
		t.Fatalf("corrupt log must not be modified, got %q", got)
	}
}

func TestUpdateHonoursCancelledContext(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := env.store.Update(ctx, []string{"md/a.md"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
