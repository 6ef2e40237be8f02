package history

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeCorrupt marks a log that contains a line that cannot be parsed.
	TextCodeCorrupt = "HISTORY_CORRUPT"
	// TextCodeSourceFailed marks a failure to enumerate candidate files.
	TextCodeSourceFailed = "HISTORY_SOURCE_FAILED"
)

var (
	// ErrMalformedLine is the root cause of every corruption error.
	ErrMalformedLine      = errors.New("history: malformed log line")
	ErrLogPathRequired    = errors.New("history: log path is required")
	ErrContentDirRequired = errors.New("history: content directory is required")
)

func corruptLogError(path string, line int, cause error) error {
	return goerrors.Wrap(
		fmt.Errorf("%w: %s:%d: %v", ErrMalformedLine, path, line, cause),
		goerrors.CategoryInternal,
		"history log is corrupt",
	).WithTextCode(TextCodeCorrupt).WithMetadata(map[string]any{
		"path": path,
		"line": line,
	})
}

func sourceError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryOperation, msg).
		WithTextCode(TextCodeSourceFailed)
}
