package playlist

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidURL   = "PLAYLIST_INVALID_URL"
	TextCodeFetchFailed  = "PLAYLIST_FETCH_FAILED"
	TextCodeMissingMeta  = "PLAYLIST_METADATA_MISSING"
	TextCodeWriteFailed  = "PLAYLIST_WRITE_FAILED"
	playlistHost         = "open.spotify.com"
	playlistPathPrefix   = "/playlist"
	trackingQueryParam   = "si"
	descriptionSeparator = " · "
)

var (
	ErrInvalidURL      = errors.New("must be a Spotify playlist url")
	ErrFetchFailed     = errors.New("fetch failed")
	ErrMissingMetadata = errors.New("page metadata missing")
)

func invalidURLError(raw string, cause error) error {
	return goerrors.Wrap(fmt.Errorf("%w: %v", ErrInvalidURL, cause), goerrors.CategoryValidation, "invalid playlist url").
		WithTextCode(TextCodeInvalidURL).
		WithMetadata(map[string]any{"url": raw})
}

func fetchError(target string, cause error) error {
	return goerrors.Wrap(fmt.Errorf("%w: %s: %w", ErrFetchFailed, target, cause), goerrors.CategoryExternal, "playlist fetch failed").
		WithTextCode(TextCodeFetchFailed).
		WithMetadata(map[string]any{"url": target})
}

func missingMetaError(target, name string) error {
	return goerrors.Wrap(fmt.Errorf("%w: %s on %s", ErrMissingMetadata, name, target), goerrors.CategoryExternal, "playlist page incomplete").
		WithTextCode(TextCodeMissingMeta).
		WithMetadata(map[string]any{"url": target, "meta": name})
}

func writeError(path string, cause error) error {
	return goerrors.Wrap(cause, goerrors.CategoryOperation, "playlist post could not be written").
		WithTextCode(TextCodeWriteFailed).
		WithMetadata(map[string]any{"path": path})
}
