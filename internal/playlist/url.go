package playlist

import (
	"errors"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// ParseURL validates a playlist link and strips its share-tracking
// parameter.
func ParseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if err := validation.Validate(raw, validation.Required, is.URL); err != nil {
		return nil, invalidURLError(raw, err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, invalidURLError(raw, err)
	}
	if u.Hostname() != playlistHost || !strings.HasPrefix(u.Path, playlistPathPrefix) {
		return nil, invalidURLError(raw, errors.New("not a playlist link"))
	}

	query := u.Query()
	query.Del(trackingQueryParam)
	u.RawQuery = query.Encode()
	return u, nil
}
