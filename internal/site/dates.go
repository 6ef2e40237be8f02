package site

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-press/internal/history"
)

var longMonths = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var shortMonths = [...]string{
	"Jan", "Feb", "Mar", "Apr", "May", "June",
	"July", "Aug", "Sept", "Oct", "Nov", "Dec",
}

// FormatLong renders d as "2 January 2006".
func FormatLong(d history.Date) string {
	return fmt.Sprintf("%d %s %d", d.Day, longMonths[d.Month-1], d.Year)
}

// FormatShort renders d as "Jan 2", with "June", "July" and "Sept" spelled
// out.
func FormatShort(d history.Date) string {
	return fmt.Sprintf("%s %d", shortMonths[d.Month-1], d.Day)
}

// parsePostDate reads a front matter date. A bare YYYY-MM-DD is taken as the
// civil date it names; anything carrying a time is converted to loc first.
func parsePostDate(value string, loc *time.Location) (history.Date, error) {
	value = strings.TrimSpace(value)
	if d, err := history.ParseDate(value); err == nil {
		return d, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateTime, "2006-01-02 15:04:05 -0700 MST"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return history.DateOf(ts, loc), nil
		}
	}
	return history.Date{}, fmt.Errorf("site: unrecognised date %q", value)
}
