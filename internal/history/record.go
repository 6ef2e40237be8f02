package history

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const (
	fieldSeparator   = "\t"
	suppressedMarker = "#"
)

// Record is one observation of a file's modification time.
type Record struct {
	Timestamp time.Time
	Filename  string
	// Suppressed records still block stale re-insertion but never show up
	// in query results.
	Suppressed bool
}

// String renders the record as a log line without the trailing newline.
func (r Record) String() string {
	var b strings.Builder
	if r.Suppressed {
		b.WriteString(suppressedMarker + " ")
	}
	b.WriteString(r.Timestamp.UTC().Format(time.RFC3339Nano))
	b.WriteString(fieldSeparator)
	b.WriteString(r.Filename)
	return b.String()
}

// ParseRecord parses a single log line. The line must not include its
// newline terminator.
func ParseRecord(line string) (Record, error) {
	var rec Record

	rest := line
	if strings.HasPrefix(rest, suppressedMarker) {
		rec.Suppressed = true
		rest = strings.TrimLeftFunc(rest[len(suppressedMarker):], unicode.IsSpace)
	}

	stamp, filename, ok := strings.Cut(rest, fieldSeparator)
	if !ok {
		return Record{}, fmt.Errorf("missing tab separator")
	}
	if filename == "" {
		return Record{}, fmt.Errorf("missing filename")
	}

	ts, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return Record{}, fmt.Errorf("invalid timestamp %q: %w", stamp, err)
	}

	rec.Timestamp = ts.UTC()
	rec.Filename = filename
	return rec, nil
}

// logLine keeps the verbatim text of a parsed line so compaction can write
// surviving lines back untouched.
type logLine struct {
	Record
	text   string
	number int
}

func parseLog(path string, content string) ([]logLine, error) {
	raw := strings.Split(content, "\n")
	lines := make([]logLine, 0, len(raw))
	for i, text := range raw {
		text = strings.TrimSuffix(text, "\r")
		if text == "" {
			continue
		}
		rec, err := ParseRecord(text)
		if err != nil {
			return nil, corruptLogError(path, i+1, err)
		}
		lines = append(lines, logLine{Record: rec, text: text, number: i + 1})
	}
	return lines, nil
}
