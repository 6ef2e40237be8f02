package markdown

import (
	"bytes"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-press/pkg/interfaces"
)

// yamlFormat recognises a block delimited by "---" lines. Leading blank lines
// before the opening delimiter are skipped.
var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// ParseFrontMatter splits source into its front matter and Markdown body.
// Sources without a front matter block return an empty FrontMatter and the
// unchanged body.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var raw map[string]any

	body, err := frontmatter.Parse(bytes.NewReader(source), &raw, yamlFormat)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return toFrontMatter(raw), body, nil
}

// BuildDocument assembles an interfaces.Document. BodyHTML is left empty so
// callers can render lazily.
func BuildDocument(path string, source []byte, modified time.Time) (*interfaces.Document, error) {
	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &interfaces.Document{
		FilePath:     path,
		FrontMatter:  fm,
		Body:         body,
		LastModified: modified,
	}, nil
}

func toFrontMatter(raw map[string]any) interfaces.FrontMatter {
	fm := interfaces.FrontMatter{Raw: map[string]any{}}
	for key, value := range raw {
		fm.Raw[key] = value
	}

	switch title := raw["title"].(type) {
	case nil:
	case string:
		fm.Title = title
	default:
		fm.Title = fmt.Sprint(title)
	}

	switch date := raw["date"].(type) {
	case nil:
	case string:
		fm.Date, fm.HasDate = date, date != ""
	case time.Time:
		fm.Date, fm.HasDate = date.Format(time.RFC3339Nano), true
	default:
		fm.Date, fm.HasDate = fmt.Sprint(date), true
	}

	return fm
}
