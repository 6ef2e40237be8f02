// Package playlist turns a public Spotify playlist page into a markdown
// post listing its tracks.
package playlist

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-press/internal/dom"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/pkg/interfaces"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "go-press/playlist"
)

// Config wires an Importer.
type Config struct {
	// ContentDir receives the generated post.
	ContentDir string
	Timeout    time.Duration
	UserAgent  string
	Client     *http.Client
	Now        func() time.Time
	Logger     interfaces.Logger
}

// Track is one entry of a playlist.
type Track struct {
	Title  string
	Artist string
	Album  string
}

// Playlist is the scraped playlist page.
type Playlist struct {
	Title  string
	Tracks []Track
}

// Importer fetches playlists and writes them as posts.
type Importer struct {
	contentDir string
	userAgent  string
	client     *http.Client
	now        func() time.Time
	logger     interfaces.Logger
}

func NewImporter(cfg Config) *Importer {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Importer{
		contentDir: cfg.ContentDir,
		userAgent:  userAgent,
		client:     client,
		now:        now,
		logger:     logging.Ensure(cfg.Logger),
	}
}

// Import fetches the playlist at rawURL and writes it to the content
// directory. It returns the path written.
func (i *Importer) Import(ctx context.Context, rawURL string) (string, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return "", err
	}
	list, err := i.Fetch(ctx, u.String())
	if err != nil {
		return "", err
	}

	post, err := Render(list, i.now())
	if err != nil {
		return "", err
	}
	path := filepath.Join(i.contentDir, FileName(list.Title))
	if err := os.WriteFile(path, []byte(post), 0o644); err != nil {
		return "", writeError(path, err)
	}
	i.logger.Info("playlist.imported", "path", path, "tracks", len(list.Tracks))
	return path, nil
}

// Fetch scrapes the playlist page and then every track page it lists, in
// order. The first failure aborts the fetch.
func (i *Importer) Fetch(ctx context.Context, playlistURL string) (*Playlist, error) {
	doc, err := i.page(ctx, playlistURL)
	if err != nil {
		return nil, err
	}
	title, ok := metaContent(doc, "property", "og:title")
	if !ok {
		return nil, missingMetaError(playlistURL, "og:title")
	}

	list := &Playlist{Title: title}
	for _, song := range metaContents(doc, "name", "music:song") {
		track, err := i.track(ctx, song)
		if err != nil {
			return nil, err
		}
		list.Tracks = append(list.Tracks, track)
		i.logger.Debug("playlist.track", "number", len(list.Tracks), "title", track.Title)
	}
	return list, nil
}

func (i *Importer) track(ctx context.Context, trackURL string) (Track, error) {
	doc, err := i.page(ctx, trackURL)
	if err != nil {
		return Track{}, err
	}
	title, ok := metaContent(doc, "property", "og:title")
	if !ok {
		return Track{}, missingMetaError(trackURL, "og:title")
	}
	description, ok := metaContent(doc, "property", "og:description")
	if !ok {
		return Track{}, missingMetaError(trackURL, "og:description")
	}
	parts := strings.Split(description, descriptionSeparator)
	track := Track{Title: title, Artist: parts[0]}
	if len(parts) > 1 {
		track.Album = parts[1]
	}
	return track, nil
}

func (i *Importer) page(ctx context.Context, target string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fetchError(target, err)
	}
	req.Header.Set("User-Agent", i.userAgent)

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fetchError(target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fetchError(target, fmt.Errorf("status %d", resp.StatusCode))
	}

	doc, err := dom.Parse(resp.Body)
	if err != nil {
		return nil, fetchError(target, err)
	}
	return doc, nil
}

func isMeta(attr, value string) dom.Matcher {
	return dom.All(dom.Tag(atom.Meta), func(n *html.Node) bool {
		got, ok := dom.Attr(n, attr)
		return ok && got == value
	})
}

func metaContent(doc *html.Node, attr, value string) (string, bool) {
	n := dom.Find(doc, isMeta(attr, value))
	if n == nil {
		return "", false
	}
	return dom.Attr(n, "content")
}

func metaContents(doc *html.Node, attr, value string) []string {
	var out []string
	for _, n := range dom.FindAll(doc, isMeta(attr, value)) {
		if content, ok := dom.Attr(n, "content"); ok && content != "" {
			out = append(out, content)
		}
	}
	return out
}

// FileName derives the post file name from a playlist title.
func FileName(title string) string {
	name, err := slug.Normalize(title)
	if err != nil || name == "" {
		name = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(title), " ", "-"))
	}
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '-'
		}
		return r
	}, name)
	name = strings.Trim(name, ".-")
	if name == "" {
		name = "playlist"
	}
	return name + ".md"
}

type frontMatter struct {
	Title string `yaml:"title"`
	Date  int64  `yaml:"date"`
}

// Render formats list as a post. The date is written as Unix milliseconds.
func Render(list *Playlist, created time.Time) (string, error) {
	header, err := yaml.Marshal(frontMatter{Title: list.Title, Date: created.UnixMilli()})
	if err != nil {
		return "", fmt.Errorf("playlist: encode front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n")
	for n, track := range list.Tracks {
		fmt.Fprintf(&b, "### %d. %s — %s\n\n*%s*\n\n\n\n", n+1, track.Title, track.Artist, track.Album)
	}
	return b.String(), nil
}
