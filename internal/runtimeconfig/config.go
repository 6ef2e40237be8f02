package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-press/internal/history"
)

var ErrContentDirRequired = errors.New("press config: content directory is required")
var ErrHistoryFileRequired = errors.New("press config: history file is required")

// ErrHistoryTimezoneInvalid indicates the configured zone is unknown to the
// embedded time zone database.
var ErrHistoryTimezoneInvalid = errors.New("press config: history timezone is invalid")
var ErrOutputDirRequired = errors.New("press config: site output directory is required")
var ErrTemplateDirRequired = errors.New("press config: site template directory is required")
var ErrWorkersInvalid = errors.New("press config: site workers must be zero or positive")
var ErrDebounceInvalid = errors.New("press config: dev debounce must be positive")
var ErrEventPathInvalid = errors.New("press config: dev event path must start with '/'")
var ErrLoggingProviderRequired = errors.New("press config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("press config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("press config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("press config: logging format is invalid")
var ErrPlaylistTimeoutInvalid = errors.New("press config: playlist timeout must be zero or positive")

// Config aggregates every runtime setting of the generator. The yaml tags
// define the on-disk layout read by LoadFile.
type Config struct {
	Content  ContentConfig  `yaml:"content"`
	History  HistoryConfig  `yaml:"history"`
	Site     SiteConfig     `yaml:"site"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Dev      DevConfig      `yaml:"dev"`
	Logging  LoggingConfig  `yaml:"logging"`
	Playlist PlaylistConfig `yaml:"playlist"`
}

// ContentConfig locates the flat directory of markdown posts.
type ContentConfig struct {
	Dir string `yaml:"dir"`
	// DefsFile is excluded from rendering; only its front matter is read.
	DefsFile string `yaml:"defs_file"`
	Pattern  string `yaml:"pattern"`
}

// HistoryConfig locates the update-history log.
type HistoryConfig struct {
	File     string `yaml:"file"`
	Timezone string `yaml:"timezone"`
}

// SiteConfig captures output layout for builds.
type SiteConfig struct {
	OutputDir        string `yaml:"output_dir"`
	StaticDir        string `yaml:"static_dir"`
	TemplateDir      string `yaml:"template_dir"`
	Workers          int    `yaml:"workers"`
	TitleFromHeading bool   `yaml:"title_from_heading"`
}

// MarkdownConfig mirrors interfaces.ParseOptions.
type MarkdownConfig struct {
	Extensions  []string `yaml:"extensions"`
	Typographer bool     `yaml:"typographer"`
	Sanitize    bool     `yaml:"sanitize"`
	HardWraps   bool     `yaml:"hard_wraps"`
	SafeMode    bool     `yaml:"safe_mode"`
}

// DevConfig configures the live-reload development server.
type DevConfig struct {
	Addr      string        `yaml:"addr"`
	Debounce  time.Duration `yaml:"debounce"`
	EventPath string        `yaml:"event_path"`
	// WatchDirs defaults to the content, template and static directories
	// when empty.
	WatchDirs []string `yaml:"watch_dirs"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// PlaylistConfig configures the playlist import tool.
type PlaylistConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// DefaultConfig returns the layout used by the reference site: posts in md/,
// history in gen/history, output in docs/.
func DefaultConfig() Config {
	return Config{
		Content: ContentConfig{
			Dir:      "md",
			DefsFile: "defs.md",
			Pattern:  "*.md",
		},
		History: HistoryConfig{
			File:     "gen/history",
			Timezone: history.DefaultTimezone,
		},
		Site: SiteConfig{
			OutputDir:        "docs",
			StaticDir:        "gen/static",
			TemplateDir:      "gen/template",
			Workers:          0,
			TitleFromHeading: true,
		},
		Markdown: MarkdownConfig{
			Extensions:  []string{"gfm"},
			Typographer: true,
		},
		Dev: DevConfig{
			Addr:      ":8000",
			Debounce:  200 * time.Millisecond,
			EventPath: "/event",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Playlist: PlaylistConfig{
			Timeout:   30 * time.Second,
			UserAgent: "go-press/playlist",
		},
	}
}

// LoadFile overlays the YAML document at path on DefaultConfig and validates
// the result. Keys missing from the file keep their defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("press config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("press config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Location resolves History.Timezone. A blank value means
// history.DefaultTimezone.
func (cfg Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(cfg.History.Timezone)
	if name == "" {
		name = history.DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrHistoryTimezoneInvalid, name)
	}
	return loc, nil
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Content.Dir) == "" {
		return ErrContentDirRequired
	}
	if strings.TrimSpace(cfg.History.File) == "" {
		return ErrHistoryFileRequired
	}
	if _, err := cfg.Location(); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Site.OutputDir) == "" {
		return ErrOutputDirRequired
	}
	if strings.TrimSpace(cfg.Site.TemplateDir) == "" {
		return ErrTemplateDirRequired
	}
	if cfg.Site.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrWorkersInvalid, cfg.Site.Workers)
	}
	if cfg.Dev.Debounce <= 0 {
		return fmt.Errorf("%w: %s", ErrDebounceInvalid, cfg.Dev.Debounce)
	}
	if !strings.HasPrefix(cfg.Dev.EventPath, "/") {
		return fmt.Errorf("%w: %q", ErrEventPathInvalid, cfg.Dev.EventPath)
	}
	if cfg.Playlist.Timeout < 0 {
		return ErrPlaylistTimeoutInvalid
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// WatchDirs returns the directories the dev server should watch.
func (cfg Config) WatchDirs() []string {
	if len(cfg.Dev.WatchDirs) > 0 {
		return append([]string(nil), cfg.Dev.WatchDirs...)
	}
	dirs := []string{cfg.Content.Dir, cfg.Site.TemplateDir}
	if strings.TrimSpace(cfg.Site.StaticDir) != "" {
		dirs = append(dirs, cfg.Site.StaticDir)
	}
	return dirs
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
