// Package di wires the press services from a runtime configuration.
package di

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-command/dispatcher"

	"github.com/goliatone/go-press/internal/commands"
	historycmd "github.com/goliatone/go-press/internal/commands/history"
	sitecmd "github.com/goliatone/go-press/internal/commands/site"
	"github.com/goliatone/go-press/internal/devserver"
	"github.com/goliatone/go-press/internal/history"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/internal/logging/console"
	"github.com/goliatone/go-press/internal/logging/gologger"
	"github.com/goliatone/go-press/internal/markdown"
	"github.com/goliatone/go-press/internal/playlist"
	"github.com/goliatone/go-press/internal/runtimeconfig"
	"github.com/goliatone/go-press/internal/site"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// Container holds the configured services. Services that touch the
// filesystem on construction are built on first use.
type Container struct {
	cfg            runtimeconfig.Config
	location       *time.Location
	loggerProvider interfaces.LoggerProvider
	logWriter      io.Writer
	stdin          io.Reader
	httpClient     *http.Client

	history *history.Store

	siteOnce sync.Once
	site     site.Service
	siteErr  error
}

// Option mutates the container before services are wired.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected by the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithLogWriter sends console provider output to w instead of stderr.
func WithLogWriter(w io.Writer) Option {
	return func(c *Container) {
		c.logWriter = w
	}
}

// WithStdin sets the reader used for stdin history candidates.
func WithStdin(r io.Reader) Option {
	return func(c *Container) {
		c.stdin = r
	}
}

// WithHTTPClient sets the client used by the playlist importer.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Container) {
		c.httpClient = client
	}
}

// WithSiteService replaces the site builder.
func WithSiteService(svc site.Service) Option {
	return func(c *Container) {
		c.siteOnce.Do(func() { c.site = svc })
	}
}

// NewContainer validates cfg and wires the services that need no I/O.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	c := &Container{cfg: cfg, location: location, stdin: os.Stdin}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.loggerProvider == nil {
		provider, err := c.configureLoggerProvider()
		if err != nil {
			return nil, err
		}
		c.loggerProvider = provider
	}

	store, err := history.NewStore(history.Config{
		LogPath:    cfg.History.File,
		ContentDir: cfg.Content.Dir,
		Location:   location,
		Logger:     logging.HistoryLogger(c.loggerProvider),
	})
	if err != nil {
		return nil, err
	}
	c.history = store
	return c, nil
}

func (c *Container) configureLoggerProvider() (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(c.cfg.Logging.Provider)) {
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     c.cfg.Logging.Level,
			Format:    c.cfg.Logging.Format,
			AddSource: c.cfg.Logging.AddSource,
			Focus:     c.cfg.Logging.Focus,
		})
	case "", "console":
		level := console.ParseLevel(c.cfg.Logging.Level)
		return console.NewProvider(console.Options{Writer: c.logWriter, MinLevel: &level}), nil
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, c.cfg.Logging.Provider)
	}
}

// Config returns the configuration the container was built from.
func (c *Container) Config() runtimeconfig.Config { return c.cfg }

// LoggerProvider returns the active logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

// HistoryStore returns the history log.
func (c *Container) HistoryStore() *history.Store { return c.history }

// SiteService returns the site builder, creating the markdown service on
// first use.
func (c *Container) SiteService() (site.Service, error) {
	c.siteOnce.Do(func() {
		posts, err := markdown.NewService(markdown.Config{
			Dir:     c.cfg.Content.Dir,
			Pattern: c.cfg.Content.Pattern,
			Exclude: []string{c.cfg.Content.DefsFile},
			Parser: interfaces.ParseOptions{
				Extensions:  c.cfg.Markdown.Extensions,
				Typographer: c.cfg.Markdown.Typographer,
				Sanitize:    c.cfg.Markdown.Sanitize,
				HardWraps:   c.cfg.Markdown.HardWraps,
				SafeMode:    c.cfg.Markdown.SafeMode,
			},
		}, nil)
		if err != nil {
			c.siteErr = err
			return
		}
		c.site, c.siteErr = site.NewService(site.Config{
			ContentDir:       c.cfg.Content.Dir,
			DefsFile:         c.cfg.Content.DefsFile,
			OutputDir:        c.cfg.Site.OutputDir,
			StaticDir:        c.cfg.Site.StaticDir,
			TemplateDir:      c.cfg.Site.TemplateDir,
			Workers:          c.cfg.Site.Workers,
			TitleFromHeading: c.cfg.Site.TitleFromHeading,
			Location:         c.location,
		}, site.Dependencies{
			Posts:   posts,
			History: c.history,
			Logger:  logging.SiteLogger(c.loggerProvider),
		})
	})
	return c.site, c.siteErr
}

// UpdateHistoryHandler returns the history update command handler.
func (c *Container) UpdateHistoryHandler() *historycmd.UpdateHistoryHandler {
	return historycmd.NewUpdateHistoryHandler(c.history, c.stdin, commands.CommandLogger(c.loggerProvider, "history"))
}

// CollapseHistoryHandler returns the history collapse command handler.
func (c *Container) CollapseHistoryHandler() *historycmd.CollapseHistoryHandler {
	return historycmd.NewCollapseHistoryHandler(c.history, commands.CommandLogger(c.loggerProvider, "history"))
}

// BuildSiteHandler returns the build command handler. Extra options are
// applied after the defaults.
func (c *Container) BuildSiteHandler(opts ...commands.HandlerOption[sitecmd.BuildSiteCommand]) (*sitecmd.BuildSiteHandler, error) {
	svc, err := c.SiteService()
	if err != nil {
		return nil, err
	}
	return sitecmd.NewBuildSiteHandler(svc, commands.CommandLogger(c.loggerProvider, "site"), opts...), nil
}

// SubscribeCommands registers the history and build handlers with the
// process-wide go-command dispatcher. Only one container should be
// subscribed at a time; call Unsubscribe on the result to release it.
func (c *Container) SubscribeCommands() (commands.Subscriptions, error) {
	build, err := c.BuildSiteHandler()
	if err != nil {
		return nil, err
	}
	return commands.Subscriptions{
		dispatcher.SubscribeCommand(c.UpdateHistoryHandler()),
		dispatcher.SubscribeCommand(c.CollapseHistoryHandler()),
		dispatcher.SubscribeCommand(build),
	}, nil
}

// DevServer returns a dev server whose rebuilds go through the build
// command without a timeout.
func (c *Container) DevServer(addr string) (*devserver.Server, error) {
	handler, err := c.BuildSiteHandler(commands.WithTimeout[sitecmd.BuildSiteCommand](0))
	if err != nil {
		return nil, err
	}
	if addr == "" {
		addr = c.cfg.Dev.Addr
	}
	return devserver.New(devserver.Config{
		Addr:      addr,
		OutputDir: c.cfg.Site.OutputDir,
		EventPath: c.cfg.Dev.EventPath,
		Debounce:  c.cfg.Dev.Debounce,
		WatchDirs: c.cfg.WatchDirs(),
	}, func(ctx context.Context) error {
		return handler.Execute(ctx, sitecmd.BuildSiteCommand{})
	}, logging.DevServerLogger(c.loggerProvider))
}

// PlaylistImporter returns the playlist import tool writing into the content
// directory.
func (c *Container) PlaylistImporter() *playlist.Importer {
	return playlist.NewImporter(playlist.Config{
		ContentDir: c.cfg.Content.Dir,
		Timeout:    c.cfg.Playlist.Timeout,
		UserAgent:  c.cfg.Playlist.UserAgent,
		Client:     c.httpClient,
		Logger:     logging.PlaylistLogger(c.loggerProvider),
	})
}
