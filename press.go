// Package press is a small static-site generator: markdown posts in, HTML
// pages and an index of recently updated posts out.
package press

import (
	"context"
	"io"
	"net/http"
	"sync"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"

	"github.com/goliatone/go-press/internal/commands"
	historycmd "github.com/goliatone/go-press/internal/commands/history"
	sitecmd "github.com/goliatone/go-press/internal/commands/site"
	"github.com/goliatone/go-press/internal/devserver"
	"github.com/goliatone/go-press/internal/di"
	"github.com/goliatone/go-press/internal/history"
	"github.com/goliatone/go-press/internal/site"
	"github.com/goliatone/go-press/pkg/interfaces"
)

type (
	// BuildResult reports what a build wrote.
	BuildResult = site.BuildResult
	// HistoryEntry is one day of the update history.
	HistoryEntry = history.Entry
	// HistoryResult carries the outcome of a history update or collapse.
	HistoryResult = historycmd.Result
	// DevServer serves the output with live reload.
	DevServer = devserver.Server
	// Option customises how New wires the module.
	Option = di.Option

	// UpdateHistoryCommand records changed posts and optionally collapses.
	UpdateHistoryCommand = historycmd.UpdateHistoryCommand
	// CollapseHistoryCommand compacts the history log.
	CollapseHistoryCommand = historycmd.CollapseHistoryCommand
	// BuildSiteCommand regenerates the output directory.
	BuildSiteCommand = sitecmd.BuildSiteCommand
)

// WithLoggerProvider overrides the provider chosen by Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return di.WithLoggerProvider(provider)
}

// WithLogWriter redirects console log output.
func WithLogWriter(w io.Writer) Option {
	return di.WithLogWriter(w)
}

// WithStdin sets the reader history candidates are read from.
func WithStdin(r io.Reader) Option {
	return di.WithStdin(r)
}

// WithHTTPClient sets the client used for playlist imports.
func WithHTTPClient(client *http.Client) Option {
	return di.WithHTTPClient(client)
}

// Module is the top level press runtime.
type Module struct {
	container *di.Container

	mu   sync.Mutex
	subs commands.Subscriptions
}

// New validates cfg and wires a Module.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Listen subscribes the module's command handlers to the process-wide
// go-command dispatcher. While listening, Build, UpdateHistory and
// CollapseHistory are sent through the dispatcher, and other code in the
// process can reach the module with Dispatch. The returned func stops
// listening. Listening twice is a no-op.
func (m *Module) Listen() (stop func(), err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subs == nil {
		subs, err := m.container.SubscribeCommands()
		if err != nil {
			return nil, err
		}
		m.subs = subs
	}
	return m.stopListening, nil
}

func (m *Module) stopListening() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs.Unsubscribe()
	m.subs = nil
}

func (m *Module) listening() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subs != nil
}

// Dispatch sends msg to whichever module is listening.
func Dispatch[T command.Message](ctx context.Context, msg T) error {
	return dispatcher.Dispatch(ctx, msg)
}

// Build regenerates the output directory. Unless skipHistoryUpdate is set
// the history log is updated from the content directory first.
func (m *Module) Build(ctx context.Context, skipHistoryUpdate bool) (*BuildResult, error) {
	var result *BuildResult
	msg := sitecmd.BuildSiteCommand{
		SkipHistoryUpdate: skipHistoryUpdate,
		ResultCallback:    func(r *site.BuildResult) { result = r },
	}
	if m.listening() {
		err := dispatcher.Dispatch(ctx, msg)
		return result, err
	}
	handler, err := m.container.BuildSiteHandler()
	if err != nil {
		return nil, err
	}
	err = handler.Execute(ctx, msg)
	return result, err
}

// UpdateHistory records changed files and then collapses the log. With
// fromStdin the candidates are read line by line from the configured stdin;
// with neither candidates nor fromStdin the content directory is listed.
func (m *Module) UpdateHistory(ctx context.Context, candidates []string, fromStdin bool) (HistoryResult, error) {
	var result HistoryResult
	msg := historycmd.UpdateHistoryCommand{
		Candidates:     candidates,
		FromStdin:      fromStdin,
		Collapse:       true,
		ResultCallback: func(r historycmd.Result) { result = r },
	}
	var err error
	if m.listening() {
		err = dispatcher.Dispatch(ctx, msg)
	} else {
		err = m.container.UpdateHistoryHandler().Execute(ctx, msg)
	}
	return result, err
}

// CollapseHistory compacts the history log.
func (m *Module) CollapseHistory(ctx context.Context) (HistoryResult, error) {
	var result HistoryResult
	msg := historycmd.CollapseHistoryCommand{
		ResultCallback: func(r historycmd.Result) { result = r },
	}
	var err error
	if m.listening() {
		err = dispatcher.Dispatch(ctx, msg)
	} else {
		err = m.container.CollapseHistoryHandler().Execute(ctx, msg)
	}
	return result, err
}

// History returns the recorded days of the given files, oldest first.
func (m *Module) History(ctx context.Context, restrictTo []string) ([]HistoryEntry, error) {
	return m.container.HistoryStore().Query(ctx, restrictTo)
}

// DevServer returns the live-reload server. An empty addr uses
// Config.Dev.Addr.
func (m *Module) DevServer(addr string) (*DevServer, error) {
	return m.container.DevServer(addr)
}

// ImportPlaylist writes a post for the playlist at url and returns its path.
func (m *Module) ImportPlaylist(ctx context.Context, url string) (string, error) {
	return m.container.PlaylistImporter().Import(ctx, url)
}
