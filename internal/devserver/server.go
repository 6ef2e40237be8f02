// Package devserver serves the generated site, rebuilds it when sources
// change and tells the open page to reload over server-sent events.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/pkg/interfaces"
)

const (
	DefaultAddr      = ":8000"
	DefaultEventPath = "/event"

	shutdownTimeout = 5 * time.Second
)

// Config describes what the dev server serves and watches.
type Config struct {
	Addr      string
	OutputDir string
	EventPath string
	Debounce  time.Duration
	WatchDirs []string
}

// Server ties the file server, the event stream, the watcher and the
// rebuilder together.
type Server struct {
	cfg       Config
	build     BuildFunc
	logger    interfaces.Logger
	broker    *Broker
	rebuilder *Rebuilder
	router    chi.Router
}

// New builds a Server. build runs once before serving and again after every
// debounced change.
func New(cfg Config, build BuildFunc, logger interfaces.Logger) (*Server, error) {
	if build == nil {
		return nil, errors.New("devserver: build func is required")
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return nil, errors.New("devserver: output dir is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.EventPath == "" {
		cfg.EventPath = DefaultEventPath
	}

	s := &Server{
		cfg:    cfg,
		build:  build,
		logger: logging.Ensure(logger),
		broker: &Broker{},
	}
	s.rebuilder = NewRebuilder(RebuilderConfig{
		Build:    build,
		Notify:   func() { s.broker.Notify() },
		Debounce: cfg.Debounce,
		Logger:   s.logger,
	})
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	events := strings.TrimSuffix(s.cfg.EventPath, "/")
	r.Get(events, s.handleEvents)
	r.Get(events+"/*", s.handleEvents)

	files := http.FileServer(http.Dir(s.cfg.OutputDir))
	inject := injectReload(ReloadSnippet(s.cfg.EventPath), func(err error) {
		s.logger.Warn("reload script injection failed", "error", err)
	})
	r.Handle("/*", inject(files))
	return r
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler { return s.router }

// Broker exposes the listener registry.
func (s *Server) Broker() *Broker { return s.broker }

// Rebuilder exposes the rebuild state machine.
func (s *Server) Rebuilder() *Rebuilder { return s.rebuilder }

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	changes := make(chan struct{}, 1)
	unsubscribe := s.broker.Subscribe(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()
	s.logger.Debug("event listener connected", "request_id", middleware.GetReqID(r.Context()))

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("event listener disconnected", "request_id", middleware.GetReqID(r.Context()))
			return
		case <-changes:
			if _, err := fmt.Fprint(w, "event: change\ndata: change\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Run builds once, then serves, watches and rebuilds until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	if err := s.build(ctx); err != nil {
		return fmt.Errorf("devserver: initial build: %w", err)
	}

	watcher, err := NewWatcher(s.cfg.WatchDirs, s.logger)
	if err != nil {
		return fmt.Errorf("devserver: watch: %w", err)
	}
	defer watcher.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = s.rebuilder.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := watcher.Run(ctx, s.rebuilder.Changed); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("watcher stopped", "error", err)
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", s.cfg.Addr, "dir", s.cfg.OutputDir)
		serveErr <- srv.ListenAndServe()
	}()

	var result error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			result = fmt.Errorf("devserver: serve: %w", err)
		}
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil && result == nil {
		result = fmt.Errorf("devserver: shutdown: %w", err)
	}
	wg.Wait()
	return result
}
