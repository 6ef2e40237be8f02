package sitecmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-press/internal/commands"
	"github.com/goliatone/go-press/internal/site"
)

type stubService struct {
	calls    []site.BuildOptions
	err      error
	wait     bool
	failures int
}

func (s *stubService) Build(ctx context.Context, opts site.BuildOptions) (*site.BuildResult, error) {
	s.calls = append(s.calls, opts)
	if s.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.failures > 0 {
		s.failures--
		return nil, errors.New("output directory busy")
	}
	return &site.BuildResult{StaticFiles: 4}, nil
}

func TestBuildSiteHandlerPassesOptions(t *testing.T) {
	svc := &stubService{}
	handler := NewBuildSiteHandler(svc, nil)

	var got *site.BuildResult
	err := handler.Execute(context.Background(), BuildSiteCommand{
		SkipHistoryUpdate: true,
		ResultCallback:    func(r *site.BuildResult) { got = r },
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(svc.calls) != 1 || !svc.calls[0].SkipHistoryUpdate {
		t.Fatalf("unexpected build calls %+v", svc.calls)
	}
	if got == nil || got.StaticFiles != 4 {
		t.Fatalf("expected callback with result, got %+v", got)
	}
}

func TestBuildSiteHandlerWrapsFailure(t *testing.T) {
	buildErr := errors.New("template broken")
	handler := NewBuildSiteHandler(&stubService{err: buildErr}, nil)

	called := false
	err := handler.Execute(context.Background(), BuildSiteCommand{
		ResultCallback: func(*site.BuildResult) { called = true },
	})
	if !errors.Is(err, buildErr) {
		t.Fatalf("expected build error, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("callback must not run on failure")
	}
}

func TestBuildSiteHandlerTimeout(t *testing.T) {
	handler := NewBuildSiteHandler(&stubService{wait: true}, nil,
		commands.WithTimeout[BuildSiteCommand](5*time.Millisecond))

	err := handler.Execute(context.Background(), BuildSiteCommand{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestBuildSiteHandlerWithoutService(t *testing.T) {
	err := NewBuildSiteHandler(nil, nil).Execute(context.Background(), BuildSiteCommand{})
	if !errors.Is(err, ErrServiceRequired) {
		t.Fatalf("expected ErrServiceRequired, got %v", err)
	}
}

func TestBuildSiteThroughDispatcherRetries(t *testing.T) {
	svc := &stubService{failures: 1}
	sub := dispatcher.SubscribeCommand(NewBuildSiteHandler(svc, nil), runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	var got *site.BuildResult
	err := dispatcher.Dispatch(context.Background(), BuildSiteCommand{
		ResultCallback: func(r *site.BuildResult) { got = r },
	})
	if err != nil {
		t.Fatalf("dispatch: expected success after retry, got %v", err)
	}
	if len(svc.calls) != 2 {
		t.Fatalf("expected 2 build attempts, got %d", len(svc.calls))
	}
	if got == nil || got.StaticFiles != 4 {
		t.Fatalf("expected result from the retried build, got %+v", got)
	}
}

func TestBuildSiteThroughDispatcherExhaustsRetries(t *testing.T) {
	buildErr := errors.New("template broken")
	svc := &stubService{err: buildErr}
	sub := dispatcher.SubscribeCommand(NewBuildSiteHandler(svc, nil), runner.WithMaxRetries(2))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), BuildSiteCommand{}); err == nil {
		t.Fatal("expected dispatch to fail once retries are exhausted")
	}
	if len(svc.calls) != 3 {
		t.Fatalf("expected 3 build attempts, got %d", len(svc.calls))
	}
}
