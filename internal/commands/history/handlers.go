package historycmd

import (
	"context"
	"errors"
	"io"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-press/internal/commands"
	"github.com/goliatone/go-press/internal/history"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// ErrStdinUnavailable is returned when a command asks for stdin candidates
// but the handler was built without a reader.
var ErrStdinUnavailable = errors.New("history command: stdin reader not configured")

// Store is the part of history.Store the handlers drive.
type Store interface {
	ContentDir() string
	UpdateFrom(ctx context.Context, src history.Source) (history.UpdateResult, error)
	Collapse(ctx context.Context) (history.CollapseResult, error)
}

var (
	_ command.Commander[UpdateHistoryCommand]   = (*UpdateHistoryHandler)(nil)
	_ command.Commander[CollapseHistoryCommand] = (*CollapseHistoryHandler)(nil)
)

// UpdateHistoryHandler runs history updates through the shared command
// handler.
type UpdateHistoryHandler struct {
	inner *commands.Handler[UpdateHistoryCommand]
}

// NewUpdateHistoryHandler binds a handler to store. stdin may be nil when
// FromStdin is never used.
func NewUpdateHistoryHandler(store Store, stdin io.Reader, logger interfaces.Logger, opts ...commands.HandlerOption[UpdateHistoryCommand]) *UpdateHistoryHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg UpdateHistoryCommand) error {
		var src history.Source
		switch {
		case msg.FromStdin:
			if stdin == nil {
				return ErrStdinUnavailable
			}
			src = history.ReaderSource{Reader: stdin}
		case len(msg.Candidates) > 0:
			src = history.SliceSource(msg.Candidates)
		default:
			src = history.DirSource{Dir: store.ContentDir()}
		}

		update, err := store.UpdateFrom(ctx, src)
		if err != nil {
			return err
		}
		result := Result{Update: &update}
		logging.WithFields(baseLogger, map[string]any{
			"appended": len(update.Appended),
			"skipped":  len(update.Skipped),
			"missing":  len(update.Missing),
		}).Info("history.command.update.completed")

		if msg.Collapse {
			collapsed, err := store.Collapse(ctx)
			if err != nil {
				return err
			}
			result.Collapse = &collapsed
		}
		if msg.ResultCallback != nil {
			msg.ResultCallback(result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[UpdateHistoryCommand]{
		commands.WithLogger[UpdateHistoryCommand](baseLogger),
		commands.WithOperation[UpdateHistoryCommand]("history.update"),
		commands.WithMessageFields(func(msg UpdateHistoryCommand) map[string]any {
			fields := map[string]any{}
			if len(msg.Candidates) > 0 {
				fields["candidates"] = len(msg.Candidates)
			}
			if msg.FromStdin {
				fields["from_stdin"] = true
			}
			if msg.Collapse {
				fields["collapse"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[UpdateHistoryCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &UpdateHistoryHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[UpdateHistoryCommand].
func (h *UpdateHistoryHandler) Execute(ctx context.Context, msg UpdateHistoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CollapseHistoryHandler runs a standalone collapse pass.
type CollapseHistoryHandler struct {
	inner *commands.Handler[CollapseHistoryCommand]
}

func NewCollapseHistoryHandler(store Store, logger interfaces.Logger, opts ...commands.HandlerOption[CollapseHistoryCommand]) *CollapseHistoryHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg CollapseHistoryCommand) error {
		collapsed, err := store.Collapse(ctx)
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"kept":    collapsed.Kept,
			"dropped": collapsed.Dropped,
		}).Info("history.command.collapse.completed")
		if msg.ResultCallback != nil {
			msg.ResultCallback(Result{Collapse: &collapsed})
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[CollapseHistoryCommand]{
		commands.WithLogger[CollapseHistoryCommand](baseLogger),
		commands.WithOperation[CollapseHistoryCommand]("history.collapse"),
		commands.WithTelemetry(commands.DefaultTelemetry[CollapseHistoryCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CollapseHistoryHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CollapseHistoryCommand].
func (h *CollapseHistoryHandler) Execute(ctx context.Context, msg CollapseHistoryCommand) error {
	return h.inner.Execute(ctx, msg)
}
