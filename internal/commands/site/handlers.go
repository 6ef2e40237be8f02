package sitecmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-press/internal/commands"
	"github.com/goliatone/go-press/internal/site"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// ErrServiceRequired is returned when the handler has no builder to drive.
var ErrServiceRequired = errors.New("site command: build service is required")

var _ command.Commander[BuildSiteCommand] = (*BuildSiteHandler)(nil)

// BuildSiteHandler runs site builds through the shared command handler.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler constructs a handler wired to service.
func NewBuildSiteHandler(service site.Service, logger interfaces.Logger, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if service == nil {
			return ErrServiceRequired
		}
		result, err := service.Build(ctx, site.BuildOptions{SkipHistoryUpdate: msg.SkipHistoryUpdate})
		if err != nil {
			return err
		}
		if msg.ResultCallback != nil {
			msg.ResultCallback(result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand]("site.build"),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			if msg.SkipHistoryUpdate {
				return map[string]any{"skip_history_update": true}
			}
			return nil
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}
