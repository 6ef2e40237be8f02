package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-press/pkg/interfaces"
)

const (
	rootModule      = "press"
	historyModule   = "press.history"
	siteModule      = "press.site"
	devServerModule = "press.devserver"
	playlistModule  = "press.playlist"
)

const (
	fieldHistoryFile   = "history_file"
	fieldHistoryAction = "history_action"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as structured context so entries can be filtered per module.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// HistoryLogger returns the logger namespace reserved for the history log.
func HistoryLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, historyModule)
}

// SiteLogger returns the logger namespace reserved for site builds.
func SiteLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, siteModule)
}

// DevServerLogger returns the logger namespace reserved for the dev server.
func DevServerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, devServerModule)
}

// PlaylistLogger returns the logger namespace reserved for playlist imports.
func PlaylistLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, playlistModule)
}

// WithHistoryContext enriches the logger with the history file path and the
// maintenance action being performed. Empty values are ignored.
func WithHistoryContext(logger interfaces.Logger, path, action string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldHistoryFile] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldHistoryAction] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
