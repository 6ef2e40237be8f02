package sitecmd

import "github.com/goliatone/go-press/internal/site"

const buildSiteMessageType = "press.site.build"

// BuildSiteCommand regenerates the output directory.
type BuildSiteCommand struct {
	SkipHistoryUpdate bool `json:"skip_history_update,omitempty"`
	// ResultCallback is invoked synchronously when a build succeeds.
	ResultCallback func(*site.BuildResult) `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate implements command.Message validation; every combination of
// flags is valid.
func (BuildSiteCommand) Validate() error { return nil }
