package press

import "github.com/goliatone/go-press/internal/runtimeconfig"

var (
	ErrContentDirRequired      = runtimeconfig.ErrContentDirRequired
	ErrHistoryFileRequired     = runtimeconfig.ErrHistoryFileRequired
	ErrHistoryTimezoneInvalid  = runtimeconfig.ErrHistoryTimezoneInvalid
	ErrOutputDirRequired       = runtimeconfig.ErrOutputDirRequired
	ErrTemplateDirRequired     = runtimeconfig.ErrTemplateDirRequired
	ErrWorkersInvalid          = runtimeconfig.ErrWorkersInvalid
	ErrDebounceInvalid         = runtimeconfig.ErrDebounceInvalid
	ErrEventPathInvalid        = runtimeconfig.ErrEventPathInvalid
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrPlaylistTimeoutInvalid  = runtimeconfig.ErrPlaylistTimeoutInvalid
)

type (
	Config         = runtimeconfig.Config
	ContentConfig  = runtimeconfig.ContentConfig
	HistoryConfig  = runtimeconfig.HistoryConfig
	SiteConfig     = runtimeconfig.SiteConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	DevConfig      = runtimeconfig.DevConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	PlaylistConfig = runtimeconfig.PlaylistConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.LoadFile(path)
}
