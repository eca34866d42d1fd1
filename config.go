package docsync

import "github.com/goliatone/go-docsync/internal/runtimeconfig"

var (
	ErrRemoteBaseURLRequired     = runtimeconfig.ErrRemoteBaseURLRequired
	ErrRemoteCredentialsRequired = runtimeconfig.ErrRemoteCredentialsRequired
	ErrBlockCeilingInvalid       = runtimeconfig.ErrBlockCeilingInvalid
	ErrDiagramServerRequired     = runtimeconfig.ErrDiagramServerRequired
	ErrStatePathRequired         = runtimeconfig.ErrStatePathRequired
	ErrLoggingProviderUnknown    = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid       = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid      = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	MarkdownConfig = runtimeconfig.MarkdownConfig
	DiagramConfig  = runtimeconfig.DiagramConfig
	MediaConfig    = runtimeconfig.MediaConfig
	RemoteConfig   = runtimeconfig.RemoteConfig
	StateConfig    = runtimeconfig.StateConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfigFile reads a JSON configuration file, validates it against
// the config schema, and applies it over the defaults.
func LoadConfigFile(path string) (Config, error) {
	return runtimeconfig.LoadFile(path)
}

// ParseConfig validates raw JSON configuration bytes and applies them
// over the defaults.
func ParseConfig(raw []byte) (Config, error) {
	return runtimeconfig.Parse(raw)
}
