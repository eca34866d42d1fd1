// Package runtimeconfig declares the configuration surface of the converter
// module.
package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrRemoteBaseURLRequired     = errors.New("docsync config: remote base url is required")
	ErrRemoteCredentialsRequired = errors.New("docsync config: remote app id and secret are required")
	ErrBlockCeilingInvalid       = errors.New("docsync config: max blocks per request must be at least 2")
	ErrDiagramServerRequired     = errors.New("docsync config: diagram server url is required when diagrams are enabled")
	ErrStatePathRequired         = errors.New("docsync config: state database path is required when state tracking is enabled")
	ErrLoggingProviderUnknown    = errors.New("docsync config: logging provider is invalid")
	ErrLoggingLevelInvalid       = errors.New("docsync config: logging level is invalid")
	ErrLoggingFormatInvalid      = errors.New("docsync config: logging format is invalid")
)

// Config aggregates converter behaviour and adapter bindings. Fields use
// simple types so host applications can extend them later.
type Config struct {
	// Title overrides the document title; frontmatter wins over this,
	// and the first heading is the fallback.
	Title string
	// DestinationFolder is the remote folder token new documents land in.
	DestinationFolder string
	// MaxBlocksPerRequest is the per-request descendant ceiling imposed
	// by the remote API.
	MaxBlocksPerRequest int
	Markdown            MarkdownConfig
	Diagram             DiagramConfig
	Media               MediaConfig
	Remote              RemoteConfig
	State               StateConfig
	Logging             LoggingConfig
}

// MarkdownConfig captures parser behaviour.
type MarkdownConfig struct {
	// Extensions toggles named goldmark extensions; empty means the
	// defaults (GFM plus task lists).
	Extensions []string
}

// DiagramConfig controls mermaid fence rendering.
type DiagramConfig struct {
	Enabled         bool
	ServerURL       string
	Theme           string
	BackgroundColor string
	Width           int
	Height          int
	Timeout         time.Duration
}

// MediaConfig controls image resolution.
type MediaConfig struct {
	// ImageBaseDir resolves relative image paths in the source document.
	ImageBaseDir string
	// DownloadRemoteImages fetches http(s) images and re-uploads them;
	// when false remote images degrade to linked text.
	DownloadRemoteImages bool
	MaxFetchBytes        int64
	FetchTimeout         time.Duration
}

// RemoteConfig holds document service credentials and endpoints.
type RemoteConfig struct {
	BaseURL    string
	WebBaseURL string
	AppID      string
	AppSecret  string
	Timeout    time.Duration
	// TransferOwnerTo, when set, receives ownership of every document
	// created by Convert.
	TransferOwnerTo string
}

// StateConfig controls the local sync-state store.
type StateConfig struct {
	Enabled bool
	// Path is the sqlite database location; ":memory:" for throwaway.
	Path string
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults.
func DefaultConfig() Config {
	return Config{
		MaxBlocksPerRequest: 1000,
		Markdown:            MarkdownConfig{},
		Diagram: DiagramConfig{
			Theme: "default",
		},
		Media: MediaConfig{
			DownloadRemoteImages: true,
		},
		Remote: RemoteConfig{},
		State: StateConfig{
			Path: ".docsync/state.db",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Remote.BaseURL) == "" {
		return ErrRemoteBaseURLRequired
	}
	if strings.TrimSpace(cfg.Remote.AppID) == "" || strings.TrimSpace(cfg.Remote.AppSecret) == "" {
		return ErrRemoteCredentialsRequired
	}
	// A request must fit at least one child and its anchor bookkeeping.
	if cfg.MaxBlocksPerRequest < 2 {
		return ErrBlockCeilingInvalid
	}
	if cfg.Diagram.Enabled && strings.TrimSpace(cfg.Diagram.ServerURL) == "" {
		return ErrDiagramServerRequired
	}
	if cfg.State.Enabled && strings.TrimSpace(cfg.State.Path) == "" {
		return ErrStatePathRequired
	}
	if provider := normalizeToken(cfg.Logging.Provider); provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := normalizeToken(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := normalizeToken(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

// ValidateParseOnly checks only the fields a no-network parse needs.
func (cfg Config) ValidateParseOnly() error {
	if cfg.MaxBlocksPerRequest < 2 {
		return ErrBlockCeilingInvalid
	}
	if cfg.Diagram.Enabled && strings.TrimSpace(cfg.Diagram.ServerURL) == "" {
		return ErrDiagramServerRequired
	}
	return nil
}

func normalizeToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger", "noop":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch format {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
