// Package bootstrap assembles the module for the docsync CLI: config
// file, .env overlay, and environment variable overrides.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	docsync "github.com/goliatone/go-docsync"
)

// Environment variables recognised on top of the config file.
const (
	EnvBaseURL       = "DOCSYNC_BASE_URL"
	EnvWebBaseURL    = "DOCSYNC_WEB_BASE_URL"
	EnvAppID         = "DOCSYNC_APP_ID"
	EnvAppSecret     = "DOCSYNC_APP_SECRET"
	EnvTransferOwner = "DOCSYNC_TRANSFER_OWNER"
	EnvStatePath     = "DOCSYNC_STATE_PATH"
	EnvStateEnabled  = "DOCSYNC_STATE_ENABLED"
)

// Options carry the CLI-level knobs into module assembly.
type Options struct {
	// ConfigPath points at a JSON config file. Empty means defaults.
	ConfigPath string
	// EnvFile overrides the default ".env" lookup. Missing default files
	// are ignored; an explicit file that cannot be read is an error.
	EnvFile string
	// LogLevel and LogFormat override the config file when set.
	LogLevel  string
	LogFormat string
	// ParseOnly skips the remote client so no credentials are needed.
	ParseOnly bool
}

// LoadConfig resolves the effective configuration: defaults, config
// file, .env overlay, then environment variables.
func LoadConfig(opts Options) (docsync.Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return docsync.Config{}, fmt.Errorf("bootstrap: load env file %s: %w", opts.EnvFile, err)
		}
	} else {
		// Default .env is optional.
		_ = godotenv.Load()
	}

	cfg := docsync.DefaultConfig()
	if opts.ConfigPath != "" {
		loaded, err := docsync.LoadConfigFile(opts.ConfigPath)
		if err != nil {
			return docsync.Config{}, err
		}
		cfg = loaded
	}

	applyEnv(&cfg)

	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.Logging.Format = opts.LogFormat
	}

	return cfg, nil
}

// BuildModule loads configuration and constructs the runtime module.
func BuildModule(ctx context.Context, opts Options) (*docsync.Module, docsync.Config, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, docsync.Config{}, err
	}

	var moduleOpts []docsync.Option
	if opts.ParseOnly {
		moduleOpts = append(moduleOpts, docsync.ParseOnly())
	}

	module, err := docsync.New(ctx, cfg, moduleOpts...)
	if err != nil {
		return nil, docsync.Config{}, err
	}
	return module, cfg, nil
}

func applyEnv(cfg *docsync.Config) {
	if v := lookup(EnvBaseURL); v != "" {
		cfg.Remote.BaseURL = v
	}
	if v := lookup(EnvWebBaseURL); v != "" {
		cfg.Remote.WebBaseURL = v
	}
	if v := lookup(EnvAppID); v != "" {
		cfg.Remote.AppID = v
	}
	if v := lookup(EnvAppSecret); v != "" {
		cfg.Remote.AppSecret = v
	}
	if v := lookup(EnvTransferOwner); v != "" {
		cfg.Remote.TransferOwnerTo = v
	}
	if v := lookup(EnvStatePath); v != "" {
		cfg.State.Path = v
		cfg.State.Enabled = true
	}
	if v := lookup(EnvStateEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.State.Enabled = enabled
		}
	}
}

func lookup(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
