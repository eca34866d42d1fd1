// Package di wires the module's services together from configuration,
// with options to override any dependency.
package di

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-docsync/internal/converter"
	"github.com/goliatone/go-docsync/internal/logging"
	"github.com/goliatone/go-docsync/internal/logging/gologger"
	"github.com/goliatone/go-docsync/internal/remote"
	"github.com/goliatone/go-docsync/internal/runtimeconfig"
	"github.com/goliatone/go-docsync/internal/state"
	"github.com/goliatone/go-docsync/internal/uploader"
	"github.com/goliatone/go-docsync/pkg/interfaces"
)

// Container owns the wired dependencies for one module instance.
type Container struct {
	config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	api            interfaces.DocumentAPI
	resolver       interfaces.MediaResolver
	renderer       interfaces.DiagramRenderer
	retry          *uploader.RetryConfig

	stateDB *bun.DB
	ownsDB  bool
	store   *state.Store

	converterSvc interfaces.ConverterService
	parseOnly    bool
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the configured logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithDocumentAPI overrides the remote document client. With an override
// in place the remote credentials in the config are not required.
func WithDocumentAPI(api interfaces.DocumentAPI) Option {
	return func(c *Container) {
		c.api = api
	}
}

// WithMediaResolver overrides the default media resolver.
func WithMediaResolver(resolver interfaces.MediaResolver) Option {
	return func(c *Container) {
		c.resolver = resolver
	}
}

// WithDiagramRenderer overrides the per-conversion HTTP diagram renderer.
func WithDiagramRenderer(renderer interfaces.DiagramRenderer) Option {
	return func(c *Container) {
		c.renderer = renderer
	}
}

// WithStateDB supplies a caller-managed database for the sync-state
// store. The container migrates it but does not close it.
func WithStateDB(db *bun.DB) Option {
	return func(c *Container) {
		c.stateDB = db
	}
}

// WithRetryConfig overrides the uploader retry policy.
func WithRetryConfig(cfg uploader.RetryConfig) Option {
	return func(c *Container) {
		c.retry = &cfg
	}
}

// WithConverterService overrides the assembled converter entirely.
func WithConverterService(svc interfaces.ConverterService) Option {
	return func(c *Container) {
		c.converterSvc = svc
	}
}

// ParseOnly skips the remote client so the module can run without
// credentials. Network operations fail until a document API is supplied.
func ParseOnly() Option {
	return func(c *Container) {
		c.parseOnly = true
	}
}

// NewContainer validates the configuration and builds every service that
// was not supplied as an option.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	c := &Container{config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.parseOnly || c.api != nil || c.converterSvc != nil {
		if err := cfg.ValidateParseOnly(); err != nil {
			return nil, err
		}
	} else if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if c.loggerProvider == nil {
		provider, err := newLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		c.loggerProvider = provider
	}

	if !c.parseOnly && c.api == nil && c.converterSvc == nil {
		client, err := remote.NewClient(remote.Config{
			BaseURL:    cfg.Remote.BaseURL,
			WebBaseURL: cfg.Remote.WebBaseURL,
			AppID:      cfg.Remote.AppID,
			AppSecret:  cfg.Remote.AppSecret,
			Timeout:    cfg.Remote.Timeout,
		}, logging.RemoteLogger(c.loggerProvider))
		if err != nil {
			return nil, err
		}
		c.api = client
	}

	if cfg.State.Enabled {
		if err := c.openState(ctx); err != nil {
			return nil, err
		}
	}

	if c.converterSvc == nil {
		options := converter.Options{
			Config:   cfg,
			API:      c.api,
			Resolver: c.resolver,
			Renderer: c.renderer,
			Store:    c.store,
			Logger:   c.loggerProvider,
		}
		if c.retry != nil {
			options.Retry = *c.retry
		}
		svc, err := converter.New(options)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.converterSvc = svc
	}

	return c, nil
}

func (c *Container) openState(ctx context.Context) error {
	if c.stateDB != nil {
		if err := state.Migrate(ctx, c.stateDB); err != nil {
			return err
		}
		c.store = state.NewStore(c.stateDB)
		return nil
	}

	path := c.config.State.Path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("di: create state directory %s: %w", dir, err)
			}
		}
	}
	db, err := state.Open(ctx, path)
	if err != nil {
		return err
	}
	c.stateDB = db
	c.ownsDB = true
	c.store = state.NewStore(db)
	return nil
}

// Config returns the configuration the container was built from.
func (c *Container) Config() runtimeconfig.Config {
	return c.config
}

// Converter returns the assembled converter service.
func (c *Container) Converter() interfaces.ConverterService {
	if c == nil {
		return nil
	}
	return c.converterSvc
}

// DocumentAPI returns the remote client in use.
func (c *Container) DocumentAPI() interfaces.DocumentAPI {
	if c == nil {
		return nil
	}
	return c.api
}

// LoggerProvider returns the provider feeding module loggers.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	if c == nil || c.loggerProvider == nil {
		return logging.NoOpProvider()
	}
	return c.loggerProvider
}

// Store returns the sync-state store, nil when state is disabled.
func (c *Container) Store() *state.Store {
	if c == nil {
		return nil
	}
	return c.store
}

// Close releases resources the container opened itself. Databases
// supplied through WithStateDB stay open.
func (c *Container) Close() error {
	if c == nil || !c.ownsDB || c.stateDB == nil {
		return nil
	}
	err := c.stateDB.Close()
	c.stateDB = nil
	c.ownsDB = false
	return err
}

func newLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch cfg.Provider {
	case "noop":
		return logging.NoOpProvider(), nil
	case "", "console", "gologger":
		format := cfg.Format
		if format == "" && cfg.Provider == "console" {
			format = "console"
		}
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, cfg.Provider)
	}
}
