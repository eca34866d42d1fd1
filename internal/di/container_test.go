package di

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-docsync/internal/logging"
	"github.com/goliatone/go-docsync/internal/runtimeconfig"
	"github.com/goliatone/go-docsync/pkg/interfaces"
)

type stubAPI struct {
	interfaces.DocumentAPI
}

func TestNewContainerRequiresRemoteCredentials(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()

	if _, err := NewContainer(context.Background(), cfg); err == nil {
		t.Fatal("expected validation error without remote credentials")
	}
}

func TestNewContainerWithDocumentAPIOverride(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "noop"

	container, err := NewContainer(context.Background(), cfg, WithDocumentAPI(&stubAPI{}))
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	defer container.Close()

	if container.Converter() == nil {
		t.Fatal("expected a converter service")
	}
	if container.Store() != nil {
		t.Fatal("state store must stay nil when disabled")
	}
}

func TestNewContainerOpensStateStore(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "noop"
	cfg.State.Enabled = true
	cfg.State.Path = filepath.Join(t.TempDir(), "nested", "state.db")

	container, err := NewContainer(context.Background(), cfg, WithDocumentAPI(&stubAPI{}))
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	defer container.Close()

	if container.Store() == nil {
		t.Fatal("expected a sync-state store")
	}
}

func TestNewContainerRejectsBadCeiling(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "noop"
	cfg.MaxBlocksPerRequest = 1

	if _, err := NewContainer(context.Background(), cfg, WithDocumentAPI(&stubAPI{})); err == nil {
		t.Fatal("expected ceiling validation error")
	}
}

func TestNewContainerLoggerProviderOverride(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()

	provider := logging.NoOpProvider()
	container, err := NewContainer(context.Background(), cfg,
		WithDocumentAPI(&stubAPI{}),
		WithLoggerProvider(provider),
	)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	defer container.Close()

	if container.LoggerProvider() != provider {
		t.Fatal("expected the injected logger provider")
	}
}

func TestNewContainerParseOnly(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "noop"

	container, err := NewContainer(context.Background(), cfg, ParseOnly())
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	defer container.Close()

	if container.DocumentAPI() != nil {
		t.Fatal("parse-only container must not build a remote client")
	}
	if container.Converter() == nil {
		t.Fatal("expected a converter service")
	}
}

func TestNewLoggerProviderNoop(t *testing.T) {
	provider, err := newLoggerProvider(runtimeconfig.LoggingConfig{Provider: "noop"})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if provider.GetLogger("anything") == nil {
		t.Fatal("expected a logger")
	}
}
