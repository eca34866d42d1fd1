package docsync

import (
	"context"
	"testing"

	"github.com/goliatone/go-docsync/pkg/interfaces"
)

type stubAPI struct {
	interfaces.DocumentAPI
}

func newTestModule(t *testing.T) *Module {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Logging.Provider = "noop"

	module, err := New(context.Background(), cfg, WithDocumentAPI(&stubAPI{}))
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	t.Cleanup(func() { module.Close() })
	return module
}

func TestModuleParse(t *testing.T) {
	module := newTestModule(t)

	source := []byte("# Release Notes\n\n- fixed a bug\n- added a feature\n")
	result, err := module.Parse(context.Background(), source)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if result.Title != "Release Notes" {
		t.Fatalf("title = %q", result.Title)
	}
	if result.Forest.Len() != 3 {
		t.Fatalf("expected heading plus two bullets, got %d blocks", result.Forest.Len())
	}
}

func TestModuleParseFrontmatterTitle(t *testing.T) {
	module := newTestModule(t)

	source := []byte("---\ntitle: From Frontmatter\n---\n\nBody text.\n")
	result, err := module.Parse(context.Background(), source)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if result.Title != "From Frontmatter" {
		t.Fatalf("title = %q", result.Title)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBlocksPerRequest = 0

	if _, err := New(context.Background(), cfg, WithDocumentAPI(&stubAPI{})); err == nil {
		t.Fatal("expected config validation error")
	}
}

func TestNewRequiresRemoteConfigWithoutOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Provider = "noop"

	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatal("expected missing remote configuration error")
	}
}
