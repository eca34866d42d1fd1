package converter

import (
	"github.com/goliatone/go-docsync/internal/diagram"
	"github.com/goliatone/go-docsync/internal/runtimeconfig"
	"github.com/goliatone/go-docsync/pkg/interfaces"
)

// newHTTPRenderer builds a per-conversion diagram renderer spooling into the
// run's temp dir.
func newHTTPRenderer(cfg runtimeconfig.DiagramConfig, workDir string, logger interfaces.Logger) (interfaces.DiagramRenderer, error) {
	return diagram.NewHTTPRenderer(diagram.Config{
		ServerURL: cfg.ServerURL,
		WorkDir:   workDir,
		Timeout:   cfg.Timeout,
	}, logger)
}
