// Package diagram renders mermaid source into images through an HTTP
// rendering service.
package diagram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/goliatone/go-docsync/internal/logging"
	"github.com/goliatone/go-docsync/pkg/interfaces"
)

const (
	// DefaultTimeout bounds a single render round trip.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxImageBytes caps the rendered image payload.
	DefaultMaxImageBytes int64 = 20 << 20
)

var (
	ErrEmptySource      = errors.New("diagram: empty source")
	ErrMissingServerURL = errors.New("diagram: server url is required")
	ErrRenderFailed     = errors.New("diagram: render failed")
	ErrImageTooLarge    = errors.New("diagram: rendered image exceeds size cap")
)

// Config tunes the HTTP renderer.
type Config struct {
	// ServerURL is the render endpoint; the renderer POSTs diagram source
	// and reads image bytes back.
	ServerURL string
	// WorkDir, when set, receives a copy of every rendered image for
	// inspection. Cleared by the conversion run that created it.
	WorkDir    string
	Timeout    time.Duration
	MaxBytes   int64
	HTTPClient *http.Client
}

// HTTPRenderer implements interfaces.DiagramRenderer against a code-in,
// image-out rendering service.
type HTTPRenderer struct {
	serverURL string
	workDir   string
	maxBytes  int64
	client    *http.Client
	logger    interfaces.Logger
	seq       int
}

var _ interfaces.DiagramRenderer = (*HTTPRenderer)(nil)

type renderRequest struct {
	Source          string `json:"source"`
	Theme           string `json:"theme,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
	Width           int    `json:"width,omitempty"`
	Height          int    `json:"height,omitempty"`
}

// NewHTTPRenderer builds a renderer, applying defaults for anything unset.
func NewHTTPRenderer(cfg Config, logger interfaces.Logger) (*HTTPRenderer, error) {
	if cfg.ServerURL == "" {
		return nil, ErrMissingServerURL
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &HTTPRenderer{
		serverURL: cfg.ServerURL,
		workDir:   cfg.WorkDir,
		maxBytes:  maxBytes,
		client:    client,
		logger:    logger,
	}, nil
}

// Render posts the diagram source to the render service and returns the
// image bytes.
func (r *HTTPRenderer) Render(ctx context.Context, source string, opts interfaces.DiagramOptions) ([]byte, error) {
	if source == "" {
		return nil, ErrEmptySource
	}

	body, err := json.Marshal(renderRequest{
		Source:          source,
		Theme:           opts.Theme,
		BackgroundColor: opts.BackgroundColor,
		Width:           opts.Width,
		Height:          opts.Height,
	})
	if err != nil {
		return nil, fmt.Errorf("diagram: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.serverURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("diagram: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("diagram: request render service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrRenderFailed, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("diagram: read render response: %w", err)
	}
	if int64(len(data)) > r.maxBytes {
		return nil, ErrImageTooLarge
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty response body", ErrRenderFailed)
	}

	r.spool(data)
	return data, nil
}

// spool writes a copy of the rendered image into the work dir. Failures are
// logged and ignored; spooled artifacts are diagnostics, not outputs.
func (r *HTTPRenderer) spool(data []byte) {
	if r.workDir == "" {
		return
	}
	r.seq++
	path := filepath.Join(r.workDir, fmt.Sprintf("diagram_%d.png", r.seq))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		r.logger.Warn("failed to spool rendered diagram", "path", path, "error", err)
	}
}
