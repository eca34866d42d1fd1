// Package media resolves logical image references (URLs, filesystem paths,
// data URLs, raw bytes) into upload-ready byte payloads.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-docsync/blocks"
	"github.com/goliatone/go-docsync/internal/logging"
	"github.com/goliatone/go-docsync/pkg/interfaces"
)

const (
	// DefaultMaxFetchBytes caps remote image downloads at 50MB.
	DefaultMaxFetchBytes int64 = 50 << 20
	// DefaultFetchTimeout bounds a single remote image download.
	DefaultFetchTimeout = 30 * time.Second
)

var (
	ErrMediaTooLarge     = errors.New("media: payload exceeds size cap")
	ErrEmptyReference    = errors.New("media: reference carries no source")
	ErrUnexpectedStatus  = errors.New("media: unexpected response status")
	ErrInvalidDataURL    = errors.New("media: invalid data url")
	ErrEmptyMediaPayload = errors.New("media: resolved payload is empty")
)

// FetcherConfig tunes the HTTP fetcher.
type FetcherConfig struct {
	MaxBytes   int64
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HTTPFetcher downloads remote images with a hard size cap and timeout.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
	timeout  time.Duration
}

var _ interfaces.MediaFetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher builds a fetcher, applying defaults for anything unset.
func NewHTTPFetcher(cfg FetcherConfig) *HTTPFetcher {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFetchBytes
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPFetcher{client: client, maxBytes: maxBytes, timeout: timeout}
}

// Fetch downloads url, enforcing the configured cap and timeout.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("media: build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, url, resp.StatusCode)
	}

	// Read one byte past the cap so oversized payloads are detected
	// without buffering them whole.
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("media: read %s: %w", url, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %s", ErrMediaTooLarge, url)
	}
	return data, nil
}

// Resolver turns MediaReference values into bytes. File reads, fetches, and
// inline payloads all normalize to in-memory bytes so nothing downstream has
// to care where an image came from.
type Resolver struct {
	fetcher interfaces.MediaFetcher
	logger  interfaces.Logger
}

var _ interfaces.MediaResolver = (*Resolver)(nil)

// NewResolver builds a resolver around the supplied fetcher.
func NewResolver(fetcher interfaces.MediaFetcher, logger interfaces.Logger) *Resolver {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Resolver{fetcher: fetcher, logger: logger}
}

// Resolve returns the bytes and filename for a reference.
func (r *Resolver) Resolve(ctx context.Context, ref *blocks.MediaReference) ([]byte, string, error) {
	if ref == nil {
		return nil, "", ErrEmptyReference
	}

	filename := ref.Filename
	if filename == "" {
		filename = "image.png"
	}

	var (
		data []byte
		err  error
	)
	switch ref.Source {
	case blocks.MediaSourceBytes:
		data = ref.Data
	case blocks.MediaSourceFile:
		data, err = os.ReadFile(ref.Path)
		if err != nil {
			return nil, "", fmt.Errorf("media: read file %s: %w", ref.Path, err)
		}
	case blocks.MediaSourceURL:
		if r.fetcher == nil {
			return nil, "", fmt.Errorf("media: no fetcher configured for %s", ref.URL)
		}
		data, err = r.fetcher.Fetch(ctx, ref.URL)
		if err != nil {
			return nil, "", err
		}
	default:
		return nil, "", ErrEmptyReference
	}

	if len(data) == 0 {
		return nil, "", ErrEmptyMediaPayload
	}
	return data, filename, nil
}

// DecodeDataURL decodes a data: URL into raw bytes plus a file extension
// derived from the media type.
func DecodeDataURL(raw string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(raw, "data:")
	if !ok {
		return nil, "", ErrInvalidDataURL
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", ErrInvalidDataURL
	}

	var data []byte
	var err error
	if strings.HasSuffix(meta, ";base64") {
		meta = strings.TrimSuffix(meta, ";base64")
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
		}
	} else {
		data = []byte(payload)
	}

	return data, extensionForMediaType(meta), nil
}

func extensionForMediaType(mediaType string) string {
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if idx := strings.Index(mediaType, ";"); idx >= 0 {
		mediaType = mediaType[:idx]
	}
	switch mediaType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".png"
	}
}
