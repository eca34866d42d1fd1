package interfaces

import (
	"context"

	"github.com/goliatone/go-docsync/blocks"
)

// MediaFetcher retrieves remote image bytes. Implementations must enforce a
// size cap and a timeout so one oversized or stalled asset cannot wedge a
// conversion.
type MediaFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// MediaResolver turns a logical media reference into upload-ready bytes and a
// filename. Resolution failures are recoverable: callers drop the single
// image and continue.
type MediaResolver interface {
	Resolve(ctx context.Context, ref *blocks.MediaReference) ([]byte, string, error)
}
