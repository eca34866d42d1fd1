package interfaces

import (
	"context"

	"github.com/goliatone/go-docsync/blocks"
)

// ConvertOptions are per-call overrides for one conversion.
type ConvertOptions struct {
	// Title overrides the configured document title. Frontmatter still
	// wins over both.
	Title string
	// DestinationFolder overrides the configured target folder token.
	DestinationFolder string
	// SourcePath identifies the Markdown source for sync-state tracking
	// and relative image resolution diagnostics. Optional.
	SourcePath string
}

// ConvertResult is the outcome of one conversion.
type ConvertResult struct {
	DocumentID string `json:"document_id"`
	URL        string `json:"url,omitempty"`
	RevisionID string `json:"revision_id,omitempty"`
	Title      string `json:"title,omitempty"`
}

// ParseResult is the no-network inspection output: the raw block forest and
// its unresolved media references.
type ParseResult struct {
	Forest      *blocks.Forest
	Media       map[string]*blocks.MediaReference
	FrontMatter FrontMatter
	Title       string
}

// ConverterService converts Markdown into remote documents.
type ConverterService interface {
	// Convert creates a new document from Markdown source.
	Convert(ctx context.Context, source []byte, opts ConvertOptions) (*ConvertResult, error)

	// AppendToDocument appends the converted blocks to an existing document.
	AppendToDocument(ctx context.Context, source []byte, documentID string, opts ConvertOptions) (*ConvertResult, error)

	// ReplaceDocument deletes the document's children, then appends.
	ReplaceDocument(ctx context.Context, source []byte, documentID string, opts ConvertOptions) (*ConvertResult, error)

	// Parse converts Markdown to the block forest without any network call.
	Parse(ctx context.Context, source []byte) (*ParseResult, error)
}
