// Package docsync converts Markdown documents into remote rich-text
// documents through a batching block API.
package docsync

import (
	"context"

	"github.com/goliatone/go-docsync/internal/di"
	"github.com/goliatone/go-docsync/pkg/interfaces"
)

// ConverterService exports the conversion contract for consumers of the
// docsync package.
type ConverterService = interfaces.ConverterService

// ConvertOptions exports the per-call conversion overrides.
type ConvertOptions = interfaces.ConvertOptions

// ConvertResult exports the conversion outcome DTO.
type ConvertResult = interfaces.ConvertResult

// ParseResult exports the parse-only outcome DTO.
type ParseResult = interfaces.ParseResult

// DocumentAPI exports the remote document client contract.
type DocumentAPI = interfaces.DocumentAPI

// Logger exports the logging contract used across the module.
type Logger = interfaces.Logger

// LoggerProvider exports the named-logger factory contract.
type LoggerProvider = interfaces.LoggerProvider

// Option re-exports container options for dependency overrides.
type Option = di.Option

// WithDocumentAPI overrides the remote client, for tests or custom
// transports. Remote credentials are not required with an override.
var WithDocumentAPI = di.WithDocumentAPI

// WithLoggerProvider overrides the configured logger provider.
var WithLoggerProvider = di.WithLoggerProvider

// WithMediaResolver overrides the media resolver.
var WithMediaResolver = di.WithMediaResolver

// WithDiagramRenderer overrides the diagram renderer.
var WithDiagramRenderer = di.WithDiagramRenderer

// WithStateDB supplies a caller-managed sync-state database.
var WithStateDB = di.WithStateDB

// WithConverterService overrides the assembled converter entirely.
var WithConverterService = di.WithConverterService

// ParseOnly builds the module without a remote client, so parsing works
// without credentials.
var ParseOnly = di.ParseOnly

// Module is the top level runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module from configuration plus optional overrides.
func New(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Converter returns the configured conversion service.
func (m *Module) Converter() ConverterService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Converter()
}

// Convert creates a new remote document from Markdown source.
func (m *Module) Convert(ctx context.Context, source []byte, opts ConvertOptions) (*ConvertResult, error) {
	return m.Converter().Convert(ctx, source, opts)
}

// AppendToDocument appends converted blocks to an existing document.
func (m *Module) AppendToDocument(ctx context.Context, source []byte, documentID string, opts ConvertOptions) (*ConvertResult, error) {
	return m.Converter().AppendToDocument(ctx, source, documentID, opts)
}

// ReplaceDocument clears an existing document and uploads the converted
// source in its place.
func (m *Module) ReplaceDocument(ctx context.Context, source []byte, documentID string, opts ConvertOptions) (*ConvertResult, error) {
	return m.Converter().ReplaceDocument(ctx, source, documentID, opts)
}

// Parse converts Markdown to the block forest without touching the
// network.
func (m *Module) Parse(ctx context.Context, source []byte) (*ParseResult, error) {
	return m.Converter().Parse(ctx, source)
}

// Close releases resources owned by the module, such as the sync-state
// database.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
