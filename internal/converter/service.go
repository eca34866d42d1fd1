// Package converter wires the pipeline together: frontmatter, parse, walk,
// plan, upload, media attachment.
package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-docsync/blocks"
	"github.com/goliatone/go-docsync/internal/logging"
	"github.com/goliatone/go-docsync/internal/markdown"
	"github.com/goliatone/go-docsync/internal/media"
	"github.com/goliatone/go-docsync/internal/planner"
	"github.com/goliatone/go-docsync/internal/runtimeconfig"
	"github.com/goliatone/go-docsync/internal/state"
	"github.com/goliatone/go-docsync/internal/uploader"
	"github.com/goliatone/go-docsync/pkg/interfaces"
)

var (
	ErrNoDocumentAPI     = errors.New("converter: document API is required")
	ErrDocumentIDMissing = errors.New("converter: document id is required")
)

const fallbackTitle = "Untitled Document"

// Options bundles the converter's collaborators. API is required for the
// network entry points; everything else has a working default.
type Options struct {
	Config   runtimeconfig.Config
	API      interfaces.DocumentAPI
	Resolver interfaces.MediaResolver
	// Renderer overrides the diagram renderer. When nil and diagrams are
	// enabled, an HTTP renderer is built per conversion against the
	// configured server, spooling into the run's temp dir.
	Renderer interfaces.DiagramRenderer
	Store    *state.Store
	Logger   interfaces.LoggerProvider
	Retry    uploader.RetryConfig
}

// Service implements interfaces.ConverterService.
type Service struct {
	cfg      runtimeconfig.Config
	api      interfaces.DocumentAPI
	parser   *markdown.GoldmarkParser
	resolver interfaces.MediaResolver
	renderer interfaces.DiagramRenderer
	store    *state.Store
	logger   interfaces.Logger
	markLog  interfaces.Logger
	planLog  interfaces.Logger
	upLog    interfaces.Logger
	stateLog interfaces.Logger
	retry    uploader.RetryConfig
}

var _ interfaces.ConverterService = (*Service)(nil)

// New builds a converter service.
func New(opts Options) (*Service, error) {
	cfg := opts.Config
	if cfg.MaxBlocksPerRequest == 0 {
		cfg.MaxBlocksPerRequest = runtimeconfig.DefaultConfig().MaxBlocksPerRequest
	}
	if err := cfg.ValidateParseOnly(); err != nil {
		return nil, err
	}

	resolver := opts.Resolver
	if resolver == nil {
		fetcher := media.NewHTTPFetcher(media.FetcherConfig{
			MaxBytes: cfg.Media.MaxFetchBytes,
			Timeout:  cfg.Media.FetchTimeout,
		})
		resolver = media.NewResolver(fetcher, logging.MediaLogger(opts.Logger))
	}

	retry := opts.Retry
	if retry.Attempts == 0 {
		retry = uploader.DefaultRetryConfig()
	}

	return &Service{
		cfg:      cfg,
		api:      opts.API,
		parser:   markdown.NewGoldmarkParser(markdown.ParseOptions{Extensions: cfg.Markdown.Extensions}),
		resolver: resolver,
		renderer: opts.Renderer,
		store:    opts.Store,
		logger:   logging.ModuleLogger(opts.Logger, ""),
		markLog:  logging.MarkdownLogger(opts.Logger),
		planLog:  logging.PlannerLogger(opts.Logger),
		upLog:    logging.UploaderLogger(opts.Logger),
		stateLog: logging.StateLogger(opts.Logger),
		retry:    retry,
	}, nil
}

// Convert creates a new document from Markdown source.
func (s *Service) Convert(ctx context.Context, source []byte, opts interfaces.ConvertOptions) (*interfaces.ConvertResult, error) {
	if s.api == nil {
		return nil, ErrNoDocumentAPI
	}

	prepared, cleanup, err := s.prepare(ctx, source)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	title := s.resolveTitle(prepared, opts)
	folder := firstNonEmpty(prepared.frontMatter.Folder, opts.DestinationFolder, s.cfg.DestinationFolder)

	logger := s.logger
	logger.Info("creating document", "title", title, "folder", folder)

	handle, err := s.api.CreateDocument(ctx, title, folder)
	if err != nil {
		return nil, fmt.Errorf("converter: create document: %w", err)
	}
	if handle.DocumentID == "" {
		return nil, ErrDocumentIDMissing
	}

	revision, err := s.uploadTo(ctx, handle, prepared)
	if err != nil {
		return nil, err
	}

	if target := strings.TrimSpace(s.cfg.Remote.TransferOwnerTo); target != "" {
		if err := s.api.TransferOwnership(ctx, handle.DocumentID, target); err != nil {
			logger.Warn("ownership transfer failed", "document_id", handle.DocumentID, "target", target, "error", err)
		}
	}

	result := &interfaces.ConvertResult{
		DocumentID: handle.DocumentID,
		URL:        handle.URL,
		RevisionID: revision,
		Title:      title,
	}
	s.recordState(ctx, opts.SourcePath, handle, revision, title)
	return result, nil
}

// AppendToDocument appends converted blocks under an existing document's
// root.
func (s *Service) AppendToDocument(ctx context.Context, source []byte, documentID string, opts interfaces.ConvertOptions) (*interfaces.ConvertResult, error) {
	if s.api == nil {
		return nil, ErrNoDocumentAPI
	}
	if strings.TrimSpace(documentID) == "" {
		return nil, ErrDocumentIDMissing
	}

	prepared, cleanup, err := s.prepare(ctx, source)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	handle := interfaces.DocumentHandle{DocumentID: documentID}
	revision, err := s.uploadTo(ctx, handle, prepared)
	if err != nil {
		return nil, err
	}

	result := &interfaces.ConvertResult{
		DocumentID: documentID,
		RevisionID: revision,
		Title:      s.resolveTitle(prepared, opts),
	}
	s.recordState(ctx, opts.SourcePath, handle, revision, result.Title)
	return result, nil
}

// ReplaceDocument deletes every direct child of the document root, then
// appends the converted blocks.
func (s *Service) ReplaceDocument(ctx context.Context, source []byte, documentID string, opts interfaces.ConvertOptions) (*interfaces.ConvertResult, error) {
	if s.api == nil {
		return nil, ErrNoDocumentAPI
	}
	if strings.TrimSpace(documentID) == "" {
		return nil, ErrDocumentIDMissing
	}

	if err := s.clearDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.AppendToDocument(ctx, source, documentID, opts)
}

// Parse converts Markdown into the block forest without touching the
// network. Diagram rendering is disabled; mermaid fences stay code blocks.
func (s *Service) Parse(ctx context.Context, source []byte) (*interfaces.ParseResult, error) {
	frontMatter, body, err := markdown.ParseFrontMatter(source)
	if err != nil {
		return nil, fmt.Errorf("converter: parse frontmatter: %w", err)
	}

	doc, err := s.parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("converter: parse markdown: %w", err)
	}

	walker := markdown.NewWalker(markdown.WalkerConfig{
		ImageBaseDir:         s.cfg.Media.ImageBaseDir,
		DownloadRemoteImages: s.cfg.Media.DownloadRemoteImages,
		Logger:               s.markLog,
	})
	walked, err := walker.Walk(ctx, doc, body)
	if err != nil {
		return nil, err
	}

	result := &interfaces.ParseResult{
		Forest:      walked.Forest,
		Media:       walked.Media,
		FrontMatter: frontMatter,
	}
	result.Title = firstNonEmpty(frontMatter.Title, firstHeadingText(walked.Forest))
	return result, nil
}

// preparedSource is one conversion's parsed and walked input.
type preparedSource struct {
	frontMatter interfaces.FrontMatter
	forest      *blocks.Forest
	media       map[string]*blocks.MediaReference
}

// prepare runs frontmatter extraction, parsing, and the tree walk. The
// returned cleanup removes the conversion's temp dir and must run on every
// exit path.
func (s *Service) prepare(ctx context.Context, source []byte) (*preparedSource, func(), error) {
	// The temp dir exists before parsing so diagram rendering has a
	// spool target for the whole conversion.
	tempDir, err := os.MkdirTemp("", "docsync-*")
	if err != nil {
		return nil, nil, fmt.Errorf("converter: create temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(tempDir) }

	fail := func(err error) (*preparedSource, func(), error) {
		cleanup()
		return nil, nil, err
	}

	frontMatter, body, err := markdown.ParseFrontMatter(source)
	if err != nil {
		return fail(fmt.Errorf("converter: parse frontmatter: %w", err))
	}

	doc, err := s.parser.Parse(body)
	if err != nil {
		return fail(fmt.Errorf("converter: parse markdown: %w", err))
	}

	renderer, err := s.diagramRenderer(tempDir)
	if err != nil {
		return fail(err)
	}

	walker := markdown.NewWalker(markdown.WalkerConfig{
		ImageBaseDir:         s.cfg.Media.ImageBaseDir,
		DownloadRemoteImages: s.cfg.Media.DownloadRemoteImages,
		DiagramEnabled:       s.cfg.Diagram.Enabled && renderer != nil,
		DiagramOptions: interfaces.DiagramOptions{
			Theme:           s.cfg.Diagram.Theme,
			BackgroundColor: s.cfg.Diagram.BackgroundColor,
			Width:           s.cfg.Diagram.Width,
			Height:          s.cfg.Diagram.Height,
		},
		Renderer: renderer,
		Logger:   s.markLog,
	})
	walked, err := walker.Walk(ctx, doc, body)
	if err != nil {
		return fail(err)
	}

	return &preparedSource{
		frontMatter: frontMatter,
		forest:      walked.Forest,
		media:       walked.Media,
	}, cleanup, nil
}

func (s *Service) diagramRenderer(workDir string) (interfaces.DiagramRenderer, error) {
	if s.renderer != nil {
		return s.renderer, nil
	}
	if !s.cfg.Diagram.Enabled {
		return nil, nil
	}
	return newHTTPRenderer(s.cfg.Diagram, workDir, s.markLog)
}

// uploadTo plans and submits the prepared forest under the document root.
func (s *Service) uploadTo(ctx context.Context, handle interfaces.DocumentHandle, prepared *preparedSource) (string, error) {
	units, err := planner.Plan(prepared.forest, handle.DocumentID, s.cfg.MaxBlocksPerRequest)
	if err != nil {
		return "", fmt.Errorf("converter: plan upload: %w", err)
	}

	s.planLog.Debug("planned upload",
		"blocks", prepared.forest.Len(),
		"units", len(units),
		"ceiling", s.cfg.MaxBlocksPerRequest,
	)

	if len(units) == 0 {
		// Nothing to upload; the (possibly fresh) document stands as-is.
		return handle.RevisionID, nil
	}

	coord := uploader.NewCoordinator(s.api, s.resolver, s.retry, s.upLog)
	return coord.Upload(ctx, handle, prepared.forest, units, prepared.media, handle.DocumentID)
}

// clearDocument pages through the root's children and deletes each one.
func (s *Service) clearDocument(ctx context.Context, documentID string) error {
	logger := s.logger
	pageToken := ""
	for {
		page, err := s.api.ListChildren(ctx, documentID, documentID, pageToken)
		if err != nil {
			return fmt.Errorf("converter: list document children: %w", err)
		}
		for _, item := range page.Items {
			if err := s.api.DeleteBlock(ctx, documentID, item.BlockID); err != nil {
				return fmt.Errorf("converter: delete block %s: %w", item.BlockID, err)
			}
		}
		logger.Debug("cleared document page", "document_id", documentID, "deleted", len(page.Items))
		if !page.HasMore || page.NextPageToken == "" {
			return nil
		}
		pageToken = page.NextPageToken
	}
}

func (s *Service) resolveTitle(prepared *preparedSource, opts interfaces.ConvertOptions) string {
	return firstNonEmpty(
		prepared.frontMatter.Title,
		opts.Title,
		s.cfg.Title,
		firstHeadingText(prepared.forest),
		fallbackTitle,
	)
}

func (s *Service) recordState(ctx context.Context, sourcePath string, handle interfaces.DocumentHandle, revision, title string) {
	if s.store == nil || strings.TrimSpace(sourcePath) == "" {
		return
	}
	handle.RevisionID = revision
	if _, err := s.store.Record(ctx, sourcePath, handle, title); err != nil {
		s.stateLog.Warn("failed to record sync state",
			"source_path", sourcePath, "document_id", handle.DocumentID, "error", err)
	}
}

func firstHeadingText(forest *blocks.Forest) string {
	for _, block := range forest.Blocks() {
		if block.Kind == blocks.KindHeading {
			return strings.TrimSpace(block.PlainText())
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
