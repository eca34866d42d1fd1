package markdown

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-slug"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"

	"github.com/goliatone/go-docsync/blocks"
	"github.com/goliatone/go-docsync/internal/logging"
	"github.com/goliatone/go-docsync/internal/media"
	"github.com/goliatone/go-docsync/pkg/interfaces"
)

// WalkerConfig captures the dependencies and policies the tree walk needs.
type WalkerConfig struct {
	// ImageBaseDir anchors relative filesystem image paths.
	ImageBaseDir string
	// DownloadRemoteImages controls whether http(s) image sources become
	// media references. When disabled those images degrade to linked text.
	DownloadRemoteImages bool
	// DiagramEnabled turns mermaid fences into rendered images.
	DiagramEnabled bool
	// DiagramOptions is forwarded to the renderer on every request.
	DiagramOptions interfaces.DiagramOptions
	// Renderer performs the external diagram rendering call.
	Renderer interfaces.DiagramRenderer
	Logger   interfaces.Logger
}

// Walker converts a parsed Markdown syntax tree into a block forest plus the
// side table of unresolved media references. A Walker is reusable; per-call
// state lives in the walk run.
type Walker struct {
	cfg    WalkerConfig
	logger interfaces.Logger
}

// NewWalker builds a walker from the supplied configuration.
func NewWalker(cfg WalkerConfig) *Walker {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Walker{cfg: cfg, logger: logger}
}

// WalkResult pairs the produced forest with its media side table, keyed by
// the owning Image block's temporary id.
type WalkResult struct {
	Forest *blocks.Forest
	Media  map[string]*blocks.MediaReference
}

// Walk traverses the document depth-first, preserving sibling order, and
// returns the forest of content blocks.
func (w *Walker) Walk(ctx context.Context, doc ast.Node, source []byte) (*WalkResult, error) {
	run := &walkRun{
		walker: w,
		ctx:    ctx,
		source: source,
		forest: blocks.NewForest(),
		media:  map[string]*blocks.MediaReference{},
	}

	if doc != nil {
		if _, err := run.container(doc); err != nil {
			return nil, err
		}
	}

	if err := run.forest.Validate(); err != nil {
		return nil, err
	}

	return &WalkResult{Forest: run.forest, Media: run.media}, nil
}

type walkRun struct {
	walker *Walker
	ctx    context.Context
	source []byte
	forest *blocks.Forest
	media  map[string]*blocks.MediaReference
	seq    int
}

func (r *walkRun) cfg() WalkerConfig {
	return r.walker.cfg
}

func (r *walkRun) nextID(kind blocks.Kind) string {
	r.seq++
	return fmt.Sprintf("tmp_%s_%d", kind, r.seq)
}

func (r *walkRun) add(block *blocks.ContentBlock) (*blocks.ContentBlock, error) {
	if err := r.forest.Add(block); err != nil {
		return nil, err
	}
	return block, nil
}

// container transforms every child of node and returns the emitted block ids
// in order.
func (r *walkRun) container(node ast.Node) ([]string, error) {
	var ids []string
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		emitted, err := r.node(child)
		if err != nil {
			return nil, err
		}
		ids = append(ids, emitted...)
	}
	return ids, nil
}

// node dispatches one block-level syntax node. It may emit zero blocks
// (dropped nodes), one block, or several (lists, chunked tables).
func (r *walkRun) node(node ast.Node) ([]string, error) {
	switch n := node.(type) {
	case *ast.Heading:
		return r.heading(n)
	case *ast.Paragraph:
		if img, ok := imageOnlyParagraph(n); ok {
			return r.image(img)
		}
		return r.textBlock(n)
	case *ast.TextBlock:
		return r.textBlock(n)
	case *ast.List:
		return r.list(n)
	case *ast.FencedCodeBlock:
		return r.fencedCode(n)
	case *ast.CodeBlock:
		return r.codeBlock("", linesValue(n, r.source))
	case *ast.Blockquote:
		return r.blockquote(n)
	case *ast.ThematicBreak:
		block, err := r.add(&blocks.ContentBlock{ID: r.nextID(blocks.KindDivider), Kind: blocks.KindDivider})
		if err != nil {
			return nil, err
		}
		return []string{block.ID}, nil
	case *extast.Table:
		return r.table(n)
	default:
		return r.degrade(node)
	}
}

func (r *walkRun) heading(n *ast.Heading) ([]string, error) {
	level := n.Level
	if level < 1 {
		level = 1
	}
	if level > blocks.MaxHeadingLevel {
		level = blocks.MaxHeadingLevel
	}
	block, err := r.add(&blocks.ContentBlock{
		ID:           r.nextID(blocks.KindHeading),
		Kind:         blocks.KindHeading,
		HeadingLevel: level,
		Runs:         ensureRuns(resolveInline(n, r.source, styleContext{})),
	})
	if err != nil {
		return nil, err
	}
	return []string{block.ID}, nil
}

func (r *walkRun) textBlock(n ast.Node) ([]string, error) {
	block, err := r.add(&blocks.ContentBlock{
		ID:   r.nextID(blocks.KindText),
		Kind: blocks.KindText,
		Runs: ensureRuns(resolveInline(n, r.source, styleContext{})),
	})
	if err != nil {
		return nil, err
	}
	return []string{block.ID}, nil
}

func (r *walkRun) list(n *ast.List) ([]string, error) {
	var ids []string
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		listItem, ok := item.(*ast.ListItem)
		if !ok {
			continue
		}
		id, err := r.listItem(listItem, n.IsOrdered())
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// listItem maps one list item to a bullet/ordered/todo block. The first
// paragraph supplies the item's text; every further child becomes a nested
// block attached under the item.
func (r *walkRun) listItem(item *ast.ListItem, ordered bool) (string, error) {
	kind := blocks.KindBullet
	if ordered {
		kind = blocks.KindOrdered
	}

	var runs []blocks.TextRun
	done := false
	rest := item.FirstChild()
	if first := item.FirstChild(); first != nil && isTextual(first) {
		if checkbox, ok := first.FirstChild().(*extast.TaskCheckBox); ok {
			kind = blocks.KindTodo
			done = checkbox.IsChecked
		}
		runs = resolveInline(first, r.source, styleContext{})
		rest = first.NextSibling()
	}

	block, err := r.add(&blocks.ContentBlock{
		ID:   r.nextID(kind),
		Kind: kind,
		Done: done,
		Runs: ensureRuns(runs),
	})
	if err != nil {
		return "", err
	}

	for child := rest; child != nil; child = child.NextSibling() {
		emitted, err := r.node(child)
		if err != nil {
			return "", err
		}
		block.Children = append(block.Children, emitted...)
	}
	return block.ID, nil
}

func (r *walkRun) fencedCode(n *ast.FencedCodeBlock) ([]string, error) {
	language := strings.ToLower(strings.TrimSpace(string(n.Language(r.source))))
	content := linesValue(n, r.source)

	if language == "mermaid" && r.cfg().DiagramEnabled && r.cfg().Renderer != nil {
		rendered, err := r.cfg().Renderer.Render(r.ctx, content, r.cfg().DiagramOptions)
		if err == nil {
			return r.renderedDiagram(rendered)
		}
		// Never fail the conversion over a diagram; keep the source visible.
		r.walker.logger.Warn("diagram render failed, falling back to code block", "error", err)
	}

	return r.codeBlock(language, content)
}

func (r *walkRun) codeBlock(language, content string) ([]string, error) {
	block, err := r.add(&blocks.ContentBlock{
		ID:       r.nextID(blocks.KindCode),
		Kind:     blocks.KindCode,
		Language: language,
		Runs:     ensureRuns([]blocks.TextRun{{Content: content}}),
	})
	if err != nil {
		return nil, err
	}
	return []string{block.ID}, nil
}

func (r *walkRun) renderedDiagram(data []byte) ([]string, error) {
	block, err := r.add(&blocks.ContentBlock{ID: r.nextID(blocks.KindImage), Kind: blocks.KindImage})
	if err != nil {
		return nil, err
	}
	r.media[block.ID] = &blocks.MediaReference{
		BlockID:  block.ID,
		Source:   blocks.MediaSourceBytes,
		Data:     data,
		Filename: fmt.Sprintf("diagram-%d.png", r.seq),
	}
	return []string{block.ID}, nil
}

func (r *walkRun) blockquote(n *ast.Blockquote) ([]string, error) {
	block, err := r.add(&blocks.ContentBlock{
		ID:   r.nextID(blocks.KindQuote),
		Kind: blocks.KindQuote,
	})
	if err != nil {
		return nil, err
	}
	children, err := r.container(n)
	if err != nil {
		return nil, err
	}
	block.Children = children
	return []string{block.ID}, nil
}

// image emits a standalone Image block and records its media reference.
// Sources that cannot be resolved degrade to linked text instead of failing
// the conversion.
func (r *walkRun) image(n *ast.Image) ([]string, error) {
	alt := strings.TrimSpace(nodeText(n, r.source))
	destination := strings.TrimSpace(string(n.Destination))

	ref, ok := r.classifyMediaSource(destination, alt)
	if !ok {
		return r.linkedTextFallback(alt, destination)
	}

	block, err := r.add(&blocks.ContentBlock{ID: r.nextID(blocks.KindImage), Kind: blocks.KindImage})
	if err != nil {
		return nil, err
	}
	ref.BlockID = block.ID
	r.media[block.ID] = ref
	return []string{block.ID}, nil
}

func (r *walkRun) classifyMediaSource(destination, alt string) (*blocks.MediaReference, bool) {
	switch {
	case destination == "":
		return nil, false
	case strings.HasPrefix(destination, "data:"):
		data, ext, err := media.DecodeDataURL(destination)
		if err != nil {
			r.walker.logger.Warn("invalid data url image dropped", "error", err)
			return nil, false
		}
		return &blocks.MediaReference{
			Source:   blocks.MediaSourceBytes,
			Data:     data,
			Filename: mediaFilename(alt, ext),
		}, true
	case strings.HasPrefix(destination, "http://"), strings.HasPrefix(destination, "https://"):
		if !r.cfg().DownloadRemoteImages {
			return nil, false
		}
		return &blocks.MediaReference{
			Source:   blocks.MediaSourceURL,
			URL:      destination,
			Filename: urlFilename(destination, alt),
		}, true
	default:
		path := destination
		if !filepath.IsAbs(path) && r.cfg().ImageBaseDir != "" {
			path = filepath.Join(r.cfg().ImageBaseDir, path)
		}
		return &blocks.MediaReference{
			Source:   blocks.MediaSourceFile,
			Path:     path,
			Filename: filepath.Base(path),
		}, true
	}
}

func (r *walkRun) linkedTextFallback(alt, destination string) ([]string, error) {
	if alt == "" && destination == "" {
		return nil, nil
	}
	if alt == "" {
		alt = destination
	}
	style := blocks.TextStyle{}
	if destination != "" {
		style.Link = encodeLinkURL(destination)
	}
	block, err := r.add(&blocks.ContentBlock{
		ID:   r.nextID(blocks.KindText),
		Kind: blocks.KindText,
		Runs: []blocks.TextRun{{Content: alt, Style: style}},
	})
	if err != nil {
		return nil, err
	}
	return []string{block.ID}, nil
}

// degrade extracts plain text from an unrecognized node; productions with no
// extractable text are dropped silently.
func (r *walkRun) degrade(node ast.Node) ([]string, error) {
	content := strings.TrimSpace(nodeText(node, r.source))
	if content == "" {
		r.walker.logger.Debug("dropping node with no extractable text", "node", node.Kind().String())
		return nil, nil
	}
	block, err := r.add(&blocks.ContentBlock{
		ID:   r.nextID(blocks.KindText),
		Kind: blocks.KindText,
		Runs: []blocks.TextRun{{Content: content}},
	})
	if err != nil {
		return nil, err
	}
	return []string{block.ID}, nil
}

func imageOnlyParagraph(n *ast.Paragraph) (*ast.Image, bool) {
	if n.ChildCount() != 1 {
		return nil, false
	}
	img, ok := n.FirstChild().(*ast.Image)
	return img, ok
}

func isTextual(node ast.Node) bool {
	switch node.(type) {
	case *ast.TextBlock, *ast.Paragraph:
		return true
	default:
		return false
	}
}

func linesValue(n ast.Node, source []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		sb.Write(segment.Value(source))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func mediaFilename(alt, ext string) string {
	name := "image"
	if normalized, err := slug.Normalize(alt); err == nil && normalized != "" {
		name = normalized
	}
	if ext == "" {
		ext = ".png"
	}
	return name + ext
}

func urlFilename(rawURL, alt string) string {
	trimmed := rawURL
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	if base := filepath.Base(trimmed); base != "" && base != "." && base != "/" && strings.Contains(base, ".") {
		return base
	}
	return mediaFilename(alt, ".png")
}
