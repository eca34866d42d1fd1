package markdown

import (
	"net/url"
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"

	"github.com/goliatone/go-docsync/blocks"
)

// styleContext is the ambient formatting state while folding nested inline
// nodes into flat runs. Each nested emphasis/link/code node extends the
// context for its subtree; the output never nests.
type styleContext struct {
	bold          bool
	italic        bool
	strikethrough bool
	underline     bool
	inlineCode    bool
	link          string
}

func (sc styleContext) style() blocks.TextStyle {
	return blocks.TextStyle{
		Bold:          sc.bold,
		Italic:        sc.italic,
		Strikethrough: sc.strikethrough,
		Underline:     sc.underline,
		InlineCode:    sc.inlineCode,
		Link:          sc.link,
	}
}

const inlineImagePlaceholder = "[image]"

// resolveInline flattens the inline children of node into styled runs.
func resolveInline(node ast.Node, source []byte, sc styleContext) []blocks.TextRun {
	var runs []blocks.TextRun
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		runs = append(runs, resolveInlineNode(child, source, sc)...)
	}
	return runs
}

func resolveInlineNode(node ast.Node, source []byte, sc styleContext) []blocks.TextRun {
	switch n := node.(type) {
	case *ast.Text:
		var runs []blocks.TextRun
		if content := string(n.Segment.Value(source)); content != "" {
			runs = append(runs, blocks.TextRun{Content: content, Style: sc.style()})
		}
		if n.SoftLineBreak() || n.HardLineBreak() {
			runs = append(runs, blocks.TextRun{Content: "\n", Style: sc.style()})
		}
		return runs
	case *ast.String:
		if len(n.Value) == 0 {
			return nil
		}
		return []blocks.TextRun{{Content: string(n.Value), Style: sc.style()}}
	case *ast.Emphasis:
		if n.Level >= 2 {
			sc.bold = true
		} else {
			sc.italic = true
		}
		return resolveInline(n, source, sc)
	case *extast.Strikethrough:
		sc.strikethrough = true
		return resolveInline(n, source, sc)
	case *ast.CodeSpan:
		sc.inlineCode = true
		return resolveInline(n, source, sc)
	case *ast.Link:
		sc.link = encodeLinkURL(string(n.Destination))
		return resolveInline(n, source, sc)
	case *ast.AutoLink:
		target := string(n.URL(source))
		sc.link = encodeLinkURL(target)
		label := string(n.Label(source))
		if label == "" {
			label = target
		}
		return []blocks.TextRun{{Content: label, Style: sc.style()}}
	case *ast.Image:
		// Inline images never become structural blocks; they degrade to
		// their alt text.
		alt := strings.TrimSpace(nodeText(n, source))
		if alt == "" {
			alt = inlineImagePlaceholder
		}
		return []blocks.TextRun{{Content: alt, Style: sc.style()}}
	case *ast.RawHTML:
		return nil
	default:
		return resolveInline(node, source, sc)
	}
}

// ensureRuns guarantees at least one run; the remote API rejects empty
// element lists.
func ensureRuns(runs []blocks.TextRun) []blocks.TextRun {
	if len(runs) == 0 {
		return []blocks.TextRun{{Content: ""}}
	}
	return runs
}

// encodeLinkURL percent-encodes a link destination before storage.
func encodeLinkURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return url.PathEscape(raw)
	}
	return parsed.String()
}

// nodeText collects the plain text of a subtree, ignoring styling.
func nodeText(node ast.Node, source []byte) string {
	var sb strings.Builder
	collectText(node, source, &sb)
	return sb.String()
}

func collectText(node ast.Node, source []byte, sb *strings.Builder) {
	switch n := node.(type) {
	case *ast.Text:
		sb.Write(n.Segment.Value(source))
	case *ast.String:
		sb.Write(n.Value)
	}
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		collectText(child, source, sb)
	}
}
