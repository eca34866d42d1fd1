package markdown

import (
	"testing"

	"github.com/goliatone/go-docsync/blocks"
)

// inlineRuns parses a single-paragraph source and returns its runs.
func inlineRuns(t *testing.T, source string) []blocks.TextRun {
	t.Helper()

	result := walk(t, source, WalkerConfig{})
	roots := rootBlocks(t, result)
	if len(roots) != 1 {
		t.Fatalf("expected one block, got %d", len(roots))
	}
	return roots[0].Runs
}

func TestInlinePlainText(t *testing.T) {
	runs := inlineRuns(t, "just words\n")
	if len(runs) != 1 {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[0].Content != "just words" || !runs[0].Style.IsZero() {
		t.Fatalf("run = %+v", runs[0])
	}
}

func TestInlineNestedEmphasisFlattens(t *testing.T) {
	runs := inlineRuns(t, "**bold *italic* text**\n")
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %+v", runs)
	}

	if runs[0].Content != "bold " || !runs[0].Style.Bold || runs[0].Style.Italic {
		t.Fatalf("run 0 = %+v", runs[0])
	}
	if runs[1].Content != "italic" || !runs[1].Style.Bold || !runs[1].Style.Italic {
		t.Fatalf("run 1 = %+v", runs[1])
	}
	if runs[2].Content != " text" || !runs[2].Style.Bold || runs[2].Style.Italic {
		t.Fatalf("run 2 = %+v", runs[2])
	}
}

func TestInlineStrikethrough(t *testing.T) {
	runs := inlineRuns(t, "~~gone~~\n")
	if len(runs) != 1 || !runs[0].Style.Strikethrough {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[0].Content != "gone" {
		t.Fatalf("content = %q", runs[0].Content)
	}
}

func TestInlineCodeSpan(t *testing.T) {
	runs := inlineRuns(t, "run `go version` now\n")
	if len(runs) != 3 {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[1].Content != "go version" || !runs[1].Style.InlineCode {
		t.Fatalf("code run = %+v", runs[1])
	}
	if runs[0].Style.InlineCode || runs[2].Style.InlineCode {
		t.Fatal("inline code must not leak to neighbours")
	}
}

func TestInlineLink(t *testing.T) {
	runs := inlineRuns(t, "see [the docs](https://example.com/docs) here\n")
	if len(runs) != 3 {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[1].Content != "the docs" || runs[1].Style.Link != "https://example.com/docs" {
		t.Fatalf("link run = %+v", runs[1])
	}
	if runs[0].Style.Link != "" || runs[2].Style.Link != "" {
		t.Fatal("link must not leak to neighbours")
	}
}

func TestInlineLinkWithStyledLabel(t *testing.T) {
	runs := inlineRuns(t, "[**strong** label](https://example.com)\n")
	if len(runs) != 2 {
		t.Fatalf("runs = %+v", runs)
	}
	if !runs[0].Style.Bold || runs[0].Style.Link != "https://example.com" {
		t.Fatalf("run 0 = %+v", runs[0])
	}
	if runs[1].Style.Bold || runs[1].Style.Link != "https://example.com" {
		t.Fatalf("run 1 = %+v", runs[1])
	}
}

func TestInlineAutoLink(t *testing.T) {
	runs := inlineRuns(t, "visit https://example.com today\n")

	var linked *blocks.TextRun
	for i := range runs {
		if runs[i].Style.Link != "" {
			linked = &runs[i]
		}
	}
	if linked == nil {
		t.Fatalf("no linked run in %+v", runs)
	}
	if linked.Content != "https://example.com" {
		t.Fatalf("label = %q", linked.Content)
	}
}

func TestInlineSoftBreakBecomesNewline(t *testing.T) {
	runs := inlineRuns(t, "line one\nline two\n")
	if len(runs) != 3 {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[1].Content != "\n" {
		t.Fatalf("middle run = %q", runs[1].Content)
	}
}

func TestInlineImageDegradesToAltText(t *testing.T) {
	runs := inlineRuns(t, "before ![chart](https://example.com/c.png) after\n")
	if len(runs) != 3 {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[1].Content != "chart" {
		t.Fatalf("alt run = %q", runs[1].Content)
	}
}

func TestInlineImageWithoutAltUsesPlaceholder(t *testing.T) {
	runs := inlineRuns(t, "before ![](https://example.com/c.png) after\n")
	if runs[1].Content != inlineImagePlaceholder {
		t.Fatalf("placeholder run = %q", runs[1].Content)
	}
}

func TestEnsureRunsEmptyList(t *testing.T) {
	runs := ensureRuns(nil)
	if len(runs) != 1 || runs[0].Content != "" {
		t.Fatalf("runs = %+v", runs)
	}
}

func TestEncodeLinkURL(t *testing.T) {
	cases := map[string]string{
		"https://example.com/a b": "https://example.com/a%20b",
		"  https://example.com":   "https://example.com",
		"":                        "",
	}
	for raw, want := range cases {
		if got := encodeLinkURL(raw); got != want {
			t.Fatalf("encodeLinkURL(%q) = %q, want %q", raw, got, want)
		}
	}
}
