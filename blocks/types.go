package blocks

import "strings"

// Kind identifies the structural role of a block. The set is closed; the
// walker and the remote codec both switch over it exhaustively.
type Kind string

const (
	KindText      Kind = "text"
	KindHeading   Kind = "heading"
	KindBullet    Kind = "bullet"
	KindOrdered   Kind = "ordered"
	KindTodo      Kind = "todo"
	KindCode      Kind = "code"
	KindQuote     Kind = "quote"
	KindDivider   Kind = "divider"
	KindImage     Kind = "image"
	KindTable     Kind = "table"
	KindTableCell Kind = "table_cell"
)

// MaxHeadingLevel caps heading depth at what the remote API accepts.
const MaxHeadingLevel = 9

// TextStyle is the style bag attached to a single run. The zero value means
// plain text.
type TextStyle struct {
	Bold          bool   `json:"bold,omitempty"`
	Italic        bool   `json:"italic,omitempty"`
	Strikethrough bool   `json:"strikethrough,omitempty"`
	Underline     bool   `json:"underline,omitempty"`
	InlineCode    bool   `json:"inline_code,omitempty"`
	Link          string `json:"link,omitempty"`
}

// IsZero reports whether the style carries no formatting at all.
func (s TextStyle) IsZero() bool {
	return s == TextStyle{}
}

// TextRun is one styled span of text. Runs concatenate in order to form a
// block's displayed content.
type TextRun struct {
	Content string    `json:"content"`
	Style   TextStyle `json:"style,omitempty"`
}

// TablePayload records the shape of a table block. ColumnWidths is indexed by
// column and expressed in display units.
type TablePayload struct {
	Rows         int   `json:"rows"`
	Columns      int   `json:"columns"`
	ColumnWidths []int `json:"column_widths"`
}

// ContentBlock is one node in the output forest. Children hold ordered block
// ids, never pointers, so the id reconciliation phase can address any block
// without walking the tree.
type ContentBlock struct {
	ID           string        `json:"id"`
	Kind         Kind          `json:"kind"`
	Runs         []TextRun     `json:"runs,omitempty"`
	HeadingLevel int           `json:"heading_level,omitempty"`
	Done         bool          `json:"done,omitempty"`
	Language     string        `json:"language,omitempty"`
	Table        *TablePayload `json:"table,omitempty"`
	Children     []string      `json:"children,omitempty"`
}

// PlainText concatenates the block's run contents without styling. Useful for
// logging and for table column measurement.
func (b *ContentBlock) PlainText() string {
	if b == nil || len(b.Runs) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, run := range b.Runs {
		sb.WriteString(run.Content)
	}
	return sb.String()
}

// MediaSource distinguishes how the bytes behind an image reference are
// obtained.
type MediaSource string

const (
	MediaSourceURL   MediaSource = "url"
	MediaSourceFile  MediaSource = "file"
	MediaSourceBytes MediaSource = "bytes"
)

// MediaReference is the deferred payload of an Image block, keyed by the
// block's temporary id. Exactly one of URL, Path, or Data is populated
// depending on Source.
type MediaReference struct {
	BlockID  string
	Source   MediaSource
	URL      string
	Path     string
	Data     []byte
	Filename string
}
