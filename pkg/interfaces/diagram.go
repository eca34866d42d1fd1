package interfaces

import "context"

// DiagramOptions configures a single diagram render request.
type DiagramOptions struct {
	Theme           string
	BackgroundColor string
	Width           int
	Height          int
}

// DiagramRenderer converts diagram source code (e.g. mermaid) into image
// bytes. A render failure is recoverable: the walker falls back to a plain
// code block.
type DiagramRenderer interface {
	Render(ctx context.Context, source string, opts DiagramOptions) ([]byte, error)
}
