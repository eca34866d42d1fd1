package interfaces

// FrontMatter captures the metadata a document can carry ahead of its
// Markdown body. Folder overrides the configured destination folder.
type FrontMatter struct {
	Title  string
	Folder string
	Tags   []string
	Custom map[string]any
	Raw    map[string]any
}

// Document pairs frontmatter with the Markdown body that remains after the
// delimiters are stripped.
type Document struct {
	FrontMatter FrontMatter
	Body        []byte
}
