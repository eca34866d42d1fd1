// Package markdown turns Markdown source into the block forest the planner
// and uploader operate on. Parsing is delegated to goldmark; the walker owns
// the mapping from syntax-tree nodes to content blocks.
package markdown
