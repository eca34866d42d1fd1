// Package convertcmd declares the converter command messages and their
// handlers.
package convertcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	convertMessageType = "docsync.convert"
	appendMessageType  = "docsync.append"
	replaceMessageType = "docsync.replace"
	parseMessageType   = "docsync.parse"
)

// ConvertCommand creates a new remote document from Markdown source.
type ConvertCommand struct {
	// Source is the raw Markdown text.
	Source []byte `json:"source"`
	// SourcePath identifies the originating file for sync-state tracking. Optional.
	SourcePath string `json:"source_path,omitempty"`
	// Title overrides the configured document title.
	Title string `json:"title,omitempty"`
	// DestinationFolder overrides the configured target folder token.
	DestinationFolder string `json:"destination_folder,omitempty"`
}

// Type implements command.Message.
func (ConvertCommand) Type() string { return convertMessageType }

// Validate ensures the command carries Markdown source.
func (cmd ConvertCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Source, validation.By(sourcePresent(convertMessageType))),
	)
}

// AppendCommand appends converted blocks to an existing document.
type AppendCommand struct {
	Source     []byte `json:"source"`
	SourcePath string `json:"source_path,omitempty"`
	// DocumentID is the existing document to append to.
	DocumentID string `json:"document_id"`
}

// Type implements command.Message.
func (AppendCommand) Type() string { return appendMessageType }

// Validate ensures source and target document are present.
func (cmd AppendCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Source, validation.By(sourcePresent(appendMessageType))),
		validation.Field(&cmd.DocumentID, validation.Required, validation.By(notBlank(appendMessageType, "document_id"))),
	)
}

// ReplaceCommand replaces an existing document's content.
type ReplaceCommand struct {
	Source     []byte `json:"source"`
	SourcePath string `json:"source_path,omitempty"`
	DocumentID string `json:"document_id"`
}

// Type implements command.Message.
func (ReplaceCommand) Type() string { return replaceMessageType }

// Validate ensures source and target document are present.
func (cmd ReplaceCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Source, validation.By(sourcePresent(replaceMessageType))),
		validation.Field(&cmd.DocumentID, validation.Required, validation.By(notBlank(replaceMessageType, "document_id"))),
	)
}

// ParseCommand converts Markdown to the block forest without any network
// call, for inspection and testing.
type ParseCommand struct {
	Source []byte `json:"source"`
}

// Type implements command.Message.
func (ParseCommand) Type() string { return parseMessageType }

// Validate accepts any source, including empty input.
func (cmd ParseCommand) Validate() error { return nil }

// sourcePresent rejects a nil source slice; empty Markdown is legal, an
// unset field is a caller bug.
func sourcePresent(messageType string) validation.RuleFunc {
	return func(value any) error {
		if raw, ok := value.([]byte); !ok || raw == nil {
			return validation.NewError(messageType+".source_required", "markdown source is required")
		}
		return nil
	}
}

func notBlank(messageType, field string) validation.RuleFunc {
	return func(value any) error {
		if str, ok := value.(string); !ok || strings.TrimSpace(str) == "" {
			return validation.NewError(messageType+"."+field+"_required", field+" is required")
		}
		return nil
	}
}
