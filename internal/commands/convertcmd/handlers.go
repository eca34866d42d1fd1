package convertcmd

import (
	"context"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-docsync/internal/commands"
	"github.com/goliatone/go-docsync/internal/logging"
	"github.com/goliatone/go-docsync/pkg/interfaces"
)

const (
	convertOperation = "docsync.convert"
	appendOperation  = "docsync.append"
	replaceOperation = "docsync.replace"
	parseOperation   = "docsync.parse"
)

var (
	_ command.Commander[ConvertCommand] = (*ConvertHandler)(nil)
	_ command.Commander[AppendCommand]  = (*AppendHandler)(nil)
	_ command.Commander[ReplaceCommand] = (*ReplaceHandler)(nil)
	_ command.Commander[ParseCommand]   = (*ParseHandler)(nil)
)

// ResultSink receives a command's conversion outcome; handlers report
// through it because command execution itself only returns errors.
type ResultSink func(*interfaces.ConvertResult)

// ParseSink receives a parse-only command's forest.
type ParseSink func(*interfaces.ParseResult)

// ConvertHandler creates a new remote document from Markdown source.
type ConvertHandler struct {
	inner *commands.Handler[ConvertCommand]
}

// NewConvertHandler binds the handler to the converter service.
func NewConvertHandler(service interfaces.ConverterService, logger interfaces.Logger, sink ResultSink, opts ...commands.HandlerOption[ConvertCommand]) *ConvertHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ConvertCommand) error {
		result, err := service.Convert(ctx, msg.Source, interfaces.ConvertOptions{
			Title:             msg.Title,
			DestinationFolder: msg.DestinationFolder,
			SourcePath:        msg.SourcePath,
		})
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"document_id": result.DocumentID,
			"revision_id": result.RevisionID,
			"url":         result.URL,
		}).Info("docsync.command.convert.completed")
		if sink != nil {
			sink(result)
		}
		return nil
	}

	handlerOpts := append([]commands.HandlerOption[ConvertCommand]{
		commands.WithLogger[ConvertCommand](baseLogger),
		commands.WithOperation[ConvertCommand](convertOperation),
	}, opts...)

	return &ConvertHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute implements command.Commander.
func (h *ConvertHandler) Execute(ctx context.Context, msg ConvertCommand) error {
	return h.inner.Execute(ctx, msg)
}

// AppendHandler appends converted blocks to an existing document.
type AppendHandler struct {
	inner *commands.Handler[AppendCommand]
}

// NewAppendHandler binds the handler to the converter service.
func NewAppendHandler(service interfaces.ConverterService, logger interfaces.Logger, sink ResultSink, opts ...commands.HandlerOption[AppendCommand]) *AppendHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg AppendCommand) error {
		result, err := service.AppendToDocument(ctx, msg.Source, msg.DocumentID, interfaces.ConvertOptions{
			SourcePath: msg.SourcePath,
		})
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"document_id": result.DocumentID,
			"revision_id": result.RevisionID,
		}).Info("docsync.command.append.completed")
		if sink != nil {
			sink(result)
		}
		return nil
	}

	handlerOpts := append([]commands.HandlerOption[AppendCommand]{
		commands.WithLogger[AppendCommand](baseLogger),
		commands.WithOperation[AppendCommand](appendOperation),
	}, opts...)

	return &AppendHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute implements command.Commander.
func (h *AppendHandler) Execute(ctx context.Context, msg AppendCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ReplaceHandler replaces an existing document's content.
type ReplaceHandler struct {
	inner *commands.Handler[ReplaceCommand]
}

// NewReplaceHandler binds the handler to the converter service.
func NewReplaceHandler(service interfaces.ConverterService, logger interfaces.Logger, sink ResultSink, opts ...commands.HandlerOption[ReplaceCommand]) *ReplaceHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ReplaceCommand) error {
		result, err := service.ReplaceDocument(ctx, msg.Source, msg.DocumentID, interfaces.ConvertOptions{
			SourcePath: msg.SourcePath,
		})
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"document_id": result.DocumentID,
			"revision_id": result.RevisionID,
		}).Info("docsync.command.replace.completed")
		if sink != nil {
			sink(result)
		}
		return nil
	}

	handlerOpts := append([]commands.HandlerOption[ReplaceCommand]{
		commands.WithLogger[ReplaceCommand](baseLogger),
		commands.WithOperation[ReplaceCommand](replaceOperation),
	}, opts...)

	return &ReplaceHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute implements command.Commander.
func (h *ReplaceHandler) Execute(ctx context.Context, msg ReplaceCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ParseHandler converts Markdown to the block forest with no network calls.
type ParseHandler struct {
	inner *commands.Handler[ParseCommand]
}

// NewParseHandler binds the handler to the converter service.
func NewParseHandler(service interfaces.ConverterService, logger interfaces.Logger, sink ParseSink, opts ...commands.HandlerOption[ParseCommand]) *ParseHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ParseCommand) error {
		result, err := service.Parse(ctx, msg.Source)
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"blocks": result.Forest.Len(),
			"media":  len(result.Media),
		}).Info("docsync.command.parse.completed")
		if sink != nil {
			sink(result)
		}
		return nil
	}

	handlerOpts := append([]commands.HandlerOption[ParseCommand]{
		commands.WithLogger[ParseCommand](baseLogger),
		commands.WithOperation[ParseCommand](parseOperation),
	}, opts...)

	return &ParseHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute implements command.Commander.
func (h *ParseHandler) Execute(ctx context.Context, msg ParseCommand) error {
	return h.inner.Execute(ctx, msg)
}
