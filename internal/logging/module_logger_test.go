package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-docsync/pkg/interfaces"
)

type recordingLogger struct {
	fields map[string]any
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithContext(context.Context) interfaces.Logger { return r }

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := map[string]any{}
	for k, v := range r.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &recordingLogger{fields: merged}
}

type recordingProvider struct {
	byName map[string]*recordingLogger
}

func (p *recordingProvider) GetLogger(name string) interfaces.Logger {
	if p.byName == nil {
		p.byName = map[string]*recordingLogger{}
	}
	logger, ok := p.byName[name]
	if !ok {
		logger = &recordingLogger{}
		p.byName[name] = logger
	}
	return logger
}

func TestModuleLoggerAttachesModuleField(t *testing.T) {
	provider := &recordingProvider{}

	logger := UploaderLogger(provider)

	rec, ok := logger.(*recordingLogger)
	if !ok {
		t.Fatalf("expected recordingLogger, got %T", logger)
	}
	if rec.fields["module"] != "docsync.uploader" {
		t.Fatalf("module field mismatch: %#v", rec.fields)
	}
}

func TestModuleLoggerNilProvider(t *testing.T) {
	logger := ModuleLogger(nil, "docsync.markdown")
	if logger == nil {
		t.Fatalf("expected no-op logger")
	}
	logger.Info("should not panic")
}

func TestWithDocumentContext(t *testing.T) {
	base := &recordingLogger{}
	logger := WithDocumentContext(base, "docs/readme.md", "doc_1")

	rec := logger.(*recordingLogger)
	if rec.fields["source_path"] != "docs/readme.md" || rec.fields["document_id"] != "doc_1" {
		t.Fatalf("fields mismatch: %#v", rec.fields)
	}
}

func TestContextFieldsMerge(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"a": 1})
	ctx = ContextWithFields(ctx, map[string]any{"b": 2})

	fields := ContextFields(ctx)
	if fields["a"] != 1 || fields["b"] != 2 {
		t.Fatalf("merged fields mismatch: %#v", fields)
	}
}
