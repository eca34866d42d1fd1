package convertcmd

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-docsync/blocks"
	"github.com/goliatone/go-docsync/pkg/interfaces"
)

type fakeService struct {
	convertFn func(ctx context.Context, source []byte, opts interfaces.ConvertOptions) (*interfaces.ConvertResult, error)
	appendFn  func(ctx context.Context, source []byte, documentID string, opts interfaces.ConvertOptions) (*interfaces.ConvertResult, error)
	replaceFn func(ctx context.Context, source []byte, documentID string, opts interfaces.ConvertOptions) (*interfaces.ConvertResult, error)
	parseFn   func(ctx context.Context, source []byte) (*interfaces.ParseResult, error)
}

func (f *fakeService) Convert(ctx context.Context, source []byte, opts interfaces.ConvertOptions) (*interfaces.ConvertResult, error) {
	if f.convertFn == nil {
		return nil, errors.New("convert not configured")
	}
	return f.convertFn(ctx, source, opts)
}

func (f *fakeService) AppendToDocument(ctx context.Context, source []byte, documentID string, opts interfaces.ConvertOptions) (*interfaces.ConvertResult, error) {
	if f.appendFn == nil {
		return nil, errors.New("append not configured")
	}
	return f.appendFn(ctx, source, documentID, opts)
}

func (f *fakeService) ReplaceDocument(ctx context.Context, source []byte, documentID string, opts interfaces.ConvertOptions) (*interfaces.ConvertResult, error) {
	if f.replaceFn == nil {
		return nil, errors.New("replace not configured")
	}
	return f.replaceFn(ctx, source, documentID, opts)
}

func (f *fakeService) Parse(ctx context.Context, source []byte) (*interfaces.ParseResult, error) {
	if f.parseFn == nil {
		return nil, errors.New("parse not configured")
	}
	return f.parseFn(ctx, source)
}

func TestConvertHandlerDeliversResult(t *testing.T) {
	service := &fakeService{
		convertFn: func(ctx context.Context, source []byte, opts interfaces.ConvertOptions) (*interfaces.ConvertResult, error) {
			if string(source) != "# Hello" {
				t.Fatalf("unexpected source %q", source)
			}
			if opts.Title != "Override" || opts.SourcePath != "docs/hello.md" {
				t.Fatalf("options not forwarded: %+v", opts)
			}
			return &interfaces.ConvertResult{DocumentID: "doc_1", RevisionID: "rev_1", Title: "Override"}, nil
		},
	}

	var got *interfaces.ConvertResult
	handler := NewConvertHandler(service, nil, func(result *interfaces.ConvertResult) {
		got = result
	})

	err := handler.Execute(context.Background(), ConvertCommand{
		Source:     []byte("# Hello"),
		SourcePath: "docs/hello.md",
		Title:      "Override",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got == nil || got.DocumentID != "doc_1" {
		t.Fatalf("sink did not receive the result: %+v", got)
	}
}

func TestConvertHandlerRejectsInvalidMessage(t *testing.T) {
	called := false
	service := &fakeService{
		convertFn: func(ctx context.Context, source []byte, opts interfaces.ConvertOptions) (*interfaces.ConvertResult, error) {
			called = true
			return &interfaces.ConvertResult{}, nil
		},
	}

	handler := NewConvertHandler(service, nil, nil)
	if err := handler.Execute(context.Background(), ConvertCommand{}); err == nil {
		t.Fatal("expected validation error for nil source")
	}
	if called {
		t.Fatal("service must not run on validation failure")
	}
}

func TestConvertHandlerPropagatesServiceError(t *testing.T) {
	serviceErr := errors.New("remote unavailable")
	service := &fakeService{
		convertFn: func(ctx context.Context, source []byte, opts interfaces.ConvertOptions) (*interfaces.ConvertResult, error) {
			return nil, serviceErr
		},
	}

	sinkCalled := false
	handler := NewConvertHandler(service, nil, func(*interfaces.ConvertResult) {
		sinkCalled = true
	})

	err := handler.Execute(context.Background(), ConvertCommand{Source: []byte("x")})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, serviceErr) {
		t.Fatalf("cause not preserved: %v", err)
	}
	if sinkCalled {
		t.Fatal("sink must not fire on failure")
	}
}

func TestAppendHandlerForwardsDocumentID(t *testing.T) {
	service := &fakeService{
		appendFn: func(ctx context.Context, source []byte, documentID string, opts interfaces.ConvertOptions) (*interfaces.ConvertResult, error) {
			if documentID != "doc_42" {
				t.Fatalf("document id = %q", documentID)
			}
			return &interfaces.ConvertResult{DocumentID: documentID, RevisionID: "rev_9"}, nil
		},
	}

	var got *interfaces.ConvertResult
	handler := NewAppendHandler(service, nil, func(result *interfaces.ConvertResult) {
		got = result
	})

	err := handler.Execute(context.Background(), AppendCommand{
		Source:     []byte("more"),
		DocumentID: "doc_42",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got == nil || got.RevisionID != "rev_9" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestAppendHandlerRequiresDocumentID(t *testing.T) {
	handler := NewAppendHandler(&fakeService{}, nil, nil)
	if err := handler.Execute(context.Background(), AppendCommand{Source: []byte("x")}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestReplaceHandlerDeliversResult(t *testing.T) {
	service := &fakeService{
		replaceFn: func(ctx context.Context, source []byte, documentID string, opts interfaces.ConvertOptions) (*interfaces.ConvertResult, error) {
			return &interfaces.ConvertResult{DocumentID: documentID, RevisionID: "rev_3"}, nil
		},
	}

	var got *interfaces.ConvertResult
	handler := NewReplaceHandler(service, nil, func(result *interfaces.ConvertResult) {
		got = result
	})

	err := handler.Execute(context.Background(), ReplaceCommand{
		Source:     []byte("fresh"),
		DocumentID: "doc_7",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got == nil || got.DocumentID != "doc_7" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestParseHandlerDeliversForest(t *testing.T) {
	forest := blocks.NewForest()
	if err := forest.Add(&blocks.ContentBlock{ID: "tmp_1", Kind: blocks.KindText}); err != nil {
		t.Fatalf("add block: %v", err)
	}

	service := &fakeService{
		parseFn: func(ctx context.Context, source []byte) (*interfaces.ParseResult, error) {
			return &interfaces.ParseResult{Forest: forest, Title: "Doc"}, nil
		},
	}

	var got *interfaces.ParseResult
	handler := NewParseHandler(service, nil, func(result *interfaces.ParseResult) {
		got = result
	})

	if err := handler.Execute(context.Background(), ParseCommand{Source: []byte("hello")}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got == nil || got.Forest.Len() != 1 {
		t.Fatalf("sink did not receive the parse result: %+v", got)
	}
}
