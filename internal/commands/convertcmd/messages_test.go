package convertcmd

import "testing"

func TestConvertCommandValidate(t *testing.T) {
	cmd := ConvertCommand{Source: []byte("# Title")}
	if err := cmd.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestConvertCommandAcceptsEmptySource(t *testing.T) {
	cmd := ConvertCommand{Source: []byte{}}
	if err := cmd.Validate(); err != nil {
		t.Fatalf("empty markdown is legal: %v", err)
	}
}

func TestConvertCommandRejectsNilSource(t *testing.T) {
	cmd := ConvertCommand{}
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected validation error for nil source")
	}
}

func TestAppendCommandValidate(t *testing.T) {
	cmd := AppendCommand{Source: []byte("hello"), DocumentID: "doc_1"}
	if err := cmd.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestAppendCommandRequiresDocumentID(t *testing.T) {
	cases := map[string]AppendCommand{
		"missing": {Source: []byte("hello")},
		"blank":   {Source: []byte("hello"), DocumentID: "   "},
	}
	for name, cmd := range cases {
		if err := cmd.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestReplaceCommandRequiresDocumentID(t *testing.T) {
	cmd := ReplaceCommand{Source: []byte("hello")}
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestParseCommandAcceptsAnything(t *testing.T) {
	if err := (ParseCommand{}).Validate(); err != nil {
		t.Fatalf("parse command must accept nil source: %v", err)
	}
}

func TestMessageTypes(t *testing.T) {
	checks := map[string]string{
		ConvertCommand{}.Type(): "docsync.convert",
		AppendCommand{}.Type():  "docsync.append",
		ReplaceCommand{}.Type(): "docsync.replace",
		ParseCommand{}.Type():   "docsync.parse",
	}
	for got, want := range checks {
		if got != want {
			t.Fatalf("message type = %q, want %q", got, want)
		}
	}
}
