package markdown

import (
	"strings"
	"testing"
)

func TestParseFrontMatterFull(t *testing.T) {
	source := []byte(`---
title: Release Notes
folder: releases
tags:
  - changelog
  - v2
owner: platform-team
---

# Body heading
`)

	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if fm.Title != "Release Notes" {
		t.Fatalf("title = %q", fm.Title)
	}
	if fm.Folder != "releases" {
		t.Fatalf("folder = %q", fm.Folder)
	}
	if len(fm.Tags) != 2 || fm.Tags[0] != "changelog" {
		t.Fatalf("tags = %v", fm.Tags)
	}
	if fm.Custom["owner"] != "platform-team" {
		t.Fatalf("custom = %v", fm.Custom)
	}
	if !strings.Contains(string(body), "# Body heading") {
		t.Fatalf("body = %q", body)
	}
	if strings.Contains(string(body), "title:") {
		t.Fatal("frontmatter must be stripped from the body")
	}
}

func TestParseFrontMatterAbsent(t *testing.T) {
	source := []byte("# Just Markdown\n\nNo metadata here.\n")

	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if fm.Title != "" || fm.Folder != "" || len(fm.Tags) != 0 {
		t.Fatalf("frontmatter = %+v", fm)
	}
	if string(body) != string(source) {
		t.Fatalf("body altered: %q", body)
	}
}

func TestParseFrontMatterInvalidYAML(t *testing.T) {
	source := []byte("---\ntitle: [unclosed\n---\n\nbody\n")

	if _, _, err := ParseFrontMatter(source); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestParseFrontMatterRawIncludesKnownKeys(t *testing.T) {
	source := []byte("---\ntitle: Doc\nextra: 7\n---\nbody\n")

	fm, _, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if fm.Raw["title"] != "Doc" {
		t.Fatalf("raw title = %v", fm.Raw["title"])
	}
	if fm.Raw["extra"] != 7 {
		t.Fatalf("raw extra = %v (%T)", fm.Raw["extra"], fm.Raw["extra"])
	}
}

func TestBuildDocument(t *testing.T) {
	doc, err := BuildDocument([]byte("---\ntitle: T\n---\ncontent\n"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if doc.FrontMatter.Title != "T" {
		t.Fatalf("title = %q", doc.FrontMatter.Title)
	}
	if !strings.Contains(string(doc.Body), "content") {
		t.Fatalf("body = %q", doc.Body)
	}
}
