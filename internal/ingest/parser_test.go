package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Yates-Labs/lectern/internal/rag"
)

const sampleScript = `Course Title: Introduction to MCP: Build Rich-Context AI Apps
Course Link: https://example.com/mcp
Course Instructor: Elie Schoppik

Lesson 0: Introduction
Lesson Link: https://example.com/mcp/0
Welcome to the course. This course covers the Model Context Protocol.

Lesson 1: Why MCP
Tools and resources need a shared wire format. That is what MCP provides.
`

func writeScript(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFile(t *testing.T) {
	doc, err := ParseFile(writeScript(t, "mcp.txt", sampleScript))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Meta.Title != "Introduction to MCP: Build Rich-Context AI Apps" {
		t.Errorf("unexpected title %q", doc.Meta.Title)
	}
	if doc.Meta.Instructor != "Elie Schoppik" {
		t.Errorf("unexpected instructor %q", doc.Meta.Instructor)
	}
	if doc.Meta.CourseLink != "https://example.com/mcp" {
		t.Errorf("unexpected course link %q", doc.Meta.CourseLink)
	}

	if len(doc.Meta.Lessons) != 2 {
		t.Fatalf("expected 2 catalog lessons, got %d", len(doc.Meta.Lessons))
	}
	if doc.Meta.Lessons[0].Number != 0 || doc.Meta.Lessons[0].Title != "Introduction" {
		t.Errorf("unexpected first lesson: %+v", doc.Meta.Lessons[0])
	}
	if doc.Meta.Lessons[0].Link != "https://example.com/mcp/0" {
		t.Errorf("lesson link not captured: %+v", doc.Meta.Lessons[0])
	}
	if doc.Meta.Lessons[1].Link != "" {
		t.Errorf("lesson 1 has no link, got %q", doc.Meta.Lessons[1].Link)
	}

	if len(doc.Lessons) != 2 {
		t.Fatalf("expected 2 lesson bodies, got %d", len(doc.Lessons))
	}
	if !strings.Contains(doc.Lessons[0].Text, "Model Context Protocol") {
		t.Errorf("lesson 0 body missing content: %q", doc.Lessons[0].Text)
	}
	if !strings.Contains(doc.Lessons[1].Text, "shared wire format") {
		t.Errorf("lesson 1 body missing content: %q", doc.Lessons[1].Text)
	}
}

func TestParseFile_PreambleBecomesUnlessonedText(t *testing.T) {
	script := "Course Title: Minimal\n\nSome overview text before any lesson heading.\n"
	doc, err := ParseFile(writeScript(t, "minimal.txt", script))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Lessons) != 1 {
		t.Fatalf("expected 1 lesson body, got %d", len(doc.Lessons))
	}
	if doc.Lessons[0].Number != rag.NoLesson {
		t.Errorf("preamble must carry the no-lesson sentinel, got %d", doc.Lessons[0].Number)
	}
	if len(doc.Meta.Lessons) != 0 {
		t.Errorf("preamble must not create catalog lessons, got %v", doc.Meta.Lessons)
	}
}

func TestParseFile_MissingTitle(t *testing.T) {
	_, err := ParseFile(writeScript(t, "untitled.txt", "Lesson 1: Something\ncontent\n"))
	if !errors.Is(err, ErrMissingTitle) {
		t.Fatalf("expected ErrMissingTitle, got %v", err)
	}
}

func TestParseFile_EmptyBody(t *testing.T) {
	_, err := ParseFile(writeScript(t, "empty.txt", "Course Title: Hollow\n"))
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestParseFile_LessonLinkOnlyDirectlyAfterHeading(t *testing.T) {
	script := `Course Title: Links
Lesson 1: First
Some content here.
Lesson Link: https://example.com/not-a-link-line
More content.
`
	doc, err := ParseFile(writeScript(t, "links.txt", script))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Meta.Lessons[0].Link != "" {
		t.Errorf("mid-body link line must not be captured, got %q", doc.Meta.Lessons[0].Link)
	}
	if !strings.Contains(doc.Lessons[0].Text, "not-a-link-line") {
		t.Error("mid-body link line must stay in the lesson text")
	}
}
