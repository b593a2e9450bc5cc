package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Yates-Labs/lectern/internal/rag"
)

const mcpTitle = "Introduction to MCP: Build Rich-Context AI Apps"

// fakeSearcher serves canned search results and records inputs.
type fakeSearcher struct {
	results    []rag.ScoredChunk
	outline    *rag.CourseMeta
	err        error
	lastQuery  string
	lastCourse string
	lastLesson *int
}

func (f *fakeSearcher) Search(ctx context.Context, query, courseName string, lessonNumber *int) ([]rag.ScoredChunk, error) {
	f.lastQuery = query
	f.lastCourse = courseName
	f.lastLesson = lessonNumber
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeSearcher) Outline(ctx context.Context, courseName string) (*rag.CourseMeta, error) {
	f.lastCourse = courseName
	if f.err != nil {
		return nil, f.err
	}
	return f.outline, nil
}

// fakeCatalog serves canned course metadata.
type fakeCatalog struct {
	courses map[string]*rag.CourseMeta
}

func (f *fakeCatalog) GetCourse(ctx context.Context, title string) (*rag.CourseMeta, error) {
	return f.courses[title], nil
}

func mcpCatalog() *fakeCatalog {
	return &fakeCatalog{courses: map[string]*rag.CourseMeta{
		mcpTitle: {
			Title:      mcpTitle,
			CourseLink: "https://example.com/mcp",
			Lessons: []rag.Lesson{
				{Number: 4, Title: "Tool Schemas", Link: "https://example.com/mcp/4"},
			},
		},
	}}
}

func TestContentSearchTool_Definition(t *testing.T) {
	tool := NewContentSearchTool(&fakeSearcher{}, nil)
	def := tool.Definition()

	if def.Name != "search_course_content" {
		t.Errorf("unexpected name %q", def.Name)
	}
	properties, ok := def.Parameters["properties"].(map[string]any)
	if !ok {
		t.Fatal("parameters missing properties")
	}
	for _, key := range []string{"query", "course_name", "lesson_number"} {
		if _, ok := properties[key]; !ok {
			t.Errorf("schema missing %q parameter", key)
		}
	}
	required, ok := def.Parameters["required"].([]string)
	if !ok || len(required) != 1 || required[0] != "query" {
		t.Errorf("unexpected required list: %v", def.Parameters["required"])
	}
}

func TestContentSearchTool_FormatsResultsAndSources(t *testing.T) {
	searcher := &fakeSearcher{results: []rag.ScoredChunk{
		{Chunk: rag.Chunk{Text: "tool schemas explained", CourseTitle: mcpTitle, LessonNumber: 4}, Score: 0.91},
		{Chunk: rag.Chunk{Text: "course overview", CourseTitle: mcpTitle, LessonNumber: rag.NoLesson}, Score: 0.85},
	}}
	tool := NewContentSearchTool(searcher, mcpCatalog())

	// lesson_number arrives as float64, the way JSON decodes it
	content, sources, err := tool.Execute(context.Background(), map[string]any{
		"query":         "what are tool schemas",
		"course_name":   "MCP",
		"lesson_number": float64(4),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(content, "["+mcpTitle+" - Lesson 4]") {
		t.Errorf("missing lesson header:\n%s", content)
	}
	if !strings.Contains(content, "tool schemas explained") {
		t.Errorf("missing chunk text:\n%s", content)
	}

	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].Text != mcpTitle+" - Lesson 4" {
		t.Errorf("unexpected source text %q", sources[0].Text)
	}
	if sources[0].Link != "https://example.com/mcp/4" {
		t.Errorf("expected lesson link, got %q", sources[0].Link)
	}
	if sources[1].Text != mcpTitle {
		t.Errorf("unexpected source text %q", sources[1].Text)
	}
	if sources[1].Link != "https://example.com/mcp" {
		t.Errorf("expected course link fallback, got %q", sources[1].Link)
	}

	if searcher.lastLesson == nil || *searcher.lastLesson != 4 {
		t.Error("lesson number not forwarded to searcher")
	}
}

func TestContentSearchTool_EmptyResults(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{
			name: "no filters",
			args: map[string]any{"query": "quantum"},
			want: "No relevant content found.",
		},
		{
			name: "course filter",
			args: map[string]any{"query": "quantum", "course_name": "MCP"},
			want: "No relevant content found in course 'MCP'.",
		},
		{
			name: "course and lesson filter",
			args: map[string]any{"query": "quantum", "course_name": "MCP", "lesson_number": float64(3)},
			want: "No relevant content found in course 'MCP' in lesson 3.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := NewContentSearchTool(&fakeSearcher{}, nil)
			content, sources, err := tool.Execute(context.Background(), tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if content != tt.want {
				t.Errorf("got %q, want %q", content, tt.want)
			}
			if len(sources) != 0 {
				t.Errorf("empty search must not produce sources, got %v", sources)
			}
		})
	}
}

func TestContentSearchTool_CourseNotFound(t *testing.T) {
	searcher := &fakeSearcher{err: rag.ErrCourseNotFound}
	tool := NewContentSearchTool(searcher, nil)

	content, sources, err := tool.Execute(context.Background(), map[string]any{
		"query":       "anything",
		"course_name": "XYZ999",
	})
	if err != nil {
		t.Fatalf("not-found must be reported as content, got error: %v", err)
	}
	if content != "No course found matching 'XYZ999'." {
		t.Errorf("unexpected content %q", content)
	}
	if len(sources) != 0 {
		t.Error("not-found must not produce sources")
	}
}

func TestContentSearchTool_SearchFailure(t *testing.T) {
	searcher := &fakeSearcher{err: rag.ErrSearchFailed}
	tool := NewContentSearchTool(searcher, nil)

	_, _, err := tool.Execute(context.Background(), map[string]any{"query": "anything"})
	if !errors.Is(err, rag.ErrSearchFailed) {
		t.Fatalf("expected search failure to surface as error, got %v", err)
	}
}

func TestContentSearchTool_MissingQuery(t *testing.T) {
	tool := NewContentSearchTool(&fakeSearcher{}, nil)

	_, _, err := tool.Execute(context.Background(), map[string]any{"course_name": "MCP"})
	if err == nil {
		t.Fatal("expected error for missing query")
	}
}

func TestCourseOutlineTool_Execute(t *testing.T) {
	searcher := &fakeSearcher{outline: &rag.CourseMeta{
		Title:      mcpTitle,
		Instructor: "Elie Schoppik",
		CourseLink: "https://example.com/mcp",
		Lessons: []rag.Lesson{
			{Number: 0, Title: "Introduction", Link: "https://example.com/mcp/0"},
			{Number: 1, Title: "Why MCP"},
		},
	}}
	tool := NewCourseOutlineTool(searcher)

	content, sources, err := tool.Execute(context.Background(), map[string]any{"course_name": "MCP"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"Course: " + mcpTitle,
		"Instructor: Elie Schoppik",
		"Course Link: https://example.com/mcp",
		"0. Introduction",
		"   Link: https://example.com/mcp/0",
		"1. Why MCP",
		"   Link: No link available",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("outline missing %q:\n%s", want, content)
		}
	}

	if len(sources) != 0 {
		t.Error("outline tool must not produce sources")
	}
}

func TestCourseOutlineTool_NotFound(t *testing.T) {
	searcher := &fakeSearcher{err: rag.ErrCourseNotFound}
	tool := NewCourseOutlineTool(searcher)

	content, _, err := tool.Execute(context.Background(), map[string]any{"course_name": "XYZ999"})
	if err != nil {
		t.Fatalf("not-found must be reported as content, got error: %v", err)
	}
	if !strings.Contains(content, "No course found matching 'XYZ999'") {
		t.Errorf("unexpected content %q", content)
	}
}

func TestCourseOutlineTool_MissingCourseName(t *testing.T) {
	tool := NewCourseOutlineTool(&fakeSearcher{})

	_, _, err := tool.Execute(context.Background(), map[string]any{})
	if err == nil {
		t.Fatal("expected error for missing course_name")
	}
}
