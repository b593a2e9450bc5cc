package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Yates-Labs/lectern/internal/agent"
	"github.com/Yates-Labs/lectern/internal/rag"
)

// ContentSearcher runs filtered semantic search over course content.
// Satisfied by *rag.Searcher.
type ContentSearcher interface {
	Search(ctx context.Context, query, courseName string, lessonNumber *int) ([]rag.ScoredChunk, error)
}

// CourseCatalog looks up catalog entries by exact title. Satisfied by
// rag.VectorStore implementations.
type CourseCatalog interface {
	GetCourse(ctx context.Context, title string) (*rag.CourseMeta, error)
}

// ContentSearchTool lets the model search course materials with fuzzy course
// name matching and lesson filtering.
type ContentSearchTool struct {
	searcher ContentSearcher
	catalog  CourseCatalog
}

// NewContentSearchTool creates the search tool. The catalog is used to
// attach course and lesson links to source citations and may be nil.
func NewContentSearchTool(searcher ContentSearcher, catalog CourseCatalog) *ContentSearchTool {
	return &ContentSearchTool{
		searcher: searcher,
		catalog:  catalog,
	}
}

// Definition returns the tool schema consumed by the model.
func (t *ContentSearchTool) Definition() agent.ToolSchema {
	return agent.ToolSchema{
		Name:        "search_course_content",
		Description: "Search course materials with smart course name matching and lesson filtering",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "What to search for in the course content",
				},
				"course_name": map[string]any{
					"type":        "string",
					"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
				"lesson_number": map[string]any{
					"type":        "integer",
					"description": "Specific lesson number to search within (e.g. 1, 2, 3)",
				},
			},
			"required": []string{"query"},
		},
	}
}

// Execute runs the search and formats the results for the model, returning
// one source citation per result chunk, in result order.
func (t *ContentSearchTool) Execute(ctx context.Context, args map[string]any) (string, []rag.Source, error) {
	query := stringArg(args, "query")
	if query == "" {
		return "", nil, fmt.Errorf("the 'query' parameter is required")
	}

	courseName := stringArg(args, "course_name")
	lessonNumber := intArg(args, "lesson_number")

	results, err := t.searcher.Search(ctx, query, courseName, lessonNumber)
	if err != nil {
		if errors.Is(err, rag.ErrCourseNotFound) {
			return fmt.Sprintf("No course found matching '%s'.", courseName), nil, nil
		}
		return "", nil, err
	}

	if len(results) == 0 {
		var filterInfo strings.Builder
		if courseName != "" {
			fmt.Fprintf(&filterInfo, " in course '%s'", courseName)
		}
		if lessonNumber != nil {
			fmt.Fprintf(&filterInfo, " in lesson %d", *lessonNumber)
		}
		return fmt.Sprintf("No relevant content found%s.", filterInfo.String()), nil, nil
	}

	return t.formatResults(ctx, results)
}

// formatResults renders chunks with course and lesson context headers and
// builds the matching source citations.
func (t *ContentSearchTool) formatResults(ctx context.Context, results []rag.ScoredChunk) (string, []rag.Source, error) {
	formatted := make([]string, 0, len(results))
	sources := make([]rag.Source, 0, len(results))
	courses := map[string]*rag.CourseMeta{}

	for _, chunk := range results {
		header := chunk.CourseTitle
		if chunk.LessonNumber != rag.NoLesson {
			header = fmt.Sprintf("%s - Lesson %d", chunk.CourseTitle, chunk.LessonNumber)
		}

		sources = append(sources, rag.Source{
			Text: header,
			Link: t.lookupLink(ctx, courses, chunk),
		})

		formatted = append(formatted, fmt.Sprintf("[%s]\n%s", header, chunk.Text))
	}

	return strings.Join(formatted, "\n\n"), sources, nil
}

// lookupLink finds the lesson link for a chunk, falling back to the course
// link when the chunk is not tied to a lesson. Catalog entries are cached
// for the duration of one execution.
func (t *ContentSearchTool) lookupLink(ctx context.Context, cache map[string]*rag.CourseMeta, chunk rag.ScoredChunk) string {
	if t.catalog == nil {
		return ""
	}

	meta, seen := cache[chunk.CourseTitle]
	if !seen {
		found, err := t.catalog.GetCourse(ctx, chunk.CourseTitle)
		if err != nil {
			// Links are a nicety; a catalog hiccup must not fail the search.
			found = nil
		}
		meta = found
		cache[chunk.CourseTitle] = meta
	}
	if meta == nil {
		return ""
	}

	if chunk.LessonNumber != rag.NoLesson {
		for _, lesson := range meta.Lessons {
			if lesson.Number == chunk.LessonNumber {
				return lesson.Link
			}
		}
	}
	return meta.CourseLink
}
