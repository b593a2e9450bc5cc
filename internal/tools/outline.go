package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Yates-Labs/lectern/internal/agent"
	"github.com/Yates-Labs/lectern/internal/rag"
)

// OutlineProvider resolves a fuzzy course name to its full catalog entry.
// Satisfied by *rag.Searcher.
type OutlineProvider interface {
	Outline(ctx context.Context, courseName string) (*rag.CourseMeta, error)
}

// CourseOutlineTool lets the model retrieve a course's structure and lesson
// list given an exact or fuzzy title.
type CourseOutlineTool struct {
	provider OutlineProvider
}

// NewCourseOutlineTool creates the outline tool.
func NewCourseOutlineTool(provider OutlineProvider) *CourseOutlineTool {
	return &CourseOutlineTool{provider: provider}
}

// Definition returns the tool schema consumed by the model.
func (t *CourseOutlineTool) Definition() agent.ToolSchema {
	return agent.ToolSchema{
		Name:        "get_course_outline",
		Description: "Retrieve the complete structure and lesson list for a specific course. Use this when users ask about course structure, available lessons, or what topics are covered.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"course_name": map[string]any{
					"type":        "string",
					"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
			},
			"required": []string{"course_name"},
		},
	}
}

// Execute resolves the course and renders its outline. The outline carries
// no chunk provenance, so no sources are returned.
func (t *CourseOutlineTool) Execute(ctx context.Context, args map[string]any) (string, []rag.Source, error) {
	courseName := stringArg(args, "course_name")
	if courseName == "" {
		return "", nil, fmt.Errorf("the 'course_name' parameter is required")
	}

	meta, err := t.provider.Outline(ctx, courseName)
	if err != nil {
		if errors.Is(err, rag.ErrCourseNotFound) {
			return fmt.Sprintf("No course found matching '%s'. Please try a different course name or check available courses.", courseName), nil, nil
		}
		return "", nil, err
	}

	return formatOutline(meta), nil, nil
}

func formatOutline(meta *rag.CourseMeta) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Course: %s\n", meta.Title)

	instructor := meta.Instructor
	if instructor == "" {
		instructor = "Not specified"
	}
	fmt.Fprintf(&b, "Instructor: %s\n", instructor)

	courseLink := meta.CourseLink
	if courseLink == "" {
		courseLink = "Not available"
	}
	fmt.Fprintf(&b, "Course Link: %s\n\n", courseLink)

	b.WriteString("Lessons:\n")
	for _, lesson := range meta.Lessons {
		fmt.Fprintf(&b, "%d. %s\n", lesson.Number, lesson.Title)
		link := lesson.Link
		if link == "" {
			link = "No link available"
		}
		fmt.Fprintf(&b, "   Link: %s\n", link)
	}

	return b.String()
}
