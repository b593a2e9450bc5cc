package rag

import (
	"context"
	"errors"
	"fmt"
)

// Common errors for the search path. Callers distinguish "course name did
// not resolve" from "the search itself failed"; empty results are neither.
var (
	ErrCourseNotFound = errors.New("no matching course found")
	ErrSearchFailed   = errors.New("search failed")
)

// DefaultTopK is the default number of content chunks returned per search.
const DefaultTopK = 5

// Searcher provides fuzzy course name resolution and filtered semantic
// search over course content. Resolution and search are the two stages of
// every course-scoped query: the fuzzy name is first pinned to an exact
// catalog title, then the content query runs under that exact filter.
type Searcher struct {
	embedder Embedder
	store    VectorStore
	topK     int
}

// NewSearcher creates a new Searcher instance.
func NewSearcher(embedder Embedder, store VectorStore, topK int) (*Searcher, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("vector store cannot be nil")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	return &Searcher{
		embedder: embedder,
		store:    store,
		topK:     topK,
	}, nil
}

// ResolveCourseName finds the catalog title closest to a partial, misspelled
// or abbreviated course name. The single nearest title wins regardless of
// distance; there is no similarity threshold, so any non-empty catalog
// produces a match. Returns ErrCourseNotFound only when the catalog is empty.
func (s *Searcher) ResolveCourseName(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: course name cannot be empty", ErrCourseNotFound)
	}

	vectors, err := s.embedder.EmbedTexts(ctx, []string{name})
	if err != nil {
		return "", fmt.Errorf("%w: embedding course name: %v", ErrSearchFailed, err)
	}

	titles, err := s.store.SearchCatalog(ctx, vectors[0], 1)
	if err != nil {
		return "", fmt.Errorf("%w: catalog lookup: %v", ErrSearchFailed, err)
	}
	if len(titles) == 0 {
		return "", fmt.Errorf("%w: %q", ErrCourseNotFound, name)
	}

	return titles[0], nil
}

// Search runs a semantic content query, optionally scoped to a course and a
// lesson. A non-empty courseName is resolved first; if resolution fails the
// error is returned as-is rather than falling back to an unfiltered search,
// so a wrong course name is reported instead of silently ignored. Course and
// lesson constraints are conjunctive. An empty result slice is a normal
// outcome, not an error.
func (s *Searcher) Search(ctx context.Context, query, courseName string, lessonNumber *int) ([]ScoredChunk, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", ErrSearchFailed)
	}

	filter := SearchFilter{LessonNumber: lessonNumber}
	if courseName != "" {
		title, err := s.ResolveCourseName(ctx, courseName)
		if err != nil {
			return nil, err
		}
		filter.CourseTitle = title
	}

	vectors, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", ErrSearchFailed, err)
	}

	chunks, err := s.store.SearchContent(ctx, vectors[0], s.topK, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	return chunks, nil
}

// Outline resolves a fuzzy course name and returns the full catalog entry,
// including the ordered lesson list.
func (s *Searcher) Outline(ctx context.Context, courseName string) (*CourseMeta, error) {
	title, err := s.ResolveCourseName(ctx, courseName)
	if err != nil {
		return nil, err
	}

	meta, err := s.store.GetCourse(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	if meta == nil {
		// Resolution returned a title the catalog no longer has; treat the
		// same as an empty catalog.
		return nil, fmt.Errorf("%w: %q", ErrCourseNotFound, courseName)
	}

	return meta, nil
}
