package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Yates-Labs/lectern/internal/rag"
)

var (
	ErrNoDocuments  = errors.New("no course documents found")
	ErrIngestFailed = errors.New("ingestion failed")
)

// courseExtensions are the file types treated as course scripts.
var courseExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// Pipeline parses course scripts, chunks their lessons, embeds the chunks
// and writes catalog entries plus content vectors to the store.
type Pipeline struct {
	embedder rag.Embedder
	store    rag.VectorStore
	chunker  *Chunker
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(embedder rag.Embedder, store rag.VectorStore, chunker *Chunker) (*Pipeline, error) {
	if embedder == nil || store == nil {
		return nil, fmt.Errorf("%w: embedder and store are required", ErrIngestFailed)
	}
	if chunker == nil {
		chunker = NewChunker(DefaultChunkChars, DefaultOverlapChars)
	}
	return &Pipeline{embedder: embedder, store: store, chunker: chunker}, nil
}

// AddCourseFile ingests a single course script. Courses already present in
// the catalog are skipped so re-runs stay idempotent.
func (p *Pipeline) AddCourseFile(ctx context.Context, path string) (*rag.CourseMeta, int, error) {
	doc, err := ParseFile(path)
	if err != nil {
		return nil, 0, err
	}

	exists, err := p.store.HasCourse(ctx, doc.Meta.Title)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrIngestFailed, err)
	}
	if exists {
		log.Printf("[Ingest] Skipping existing course: %s", doc.Meta.Title)
		return &doc.Meta, 0, nil
	}

	chunks := p.chunkDocument(doc)
	if err := p.addCourse(ctx, doc, chunks); err != nil {
		return nil, 0, err
	}

	log.Printf("[Ingest] Added course %q (%d chunks)", doc.Meta.Title, len(chunks))
	return &doc.Meta, len(chunks), nil
}

// ReplaceCourseFile re-ingests a course script, overwriting any existing
// catalog entry and content. Used by the docs watcher on file changes.
func (p *Pipeline) ReplaceCourseFile(ctx context.Context, path string) (*rag.CourseMeta, int, error) {
	doc, err := ParseFile(path)
	if err != nil {
		return nil, 0, err
	}

	chunks := p.chunkDocument(doc)
	if err := p.addCourse(ctx, doc, chunks); err != nil {
		return nil, 0, err
	}

	log.Printf("[Ingest] Replaced course %q (%d chunks)", doc.Meta.Title, len(chunks))
	return &doc.Meta, len(chunks), nil
}

// AddCourseFolder ingests every course script in a directory. Files that
// fail to parse are logged and skipped; the folder succeeds if at least one
// script does.
func (p *Pipeline) AddCourseFolder(ctx context.Context, dir string) (int, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrIngestFailed, err)
	}

	courses, totalChunks := 0, 0
	for _, entry := range entries {
		if entry.IsDir() || !courseExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		_, n, err := p.AddCourseFile(ctx, filepath.Join(dir, entry.Name()))
		if err != nil {
			log.Printf("[Ingest] Skipping %s: %v", entry.Name(), err)
			continue
		}
		courses++
		totalChunks += n
	}

	if courses == 0 {
		return 0, 0, fmt.Errorf("%w in %s", ErrNoDocuments, dir)
	}
	return courses, totalChunks, nil
}

func (p *Pipeline) addCourse(ctx context.Context, doc *Document, chunks []rag.Chunk) error {
	// The catalog entry is embedded from the title alone; that vector is what
	// fuzzy course name resolution searches against.
	titleVectors, err := p.embedder.EmbedTexts(ctx, []string{doc.Meta.Title})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIngestFailed, err)
	}
	if err := p.store.AddCourse(ctx, doc.Meta, titleVectors[0]); err != nil {
		return fmt.Errorf("%w: %v", ErrIngestFailed, err)
	}
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIngestFailed, err)
	}
	if err := p.store.AddChunks(ctx, chunks, vectors); err != nil {
		return fmt.Errorf("%w: %v", ErrIngestFailed, err)
	}
	return nil
}

// chunkDocument splits each lesson and prefixes chunks with course and
// lesson context so retrieved chunks read sensibly in isolation.
func (p *Pipeline) chunkDocument(doc *Document) []rag.Chunk {
	var chunks []rag.Chunk
	for _, lesson := range doc.Lessons {
		for i, text := range p.chunker.Split(lesson.Text) {
			prefixed := text
			if i == 0 {
				if lesson.Number != rag.NoLesson {
					prefixed = fmt.Sprintf("Course %s Lesson %d content: %s", doc.Meta.Title, lesson.Number, text)
				} else {
					prefixed = fmt.Sprintf("Course %s content: %s", doc.Meta.Title, text)
				}
			}
			chunks = append(chunks, rag.Chunk{
				Text:         prefixed,
				CourseTitle:  doc.Meta.Title,
				LessonNumber: lesson.Number,
				ChunkIndex:   len(chunks),
			})
		}
	}
	return chunks
}
