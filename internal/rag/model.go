package rag

import "context"

// NoLesson marks a chunk that belongs to a course introduction or other
// material outside any numbered lesson. Milvus scalar fields cannot be null,
// so the sentinel is stored instead.
const NoLesson = -1

// Chunk is one indexed span of course text with its provenance.
type Chunk struct {
	Text         string `json:"text"`
	CourseTitle  string `json:"course_title"`
	LessonNumber int    `json:"lesson_number"` // NoLesson when outside a lesson
	ChunkIndex   int    `json:"chunk_index"`   // position within the course
}

// ScoredChunk is a chunk returned from similarity search with its score.
// Higher scores mean closer matches under the cosine metric.
type ScoredChunk struct {
	Chunk
	Score float32 `json:"score"`
}

// Lesson is one entry of a course outline.
type Lesson struct {
	Number int    `json:"lesson_number"`
	Title  string `json:"lesson_title"`
	Link   string `json:"lesson_link,omitempty"`
}

// CourseMeta describes one known course. The title doubles as the course's
// identifier throughout the system.
type CourseMeta struct {
	Title      string   `json:"title"`
	Instructor string   `json:"instructor,omitempty"`
	CourseLink string   `json:"course_link,omitempty"`
	Lessons    []Lesson `json:"lessons,omitempty"`
}

// SearchFilter restricts a content search. Both fields are independently
// optional; a zero-value filter matches everything. CourseTitle, when set,
// is always an exact catalog title produced by resolution, never a raw
// fuzzy name.
type SearchFilter struct {
	CourseTitle  string
	LessonNumber *int
}

// Source is a human-readable citation backing a generated answer.
type Source struct {
	Text string `json:"text"`
	Link string `json:"link,omitempty"`
}

// VectorStore is the persistence contract for the course catalog and course
// content collections. Implementations must be safe for concurrent reads;
// writes are expected to happen at startup or through the ingest watcher.
type VectorStore interface {
	// AddCourse inserts a catalog entry together with its title embedding.
	AddCourse(ctx context.Context, meta CourseMeta, vector []float32) error

	// AddChunks inserts content chunks with their embeddings. Both slices
	// must have the same length.
	AddChunks(ctx context.Context, chunks []Chunk, vectors [][]float32) error

	// SearchCatalog returns the titles nearest to the query vector,
	// best match first.
	SearchCatalog(ctx context.Context, vector []float32, topK int) ([]string, error)

	// SearchContent performs top-K similarity search over content chunks,
	// restricted by the filter. An empty result is not an error.
	SearchContent(ctx context.Context, vector []float32, topK int, filter SearchFilter) ([]ScoredChunk, error)

	// GetCourse returns the catalog entry for an exact title.
	GetCourse(ctx context.Context, title string) (*CourseMeta, error)

	// HasCourse reports whether an exact title exists in the catalog.
	HasCourse(ctx context.Context, title string) (bool, error)

	// ListCourseTitles returns every catalog title.
	ListCourseTitles(ctx context.Context) ([]string, error)

	// Clear drops and recreates both collections.
	Clear(ctx context.Context) error

	// Close releases resources and closes connections.
	Close() error
}

// Embedder generates vector embeddings for text.
type Embedder interface {
	// EmbedTexts embeds the given texts, returning one vector per input in
	// the same order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the embedding model identifier.
	Model() string

	// Dimension returns the embedding vector dimension.
	Dimension() int
}
