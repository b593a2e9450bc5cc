package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// Common errors for Milvus operations
var (
	ErrInvalidDimension = errors.New("invalid vector dimension")
	ErrEmptyRecords     = errors.New("no records provided for insertion")
	ErrConnectionFailed = errors.New("failed to connect to Milvus")
	ErrInsertFailed     = errors.New("failed to insert records")
	ErrStoreQueryFailed = errors.New("failed to query vector store")
)

// MilvusConfig holds configuration for the Milvus connection and the two
// course collections.
type MilvusConfig struct {
	Address           string // Milvus server address (e.g., "localhost:19530")
	CatalogCollection string // Collection holding one entry per course title
	ContentCollection string // Collection holding course content chunks
	Dimension         int    // Vector dimension (e.g., 3072 for text-embedding-3-large)
	IndexType         string // Index type (default: "HNSW")
	MetricType        string // Similarity metric (default: "COSINE")

	// HNSW index parameters
	M              int // HNSW M parameter (default: 16)
	EfConstruction int // HNSW efConstruction (default: 256)
}

// DefaultMilvusConfig returns default configuration from environment variables
func DefaultMilvusConfig() MilvusConfig {
	address := os.Getenv("MILVUS_ADDRESS")
	if address == "" {
		address = "localhost:19530"
	}

	return MilvusConfig{
		Address:           address,
		CatalogCollection: "course_catalog",
		ContentCollection: "course_content",
		Dimension:         3072,
		IndexType:         "HNSW",
		MetricType:        "COSINE",
		M:                 16,
		EfConstruction:    256,
	}
}

// MilvusStore implements VectorStore using Milvus. Course catalog entries and
// content chunks live in separate collections so that fuzzy title resolution
// and filtered content search stay independent.
type MilvusStore struct {
	client client.Client
	config MilvusConfig
}

// NewMilvusStore connects to Milvus and ensures both collections exist with
// the proper schema.
func NewMilvusStore(ctx context.Context, config MilvusConfig) (*MilvusStore, error) {
	if config.Dimension <= 0 {
		return nil, ErrInvalidDimension
	}

	c, err := client.NewGrpcClient(ctx, config.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	store := &MilvusStore{
		client: c,
		config: config,
	}

	if err := store.ensureCollections(ctx); err != nil {
		c.Close()
		return nil, err
	}

	return store, nil
}

func (m *MilvusStore) ensureCollections(ctx context.Context) error {
	if err := m.ensureCollection(ctx, m.catalogSchema()); err != nil {
		return err
	}
	return m.ensureCollection(ctx, m.contentSchema())
}

// ensureCollection creates a collection with schema and index if it doesn't exist
func (m *MilvusStore) ensureCollection(ctx context.Context, schema *entity.Schema) error {
	has, err := m.client.HasCollection(ctx, schema.CollectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !has {
		if err := m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", schema.CollectionName, err)
		}

		idx, err := entity.NewIndexHNSW(entity.COSINE, m.config.M, m.config.EfConstruction)
		if err != nil {
			return fmt.Errorf("failed to create index config: %w", err)
		}

		if err := m.client.CreateIndex(ctx, schema.CollectionName, "embedding", idx, false); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if err := m.client.LoadCollection(ctx, schema.CollectionName, false); err != nil {
		return fmt.Errorf("failed to load collection %s: %w", schema.CollectionName, err)
	}

	return nil
}

func (m *MilvusStore) catalogSchema() *entity.Schema {
	return &entity.Schema{
		CollectionName: m.config.CatalogCollection,
		Fields: []*entity.Field{
			{
				Name:       "title",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				TypeParams: map[string]string{"max_length": "512"},
			},
			{
				Name:       "instructor",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "256"},
			},
			{
				Name:       "course_link",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "1024"},
			},
			{
				Name:       "lessons_json",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "65535"},
			},
			{
				Name:       "embedding",
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": fmt.Sprintf("%d", m.config.Dimension)},
			},
		},
	}
}

func (m *MilvusStore) contentSchema() *entity.Schema {
	return &entity.Schema{
		CollectionName: m.config.ContentCollection,
		AutoID:         true,
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeInt64,
				PrimaryKey: true,
				AutoID:     true,
			},
			{
				Name:       "course_title",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "512"},
			},
			{
				Name:     "lesson_number",
				DataType: entity.FieldTypeInt64, // NoLesson when outside a lesson
			},
			{
				Name:     "chunk_index",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:       "text",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "65535"},
			},
			{
				Name:       "embedding",
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": fmt.Sprintf("%d", m.config.Dimension)},
			},
		},
	}
}

// AddCourse inserts a catalog entry with its title embedding
func (m *MilvusStore) AddCourse(ctx context.Context, meta CourseMeta, vector []float32) error {
	if meta.Title == "" {
		return fmt.Errorf("%w: course title is required", ErrEmptyRecords)
	}
	if len(vector) != m.config.Dimension {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidDimension, m.config.Dimension, len(vector))
	}

	lessons, err := json.Marshal(meta.Lessons)
	if err != nil {
		return fmt.Errorf("failed to encode lessons: %w", err)
	}

	columns := []entity.Column{
		entity.NewColumnVarChar("title", []string{meta.Title}),
		entity.NewColumnVarChar("instructor", []string{meta.Instructor}),
		entity.NewColumnVarChar("course_link", []string{meta.CourseLink}),
		entity.NewColumnVarChar("lessons_json", []string{string(lessons)}),
		entity.NewColumnFloatVector("embedding", m.config.Dimension, [][]float32{vector}),
	}

	if _, err := m.client.Insert(ctx, m.config.CatalogCollection, "", columns...); err != nil {
		return fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}

	if err := m.client.Flush(ctx, m.config.CatalogCollection, false); err != nil {
		return fmt.Errorf("failed to flush catalog: %w", err)
	}

	return nil
}

// AddChunks inserts content chunks with their embeddings
func (m *MilvusStore) AddChunks(ctx context.Context, chunks []Chunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return ErrEmptyRecords
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks but %d vectors", ErrInsertFailed, len(chunks), len(vectors))
	}

	titles := make([]string, len(chunks))
	lessonNumbers := make([]int64, len(chunks))
	chunkIndexes := make([]int64, len(chunks))
	texts := make([]string, len(chunks))

	for i, chunk := range chunks {
		if len(vectors[i]) != m.config.Dimension {
			return fmt.Errorf("%w: expected %d, got %d", ErrInvalidDimension, m.config.Dimension, len(vectors[i]))
		}
		titles[i] = chunk.CourseTitle
		lessonNumbers[i] = int64(chunk.LessonNumber)
		chunkIndexes[i] = int64(chunk.ChunkIndex)
		texts[i] = chunk.Text
	}

	columns := []entity.Column{
		entity.NewColumnVarChar("course_title", titles),
		entity.NewColumnInt64("lesson_number", lessonNumbers),
		entity.NewColumnInt64("chunk_index", chunkIndexes),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnFloatVector("embedding", m.config.Dimension, vectors),
	}

	if _, err := m.client.Insert(ctx, m.config.ContentCollection, "", columns...); err != nil {
		return fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}

	if err := m.client.Flush(ctx, m.config.ContentCollection, false); err != nil {
		return fmt.Errorf("failed to flush content: %w", err)
	}

	return nil
}

// SearchCatalog returns the course titles nearest to the query vector
func (m *MilvusStore) SearchCatalog(ctx context.Context, vector []float32, topK int) ([]string, error) {
	if len(vector) != m.config.Dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidDimension, m.config.Dimension, len(vector))
	}

	sp, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, fmt.Errorf("failed to create search params: %w", err)
	}

	results, err := m.client.Search(
		ctx,
		m.config.CatalogCollection,
		nil, // partition names
		"",
		[]string{"title"},
		[]entity.Vector{entity.FloatVector(vector)},
		"embedding",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreQueryFailed, err)
	}

	if len(results) == 0 {
		return []string{}, nil
	}

	titles := make([]string, 0, results[0].ResultCount)
	for _, field := range results[0].Fields {
		if field.Name() == "title" {
			titles = append(titles, field.(*entity.ColumnVarChar).Data()...)
		}
	}

	return titles, nil
}

// SearchContent performs top-K similarity search over content chunks
func (m *MilvusStore) SearchContent(ctx context.Context, vector []float32, topK int, filter SearchFilter) ([]ScoredChunk, error) {
	if len(vector) != m.config.Dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidDimension, m.config.Dimension, len(vector))
	}

	sp, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, fmt.Errorf("failed to create search params: %w", err)
	}

	outputFields := []string{"course_title", "lesson_number", "chunk_index", "text"}

	results, err := m.client.Search(
		ctx,
		m.config.ContentCollection,
		nil, // partition names
		buildContentFilter(filter),
		outputFields,
		[]entity.Vector{entity.FloatVector(vector)},
		"embedding",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreQueryFailed, err)
	}

	if len(results) == 0 {
		return []ScoredChunk{}, nil
	}

	chunks := make([]ScoredChunk, 0, results[0].ResultCount)
	for i := 0; i < results[0].ResultCount; i++ {
		chunk := ScoredChunk{Score: results[0].Scores[i]}

		for _, field := range results[0].Fields {
			switch field.Name() {
			case "course_title":
				chunk.CourseTitle = field.(*entity.ColumnVarChar).Data()[i]
			case "lesson_number":
				chunk.LessonNumber = int(field.(*entity.ColumnInt64).Data()[i])
			case "chunk_index":
				chunk.ChunkIndex = int(field.(*entity.ColumnInt64).Data()[i])
			case "text":
				chunk.Text = field.(*entity.ColumnVarChar).Data()[i]
			}
		}

		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

// buildContentFilter renders a SearchFilter as a Milvus boolean expression.
// Constraints are conjunctive; an empty filter yields an empty expression.
func buildContentFilter(filter SearchFilter) string {
	var terms []string
	if filter.CourseTitle != "" {
		terms = append(terms, fmt.Sprintf(`course_title == "%s"`, escapeExprString(filter.CourseTitle)))
	}
	if filter.LessonNumber != nil {
		terms = append(terms, fmt.Sprintf(`lesson_number == %d`, *filter.LessonNumber))
	}
	return strings.Join(terms, " and ")
}

func escapeExprString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// GetCourse returns the catalog entry for an exact title
func (m *MilvusStore) GetCourse(ctx context.Context, title string) (*CourseMeta, error) {
	expr := fmt.Sprintf(`title == "%s"`, escapeExprString(title))
	outputFields := []string{"title", "instructor", "course_link", "lessons_json"}

	results, err := m.client.Query(ctx, m.config.CatalogCollection, nil, expr, outputFields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreQueryFailed, err)
	}

	meta := &CourseMeta{}
	found := false
	var lessonsJSON string

	for _, column := range results {
		varcharCol, ok := column.(*entity.ColumnVarChar)
		if !ok || len(varcharCol.Data()) == 0 {
			continue
		}
		value := varcharCol.Data()[0]
		switch column.Name() {
		case "title":
			meta.Title = value
			found = true
		case "instructor":
			meta.Instructor = value
		case "course_link":
			meta.CourseLink = value
		case "lessons_json":
			lessonsJSON = value
		}
	}

	if !found {
		return nil, nil
	}

	if lessonsJSON != "" {
		if err := json.Unmarshal([]byte(lessonsJSON), &meta.Lessons); err != nil {
			return nil, fmt.Errorf("failed to decode lessons for %q: %w", title, err)
		}
	}

	return meta, nil
}

// HasCourse reports whether an exact title exists in the catalog
func (m *MilvusStore) HasCourse(ctx context.Context, title string) (bool, error) {
	meta, err := m.GetCourse(ctx, title)
	if err != nil {
		return false, err
	}
	return meta != nil, nil
}

// ListCourseTitles returns every catalog title
func (m *MilvusStore) ListCourseTitles(ctx context.Context) ([]string, error) {
	results, err := m.client.Query(ctx, m.config.CatalogCollection, nil, `title != ""`, []string{"title"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreQueryFailed, err)
	}

	var titles []string
	for _, column := range results {
		if column.Name() == "title" {
			if varcharCol, ok := column.(*entity.ColumnVarChar); ok {
				titles = append(titles, varcharCol.Data()...)
			}
		}
	}

	return titles, nil
}

// Clear drops and recreates both collections
func (m *MilvusStore) Clear(ctx context.Context) error {
	for _, name := range []string{m.config.CatalogCollection, m.config.ContentCollection} {
		has, err := m.client.HasCollection(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to check collection existence: %w", err)
		}
		if has {
			if err := m.client.DropCollection(ctx, name); err != nil {
				return fmt.Errorf("failed to drop collection %s: %w", name, err)
			}
		}
	}
	return m.ensureCollections(ctx)
}

// Close releases resources and closes the Milvus connection
func (m *MilvusStore) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}
