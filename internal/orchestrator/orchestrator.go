// Package orchestrator wires the retrieval components into the end-to-end
// question answering pipeline: embeddings, vector store, search tools,
// tool-calling generation and session history.
package orchestrator

import (
	"context"
	"fmt"
	"log"

	"github.com/Yates-Labs/lectern/internal/agent"
	"github.com/Yates-Labs/lectern/internal/ingest"
	"github.com/Yates-Labs/lectern/internal/rag"
	"github.com/Yates-Labs/lectern/internal/session"
	"github.com/Yates-Labs/lectern/internal/tools"
)

// Config holds configuration for the question answering pipeline.
type Config struct {
	// TopK is the number of content chunks retrieved per search
	TopK int

	// MaxHistory is the number of conversation exchanges remembered per session
	MaxHistory int

	// ChunkChars is the character budget per content chunk
	ChunkChars int

	// OverlapChars is the chunk overlap during ingestion
	OverlapChars int

	// EmbedderModel is the model to use for embeddings (e.g., "text-embedding-3-large")
	EmbedderModel string

	// EmbedderDimension is the vector dimension for embeddings
	EmbedderDimension int

	// LLMConfig holds the LLM configuration for answer generation
	LLMConfig agent.LLMConfig

	// MilvusConfig holds the Milvus vector store configuration
	MilvusConfig rag.MilvusConfig
}

// DefaultConfig returns sensible defaults for the pipeline.
func DefaultConfig() Config {
	return Config{
		TopK:              rag.DefaultTopK,
		MaxHistory:        session.DefaultMaxExchanges,
		ChunkChars:        ingest.DefaultChunkChars,
		OverlapChars:      ingest.DefaultOverlapChars,
		EmbedderModel:     "text-embedding-3-large",
		EmbedderDimension: 3072,
		LLMConfig:         agent.DefaultLLMConfig(),
		MilvusConfig:      rag.DefaultMilvusConfig(),
	}
}

// Answer is a generated response together with the source citations backing
// it.
type Answer struct {
	Text    string
	Sources []rag.Source
}

// CourseStats summarizes the indexed catalog.
type CourseStats struct {
	TotalCourses int
	CourseTitles []string
}

// Pipeline orchestrates end-to-end course question answering.
type Pipeline struct {
	config      Config
	embedder    rag.Embedder
	vectorStore rag.VectorStore
	searcher    *rag.Searcher
	generator   *agent.Generator
	ingester    *ingest.Pipeline
	sessions    *session.Store
}

// New creates a pipeline with the given configuration.
func New(ctx context.Context, config Config) (*Pipeline, error) {
	embedder, err := rag.NewOpenAIEmbedder(config.EmbedderModel, config.EmbedderDimension)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	vectorStore, err := rag.NewMilvusStore(ctx, config.MilvusConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}

	searcher, err := rag.NewSearcher(embedder, vectorStore, config.TopK)
	if err != nil {
		return nil, fmt.Errorf("failed to create searcher: %w", err)
	}

	llm, err := agent.NewOpenAILLM(config.LLMConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM: %w", err)
	}

	ingester, err := ingest.NewPipeline(embedder, vectorStore,
		ingest.NewChunker(config.ChunkChars, config.OverlapChars))
	if err != nil {
		return nil, fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}

	return &Pipeline{
		config:      config,
		embedder:    embedder,
		vectorStore: vectorStore,
		searcher:    searcher,
		generator:   agent.NewGenerator(llm, config.LLMConfig),
		ingester:    ingester,
		sessions:    session.NewStore(config.MaxHistory),
	}, nil
}

// newWithComponents assembles a pipeline from prebuilt components, for tests.
func newWithComponents(config Config, store rag.VectorStore, searcher *rag.Searcher,
	generator *agent.Generator, ingester *ingest.Pipeline) *Pipeline {
	return &Pipeline{
		config:      config,
		vectorStore: store,
		searcher:    searcher,
		generator:   generator,
		ingester:    ingester,
		sessions:    session.NewStore(config.MaxHistory),
	}
}

// Close releases resources held by the pipeline.
func (p *Pipeline) Close() error {
	if p.vectorStore != nil {
		return p.vectorStore.Close()
	}
	return nil
}

// Sessions exposes the conversation session store.
func (p *Pipeline) Sessions() *session.Store {
	return p.sessions
}

// Answer runs one query through the tool-calling loop and returns the
// generated text with its source citations. Each query gets its own tool
// registry, so concurrent queries never observe each other's provenance.
func (p *Pipeline) Answer(ctx context.Context, query, sessionID string) (*Answer, error) {
	log.Printf("[Pipeline] Answering query (session %s)", sessionID)

	registry := tools.NewRegistry(
		tools.NewContentSearchTool(p.searcher, p.vectorStore),
		tools.NewCourseOutlineTool(p.searcher),
	)

	text, err := p.generator.Generate(ctx, query, p.sessions.History(sessionID), registry)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	sources := registry.CollectSources()
	registry.ResetSources()

	p.sessions.Append(sessionID, query, text)

	log.Printf("[Pipeline] Answered with %d source(s)", len(sources))
	return &Answer{Text: text, Sources: sources}, nil
}

// IngestFolder indexes every course script in dir, skipping courses already
// present in the catalog.
func (p *Pipeline) IngestFolder(ctx context.Context, dir string) (int, int, error) {
	return p.ingester.AddCourseFolder(ctx, dir)
}

// Watch keeps the index in sync with dir until the context is cancelled.
func (p *Pipeline) Watch(ctx context.Context, dir string) error {
	watcher, err := ingest.NewWatcher(p.ingester)
	if err != nil {
		return fmt.Errorf("failed to create docs watcher: %w", err)
	}
	defer watcher.Close()
	return watcher.Run(ctx, dir)
}

// Stats reports the indexed course titles for the analytics endpoint.
func (p *Pipeline) Stats(ctx context.Context) (*CourseStats, error) {
	titles, err := p.vectorStore.ListCourseTitles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return &CourseStats{TotalCourses: len(titles), CourseTitles: titles}, nil
}

// ClearIndex drops and recreates the vector collections.
func (p *Pipeline) ClearIndex(ctx context.Context) error {
	return p.vectorStore.Clear(ctx)
}
