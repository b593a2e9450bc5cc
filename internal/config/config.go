// Package config loads application configuration from a YAML file with
// environment variable overrides for deployment-specific settings.
package config

import (
	"errors"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Yates-Labs/lectern/internal/orchestrator"
)

// ModelConfig configures the chat model driving answer generation.
type ModelConfig struct {
	Name        string  `yaml:"name"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// EmbeddingConfig configures the embedding model.
type EmbeddingConfig struct {
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
}

// RetrievalConfig configures search and conversation memory.
type RetrievalConfig struct {
	TopK         int `yaml:"top_k"`
	MaxHistory   int `yaml:"max_history"`
	ChunkChars   int `yaml:"chunk_chars"`
	OverlapChars int `yaml:"overlap_chars"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Address   string `yaml:"address"`
	StaticDir string `yaml:"static_dir"`
	DocsDir   string `yaml:"docs_dir"`
	WatchDocs bool   `yaml:"watch_docs"`
}

// MilvusConfig configures the vector store connection.
type MilvusConfig struct {
	Address string `yaml:"address"`
}

// Config is the root application configuration.
type Config struct {
	Model     ModelConfig     `yaml:"model"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Server    ServerConfig    `yaml:"server"`
	Milvus    MilvusConfig    `yaml:"milvus"`
}

// Load reads a config from the given path. A missing file yields defaults;
// environment variables override the file in either case.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Pipeline converts the application config into the orchestrator's config.
func (c *Config) Pipeline() orchestrator.Config {
	pc := orchestrator.DefaultConfig()
	pc.TopK = c.Retrieval.TopK
	pc.MaxHistory = c.Retrieval.MaxHistory
	pc.ChunkChars = c.Retrieval.ChunkChars
	pc.OverlapChars = c.Retrieval.OverlapChars
	pc.EmbedderModel = c.Embedding.Model
	pc.EmbedderDimension = c.Embedding.Dimension
	pc.LLMConfig.Model = c.Model.Name
	pc.LLMConfig.Temperature = float32(c.Model.Temperature)
	pc.LLMConfig.MaxTokens = c.Model.MaxTokens
	if c.Milvus.Address != "" {
		pc.MilvusConfig.Address = c.Milvus.Address
	}
	return pc
}

func defaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Name:        "gpt-4o",
			Temperature: 0,
			MaxTokens:   800,
		},
		Embedding: EmbeddingConfig{
			Model:     "text-embedding-3-large",
			Dimension: 3072,
		},
		Retrieval: RetrievalConfig{
			TopK:         5,
			MaxHistory:   2,
			ChunkChars:   800,
			OverlapChars: 100,
		},
		Server: ServerConfig{
			Address:   ":8000",
			DocsDir:   "docs",
			WatchDocs: true,
		},
	}
}

// applyDefaults fills in zero values a partial config file left out.
func applyDefaults(cfg *Config) {
	defaults := defaultConfig()
	if cfg.Model.Name == "" {
		cfg.Model.Name = defaults.Model.Name
	}
	if cfg.Model.MaxTokens == 0 {
		cfg.Model.MaxTokens = defaults.Model.MaxTokens
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = defaults.Embedding.Model
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = defaults.Embedding.Dimension
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = defaults.Retrieval.TopK
	}
	if cfg.Retrieval.MaxHistory == 0 {
		cfg.Retrieval.MaxHistory = defaults.Retrieval.MaxHistory
	}
	if cfg.Retrieval.ChunkChars == 0 {
		cfg.Retrieval.ChunkChars = defaults.Retrieval.ChunkChars
	}
	if cfg.Retrieval.OverlapChars == 0 {
		cfg.Retrieval.OverlapChars = defaults.Retrieval.OverlapChars
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = defaults.Server.Address
	}
	if cfg.Server.DocsDir == "" {
		cfg.Server.DocsDir = defaults.Server.DocsDir
	}
}

// applyEnvOverrides lets deployment environments override file settings.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LECTERN_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("LECTERN_DOCS_DIR"); v != "" {
		cfg.Server.DocsDir = v
	}
	if v := os.Getenv("LECTERN_MODEL"); v != "" {
		cfg.Model.Name = v
	}
	if v := os.Getenv("MILVUS_ADDRESS"); v != "" {
		cfg.Milvus.Address = v
	}
	if v := os.Getenv("LECTERN_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Retrieval.TopK = n
		}
	}
}
