package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Model.Name != "gpt-4o" {
		t.Errorf("unexpected model %q", cfg.Model.Name)
	}
	if cfg.Model.MaxTokens != 800 {
		t.Errorf("unexpected max tokens %d", cfg.Model.MaxTokens)
	}
	if cfg.Embedding.Model != "text-embedding-3-large" || cfg.Embedding.Dimension != 3072 {
		t.Errorf("unexpected embedding config %+v", cfg.Embedding)
	}
	if cfg.Retrieval.TopK != 5 || cfg.Retrieval.MaxHistory != 2 {
		t.Errorf("unexpected retrieval config %+v", cfg.Retrieval)
	}
	if cfg.Server.Address != ":8000" {
		t.Errorf("unexpected address %q", cfg.Server.Address)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "model:\n  name: gpt-4o-mini\nretrieval:\n  top_k: 3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Model.Name != "gpt-4o-mini" {
		t.Errorf("file value not applied, got %q", cfg.Model.Name)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("file value not applied, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Model.MaxTokens != 800 {
		t.Errorf("default not preserved, got %d", cfg.Model.MaxTokens)
	}
	if cfg.Embedding.Dimension != 3072 {
		t.Errorf("default not preserved, got %d", cfg.Embedding.Dimension)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("model: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LECTERN_ADDRESS", ":9999")
	t.Setenv("LECTERN_MODEL", "gpt-4o-mini")
	t.Setenv("LECTERN_TOP_K", "7")
	t.Setenv("MILVUS_ADDRESS", "milvus.internal:19530")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Address != ":9999" {
		t.Errorf("address override not applied, got %q", cfg.Server.Address)
	}
	if cfg.Model.Name != "gpt-4o-mini" {
		t.Errorf("model override not applied, got %q", cfg.Model.Name)
	}
	if cfg.Retrieval.TopK != 7 {
		t.Errorf("top_k override not applied, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Milvus.Address != "milvus.internal:19530" {
		t.Errorf("milvus override not applied, got %q", cfg.Milvus.Address)
	}
}

func TestLoad_BadTopKOverrideIgnored(t *testing.T) {
	t.Setenv("LECTERN_TOP_K", "not-a-number")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("invalid override must be ignored, got %d", cfg.Retrieval.TopK)
	}
}

func TestPipelineConversion(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Milvus.Address = "milvus.internal:19530"

	pc := cfg.Pipeline()
	if pc.TopK != 5 || pc.EmbedderDimension != 3072 {
		t.Errorf("unexpected pipeline config %+v", pc)
	}
	if pc.LLMConfig.Model != "gpt-4o" || pc.LLMConfig.MaxTokens != 800 {
		t.Errorf("unexpected LLM config %+v", pc.LLMConfig)
	}
	if pc.MilvusConfig.Address != "milvus.internal:19530" {
		t.Errorf("milvus address not forwarded, got %q", pc.MilvusConfig.Address)
	}
}
