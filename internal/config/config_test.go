package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Embedder.Provider != "ollama" || cfg.LLM.Provider != "ollama" {
		t.Errorf("default providers = %s/%s", cfg.Embedder.Provider, cfg.LLM.Provider)
	}
	if cfg.TopK != 20 {
		t.Errorf("default top_k = %d", cfg.TopK)
	}
	if cfg.Storage.CacheDir == "" || cfg.Storage.IndexPath == "" {
		t.Error("storage paths not defaulted")
	}
}

func TestLoadFillsProviderDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "embedder:\n  provider: openai\nllm:\n  provider: anthropic\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Embedder.Model != "text-embedding-3-small" {
		t.Errorf("embedder model = %q", cfg.Embedder.Model)
	}
	if cfg.LLM.Model != "claude-3-7-sonnet-latest" {
		t.Errorf("llm model = %q", cfg.LLM.Model)
	}
	if cfg.Embedder.OllamaURL != "" {
		t.Errorf("openai embedder got an ollama url: %q", cfg.Embedder.OllamaURL)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := &AppConfig{
		Embedder: EmbedderConfig{Provider: "ollama", Model: "custom-embed", OllamaURL: "http://host:11434"},
		LLM:      LLMConfig{Provider: "openai", Model: "gpt-4o"},
		Storage:  StorageConfig{CacheDir: "/tmp/c", IndexPath: "/tmp/i.json"},
		TopK:     7,
	}
	if err := Save(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\n  - not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error")
	}
}
