package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"codescout/internal/assistant"
	"codescout/internal/cache"
	"codescout/internal/config"
	"codescout/internal/embedder"
	"codescout/internal/extract"
	"codescout/internal/extract/languages"
	"codescout/internal/fetch"
	"codescout/internal/llm"
	"codescout/internal/store"
)

var (
	flagConfig    string
	flagOllama    string
	flagEmbedder  string
	flagLLM       string
	flagModel     string
	flagChatModel string
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "codescout",
	Short: "Ask questions about any GitHub repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func Execute() {
	// A missing .env is fine; explicit env vars still apply.
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ./codescout.yaml, then ~/.config/codescout/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagOllama, "ollama", "", "ollama base URL")
	rootCmd.PersistentFlags().StringVar(&flagEmbedder, "embedder", "", "embedding provider: ollama or openai")
	rootCmd.PersistentFlags().StringVar(&flagLLM, "llm", "", "generation provider: ollama, openai, or anthropic")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "embedding model")
	rootCmd.PersistentFlags().StringVar(&flagChatModel, "chat-model", "", "generative model for answers")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "debug logging")
}

// app bundles the wired components behind every command.
type app struct {
	cfg   *config.AppConfig
	asst  *assistant.Assistant
	cache *cache.Store
	index *store.Index
	emb   embedder.Embedder
	log   *slog.Logger
}

func loadConfig() (*config.AppConfig, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if flagConfig != "" {
		cfg, err = config.Load(flagConfig)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	// Flags override the file.
	if flagEmbedder != "" {
		cfg.Embedder.Provider = flagEmbedder
	}
	if flagLLM != "" {
		cfg.LLM.Provider = flagLLM
	}
	if flagModel != "" {
		cfg.Embedder.Model = flagModel
	}
	if flagChatModel != "" {
		cfg.LLM.Model = flagChatModel
	}
	if flagOllama != "" {
		cfg.Embedder.OllamaURL = flagOllama
		cfg.LLM.OllamaURL = flagOllama
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newEmbedder(cfg *config.AppConfig) (embedder.Embedder, error) {
	switch cfg.Embedder.Provider {
	case "ollama":
		return embedder.NewOllamaEmbedder(cfg.Embedder.OllamaURL, cfg.Embedder.Model), nil
	case "openai":
		return embedder.NewOpenAIEmbedder(cfg.Embedder.Model)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedder.Provider)
	}
}

func newGenerator(cfg *config.AppConfig) (llm.Generator, error) {
	switch cfg.LLM.Provider {
	case "ollama":
		return llm.NewOllamaChat(cfg.LLM.OllamaURL, cfg.LLM.Model), nil
	case "openai":
		return llm.NewOpenAIChat(cfg.LLM.Model)
	case "anthropic":
		return llm.NewAnthropicChat(cfg.LLM.Model)
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.LLM.Provider)
	}
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger()

	emb, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	gen, err := newGenerator(cfg)
	if err != nil {
		return nil, err
	}

	c, err := cache.Open(cfg.Storage.CacheDir, logger)
	if err != nil {
		return nil, err
	}
	idx, err := store.Open(cfg.Storage.IndexPath, logger)
	if err != nil {
		return nil, err
	}

	reg := extract.NewRegistry()
	languages.RegisterAll(reg)

	asst := assistant.New(assistant.Deps{
		Fetcher:   fetch.New(reg.Extensions(), logger),
		Extractor: extract.NewExtractor(reg),
		Embedder:  emb,
		Generator: gen,
		Cache:     c,
		Index:     idx,
		Logger:    logger,
	})

	return &app{cfg: cfg, asst: asst, cache: c, index: idx, emb: emb, log: logger}, nil
}

func (a *app) close() {
	if err := a.asst.Close(); err != nil {
		a.log.Warn("shutdown", "error", err)
	}
}
