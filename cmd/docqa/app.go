package main

import (
	"fmt"
	"log/slog"
	"time"

	"docqa/internal/adapters/embedding"
	"docqa/internal/adapters/extractor"
	"docqa/internal/adapters/llm"
	"docqa/internal/adapters/loader"
	"docqa/internal/adapters/registry"
	"docqa/internal/adapters/session"
	"docqa/internal/adapters/vectordb"
	"docqa/internal/config"
	"docqa/internal/domain/ports"
	"docqa/internal/domain/usecases"
)

// app wires adapters into the core usecases.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	ingest    *usecases.IngestUseCase
	answer    *usecases.AnswerUseCase
	summarize *usecases.SummarizeUseCase
	registry  ports.DocumentRegistry
	extractor ports.TextExtractor
	loaders   []ports.DocumentLoader
	close     func()
}

func loadConfig() (*config.Config, error) {
	if cfgPath != "" {
		return config.Load(cfgPath)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

func buildApp(logger *slog.Logger) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	embedder := embedding.NewOllamaAdapter(cfg.Ollama.BaseURL, cfg.Ollama.EmbedModel, logger)
	gen := llm.NewOllamaAdapter(cfg.Ollama.BaseURL, cfg.Ollama.GenerateModel)
	ext := extractor.NewHTTPExtractor(cfg.Extractor.URL)
	reg := registry.NewMemory()

	var (
		index   ports.VectorStore
		cleanup = func() {}
	)
	switch cfg.Store.Backend {
	case "sqlite":
		sqliteIndex, err := vectordb.NewSQLiteIndex(cfg.Store.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite index: %w", err)
		}
		index = sqliteIndex
		cleanup = func() { sqliteIndex.Close() }
	case "", "memory":
		index = vectordb.NewMemoryIndex()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	maxMessages := cfg.Memory.MaxMessages
	if maxMessages < 0 {
		maxMessages = 0 // negative config disables eviction
	}
	memory := session.New(maxMessages)

	ingest := usecases.NewIngestUseCase(embedder, index, reg,
		cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap, logger)

	answer := usecases.NewAnswerUseCase(embedder, index, gen, memory, usecases.AnswerConfig{
		TopK:        cfg.Answer.TopK,
		AskTimeout:  time.Duration(cfg.Answer.AskTimeoutSecs) * time.Second,
		MaxTokens:   cfg.Answer.MaxTokens,
		Temperature: cfg.Answer.Temperature,
		MaxInflight: cfg.Answer.MaxInflight,
	}, logger)

	summarize := usecases.NewSummarizeUseCase(reg, index, gen,
		cfg.Summary.MaxInput, time.Duration(cfg.Summary.TimeoutSecs)*time.Second, logger)

	return &app{
		cfg:       cfg,
		logger:    logger,
		ingest:    ingest,
		answer:    answer,
		summarize: summarize,
		registry:  reg,
		extractor: ext,
		loaders: []ports.DocumentLoader{
			loader.NewTextLoader(),
			loader.NewBinaryLoader(ext),
		},
		close: cleanup,
	}, nil
}
