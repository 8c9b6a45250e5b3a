// Package config loads the application configuration from YAML with
// environment overrides. A .env file in the working directory is read
// first when present.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP shell.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// OllamaConfig points at the embedding and generation collaborators.
type OllamaConfig struct {
	BaseURL       string `yaml:"base_url"`
	EmbedModel    string `yaml:"embed_model"`
	GenerateModel string `yaml:"generate_model"`
}

// ExtractorConfig points at the text-extraction sidecar.
type ExtractorConfig struct {
	URL string `yaml:"url"`
}

// IngestConfig configures chunking and the optional watch folder.
type IngestConfig struct {
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	WatchDir     string `yaml:"watch_dir,omitempty"`
}

// AnswerConfig bounds question answering and chat.
type AnswerConfig struct {
	TopK           int     `yaml:"top_k"`
	AskTimeoutSecs int     `yaml:"ask_timeout_secs"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	MaxInflight    int     `yaml:"max_inflight"`
}

// SummaryConfig bounds summarization input.
type SummaryConfig struct {
	MaxInput    int `yaml:"max_input"`
	TimeoutSecs int `yaml:"timeout_secs"`
}

// MemoryConfig bounds per-user conversation history.
type MemoryConfig struct {
	MaxMessages int `yaml:"max_messages"`
}

// StoreConfig selects the vector index backend.
type StoreConfig struct {
	Backend string `yaml:"backend"` // "memory" or "sqlite"
	DataDir string `yaml:"data_dir,omitempty"`
}

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Ollama    OllamaConfig    `yaml:"ollama"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Answer    AnswerConfig    `yaml:"answer"`
	Summary   SummaryConfig   `yaml:"summary"`
	Memory    MemoryConfig    `yaml:"memory"`
	Store     StoreConfig     `yaml:"store"`
}

// Load reads a config from path. A missing file yields defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docqa/config.yaml.
func LoadDefault() (*Config, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docqa", "config.yaml"), nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Ollama.BaseURL == "" {
		cfg.Ollama.BaseURL = "http://localhost:11434"
	}
	if cfg.Ollama.EmbedModel == "" {
		cfg.Ollama.EmbedModel = "nomic-embed-text"
	}
	if cfg.Ollama.GenerateModel == "" {
		cfg.Ollama.GenerateModel = "llama3.2"
	}
	if cfg.Extractor.URL == "" {
		cfg.Extractor.URL = "http://localhost:8081"
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = 1000
	}
	if cfg.Ingest.ChunkOverlap == 0 {
		cfg.Ingest.ChunkOverlap = 200
	}
	if cfg.Answer.TopK == 0 {
		cfg.Answer.TopK = 4
	}
	if cfg.Answer.AskTimeoutSecs == 0 {
		cfg.Answer.AskTimeoutSecs = 10
	}
	if cfg.Answer.MaxTokens == 0 {
		cfg.Answer.MaxTokens = 1024
	}
	if cfg.Answer.Temperature == 0 {
		cfg.Answer.Temperature = 0.7
	}
	if cfg.Answer.MaxInflight == 0 {
		cfg.Answer.MaxInflight = 4
	}
	if cfg.Summary.MaxInput == 0 {
		cfg.Summary.MaxInput = 3000
	}
	if cfg.Summary.TimeoutSecs == 0 {
		cfg.Summary.TimeoutSecs = 30
	}
	if cfg.Memory.MaxMessages == 0 {
		cfg.Memory.MaxMessages = 200
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "memory"
	}
	if cfg.Store.DataDir == "" {
		cfg.Store.DataDir = "./data"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DOCQA_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DOCQA_OLLAMA_URL"); v != "" {
		cfg.Ollama.BaseURL = v
	}
	if v := os.Getenv("DOCQA_EMBED_MODEL"); v != "" {
		cfg.Ollama.EmbedModel = v
	}
	if v := os.Getenv("DOCQA_GENERATE_MODEL"); v != "" {
		cfg.Ollama.GenerateModel = v
	}
	if v := os.Getenv("DOCQA_EXTRACTOR_URL"); v != "" {
		cfg.Extractor.URL = v
	}
	if v := os.Getenv("DOCQA_WATCH_DIR"); v != "" {
		cfg.Ingest.WatchDir = v
	}
	if v := os.Getenv("DOCQA_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("DOCQA_MEMORY_MAX_MESSAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Memory.MaxMessages = n
		}
	}
}
