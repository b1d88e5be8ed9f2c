package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// LLMConfig points at one OpenAI-compatible endpoint (embeddings or chat).
// Model and the resulting vector dimension are fixed configuration; they are
// never negotiated per call.
type LLMConfig struct {
	BaseURL     string `yaml:"base_url"`
	Key         string `yaml:"key"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RAGConfig holds the retrieval-core tuning knobs.
type RAGConfig struct {
	DataDir      string `yaml:"data_dir"`
	MaxChunkLen  int    `yaml:"max_chunk_len"`
	MinChunkLen  int    `yaml:"min_chunk_len"`
	TopK         int    `yaml:"top_k"`
	MaxRetries   int    `yaml:"max_retries"`
	BaseDelayMs  int    `yaml:"base_delay_ms"`
	CacheSize    int    `yaml:"cache_size"`
	FetchTimeout int    `yaml:"fetch_timeout_secs"`
}

// DBConfig is the connection for the chatbot registry.
type DBConfig struct {
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

type Config struct {
	EmbedLLM LLMConfig `yaml:"embed_llm"`
	ChatLLM  LLMConfig `yaml:"chat_llm"`
	RAG      RAGConfig `yaml:"rag"`
	Database DBConfig  `yaml:"database"`
}

const (
	defaultDataDir      = "./data/chatbots"
	defaultMaxChunkLen  = 1000
	defaultMinChunkLen  = 50
	defaultTopK         = 5
	defaultMaxRetries   = 3
	defaultBaseDelayMs  = 1000
	defaultCacheSize    = 16
	defaultFetchTimeout = 15
	defaultLLMTimeout   = 30
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// ApplyDefaults fills zero-valued fields with documented defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.RAG.DataDir == "" {
		cfg.RAG.DataDir = defaultDataDir
	}
	if cfg.RAG.MaxChunkLen == 0 {
		cfg.RAG.MaxChunkLen = defaultMaxChunkLen
	}
	if cfg.RAG.MinChunkLen == 0 {
		cfg.RAG.MinChunkLen = defaultMinChunkLen
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = defaultTopK
	}
	if cfg.RAG.MaxRetries == 0 {
		cfg.RAG.MaxRetries = defaultMaxRetries
	}
	if cfg.RAG.BaseDelayMs == 0 {
		cfg.RAG.BaseDelayMs = defaultBaseDelayMs
	}
	if cfg.RAG.CacheSize == 0 {
		cfg.RAG.CacheSize = defaultCacheSize
	}
	if cfg.RAG.FetchTimeout == 0 {
		cfg.RAG.FetchTimeout = defaultFetchTimeout
	}
	if cfg.EmbedLLM.TimeoutSecs == 0 {
		cfg.EmbedLLM.TimeoutSecs = defaultLLMTimeout
	}
	if cfg.ChatLLM.TimeoutSecs == 0 {
		cfg.ChatLLM.TimeoutSecs = defaultLLMTimeout
	}
}
