// Package config loads the application configuration from a YAML file,
// falling back to built-in defaults when the file is absent.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// QdrantConfig contains connection details for the vector store.
type QdrantConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Collection string `yaml:"collection"`
}

// OpenAIConfig selects the models used for embeddings and answer generation.
// The API key is read from the OPENAI_API_KEY environment variable, never
// from this file.
type OpenAIConfig struct {
	EmbeddingModel string `yaml:"embedding_model"`
	ChatModel      string `yaml:"chat_model"`
	EmbedBatchSize int    `yaml:"embed_batch_size"`
}

// CrawlerConfig bounds the crawl and places its artifacts.
type CrawlerConfig struct {
	OutputDir     string `yaml:"output_dir"`
	MaxDepth      int    `yaml:"max_depth"`
	DelayMillis   int    `yaml:"delay_millis"`
	MinContentLen int    `yaml:"min_content_len"`
	TimeoutSecs   int    `yaml:"timeout_secs"`
}

// ChunkerConfig configures how page text is split before embedding.
type ChunkerConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// QueryConfig configures retrieval.
type QueryConfig struct {
	TopK int `yaml:"top_k"`
}

// Config is the root application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Qdrant  QdrantConfig  `yaml:"qdrant"`
	OpenAI  OpenAIConfig  `yaml:"openai"`
	Crawler CrawlerConfig `yaml:"crawler"`
	Chunker ChunkerConfig `yaml:"chunker"`
	Query   QueryConfig   `yaml:"query"`
}

// Load reads the config from path. A missing file returns defaults; a
// malformed file returns an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Qdrant: QdrantConfig{
			Host:       "localhost",
			Port:       6334,
			Collection: "documents",
		},
		OpenAI: OpenAIConfig{
			EmbeddingModel: "text-embedding-3-small",
			ChatModel:      "gpt-4o-mini",
			EmbedBatchSize: 500,
		},
		Crawler: CrawlerConfig{
			OutputDir:     "scraped_content",
			MaxDepth:      2,
			DelayMillis:   500,
			MinContentLen: 100,
			TimeoutSecs:   15,
		},
		Chunker: ChunkerConfig{Size: 1000, Overlap: 200},
		Query:   QueryConfig{TopK: 3},
	}
}

// applyDefaults fills fields whose zero value is never a usable setting.
// Chunk overlap, crawl delay, and the min-content threshold are left alone:
// zero is a legitimate explicit choice for each, and a file that omits them
// keeps the defaults Load starts from.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Qdrant.Host == "" {
		cfg.Qdrant.Host = def.Qdrant.Host
	}
	if cfg.Qdrant.Port == 0 {
		cfg.Qdrant.Port = def.Qdrant.Port
	}
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = def.Qdrant.Collection
	}
	if cfg.OpenAI.EmbeddingModel == "" {
		cfg.OpenAI.EmbeddingModel = def.OpenAI.EmbeddingModel
	}
	if cfg.OpenAI.ChatModel == "" {
		cfg.OpenAI.ChatModel = def.OpenAI.ChatModel
	}
	if cfg.OpenAI.EmbedBatchSize == 0 {
		cfg.OpenAI.EmbedBatchSize = def.OpenAI.EmbedBatchSize
	}
	if cfg.Crawler.OutputDir == "" {
		cfg.Crawler.OutputDir = def.Crawler.OutputDir
	}
	if cfg.Crawler.MaxDepth == 0 {
		cfg.Crawler.MaxDepth = def.Crawler.MaxDepth
	}
	if cfg.Crawler.TimeoutSecs == 0 {
		cfg.Crawler.TimeoutSecs = def.Crawler.TimeoutSecs
	}
	if cfg.Chunker.Size == 0 {
		cfg.Chunker.Size = def.Chunker.Size
	}
	if cfg.Query.TopK == 0 {
		cfg.Query.TopK = def.Query.TopK
	}
}
