package config

import (
	"os"
	"sync"
)

type EmbeddingConfig struct {
	Provider string // "openai" (default) or "gemini"
}

var (
	embeddingConfig *EmbeddingConfig
	embeddingOnce   sync.Once
)

func LoadEmbeddingConfig() *EmbeddingConfig {
	embeddingOnce.Do(func() {
		provider := os.Getenv("EMBEDDING_PROVIDER")
		if provider == "" {
			provider = "openai"
		}
		embeddingConfig = &EmbeddingConfig{
			Provider: provider,
		}
	})
	return embeddingConfig
}
