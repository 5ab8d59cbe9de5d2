package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/devanshmehta/scholarmatch/internal/apperror"
	"github.com/devanshmehta/scholarmatch/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// OpenAIService is the primary embedding provider. text-embedding-3-small
// returns vectors of EmbeddingDimensions (1536).
type OpenAIService struct {
	apiKey string
	model  string
	client *resty.Client
	logger *zap.Logger
}

func NewOpenAIService(logger *zap.Logger) *OpenAIService {
	cfg := config.LoadOpenAIConfig()
	return &OpenAIService{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		client: resty.New().
			SetBaseURL("https://api.openai.com/v1").
			SetTimeout(30 * time.Second),
		logger: logger,
	}
}

func (s *OpenAIService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("text for embedding cannot be empty")
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"model": s.model,
			"input": trimmed,
		}).
		Post("/embeddings")
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		s.logger.Warn("openai embeddings rate limited",
			zap.String("body", resp.String()))
		return nil, fmt.Errorf("openai embeddings: %w", apperror.ErrRateLimited)
	}
	if resp.IsError() {
		message := gjson.Get(resp.String(), "error.message").String()
		return nil, fmt.Errorf("openai embeddings failed with status %d: %s", resp.StatusCode(), message)
	}

	values := gjson.Get(resp.String(), "data.0.embedding").Array()
	if len(values) == 0 {
		return nil, fmt.Errorf("no embedding in openai response")
	}

	embedding := make([]float32, len(values))
	for i, v := range values {
		embedding[i] = float32(v.Float())
	}
	return embedding, nil
}
