package service

import (
	"context"
	"errors"
	"strings"

	"github.com/devanshmehta/scholarmatch/internal/apperror"
	"go.uber.org/zap"
)

// EmbeddingDimensions is the fixed vector length shared by the providers,
// the fallback, and the vector(1536) columns.
const EmbeddingDimensions = 1536

type EmbeddingProvider interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingService wraps a provider with the rate-limit fallback. Only a
// rate-limit/quota failure is recovered locally; every other provider
// error propagates.
type EmbeddingService struct {
	provider EmbeddingProvider
	logger   *zap.Logger
}

func NewEmbeddingService(provider EmbeddingProvider, logger *zap.Logger) *EmbeddingService {
	return &EmbeddingService{provider: provider, logger: logger}
}

// Embed returns the vector and whether the fallback path produced it.
// Callers must surface usedFallback so degraded ranking quality is never
// silent.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, bool, error) {
	embedding, err := s.provider.GenerateEmbedding(ctx, text)
	if err == nil {
		return embedding, false, nil
	}
	if errors.Is(err, apperror.ErrRateLimited) {
		s.logger.Warn("using fallback embedding due to provider rate limit", zap.Error(err))
		return FallbackEmbedding(text), true, nil
	}
	return nil, false, err
}

// FallbackEmbedding maps text to a deterministic placeholder vector:
// each rune of the lowercased, trimmed text writes (code/255)*2-1 at
// index i mod 1536, wrapping around for longer text. Not semantically
// meaningful, but reproducible, so the pipeline keeps working through a
// provider outage.
func FallbackEmbedding(text string) []float32 {
	embedding := make([]float32, EmbeddingDimensions)
	normalized := strings.ToLower(strings.TrimSpace(text))

	for i, r := range []rune(normalized) {
		embedding[i%EmbeddingDimensions] = (float32(r)/255)*2 - 1
	}

	return embedding
}
