package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/devanshmehta/scholarmatch/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProvider struct {
	calls  int
	values []float32
	err    error
}

func (s *stubProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.values, nil
}

func TestEmbedPassesThroughProviderResult(t *testing.T) {
	provider := &stubProvider{values: make([]float32, EmbeddingDimensions)}
	svc := NewEmbeddingService(provider, zap.NewNop())

	values, usedFallback, err := svc.Embed(context.Background(), "computer science student")

	require.NoError(t, err)
	assert.False(t, usedFallback)
	assert.Len(t, values, EmbeddingDimensions)
	assert.Equal(t, 1, provider.calls)
}

func TestEmbedFallsBackOnRateLimit(t *testing.T) {
	provider := &stubProvider{err: fmt.Errorf("quota exhausted: %w", apperror.ErrRateLimited)}
	svc := NewEmbeddingService(provider, zap.NewNop())

	values, usedFallback, err := svc.Embed(context.Background(), "computer science student")

	require.NoError(t, err)
	assert.True(t, usedFallback)
	assert.Len(t, values, EmbeddingDimensions)

	// Deterministic across calls for the same text.
	again, _, err := svc.Embed(context.Background(), "computer science student")
	require.NoError(t, err)
	assert.Equal(t, values, again)
}

func TestEmbedPropagatesOtherErrors(t *testing.T) {
	boom := errors.New("connection refused")
	svc := NewEmbeddingService(&stubProvider{err: boom}, zap.NewNop())

	values, usedFallback, err := svc.Embed(context.Background(), "anything")

	require.ErrorIs(t, err, boom)
	assert.False(t, usedFallback)
	assert.Nil(t, values)
}

func TestFallbackEmbeddingValues(t *testing.T) {
	values := FallbackEmbedding("a")

	require.Len(t, values, EmbeddingDimensions)
	// 'a' is 97: (97/255)*2-1
	assert.InDelta(t, float64(97)/255*2-1, float64(values[0]), 1e-6)
	assert.Zero(t, values[1])
}

func TestFallbackEmbeddingNormalizesInput(t *testing.T) {
	assert.Equal(t, FallbackEmbedding("  Physics  "), FallbackEmbedding("physics"))
}

func TestFallbackEmbeddingWrapsAround(t *testing.T) {
	// Rune 1536 lands back on index 0, overwriting the first value.
	text := strings.Repeat("a", EmbeddingDimensions) + "b"

	values := FallbackEmbedding(text)

	assert.InDelta(t, float64(98)/255*2-1, float64(values[0]), 1e-6)
	assert.InDelta(t, float64(97)/255*2-1, float64(values[1]), 1e-6)
}
