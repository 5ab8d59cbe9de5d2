package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func breakerService() *GeminiService {
	return &GeminiService{
		MaxRetries:        3,
		BaseDelay:         time.Millisecond,
		MaxDelay:          time.Millisecond,
		RequestTimeout:    time.Second,
		logger:            zap.NewNop(),
		circuitBreakerMax: 5,
	}
}

func TestGenerateEmbeddingCircuitBreakerOpen(t *testing.T) {
	svc := breakerService()
	svc.consecutiveErrors.Store(5)

	_, err := svc.GenerateEmbedding(context.Background(), "some profile text")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
}

func TestGenerateEmbeddingRejectsEmptyText(t *testing.T) {
	svc := breakerService()

	_, err := svc.GenerateEmbedding(context.Background(), "   ")

	require.Error(t, err)
}

func TestCircuitBreakerConcurrentReads(t *testing.T) {
	svc := breakerService()
	svc.consecutiveErrors.Store(5)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.GenerateEmbedding(context.Background(), "some profile text")
			assert.Error(t, err)
		}()
	}
	wg.Wait()
}
