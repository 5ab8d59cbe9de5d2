package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

type stubEmbeddings struct {
	values       []float32
	usedFallback bool
	err          error
	lastText     string
}

func (s *stubEmbeddings) Embed(ctx context.Context, text string) ([]float32, bool, error) {
	s.lastText = text
	if s.err != nil {
		return nil, false, s.err
	}
	return s.values, s.usedFallback, nil
}

func newEmbeddingApp(embeddings *stubEmbeddings) *fiber.App {
	app := fiber.New()
	NewEmbeddingHandler(embeddings, zap.NewNop()).RegisterRoutes(app)
	return app
}

func TestGenerateEmbeddingMissingText(t *testing.T) {
	app := newEmbeddingApp(&stubEmbeddings{})

	req := httptest.NewRequest(fiber.MethodPost, "/embeddings", strings.NewReader(`{}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "Text is required", gjson.GetBytes(body, "error").String())
}

func TestGenerateEmbeddingSuccess(t *testing.T) {
	embeddings := &stubEmbeddings{values: make([]float32, 1536)}
	app := newEmbeddingApp(embeddings)

	req := httptest.NewRequest(fiber.MethodPost, "/embeddings", strings.NewReader(`{"text":"physics undergraduate"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "physics undergraduate", embeddings.lastText)
	assert.Len(t, gjson.GetBytes(body, "embedding").Array(), 1536)
	assert.False(t, gjson.GetBytes(body, "warning").Exists())
}

func TestGenerateEmbeddingFallbackWarning(t *testing.T) {
	embeddings := &stubEmbeddings{values: make([]float32, 1536), usedFallback: true}
	app := newEmbeddingApp(embeddings)

	req := httptest.NewRequest(fiber.MethodPost, "/embeddings", strings.NewReader(`{"text":"physics"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Len(t, gjson.GetBytes(body, "embedding").Array(), 1536)
	assert.Equal(t, "Using fallback embedding due to API limitations", gjson.GetBytes(body, "warning").String())
}
