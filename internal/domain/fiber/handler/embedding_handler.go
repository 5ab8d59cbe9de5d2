package handler

import (
	"context"

	"github.com/devanshmehta/scholarmatch/internal/dto"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type embeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, bool, error)
}

type EmbeddingHandler struct {
	embeddings embeddingClient
	logger     *zap.Logger
}

func NewEmbeddingHandler(embeddings embeddingClient, logger *zap.Logger) *EmbeddingHandler {
	return &EmbeddingHandler{embeddings: embeddings, logger: logger}
}

func (h *EmbeddingHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/embeddings", h.Generate)
}

func (h *EmbeddingHandler) Generate(c *fiber.Ctx) error {
	var req dto.EmbeddingRequest
	if err := c.BodyParser(&req); err != nil || req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Text is required"})
	}

	embedding, usedFallback, err := h.embeddings.Embed(c.Context(), req.Text)
	if err != nil {
		h.logger.Error("generate embedding failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate embedding"})
	}

	if usedFallback {
		return c.JSON(fiber.Map{
			"embedding": embedding,
			"warning":   "Using fallback embedding due to API limitations",
		})
	}
	return c.JSON(fiber.Map{"embedding": embedding})
}
