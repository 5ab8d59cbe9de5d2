package handler

import (
	"context"
	"errors"

	"github.com/devanshmehta/scholarmatch/internal/apperror"
	"github.com/devanshmehta/scholarmatch/internal/dto"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type matchFinder interface {
	FindMatches(ctx context.Context, userID string, limit int) ([]dto.MatchResult, error)
}

type MatchHandler struct {
	uc     matchFinder
	logger *zap.Logger
}

func NewMatchHandler(uc matchFinder, logger *zap.Logger) *MatchHandler {
	return &MatchHandler{uc: uc, logger: logger}
}

func (h *MatchHandler) RegisterRoutes(app *fiber.App, auth fiber.Handler) {
	app.Get("/matches", auth, h.Matches)
}

func (h *MatchHandler) Matches(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	limit := c.QueryInt("limit", 10)
	if limit <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be a positive integer",
		})
	}

	matches, err := h.uc.FindMatches(c.Context(), userID, limit)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		h.logger.Error("find matches failed", zap.String("user_id", userID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	return c.JSON(fiber.Map{"matches": matches})
}
