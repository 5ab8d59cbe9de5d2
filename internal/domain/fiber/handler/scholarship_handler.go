package handler

import (
	"errors"
	"strings"

	"github.com/devanshmehta/scholarmatch/internal/apperror"
	"github.com/devanshmehta/scholarmatch/internal/dto"
	"github.com/devanshmehta/scholarmatch/internal/model"
	"github.com/devanshmehta/scholarmatch/internal/usecase"
	"github.com/devanshmehta/scholarmatch/internal/util"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

type ScholarshipHandler struct {
	uc *usecase.ScholarshipUsecase
}

func NewScholarshipHandler(uc *usecase.ScholarshipUsecase) *ScholarshipHandler {
	return &ScholarshipHandler{uc: uc}
}

func (h *ScholarshipHandler) RegisterRoutes(app *fiber.App, auth fiber.Handler) {
	app.Get("/scholarships", h.List)
	app.Post("/scholarships", auth, h.Create)
	app.Get("/scholarships/search", h.Search)
	app.Post("/scholarships/filter", h.Filter)
	app.Post("/scholarships/backfill-embeddings", auth, h.Backfill)
	app.Get("/scholarships/:id", h.Get)
	app.Put("/scholarships/:id", auth, h.Update)
	app.Delete("/scholarships/:id", auth, h.Delete)
}

func (h *ScholarshipHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)

	scholarships, pagination, err := h.uc.List(page, pageSize)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to fetch scholarships",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get scholarships",
		Data:       scholarships,
		Pagination: pagination,
	})
}

func (h *ScholarshipHandler) Get(c *fiber.Ctx) error {
	scholarship, err := h.uc.Get(c.Params("id"))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "scholarship not found",
			}, err)
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to fetch scholarship",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get scholarship",
		Data:    scholarship,
	})
}

func (h *ScholarshipHandler) Create(c *fiber.Ctx) error {
	var req dto.ScholarshipCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "title and description are required",
		})
	}

	scholarship := &model.Scholarship{
		Title:               req.Title,
		Description:         req.Description,
		Amount:              req.Amount,
		Deadline:            req.Deadline,
		Category:            req.Category,
		Status:              req.Status,
		EligibilityCriteria: datatypes.NewJSONType(req.EligibilityCriteria),
		Requirements:        datatypes.NewJSONSlice(req.Requirements),
	}
	if err := h.uc.Create(c.Context(), scholarship); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to create scholarship",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success create scholarship",
		Data:    scholarship,
	})
}

func (h *ScholarshipHandler) Update(c *fiber.Ctx) error {
	var req dto.ScholarshipUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	scholarship, err := h.uc.Update(c.Context(), c.Params("id"), req)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "scholarship not found",
			}, err)
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to update scholarship",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success update scholarship",
		Data:    scholarship,
	})
}

func (h *ScholarshipHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Params("id")); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "scholarship not found",
			}, err)
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to delete scholarship",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success delete scholarship",
	})
}

func (h *ScholarshipHandler) Filter(c *fiber.Ctx) error {
	var filter model.ScholarshipFilter
	if err := c.BodyParser(&filter); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid filter",
		}, err)
	}
	if filter.MinAmount != nil && filter.MaxAmount != nil && *filter.MinAmount > *filter.MaxAmount {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "min_amount cannot exceed max_amount",
		})
	}

	scholarships, err := h.uc.Filter(filter)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to filter scholarships",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success filter scholarships",
		Data:    scholarships,
	})
}

func (h *ScholarshipHandler) Search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "q query parameter is required",
		})
	}

	results, err := h.uc.Search(c.Context(), query)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to search scholarships",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success search scholarships",
		Data:    results,
	})
}

func (h *ScholarshipHandler) Backfill(c *fiber.Ctx) error {
	updated, failed, err := h.uc.BackfillEmbeddings(c.Context())
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to backfill embeddings",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success backfill embeddings",
		Data:    fiber.Map{"updated": updated, "failed": failed},
	})
}
