package handler

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/devanshmehta/scholarmatch/internal/apperror"
	"github.com/devanshmehta/scholarmatch/internal/dto"
	"github.com/devanshmehta/scholarmatch/internal/model"
	"github.com/devanshmehta/scholarmatch/internal/usecase"
	"github.com/devanshmehta/scholarmatch/internal/util"
	"github.com/gofiber/fiber/v2"
)

const maxDocumentSize = 5 * 1024 * 1024

type ApplicationHandler struct {
	uc *usecase.ApplicationUsecase
}

func NewApplicationHandler(uc *usecase.ApplicationUsecase) *ApplicationHandler {
	return &ApplicationHandler{uc: uc}
}

func (h *ApplicationHandler) RegisterRoutes(app *fiber.App, auth fiber.Handler) {
	app.Get("/applications", auth, h.List)
	app.Post("/applications", auth, h.Create)
	app.Get("/applications/:id", auth, h.Get)
	app.Put("/applications/:id", auth, h.Update)
	app.Delete("/applications/:id", auth, h.Withdraw)
	app.Post("/applications/:id/documents", auth, h.UploadDocument)
}

func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	applications, err := h.uc.ListByUser(userID)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to fetch applications",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get applications",
		Data:    applications,
	})
}

func (h *ApplicationHandler) Get(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	application, err := h.uc.Get(c.Params("id"), userID)
	if err != nil {
		return h.mapError(c, err, "failed to fetch application")
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get application",
		Data:    application,
	})
}

func (h *ApplicationHandler) Create(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req dto.ApplicationCreateRequest
	if err := c.BodyParser(&req); err != nil || req.ScholarshipID == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "scholarship_id is required",
		}, err)
	}

	application, err := h.uc.Create(userID, req.ScholarshipID)
	if err != nil {
		if errors.Is(err, apperror.ErrAlreadyApplied) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusConflict,
				Message: "You have already applied for this scholarship",
			}, err)
		}
		return h.mapError(c, err, "failed to submit application")
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Application submitted successfully",
		Data:    application,
	})
}

func (h *ApplicationHandler) Update(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req dto.ApplicationUpdateRequest
	if err := c.BodyParser(&req); err != nil || req.Status == nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "status is required",
		}, err)
	}

	application, err := h.uc.UpdateStatus(c.Params("id"), userID, *req.Status)
	if err != nil {
		return h.mapError(c, err, "failed to update application")
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success update application",
		Data:    application,
	})
}

func (h *ApplicationHandler) Withdraw(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if err := h.uc.Withdraw(c.Params("id"), userID); err != nil {
		return h.mapError(c, err, "failed to withdraw application")
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Application withdrawn successfully",
	})
}

func (h *ApplicationHandler) UploadDocument(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	applicationID := c.Params("id")

	file, err := c.FormFile("document")
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "document file is required",
		}, err)
	}
	if file.Size > maxDocumentSize {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "document file size is too large (max 5MB)",
		})
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".pdf", ".png", ".jpg", ".jpeg":
	default:
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "unsupported document file type",
		})
	}

	savePath := filepath.Join("./uploads/documents", userID, applicationID, file.Filename)
	if err := c.SaveFile(file, savePath); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "cannot save document file",
		}, err)
	}

	docType := c.FormValue("type")
	if docType == "" {
		docType = "supporting"
	}
	application, err := h.uc.AttachDocument(applicationID, userID, model.ApplicationDocument{
		Type: docType,
		URL:  fmt.Sprintf("/uploads/documents/%s/%s/%s", userID, applicationID, file.Filename),
	})
	if err != nil {
		return h.mapError(c, err, "failed to attach document")
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success upload document",
		Data:    application,
	})
}

func (h *ApplicationHandler) mapError(c *fiber.Ctx, err error, message string) error {
	if errors.Is(err, apperror.ErrNotFound) {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "application not found",
		}, err)
	}
	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Message: message,
	}, err)
}
