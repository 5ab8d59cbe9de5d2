package handler

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/devanshmehta/scholarmatch/internal/apperror"
	"github.com/devanshmehta/scholarmatch/internal/dto"
	"github.com/devanshmehta/scholarmatch/internal/usecase"
	"github.com/devanshmehta/scholarmatch/internal/util"
	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	uc *usecase.ProfileUsecase
}

func NewProfileHandler(uc *usecase.ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

func (h *ProfileHandler) RegisterRoutes(app *fiber.App, auth fiber.Handler) {
	app.Get("/profile", auth, h.GetProfile)
	app.Put("/profile", auth, h.UpdateProfile)
	app.Get("/users/me", auth, h.GetUser)
	app.Put("/users/me", auth, h.UpsertUser)
	app.Post("/users/me/avatar", auth, h.UploadAvatar)
}

func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	profile, err := h.uc.GetProfile(userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "profile not found",
			}, err)
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to fetch profile",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get profile",
		Data:    profile,
	})
}

// UpdateProfile upserts profile_data. The cached embedding is cleared so
// the next match request recomputes it.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil || len(req.ProfileData) == 0 {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "profile_data is required",
		}, err)
	}

	profile, err := h.uc.UpsertProfile(userID, req.ProfileData)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to update profile",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Profile updated successfully",
		Data:    profile,
	})
}

func (h *ProfileHandler) GetUser(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	user, err := h.uc.GetUser(userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "user not found",
			}, err)
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to fetch user",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get user",
		Data:    user,
	})
}

const maxAvatarSize = 2 * 1024 * 1024

func (h *ProfileHandler) UploadAvatar(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	file, err := c.FormFile("avatar")
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "avatar file is required",
		}, err)
	}
	if file.Size > maxAvatarSize {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "avatar file size is too large (max 2MB)",
		})
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg":
	default:
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "unsupported avatar file type",
		})
	}

	savePath := filepath.Join("./uploads/avatars", userID, file.Filename)
	if err := c.SaveFile(file, savePath); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "cannot save avatar file",
		}, err)
	}

	user, err := h.uc.UpdateAvatar(userID, fmt.Sprintf("/uploads/avatars/%s/%s", userID, file.Filename))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "user not found",
			}, err)
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to update avatar",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success upload avatar",
		Data:    user,
	})
}

func (h *ProfileHandler) UpsertUser(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req dto.UserUpsertRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "email is required",
		}, err)
	}

	user, err := h.uc.UpsertUser(userID, req)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to update user",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success update user",
		Data:    user,
	})
}
