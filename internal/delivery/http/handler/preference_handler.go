package handler

import (
	"errors"

	"jobscout/internal/delivery/http/middleware"
	"jobscout/internal/domain/user"
	"jobscout/internal/pkg/response"
	"jobscout/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type PreferenceHandler struct {
	prefs *usecase.PreferenceUsecase
}

func NewPreferenceHandler(prefs *usecase.PreferenceUsecase) *PreferenceHandler {
	return &PreferenceHandler{prefs: prefs}
}

func (h *PreferenceHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/preferences", h.Get)
	r.Put("/preferences", h.Update)
}

type preferencesRequest struct {
	Roles             []string `json:"roles"`
	Skills            []string `json:"skills"`
	Locations         []string `json:"locations"`
	Industries        []string `json:"industries"`
	YearsOfExperience int      `json:"years_of_experience"`
	RemoteOnly        bool     `json:"remote_only"`
}

func (h *PreferenceHandler) Get(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	view, err := h.prefs.Get(c.Context(), userID)
	if err != nil {
		if errors.Is(err, usecase.ErrNotFound) {
			return middleware.NewAppError(fiber.StatusNotFound, "preferences not set", nil, err)
		}
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, view)
}

func (h *PreferenceHandler) Update(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	var req preferencesRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, response.MessageBadRequest, nil, err)
	}

	view, err := h.prefs.Update(c.Context(), user.Preferences{
		UserID:            userID,
		Roles:             req.Roles,
		Skills:            req.Skills,
		Locations:         req.Locations,
		Industries:        req.Industries,
		YearsOfExperience: req.YearsOfExperience,
		RemoteOnly:        req.RemoteOnly,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidInput) {
			return middleware.NewAppError(fiber.StatusBadRequest, "at least one role is required", nil, err)
		}
		return err
	}
	return response.Success(c, fiber.StatusOK, "preferences saved", view)
}
