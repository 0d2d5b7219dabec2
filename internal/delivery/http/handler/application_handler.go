package handler

import (
	"errors"

	"jobscout/internal/delivery/http/middleware"
	"jobscout/internal/domain/application"
	"jobscout/internal/pkg/response"
	"jobscout/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ApplicationHandler struct {
	apps *usecase.ApplicationUsecase
}

func NewApplicationHandler(apps *usecase.ApplicationUsecase) *ApplicationHandler {
	return &ApplicationHandler{apps: apps}
}

func (h *ApplicationHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/applications", h.List)
	r.Put("/applications/:jobID/status", h.UpdateStatus)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *ApplicationHandler) List(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	items, err := h.apps.List(c.Context(), userID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *ApplicationHandler) UpdateStatus(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}
	jobID, err := uuidParam(c, "jobID")
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, response.MessageBadRequest, nil, err)
	}

	app, err := h.apps.UpdateStatus(c.Context(), userID, jobID, application.Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidInput):
			return middleware.NewAppError(fiber.StatusBadRequest, "unknown application status", nil, err)
		case errors.Is(err, usecase.ErrNotFound):
			return middleware.NewAppError(fiber.StatusNotFound, "job not found", nil, err)
		case errors.Is(err, usecase.ErrInvalidTransition):
			return middleware.NewAppError(fiber.StatusUnprocessableEntity, "status transition not allowed", nil, err)
		default:
			return err
		}
	}
	return response.Success(c, fiber.StatusOK, "application updated", app)
}
