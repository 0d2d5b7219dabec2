package handler

import (
	"errors"

	"jobscout/internal/cv"
	"jobscout/internal/delivery/http/middleware"
	"jobscout/internal/pkg/response"
	"jobscout/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type CVHandler struct {
	cvs *usecase.CVUsecase
}

func NewCVHandler(cvs *usecase.CVUsecase) *CVHandler {
	return &CVHandler{cvs: cvs}
}

func (h *CVHandler) RegisterRoutes(r fiber.Router) {
	r.Post("/jobs/:jobID/analysis", h.Analyze)
	r.Get("/jobs/:jobID/analysis", h.GetAnalysis)
	r.Post("/jobs/:jobID/cv", h.Generate)
	r.Get("/jobs/:jobID/cv", h.ListGenerated)
}

type cvRequest struct {
	CVText string `json:"cv_text"`
}

func (h *CVHandler) Analyze(c fiber.Ctx) error {
	userID, jobID, req, err := h.cvInput(c)
	if err != nil {
		return err
	}

	analysis, err := h.cvs.Analyze(c.Context(), userID, jobID, req.CVText)
	if err != nil {
		return mapCVError(err)
	}
	return response.Success(c, fiber.StatusOK, "analysis complete", analysis)
}

func (h *CVHandler) GetAnalysis(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}
	jobID, err := uuidParam(c, "jobID")
	if err != nil {
		return err
	}

	analysis, err := h.cvs.GetAnalysis(c.Context(), userID, jobID)
	if err != nil {
		if errors.Is(err, usecase.ErrNotFound) {
			return middleware.NewAppError(fiber.StatusNotFound, "no analysis for this job", nil, err)
		}
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, analysis)
}

func (h *CVHandler) Generate(c fiber.Ctx) error {
	userID, jobID, req, err := h.cvInput(c)
	if err != nil {
		return err
	}

	generated, err := h.cvs.Generate(c.Context(), userID, jobID, req.CVText)
	if err != nil {
		return mapCVError(err)
	}
	return response.Success(c, fiber.StatusCreated, "cv generated", generated)
}

func (h *CVHandler) ListGenerated(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}
	jobID, err := uuidParam(c, "jobID")
	if err != nil {
		return err
	}

	items, err := h.cvs.ListGenerated(c.Context(), userID, jobID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *CVHandler) cvInput(c fiber.Ctx) (userID, jobID uuid.UUID, req cvRequest, err error) {
	userID, err = userIDFromCtx(c)
	if err != nil {
		return
	}
	jobID, err = uuidParam(c, "jobID")
	if err != nil {
		return
	}
	if err = c.Bind().Body(&req); err != nil {
		err = middleware.NewAppError(fiber.StatusBadRequest, response.MessageBadRequest, nil, err)
	}
	return
}

func mapCVError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "cv_text is required", nil, err)
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "job not found", nil, err)
	case errors.Is(err, usecase.ErrNoActiveSubscription):
		return middleware.NewAppError(fiber.StatusPaymentRequired, "an active subscription is required", nil, err)
	case errors.Is(err, usecase.ErrLimitReached):
		return middleware.NewAppError(fiber.StatusForbidden, "plan limit reached", nil, err)
	case errors.Is(err, cv.ErrMalformedAnalysis):
		return middleware.NewAppError(fiber.StatusBadGateway, "analysis service returned an unusable result", nil, err)
	default:
		return err
	}
}
