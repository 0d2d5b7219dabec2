package handler

import (
	"errors"
	"strconv"

	"jobscout/internal/delivery/http/middleware"
	"jobscout/internal/pkg/response"
	"jobscout/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type JobHandler struct {
	jobs *usecase.JobUsecase
}

func NewJobHandler(jobs *usecase.JobUsecase) *JobHandler {
	return &JobHandler{jobs: jobs}
}

func (h *JobHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/jobs", h.List)
	r.Get("/jobs/:id", h.Get)
}

func (h *JobHandler) List(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	postings, err := h.jobs.List(c.Context(), limit, offset)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, postings)
}

func (h *JobHandler) Get(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	posting, err := h.jobs.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrNotFound) {
			return middleware.NewAppError(fiber.StatusNotFound, "job not found", nil, err)
		}
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, posting)
}
