package handler

import (
	"context"
	"errors"
	"strconv"

	"jobscout/internal/delivery/http/middleware"
	"jobscout/internal/pkg/response"
	"jobscout/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type MatchHandler struct {
	matches *usecase.MatchUsecase
}

func NewMatchHandler(matches *usecase.MatchUsecase) *MatchHandler {
	return &MatchHandler{matches: matches}
}

func (h *MatchHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/matches", h.List)
	r.Patch("/matches/:id/bookmark", h.SetBookmarked)
	r.Patch("/matches/:id/hide", h.SetHidden)
}

type matchFlagRequest struct {
	Value bool `json:"value"`
}

func (h *MatchHandler) List(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	includeHidden := c.Query("include_hidden") == "true"

	items, err := h.matches.List(c.Context(), userID, includeHidden, limit, offset)
	if err != nil {
		return mapMatchError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *MatchHandler) SetBookmarked(c fiber.Ctx) error {
	return h.setFlag(c, h.matches.SetBookmarked, "bookmark updated")
}

func (h *MatchHandler) SetHidden(c fiber.Ctx) error {
	return h.setFlag(c, h.matches.SetHidden, "visibility updated")
}

func (h *MatchHandler) setFlag(c fiber.Ctx, set func(ctx context.Context, userID, matchID uuid.UUID, value bool) error, message string) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}
	matchID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req matchFlagRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, response.MessageBadRequest, nil, err)
	}

	if err := set(c.Context(), userID, matchID, req.Value); err != nil {
		return mapMatchError(err)
	}
	return response.Success(c, fiber.StatusOK, message, nil)
}

func mapMatchError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "match not found", nil, err)
	case errors.Is(err, usecase.ErrNoActiveSubscription):
		return middleware.NewAppError(fiber.StatusPaymentRequired, "an active subscription is required", nil, err)
	case errors.Is(err, usecase.ErrLimitReached):
		return middleware.NewAppError(fiber.StatusForbidden, "plan limit reached", nil, err)
	default:
		return err
	}
}
