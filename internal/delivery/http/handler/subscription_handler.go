package handler

import (
	"errors"

	"jobscout/internal/delivery/http/middleware"
	"jobscout/internal/domain/billing"
	"jobscout/internal/payments"
	"jobscout/internal/pkg/response"
	"jobscout/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type SubscriptionHandler struct {
	subs *usecase.SubscriptionUsecase
}

func NewSubscriptionHandler(subs *usecase.SubscriptionUsecase) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs}
}

func (h *SubscriptionHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/subscription", h.Get)
	r.Post("/subscription/checkout", h.Checkout)
}

// RegisterWebhook mounts the gateway callback on an unauthenticated router.
func (h *SubscriptionHandler) RegisterWebhook(r fiber.Router) {
	r.Post("/payments/webhook", h.Webhook)
}

type checkoutRequest struct {
	Plan        string `json:"plan"`
	Cycle       string `json:"billing_cycle"`
	RedirectURL string `json:"redirect_url"`
}

func (h *SubscriptionHandler) Get(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	view, err := h.subs.Get(c.Context(), userID)
	if err != nil {
		if errors.Is(err, usecase.ErrNotFound) {
			return middleware.NewAppError(fiber.StatusNotFound, "no subscription", nil, err)
		}
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, view)
}

func (h *SubscriptionHandler) Checkout(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	var req checkoutRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, response.MessageBadRequest, nil, err)
	}

	session, err := h.subs.Checkout(c.Context(), userID, billing.Plan(req.Plan), billing.Cycle(req.Cycle), req.RedirectURL)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidInput) {
			return middleware.NewAppError(fiber.StatusBadRequest, "unknown plan or billing cycle", nil, err)
		}
		return err
	}
	return response.Success(c, fiber.StatusCreated, "checkout created", session)
}

func (h *SubscriptionHandler) Webhook(c fiber.Ctx) error {
	var event payments.WebhookEvent
	if err := c.Bind().Body(&event); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, response.MessageBadRequest, nil, err)
	}

	if err := h.subs.HandleWebhook(c.Context(), event); err != nil {
		if errors.Is(err, usecase.ErrInvalidInput) {
			return middleware.NewAppError(fiber.StatusBadRequest, "malformed webhook payload", nil, err)
		}
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}
