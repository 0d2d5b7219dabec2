package routes

import (
	"jobscout/internal/delivery/http/handler"
	"jobscout/internal/delivery/http/middleware"
	"jobscout/internal/pkg/jwt"
	"jobscout/internal/usecase"
	"jobscout/internal/ws"

	"github.com/gofiber/fiber/v3"
)

// Deps is everything the route tree mounts. The app container fills it.
type Deps struct {
	Tokens jwt.Service

	Auth          *usecase.AuthUsecase
	Preferences   *usecase.PreferenceUsecase
	Jobs          *usecase.JobUsecase
	Matches       *usecase.MatchUsecase
	Applications  *usecase.ApplicationUsecase
	CVs           *usecase.CVUsecase
	Subscriptions *usecase.SubscriptionUsecase
	Notifications *usecase.NotificationUsecase

	WS *ws.Handler
}

// RegisterV1 mounts the API under /api/v1. Auth endpoints, the payment
// webhook and the WebSocket upgrade stay public; everything else sits
// behind the bearer-token middleware.
func RegisterV1(r fiber.Router, d Deps) {
	if r == nil {
		return
	}

	v1 := r.Group("/api/v1")

	handler.NewAuthHandler(d.Auth).RegisterRoutes(v1)

	subscriptionHandler := handler.NewSubscriptionHandler(d.Subscriptions)
	subscriptionHandler.RegisterWebhook(v1)

	if d.WS != nil {
		v1.Get("/ws/notifications", d.WS.HandleNotifications)
	}

	protected := v1.Group("", middleware.AuthMiddleware(d.Tokens))
	handler.NewPreferenceHandler(d.Preferences).RegisterRoutes(protected)
	handler.NewJobHandler(d.Jobs).RegisterRoutes(protected)
	handler.NewMatchHandler(d.Matches).RegisterRoutes(protected)
	handler.NewApplicationHandler(d.Applications).RegisterRoutes(protected)
	handler.NewCVHandler(d.CVs).RegisterRoutes(protected)
	subscriptionHandler.RegisterRoutes(protected)
	handler.NewNotificationHandler(d.Notifications).RegisterRoutes(protected)
}
