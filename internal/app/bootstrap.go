package app

import (
	"fmt"
	"strings"

	"jobscout/internal/config"
	"jobscout/internal/delivery/http/middleware"
	"jobscout/internal/delivery/http/routes"
	"jobscout/internal/pkg/response"
	"jobscout/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// Bootstrap builds the container and the HTTP server and starts the
// WebSocket hub. The returned cleanup closes the container.
func Bootstrap(cfg config.Config, log *logrus.Logger) (*App, func() error, error) {
	c, err := NewContainer(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	f := fiber.New(fiber.Config{
		AppName: cfg.App.AppName,
	})

	f.Use(middleware.AccessLog(log))
	f.Use(middleware.ErrorMiddleware(log))

	f.Get("/health", func(ctx fiber.Ctx) error {
		return response.Success(ctx, fiber.StatusOK, response.MessageOK, nil)
	})

	routes.RegisterV1(f, routes.Deps{
		Tokens:        c.Tokens,
		Auth:          c.AuthUC,
		Preferences:   c.PreferenceUC,
		Jobs:          c.JobUC,
		Matches:       c.MatchUC,
		Applications:  c.ApplicationUC,
		CVs:           c.CVUC,
		Subscriptions: c.SubscriptionUC,
		Notifications: c.NotificationUC,
		WS:            ws.NewHandler(c.Hub, c.Tokens, log),
	})

	go c.Hub.Run()

	return &App{Fiber: f, Container: c}, c.Close, nil
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
