package middleware

import (
	"strings"

	"jobscout/internal/pkg/jwt"
	"jobscout/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// Locals keys populated by AuthMiddleware.
const (
	CtxUserIDKey = "user_id"
	CtxEmailKey  = "email"
)

// AuthMiddleware validates the bearer access token and stores the caller's
// identity in the request locals.
func AuthMiddleware(tokens jwt.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := bearerTokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return NewAppError(fiber.StatusUnauthorized, response.MessageUnauthorized, nil, nil)
		}

		claims, err := tokens.ValidateAccessToken(token)
		if err != nil {
			return NewAppError(fiber.StatusUnauthorized, response.MessageUnauthorized, nil, err)
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxEmailKey, claims.Email)
		return c.Next()
	}
}

func bearerTokenFromHeader(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
