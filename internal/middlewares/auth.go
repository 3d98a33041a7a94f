package middlewares

import (
	"strings"

	"github.com/compsocial/compsocial-server/internal/token"
	"github.com/gofiber/fiber/v2"
)

// UserIDKey is the Locals key under which the authenticated user id is
// stored for downstream handlers.
const UserIDKey = "userID"

// AuthenticateAccessToken validates the bearer token and injects the caller
// identity. A missing header is a bad request; an invalid or expired token
// is unauthorized, with no further detail.
func AuthenticateAccessToken(tokens *token.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return fiber.NewError(fiber.StatusBadRequest, "missing bearer token")
		}

		userID, err := tokens.VerifyAccessToken(parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid access token")
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}
