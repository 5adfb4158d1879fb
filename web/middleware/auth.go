package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/recipevault/recipevault/recipevault/services"
	"github.com/recipevault/recipevault/web/handlers"
	"github.com/recipevault/recipevault/web/utils"
)

// TokenRequired middleware ensures the request carries a valid API token
func TokenRequired(webApp *handlers.WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := extractTokenKey(c)
		if key == "" {
			slog.Debug("Auth required: no token in request")
			return utils.SendUnauthorized(c, "Authentication credentials were not provided")
		}

		user, err := webApp.TokenService.Authenticate(c.Context(), key)
		if err != nil {
			if errors.Is(err, services.ErrInvalidToken) {
				slog.Debug("Auth required: invalid token")
				return utils.SendUnauthorized(c, "Invalid token")
			}
			slog.Error("Auth required: token lookup failed", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to authenticate request")
		}

		// Store the user and the raw token key in context
		c.Locals("user", user)
		c.Locals("token", key)

		slog.Debug("Auth middleware: user authenticated",
			slog.Int64("user_id", user.ID),
			slog.String("email", user.Email))

		return c.Next()
	}
}

// AdminRequired middleware ensures the user has staff privileges
func AdminRequired(webApp *handlers.WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get user from context (should be set by TokenRequired middleware)
		user, ok := utils.CurrentUser(c)
		if !ok {
			slog.Warn("Admin required: no user in context")
			return utils.SendForbidden(c, "Access denied")
		}

		if !user.IsStaff {
			slog.Warn("Admin required: user lacks staff privileges",
				slog.Int64("user_id", user.ID),
				slog.String("email", user.Email))
			return utils.SendForbidden(c, "Staff access required")
		}

		return c.Next()
	}
}

// extractTokenKey pulls the token key out of the Authorization header.
// Both "Token <key>" and "Bearer <key>" schemes are accepted.
func extractTokenKey(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get("Authorization"))
	if header == "" {
		return ""
	}

	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}

	scheme := strings.ToLower(parts[0])
	if scheme != "token" && scheme != "bearer" {
		return ""
	}

	return parts[1]
}
