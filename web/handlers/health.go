package handlers

import (
	"github.com/gofiber/fiber/v2"
	webmodels "github.com/recipevault/recipevault/web/models"
	"github.com/recipevault/recipevault/web/utils"
)

func HealthCheck(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := webmodels.NewHealthCheck(webApp.Version)

		if err := webApp.DB.Ping(c.Context()); err != nil {
			health.AddComponent("database", "unhealthy", err.Error(), nil)
		} else {
			health.AddComponent("database", "healthy", "", nil)
		}

		return utils.SendSuccess(c, health, "Health check successful")
	}
}
