package handlers

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	webmodels "github.com/recipevault/recipevault/web/models"
	"github.com/recipevault/recipevault/web/utils"
	"golang.org/x/sync/errgroup"
)

func AdminUsersList(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		users, err := webApp.Repos.User.GetUsers(ctx)
		if err != nil {
			slog.Error("Failed to list users", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to list users")
		}

		return utils.SendSuccess(c, webmodels.NewAdminUserDTOs(users), "Users retrieved successfully")
	}
}

func AdminUsersDetail(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		userID, err := parseInt64(c.Params("id"))
		if err != nil {
			return utils.SendError(c, 400, "INVALID_USER_ID", "Invalid user ID", map[string]string{
				"user_id": c.Params("id"),
			})
		}

		user, err := webApp.Repos.User.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return utils.SendNotFound(c, "User not found")
			}
			slog.Error("Failed to get user",
				slog.Int64("user_id", userID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to get user")
		}

		return utils.SendSuccess(c, webmodels.NewAdminUserDTO(user), "User retrieved successfully")
	}
}

func AdminStats(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var userCount, recipeCount, tagCount, ingredientCount int64

		// Fan the count queries out; each repository applies its own timeout
		g, ctx := errgroup.WithContext(c.Context())
		g.Go(func() error {
			var err error
			userCount, err = webApp.Repos.User.GetUserCount(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			recipeCount, err = webApp.Repos.Recipe.GetRecipeCount(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			tagCount, err = webApp.Repos.Tag.GetTagCount(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			ingredientCount, err = webApp.Repos.Ingredient.GetIngredientCount(ctx)
			return err
		})

		if err := g.Wait(); err != nil {
			slog.Error("Failed to gather stats", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to gather stats")
		}

		return utils.SendSuccess(c, fiber.Map{
			"users":       userCount,
			"recipes":     recipeCount,
			"tags":        tagCount,
			"ingredients": ingredientCount,
		}, "Statistics retrieved successfully")
	}
}
