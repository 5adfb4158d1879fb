package handlers

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	webmodels "github.com/recipevault/recipevault/web/models"
	"github.com/recipevault/recipevault/web/utils"
)

// Tags and ingredients share one surface: list, rename, delete. They are
// created only through recipe payloads, so there is no create endpoint.

func TagsList(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		user, ok := utils.CurrentUser(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		assignedOnly := c.QueryInt("assigned_only", 0) != 0

		tags, err := webApp.Repos.Tag.GetAllByUserID(ctx, user.ID, assignedOnly)
		if err != nil {
			slog.Error("Failed to list tags",
				slog.Int64("user_id", user.ID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to list tags")
		}

		return utils.SendSuccess(c, webmodels.NewTagDTOs(tags), "Tags retrieved successfully")
	}
}

func TagsUpdate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		user, ok := utils.CurrentUser(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		tagID, err := parseInt64(c.Params("id"))
		if err != nil {
			return utils.SendError(c, 400, "INVALID_TAG_ID", "Invalid tag ID", map[string]string{
				"tag_id": c.Params("id"),
			})
		}

		var req webmodels.AttributeUpdateRequest

		// Parse JSON body
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, 400, "INVALID_REQUEST", "Invalid request body", map[string]string{
				"error": err.Error(),
			})
		}

		// Validate request
		if validationErrors := utils.ValidateAttributeUpdateRequest(&req); len(validationErrors) > 0 {
			return utils.HandleValidationErrors(c, validationErrors)
		}

		tag, err := webApp.Repos.Tag.GetByID(ctx, user.ID, tagID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return utils.SendNotFound(c, "Tag not found")
			}
			slog.Error("Failed to get tag",
				slog.Int64("tag_id", tagID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to update tag")
		}

		tag.Name = req.Name
		if err := webApp.Repos.Tag.Update(ctx, tag); err != nil {
			slog.Error("Failed to update tag",
				slog.Int64("tag_id", tagID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to update tag")
		}

		return utils.SendSuccess(c, webmodels.NewTagDTO(tag), "Tag updated successfully")
	}
}

func TagsDelete(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		user, ok := utils.CurrentUser(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		tagID, err := parseInt64(c.Params("id"))
		if err != nil {
			return utils.SendError(c, 400, "INVALID_TAG_ID", "Invalid tag ID", map[string]string{
				"tag_id": c.Params("id"),
			})
		}

		tag, err := webApp.Repos.Tag.GetByID(ctx, user.ID, tagID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return utils.SendNotFound(c, "Tag not found")
			}
			slog.Error("Failed to get tag",
				slog.Int64("tag_id", tagID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to delete tag")
		}

		if err := webApp.Repos.Tag.Delete(ctx, tag); err != nil {
			slog.Error("Failed to delete tag",
				slog.Int64("tag_id", tagID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to delete tag")
		}

		slog.Info("Tag deleted successfully",
			slog.Int64("tag_id", tagID),
			slog.Int64("user_id", user.ID))

		return utils.SendNoContent(c)
	}
}

func IngredientsList(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		user, ok := utils.CurrentUser(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		assignedOnly := c.QueryInt("assigned_only", 0) != 0

		ingredients, err := webApp.Repos.Ingredient.GetAllByUserID(ctx, user.ID, assignedOnly)
		if err != nil {
			slog.Error("Failed to list ingredients",
				slog.Int64("user_id", user.ID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to list ingredients")
		}

		return utils.SendSuccess(c, webmodels.NewIngredientDTOs(ingredients), "Ingredients retrieved successfully")
	}
}

func IngredientsUpdate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		user, ok := utils.CurrentUser(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		ingredientID, err := parseInt64(c.Params("id"))
		if err != nil {
			return utils.SendError(c, 400, "INVALID_INGREDIENT_ID", "Invalid ingredient ID", map[string]string{
				"ingredient_id": c.Params("id"),
			})
		}

		var req webmodels.AttributeUpdateRequest

		// Parse JSON body
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, 400, "INVALID_REQUEST", "Invalid request body", map[string]string{
				"error": err.Error(),
			})
		}

		// Validate request
		if validationErrors := utils.ValidateAttributeUpdateRequest(&req); len(validationErrors) > 0 {
			return utils.HandleValidationErrors(c, validationErrors)
		}

		ingredient, err := webApp.Repos.Ingredient.GetByID(ctx, user.ID, ingredientID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return utils.SendNotFound(c, "Ingredient not found")
			}
			slog.Error("Failed to get ingredient",
				slog.Int64("ingredient_id", ingredientID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to update ingredient")
		}

		ingredient.Name = req.Name
		if err := webApp.Repos.Ingredient.Update(ctx, ingredient); err != nil {
			slog.Error("Failed to update ingredient",
				slog.Int64("ingredient_id", ingredientID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to update ingredient")
		}

		return utils.SendSuccess(c, webmodels.NewIngredientDTO(ingredient), "Ingredient updated successfully")
	}
}

func IngredientsDelete(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		user, ok := utils.CurrentUser(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		ingredientID, err := parseInt64(c.Params("id"))
		if err != nil {
			return utils.SendError(c, 400, "INVALID_INGREDIENT_ID", "Invalid ingredient ID", map[string]string{
				"ingredient_id": c.Params("id"),
			})
		}

		ingredient, err := webApp.Repos.Ingredient.GetByID(ctx, user.ID, ingredientID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return utils.SendNotFound(c, "Ingredient not found")
			}
			slog.Error("Failed to get ingredient",
				slog.Int64("ingredient_id", ingredientID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to delete ingredient")
		}

		if err := webApp.Repos.Ingredient.Delete(ctx, ingredient); err != nil {
			slog.Error("Failed to delete ingredient",
				slog.Int64("ingredient_id", ingredientID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to delete ingredient")
		}

		slog.Info("Ingredient deleted successfully",
			slog.Int64("ingredient_id", ingredientID),
			slog.Int64("user_id", user.ID))

		return utils.SendNoContent(c)
	}
}
