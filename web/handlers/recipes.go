package handlers

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	dbmodels "github.com/recipevault/recipevault/recipevault/database/models"
	"github.com/recipevault/recipevault/recipevault/database/repositories"
	"github.com/recipevault/recipevault/recipevault/services"
	webmodels "github.com/recipevault/recipevault/web/models"
	"github.com/recipevault/recipevault/web/utils"
)

// parseIDList parses a comma-separated id list query parameter
func parseIDList(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := parseInt64(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func RecipesList(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		user, ok := utils.CurrentUser(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		tagIDs, err := parseIDList(c.Query("tags"))
		if err != nil {
			return utils.SendError(c, 400, "INVALID_FILTER", "Invalid tags filter", map[string]string{
				"tags": c.Query("tags"),
			})
		}
		ingredientIDs, err := parseIDList(c.Query("ingredients"))
		if err != nil {
			return utils.SendError(c, 400, "INVALID_FILTER", "Invalid ingredients filter", map[string]string{
				"ingredients": c.Query("ingredients"),
			})
		}

		recipes, err := webApp.Repos.Recipe.GetAllByUserID(ctx, user.ID, repositories.RecipeFilters{
			TagIDs:        tagIDs,
			IngredientIDs: ingredientIDs,
		})
		if err != nil {
			slog.Error("Failed to list recipes",
				slog.Int64("user_id", user.ID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to list recipes")
		}

		if query := c.Query("search"); query != "" {
			recipes = webApp.SearchService.FilterRecipes(recipes, query)
		}

		return utils.SendSuccess(c, webmodels.NewRecipeDTOs(recipes), "Recipes retrieved successfully")
	}
}

func RecipesCreate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		user, ok := utils.CurrentUser(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		var req webmodels.RecipeCreateRequest

		// Parse JSON body
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, 400, "INVALID_REQUEST", "Invalid request body", map[string]string{
				"error": err.Error(),
			})
		}

		// Validate request
		if validationErrors := utils.ValidateRecipeCreateRequest(&req); len(validationErrors) > 0 {
			return utils.HandleValidationErrors(c, validationErrors)
		}

		recipe := &dbmodels.Recipe{
			UserID:      user.ID,
			Title:       req.Title,
			TimeMinutes: req.TimeMinutes,
			Price:       req.Price,
			Description: req.Description,
			Link:        req.Link,
		}

		if err := webApp.Repos.Recipe.Create(ctx, recipe); err != nil {
			slog.Error("Failed to create recipe", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to create recipe")
		}

		if err := setRecipeTags(ctx, webApp, recipe, req.Tags); err != nil {
			slog.Error("Failed to attach tags",
				slog.Int64("recipe_id", recipe.ID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to create recipe")
		}
		if err := setRecipeIngredients(ctx, webApp, recipe, req.Ingredients); err != nil {
			slog.Error("Failed to attach ingredients",
				slog.Int64("recipe_id", recipe.ID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to create recipe")
		}

		// Reload with relations for the response
		full, err := webApp.Repos.Recipe.GetByID(ctx, user.ID, recipe.ID)
		if err != nil {
			slog.Error("Failed to reload recipe",
				slog.Int64("recipe_id", recipe.ID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to create recipe")
		}

		slog.Info("Recipe created successfully",
			slog.Int64("recipe_id", full.ID),
			slog.Int64("user_id", user.ID),
			slog.String("title", full.Title))

		return utils.SendCreated(c, webmodels.NewRecipeDetailDTO(full, webApp.imageURL(full.Image)), "Recipe created successfully")
	}
}

func RecipesDetail(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		user, ok := utils.CurrentUser(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		recipeID, err := parseInt64(c.Params("id"))
		if err != nil {
			return utils.SendError(c, 400, "INVALID_RECIPE_ID", "Invalid recipe ID", map[string]string{
				"recipe_id": c.Params("id"),
			})
		}

		recipe, err := webApp.Repos.Recipe.GetByID(ctx, user.ID, recipeID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return utils.SendNotFound(c, "Recipe not found")
			}
			slog.Error("Failed to get recipe",
				slog.Int64("recipe_id", recipeID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to get recipe")
		}

		return utils.SendSuccess(c, webmodels.NewRecipeDetailDTO(recipe, webApp.imageURL(recipe.Image)), "Recipe retrieved successfully")
	}
}

func RecipesUpdate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		user, ok := utils.CurrentUser(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		recipeID, err := parseInt64(c.Params("id"))
		if err != nil {
			return utils.SendError(c, 400, "INVALID_RECIPE_ID", "Invalid recipe ID", map[string]string{
				"recipe_id": c.Params("id"),
			})
		}

		recipe, err := webApp.Repos.Recipe.GetByID(ctx, user.ID, recipeID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return utils.SendNotFound(c, "Recipe not found")
			}
			slog.Error("Failed to get recipe",
				slog.Int64("recipe_id", recipeID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to update recipe")
		}

		var req webmodels.RecipeCreateRequest

		// Parse JSON body
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, 400, "INVALID_REQUEST", "Invalid request body", map[string]string{
				"error": err.Error(),
			})
		}

		// Validate request
		if validationErrors := utils.ValidateRecipeCreateRequest(&req); len(validationErrors) > 0 {
			return utils.HandleValidationErrors(c, validationErrors)
		}

		// Full replacement of scalar fields; the stored image is kept
		recipe.Title = req.Title
		recipe.TimeMinutes = req.TimeMinutes
		recipe.Price = req.Price
		recipe.Description = req.Description
		recipe.Link = req.Link

		if err := webApp.Repos.Recipe.Update(ctx, recipe); err != nil {
			slog.Error("Failed to update recipe",
				slog.Int64("recipe_id", recipeID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to update recipe")
		}

		// Full update replaces both association sets, clearing them when omitted
		if err := setRecipeTags(ctx, webApp, recipe, req.Tags); err != nil {
			slog.Error("Failed to replace tags",
				slog.Int64("recipe_id", recipeID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to update recipe")
		}
		if err := setRecipeIngredients(ctx, webApp, recipe, req.Ingredients); err != nil {
			slog.Error("Failed to replace ingredients",
				slog.Int64("recipe_id", recipeID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to update recipe")
		}

		full, err := webApp.Repos.Recipe.GetByID(ctx, user.ID, recipeID)
		if err != nil {
			slog.Error("Failed to reload recipe",
				slog.Int64("recipe_id", recipeID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to update recipe")
		}

		slog.Info("Recipe updated successfully",
			slog.Int64("recipe_id", recipeID),
			slog.Int64("user_id", user.ID))

		return utils.SendSuccess(c, webmodels.NewRecipeDetailDTO(full, webApp.imageURL(full.Image)), "Recipe updated successfully")
	}
}

func RecipesPartialUpdate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		user, ok := utils.CurrentUser(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		recipeID, err := parseInt64(c.Params("id"))
		if err != nil {
			return utils.SendError(c, 400, "INVALID_RECIPE_ID", "Invalid recipe ID", map[string]string{
				"recipe_id": c.Params("id"),
			})
		}

		recipe, err := webApp.Repos.Recipe.GetByID(ctx, user.ID, recipeID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return utils.SendNotFound(c, "Recipe not found")
			}
			slog.Error("Failed to get recipe",
				slog.Int64("recipe_id", recipeID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to update recipe")
		}

		var req webmodels.RecipeUpdateRequest

		// Parse JSON body
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, 400, "INVALID_REQUEST", "Invalid request body", map[string]string{
				"error": err.Error(),
			})
		}

		// Validate request
		if validationErrors := utils.ValidateRecipeUpdateRequest(&req); len(validationErrors) > 0 {
			return utils.HandleValidationErrors(c, validationErrors)
		}

		// Apply only the provided fields
		if req.Title != nil {
			recipe.Title = *req.Title
		}
		if req.TimeMinutes != nil {
			recipe.TimeMinutes = *req.TimeMinutes
		}
		if req.Price != nil {
			recipe.Price = *req.Price
		}
		if req.Description != nil {
			recipe.Description = *req.Description
		}
		if req.Link != nil {
			recipe.Link = *req.Link
		}

		if err := webApp.Repos.Recipe.Update(ctx, recipe); err != nil {
			slog.Error("Failed to update recipe",
				slog.Int64("recipe_id", recipeID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to update recipe")
		}

		// A present tags or ingredients list replaces the whole set
		if req.Tags != nil {
			if err := setRecipeTags(ctx, webApp, recipe, *req.Tags); err != nil {
				slog.Error("Failed to replace tags",
					slog.Int64("recipe_id", recipeID),
					slog.String("error", err.Error()))
				return utils.SendInternalServerError(c, "Failed to update recipe")
			}
		}
		if req.Ingredients != nil {
			if err := setRecipeIngredients(ctx, webApp, recipe, *req.Ingredients); err != nil {
				slog.Error("Failed to replace ingredients",
					slog.Int64("recipe_id", recipeID),
					slog.String("error", err.Error()))
				return utils.SendInternalServerError(c, "Failed to update recipe")
			}
		}

		full, err := webApp.Repos.Recipe.GetByID(ctx, user.ID, recipeID)
		if err != nil {
			slog.Error("Failed to reload recipe",
				slog.Int64("recipe_id", recipeID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to update recipe")
		}

		slog.Info("Recipe updated successfully",
			slog.Int64("recipe_id", recipeID),
			slog.Int64("user_id", user.ID))

		return utils.SendSuccess(c, webmodels.NewRecipeDetailDTO(full, webApp.imageURL(full.Image)), "Recipe updated successfully")
	}
}

func RecipesDelete(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		user, ok := utils.CurrentUser(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		recipeID, err := parseInt64(c.Params("id"))
		if err != nil {
			return utils.SendError(c, 400, "INVALID_RECIPE_ID", "Invalid recipe ID", map[string]string{
				"recipe_id": c.Params("id"),
			})
		}

		recipe, err := webApp.Repos.Recipe.GetByID(ctx, user.ID, recipeID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return utils.SendNotFound(c, "Recipe not found")
			}
			slog.Error("Failed to get recipe",
				slog.Int64("recipe_id", recipeID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to delete recipe")
		}

		if err := webApp.Repos.Recipe.Delete(ctx, recipe); err != nil {
			slog.Error("Failed to delete recipe",
				slog.Int64("recipe_id", recipeID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to delete recipe")
		}

		slog.Info("Recipe deleted successfully",
			slog.Int64("recipe_id", recipeID),
			slog.Int64("user_id", user.ID))

		return utils.SendNoContent(c)
	}
}

func RecipesUploadImage(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		user, ok := utils.CurrentUser(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		recipeID, err := parseInt64(c.Params("id"))
		if err != nil {
			return utils.SendError(c, 400, "INVALID_RECIPE_ID", "Invalid recipe ID", map[string]string{
				"recipe_id": c.Params("id"),
			})
		}

		recipe, err := webApp.Repos.Recipe.GetByID(ctx, user.ID, recipeID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return utils.SendNotFound(c, "Recipe not found")
			}
			slog.Error("Failed to get recipe",
				slog.Int64("recipe_id", recipeID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to upload image")
		}

		file, err := c.FormFile("image")
		if err != nil {
			return utils.SendBadRequest(c, "Validation failed", map[string]string{
				"image": "No image file provided",
			})
		}

		if validationErrors := utils.ValidateImageFile(file); len(validationErrors) > 0 {
			return utils.HandleValidationErrors(c, validationErrors)
		}

		src, err := file.Open()
		if err != nil {
			slog.Error("Failed to open uploaded file", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to upload image")
		}
		defer src.Close()

		data, err := io.ReadAll(src)
		if err != nil {
			slog.Error("Failed to read uploaded file", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to upload image")
		}

		key := services.NewImageKey(file.Filename)
		stored, err := webApp.Storage.Save(ctx, key, data, utils.ContentTypeForImage(file.Filename))
		if err != nil {
			slog.Error("Failed to store image",
				slog.Int64("recipe_id", recipeID),
				slog.String("key", key),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to upload image")
		}

		previous := recipe.Image
		if err := webApp.Repos.Recipe.UpdateImage(ctx, recipe, stored); err != nil {
			slog.Error("Failed to record image",
				slog.Int64("recipe_id", recipeID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to upload image")
		}

		// Best-effort cleanup of the replaced image
		if previous != "" {
			if err := webApp.Storage.Delete(ctx, previous); err != nil {
				slog.Warn("Failed to delete previous image",
					slog.Int64("recipe_id", recipeID),
					slog.String("key", previous),
					slog.String("error", err.Error()))
			}
		}

		full, err := webApp.Repos.Recipe.GetByID(ctx, user.ID, recipeID)
		if err != nil {
			slog.Error("Failed to reload recipe",
				slog.Int64("recipe_id", recipeID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to upload image")
		}

		slog.Info("Recipe image uploaded successfully",
			slog.Int64("recipe_id", recipeID),
			slog.String("key", stored))

		return utils.SendSuccess(c, webmodels.NewRecipeDetailDTO(full, webApp.imageURL(full.Image)), "Image uploaded successfully")
	}
}
