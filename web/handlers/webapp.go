package handlers

import (
	"context"
	"strconv"

	"github.com/recipevault/recipevault/recipevault/database"
	dbmodels "github.com/recipevault/recipevault/recipevault/database/models"
	"github.com/recipevault/recipevault/recipevault/services"
	webmodels "github.com/recipevault/recipevault/web/models"
)

// WebApp represents the web application with all dependencies
type WebApp struct {
	DB            *database.DB
	Repos         *webmodels.Repositories
	TokenService  *services.TokenService
	SearchService *services.SearchService
	Storage       services.ImageStorage
	Version       string
	Commit        string
}

// parseInt64 is a utility function to parse int64 from string
func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// imageURL resolves a stored image key to its public URL
func (webApp *WebApp) imageURL(key string) string {
	if key == "" {
		return ""
	}
	return webApp.Storage.URL(key)
}

// setRecipeTags get-or-creates the named tags for the recipe's owner and
// replaces the recipe's tag set with them.
func setRecipeTags(ctx context.Context, webApp *WebApp, recipe *dbmodels.Recipe, refs []webmodels.AttributeRef) error {
	tags := make([]*dbmodels.Tag, 0, len(refs))
	for _, ref := range refs {
		tag, err := webApp.Repos.Tag.GetOrCreate(ctx, recipe.UserID, ref.Name)
		if err != nil {
			return err
		}
		tags = append(tags, tag)
	}
	return webApp.Repos.Recipe.SetTags(ctx, recipe.ID, tags)
}

// setRecipeIngredients is the ingredient counterpart of setRecipeTags.
func setRecipeIngredients(ctx context.Context, webApp *WebApp, recipe *dbmodels.Recipe, refs []webmodels.AttributeRef) error {
	ingredients := make([]*dbmodels.Ingredient, 0, len(refs))
	for _, ref := range refs {
		ingredient, err := webApp.Repos.Ingredient.GetOrCreate(ctx, recipe.UserID, ref.Name)
		if err != nil {
			return err
		}
		ingredients = append(ingredients, ingredient)
	}
	return webApp.Repos.Recipe.SetIngredients(ctx, recipe.ID, ingredients)
}
