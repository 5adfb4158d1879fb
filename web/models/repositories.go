package models

import (
	"github.com/recipevault/recipevault/recipevault/database/repositories"
)

// Repositories groups all repository interfaces for easy injection
type Repositories struct {
	User       repositories.UserRepository
	Token      repositories.TokenRepository
	Recipe     repositories.RecipeRepository
	Tag        repositories.TagRepository
	Ingredient repositories.IngredientRepository
}

// NewRepositories creates a new repositories group from individual repositories
func NewRepositories(
	user repositories.UserRepository,
	token repositories.TokenRepository,
	recipe repositories.RecipeRepository,
	tag repositories.TagRepository,
	ingredient repositories.IngredientRepository,
) *Repositories {
	return &Repositories{
		User:       user,
		Token:      token,
		Recipe:     recipe,
		Tag:        tag,
		Ingredient: ingredient,
	}
}
