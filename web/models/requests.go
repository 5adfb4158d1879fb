package models

import "github.com/shopspring/decimal"

// UserCreateRequest is the payload for registering a new account. The
// same shape serves full profile replacement on PUT /api/user/me.
type UserCreateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// TokenRequest is the payload for exchanging credentials for an API token.
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUpdateRequest carries a partial profile update. Nil fields are
// left unchanged.
type UserUpdateRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Name     *string `json:"name"`
}

// AttributeRef names a tag or ingredient inside a recipe payload.
type AttributeRef struct {
	Name string `json:"name"`
}

// RecipeCreateRequest is the payload for creating a recipe, and for full
// replacement via PUT. Omitted tags and ingredients clear those sets.
type RecipeCreateRequest struct {
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Link        string          `json:"link"`
	Tags        []AttributeRef  `json:"tags"`
	Ingredients []AttributeRef  `json:"ingredients"`
}

// RecipeUpdateRequest carries a partial recipe update. Nil fields are
// left unchanged; a present tags or ingredients list replaces the whole
// set.
type RecipeUpdateRequest struct {
	Title       *string          `json:"title"`
	TimeMinutes *int             `json:"time_minutes"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	Link        *string          `json:"link"`
	Tags        *[]AttributeRef  `json:"tags"`
	Ingredients *[]AttributeRef  `json:"ingredients"`
}

// AttributeUpdateRequest renames a tag or an ingredient.
type AttributeUpdateRequest struct {
	Name string `json:"name"`
}
