package models

import (
	"time"

	"github.com/shopspring/decimal"

	dbmodels "github.com/recipevault/recipevault/recipevault/database/models"
)

// UserDTO is the public view of a user account.
type UserDTO struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AdminUserDTO extends the user view with account flags for staff listings.
type AdminUserDTO struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	IsStaff   bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenDTO carries a freshly issued API token.
type TokenDTO struct {
	Token string `json:"token"`
}

// TagDTO is the public view of a tag.
type TagDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// IngredientDTO is the public view of an ingredient.
type IngredientDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RecipeDTO is the list view of a recipe. Detail-only fields live on
// RecipeDetailDTO.
type RecipeDTO struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"`
	Price       decimal.Decimal `json:"price"`
	Link        string          `json:"link"`
	Tags        []TagDTO        `json:"tags"`
	Ingredients []IngredientDTO `json:"ingredients"`
}

// RecipeDetailDTO adds the long-form fields to the recipe view.
type RecipeDetailDTO struct {
	RecipeDTO
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

func NewUserDTO(user *dbmodels.User) *UserDTO {
	return &UserDTO{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}
}

func NewAdminUserDTO(user *dbmodels.User) *AdminUserDTO {
	return &AdminUserDTO{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		IsActive:  user.IsActive,
		IsStaff:   user.IsStaff,
		CreatedAt: user.CreatedAt,
	}
}

func NewAdminUserDTOs(users []*dbmodels.User) []*AdminUserDTO {
	dtos := make([]*AdminUserDTO, 0, len(users))
	for _, user := range users {
		dtos = append(dtos, NewAdminUserDTO(user))
	}
	return dtos
}

func NewTagDTO(tag *dbmodels.Tag) TagDTO {
	return TagDTO{
		ID:   tag.ID,
		Name: tag.Name,
	}
}

func NewTagDTOs(tags []*dbmodels.Tag) []TagDTO {
	dtos := make([]TagDTO, 0, len(tags))
	for _, tag := range tags {
		dtos = append(dtos, NewTagDTO(tag))
	}
	return dtos
}

func NewIngredientDTO(ingredient *dbmodels.Ingredient) IngredientDTO {
	return IngredientDTO{
		ID:   ingredient.ID,
		Name: ingredient.Name,
	}
}

func NewIngredientDTOs(ingredients []*dbmodels.Ingredient) []IngredientDTO {
	dtos := make([]IngredientDTO, 0, len(ingredients))
	for _, ingredient := range ingredients {
		dtos = append(dtos, NewIngredientDTO(ingredient))
	}
	return dtos
}

func NewRecipeDTO(recipe *dbmodels.Recipe) *RecipeDTO {
	return &RecipeDTO{
		ID:          recipe.ID,
		Title:       recipe.Title,
		TimeMinutes: recipe.TimeMinutes,
		Price:       recipe.Price,
		Link:        recipe.Link,
		Tags:        NewTagDTOs(recipe.Tags),
		Ingredients: NewIngredientDTOs(recipe.Ingredients),
	}
}

func NewRecipeDTOs(recipes []*dbmodels.Recipe) []*RecipeDTO {
	dtos := make([]*RecipeDTO, 0, len(recipes))
	for _, recipe := range recipes {
		dtos = append(dtos, NewRecipeDTO(recipe))
	}
	return dtos
}

// NewRecipeDetailDTO builds the detail view. imageURL is the resolved
// public URL for the stored image key, empty when no image is set.
func NewRecipeDetailDTO(recipe *dbmodels.Recipe, imageURL string) *RecipeDetailDTO {
	dto := &RecipeDetailDTO{
		RecipeDTO:   *NewRecipeDTO(recipe),
		Description: recipe.Description,
	}
	if imageURL != "" {
		dto.Image = &imageURL
	}
	return dto
}
