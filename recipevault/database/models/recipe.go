package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Recipe struct {
	bun.BaseModel `bun:"table:recipes,alias:r"`

	ID          int64           `bun:"id,pk,autoincrement"`
	UserID      int64           `bun:"user_id,notnull"`
	Title       string          `bun:"title,notnull"`
	Description string          `bun:"description"`
	TimeMinutes int             `bun:"time_minutes,notnull"`
	Price       decimal.Decimal `bun:"price,notnull,type:decimal(5,2)"`
	Link        string          `bun:"link"`
	Image       string          `bun:"image"`

	Tags        []*Tag        `bun:"m2m:recipe_tags,join:Recipe=Tag"`
	Ingredients []*Ingredient `bun:"m2m:recipe_ingredients,join:Recipe=Ingredient"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:tg"`

	ID     int64  `bun:"id,pk,autoincrement"`
	UserID int64  `bun:"user_id,notnull"`
	Name   string `bun:"name,notnull"`
}

type Ingredient struct {
	bun.BaseModel `bun:"table:ingredients,alias:ing"`

	ID     int64  `bun:"id,pk,autoincrement"`
	UserID int64  `bun:"user_id,notnull"`
	Name   string `bun:"name,notnull"`
}

// RecipeTag is the join table backing the Recipe.Tags m2m relation.
type RecipeTag struct {
	bun.BaseModel `bun:"table:recipe_tags,alias:rt"`

	RecipeID int64   `bun:"recipe_id,pk"`
	Recipe   *Recipe `bun:"rel:belongs-to,join:recipe_id=id"`
	TagID    int64   `bun:"tag_id,pk"`
	Tag      *Tag    `bun:"rel:belongs-to,join:tag_id=id"`
}

// RecipeIngredient is the join table backing the Recipe.Ingredients m2m relation.
type RecipeIngredient struct {
	bun.BaseModel `bun:"table:recipe_ingredients,alias:ri"`

	RecipeID     int64       `bun:"recipe_id,pk"`
	Recipe       *Recipe     `bun:"rel:belongs-to,join:recipe_id=id"`
	IngredientID int64       `bun:"ingredient_id,pk"`
	Ingredient   *Ingredient `bun:"rel:belongs-to,join:ingredient_id=id"`
}
