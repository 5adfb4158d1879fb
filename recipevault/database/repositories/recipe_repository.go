package repositories

import (
	"context"
	"time"

	"github.com/recipevault/recipevault/recipevault/config"
	"github.com/recipevault/recipevault/recipevault/database/models"
	"github.com/uptrace/bun"
)

// RecipeFilters narrows recipe listings by related attribute ids.
type RecipeFilters struct {
	TagIDs        []int64
	IngredientIDs []int64
}

type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	GetByID(ctx context.Context, userID, id int64) (*models.Recipe, error)
	GetAllByUserID(ctx context.Context, userID int64, filters RecipeFilters) ([]*models.Recipe, error)
	Update(ctx context.Context, recipe *models.Recipe) error
	Delete(ctx context.Context, recipe *models.Recipe) error
	SetTags(ctx context.Context, recipeID int64, tags []*models.Tag) error
	SetIngredients(ctx context.Context, recipeID int64, ingredients []*models.Ingredient) error
	UpdateImage(ctx context.Context, recipe *models.Recipe, image string) error
	GetRecipeCount(ctx context.Context) (int64, error)
}

type recipeRepository struct {
	db *bun.DB
}

func NewRecipeRepository(db *bun.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	recipe.CreatedAt = time.Now()
	recipe.UpdatedAt = time.Now()

	_, err := r.db.NewInsert().
		Model(recipe).
		Exec(ctx)

	return err
}

// GetByID returns the recipe only when it belongs to the given user.
// Callers translate sql.ErrNoRows into a not-found response, so a
// foreign recipe id is indistinguishable from a missing one.
func (r *recipeRepository) GetByID(ctx context.Context, userID, id int64) (*models.Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	recipe := new(models.Recipe)
	err := r.db.NewSelect().
		Model(recipe).
		Relation("Tags").
		Relation("Ingredients").
		Where("r.id = ?", id).
		Where("r.user_id = ?", userID).
		Scan(ctx)

	return recipe, err
}

func (r *recipeRepository) GetAllByUserID(ctx context.Context, userID int64, filters RecipeFilters) ([]*models.Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	var recipes []*models.Recipe
	q := r.db.NewSelect().
		Model(&recipes).
		Relation("Tags").
		Relation("Ingredients").
		Where("r.user_id = ?", userID).
		OrderExpr("r.id DESC")

	if len(filters.TagIDs) > 0 {
		q = q.Join("JOIN recipe_tags AS frt ON frt.recipe_id = r.id").
			Where("frt.tag_id IN (?)", bun.In(filters.TagIDs)).
			Distinct()
	}
	if len(filters.IngredientIDs) > 0 {
		q = q.Join("JOIN recipe_ingredients AS fri ON fri.recipe_id = r.id").
			Where("fri.ingredient_id IN (?)", bun.In(filters.IngredientIDs)).
			Distinct()
	}

	err := q.Scan(ctx)
	return recipes, err
}

func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	recipe.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(recipe).
		WherePK().
		Exec(ctx)
	return err
}

// Delete removes the recipe together with its join rows.
func (r *recipeRepository) Delete(ctx context.Context, recipe *models.Recipe) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.RecipeTag)(nil)).
			Where("recipe_id = ?", recipe.ID).
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*models.RecipeIngredient)(nil)).
			Where("recipe_id = ?", recipe.ID).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model(recipe).
			WherePK().
			Exec(ctx)
		return err
	})
}

// SetTags replaces the recipe's tag set.
func (r *recipeRepository) SetTags(ctx context.Context, recipeID int64, tags []*models.Tag) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.RecipeTag)(nil)).
			Where("recipe_id = ?", recipeID).
			Exec(ctx); err != nil {
			return err
		}

		if len(tags) == 0 {
			return nil
		}

		rows := make([]models.RecipeTag, 0, len(tags))
		for _, tag := range tags {
			rows = append(rows, models.RecipeTag{RecipeID: recipeID, TagID: tag.ID})
		}
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
}

// SetIngredients replaces the recipe's ingredient set.
func (r *recipeRepository) SetIngredients(ctx context.Context, recipeID int64, ingredients []*models.Ingredient) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.RecipeIngredient)(nil)).
			Where("recipe_id = ?", recipeID).
			Exec(ctx); err != nil {
			return err
		}

		if len(ingredients) == 0 {
			return nil
		}

		rows := make([]models.RecipeIngredient, 0, len(ingredients))
		for _, ing := range ingredients {
			rows = append(rows, models.RecipeIngredient{RecipeID: recipeID, IngredientID: ing.ID})
		}
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
}

func (r *recipeRepository) UpdateImage(ctx context.Context, recipe *models.Recipe, image string) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	recipe.Image = image
	recipe.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(recipe).
		Column("image", "updated_at").
		WherePK().
		Exec(ctx)
	return err
}

func (r *recipeRepository) GetRecipeCount(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, config.StatsQueryTimeout)
	defer cancel()

	count, err := r.db.NewSelect().
		Model((*models.Recipe)(nil)).
		Count(ctx)
	return int64(count), err
}
