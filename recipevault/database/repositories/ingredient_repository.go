package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/recipevault/recipevault/recipevault/config"
	"github.com/recipevault/recipevault/recipevault/database/models"
	"github.com/uptrace/bun"
)

type IngredientRepository interface {
	GetAllByUserID(ctx context.Context, userID int64, assignedOnly bool) ([]*models.Ingredient, error)
	GetByID(ctx context.Context, userID, id int64) (*models.Ingredient, error)
	GetOrCreate(ctx context.Context, userID int64, name string) (*models.Ingredient, error)
	Update(ctx context.Context, ingredient *models.Ingredient) error
	Delete(ctx context.Context, ingredient *models.Ingredient) error
	GetIngredientCount(ctx context.Context) (int64, error)
}

type ingredientRepository struct {
	db *bun.DB
}

func NewIngredientRepository(db *bun.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

func (r *ingredientRepository) GetAllByUserID(ctx context.Context, userID int64, assignedOnly bool) ([]*models.Ingredient, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	var ingredients []*models.Ingredient
	q := r.db.NewSelect().
		Model(&ingredients).
		Where("ing.user_id = ?", userID).
		OrderExpr("ing.name DESC")

	if assignedOnly {
		q = q.Join("JOIN recipe_ingredients AS ari ON ari.ingredient_id = ing.id").
			Distinct()
	}

	err := q.Scan(ctx)
	return ingredients, err
}

func (r *ingredientRepository) GetByID(ctx context.Context, userID, id int64) (*models.Ingredient, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	ingredient := new(models.Ingredient)
	err := r.db.NewSelect().
		Model(ingredient).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Scan(ctx)

	return ingredient, err
}

func (r *ingredientRepository) GetOrCreate(ctx context.Context, userID int64, name string) (*models.Ingredient, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	ingredient := new(models.Ingredient)
	err := r.db.NewSelect().
		Model(ingredient).
		Where("user_id = ?", userID).
		Where("name = ?", name).
		Limit(1).
		Scan(ctx)
	if err == nil {
		return ingredient, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	ingredient = &models.Ingredient{UserID: userID, Name: name}
	if _, err := r.db.NewInsert().Model(ingredient).Exec(ctx); err != nil {
		return nil, err
	}
	return ingredient, nil
}

func (r *ingredientRepository) Update(ctx context.Context, ingredient *models.Ingredient) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.NewUpdate().
		Model(ingredient).
		WherePK().
		Exec(ctx)
	return err
}

// Delete removes the ingredient and detaches it from any recipes.
func (r *ingredientRepository) Delete(ctx context.Context, ingredient *models.Ingredient) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.RecipeIngredient)(nil)).
			Where("ingredient_id = ?", ingredient.ID).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model(ingredient).
			WherePK().
			Exec(ctx)
		return err
	})
}

func (r *ingredientRepository) GetIngredientCount(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, config.StatsQueryTimeout)
	defer cancel()

	count, err := r.db.NewSelect().
		Model((*models.Ingredient)(nil)).
		Count(ctx)
	return int64(count), err
}
