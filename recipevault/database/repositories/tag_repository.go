package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/recipevault/recipevault/recipevault/config"
	"github.com/recipevault/recipevault/recipevault/database/models"
	"github.com/uptrace/bun"
)

type TagRepository interface {
	GetAllByUserID(ctx context.Context, userID int64, assignedOnly bool) ([]*models.Tag, error)
	GetByID(ctx context.Context, userID, id int64) (*models.Tag, error)
	GetOrCreate(ctx context.Context, userID int64, name string) (*models.Tag, error)
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, tag *models.Tag) error
	GetTagCount(ctx context.Context) (int64, error)
}

type tagRepository struct {
	db *bun.DB
}

func NewTagRepository(db *bun.DB) TagRepository {
	return &tagRepository{db: db}
}

// GetAllByUserID lists the user's tags in reverse name order. With
// assignedOnly, tags not attached to any recipe are filtered out.
func (r *tagRepository) GetAllByUserID(ctx context.Context, userID int64, assignedOnly bool) ([]*models.Tag, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	var tags []*models.Tag
	q := r.db.NewSelect().
		Model(&tags).
		Where("tg.user_id = ?", userID).
		OrderExpr("tg.name DESC")

	if assignedOnly {
		q = q.Join("JOIN recipe_tags AS art ON art.tag_id = tg.id").
			Distinct()
	}

	err := q.Scan(ctx)
	return tags, err
}

func (r *tagRepository) GetByID(ctx context.Context, userID, id int64) (*models.Tag, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	tag := new(models.Tag)
	err := r.db.NewSelect().
		Model(tag).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Scan(ctx)

	return tag, err
}

// GetOrCreate finds the user's tag by name or creates it.
func (r *tagRepository) GetOrCreate(ctx context.Context, userID int64, name string) (*models.Tag, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	tag := new(models.Tag)
	err := r.db.NewSelect().
		Model(tag).
		Where("user_id = ?", userID).
		Where("name = ?", name).
		Limit(1).
		Scan(ctx)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	tag = &models.Tag{UserID: userID, Name: name}
	if _, err := r.db.NewInsert().Model(tag).Exec(ctx); err != nil {
		return nil, err
	}
	return tag, nil
}

func (r *tagRepository) Update(ctx context.Context, tag *models.Tag) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.NewUpdate().
		Model(tag).
		WherePK().
		Exec(ctx)
	return err
}

// Delete removes the tag and detaches it from any recipes.
func (r *tagRepository) Delete(ctx context.Context, tag *models.Tag) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.RecipeTag)(nil)).
			Where("tag_id = ?", tag.ID).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model(tag).
			WherePK().
			Exec(ctx)
		return err
	})
}

func (r *tagRepository) GetTagCount(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, config.StatsQueryTimeout)
	defer cancel()

	count, err := r.db.NewSelect().
		Model((*models.Tag)(nil)).
		Count(ctx)
	return int64(count), err
}
