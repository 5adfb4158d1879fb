package repositories

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/recipevault/recipevault/recipevault/config"
	"github.com/recipevault/recipevault/recipevault/database/models"
	"github.com/uptrace/bun"
)

type TokenRepository interface {
	GetOrCreate(ctx context.Context, userID int64) (*models.Token, error)
	GetByKey(ctx context.Context, key string) (*models.Token, error)
	DeleteByUserID(ctx context.Context, userID int64) error
}

type tokenRepository struct {
	db *bun.DB
}

func NewTokenRepository(db *bun.DB) TokenRepository {
	return &tokenRepository{db: db}
}

// generateKey returns a fresh 40 character hex token key.
func generateKey() (string, error) {
	buf := make([]byte, config.TokenKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GetOrCreate returns the user's existing token, or mints a new one.
// Each user holds at most one token at a time.
func (r *tokenRepository) GetOrCreate(ctx context.Context, userID int64) (*models.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	token := new(models.Token)
	err := r.db.NewSelect().
		Model(token).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	key, err := generateKey()
	if err != nil {
		return nil, err
	}

	token = &models.Token{
		Key:       key,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if _, err := r.db.NewInsert().Model(token).Exec(ctx); err != nil {
		return nil, err
	}
	return token, nil
}

// GetByKey loads a token and its owning user.
func (r *tokenRepository) GetByKey(ctx context.Context, key string) (*models.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	token := new(models.Token)
	err := r.db.NewSelect().
		Model(token).
		Relation("User").
		Where("t.key = ?", key).
		Scan(ctx)

	return token, err
}

func (r *tokenRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.NewDelete().
		Model((*models.Token)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}
