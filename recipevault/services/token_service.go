package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/recipevault/recipevault/recipevault/config"
	"github.com/recipevault/recipevault/recipevault/database/models"
	"github.com/recipevault/recipevault/recipevault/database/repositories"
)

var ErrInvalidToken = errors.New("invalid token")

// cachedUser is a cache entry pairing a resolved user with its load time
type cachedUser struct {
	user      *models.User
	timestamp time.Time
}

// TokenService resolves token keys to users with read-through caching,
// so the hot auth path skips the database for repeat callers.
type TokenService struct {
	tokens      repositories.TokenRepository
	users       repositories.UserRepository
	cache       *lru.Cache
	cacheExpiry time.Duration
}

func NewTokenService(tokens repositories.TokenRepository, users repositories.UserRepository, cacheSize int, cacheExpiry time.Duration) *TokenService {
	if cacheSize <= 0 {
		cacheSize = config.TokenCacheSize
	}
	if cacheExpiry <= 0 {
		cacheExpiry = config.TokenCacheExpiration
	}

	cache, _ := lru.New(cacheSize)
	return &TokenService{
		tokens:      tokens,
		users:       users,
		cache:       cache,
		cacheExpiry: cacheExpiry,
	}
}

// IssueToken returns the user's token, minting one on first request.
func (s *TokenService) IssueToken(ctx context.Context, user *models.User) (*models.Token, error) {
	return s.tokens.GetOrCreate(ctx, user.ID)
}

// Authenticate resolves a token key to its user. Unknown keys and
// deactivated accounts both come back as ErrInvalidToken.
func (s *TokenService) Authenticate(ctx context.Context, key string) (*models.User, error) {
	if key == "" {
		return nil, ErrInvalidToken
	}

	cacheKey := fmt.Sprintf("token:%s", key)
	if cached, ok := s.cache.Get(cacheKey); ok {
		if c, ok := cached.(cachedUser); ok {
			if time.Since(c.timestamp) < s.cacheExpiry {
				return c.user, nil
			}
			s.cache.Remove(cacheKey)
		}
	}

	token, err := s.tokens.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if token.User == nil || !token.User.IsActive {
		return nil, ErrInvalidToken
	}

	s.cache.Add(cacheKey, cachedUser{
		user:      token.User,
		timestamp: time.Now(),
	})

	return token.User, nil
}

// Invalidate drops the cached entry for a key, e.g. after the owning
// account was updated.
func (s *TokenService) Invalidate(key string) {
	s.cache.Remove(fmt.Sprintf("token:%s", key))
}
