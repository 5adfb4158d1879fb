package models

import (
	"time"

	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64  `bun:"id,pk,autoincrement"`
	Email        string `bun:"email,notnull,unique"`
	Name         string `bun:"name,notnull"`
	PasswordHash string `bun:"password_hash,notnull"`
	IsActive     bool   `bun:"is_active,notnull,default:true"`
	IsStaff      bool   `bun:"is_staff,notnull,default:false"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// SetPassword hashes the raw password with bcrypt and stores the digest.
func (u *User) SetPassword(raw string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether the raw password matches the stored digest.
func (u *User) CheckPassword(raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(raw)) == nil
}

// Token is an opaque API key tied to exactly one user. The key itself is
// the primary key, mirroring how clients present it on every request.
type Token struct {
	bun.BaseModel `bun:"table:auth_tokens,alias:t"`

	Key    string `bun:"key,pk"`
	UserID int64  `bun:"user_id,notnull,unique"`
	User   *User  `bun:"rel:belongs-to,join:user_id=id"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
