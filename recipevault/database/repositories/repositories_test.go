package repositories

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/recipevault/recipevault/recipevault/database"
	"github.com/recipevault/recipevault/recipevault/database/models"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(db.Close)

	if err := db.InitializeSchema(context.Background()); err != nil {
		t.Fatalf("initialize schema: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *database.DB, email string) *models.User {
	t.Helper()

	users := NewUserRepository(db.BunDB())
	user := &models.User{Email: email, Name: "Repo User", IsActive: true}
	if err := user.SetPassword("testpass123"); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestTokenRepositoryGetOrCreate(t *testing.T) {
	db := newTestDB(t)
	tokens := NewTokenRepository(db.BunDB())
	user := createUser(t, db, "repo@example.com")
	ctx := context.Background()

	token, err := tokens.GetOrCreate(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	if !regexp.MustCompile(`^[0-9a-f]{40}$`).MatchString(token.Key) {
		t.Errorf("key = %q, want 40 hex characters", token.Key)
	}

	// A second call hands back the same row
	again, err := tokens.GetOrCreate(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetOrCreate() second call error = %v", err)
	}
	if again.Key != token.Key {
		t.Errorf("second key = %q, want the original %q", again.Key, token.Key)
	}

	// Different users get different keys
	other := createUser(t, db, "repo2@example.com")
	otherToken, err := tokens.GetOrCreate(ctx, other.ID)
	if err != nil {
		t.Fatalf("GetOrCreate() for second user error = %v", err)
	}
	if otherToken.Key == token.Key {
		t.Error("two users share a token key")
	}
}

func TestTokenRepositoryGetByKey(t *testing.T) {
	db := newTestDB(t)
	tokens := NewTokenRepository(db.BunDB())
	user := createUser(t, db, "bykey@example.com")
	ctx := context.Background()

	token, err := tokens.GetOrCreate(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	loaded, err := tokens.GetByKey(ctx, token.Key)
	if err != nil {
		t.Fatalf("GetByKey() error = %v", err)
	}
	if loaded.User == nil || loaded.User.Email != "bykey@example.com" {
		t.Errorf("loaded user = %+v, want the owning user joined in", loaded.User)
	}

	if _, err := tokens.GetByKey(ctx, "0000000000000000000000000000000000000000"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetByKey() unknown key error = %v, want sql.ErrNoRows", err)
	}
}

func TestRecipeRepositoryOrdering(t *testing.T) {
	db := newTestDB(t)
	recipes := NewRecipeRepository(db.BunDB())
	user := createUser(t, db, "order@example.com")
	ctx := context.Background()

	for _, title := range []string{"First", "Second", "Third"} {
		recipe := &models.Recipe{
			UserID:      user.ID,
			Title:       title,
			TimeMinutes: 5,
			Price:       decimal.New(100, -2),
		}
		if err := recipes.Create(ctx, recipe); err != nil {
			t.Fatalf("create recipe %q: %v", title, err)
		}
	}

	all, err := recipes.GetAllByUserID(ctx, user.ID, RecipeFilters{})
	if err != nil {
		t.Fatalf("GetAllByUserID() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].Title != "Third" || all[2].Title != "First" {
		t.Errorf("order = [%s, %s, %s], want newest first", all[0].Title, all[1].Title, all[2].Title)
	}
}

func TestRecipeRepositorySetTagsReplaces(t *testing.T) {
	db := newTestDB(t)
	recipes := NewRecipeRepository(db.BunDB())
	tags := NewTagRepository(db.BunDB())
	user := createUser(t, db, "settags@example.com")
	ctx := context.Background()

	recipe := &models.Recipe{UserID: user.ID, Title: "Tagged", TimeMinutes: 5, Price: decimal.New(100, -2)}
	if err := recipes.Create(ctx, recipe); err != nil {
		t.Fatalf("create recipe: %v", err)
	}

	vegan, err := tags.GetOrCreate(ctx, user.ID, "Vegan")
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	dinner, err := tags.GetOrCreate(ctx, user.ID, "Dinner")
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}

	if err := recipes.SetTags(ctx, recipe.ID, []*models.Tag{vegan, dinner}); err != nil {
		t.Fatalf("SetTags() error = %v", err)
	}

	loaded, err := recipes.GetByID(ctx, user.ID, recipe.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(loaded.Tags) != 2 {
		t.Fatalf("len(tags) = %d, want 2", len(loaded.Tags))
	}

	// Replacing with a single tag drops the other
	if err := recipes.SetTags(ctx, recipe.ID, []*models.Tag{vegan}); err != nil {
		t.Fatalf("SetTags() replace error = %v", err)
	}
	loaded, err = recipes.GetByID(ctx, user.ID, recipe.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(loaded.Tags) != 1 || loaded.Tags[0].Name != "Vegan" {
		t.Errorf("tags = %+v, want just Vegan", loaded.Tags)
	}

	// And an empty set clears the association entirely
	if err := recipes.SetTags(ctx, recipe.ID, nil); err != nil {
		t.Fatalf("SetTags() clear error = %v", err)
	}
	loaded, err = recipes.GetByID(ctx, user.ID, recipe.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(loaded.Tags) != 0 {
		t.Errorf("tags = %+v, want none", loaded.Tags)
	}
}

func TestTagRepositoryGetOrCreate(t *testing.T) {
	db := newTestDB(t)
	tags := NewTagRepository(db.BunDB())
	user := createUser(t, db, "tagdedupe@example.com")
	ctx := context.Background()

	first, err := tags.GetOrCreate(ctx, user.ID, "Comfort Food")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	second, err := tags.GetOrCreate(ctx, user.ID, "Comfort Food")
	if err != nil {
		t.Fatalf("GetOrCreate() second call error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("ids = %d and %d, want the same row reused", first.ID, second.ID)
	}

	// The same name under another user is a separate row
	other := createUser(t, db, "tagdedupe2@example.com")
	foreign, err := tags.GetOrCreate(ctx, other.ID, "Comfort Food")
	if err != nil {
		t.Fatalf("GetOrCreate() for second user error = %v", err)
	}
	if foreign.ID == first.ID {
		t.Error("tag row shared across users")
	}
}

func TestUserRepositoryEmailExists(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db.BunDB())
	createUser(t, db, "exists@example.com")
	ctx := context.Background()

	exists, err := users.EmailExists(ctx, "exists@example.com")
	if err != nil {
		t.Fatalf("EmailExists() error = %v", err)
	}
	if !exists {
		t.Error("EmailExists() = false for a stored email")
	}

	exists, err = users.EmailExists(ctx, "ghost@example.com")
	if err != nil {
		t.Fatalf("EmailExists() error = %v", err)
	}
	if exists {
		t.Error("EmailExists() = true for an unknown email")
	}
}

func TestRecipeRepositoryUpdateImage(t *testing.T) {
	db := newTestDB(t)
	recipes := NewRecipeRepository(db.BunDB())
	user := createUser(t, db, "image@example.com")
	ctx := context.Background()

	recipe := &models.Recipe{UserID: user.ID, Title: "Pictured", TimeMinutes: 5, Price: decimal.New(100, -2)}
	if err := recipes.Create(ctx, recipe); err != nil {
		t.Fatalf("create recipe: %v", err)
	}

	if err := recipes.UpdateImage(ctx, recipe, "uploads/recipe/abc.png"); err != nil {
		t.Fatalf("UpdateImage() error = %v", err)
	}
	if recipe.Image != "uploads/recipe/abc.png" {
		t.Errorf("in-memory image = %q, want mutated", recipe.Image)
	}

	loaded, err := recipes.GetByID(ctx, user.ID, recipe.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if loaded.Image != "uploads/recipe/abc.png" {
		t.Errorf("stored image = %q, want persisted key", loaded.Image)
	}
}
