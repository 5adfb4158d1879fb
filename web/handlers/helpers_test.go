package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/recipevault/recipevault/recipevault/config"
	"github.com/recipevault/recipevault/recipevault/database"
	dbmodels "github.com/recipevault/recipevault/recipevault/database/models"
	"github.com/recipevault/recipevault/recipevault/database/repositories"
	"github.com/recipevault/recipevault/recipevault/services"
	"github.com/recipevault/recipevault/web/handlers"
	"github.com/recipevault/recipevault/web/middleware"
	webmodels "github.com/recipevault/recipevault/web/models"
)

// apiEnvelope mirrors the response wrapper for decoding in assertions.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

// newTestApp builds a request-ready app over an in-memory database.
// Routes mirror the production map; rate limiting is covered separately
// so handler tests stay independent of limiter state.
func newTestApp(t *testing.T) (*fiber.App, *handlers.WebApp) {
	t.Helper()

	db, err := database.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(db.Close)

	if err := db.InitializeSchema(context.Background()); err != nil {
		t.Fatalf("initialize schema: %v", err)
	}

	repos := webmodels.NewRepositories(
		repositories.NewUserRepository(db.BunDB()),
		repositories.NewTokenRepository(db.BunDB()),
		repositories.NewRecipeRepository(db.BunDB()),
		repositories.NewTagRepository(db.BunDB()),
		repositories.NewIngredientRepository(db.BunDB()),
	)

	webApp := &handlers.WebApp{
		DB:            db,
		Repos:         repos,
		TokenService:  services.NewTokenService(repos.Token, repos.User, 0, 0),
		SearchService: services.NewSearchService(),
		Storage:       services.NewLocalImageStorage(t.TempDir(), "http://localhost:8000/media"),
		Version:       "test",
		Commit:        "test",
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.CustomErrorHandler,
		BodyLimit:    config.MaxUploadBodySize,
	})

	app.Get("/health", handlers.HealthCheck(webApp))

	user := app.Group("/api/user")
	user.Post("/create", handlers.UserCreate(webApp))
	user.Post("/token", handlers.TokenCreate(webApp))

	me := user.Group("/me")
	me.Use(middleware.TokenRequired(webApp))
	me.Get("/", handlers.MeRetrieve(webApp))
	me.Put("/", handlers.MeUpdate(webApp))
	me.Patch("/", handlers.MePartialUpdate(webApp))

	recipe := app.Group("/api/recipe")
	recipe.Use(middleware.TokenRequired(webApp))

	recipes := recipe.Group("/recipes")
	recipes.Get("/", handlers.RecipesList(webApp))
	recipes.Post("/", handlers.RecipesCreate(webApp))
	recipes.Get("/:id", handlers.RecipesDetail(webApp))
	recipes.Put("/:id", handlers.RecipesUpdate(webApp))
	recipes.Patch("/:id", handlers.RecipesPartialUpdate(webApp))
	recipes.Delete("/:id", handlers.RecipesDelete(webApp))
	recipes.Post("/:id/upload-image", handlers.RecipesUploadImage(webApp))

	tags := recipe.Group("/tags")
	tags.Get("/", handlers.TagsList(webApp))
	tags.Put("/:id", handlers.TagsUpdate(webApp))
	tags.Patch("/:id", handlers.TagsUpdate(webApp))
	tags.Delete("/:id", handlers.TagsDelete(webApp))

	ingredients := recipe.Group("/ingredients")
	ingredients.Get("/", handlers.IngredientsList(webApp))
	ingredients.Put("/:id", handlers.IngredientsUpdate(webApp))
	ingredients.Patch("/:id", handlers.IngredientsUpdate(webApp))
	ingredients.Delete("/:id", handlers.IngredientsDelete(webApp))

	admin := app.Group("/api/admin")
	admin.Use(middleware.TokenRequired(webApp))
	admin.Use(middleware.AdminRequired(webApp))
	admin.Get("/users", handlers.AdminUsersList(webApp))
	admin.Get("/users/:id", handlers.AdminUsersDetail(webApp))
	admin.Get("/stats", handlers.AdminStats(webApp))

	return app, webApp
}

// doJSON performs a JSON request against the test app. An empty token
// leaves the Authorization header unset.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) apiEnvelope {
	t.Helper()
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response envelope: %v", err)
	}
	return env
}

func decodeData(t *testing.T, env apiEnvelope, out any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode response data: %v", err)
	}
}

func seedUser(t *testing.T, webApp *handlers.WebApp, email, password, name string) *dbmodels.User {
	t.Helper()

	user := &dbmodels.User{Email: email, Name: name, IsActive: true}
	if err := user.SetPassword(password); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := webApp.Repos.User.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

func seedStaffUser(t *testing.T, webApp *handlers.WebApp, email, password, name string) *dbmodels.User {
	t.Helper()

	user := &dbmodels.User{Email: email, Name: name, IsActive: true, IsStaff: true}
	if err := user.SetPassword(password); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := webApp.Repos.User.Create(context.Background(), user); err != nil {
		t.Fatalf("seed staff user %s: %v", email, err)
	}
	return user
}

func seedToken(t *testing.T, webApp *handlers.WebApp, user *dbmodels.User) string {
	t.Helper()

	token, err := webApp.TokenService.IssueToken(context.Background(), user)
	if err != nil {
		t.Fatalf("issue token for user %d: %v", user.ID, err)
	}
	return token.Key
}

func seedRecipe(t *testing.T, webApp *handlers.WebApp, user *dbmodels.User, title string) *dbmodels.Recipe {
	t.Helper()

	recipe := &dbmodels.Recipe{
		UserID:      user.ID,
		Title:       title,
		Description: "Sample description",
		TimeMinutes: 10,
		Price:       decimal.New(550, -2),
	}
	if err := webApp.Repos.Recipe.Create(context.Background(), recipe); err != nil {
		t.Fatalf("seed recipe %q: %v", title, err)
	}
	return recipe
}

func seedTag(t *testing.T, webApp *handlers.WebApp, user *dbmodels.User, name string) *dbmodels.Tag {
	t.Helper()

	tag, err := webApp.Repos.Tag.GetOrCreate(context.Background(), user.ID, name)
	if err != nil {
		t.Fatalf("seed tag %q: %v", name, err)
	}
	return tag
}

func seedIngredient(t *testing.T, webApp *handlers.WebApp, user *dbmodels.User, name string) *dbmodels.Ingredient {
	t.Helper()

	ingredient, err := webApp.Repos.Ingredient.GetOrCreate(context.Background(), user.ID, name)
	if err != nil {
		t.Fatalf("seed ingredient %q: %v", name, err)
	}
	return ingredient
}

func mustSetTags(t *testing.T, webApp *handlers.WebApp, recipeID int64, tags ...*dbmodels.Tag) {
	t.Helper()
	if err := webApp.Repos.Recipe.SetTags(context.Background(), recipeID, tags); err != nil {
		t.Fatalf("set tags on recipe %d: %v", recipeID, err)
	}
}

func mustSetIngredients(t *testing.T, webApp *handlers.WebApp, recipeID int64, ingredients ...*dbmodels.Ingredient) {
	t.Helper()
	if err := webApp.Repos.Recipe.SetIngredients(context.Background(), recipeID, ingredients); err != nil {
		t.Fatalf("set ingredients on recipe %d: %v", recipeID, err)
	}
}

// doUpload performs a multipart image upload for a recipe.
func doUpload(t *testing.T, app *fiber.App, recipeID int64, token, field, filename string, content []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	path := fmt.Sprintf("/api/recipe/recipes/%d/upload-image", recipeID)
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("upload image: %v", err)
	}
	return resp
}
