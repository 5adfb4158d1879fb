package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/recipevault/recipevault/recipevault"
	"github.com/recipevault/recipevault/recipevault/config"
	"github.com/recipevault/recipevault/recipevault/database"
	"github.com/recipevault/recipevault/recipevault/database/repositories"
	"github.com/recipevault/recipevault/recipevault/logger"
	"github.com/recipevault/recipevault/recipevault/services"
	"github.com/recipevault/recipevault/web/handlers"
	"github.com/recipevault/recipevault/web/middleware"
	webmodels "github.com/recipevault/recipevault/web/models"
	"github.com/recipevault/recipevault/web/utils"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	// Initialize custom logger
	customHandler := logger.NewHandler("RecipeVault")
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting RecipeVault API",
		slog.String("version", version),
		slog.String("commit", commit))

	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := recipevault.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.SetDefault(slog.New(customHandler.WithLevel(cfg.Log.Level)))
	slog.Info("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, database.DBConfig{
		Host:         cfg.DB.Host,
		Port:         cfg.DB.Port,
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Database:     cfg.DB.Database,
		PoolSize:     cfg.DB.PoolSize,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxLifetime:  cfg.DB.MaxLifetime,
	})
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	// Add automatic schema initialization
	slog.Info("Initializing database schema...")
	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()))
		os.Exit(-1)
	}
	slog.Info("Database schema initialized successfully")

	// Initialize repositories
	repos := webmodels.NewRepositories(
		repositories.NewUserRepository(db.BunDB()),
		repositories.NewTokenRepository(db.BunDB()),
		repositories.NewRecipeRepository(db.BunDB()),
		repositories.NewTagRepository(db.BunDB()),
		repositories.NewIngredientRepository(db.BunDB()),
	)

	// Initialize services
	var storage services.ImageStorage
	if cfg.Storage.Driver == "spaces" {
		storage = services.NewSpacesService(
			cfg.Spaces.Key,
			cfg.Spaces.Secret,
			cfg.Spaces.Region,
			cfg.Spaces.Bucket,
			cfg.Spaces.MediaRoot,
		)
		slog.Info("Using Spaces image storage", slog.String("bucket", cfg.Spaces.Bucket))
	} else {
		storage = services.NewLocalImageStorage(cfg.Storage.LocalDir, cfg.Storage.BaseURL)
		slog.Info("Using local image storage", slog.String("dir", cfg.Storage.LocalDir))
	}

	tokenService := services.NewTokenService(
		repos.Token,
		repos.User,
		cfg.Auth.TokenCacheSize,
		time.Duration(cfg.Auth.TokenCacheTTL)*time.Second,
	)
	searchService := services.NewSearchService()

	// Initialize Fiber as API-only backend
	app := fiber.New(fiber.Config{
		AppName:      "RecipeVault API",
		ServerHeader: "RecipeVault",
		ErrorHandler: middleware.CustomErrorHandler,
		BodyLimit:    config.MaxUploadBodySize,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	allowOrigins := cfg.Server.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000,http://localhost:8080"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Requested-With",
		AllowCredentials: true,
	}))
	app.Use(middleware.LoggingMiddleware())

	// Create web app instance
	webApp := &handlers.WebApp{
		DB:            db,
		Repos:         repos,
		TokenService:  tokenService,
		SearchService: searchService,
		Storage:       storage,
		Version:       version,
		Commit:        commit,
	}

	// Serve uploaded images directly when they live on local disk
	if cfg.Storage.Driver != "spaces" && cfg.Storage.LocalDir != "" {
		app.Static("/media", cfg.Storage.LocalDir)
	}

	// Setup routes
	setupRoutes(app, webApp)

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	slog.Info("Starting server", slog.String("address", address))

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := app.Listen(address); err != nil {
			slog.Error("Failed to start server", slog.String("error", err.Error()))
		}
	}()

	<-c
	slog.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", slog.String("error", err.Error()))
	}

	// Close database connection
	db.Close()

	slog.Info("Server shutdown complete")
}

// setupRoutes configures all application routes
func setupRoutes(app *fiber.App, webApp *handlers.WebApp) {
	// Health check endpoint
	app.Get("/health", handlers.HealthCheck(webApp))

	// All API routes share the per-IP request limit
	api := app.Group("/api", middleware.APIRateLimit())

	// User API
	user := api.Group("/user")
	user.Post("/create", handlers.UserCreate(webApp))
	user.Post("/token", middleware.AuthRateLimit(), handlers.TokenCreate(webApp))

	me := user.Group("/me")
	me.Use(middleware.TokenRequired(webApp))
	me.Get("/", handlers.MeRetrieve(webApp))
	me.Put("/", handlers.MeUpdate(webApp))
	me.Patch("/", handlers.MePartialUpdate(webApp))

	// Recipe API
	recipe := api.Group("/recipe")
	recipe.Use(middleware.TokenRequired(webApp))

	recipes := recipe.Group("/recipes")
	recipes.Get("/", handlers.RecipesList(webApp))
	recipes.Post("/", handlers.RecipesCreate(webApp))
	recipes.Get("/:id", handlers.RecipesDetail(webApp))
	recipes.Put("/:id", handlers.RecipesUpdate(webApp))
	recipes.Patch("/:id", handlers.RecipesPartialUpdate(webApp))
	recipes.Delete("/:id", handlers.RecipesDelete(webApp))
	recipes.Post("/:id/upload-image", middleware.UploadRateLimit(), handlers.RecipesUploadImage(webApp))

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

	// Protected admin routes
	admin := api.Group("/admin")
	admin.Use(middleware.TokenRequired(webApp))
	admin.Use(middleware.AdminRequired(webApp))
	admin.Get("/users", middleware.AuditLogMiddleware("users_list"), handlers.AdminUsersList(webApp))
	admin.Get("/users/:id", middleware.AuditLogMiddleware("users_detail"), handlers.AdminUsersDetail(webApp))
	admin.Get("/stats", middleware.AuditLogMiddleware("stats"), handlers.AdminStats(webApp))

	// Global error handler for unhandled routes
	app.Use(func(c *fiber.Ctx) error {
		slog.Warn("No route matched for request",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
		)
		return utils.SendNotFound(c, "The requested endpoint does not exist")
	})
}
