package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/recipevault/recipevault/recipevault"
	"github.com/recipevault/recipevault/recipevault/database"
	"github.com/recipevault/recipevault/recipevault/logger"
)

var (
	configPath string
	cfg        *recipevault.Config
)

var rootCmd = &cobra.Command{
	Use:   "recipevault-admin",
	Short: "Administrative tasks for the RecipeVault API",
	Long: `recipevault-admin runs operational tasks against the RecipeVault database:
schema migration, superuser creation, readiness checks and data flushing.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := recipevault.LoadConfig(configPath)
		if err != nil {
			slog.Error("Failed to load configuration", slog.Any("error", err))
			return err
		}
		cfg = loaded
		return nil
	},
}

// connectDB opens the configured database for a subcommand run.
func connectDB(ctx context.Context) (*database.DB, error) {
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
		slog.Error("Failed to connect to database", "error", err)
		return nil, err
	}
	return db, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "path to config")
}

func main() {
	slog.SetDefault(slog.New(logger.NewHandler("RecipeVault Admin")))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
