package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/recipevault/recipevault/recipevault/config"
	"github.com/recipevault/recipevault/recipevault/database/models"
	"github.com/recipevault/recipevault/recipevault/database/repositories"
)

var (
	superuserEmail    string
	superuserName     string
	superuserPassword string
)

var createSuperuserCMD = &cobra.Command{
	Use:   "createsuperuser",
	Short: "create a staff user with full admin access",
	RunE: func(cmd *cobra.Command, args []string) error {

		ctx := cmd.Context()

		if superuserEmail == "" || superuserName == "" {
			return errors.New("both --email and --name are required")
		}
		if len(superuserPassword) < config.MinPasswordLength {
			return errors.New("password must be at least 5 characters")
		}

		db, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		users := repositories.NewUserRepository(db.BunDB())

		exists, err := users.EmailExists(ctx, superuserEmail)
		if err != nil {
			slog.Error("Failed to check for existing user", "error", err)
			return err
		}
		if exists {
			return errors.New("a user with that email already exists")
		}

		user := &models.User{
			Email:    superuserEmail,
			Name:     superuserName,
			IsActive: true,
			IsStaff:  true,
		}
		if err := user.SetPassword(superuserPassword); err != nil {
			slog.Error("Failed to hash password", "error", err)
			return err
		}

		if err := users.Create(ctx, user); err != nil {
			slog.Error("Failed to create superuser", "error", err)
			return err
		}

		slog.Info("Superuser created successfully!",
			slog.String("email", user.Email),
			slog.Int64("id", user.ID))

		return nil
	},
}

func init() {
	createSuperuserCMD.Flags().StringVar(&superuserEmail, "email", "", "email address for the new superuser")
	createSuperuserCMD.Flags().StringVar(&superuserName, "name", "", "display name for the new superuser")
	createSuperuserCMD.Flags().StringVar(&superuserPassword, "password", "", "password for the new superuser")
	rootCmd.AddCommand(createSuperuserCMD)
}
