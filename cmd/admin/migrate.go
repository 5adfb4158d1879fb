package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var migrateCMD = &cobra.Command{
	Use:   "migrate",
	Short: "create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {

		ctx := cmd.Context()

		db, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.InitializeSchema(ctx); err != nil {
			slog.Error("Schema migration failed", "error", err)
			return err
		}

		slog.Info("Schema migration completed successfully!")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCMD)
}
