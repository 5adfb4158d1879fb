package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

var waitDBTimeout time.Duration

// waitDBCMD blocks until the database accepts connections. Deploy scripts
// run it before migrate so the API never races a booting database.
var waitDBCMD = &cobra.Command{
	Use:   "waitdb",
	Short: "wait until the database is ready to accept connections",
	RunE: func(cmd *cobra.Command, args []string) error {

		ctx := cmd.Context()
		deadline := time.Now().Add(waitDBTimeout)

		slog.Info("Waiting for database...", slog.Duration("timeout", waitDBTimeout))

		var lastErr error
		for attempt := 1; ; attempt++ {
			db, err := connectDB(ctx)
			if err == nil {
				err = db.Ping(ctx)
				db.Close()
			}
			if err == nil {
				slog.Info("Database is ready!", slog.Int("attempts", attempt))
				return nil
			}
			lastErr = err

			if time.Now().After(deadline) {
				slog.Error("Database did not become ready", "error", lastErr)
				return fmt.Errorf("database not ready after %s: %w", waitDBTimeout, lastErr)
			}

			slog.Warn("Database unavailable, retrying in 1s...",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
		}
	},
}

func init() {
	waitDBCMD.Flags().DurationVar(&waitDBTimeout, "timeout", 60*time.Second, "how long to wait before giving up")
	rootCmd.AddCommand(waitDBCMD)
}
