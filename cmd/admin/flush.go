package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var flushNoInput bool

var flushCMD = &cobra.Command{
	Use:   "flush",
	Short: "delete all application data from the database",
	RunE: func(cmd *cobra.Command, args []string) error {

		ctx := cmd.Context()

		if !flushNoInput {
			fmt.Printf("This will delete ALL data in %q. Type 'yes' to continue: ", cfg.DB.Database)
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.TrimSpace(answer) != "yes" {
				slog.Info("Flush cancelled")
				return nil
			}
		}

		db, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.ResetAppTables(ctx); err != nil {
			slog.Error("Flush failed", "error", err)
			return err
		}

		slog.Info("All application data deleted successfully!")

		return nil
	},
}

func init() {
	flushCMD.Flags().BoolVar(&flushNoInput, "no-input", false, "skip the confirmation prompt")
	rootCmd.AddCommand(flushCMD)
}
