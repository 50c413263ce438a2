package cmd

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/BradenHooton/frontdesk/internal/config"
	"github.com/BradenHooton/frontdesk/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate <up|down|status>",
	Short:     "Apply or inspect database migrations",
	Long:      `Runs the embedded migrations against the database configured by the DB_* environment variables.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadDatabase()

		db, err := sql.Open("postgres", cfg.DSN())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.PingContext(cmd.Context()); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		return database.Migrate(cmd.Context(), db, args[0], newLogger())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
