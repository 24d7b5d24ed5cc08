package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/hushlane/central/internal/config"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "licensectl",
	Short: "Manage customer licenses for the central registry",
	Long: `licensectl creates, lists, and revokes customer license keys directly
against the registry database. It reads the same DB_* environment variables
as the central server.`,
	SilenceUsage: true,
}

// openDB connects with the server's database settings.
func openDB() (*sql.DB, error) {
	cfg := config.FromEnv()
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
