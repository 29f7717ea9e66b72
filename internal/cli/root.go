// Package cli implements the reminisce CLI commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/careloom/reminisce/internal/config"
	"github.com/careloom/reminisce/internal/store"
)

var dbPath string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "reminisce",
	Short: "Reminiscence therapy outlines from patient memories",
	Long:  "Generate structured reminiscence-therapy session outlines from recorded patient memories. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $REMINISCE_DB, then db_path from config, then ~/.reminisce/reminisce.db)")
}

// getDBPath resolves the database path. Precedence: --db flag, $REMINISCE_DB,
// db_path from the config file, then ~/.reminisce/reminisce.db.
func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("REMINISCE_DB"); env != "" {
		return env
	}
	if cfg, err := config.Load(); err == nil && cfg.DBPath != "" {
		return cfg.DBPath
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".reminisce", "reminisce.db")
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
