package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jcfischer/supertag-cli-sub000/internal/lens"
	"github.com/jcfischer/supertag-cli-sub000/internal/store"
)

var (
	dbPath   string
	lensPath string
)

var rootCmd = &cobra.Command{
	Use:   "supertag",
	Short: "Assemble relevance-ranked context documents from a supertag knowledge graph",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to .supertag.db database")
	rootCmd.PersistentFlags().StringVar(&lensPath, "lenses", "", "Path to a lenses.yaml override file")
}

// DiscoverDB finds the database path using priority: env > flag > walk-up > XDG fallback
func DiscoverDB() (string, error) {
	// 1. Environment variable
	if envPath := os.Getenv("SUPERTAG_DB"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	// 2. CLI flag
	if dbPath != "" {
		if _, err := os.Stat(dbPath); err == nil {
			return dbPath, nil
		}
		return "", fmt.Errorf("database not found at --db path: %s", dbPath)
	}

	// 3. Walk up from CWD
	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, ".supertag.db")
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	// 4. XDG fallback
	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".local", "share", "supertag", "supertag.db")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", fmt.Errorf("no .supertag.db found (set SUPERTAG_DB, use --db, or run from a directory containing .supertag.db)")
}

// OpenStore discovers and opens the database
func OpenStore() (*store.Store, error) {
	path, err := DiscoverDB()
	if err != nil {
		return nil, err
	}
	return store.Open(path)
}

// LoadLenses builds the lens table: builtin presets, optionally merged
// with an override file from --lenses or SUPERTAG_LENSES.
func LoadLenses() (*lens.Table, error) {
	path := lensPath
	if path == "" {
		path = os.Getenv("SUPERTAG_LENSES")
	}
	if path == "" {
		return lens.Builtin(), nil
	}
	return lens.Load(path)
}
