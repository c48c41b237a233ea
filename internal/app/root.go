package app

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/basketmine/internal/config"
	"github.com/blackwell-systems/basketmine/internal/store"
)

var (
	dbPath     string
	configPath string
	verbose    bool

	// cfg is the effective configuration, loaded before any subcommand runs.
	cfg *config.Config

	// RootCmd is the root command for basketmine
	RootCmd = &cobra.Command{
		Use:   "basketmine",
		Short: "Frequent itemset and association rule mining for market-basket data",
		Long: `basketmine mines frequent itemsets and association rules from transaction
datasets and compares three mining strategies on the same data:

  • brute     exhaustive enumeration of every candidate itemset
  • apriori   level-wise candidate generation with subset pruning
  • fpgrowth  pattern growth over a compressed prefix tree

All strategies count support exactly, so on the same data and thresholds
they produce identical itemsets and rules. Every run is recorded in a local
history database so results can be compared, listed and exported later.

Quick Start:
  1. basketmine datasets list
  2. basketmine mine grocery --support 20 --confidence 60
  3. basketmine compare grocery
  4. basketmine runs list

Examples:
  # Mine a CSV file with every strategy and export spreadsheets
  basketmine mine ./cafetransactions.csv --export

  # Pick dataset, thresholds and algorithm from prompts
  basketmine mine --interactive

  # Re-mine whenever a dataset file changes
  basketmine watch ./grocerytransactions.csv

  # Serve the mining API
  basketmine serve --addr :8080`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("basketmine: frequent itemset and association rule mining")
			fmt.Println()
			fmt.Println("Run 'basketmine datasets list' to see the registered datasets.")
			fmt.Println("Run 'basketmine mine <dataset>' to mine one.")
			fmt.Println("Run 'basketmine --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: ~/.basketmine/basketmine.db)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/basketmine/config.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// loadConfig reads the layered configuration and sets up logging.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		c.DBPath = dbPath
	}
	cfg = c

	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	lvl, err := cfg.Level()
	if err != nil {
		return err
	}
	if verbose {
		lvl = log.DebugLevel
	}
	log.SetLevel(lvl)
	return nil
}

// appConfig returns the loaded configuration, or the defaults when a
// command runs without the root pre-run (tests).
func appConfig() *config.Config {
	if cfg == nil {
		cfg = config.Default()
	}
	return cfg
}

// getDBPath returns the database path, using the flag value, the config
// or the default
func getDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	return appConfig().ResolveDBPath()
}

// openStore opens the run history, creating the schema if needed.
func openStore() (*store.Store, error) {
	path, err := getDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get database path: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return st, nil
}

// stateFile returns a file under ~/.basketmine, creating the directory.
func stateFile(name string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(home, ".basketmine")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create basketmine directory: %w", err)
	}
	return filepath.Join(dir, name), nil
}
