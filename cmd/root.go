package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/certifica/internal/config"
	"github.com/abhisek/certifica/internal/server"
	"github.com/abhisek/certifica/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "certifica",
	Short: "Course certification service",
	Long: "Certifica: learners buy credit plans, take a timed exam per course and " +
		"spend a credit on a verifiable certificate when they pass.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "SQLite file or Postgres DSN (overrides CERTIFICA_DB)")
	rootCmd.PersistentFlags().String("driver", "", "Database driver: sqlite or postgres (overrides CERTIFICA_DB_DRIVER)")
	rootCmd.PersistentFlags().String("env-file", "", "Load environment variables from this file (default ./.env when present)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(examCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(courseCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the env file and environment, then applies the
// persistent flags, which take precedence.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadEnvFile(envFile); err != nil {
		return config.Config{}, err
	}
	cfg := config.ConfigFromEnv()
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DB = v
	}
	if v, _ := cmd.Flags().GetString("driver"); v != "" {
		cfg.DBDriver = v
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openStore loads configuration and opens the database. Logs go to stderr
// so command output stays clean on stdout.
func openStore(cmd *cobra.Command) (*store.Store, config.Config, *slog.Logger, error) {
	return openStoreLogging(cmd, os.Stderr)
}

func openStoreLogging(cmd *cobra.Command, logOut io.Writer) (*store.Store, config.Config, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	logger := cfg.NewLogger(logOut)
	st, err := server.OpenStore(commandContext(cmd), cfg)
	if err != nil {
		return nil, config.Config{}, nil, fmt.Errorf("open database: %w", err)
	}
	return st, cfg, logger, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
