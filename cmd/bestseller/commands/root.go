// Package commands implements the bestseller CLI.
package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/maltedev/bestseller-scraper/internal/config"
	"github.com/maltedev/bestseller-scraper/internal/logger"
)

var (
	cfg *config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bestseller",
	Short: "Bestseller book scraper for Aladin, Amazon, Kinokuniya and El Corte Inglés",
	Long: `bestseller scrapes the current bestseller lists and book detail pages of
four online bookstores and serves them over HTTP.

Providers:
  kr  Aladin (Korea)
  us  Amazon (United States)
  jp  Kinokuniya (Japan)
  es  El Corte Inglés (Spain)

Examples:
  # Run the HTTP server
  bestseller serve

  # Print the Korean bestseller list
  bestseller list kr

  # Print a detail record
  bestseller detail us --url "https://www.amazon.com/dp/0593798430"`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}

		configFile, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			loaded.Logging.Level = "debug"
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		cfg = loaded
		log = logger.New(cfg.Logging.Level, cfg.Logging.Format)
		slog.SetDefault(log)
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (yaml, json or toml)")
	flags.String("env-file", ".env.local", "dotenv file loaded before configuration")
	flags.Bool("debug", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
