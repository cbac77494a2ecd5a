// Package cmd implements the command-line interface for the tender scraper.
// It provides the root command and subcommands for running scrapes and
// inspecting their output.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/gotenders/cmd/httpd"
	"github.com/jonesrussell/gotenders/cmd/records"
	"github.com/jonesrussell/gotenders/cmd/schedule"
	"github.com/jonesrussell/gotenders/cmd/scrape"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug logging for all commands.
	debug bool

	// rootCmd represents the root command for the gotenders CLI.
	rootCmd = &cobra.Command{
		Use:   "gotenders",
		Short: "A scraper for the South African government tender listing",
		Long: `Gotenders extracts tender records from the national procurement
listing and maintains cumulative and date-specific spreadsheet outputs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are visible to configuration
	// loading in every subcommand.
	_ = godotenv.Load()

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml or ./config/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "gotenders version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(scrape.Command())
	rootCmd.AddCommand(records.Command())
	rootCmd.AddCommand(schedule.Command())
	rootCmd.AddCommand(httpd.Command())
}
