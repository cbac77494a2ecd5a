// Package common provides the shared setup used by every subcommand: flag
// lookup, configuration loading, and logger construction.
package common

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/gotenders/internal/config"
	"github.com/jonesrussell/gotenders/internal/logger"
)

// Deps holds the dependencies every subcommand starts from.
type Deps struct {
	Config *config.Config
	Logger logger.Interface
}

// Setup loads configuration and builds the logger from the root command's
// persistent flags.
func Setup(cmd *cobra.Command) (*Deps, error) {
	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("read config flag: %w", err)
	}
	debug, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return nil, fmt.Errorf("read debug flag: %w", err)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if debug {
		cfg.Logging.Level = logger.DebugLevel
		cfg.Logging.Development = true
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return &Deps{Config: cfg, Logger: log}, nil
}
