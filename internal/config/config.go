// Package config provides configuration management for the scraper. It
// handles loading from a YAML file with environment variable overrides, and
// validates the settings the pipeline requires before a run starts.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/jonesrussell/gotenders/internal/logger"
)

// DateLayout is the date layout used for the configured range.
const DateLayout = "2006-01-02"

// Config represents the application configuration.
type Config struct {
	// Scrape holds the listing URL and date range.
	Scrape ScrapeConfig `mapstructure:"scrape"`
	// Browser holds browser session settings.
	Browser BrowserConfig `mapstructure:"browser"`
	// Timing holds wait durations per interaction kind.
	Timing TimingConfig `mapstructure:"timing"`
	// Retry holds retry bounds and the page ceiling.
	Retry RetryConfig `mapstructure:"retry"`
	// Selectors holds the listing's CSS selectors.
	Selectors SelectorsConfig `mapstructure:"selectors"`
	// Output holds the output file path templates.
	Output OutputConfig `mapstructure:"output"`
	// Logging holds logger settings.
	Logging logger.Config `mapstructure:"logging"`
	// Server holds the httpd settings.
	Server ServerConfig `mapstructure:"server"`
	// Schedule holds the recurring-run settings.
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

// ScrapeConfig holds the listing URL and inclusive date range.
type ScrapeConfig struct {
	URL      string `mapstructure:"url"`
	DateFrom string `mapstructure:"date_from"`
	DateTo   string `mapstructure:"date_to"`
}

// DateRange parses the configured inclusive date range.
func (c *ScrapeConfig) DateRange() (from, to time.Time, err error) {
	from, err = time.Parse(DateLayout, c.DateFrom)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date_from: %w", err)
	}
	to, err = time.Parse(DateLayout, c.DateTo)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date_to: %w", err)
	}
	return from, to, nil
}

// Validate validates the scrape configuration.
func (c *ScrapeConfig) Validate() error {
	if c.URL == "" {
		return errors.New("url is required")
	}
	from, to, err := c.DateRange()
	if err != nil {
		return err
	}
	if from.After(to) {
		return errors.New("date_from cannot be later than date_to")
	}
	return nil
}

// BrowserConfig holds browser session settings.
type BrowserConfig struct {
	Headless          bool   `mapstructure:"headless"`
	Maximized         bool   `mapstructure:"maximized"`
	DisableExtensions bool   `mapstructure:"disable_extensions"`
	DisableInfobars   bool   `mapstructure:"disable_infobars"`
	UserAgent         string `mapstructure:"user_agent"`
}

// TimingConfig holds wait durations per interaction kind.
type TimingConfig struct {
	PageLoadWait     time.Duration `mapstructure:"page_load_wait"`
	ModalRemovalWait time.Duration `mapstructure:"modal_removal_wait"`
	ExpandRowWait    time.Duration `mapstructure:"expand_row_wait"`
	CollapseRowWait  time.Duration `mapstructure:"collapse_row_wait"`
	NextPageWait     time.Duration `mapstructure:"next_page_wait"`
	RetryDelay       time.Duration `mapstructure:"retry_delay"`
	OpTimeout        time.Duration `mapstructure:"op_timeout"`
}

// Validate validates the timing configuration. All waits are required; the
// pipeline carries no internal timing defaults.
func (c *TimingConfig) Validate() error {
	waits := map[string]time.Duration{
		"page_load_wait":     c.PageLoadWait,
		"modal_removal_wait": c.ModalRemovalWait,
		"expand_row_wait":    c.ExpandRowWait,
		"collapse_row_wait":  c.CollapseRowWait,
		"next_page_wait":     c.NextPageWait,
		"retry_delay":        c.RetryDelay,
		"op_timeout":         c.OpTimeout,
	}
	for name, wait := range waits {
		if wait <= 0 {
			return fmt.Errorf("%s must be a positive duration", name)
		}
	}
	return nil
}

// RetryConfig holds retry bounds and the traversal ceiling.
type RetryConfig struct {
	// MaxRetries is the per-action attempt bound.
	MaxRetries int `mapstructure:"max_retries"`
	// StaleElementRetries is the per-row attempt bound.
	StaleElementRetries int `mapstructure:"stale_element_retries"`
	// MaxPages caps total pages traversed, as a safety net against a next
	// control that never disables.
	MaxPages int `mapstructure:"max_pages"`
	// RecoverableKinds overrides the retried failure kinds when non-empty.
	RecoverableKinds []string `mapstructure:"recoverable_kinds"`
}

// Validate validates the retry configuration.
func (c *RetryConfig) Validate() error {
	if c.MaxRetries < 1 {
		return errors.New("max_retries must be at least 1")
	}
	if c.StaleElementRetries < 1 {
		return errors.New("stale_element_retries must be at least 1")
	}
	if c.MaxPages < 1 {
		return errors.New("max_pages must be at least 1")
	}
	return nil
}

// SelectorsConfig holds the listing's CSS selectors.
type SelectorsConfig struct {
	// Table is the listing table.
	Table string `mapstructure:"table"`
	// Rows matches the tender summary rows, excluding expanded child rows.
	Rows string `mapstructure:"rows"`
	// ExpandCell matches the per-row expand/collapse control cell.
	ExpandCell string `mapstructure:"expand_cell"`
	// Detail matches expanded detail content.
	Detail string `mapstructure:"detail"`
	// NextButton matches the pagination next control.
	NextButton string `mapstructure:"next_button"`
}

// Default selectors for the portal's listing markup.
const (
	DefaultTableSelector      = "table.dataTable"
	DefaultRowsSelector       = "table.dataTable > tbody > tr:not(.child)"
	DefaultExpandCellSelector = "table.dataTable > tbody > tr:not(.child) > td:first-child"
	DefaultDetailSelector     = "table.dataTable tr.child"
	DefaultNextButtonSelector = "#tendeList_next"
)

// OutputConfig holds the output file path templates.
type OutputConfig struct {
	// DateSpecificFile is the snapshot path template; "{date}" is replaced
	// with the run's date_to value.
	DateSpecificFile string `mapstructure:"date_specific_file"`
	// CumulativeFile is the cumulative store path.
	CumulativeFile string `mapstructure:"cumulative_file"`
}

// Validate validates the output configuration.
func (c *OutputConfig) Validate() error {
	if c.DateSpecificFile == "" {
		return errors.New("date_specific_file is required")
	}
	if c.CumulativeFile == "" {
		return errors.New("cumulative_file is required")
	}
	return nil
}

// SnapshotPath resolves the date-specific file path for the given date_to.
// The date is flattened ("2025-07-31" becomes "2025_07_31") so the name is
// filesystem safe.
func (c *OutputConfig) SnapshotPath(dateTo string) string {
	date := strings.ReplaceAll(dateTo, "-", "_")
	return strings.ReplaceAll(c.DateSpecificFile, "{date}", date)
}

// ServerConfig holds the httpd settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// ScheduleConfig holds the recurring-run settings.
type ScheduleConfig struct {
	// Spec is a cron expression; empty disables scheduling.
	Spec string `mapstructure:"spec"`
}

// Validate validates the configuration sections the pipeline depends on.
func (c *Config) Validate() error {
	if err := c.Scrape.Validate(); err != nil {
		return fmt.Errorf("scrape: %w", err)
	}
	if err := c.Timing.Validate(); err != nil {
		return fmt.Errorf("timing: %w", err)
	}
	if err := c.Retry.Validate(); err != nil {
		return fmt.Errorf("retry: %w", err)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	return nil
}

// Load loads configuration from the given file (or the default search
// paths when path is empty), applying environment variable overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("TENDERS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// No config file found on the search paths: environment variables
		// and defaults still apply.
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:           cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("build decoder: %w", err)
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults sets defaults for ambient settings only. The scrape range,
// waits, retry bounds, and output templates are required inputs and carry
// no defaults.
func setDefaults(v *viper.Viper) {
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.maximized", true)
	v.SetDefault("browser.disable_extensions", true)
	v.SetDefault("browser.disable_infobars", true)

	v.SetDefault("selectors.table", DefaultTableSelector)
	v.SetDefault("selectors.rows", DefaultRowsSelector)
	v.SetDefault("selectors.expand_cell", DefaultExpandCellSelector)
	v.SetDefault("selectors.detail", DefaultDetailSelector)
	v.SetDefault("selectors.next_button", DefaultNextButtonSelector)

	v.SetDefault("logging.level", string(logger.DefaultLevel))
	v.SetDefault("logging.encoding", logger.DefaultEncoding)

	v.SetDefault("server.address", ":8080")
}
