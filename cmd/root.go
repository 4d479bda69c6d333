// Package cmd provides the templgrid command-line interface.
//
// Configuration System:
//
//	Settings are resolved from several sources with clear precedence:
//	1. Command-line flags (--config, --port, etc.) - highest priority
//	2. TEMPLGRID_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (TEMPLGRID_SERVER_PORT, etc.)
//	4. Configuration files (.templgrid.yml) - lowest priority
//
// Environment Variables:
//
//	TEMPLGRID_CONFIG_FILE: Path to custom configuration file
//	TEMPLGRID_SERVER_PORT: Override server port
//	TEMPLGRID_GRID_ROWS_PER_PAGE: Override the page size
//	And more following the TEMPLGRID_<SECTION>_<OPTION> pattern
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/conneroisu/templgrid/internal/config"
	"github.com/conneroisu/templgrid/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "templgrid",
	Short: "Paginated, cached data grids rendered with templ",
	Long: `templgrid renders record files as paginated HTML tables with per-column
cell editors, column visibility and row selection.

Quick Start:
  templgrid serve --file rows.yaml      Serve a live grid over HTTP
  templgrid render rows.yaml --page 2   Print one page of the grid as HTML
  templgrid config show                 Show the resolved configuration

Command Aliases:
  serve (s), render (r)`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is "+config.DefaultConfigFile+", can also use "+config.EnvPrefix+"_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	rootCmd.PersistentFlags().String("log-file", "", "also write JSON log records to this file")
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("log.file", rootCmd.PersistentFlags().Lookup("log-file"))
}

// initConfig wires the config file and environment into the global Viper
// instance. A missing config file is not an error.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(config.EnvPrefix + "_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(strings.TrimSuffix(config.DefaultConfigFile, ".yml"))
	}

	// TEMPLGRID_SERVER_PORT, TEMPLGRID_DATA_FILE, ...
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger from the log section. With a log
// file configured, records go to stderr and, as JSON, to the file; the
// returned close func releases it.
func newLogger(cfg *config.Config) (logging.Logger, func() error, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	console := logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	if cfg.Log.File == "" {
		return console, func() error { return nil }, nil
	}

	file, err := os.OpenFile(filepath.Clean(cfg.Log.File), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	sink := logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: "json",
		Output: file,
	})
	return logging.NewMultiLogger(console, sink), file.Close, nil
}
