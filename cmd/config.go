package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/conneroisu/templgrid/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage templgrid configuration",
	Long: `Manage templgrid configuration files and settings.

Examples:
  templgrid config init                      # Write a starter .templgrid.yml
  templgrid config validate                  # Validate .templgrid.yml
  templgrid config validate --file grid.yml  # Validate a specific file
  templgrid config show --output json        # Show the resolved configuration`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a templgrid configuration file: value ranges, the pagination
area, duplicate columns, cell editor modules and the record file path.`,
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the configuration after loading the config file, applying
environment overrides and filling in defaults.`,
	RunE: runConfigShow,
}

var (
	configOutput string
	configFile   string
	configForce  bool
	showFlags    *StandardFlags
)

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().
		StringVarP(&configOutput, "output", "o", config.DefaultConfigFile, "Output configuration file")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")

	configValidateCmd.Flags().
		StringVarP(&configFile, "file", "f", "", "Configuration file to validate (default: "+config.DefaultConfigFile+")")

	showFlags = AddStandardFlags(configShowCmd, "output")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configOutput); err == nil && !configForce {
		return fmt.Errorf("configuration file %s already exists (use --force to overwrite)", configOutput)
	}

	cfg := config.Default()
	cfg.Grid.Selection = true
	cfg.Grid.Columns = []config.ColumnConfig{
		{Name: "id", Value: "ID"},
		{Name: "name"},
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to: %s\n", configOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	targetFile := configFile
	if targetFile == "" {
		if _, err := os.Stat(config.DefaultConfigFile); err != nil {
			return fmt.Errorf("no configuration file found. Use --file to specify a config file " +
				"or run 'templgrid config init' to create one")
		}
		targetFile = config.DefaultConfigFile
	}

	if _, err := os.Stat(targetFile); os.IsNotExist(err) {
		return fmt.Errorf("configuration file %s does not exist", targetFile)
	}

	v := viper.New()
	v.SetConfigFile(targetFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	if _, err := config.LoadFrom(v); err != nil {
		return fmt.Errorf("configuration file %s is invalid: %w", targetFile, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration file %s is valid\n", targetFile)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if err := showFlags.ValidateFlags(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	switch showFlags.OutputFormat {
	case "json":
		return showConfigJSON(cmd.OutOrStdout(), cfg)
	default:
		return showConfigYAML(cmd.OutOrStdout(), cfg)
	}
}

func showConfigYAML(w io.Writer, cfg *config.Config) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return err
	}
	return encoder.Close()
}

func showConfigJSON(w io.Writer, cfg *config.Config) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}
