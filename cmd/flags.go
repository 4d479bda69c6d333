package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/conneroisu/templgrid/internal/pagination"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// StandardFlags provides consistent flag definitions across commands
type StandardFlags struct {
	// Server flags
	Port int
	Host string

	// Grid flags
	RowsPerPage    int
	PaginationArea string
	Selection      bool

	// Data flags
	File  string
	Watch bool

	// Output flags
	OutputFormat string
}

// AddStandardFlags adds standard flags to a command
func AddStandardFlags(cmd *cobra.Command, flagTypes ...string) *StandardFlags {
	flags := &StandardFlags{}

	for _, flagType := range flagTypes {
		switch flagType {
		case "server":
			addServerFlags(cmd, flags)
		case "grid":
			addGridFlags(cmd, flags)
		case "data":
			addDataFlags(cmd, flags)
		case "output":
			addOutputFlags(cmd, flags)
		}
	}

	return flags
}

func addServerFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().IntVarP(&flags.Port, "port", "p", 8080, "Port to serve on")
	cmd.Flags().StringVar(&flags.Host, "host", "localhost", "Host to bind to")
	AddFlagValidation(cmd, "port", ValidatePort)
}

func addGridFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().IntVar(&flags.RowsPerPage, "rows-per-page", 50, "Rows shown on one page")
	cmd.Flags().StringVar(&flags.PaginationArea, "pagination-area", "below", "Where the page links go (none|above|below)")
	cmd.Flags().BoolVar(&flags.Selection, "selection", false, "Allow selecting rows")
	AddFlagValidation(cmd, "rows-per-page", ValidateRowsPerPage)
	AddFlagValidation(cmd, "pagination-area", ValidateArea)
}

func addDataFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.File, "file", "f", "", "Record file (.yaml, .yml or .json)")
	cmd.Flags().BoolVarP(&flags.Watch, "watch", "w", false, "Reload the record file when it changes")
	AddFlagValidation(cmd, "file", ValidateFileExists)
}

func addOutputFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.OutputFormat, "output", "o", "yaml", "Output format (yaml|json)")
}

// ValidateFlags validates flag combinations and values
func (f *StandardFlags) ValidateFlags() error {
	if f.Watch && f.File == "" {
		return fmt.Errorf("--watch needs a record file")
	}

	validFormats := []string{"yaml", "json"}
	if f.OutputFormat != "" {
		valid := false
		for _, format := range validFormats {
			if f.OutputFormat == format {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid output format %s, must be one of: %s",
				f.OutputFormat, strings.Join(validFormats, ", "))
		}
	}

	return nil
}

// SetViperBindings binds flags to viper configuration keys
func SetViperBindings(cmd *cobra.Command, bindings map[string]string) {
	for flagName, configKey := range bindings {
		if flag := cmd.Flags().Lookup(flagName); flag != nil {
			_ = viper.BindPFlag(configKey, flag)
		}
	}
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// ValidatePort checks a port flag value.
func ValidatePort(portStr string) error {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port number: %s", portStr)
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}

	return nil
}

// ValidateRowsPerPage rejects negative page sizes. Zero keeps the default.
func ValidateRowsPerPage(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid rows per page: %s", s)
	}
	if n < 0 {
		return fmt.Errorf("rows per page must not be negative, got %d", n)
	}
	return nil
}

// ValidateArea checks a pagination area flag value.
func ValidateArea(s string) error {
	_, err := pagination.ParseArea(s)
	return err
}

// ValidateFileExists checks that an optional file flag names a file.
func ValidateFileExists(filename string) error {
	if filename == "" {
		return nil
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filename)
	}

	return nil
}
