package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/conneroisu/templgrid/internal/editor"
	gerrors "github.com/conneroisu/templgrid/internal/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks struct constraints and the cross-field rules of config.
func Validate(config *Config) error {
	if config == nil {
		return gerrors.NewConfigError("NIL_CONFIG", "configuration is nil")
	}
	if err := validate.Struct(config); err != nil {
		return gerrors.WrapConfig(err, "INVALID_CONFIG", "invalid configuration")
	}

	checks := []func(*Config) error{
		validateServerConfig,
		validateGridConfig,
		validateDataConfig,
		validateLogConfig,
	}
	for _, check := range checks {
		if err := check(config); err != nil {
			return gerrors.WrapConfig(err, "INVALID_CONFIG", "invalid configuration")
		}
	}
	return nil
}

func validateServerConfig(config *Config) error {
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
	for _, char := range dangerousChars {
		if strings.Contains(config.Server.Host, char) {
			return fmt.Errorf("server config: host contains dangerous character: %s", char)
		}
	}
	for _, origin := range config.Server.AllowedOrigins {
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("server config: origin %q must include an http or https scheme", origin)
		}
	}
	return nil
}

func validateGridConfig(config *Config) error {
	seen := make(map[string]bool, len(config.Grid.Columns))
	for _, col := range config.Grid.Columns {
		if seen[col.Name] {
			return fmt.Errorf("grid config: duplicate column %q", col.Name)
		}
		seen[col.Name] = true
	}

	for name, desc := range config.Grid.Options {
		if len(seen) > 0 && !seen[name] {
			return fmt.Errorf("grid config: option for unknown column %q", name)
		}
		if _, err := editor.ParseKind(string(desc.Module)); err != nil {
			return fmt.Errorf("grid config: column %q: %w", name, err)
		}
	}
	return nil
}

func validateDataConfig(config *Config) error {
	if config.Data.File == "" {
		if config.Data.Watch {
			return fmt.Errorf("data config: watch requires a file")
		}
		return nil
	}
	if err := validatePath(config.Data.File); err != nil {
		return fmt.Errorf("data config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(config.Data.File)) {
	case ".json", ".yaml", ".yml":
		return nil
	default:
		return fmt.Errorf("data config: unsupported record file %q", config.Data.File)
	}
}

func validateLogConfig(config *Config) error {
	if config.Log.File == "" {
		return nil
	}
	if err := validatePath(config.Log.File); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	return nil
}

// validatePath rejects traversal and shell metacharacters.
func validatePath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}
	return nil
}
