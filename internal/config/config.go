// Package config loads templgrid configuration through Viper from a YAML
// file, TEMPLGRID_ environment variables and command-line flags.
//
// The configuration describes the preview server, the grid that it hosts,
// the record file feeding the grid and the logger.
package config

import (
	"time"

	"github.com/conneroisu/templgrid/internal/editor"
	gerrors "github.com/conneroisu/templgrid/internal/errors"
	"github.com/spf13/viper"
)

// DefaultConfigFile is looked up in the working directory when no config
// file is given.
const DefaultConfigFile = ".templgrid.yml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TEMPLGRID"

type Config struct {
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Grid   GridConfig   `yaml:"grid" mapstructure:"grid"`
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
	Host           string   `yaml:"host" mapstructure:"host" validate:"required"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

type GridConfig struct {
	RowsPerPage    int                          `yaml:"rows_per_page" mapstructure:"rows_per_page" validate:"gte=0"`
	PaginationArea string                       `yaml:"pagination_area" mapstructure:"pagination_area" validate:"omitempty,oneof=none above below"`
	Selection      bool                         `yaml:"selection" mapstructure:"selection"`
	Columns        []ColumnConfig               `yaml:"columns" mapstructure:"columns" validate:"dive"`
	Options        map[string]editor.Descriptor `yaml:"options" mapstructure:"options"`
}

type ColumnConfig struct {
	Name  string `yaml:"name" mapstructure:"name" validate:"required"`
	Value string `yaml:"value" mapstructure:"value"`
}

type DataConfig struct {
	File     string        `yaml:"file" mapstructure:"file"`
	Watch    bool          `yaml:"watch" mapstructure:"watch"`
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" mapstructure:"format" validate:"omitempty,oneof=text json"`
	// File, when set, receives a JSON copy of every record in addition to stderr.
	File string `yaml:"file,omitempty" mapstructure:"file"`
}

// Load builds the configuration from the global Viper instance, fills in
// defaults and validates the result.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom is Load for an explicit Viper instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, gerrors.WrapConfig(err, "UNMARSHAL_FAILED", "decoding configuration")
	}

	// viper does not always carry bools set through flags into Unmarshal
	if v.IsSet("grid.selection") {
		config.Grid.Selection = v.GetBool("grid.selection")
	}
	if v.IsSet("data.watch") {
		config.Data.Watch = v.GetBool("data.watch")
	}
	if v.IsSet("server.allowed_origins") && len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}

	applyDefaults(&config, v)

	if err := Validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	config := &Config{}
	applyDefaults(config, viper.New())
	return config
}

func applyDefaults(config *Config, v *viper.Viper) {
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Server.Port == 0 && !v.IsSet("server.port") {
		config.Server.Port = 8080
	}
	if !v.IsSet("grid.rows_per_page") && config.Grid.RowsPerPage == 0 {
		config.Grid.RowsPerPage = 50
	}
	if config.Grid.PaginationArea == "" {
		config.Grid.PaginationArea = "below"
	}
	if config.Data.Debounce == 0 {
		config.Data.Debounce = 100 * time.Millisecond
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
}
