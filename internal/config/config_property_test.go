//go:build property
// +build property

package config

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestConfigurationProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid server settings pass validation", prop.ForAll(
		func(port int, host string, rows int) bool {
			cfg := Default()
			cfg.Server.Port = port
			cfg.Server.Host = host
			cfg.Grid.RowsPerPage = rows
			return Validate(cfg) == nil
		},
		gen.IntRange(0, 65535),
		gen.RegexMatch(`^[a-zA-Z0-9][a-zA-Z0-9.-]*$`),
		gen.IntRange(0, 1000),
	))

	properties.Property("paths with traversal are always rejected", prop.ForAll(
		func(depth int, suffix string) bool {
			return validatePath(strings.Repeat("../", depth)+suffix) != nil
		},
		gen.IntRange(1, 5),
		gen.RegexMatch(`^[a-z]{1,8}\.json$`),
	))

	properties.Property("negative page sizes are rejected", prop.ForAll(
		func(rows int) bool {
			cfg := Default()
			cfg.Grid.RowsPerPage = rows
			return Validate(cfg) != nil
		},
		gen.IntRange(-1000, -1),
	))

	properties.TestingRun(t)
}
