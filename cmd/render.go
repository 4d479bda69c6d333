package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/conneroisu/templgrid/internal/config"
	"github.com/conneroisu/templgrid/internal/model"
	"github.com/conneroisu/templgrid/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	renderPage     int
	renderDocument bool
	renderFlags    *StandardFlags
)

var renderCmd = &cobra.Command{
	Use:     "render <records-file>",
	Aliases: []string{"r"},
	Short:   "Print one page of a grid as HTML",
	Long: `Build a grid from a record file, load it and write the requested page
to stdout. Column layout and cell editors come from the grid section of the
configuration.

Examples:
  templgrid render rows.yaml                    # First page as an HTML fragment
  templgrid render rows.yaml --page 3           # Third page
  templgrid render rows.json --document > out.html`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderFlags = AddStandardFlags(renderCmd, "grid")
	renderCmd.Flags().IntVar(&renderPage, "page", 1, "Page to render")
	renderCmd.Flags().BoolVar(&renderDocument, "document", false, "Wrap the grid in a full HTML page")
	SetViperBindings(renderCmd, map[string]string{
		"rows-per-page":   "grid.rows_per_page",
		"pagination-area": "grid.pagination_area",
		"selection":       "grid.selection",
	})
}

func runRender(cmd *cobra.Command, args []string) error {
	viper.Set("data.file", args[0])
	viper.Set("data.watch", false)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := model.LoadFile(cfg.Data.File)
	if err != nil {
		return err
	}

	g, err := server.NewGrid(cfg, store, logger)
	if err != nil {
		return err
	}
	defer g.Destroy()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, 10*time.Second)
	defer cancel()

	f, err := g.Load(ctx, cfg.Grid.Options)
	if err != nil {
		return err
	}
	if _, err := f.Wait(ctx); err != nil {
		return err
	}

	if renderPage < 1 || renderPage > g.NumberOfPages() {
		return fmt.Errorf("page %d out of range (1-%d)", renderPage, g.NumberOfPages())
	}
	if err := g.SetPage(renderPage); err != nil {
		return err
	}

	component := g.Component()
	if renderDocument {
		component = server.Page("templgrid", component)
	}
	return component.Render(ctx, cmd.OutOrStdout())
}
