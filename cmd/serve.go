package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/conneroisu/templgrid/internal/config"
	"github.com/conneroisu/templgrid/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveFlags *StandardFlags

var serveCmd = &cobra.Command{
	Use:     "serve [records-file]",
	Aliases: []string{"s"},
	Short:   "Serve a live grid over HTTP",
	Long: `Serve a grid built from a record file. Browsers receive the rendered
table and page, select rows and hide columns through a WebSocket. With
--watch the record file is reloaded whenever it changes.

Examples:
  templgrid serve rows.yaml                  # Serve rows.yaml on :8080
  templgrid serve rows.json --watch          # Reload on every change
  templgrid serve --rows-per-page 25 --pagination-area above`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveFlags = AddStandardFlags(serveCmd, "server", "grid", "data")
	SetViperBindings(serveCmd, map[string]string{
		"port":            "server.port",
		"host":            "server.host",
		"rows-per-page":   "grid.rows_per_page",
		"pagination-area": "grid.pagination_area",
		"selection":       "grid.selection",
		"file":            "data.file",
		"watch":           "data.watch",
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		viper.Set("data.file", args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		logger.Info(ctx, "Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Error(ctx, shutdownErr, "Error during server shutdown")
		}
		cancel()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving grid at http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
