package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/media-batch-go/internal/app"
	"github.com/yourusername/media-batch-go/internal/infrastructure"
	"github.com/yourusername/media-batch-go/pkg/logger"
)

var formatsCmd = &cobra.Command{
	Use:   "formats [url]",
	Short: "List the available formats for a URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := app.LoadConfig(configPath)
		if err != nil {
			return err
		}

		log := logger.NewDefault()
		defer log.Sync()

		engine := infrastructure.NewYTDLPEngine(&config.Engine, config.Logging.EngineLogs, log)
		if err := engine.ListFormats(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to list formats: %w", err)
		}
		return nil
	},
}
