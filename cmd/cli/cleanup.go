package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/media-batch-go/internal/app"
	"github.com/yourusername/media-batch-go/internal/infrastructure"
	"github.com/yourusername/media-batch-go/pkg/logger"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup [dir]",
	Short: "Remove leftover partial-download files",
	Long: `Deletes temporary artifacts left behind by interrupted transfers
(*.part, *.ytdl, *.temp and fragment files) under the given directory,
or under the configured output directory when none is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := app.LoadConfig(configPath)
		if err != nil {
			return err
		}

		dir := config.Acquire.OutputDir
		if len(args) > 0 {
			dir = args[0]
		}

		log := logger.NewDefault()
		defer log.Sync()

		result, err := infrastructure.CleanupPartials(dir, log)
		if err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}

		fmt.Printf("Removed %d partial file(s) from %s\n", result.Removed, dir)
		fmt.Printf("%d complete file(s) remain\n", result.Remaining)
		return nil
	},
}
