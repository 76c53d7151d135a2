package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yourusername/media-batch-go/internal/app"
	"github.com/yourusername/media-batch-go/internal/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or initialize the configuration",
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := app.LoadConfig(configPath)
		if err != nil {
			return err
		}

		fmt.Println("acquire:")
		fmt.Printf("  output_dir:  %s\n", config.Acquire.OutputDir)
		fmt.Printf("  report_path: %s\n", config.Acquire.ReportPath)
		fmt.Printf("  workers:     %d\n", config.Acquire.Workers)
		fmt.Printf("  sleep:       %s\n", config.Acquire.Sleep)
		fmt.Printf("  audio_only:  %v\n", config.Acquire.AudioOnly)
		fmt.Printf("  max_height:  %d\n", config.Acquire.MaxHeight)
		fmt.Println("engine:")
		fmt.Printf("  binary:               %s\n", config.Engine.Binary)
		fmt.Printf("  muxer_binary:         %s\n", config.Engine.MuxerBinary)
		fmt.Printf("  retries:              %d\n", config.Engine.Retries)
		fmt.Printf("  fragment_retries:     %d\n", config.Engine.FragmentRetries)
		fmt.Printf("  concurrent_fragments: %d\n", config.Engine.ConcurrentFragments)
		fmt.Println("history:")
		fmt.Printf("  enabled:       %v\n", config.History.Enabled)
		fmt.Printf("  database_path: %s\n", config.History.DatabasePath)
		fmt.Println("logging:")
		fmt.Printf("  level:       %s\n", config.Logging.Level)
		fmt.Printf("  format:      %s\n", config.Logging.Format)
		fmt.Printf("  engine_logs: %s\n", config.Logging.EngineLogs)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to resolve home directory: %w", err)
			}
			path = filepath.Join(home, ".media-batch", "config.yaml")
		}

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}

		if err := app.SaveConfig(domain.DefaultConfig(), path); err != nil {
			return err
		}
		fmt.Printf("Config written to %s\n", path)
		return nil
	},
}
