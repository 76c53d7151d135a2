package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "media-batch",
		Short: "Batch media acquisition from URL lists",
		Long: `media-batch reads a list of (id, url) pairs from a workbook or CSV
file, downloads the media each URL names, and writes a per-item report.
Items whose artifact already exists on disk are skipped without any
network traffic, so re-running a batch only fetches what is missing.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("media-batch %s\n", version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
