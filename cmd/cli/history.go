package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/media-batch-go/internal/app"
	"github.com/yourusername/media-batch-go/internal/domain"
	"github.com/yourusername/media-batch-go/internal/infrastructure"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past batch runs",
}

func init() {
	historyCmd.AddCommand(historyRunsCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyStatsCmd)

	historyRunsCmd.Flags().IntP("limit", "n", 10, "Number of runs to show")
}

func openHistory() (domain.HistoryRepository, error) {
	config, err := app.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if !config.History.Enabled {
		return nil, fmt.Errorf("history is disabled in the configuration")
	}
	return infrastructure.NewSQLiteHistoryRepository(config.History.DatabasePath)
}

var historyRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openHistory()
		if err != nil {
			return err
		}
		defer repo.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := repo.RecentRuns(limit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tSTARTED\tTOTAL\tOK\tSKIPPED\tERROR")
		for _, run := range runs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n",
				truncate(run.RunID, 8),
				run.StartedAt.Format("2006-01-02 15:04:05"),
				run.Total, run.OK, run.Skipped, run.Errors)
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show every item of one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openHistory()
		if err != nil {
			return err
		}
		defer repo.Close()

		records, err := repo.FindByRun(args[0])
		if err != nil {
			return fmt.Errorf("failed to load run: %w", err)
		}
		if len(records) == 0 {
			return fmt.Errorf("run not found: %s", args[0])
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tMESSAGE\tPATH")
		for _, record := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				record.LogicalID,
				record.Status,
				truncate(record.Message, 50),
				record.ResolvedPath)
		}
		return w.Flush()
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate counts over all runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openHistory()
		if err != nil {
			return err
		}
		defer repo.Close()

		stats, err := repo.Stats()
		if err != nil {
			return fmt.Errorf("failed to load stats: %w", err)
		}

		fmt.Printf("Total items: %d\n", stats.Total)
		fmt.Printf("  OK:      %d\n", stats.OK)
		fmt.Printf("  SKIPPED: %d\n", stats.Skipped)
		fmt.Printf("  ERROR:   %d\n", stats.Errors)
		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
