package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/media-batch-go/api"
	"github.com/yourusername/media-batch-go/internal/app"
	"github.com/yourusername/media-batch-go/internal/domain"
	"github.com/yourusername/media-batch-go/internal/infrastructure"
	"github.com/yourusername/media-batch-go/pkg/logger"
)

var runCmd = &cobra.Command{
	Use:   "run [input-file]",
	Short: "Run a batch acquisition from an input file",
	Long: `Reads (id, url) pairs from the input workbook or CSV, downloads each
URL's media into the output directory, and writes a per-item report.
Items whose final artifact already exists are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	runCmd.Flags().String("sheet", "", "Workbook sheet name (default: first sheet)")
	runCmd.Flags().StringP("output-dir", "o", "", "Output directory (overrides config)")
	runCmd.Flags().String("report", "", "Report file path, .xlsx or .csv (overrides config)")
	runCmd.Flags().IntP("workers", "w", 0, "Concurrent worker budget (overrides config)")
	runCmd.Flags().Duration("sleep", 0, "Pause between items per worker (overrides config)")
	runCmd.Flags().Bool("audio-only", false, "Extract audio instead of video")
	runCmd.Flags().Int("max-height", 0, "Cap video height, e.g. 1080")
	runCmd.Flags().String("status-addr", "", "Serve the live status API on this address, e.g. :8080")
	runCmd.Flags().String("cookie-file", "", "Netscape cookie file passed to the engine")
	runCmd.Flags().String("browser", "", "Browser to extract cookies from, e.g. chrome")
	runCmd.Flags().String("profile", "", "Browser profile for cookie extraction")
}

func runBatch(cmd *cobra.Command, args []string) error {
	config, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	// Input failures are the only thing that fails the whole run.
	sheet, _ := cmd.Flags().GetString("sheet")
	items, err := infrastructure.ReadItems(args[0], sheet)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if len(items) == 0 {
		return fmt.Errorf("no acquisition items found in %s", args[0])
	}
	log.Info("Input loaded",
		zap.String("path", args[0]),
		zap.Int("items", len(items)))

	capability := infrastructure.DetectCapability(config.Engine.MuxerBinary)
	if !capability.MuxerAvailable {
		log.Warn("Muxer not found, quality limited to pre-combined formats",
			zap.String("binary", config.Engine.MuxerBinary))
	}
	if config.Engine.CookieFile != "" {
		if _, err := os.Stat(config.Engine.CookieFile); err != nil {
			log.Warn("Cookie file not readable, continuing without it",
				zap.String("path", config.Engine.CookieFile))
			config.Engine.CookieFile = ""
		}
	}

	engine := infrastructure.NewYTDLPEngine(&config.Engine, config.Logging.EngineLogs, log)
	classifier := infrastructure.NewClassifier(engine, log)
	scheduler := app.NewScheduler(engine, infrastructure.NewProber(), classifier,
		capability, &config.Acquire, config.Engine.AuthContext(), log)

	progress := app.NewProgress()
	progress.Begin(items)
	report := infrastructure.NewReportBuilder()

	var history domain.HistoryRepository
	if config.History.Enabled {
		repo, err := infrastructure.NewSQLiteHistoryRepository(config.History.DatabasePath)
		if err != nil {
			log.Warn("History disabled, database unavailable", zap.Error(err))
		} else {
			history = repo
			defer history.Close()
		}
	}

	scheduler.OnOutcome = func(out domain.Outcome) {
		report.Record(out)
		progress.Observe(out)
		printOutcome(out)
		if history != nil {
			record := domain.NewAcquisitionRecord(progress.RunID(), out)
			if err := history.SaveRecord(record); err != nil {
				log.Warn("Failed to persist outcome", zap.Error(err))
			}
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	statusAddr, _ := cmd.Flags().GetString("status-addr")
	var statusServer *http.Server
	if statusAddr != "" {
		router := api.SetupRouter(progress, history, version, log)
		statusServer = &http.Server{Addr: statusAddr, Handler: router}
		go func() {
			log.Info("Status API listening", zap.String("addr", statusAddr))
			if err := statusServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("Status API failed", zap.Error(err))
			}
		}()
	}

	log.Info("Batch starting",
		zap.String("run_id", progress.RunID()),
		zap.Int("workers", config.Acquire.Workers),
		zap.String("output_dir", config.Acquire.OutputDir),
		zap.Bool("muxer", capability.MuxerAvailable))

	outcomes, err := scheduler.Run(ctx, items)
	progress.Finish()
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	if statusServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		statusServer.Shutdown(shutdownCtx)
		cancel()
	}

	reportPath := config.Acquire.ReportPath
	if reportPath == "" {
		reportPath = defaultReportPath()
	}
	if err := report.Finalize(reportPath); err != nil {
		log.Error("Failed to write report", zap.Error(err))
	}

	printSummary(domain.Summarize(outcomes), reportPath)
	return nil
}

func loadRunConfig(cmd *cobra.Command) (*domain.Config, error) {
	config, err := app.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
		config.Acquire.OutputDir = dir
	}
	if report, _ := cmd.Flags().GetString("report"); report != "" {
		config.Acquire.ReportPath = report
	}
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		config.Acquire.Workers = workers
	}
	if sleep, _ := cmd.Flags().GetDuration("sleep"); sleep > 0 {
		config.Acquire.Sleep = sleep
	}
	if audioOnly, _ := cmd.Flags().GetBool("audio-only"); audioOnly {
		config.Acquire.AudioOnly = true
	}
	if height, _ := cmd.Flags().GetInt("max-height"); height > 0 {
		config.Acquire.MaxHeight = height
	}
	if cookieFile, _ := cmd.Flags().GetString("cookie-file"); cookieFile != "" {
		config.Engine.CookieFile = cookieFile
	}
	if browser, _ := cmd.Flags().GetString("browser"); browser != "" {
		config.Engine.Browser = browser
	}
	if profile, _ := cmd.Flags().GetString("profile"); profile != "" {
		config.Engine.Profile = profile
	}
	return config, nil
}

func printOutcome(out domain.Outcome) {
	switch out.Status {
	case domain.StatusOK:
		fmt.Printf("[OK]      %s -> %s\n", out.Item.LogicalID, out.ResolvedPath)
	case domain.StatusSkipped:
		fmt.Printf("[SKIPPED] %s (%s)\n", out.Item.LogicalID, out.Message)
	case domain.StatusError:
		fmt.Printf("[ERROR]   %s: %s\n", out.Item.LogicalID, out.Message)
	}
}

func printSummary(s domain.Summary, reportPath string) {
	fmt.Println()
	fmt.Printf("Batch complete: %d items\n", s.Total)
	fmt.Printf("  OK:      %d\n", s.OK)
	fmt.Printf("  SKIPPED: %d\n", s.Skipped)
	fmt.Printf("  ERROR:   %d\n", s.Errors)
	fmt.Printf("Report: %s\n", reportPath)
}

func defaultReportPath() string {
	return fmt.Sprintf("acquisition-report-%s.xlsx", time.Now().Format("20060102-150405"))
}
