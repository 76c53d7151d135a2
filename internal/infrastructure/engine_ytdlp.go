package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/media-batch-go/internal/domain"
)

// YTDLPEngine drives the yt-dlp binary as the external media-fetch engine.
// Transient-error retries are delegated to the binary itself; the retry
// ceilings come from the backoff table.
type YTDLPEngine struct {
	config  *domain.EngineConfig
	logsDir string
	log     *zap.Logger
}

// NewYTDLPEngine creates a new engine adapter
func NewYTDLPEngine(config *domain.EngineConfig, logsDir string, log *zap.Logger) *YTDLPEngine {
	return &YTDLPEngine{
		config:  config,
		logsDir: logsDir,
		log:     log,
	}
}

// DetectCapability reports which optional tooling is present on PATH
func DetectCapability(muxerBinary string) domain.Capability {
	_, err := exec.LookPath(muxerBinary)
	return domain.Capability{MuxerAvailable: err == nil}
}

// inspectPayload is the subset of the engine's metadata output we decode
type inspectPayload struct {
	ID      string            `json:"id"`
	Title   string            `json:"title"`
	Type    string            `json:"_type"`
	Entries []json.RawMessage `json:"entries"`
}

// Inspect runs a metadata-only extraction restricted to the first
// collection entry, so the cost is bounded even for large collections.
func (e *YTDLPEngine) Inspect(ctx context.Context, url string) (*domain.MediaInfo, error) {
	args := []string{
		"--dump-single-json",
		"--flat-playlist",
		"--playlist-items", "1",
		"--skip-download",
		"--no-warnings",
	}
	args = append(args, e.authArgs()...)
	args = append(args, url)

	cmd := exec.CommandContext(ctx, e.config.Binary, args...)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("engine inspection failed: %w", err)
	}

	var payload inspectPayload
	if err := json.Unmarshal(out, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode engine metadata: %w", err)
	}

	return &domain.MediaInfo{
		ID:         payload.ID,
		Title:      payload.Title,
		Type:       payload.Type,
		EntryCount: len(payload.Entries),
	}, nil
}

// Fetch performs the two engine sub-calls for one item: a simulated
// extraction that fails fast when the remote resource is inaccessible,
// then the actual transfer. Subprocess output goes to the dated engine log.
func (e *YTDLPEngine) Fetch(ctx context.Context, req domain.FetchRequest) error {
	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	args := buildFetchArgs(req, e.config)

	// Extraction phase: no transfer is attempted if this fails
	probeArgs := append(append([]string{}, args...), "--simulate")
	probe := exec.CommandContext(ctx, e.config.Binary, probeArgs...)
	if out, err := probe.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrExtraction, diagnosticLine(out, err))
	}

	engineLog, err := e.openLogFile()
	if err != nil {
		return fmt.Errorf("failed to open engine log: %w", err)
	}
	defer engineLog.Close()

	e.writeLogHeader(engineLog, req.LogicalID, commandLine(e.config.Binary, args))

	// exec.Command passes args directly to the process, no shell involved
	cmd := exec.CommandContext(ctx, e.config.Binary, args...)
	cmd.Stdout = engineLog
	cmd.Stderr = engineLog

	if err := cmd.Run(); err != nil {
		e.writeLogFooter(engineLog, false, err.Error())
		return fmt.Errorf("engine transfer failed: %w", err)
	}

	e.writeLogFooter(engineLog, true, "transfer complete")
	return nil
}

// ListFormats prints the engine's format table for a URL to stdout
func (e *YTDLPEngine) ListFormats(ctx context.Context, url string) error {
	args := append([]string{"--list-formats"}, e.authArgs()...)
	args = append(args, url)

	cmd := exec.CommandContext(ctx, e.config.Binary, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to list formats: %w", err)
	}
	return nil
}

// buildFetchArgs renders a FetchRequest into the engine argument list
func buildFetchArgs(req domain.FetchRequest, config *domain.EngineConfig) []string {
	args := []string{
		"-f", req.Policy.FormatSelector,
		"--retries", strconv.Itoa(config.Retries),
		"--fragment-retries", strconv.Itoa(config.FragmentRetries),
		"--concurrent-fragments", strconv.Itoa(config.ConcurrentFragments),
	}

	for _, spec := range domain.RetrySleepSpecs() {
		args = append(args, "--retry-sleep", spec)
	}

	if config.UserAgent != "" {
		args = append(args, "--user-agent", config.UserAgent)
	}

	if req.Collection {
		args = append(args, "--yes-playlist",
			"-o", filepath.Join(req.OutputDir, req.LogicalID, "%(playlist_index)s-%(title)s.%(ext)s"))
	} else {
		args = append(args, "--no-playlist",
			"-o", filepath.Join(req.OutputDir, req.LogicalID+".%(ext)s"))
	}

	audioOnly := false
	for _, step := range req.Policy.PostProcessing {
		switch step.Kind {
		case domain.StepRemux:
			args = append(args, "--remux-video", step.Container)
		case domain.StepTranscode:
			args = append(args, "--recode-video", step.Container)
		case domain.StepExtractAudio:
			audioOnly = true
			args = append(args, "-x", "--audio-format", step.Container)
			if step.Quality != "" {
				args = append(args, "--audio-quality", step.Quality)
			}
		}
	}

	if req.Policy.OutputContainerHint != "" && !audioOnly {
		args = append(args, "--merge-output-format", req.Policy.OutputContainerHint)
	}

	args = append(args, authContextArgs(req.Auth)...)
	args = append(args, req.URL)
	return args
}

// authContextArgs forwards credential material verbatim; the cookie file
// wins when both sources are configured.
func authContextArgs(auth domain.AuthContext) []string {
	if auth.CookieFile != "" {
		return []string{"--cookies", auth.CookieFile}
	}
	if auth.Browser != "" {
		spec := auth.Browser
		if auth.Profile != "" {
			spec += ":" + auth.Profile
		}
		return []string{"--cookies-from-browser", spec}
	}
	return nil
}

func (e *YTDLPEngine) authArgs() []string {
	return authContextArgs(e.config.AuthContext())
}

// openLogFile opens the engine log file for today. All subprocess output
// (stdout and stderr) goes to this single file.
func (e *YTDLPEngine) openLogFile() (*os.File, error) {
	if err := os.MkdirAll(e.logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}
	dateStr := time.Now().Format("20060102")
	path := filepath.Join(e.logsDir, "engine-"+dateStr+".log")
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

func (e *YTDLPEngine) writeLogHeader(file *os.File, logicalID, cmdLine string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(file, "\n=== [%s] Item: %s ===\n$ %s\n", timestamp, logicalID, cmdLine)
}

func (e *YTDLPEngine) writeLogFooter(file *os.File, success bool, message string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	fmt.Fprintf(file, "[%s] %s: %s\n=== END ===\n\n", timestamp, status, message)
}

// commandLine renders the invocation for the log header. Display only:
// arguments with shell metacharacters are single-quoted.
func commandLine(binary string, args []string) string {
	line := quoteArg(binary)
	for _, arg := range args {
		line += " " + quoteArg(arg)
	}
	return line
}

func quoteArg(s string) string {
	if s == "" {
		return "''"
	}
	plain := true
	for _, c := range s {
		if !(c == '-' || c == '_' || c == '.' || c == '/' || c == ':' || c == '=' || c == '%' ||
			(c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
			plain = false
			break
		}
	}
	if plain {
		return s
	}
	quoted := "'"
	for _, c := range s {
		if c == '\'' {
			quoted += `'"'"'`
		} else {
			quoted += string(c)
		}
	}
	return quoted + "'"
}

// diagnosticLine trims subprocess output down to a single line: the last
// non-empty one, where the engine prints its error.
func diagnosticLine(out []byte, fallback error) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return fallback.Error()
}
