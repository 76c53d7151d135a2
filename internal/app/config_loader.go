package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/media-batch-go/internal/domain"
)

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.media-batch")
		v.AddConfigPath("/etc/media-batch")
	}

	v.SetEnvPrefix("MEDIABATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, config)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// no config file: defaults plus environment
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// setDefaults registers every key with its default so environment
// overrides are picked up even when no config file names the key.
func setDefaults(v *viper.Viper, config *domain.Config) {
	v.SetDefault("acquire.output_dir", config.Acquire.OutputDir)
	v.SetDefault("acquire.report_path", config.Acquire.ReportPath)
	v.SetDefault("acquire.workers", config.Acquire.Workers)
	v.SetDefault("acquire.sleep", config.Acquire.Sleep)
	v.SetDefault("acquire.audio_only", config.Acquire.AudioOnly)
	v.SetDefault("acquire.max_height", config.Acquire.MaxHeight)
	v.SetDefault("engine.binary", config.Engine.Binary)
	v.SetDefault("engine.muxer_binary", config.Engine.MuxerBinary)
	v.SetDefault("engine.retries", config.Engine.Retries)
	v.SetDefault("engine.fragment_retries", config.Engine.FragmentRetries)
	v.SetDefault("engine.concurrent_fragments", config.Engine.ConcurrentFragments)
	v.SetDefault("engine.user_agent", config.Engine.UserAgent)
	v.SetDefault("engine.cookie_file", config.Engine.CookieFile)
	v.SetDefault("engine.browser", config.Engine.Browser)
	v.SetDefault("engine.profile", config.Engine.Profile)
	v.SetDefault("history.enabled", config.History.Enabled)
	v.SetDefault("history.database_path", config.History.DatabasePath)
	v.SetDefault("server.host", config.Server.Host)
	v.SetDefault("server.port", config.Server.Port)
	v.SetDefault("logging.level", config.Logging.Level)
	v.SetDefault("logging.format", config.Logging.Format)
	v.SetDefault("logging.output_path", config.Logging.OutputPath)
	v.SetDefault("logging.engine_logs", config.Logging.EngineLogs)
}

// expandPaths expands environment variables and ~ in path configurations
func expandPaths(config *domain.Config) {
	config.Acquire.OutputDir = expandPath(config.Acquire.OutputDir)
	config.Acquire.ReportPath = expandPath(config.Acquire.ReportPath)
	config.History.DatabasePath = expandPath(config.History.DatabasePath)
	config.Engine.CookieFile = expandPath(config.Engine.CookieFile)
	config.Logging.EngineLogs = expandPath(config.Logging.EngineLogs)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}
}

func expandPath(path string) string {
	path = os.ExpandEnv(path)
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return path
}

func validateConfig(config *domain.Config) error {
	if config.Acquire.OutputDir == "" {
		return fmt.Errorf("output directory not configured")
	}
	if config.Acquire.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if config.Engine.Binary == "" {
		return fmt.Errorf("engine binary not configured")
	}
	if config.Engine.Retries < 0 || config.Engine.FragmentRetries < 0 {
		return fmt.Errorf("retry counts cannot be negative")
	}
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.History.Enabled && config.History.DatabasePath == "" {
		return fmt.Errorf("history database path not configured")
	}
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	return nil
}

// SaveConfig writes the configuration to a yaml file
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("acquire.output_dir", config.Acquire.OutputDir)
	v.Set("acquire.report_path", config.Acquire.ReportPath)
	v.Set("acquire.workers", config.Acquire.Workers)
	v.Set("acquire.sleep", config.Acquire.Sleep.String())
	v.Set("acquire.audio_only", config.Acquire.AudioOnly)
	v.Set("acquire.max_height", config.Acquire.MaxHeight)
	v.Set("engine.binary", config.Engine.Binary)
	v.Set("engine.muxer_binary", config.Engine.MuxerBinary)
	v.Set("engine.retries", config.Engine.Retries)
	v.Set("engine.fragment_retries", config.Engine.FragmentRetries)
	v.Set("engine.concurrent_fragments", config.Engine.ConcurrentFragments)
	v.Set("engine.user_agent", config.Engine.UserAgent)
	v.Set("engine.cookie_file", config.Engine.CookieFile)
	v.Set("engine.browser", config.Engine.Browser)
	v.Set("engine.profile", config.Engine.Profile)
	v.Set("history.enabled", config.History.Enabled)
	v.Set("history.database_path", config.History.DatabasePath)
	v.Set("server.host", config.Server.Host)
	v.Set("server.port", config.Server.Port)
	v.Set("logging.level", config.Logging.Level)
	v.Set("logging.format", config.Logging.Format)
	v.Set("logging.output_path", config.Logging.OutputPath)
	v.Set("logging.engine_logs", config.Logging.EngineLogs)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
