package domain

import "time"

// Config represents the application configuration
type Config struct {
	Acquire AcquireConfig `mapstructure:"acquire"`
	Engine  EngineConfig  `mapstructure:"engine"`
	History HistoryConfig `mapstructure:"history"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// AcquireConfig controls the batch acquisition run
type AcquireConfig struct {
	OutputDir  string        `mapstructure:"output_dir"`
	ReportPath string        `mapstructure:"report_path"`
	Workers    int           `mapstructure:"workers"`
	Sleep      time.Duration `mapstructure:"sleep"`
	AudioOnly  bool          `mapstructure:"audio_only"`
	MaxHeight  int           `mapstructure:"max_height"`
}

// EngineConfig configures the external media-fetch engine
type EngineConfig struct {
	Binary              string `mapstructure:"binary"`
	MuxerBinary         string `mapstructure:"muxer_binary"`
	Retries             int    `mapstructure:"retries"`
	FragmentRetries     int    `mapstructure:"fragment_retries"`
	ConcurrentFragments int    `mapstructure:"concurrent_fragments"`
	UserAgent           string `mapstructure:"user_agent"`
	CookieFile          string `mapstructure:"cookie_file"`
	Browser             string `mapstructure:"browser"`
	Profile             string `mapstructure:"profile"`
}

// HistoryConfig configures the persistent outcome history
type HistoryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DatabasePath string `mapstructure:"database_path"`
}

// ServerConfig configures the optional live status API
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
	EngineLogs string `mapstructure:"engine_logs"` // directory for engine subprocess logs
}

// AuthContext builds the credential passthrough from the engine config
func (c EngineConfig) AuthContext() AuthContext {
	return AuthContext{
		CookieFile: c.CookieFile,
		Browser:    c.Browser,
		Profile:    c.Profile,
	}
}

// Mode builds the acquisition mode from the acquire config
func (c AcquireConfig) Mode() Mode {
	return Mode{
		AudioOnly:       c.AudioOnly,
		TargetMaxHeight: c.MaxHeight,
	}
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Acquire: AcquireConfig{
			OutputDir: "downloads",
			Workers:   3,
		},
		Engine: EngineConfig{
			Binary:              "yt-dlp",
			MuxerBinary:         "ffmpeg",
			Retries:             10,
			FragmentRetries:     10,
			ConcurrentFragments: 4,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
				"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
		},
		History: HistoryConfig{
			Enabled:      true,
			DatabasePath: "$HOME/.media-batch/history.db",
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
			EngineLogs: "$HOME/.media-batch/logs",
		},
	}
}
