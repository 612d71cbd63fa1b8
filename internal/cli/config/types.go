// Package config provides configuration management for the Tally CLI.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	StatePath    string      `koanf:"state_path"`
	Session      string      `koanf:"session"`
	Verbose      bool        `koanf:"verbose"`
	OutputFormat string      `koanf:"output"`
	MaxDepth     int         `koanf:"max_depth"`
	Journal      bool        `koanf:"journal"`
	REPL         REPLConfig  `koanf:"repl"`
	Watch        WatchConfig `koanf:"watch"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// REPLConfig holds settings for the interactive prompt.
type REPLConfig struct {
	Prompt      string `koanf:"prompt"`
	HistoryFile string `koanf:"history_file"`
}

// WatchConfig holds settings for watch mode.
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

// Default configuration values.
const (
	DefaultStateFile   = ".tally/state.db"
	DefaultHistoryFile = ".tally/history"
	DefaultSession     = "default"
	DefaultOutput      = "auto" // Auto-detect: TTY=styled text, non-TTY=plain text
	DefaultPrompt      = "tally> "
	DefaultDebounce    = 100 * time.Millisecond
)

// OutputFormats lists the accepted values of the output setting.
var OutputFormats = []string{"auto", "text", "json", "yaml"}

// JournalEnabled reports whether submissions should be persisted.
func (c *Config) JournalEnabled() bool {
	return c.Journal && c.StatePath != ""
}
