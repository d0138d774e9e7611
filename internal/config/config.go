// Package config loads focusflow settings from the config file, the
// environment and command-line flags through viper.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/sadopc/focusflow/internal/pomodoro"
)

// EnvPrefix prefixes environment overrides, e.g. FOCUSFLOW_LOGGING_LEVEL.
const EnvPrefix = "FOCUSFLOW"

// Config represents the complete focusflow configuration
type Config struct {
	Database      DatabaseConfig      `mapstructure:"database"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Timer         TimerConfig         `mapstructure:"timer"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Export        ExportConfig        `mapstructure:"export"`
	TUI           TUIConfig           `mapstructure:"tui"`
}

type DatabaseConfig struct {
	// Path of the SQLite file. Empty means store.DefaultDBPath.
	Path string `mapstructure:"path"`
}

type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level"`
	// Path of the log file. Empty means focusflow.log in ConfigDir.
	Path string `mapstructure:"path"`
}

// TimerConfig holds the durations used until the user saves their own in
// the settings view.
type TimerConfig struct {
	FocusMinutes      int `mapstructure:"focus_minutes"`
	ShortBreakMinutes int `mapstructure:"short_break_minutes"`
	LongBreakMinutes  int `mapstructure:"long_break_minutes"`
}

// Settings converts the timer section into controller settings.
func (t TimerConfig) Settings() pomodoro.Settings {
	return pomodoro.Settings{
		FocusMinutes:      t.FocusMinutes,
		ShortBreakMinutes: t.ShortBreakMinutes,
		LongBreakMinutes:  t.LongBreakMinutes,
	}
}

type NotificationsConfig struct {
	// Enabled queues a notification in the status line at each completion
	Enabled bool `mapstructure:"enabled"`
	// Bell rings the terminal bell at each completion
	Bell bool `mapstructure:"bell"`
}

type ExportConfig struct {
	// Dir receives exported files
	Dir string `mapstructure:"dir"`
	// Format is the default export format: csv, json or yaml
	Format string `mapstructure:"format"`
}

type TUIConfig struct {
	// Theme is the initial palette, dark or light. A theme saved from the
	// settings view takes precedence.
	Theme string `mapstructure:"theme"`
}

func Default() *Config {
	s := pomodoro.DefaultSettings()
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Timer: TimerConfig{
			FocusMinutes:      s.FocusMinutes,
			ShortBreakMinutes: s.ShortBreakMinutes,
			LongBreakMinutes:  s.LongBreakMinutes,
		},
		Notifications: NotificationsConfig{Enabled: true, Bell: true},
		Export:        ExportConfig{Dir: ".", Format: "csv"},
		TUI:           TUIConfig{Theme: "dark"},
	}
}

// SetDefaults registers every default with viper.
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("database.path", defaults.Database.Path)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.path", defaults.Logging.Path)

	viper.SetDefault("timer.focus_minutes", defaults.Timer.FocusMinutes)
	viper.SetDefault("timer.short_break_minutes", defaults.Timer.ShortBreakMinutes)
	viper.SetDefault("timer.long_break_minutes", defaults.Timer.LongBreakMinutes)

	viper.SetDefault("notifications.enabled", defaults.Notifications.Enabled)
	viper.SetDefault("notifications.bell", defaults.Notifications.Bell)

	viper.SetDefault("export.dir", defaults.Export.Dir)
	viper.SetDefault("export.format", defaults.Export.Format)

	viper.SetDefault("tui.theme", defaults.TUI.Theme)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "focusflow")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".focusflow"
	}
	return filepath.Join(home, ".config", "focusflow")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// LogPath returns the configured log file or the default one.
func (c *Config) LogPath() string {
	if c.Logging.Path != "" {
		return c.Logging.Path
	}
	return filepath.Join(ConfigDir(), "focusflow.log")
}
