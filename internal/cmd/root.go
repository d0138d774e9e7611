package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sadopc/focusflow/internal/config"
	"github.com/sadopc/focusflow/internal/engine"
	"github.com/sadopc/focusflow/internal/export"
	"github.com/sadopc/focusflow/internal/logging"
	"github.com/sadopc/focusflow/internal/notify"
	"github.com/sadopc/focusflow/internal/pomodoro"
	"github.com/sadopc/focusflow/internal/store"
	"github.com/sadopc/focusflow/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "focusflow",
	Short: "Pomodoro timer with tasks and focus analytics",
	Long: `focusflow runs focus sessions and breaks in the terminal, keeps a
small task board, logs every completed phase to a local SQLite database
and scores each day's focus time.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/focusflow/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "SQLite database file")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	// FOCUSFLOW_TIMER_FOCUS_MINUTES overrides timer.focus_minutes
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// openStore opens the configured database, or the default one.
func openStore(cfg *config.Config) (*store.Store, error) {
	path := cfg.Database.Path
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		path = p
	}
	s, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	return s, nil
}

// seedSettings stores the configured timer lengths and theme for keys the
// user has not saved yet.
func seedSettings(s *store.Store, cfg *config.Config) error {
	return s.SeedSettings(map[string]string{
		store.SettingFocusMinutes:      strconv.Itoa(cfg.Timer.FocusMinutes),
		store.SettingShortBreakMinutes: strconv.Itoa(cfg.Timer.ShortBreakMinutes),
		store.SettingLongBreakMinutes:  strconv.Itoa(cfg.Timer.LongBreakMinutes),
		store.SettingTheme:             cfg.TUI.Theme,
	})
}

// loadSettings reads the timer lengths saved in the database, falling
// back to the configured ones.
func loadSettings(s *store.Store, cfg *config.Config) (pomodoro.Settings, error) {
	fallback := cfg.Timer.Settings()
	var out pomodoro.Settings
	fields := []struct {
		key      string
		fallback int
		dst      *int
	}{
		{store.SettingFocusMinutes, fallback.FocusMinutes, &out.FocusMinutes},
		{store.SettingShortBreakMinutes, fallback.ShortBreakMinutes, &out.ShortBreakMinutes},
		{store.SettingLongBreakMinutes, fallback.LongBreakMinutes, &out.LongBreakMinutes},
	}
	for _, f := range fields {
		n, err := s.GetIntSetting(f.key, f.fallback)
		if err != nil {
			return fallback, err
		}
		*f.dst = n
	}
	if err := out.Validate(); err != nil {
		return fallback, err
	}
	return out, nil
}

// stringSetting returns the stored value of key, or fallback when unset.
func stringSetting(s *store.Store, key, fallback string) (string, error) {
	v, err := s.GetSetting(key)
	if errors.Is(err, store.ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return fallback, err
	}
	return v, nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LogPath(), cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer logger.Close()

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := seedSettings(s, cfg); err != nil {
		return err
	}
	settings, err := loadSettings(s, cfg)
	if err != nil {
		logger.Warn("using configured timer settings", "error", err)
	}
	username, err := stringSetting(s, store.SettingUsername, "")
	if err != nil {
		logger.Warn("reading username", "error", err)
	}
	theme, err := stringSetting(s, store.SettingTheme, cfg.TUI.Theme)
	if err != nil {
		logger.Warn("reading theme", "error", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	completed, err := s.CountLogs(ctx, pomodoro.ModeFocus.String(), pomodoro.DayKey(time.Now()))
	if err != nil {
		logger.Warn("counting today's focus sessions", "error", err)
	}

	eng := engine.New(engine.WithLogger(logger.With("component", "engine")))
	go eng.Run(ctx)

	var bell io.Writer
	if cfg.Notifications.Bell {
		bell = os.Stderr
	}
	sink := notify.New(cfg.Notifications.Enabled,
		notify.WithBell(bell),
		notify.WithLogger(logger.With("component", "notify")),
	)

	format, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		return err
	}

	logger.Info("starting focusflow",
		"focus_minutes", settings.FocusMinutes,
		"completed_today", completed,
	)

	app := tui.NewApp(tui.Options{
		Store:          s,
		Engine:         eng,
		Notifier:       sink,
		Logger:         logger.Logger,
		Settings:       settings,
		CompletedToday: completed,
		Username:       username,
		Theme:          theme,
		ExportDir:      cfg.Export.Dir,
		ExportFormat:   format,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
