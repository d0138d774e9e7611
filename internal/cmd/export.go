package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/focusflow/internal/config"
	"github.com/sadopc/focusflow/internal/export"
	"github.com/sadopc/focusflow/internal/pomodoro"
	"github.com/sadopc/focusflow/internal/store"
)

var (
	exportFormat string
	exportDir    string
	exportDay    string
	exportMode   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export time logs to CSV, JSON or YAML",
	Long: `Export writes every time log, or the logs of one day, to
focusflow_logs_<date>.<format> in the export directory.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "csv, json or yaml (default from config)")
	exportCmd.Flags().StringVarP(&exportDir, "dir", "o", "", "output directory (default from config)")
	exportCmd.Flags().StringVar(&exportDay, "day", "", "only export one day, e.g. 2026/03/09 or today")
	exportCmd.Flags().StringVar(&exportMode, "mode", "", "only export one mode: focus, short or long")
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	formatName := exportFormat
	if formatName == "" {
		formatName = cfg.Export.Format
	}
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}
	dir := exportDir
	if dir == "" {
		dir = cfg.Export.Dir
	}
	day := exportDay
	if day == "today" {
		day = pomodoro.DayKey(time.Now())
	}
	filter := store.LogFilter{DayKey: day}
	if exportMode != "" {
		m, err := pomodoro.ParseMode(exportMode)
		if err != nil {
			return err
		}
		filter.Mode = m.String()
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	logs, err := s.ListLogs(ctx, filter)
	if err != nil {
		return err
	}
	titles, err := s.TaskTitles()
	if err != nil {
		return err
	}

	path, err := export.Export(format, logs, titles, dir, time.Now())
	if errors.Is(err, export.ErrNoLogs) {
		fmt.Fprintln(cmd.OutOrStdout(), "No logs to export.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d logs to %s\n", len(logs), path)
	return nil
}
