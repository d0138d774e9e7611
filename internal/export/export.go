// Package export writes time logs to CSV, JSON or YAML files.
package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sadopc/focusflow/internal/store"
)

// ErrNoLogs is returned by Export when there is nothing to write.
var ErrNoLogs = errors.New("no logs to export")

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or yaml)", s)
}

// FileName returns focusflow_logs_<YYYY-MM-DD>.<ext> for the local date of
// now, the same calendar day the logs are keyed by.
func FileName(f Format, now time.Time) string {
	return fmt.Sprintf("focusflow_logs_%s.%s", now.Local().Format("2006-01-02"), f)
}

// Export writes logs into dir and returns the file path. titles maps task
// ids to titles for the JSON and YAML formats; missing ids export as
// "Unknown".
func Export(f Format, logs []store.TimeLog, titles map[int64]string, dir string, now time.Time) (string, error) {
	if len(logs) == 0 {
		return "", ErrNoLogs
	}
	path := filepath.Join(dir, FileName(f, now))

	var err error
	switch f {
	case FormatCSV:
		err = ToCSV(logs, path)
	case FormatJSON:
		err = ToJSON(logs, titles, path)
	case FormatYAML:
		err = ToYAML(logs, titles, path)
	default:
		err = fmt.Errorf("unknown export format %q", f)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

func taskTitle(taskID *int64, titles map[int64]string) string {
	if taskID == nil {
		return ""
	}
	if t, ok := titles[*taskID]; ok {
		return t
	}
	return "Unknown"
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
