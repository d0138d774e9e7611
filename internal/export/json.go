package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/focusflow/internal/store"
)

type logExport struct {
	ExportedAt string     `json:"exported_at" yaml:"exported_at"`
	Count      int        `json:"count" yaml:"count"`
	Logs       []logEntry `json:"logs" yaml:"logs"`
}

type logEntry struct {
	ID              int64  `json:"id" yaml:"id"`
	TaskID          *int64 `json:"task_id,omitempty" yaml:"task_id,omitempty"`
	Task            string `json:"task,omitempty" yaml:"task,omitempty"`
	Mode            string `json:"mode" yaml:"mode"`
	StartAt         string `json:"start_at" yaml:"start_at"`
	EndAt           string `json:"end_at" yaml:"end_at"`
	DurationMinutes int    `json:"duration_minutes" yaml:"duration_minutes"`
	Duration        string `json:"duration" yaml:"duration"`
	Completed       bool   `json:"completed" yaml:"completed"`
	Date            string `json:"date" yaml:"date"`
}

func buildExport(logs []store.TimeLog, titles map[int64]string) logExport {
	export := logExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(logs),
	}
	for _, l := range logs {
		export.Logs = append(export.Logs, logEntry{
			ID:              l.ID,
			TaskID:          l.TaskID,
			Task:            taskTitle(l.TaskID, titles),
			Mode:            l.Mode,
			StartAt:         l.StartAt.Local().Format(time.RFC3339),
			EndAt:           l.EndAt.Local().Format(time.RFC3339),
			DurationMinutes: l.DurationMinutes,
			Duration:        formatDuration(int64(l.DurationMinutes) * 60),
			Completed:       l.Completed,
			Date:            l.DayKey,
		})
	}
	return export
}

func ToJSON(logs []store.TimeLog, titles map[int64]string, path string) error {
	data, err := json.MarshalIndent(buildExport(logs, titles), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
