package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/focusflow/internal/store"
)

var csvHeader = []string{"ID", "Task ID", "Start", "End", "Duration (min)", "Date"}

func ToCSV(logs []store.TimeLog, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, logs); err != nil {
		return err
	}
	return f.Close()
}

// WriteCSV writes the header and one row per log. Logs without a task get
// an empty Task ID.
func WriteCSV(out io.Writer, logs []store.TimeLog) error {
	w := csv.NewWriter(out)
	w.UseCRLF = true

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, l := range logs {
		taskID := ""
		if l.TaskID != nil {
			taskID = strconv.FormatInt(*l.TaskID, 10)
		}
		row := []string{
			strconv.FormatInt(l.ID, 10),
			taskID,
			l.StartAt.Local().Format(time.RFC3339),
			l.EndAt.Local().Format(time.RFC3339),
			strconv.Itoa(l.DurationMinutes),
			l.DayKey,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
