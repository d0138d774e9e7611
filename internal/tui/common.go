package tui

import (
	"fmt"

	"github.com/sadopc/focusflow/internal/engine"
	"github.com/sadopc/focusflow/internal/pomodoro"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewTasks
	viewAnalytics
	viewSettings
)

var viewNames = []string{"Timer", "Tasks", "Analytics", "Settings"}

// --- Messages ---

// engineEventMsg carries one event from the engine goroutine into Update.
type engineEventMsg engine.Event

// engineClosedMsg is delivered once the engine's event channel is closed.
type engineClosedMsg struct{}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

type activeTaskMsg struct {
	id    *int64
	title string
}

type taskDeletedMsg struct {
	id int64
}

type settingsSavedMsg struct {
	settings pomodoro.Settings
	username string
	theme    string
}

// --- Helpers ---

// formatClock renders seconds as MM:SS. Minutes are not wrapped into hours.
func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", m/60, m%60)
}
