package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/focusflow/internal/engine"
	"github.com/sadopc/focusflow/internal/pomodoro"
	"github.com/sadopc/focusflow/internal/store"
)

// Engine is the part of *engine.Engine the UI needs.
type Engine interface {
	pomodoro.Commander
	Events() <-chan engine.Event
}

// waitForEvent blocks on the engine's event channel and hands the next
// event to Update. It has to be re-armed after every event.
func waitForEvent(events <-chan engine.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return engineClosedMsg{}
		}
		return engineEventMsg(ev)
	}
}

// logStore saves completed phases as time logs.
type logStore struct {
	store *store.Store
}

func (l logStore) AppendLog(ctx context.Context, e pomodoro.LogEntry) error {
	_, err := l.store.CreateLog(ctx, store.TimeLog{
		TaskID:          e.TaskID,
		Mode:            e.Mode.String(),
		StartAt:         e.StartAt,
		EndAt:           e.EndAt,
		DurationMinutes: e.DurationMinutes,
		Completed:       e.Completed,
		DayKey:          e.DayKey,
	})
	if err != nil {
		return fmt.Errorf("append %s log: %w", e.Mode, err)
	}
	return nil
}

// screen is the controller's display. It keeps the last rendered state
// for the timer view and footer.
type screen struct {
	last    pomodoro.State
	renders int
}

func (s *screen) Render(st pomodoro.State) {
	s.last = st
	s.renders++
}
