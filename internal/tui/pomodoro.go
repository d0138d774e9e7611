package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusflow/internal/pomodoro"
)

const defaultUsername = "Guest"

type pomodoroModel struct {
	ctrl   *pomodoro.Controller
	screen *screen
	width  int
	height int

	username    string
	activeTitle string

	// earlierToday counts focus sessions logged today before this run.
	earlierToday int
}

func newPomodoroModel(ctrl *pomodoro.Controller, scr *screen, username string, earlierToday int) pomodoroModel {
	return pomodoroModel{
		ctrl:         ctrl,
		screen:       scr,
		username:     username,
		earlierToday: max(earlierToday, 0),
	}
}

func (p *pomodoroModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p pomodoroModel) greeting() string {
	name := strings.TrimSpace(p.username)
	if name == "" {
		name = defaultUsername
	}
	return fmt.Sprintf("Hello %s, let's start working!", name)
}

func (p pomodoroModel) update(msg tea.Msg) (pomodoroModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Toggle):
		p.ctrl.Toggle()
	case key.Matches(keyMsg, keys.Reset):
		p.ctrl.Reset()
	case key.Matches(keyMsg, keys.Mode):
		st := p.ctrl.State()
		next := pomodoro.Modes[(int(st.Mode)+1)%len(pomodoro.Modes)]
		if err := p.ctrl.SetMode(next); err != nil {
			return p, func() tea.Msg {
				return statusMsg{text: "Stop the timer to change mode", isError: true}
			}
		}
	}
	return p, nil
}

func modeColor(m pomodoro.Mode) lipgloss.Color {
	switch m {
	case pomodoro.ModeFocus:
		return colorAccent
	case pomodoro.ModeShortBreak:
		return colorSuccess
	}
	return colorHighlight
}

func (p pomodoroModel) view() string {
	w := p.width - 4
	st := p.screen.last
	color := modeColor(st.Mode)

	title := titleStyle.Render(p.greeting())

	timeDisplay := timerStyle.Foreground(color).Width(max(w-6, 10)).Render(formatClock(st.RemainingSeconds))
	modeLabel := lipgloss.NewStyle().Bold(true).Foreground(color).Render(strings.ToUpper(st.Mode.Label()))

	var status string
	switch st.Status {
	case pomodoro.StatusRunning:
		status = successStyle.Render("running")
	case pomodoro.StatusPaused:
		status = warningStyle.Render("paused")
	default:
		status = mutedStyle.Render("stopped")
		if st.Completed {
			status = successStyle.Render("completed")
		}
	}

	task := mutedStyle.Render("No active task")
	if st.ActiveTaskID != nil && p.activeTitle != "" {
		task = highlightStyle.Render("Working on: " + p.activeTitle)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		timeDisplay,
		modeLabel+"  "+status,
		"",
		renderBar(st.Progress(), max(min(w-10, 50), 10), color),
		"",
		p.renderSessions(st),
		"",
		task,
	)

	var controls string
	switch st.Status {
	case pomodoro.StatusRunning:
		controls = mutedStyle.Render("space: pause  r: reset")
	case pomodoro.StatusPaused:
		controls = mutedStyle.Render("space: resume  r: reset")
	default:
		controls = mutedStyle.Render("space: start  m: change mode  r: reset")
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, content, "", controls),
	)
}

// renderBar draws a progress bar filled to fraction.
func renderBar(fraction float64, width int, color lipgloss.Color) string {
	fraction = max(0, min(1, fraction))
	filled := int(fraction * float64(width))
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
	return bar + mutedStyle.Render(fmt.Sprintf(" %3.0f%%", fraction*100))
}

// renderSessions shows where the focus counter is in the current cycle of
// pomodoro.LongBreakEvery sessions.
func (p pomodoroModel) renderSessions(st pomodoro.State) string {
	done := st.CompletedFocusSessions % pomodoro.LongBreakEvery
	if done == 0 && st.CompletedFocusSessions > 0 && st.Mode == pomodoro.ModeLongBreak {
		done = pomodoro.LongBreakEvery
	}
	var parts []string
	for i := 0; i < pomodoro.LongBreakEvery; i++ {
		switch {
		case i < done:
			parts = append(parts, successStyle.Render("●"))
		case i == done && st.Mode == pomodoro.ModeFocus && st.Status != pomodoro.StatusStopped:
			parts = append(parts, accentStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d today", p.earlierToday+st.CompletedFocusSessions))
	return strings.Join(parts, " ") + counter
}
