// Package tui is the Bubble Tea front-end: it forwards key presses to the
// timer controller, feeds it engine events and renders its state alongside
// the task board, analytics and settings views.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusflow/internal/engine"
	"github.com/sadopc/focusflow/internal/export"
	"github.com/sadopc/focusflow/internal/notify"
	"github.com/sadopc/focusflow/internal/pomodoro"
	"github.com/sadopc/focusflow/internal/store"
)

const exportTimeout = 10 * time.Second

var exportFormats = []export.Format{export.FormatCSV, export.FormatJSON, export.FormatYAML}

// Options wires the app to its collaborators. Store, Engine and Notifier
// are required.
type Options struct {
	Store    *store.Store
	Engine   Engine
	Notifier *notify.Sink
	Logger   *slog.Logger

	Settings       pomodoro.Settings
	// CompletedToday is only displayed. The long-break cycle counts from
	// zero in every run.
	CompletedToday int
	Username       string
	Theme          string

	ExportDir    string
	ExportFormat export.Format

	// Now defaults to time.Now.
	Now func() time.Time
}

// App is the root Bubble Tea model.
type App struct {
	store    *store.Store
	engine   Engine
	ctrl     *pomodoro.Controller
	screen   *screen
	notifier *notify.Sink
	logger   *slog.Logger
	now      func() time.Time

	exportDir    string
	exportFormat export.Format

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	pomodoro  pomodoroModel
	tasks     tasksModel
	analytics analyticsModel
	settings  settingsModel

	help          help.Model
	status        string
	statusIsError bool
}

func NewApp(opts Options) App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir = "."
	}
	format := opts.ExportFormat
	if format == "" {
		format = export.FormatCSV
	}

	scr := &screen{}
	ctrl := pomodoro.NewController(opts.Engine, opts.Settings,
		pomodoro.WithLogStore(logStore{store: opts.Store}),
		pomodoro.WithAlarm(opts.Notifier),
		pomodoro.WithNotifier(opts.Notifier),
		pomodoro.WithDisplay(scr),
		pomodoro.WithClock(now),
		pomodoro.WithLogger(logger.With("component", "controller")),
	)
	scr.Render(ctrl.State())

	applyTheme(opts.Theme)

	h := help.New()
	h.ShowAll = false

	return App{
		store:        opts.Store,
		engine:       opts.Engine,
		ctrl:         ctrl,
		screen:       scr,
		notifier:     opts.Notifier,
		logger:       logger,
		now:          now,
		exportDir:    exportDir,
		exportFormat: format,
		activeView:   viewTimer,
		pomodoro:     newPomodoroModel(ctrl, scr, opts.Username, opts.CompletedToday),
		tasks:        newTasksModel(opts.Store),
		analytics:    newAnalyticsModel(opts.Store, now),
		settings:     newSettingsModel(opts.Store),
		help:         h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		waitForEvent(a.engine.Events()),
		a.tasks.refresh(),
		a.analytics.refresh(),
		a.settings.refresh(),
	)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.pomodoro.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.analytics.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = formatIndex(a.exportFormat)
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Theme):
			return a, a.toggleTheme()
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTimer
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewTasks
			return a, a.tasks.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewAnalytics
			return a, a.analytics.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case engineEventMsg:
		return a.handleEngineEvent(msg)

	case engineClosedMsg:
		a.logger.Debug("engine event channel closed")
		return a, nil

	case statusMsg:
		a.status = msg.text
		a.statusIsError = msg.isError
		if msg.isError {
			a.logger.Warn("status", "message", msg.text)
		}
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusIsError = false
		a.exportPicking = false
		return a, nil

	case activeTaskMsg:
		a.ctrl.SetActiveTask(msg.id)
		a.pomodoro.activeTitle = msg.title
		if msg.id == nil {
			a.status = "Active task cleared"
		} else {
			a.status = "Active task: " + msg.title
		}
		a.statusIsError = false
		return a, nil

	case taskDeletedMsg:
		if st := a.ctrl.State(); st.ActiveTaskID != nil && *st.ActiveTaskID == msg.id {
			a.ctrl.SetActiveTask(nil)
			a.pomodoro.activeTitle = ""
		}
		a.status = "Task deleted"
		a.statusIsError = false
		return a, a.analytics.refresh()

	case settingsSavedMsg:
		if err := a.ctrl.UpdateSettings(msg.settings); err != nil {
			a.status = fmt.Sprintf("Settings not applied: %v", err)
			a.statusIsError = true
			return a, nil
		}
		a.pomodoro.username = msg.username
		applyTheme(msg.theme)
		a.status = "Settings saved"
		a.statusIsError = false
		return a, nil

	case tasksDataMsg:
		// Loaded data goes to its view even when another view is active.
		var cmd tea.Cmd
		a.tasks, cmd = a.tasks.update(msg)
		return a, cmd

	case analyticsDataMsg:
		var cmd tea.Cmd
		a.analytics, cmd = a.analytics.update(msg)
		return a, cmd

	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

// handleEngineEvent applies one engine event, surfaces queued
// notifications and re-arms the event bridge.
func (a App) handleEngineEvent(msg engineEventMsg) (tea.Model, tea.Cmd) {
	ev := engine.Event(msg)
	a.ctrl.HandleEvent(ev)

	cmds := []tea.Cmd{waitForEvent(a.engine.Events())}
	for _, n := range a.notifier.Drain() {
		a.status = n.Title + ": " + n.Body
		a.statusIsError = false
	}
	if ev.Action == engine.ActionComplete {
		cmds = append(cmds, a.analytics.refresh())
	}
	return a, tea.Batch(cmds...)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimer:
		a.pomodoro, cmd = a.pomodoro.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewAnalytics:
		a.analytics, cmd = a.analytics.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTasks:
		return a.tasks.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTasks:
		return a.tasks.refresh()
	case viewAnalytics:
		return a.analytics.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) toggleTheme() tea.Cmd {
	theme := nextTheme(currentTheme)
	applyTheme(theme)
	if err := a.store.SetSetting(store.SettingTheme, theme); err != nil {
		return errStatus("Saving theme", err)
	}
	return a.settings.refresh()
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimer:
		content = a.pomodoro.view()
	case viewTasks:
		content = a.tasks.view()
	case viewAnalytics:
		content = a.analytics.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("focusflow")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusIsError {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// Countdown indicator while a phase is in progress
	timerInfo := ""
	st := a.screen.last
	switch st.Status {
	case pomodoro.StatusRunning:
		timerInfo = successStyle.Render(fmt.Sprintf(" ● %s %s", st.Mode.Label(), formatClock(st.RemainingSeconds)))
	case pomodoro.StatusPaused:
		timerInfo = warningStyle.Render(fmt.Sprintf(" ⏸ %s %s", st.Mode.Label(), formatClock(st.RemainingSeconds)))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func formatIndex(f export.Format) int {
	for i, ef := range exportFormats {
		if ef == f {
			return i
		}
	}
	return 0
}

func (a App) renderExportPicker() string {
	var rows []string
	rows = append(rows, titleStyle.Render("Export Logs"), "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+strings.ToUpper(string(f))))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  writes to "+a.exportDir))
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format export.Format) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		logs, err := a.store.ListLogs(ctx, store.LogFilter{})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		titles, err := a.store.TaskTitles()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		path, err := export.Export(format, logs, titles, a.exportDir, a.now())
		if errors.Is(err, export.ErrNoLogs) {
			return statusMsg{text: "No logs to export."}
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("%s export error: %v", strings.ToUpper(string(format)), err), isError: true}
		}
		a.logger.Info("exported time logs", "path", path, "format", string(format), "count", len(logs))
		return exportDoneMsg{path: path}
	}
}
