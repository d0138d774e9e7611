package tui

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/focusflow/internal/engine"
	"github.com/sadopc/focusflow/internal/export"
	"github.com/sadopc/focusflow/internal/notify"
	"github.com/sadopc/focusflow/internal/pomodoro"
	"github.com/sadopc/focusflow/internal/store"
)

var fixedNow = time.Date(2026, 3, 9, 12, 0, 0, 0, time.Local)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type fakeEngine struct {
	sent   []engine.Command
	events chan engine.Event
}

func (f *fakeEngine) Send(cmd engine.Command) { f.sent = append(f.sent, cmd) }

func (f *fakeEngine) Events() <-chan engine.Event { return f.events }

func (f *fakeEngine) last(t *testing.T) engine.Command {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatal("no command sent")
	}
	return f.sent[len(f.sent)-1]
}

type testApp struct {
	app    App
	engine *fakeEngine
	store  *store.Store
	sink   *notify.Sink
	bell   *bytes.Buffer
	dir    string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWith(t, Options{})
}

// newTestAppWith fills in the collaborators and keeps the rest of opts.
func newTestAppWith(t *testing.T, opts Options) *testApp {
	t.Helper()
	t.Cleanup(func() { applyTheme(themeDark) })

	s := newTestStore(t)
	eng := &fakeEngine{events: make(chan engine.Event, 1)}
	bell := new(bytes.Buffer)
	sink := notify.New(true, notify.WithBell(bell))
	dir := t.TempDir()

	opts.Store = s
	opts.Engine = eng
	opts.Notifier = sink
	opts.Settings = pomodoro.DefaultSettings()
	opts.ExportDir = dir
	opts.Now = func() time.Time { return fixedNow }

	app := NewApp(opts)
	return &testApp{app: app, engine: eng, store: s, sink: sink, bell: bell, dir: dir}
}

func (ta *testApp) send(msg tea.Msg) tea.Cmd {
	m, cmd := ta.app.Update(msg)
	ta.app = m.(App)
	return cmd
}

func (ta *testApp) state() pomodoro.State {
	return ta.app.screen.last
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func tick(remaining int) engineEventMsg {
	return engineEventMsg{Action: engine.ActionTick, Time: remaining}
}

func complete() engineEventMsg {
	return engineEventMsg{Action: engine.ActionComplete}
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	ta := newTestApp(t)

	if ta.app.activeView != viewTimer {
		t.Fatal("default view should be the timer")
	}
	if ta.app.showHelp || ta.app.exportPicking {
		t.Fatal("help and export picker should be hidden by default")
	}
	st := ta.state()
	if st.Status != pomodoro.StatusStopped || st.Mode != pomodoro.ModeFocus || st.RemainingSeconds != 1500 {
		t.Fatalf("unexpected initial state %+v", st)
	}
	if len(ta.engine.sent) != 0 {
		t.Fatalf("no command should be sent before the first key, got %v", ta.engine.sent)
	}
}

func TestAppLoadingState(t *testing.T) {
	ta := newTestApp(t)
	if out := ta.app.View(); out != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", out)
	}
}

func TestAppViewStates(t *testing.T) {
	ta := newTestApp(t)
	ta.send(tea.WindowSizeMsg{Width: 120, Height: 40})

	for _, v := range []viewState{viewTimer, viewTasks, viewAnalytics, viewSettings} {
		ta.app.activeView = v
		if out := ta.app.View(); out == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	ta := newTestApp(t)
	ta.send(tea.WindowSizeMsg{Width: 120, Height: 40})

	header := ta.app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppTimerViewGreeting(t *testing.T) {
	ta := newTestApp(t)
	ta.send(tea.WindowSizeMsg{Width: 120, Height: 40})

	out := ta.app.View()
	if !strings.Contains(out, "Hello Guest, let's start working!") {
		t.Fatalf("timer view should greet the guest:\n%s", out)
	}
	if !strings.Contains(out, "25:00") {
		t.Fatalf("timer view should show the focus duration:\n%s", out)
	}
}

func TestAppStatusMessage(t *testing.T) {
	ta := newTestApp(t)
	ta.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	ta.send(statusMsg{text: "test status"})

	if !strings.Contains(ta.app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppTabSwitching(t *testing.T) {
	ta := newTestApp(t)

	ta.send(runes("2"))
	if ta.app.activeView != viewTasks {
		t.Fatalf("active view = %d, want tasks", ta.app.activeView)
	}
	ta.send(tea.KeyMsg{Type: tea.KeyTab})
	if ta.app.activeView != viewAnalytics {
		t.Fatalf("active view = %d, want analytics", ta.app.activeView)
	}
	ta.send(runes("4"))
	ta.send(tea.KeyMsg{Type: tea.KeyTab})
	if ta.app.activeView != viewTimer {
		t.Fatalf("tab should wrap to the timer, got %d", ta.app.activeView)
	}
}

// ============================================================
// Timer control
// ============================================================

func TestAppToggleStartsAndPauses(t *testing.T) {
	ta := newTestApp(t)

	ta.send(runes("s"))
	cmd := ta.engine.last(t)
	if cmd.Action != engine.ActionStart || cmd.Payload == nil || cmd.Payload.Time != 1500 {
		t.Fatalf("expected START 1500, got %+v", cmd)
	}
	if ta.state().Status != pomodoro.StatusRunning {
		t.Fatalf("status = %s, want running", ta.state().Status)
	}

	ta.send(runes("s"))
	if got := ta.engine.last(t); got.Action != engine.ActionPause {
		t.Fatalf("expected PAUSE, got %+v", got)
	}
	if ta.state().Status != pomodoro.StatusPaused {
		t.Fatalf("status = %s, want paused", ta.state().Status)
	}
}

func TestAppTickUpdatesCountdown(t *testing.T) {
	ta := newTestApp(t)
	ta.send(runes("s"))

	cmd := ta.send(tick(1499))
	if cmd == nil {
		t.Fatal("event bridge should be re-armed")
	}
	if ta.state().RemainingSeconds != 1499 {
		t.Fatalf("remaining = %d, want 1499", ta.state().RemainingSeconds)
	}
}

func TestAppResetKey(t *testing.T) {
	ta := newTestApp(t)
	ta.send(runes("s"))
	ta.send(tick(1200))

	ta.send(runes("r"))
	got := ta.engine.last(t)
	if got.Action != engine.ActionReset || got.Payload == nil || got.Payload.Time != 1500 {
		t.Fatalf("expected RESET 1500, got %+v", got)
	}
	if st := ta.state(); st.Status != pomodoro.StatusStopped || st.RemainingSeconds != 1500 {
		t.Fatalf("unexpected state after reset %+v", st)
	}
}

func TestAppModeKeyCyclesWhenStopped(t *testing.T) {
	ta := newTestApp(t)

	ta.send(runes("m"))
	if st := ta.state(); st.Mode != pomodoro.ModeShortBreak || st.RemainingSeconds != 300 {
		t.Fatalf("expected short break 300s, got %+v", st)
	}
	ta.send(runes("m"))
	ta.send(runes("m"))
	if ta.state().Mode != pomodoro.ModeFocus {
		t.Fatalf("mode should cycle back to focus, got %s", ta.state().Mode)
	}
}

func TestAppModeKeyRefusedWhileRunning(t *testing.T) {
	ta := newTestApp(t)
	ta.send(runes("s"))

	cmd := ta.send(runes("m"))
	if cmd == nil {
		t.Fatal("expected a status command")
	}
	msg, ok := cmd().(statusMsg)
	if !ok || !msg.isError {
		t.Fatalf("expected error status, got %#v", msg)
	}
	if ta.state().Mode != pomodoro.ModeFocus {
		t.Fatal("mode must not change while running")
	}
}

func TestAppCompletionLogsAndNotifies(t *testing.T) {
	ta := newTestApp(t)
	ta.send(runes("s"))
	ta.send(tick(1))
	ta.send(tick(0))
	ta.send(complete())

	logs, err := ta.store.ListLogs(context.Background(), store.LogFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(logs))
	}
	l := logs[0]
	if l.Mode != "focus" || l.DurationMinutes != 25 || !l.Completed || l.DayKey != pomodoro.DayKey(fixedNow) {
		t.Fatalf("unexpected log %+v", l)
	}

	st := ta.state()
	if st.Mode != pomodoro.ModeShortBreak || st.Status != pomodoro.StatusStopped || st.CompletedFocusSessions != 1 {
		t.Fatalf("unexpected state after completion %+v", st)
	}
	if ta.bell.String() != "\a" {
		t.Fatalf("bell = %q, want one alarm", ta.bell.String())
	}
	if !strings.Contains(ta.app.status, "Focus session completed") {
		t.Fatalf("status should carry the notification, got %q", ta.app.status)
	}
}

func TestAppCompletionAfterResetIgnored(t *testing.T) {
	ta := newTestApp(t)
	ta.send(runes("s"))
	ta.send(runes("r"))
	ta.send(complete())

	logs, _ := ta.store.ListLogs(context.Background(), store.LogFilter{})
	if len(logs) != 0 {
		t.Fatalf("reset phase must not be logged, got %d logs", len(logs))
	}
}

func TestAppResetAndRestartDropsQueuedCompletion(t *testing.T) {
	ta := newTestApp(t)
	ta.send(runes("s"))
	ta.send(tick(1))
	ta.send(runes("r"))
	ta.send(runes("s"))

	// Emitted by the engine before it read RESET.
	ta.send(tick(0))
	ta.send(complete())
	// Echo of the RESET.
	ta.send(tick(1500))

	logs, _ := ta.store.ListLogs(context.Background(), store.LogFilter{})
	if len(logs) != 0 {
		t.Fatalf("restarted phase must not be logged, got %d logs", len(logs))
	}
	st := ta.state()
	if st.Mode != pomodoro.ModeFocus || st.Status != pomodoro.StatusRunning || st.CompletedFocusSessions != 0 {
		t.Fatalf("unexpected state %+v", st)
	}
	if got := ta.engine.last(t); got.Action != engine.ActionStart {
		t.Fatalf("restart was cancelled by %+v", got)
	}
	if ta.bell.Len() != 0 {
		t.Fatal("no alarm expected")
	}
}

func TestAppCycleStartsFreshEachRun(t *testing.T) {
	ta := newTestAppWith(t, Options{CompletedToday: 3})
	ta.send(runes("s"))
	ta.send(complete())

	st := ta.state()
	if st.Mode != pomodoro.ModeShortBreak || st.CompletedFocusSessions != 1 {
		t.Fatalf("first completion of a run should lead to a short break, got %+v", st)
	}
	if out := ta.app.pomodoro.renderSessions(st); !strings.Contains(out, "4 today") {
		t.Fatalf("today counter should include earlier sessions: %q", out)
	}
}

func TestAppEngineClosed(t *testing.T) {
	ta := newTestApp(t)
	if cmd := ta.send(engineClosedMsg{}); cmd != nil {
		t.Fatal("closed engine should not re-arm the bridge")
	}
}

// ============================================================
// Tasks and settings wiring
// ============================================================

func TestAppActiveTaskAttachedToLogs(t *testing.T) {
	ta := newTestApp(t)
	task, err := ta.store.CreateTask("Write report", 2)
	if err != nil {
		t.Fatal(err)
	}

	id := task.ID
	ta.send(activeTaskMsg{id: &id, title: task.Title})
	if ta.app.pomodoro.activeTitle != "Write report" {
		t.Fatalf("active title = %q", ta.app.pomodoro.activeTitle)
	}

	ta.send(runes("s"))
	ta.send(complete())

	logs, _ := ta.store.ListLogs(context.Background(), store.LogFilter{})
	if len(logs) != 1 || logs[0].TaskID == nil || *logs[0].TaskID != id {
		t.Fatalf("log should reference task %d: %+v", id, logs)
	}
}

func TestAppTaskDeletedClearsActive(t *testing.T) {
	ta := newTestApp(t)
	id := int64(7)
	ta.send(activeTaskMsg{id: &id, title: "Gone"})

	ta.send(taskDeletedMsg{id: 8})
	if ta.app.ctrl.State().ActiveTaskID == nil {
		t.Fatal("deleting another task must keep the active one")
	}

	ta.send(taskDeletedMsg{id: 7})
	if ta.app.ctrl.State().ActiveTaskID != nil || ta.app.pomodoro.activeTitle != "" {
		t.Fatal("deleting the active task should clear it")
	}
}

func TestAppSettingsSaved(t *testing.T) {
	ta := newTestApp(t)
	ta.send(settingsSavedMsg{
		settings: pomodoro.Settings{FocusMinutes: 50, ShortBreakMinutes: 10, LongBreakMinutes: 20},
		username: "Ada",
		theme:    themeLight,
	})

	if ta.state().TotalSeconds != 3000 {
		t.Fatalf("stopped timer should pick up new focus length, got %d", ta.state().TotalSeconds)
	}
	if currentTheme != themeLight {
		t.Fatalf("theme = %q, want light", currentTheme)
	}
	if !strings.Contains(ta.app.pomodoro.greeting(), "Hello Ada") {
		t.Fatalf("greeting = %q", ta.app.pomodoro.greeting())
	}
}

func TestAppSettingsSavedWhileRunningKeepsCountdown(t *testing.T) {
	ta := newTestApp(t)
	ta.send(runes("s"))
	ta.send(tick(1400))

	ta.send(settingsSavedMsg{settings: pomodoro.Settings{FocusMinutes: 50, ShortBreakMinutes: 10, LongBreakMinutes: 20}})
	if st := ta.state(); st.Status != pomodoro.StatusRunning || st.RemainingSeconds != 1400 {
		t.Fatalf("running countdown must not be reset: %+v", st)
	}

	ta.send(runes("r"))
	if ta.state().RemainingSeconds != 3000 {
		t.Fatalf("reset should apply the new length, got %d", ta.state().RemainingSeconds)
	}
}

func TestAppThemeToggle(t *testing.T) {
	ta := newTestApp(t)

	ta.send(runes("t"))
	if currentTheme != themeLight {
		t.Fatalf("theme = %q, want light", currentTheme)
	}
	v, err := ta.store.GetSetting(store.SettingTheme)
	if err != nil || v != themeLight {
		t.Fatalf("theme setting = %q, %v", v, err)
	}
}

// ============================================================
// Export
// ============================================================

func TestAppExportPicker(t *testing.T) {
	ta := newTestApp(t)

	ta.send(runes("e"))
	if !ta.app.exportPicking || ta.app.exportCursor != 0 {
		t.Fatalf("picker should open on csv, cursor = %d", ta.app.exportCursor)
	}
	ta.send(runes("j"))
	ta.send(runes("j"))
	ta.send(runes("j"))
	if ta.app.exportCursor != len(exportFormats)-1 {
		t.Fatalf("cursor = %d, want %d", ta.app.exportCursor, len(exportFormats)-1)
	}
	ta.send(tea.KeyMsg{Type: tea.KeyEsc})
	if ta.app.exportPicking {
		t.Fatal("esc should close the picker")
	}
}

func TestAppExportNoLogs(t *testing.T) {
	ta := newTestApp(t)

	msg := ta.app.doExport(export.FormatCSV)()
	st, ok := msg.(statusMsg)
	if !ok || st.text != "No logs to export." || st.isError {
		t.Fatalf("unexpected message %#v", msg)
	}
	entries, _ := os.ReadDir(ta.dir)
	if len(entries) != 0 {
		t.Fatal("no file should be written")
	}
}

func TestAppExportWritesFile(t *testing.T) {
	ta := newTestApp(t)
	ta.send(runes("s"))
	ta.send(complete())

	for _, f := range exportFormats {
		msg := ta.app.doExport(f)()
		done, ok := msg.(exportDoneMsg)
		if !ok {
			t.Fatalf("%s: unexpected message %#v", f, msg)
		}
		if filepath.Dir(done.path) != ta.dir || !strings.HasPrefix(filepath.Base(done.path), "focusflow_logs_2026-03-09") {
			t.Fatalf("%s: unexpected path %q", f, done.path)
		}
		if _, err := os.Stat(done.path); err != nil {
			t.Fatal(err)
		}
	}
}

// ============================================================
// Engine bridge and adapters
// ============================================================

func TestWaitForEvent(t *testing.T) {
	events := make(chan engine.Event, 1)
	events <- engine.Event{Action: engine.ActionTick, Time: 42}

	msg := waitForEvent(events)()
	ev, ok := msg.(engineEventMsg)
	if !ok || ev.Action != engine.ActionTick || ev.Time != 42 {
		t.Fatalf("unexpected message %#v", msg)
	}

	close(events)
	if _, ok := waitForEvent(events)().(engineClosedMsg); !ok {
		t.Fatal("closed channel should produce engineClosedMsg")
	}
}

func TestLogStoreAppendLog(t *testing.T) {
	s := newTestStore(t)
	ls := logStore{store: s}
	tid := int64(3)

	err := ls.AppendLog(context.Background(), pomodoro.LogEntry{
		TaskID:          &tid,
		Mode:            pomodoro.ModeLongBreak,
		StartAt:         fixedNow.Add(-15 * time.Minute),
		EndAt:           fixedNow,
		DurationMinutes: 15,
		Completed:       true,
		DayKey:          pomodoro.DayKey(fixedNow),
	})
	if err != nil {
		t.Fatal(err)
	}

	logs, _ := s.ListLogs(context.Background(), store.LogFilter{})
	if len(logs) != 1 || logs[0].Mode != "long_break" || *logs[0].TaskID != 3 {
		t.Fatalf("unexpected logs %+v", logs)
	}
}

func TestScreenRender(t *testing.T) {
	var scr screen
	scr.Render(pomodoro.State{RemainingSeconds: 10})
	scr.Render(pomodoro.State{RemainingSeconds: 9})
	if scr.renders != 2 || scr.last.RemainingSeconds != 9 {
		t.Fatalf("unexpected screen %+v", scr)
	}
}

// ============================================================
// Task board
// ============================================================

func loadTasks(t *testing.T, m tasksModel) tasksModel {
	t.Helper()
	msg := m.refresh()()
	m, _ = m.update(msg)
	return m
}

func TestTasksSetActive(t *testing.T) {
	s := newTestStore(t)
	s.CreateTask("First", 1)
	s.CreateTask("Second", 3)

	m := loadTasks(t, newTasksModel(s))
	if len(m.tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(m.tasks))
	}

	m, _ = m.update(runes("j"))
	m, cmd := m.update(tea.KeyMsg{Type: tea.KeyEnter})
	msg, ok := cmd().(activeTaskMsg)
	if !ok || msg.id == nil || *msg.id != m.tasks[1].ID || msg.title != "Second" {
		t.Fatalf("unexpected message %#v", msg)
	}
	if !m.isActive(m.tasks[1].ID) {
		t.Fatal("second task should be active")
	}

	m, cmd = m.update(tea.KeyMsg{Type: tea.KeyEnter})
	msg = cmd().(activeTaskMsg)
	if msg.id != nil || m.activeID != nil {
		t.Fatal("selecting the active task again should clear it")
	}
}

func TestTasksAdvance(t *testing.T) {
	s := newTestStore(t)
	task, _ := s.CreateTask("Only", 1)

	m := loadTasks(t, newTasksModel(s))
	m, _ = m.update(runes("a"))

	got, err := s.GetTask(task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != store.TaskDoing {
		t.Fatalf("status = %s, want doing", got.Status)
	}
}

func TestTasksDeleteActive(t *testing.T) {
	s := newTestStore(t)
	task, _ := s.CreateTask("Doomed", 1)

	m := loadTasks(t, newTasksModel(s))
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd := m.update(runes("d"))
	if cmd == nil {
		t.Fatal("delete should return commands")
	}
	if m.activeID != nil {
		t.Fatal("deleted task should no longer be active")
	}
	if _, err := s.GetTask(task.ID); err == nil {
		t.Fatal("task should be deleted")
	}
}

func TestTasksEmptyBoardKeys(t *testing.T) {
	m := loadTasks(t, newTasksModel(newTestStore(t)))
	for _, k := range []tea.KeyMsg{runes("a"), runes("d"), {Type: tea.KeyEnter}} {
		if _, cmd := m.update(k); cmd != nil {
			t.Fatalf("key %q on empty board should do nothing", k.String())
		}
	}
}

func TestTasksCreateTask(t *testing.T) {
	s := newTestStore(t)
	m := newTasksModel(s)

	if cmd := m.createTask("  Plan week ", "3"); cmd == nil {
		t.Fatal("expected refresh command")
	}
	tasks, _ := s.ListTasks("")
	if len(tasks) != 1 || tasks[0].Title != "Plan week" || tasks[0].EstimatedPomodoros != 3 {
		t.Fatalf("unexpected tasks %+v", tasks)
	}

	msg := m.createTask("Too big", "11")().(statusMsg)
	if !msg.isError {
		t.Fatal("estimate out of range should report an error")
	}
}

func TestTaskFormValidators(t *testing.T) {
	if validateTitle("   ") == nil {
		t.Fatal("blank title should fail")
	}
	if validateTitle("ok") != nil {
		t.Fatal("title should pass")
	}
	for in, ok := range map[string]bool{"1": true, "10": true, "0": false, "11": false, "x": false, " 4 ": true} {
		if (validateEstimate(in) == nil) != ok {
			t.Fatalf("validateEstimate(%q) ok = %v", in, !ok)
		}
	}
}

// ============================================================
// Settings view
// ============================================================

func TestSettingsSave(t *testing.T) {
	t.Cleanup(func() { applyTheme(themeDark) })
	s := newTestStore(t)
	m := newSettingsModel(s)
	*m.focus, *m.shortBreak, *m.longBreak = "45", "8", "20"
	*m.username, *m.theme = " Ada ", themeLight

	if cmd := m.save(); cmd == nil {
		t.Fatal("save should return commands")
	}

	want := map[string]string{
		store.SettingFocusMinutes:      "45",
		store.SettingShortBreakMinutes: "8",
		store.SettingLongBreakMinutes:  "20",
		store.SettingUsername:          "Ada",
		store.SettingTheme:             themeLight,
	}
	for k, v := range want {
		got, err := s.GetSetting(k)
		if err != nil || got != v {
			t.Fatalf("setting %s = %q, %v; want %q", k, got, err, v)
		}
	}
}

func TestSettingsSaveRejectsBadMinutes(t *testing.T) {
	s := newTestStore(t)
	m := newSettingsModel(s)
	*m.focus, *m.shortBreak, *m.longBreak = "abc", "5", "15"

	msg := m.save()().(statusMsg)
	if !msg.isError {
		t.Fatal("expected an error status")
	}
	if _, err := s.GetSetting(store.SettingFocusMinutes); err == nil {
		t.Fatal("nothing should be written")
	}
}

func TestSettingsRefreshLoadsValues(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting(store.SettingUsername, "Grace")

	m := newSettingsModel(s)
	m, _ = m.update(m.refresh()())
	if m.values[store.SettingUsername] != "Grace" {
		t.Fatalf("values = %v", m.values)
	}
}

func TestValidateMinutes(t *testing.T) {
	for in, ok := range map[string]bool{"1": true, "240": true, "0": false, "241": false, "": false} {
		if (validateMinutes(in) == nil) != ok {
			t.Fatalf("validateMinutes(%q) ok = %v", in, !ok)
		}
	}
}

func TestFormatSettingValue(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{store.SettingFocusMinutes, "25", "25 min"},
		{store.SettingUsername, "", defaultUsername},
		{store.SettingUsername, "Ada", "Ada"},
		{store.SettingTheme, "", "-"},
		{store.SettingTheme, "light", "light"},
	}
	for _, tt := range tests {
		if got := formatSettingValue(tt.key, tt.value); got != tt.want {
			t.Errorf("formatSettingValue(%q, %q) = %q, want %q", tt.key, tt.value, got, tt.want)
		}
	}
}

// ============================================================
// Analytics view
// ============================================================

func TestAnalyticsRefresh(t *testing.T) {
	s := newTestStore(t)
	task, _ := s.CreateTask("Deep work", 4)
	for i := 0; i < 4; i++ {
		end := fixedNow.Add(time.Duration(-i) * time.Hour)
		_, err := s.CreateLog(context.Background(), store.TimeLog{
			TaskID:          &task.ID,
			Mode:            "focus",
			StartAt:         end.Add(-30 * time.Minute),
			EndAt:           end,
			DurationMinutes: 30,
			Completed:       true,
			DayKey:          pomodoro.DayKey(fixedNow),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	m := newAnalyticsModel(s, func() time.Time { return fixedNow })
	m.setSize(120, 40)
	m, _ = m.update(m.refresh()())

	if !m.loaded {
		t.Fatal("report should be loaded")
	}
	today := m.report.Today
	if today.FocusMinutes != 120 || today.Score != 50 || today.FocusSessions != 4 {
		t.Fatalf("unexpected summary %+v", today)
	}
	if len(m.report.Week) != 7 {
		t.Fatalf("week has %d days", len(m.report.Week))
	}
	out := m.view()
	if !strings.Contains(out, "Focus score") || !strings.Contains(out, "Deep work") {
		t.Fatalf("view missing summary:\n%s", out)
	}
}

func TestAnalyticsEmpty(t *testing.T) {
	m := newAnalyticsModel(newTestStore(t), func() time.Time { return fixedNow })
	m.setSize(80, 24)
	if !strings.Contains(m.view(), "Loading...") {
		t.Fatal("unloaded view should say loading")
	}
	m, _ = m.update(m.refresh()())
	if m.report.Today.Score != 0 {
		t.Fatalf("score = %d, want 0", m.report.Today.Score)
	}
	if !strings.Contains(m.view(), "No task time logged today") {
		t.Fatal("empty distribution should be explained")
	}
}

// ============================================================
// Timer view helpers
// ============================================================

func TestRenderSessions(t *testing.T) {
	p := pomodoroModel{}
	out := p.renderSessions(pomodoro.State{CompletedFocusSessions: 4, Mode: pomodoro.ModeLongBreak})
	if strings.Count(out, "●") != 4 {
		t.Fatalf("long break after four sessions should fill the cycle: %q", out)
	}
	out = p.renderSessions(pomodoro.State{CompletedFocusSessions: 5, Mode: pomodoro.ModeShortBreak})
	if strings.Count(out, "●") != 1 {
		t.Fatalf("fifth session starts a new cycle: %q", out)
	}

	p.earlierToday = 2
	if out := p.renderSessions(pomodoro.State{CompletedFocusSessions: 1}); !strings.Contains(out, "3 today") {
		t.Fatalf("counter should add earlier sessions: %q", out)
	}
}

func TestRenderBarBounds(t *testing.T) {
	for _, f := range []float64{-1, 0, 0.5, 1, 2} {
		if out := renderBar(f, 10, colorPrimary); out == "" {
			t.Fatalf("renderBar(%v) empty", f)
		}
	}
}

func TestGreetingDefaultsToGuest(t *testing.T) {
	if got := (pomodoroModel{username: "  "}).greeting(); got != "Hello Guest, let's start working!" {
		t.Fatalf("greeting = %q", got)
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatClock(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{-5, "00:00"},
		{0, "00:00"},
		{59, "00:59"},
		{1500, "25:00"},
		{3661, "61:01"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.secs); got != tt.want {
			t.Errorf("formatClock(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := map[int]string{0: "0m", 45: "45m", 60: "1h 00m", 125: "2h 05m"}
	for in, want := range tests {
		if got := formatMinutes(in); got != want {
			t.Errorf("formatMinutes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("a long task title", 6); got != "a lon…" {
		t.Fatalf("truncate = %q", got)
	}
}

func TestFormatIndex(t *testing.T) {
	if formatIndex(export.FormatYAML) != 2 || formatIndex("xml") != 0 {
		t.Fatal("unexpected format index")
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles
// ============================================================

func TestApplyTheme(t *testing.T) {
	t.Cleanup(func() { applyTheme(themeDark) })

	applyTheme(themeLight)
	if currentTheme != themeLight || colorPrimary != palettes[themeLight].primary {
		t.Fatal("light palette not applied")
	}
	applyTheme("neon")
	if currentTheme != themeDark || colorPrimary != palettes[themeDark].primary {
		t.Fatal("unknown theme should fall back to dark")
	}
	if nextTheme(themeDark) != themeLight || nextTheme(themeLight) != themeDark {
		t.Fatal("nextTheme should alternate")
	}
}

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"timer", func() string { return timerStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"accent", func() string { return accentStyle.Render("test") }},
		{"success", func() string { return successStyle.Render("test") }},
		{"warning", func() string { return warningStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"highlight", func() string { return highlightStyle.Render("test") }},
		{"header", func() string { return headerStyle.Render("test") }},
		{"footer", func() string { return footerStyle.Render("test") }},
		{"selectedItem", func() string { return selectedItemStyle.Render("test") }},
		{"normalItem", func() string { return normalItemStyle.Render("test") }},
	}
	for _, s := range styles {
		if out := s.fn(); out == "" {
			t.Fatalf("style %s rendered empty", s.name)
		}
	}
}
