// Package pomodoro holds the session state machine that drives the engine:
// it owns the current mode, the completed focus counter and the settings,
// and turns engine events into log entries, alarms and mode changes.
package pomodoro

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sadopc/focusflow/internal/engine"
)

// DayKeyLayout formats the calendar day a log entry is grouped under.
const DayKeyLayout = "2006/01/02"

const logWriteTimeout = 5 * time.Second

// ErrTimerActive is returned by operations that need a stopped timer.
var ErrTimerActive = errors.New("timer is running or paused")

// DayKey returns the local calendar day of t.
func DayKey(t time.Time) string {
	return t.Local().Format(DayKeyLayout)
}

// Commander accepts engine commands. *engine.Engine implements it.
type Commander interface {
	Send(cmd engine.Command)
}

// LogEntry describes one completed phase.
type LogEntry struct {
	TaskID          *int64
	Mode            Mode
	StartAt         time.Time
	EndAt           time.Time
	DurationMinutes int
	Completed       bool
	DayKey          string
}

type LogStore interface {
	AppendLog(ctx context.Context, entry LogEntry) error
}

type Alarm interface {
	Alarm(ended Mode)
}

// Permission is the user's answer to the notification prompt.
type Permission int

const (
	PermissionDefault Permission = iota
	PermissionGranted
	PermissionDenied
)

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	}
	return "default"
}

type Notifier interface {
	Permission() Permission
	RequestPermission() Permission
	Notify(title, body string) error
}

// Display receives the timer state after every change.
type Display interface {
	Render(s State)
}

type Clock func() time.Time

// State is the snapshot handed to displays.
type State struct {
	Status                 Status
	Mode                   Mode
	RemainingSeconds       int
	TotalSeconds           int
	CompletedFocusSessions int
	Completed              bool
	ActiveTaskID           *int64
}

// Progress returns the elapsed fraction of the current phase in [0, 1].
func (s State) Progress() float64 {
	if s.TotalSeconds <= 0 {
		return 0
	}
	return float64(s.TotalSeconds-s.RemainingSeconds) / float64(s.TotalSeconds)
}

type Option func(*Controller)

func WithLogStore(ls LogStore) Option {
	return func(c *Controller) { c.logs = ls }
}

func WithAlarm(a Alarm) Option {
	return func(c *Controller) { c.alarm = a }
}

func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

func WithDisplay(d Display) Option {
	return func(c *Controller) { c.display = d }
}

func WithClock(now Clock) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller is not safe for concurrent use. It belongs to whichever loop
// receives user input and engine events.
type Controller struct {
	engine   Commander
	settings Settings
	state    State

	// echoes holds the payload of every RESET whose TICK has not come back
	// yet. Events queued ahead of that TICK belong to an abandoned countdown.
	echoes []int

	logs     LogStore
	alarm    Alarm
	notifier Notifier
	display  Display
	now      Clock
	logger   *slog.Logger
}

// NewController returns a stopped controller in focus mode. Invalid
// settings are replaced by DefaultSettings. No command is sent until the
// first operation.
func NewController(eng Commander, settings Settings, opts ...Option) *Controller {
	c := &Controller{
		engine: eng,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := settings.Validate(); err != nil {
		c.logger.Warn("using default timer settings", "error", err)
		settings = DefaultSettings()
	}
	c.settings = settings
	c.state.Mode = ModeFocus
	c.state.TotalSeconds = c.durationSeconds(ModeFocus)
	c.state.RemainingSeconds = c.state.TotalSeconds
	return c
}

func (c *Controller) State() State {
	s := c.state
	if s.ActiveTaskID != nil {
		id := *s.ActiveTaskID
		s.ActiveTaskID = &id
	}
	return s
}

func (c *Controller) Settings() Settings {
	return c.settings
}

// Start begins a stopped phase or resumes a paused one.
func (c *Controller) Start() {
	switch c.state.Status {
	case StatusRunning:
		return
	case StatusPaused:
		c.engine.Send(engine.Resume())
	case StatusStopped:
		if c.state.RemainingSeconds <= 0 {
			c.resetPhase()
		}
		c.engine.Send(engine.Start(c.state.RemainingSeconds))
	}
	c.state.Status = StatusRunning
	c.state.Completed = false
	c.logger.Debug("timer started", "mode", c.state.Mode.String(), "remaining", c.state.RemainingSeconds)
	c.render()
}

func (c *Controller) Pause() {
	if c.state.Status != StatusRunning {
		return
	}
	c.engine.Send(engine.Pause())
	c.state.Status = StatusPaused
	c.logger.Debug("timer paused", "mode", c.state.Mode.String(), "remaining", c.state.RemainingSeconds)
	c.render()
}

func (c *Controller) Toggle() {
	if c.state.Status == StatusRunning {
		c.Pause()
		return
	}
	c.Start()
}

// Reset discards progress on the current phase. Nothing is logged.
func (c *Controller) Reset() {
	c.state.Completed = false
	c.resetPhase()
	c.render()
}

// UpdateSettings stores s. A stopped timer is reset to the new duration;
// a running or paused one keeps counting and picks it up at its next reset.
func (c *Controller) UpdateSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.settings = s
	if c.state.Status == StatusStopped {
		c.Reset()
	}
	return nil
}

// SetMode switches to m. It fails while a phase is in progress.
func (c *Controller) SetMode(m Mode) error {
	if !m.valid() {
		return fmt.Errorf("set mode: unknown mode %d", int(m))
	}
	if c.state.Status != StatusStopped {
		return fmt.Errorf("set mode %s: %w", m, ErrTimerActive)
	}
	c.state.Mode = m
	c.Reset()
	return nil
}

// SetActiveTask attaches id to the logs of later completions. Nil clears it.
func (c *Controller) SetActiveTask(id *int64) {
	if id == nil {
		c.state.ActiveTaskID = nil
	} else {
		v := *id
		c.state.ActiveTaskID = &v
	}
	c.render()
}

// HandleEvent applies one engine event. Events the engine emitted before it
// processed the last RESET are dropped.
func (c *Controller) HandleEvent(ev engine.Event) {
	if len(c.echoes) > 0 {
		if ev.Action == engine.ActionTick && ev.Time == c.echoes[0] {
			c.echoes = c.echoes[1:]
		} else {
			c.logger.Debug("dropping stale engine event", "event", ev.String())
		}
		return
	}

	switch ev.Action {
	case engine.ActionTick:
		if c.state.Status == StatusStopped {
			return
		}
		remaining := ev.Time
		if remaining < 0 {
			remaining = 0
		}
		if remaining > c.state.TotalSeconds {
			remaining = c.state.TotalSeconds
		}
		c.state.RemainingSeconds = remaining
		c.render()

	case engine.ActionComplete:
		if c.state.Status == StatusStopped {
			c.logger.Debug("ignoring completion after reset", "mode", c.state.Mode.String())
			return
		}
		c.complete()

	default:
		c.logger.Warn("unexpected engine event", "event", ev.String())
	}
}

func (c *Controller) complete() {
	ended := c.state.Mode
	endAt := c.now()

	c.state.Status = StatusStopped
	c.state.Completed = true
	c.state.RemainingSeconds = 0

	c.signal(ended)
	c.appendLog(ended, endAt)

	if ended == ModeFocus {
		c.state.CompletedFocusSessions++
	}
	c.state.Mode = NextMode(ended, c.state.CompletedFocusSessions)
	c.logger.Info("phase completed",
		"ended", ended.String(),
		"next", c.state.Mode.String(),
		"completed_focus", c.state.CompletedFocusSessions,
	)

	c.resetPhase()
	c.render()
}

func (c *Controller) signal(ended Mode) {
	if c.alarm != nil {
		c.alarm.Alarm(ended)
	}
	if c.notifier == nil {
		return
	}
	perm := c.notifier.Permission()
	if perm == PermissionDefault {
		perm = c.notifier.RequestPermission()
	}
	if perm != PermissionGranted {
		return
	}
	title, body := completionMessage(ended)
	if err := c.notifier.Notify(title, body); err != nil {
		c.logger.Warn("notification failed", "error", err)
	}
}

func completionMessage(ended Mode) (string, string) {
	if ended == ModeFocus {
		return "FocusFlow", "Focus session completed. Time for a break."
	}
	return "FocusFlow", ended.Label() + " completed. Ready to focus?"
}

func (c *Controller) appendLog(ended Mode, endAt time.Time) {
	if c.logs == nil {
		return
	}
	minutes := c.settings.Minutes(ended)
	entry := LogEntry{
		Mode:            ended,
		StartAt:         endAt.Add(-time.Duration(minutes) * time.Minute),
		EndAt:           endAt,
		DurationMinutes: minutes,
		Completed:       true,
		DayKey:          DayKey(endAt),
	}
	if c.state.ActiveTaskID != nil {
		id := *c.state.ActiveTaskID
		entry.TaskID = &id
	}

	ctx, cancel := context.WithTimeout(context.Background(), logWriteTimeout)
	defer cancel()
	if err := c.logs.AppendLog(ctx, entry); err != nil {
		c.logger.Error("saving time log", "mode", ended.String(), "error", err)
	}
}

// resetPhase stops the engine and reloads the duration of the current mode.
func (c *Controller) resetPhase() {
	total := c.durationSeconds(c.state.Mode)
	c.state.Status = StatusStopped
	c.state.TotalSeconds = total
	c.state.RemainingSeconds = total
	c.engine.Send(engine.Reset(total))
	c.echoes = append(c.echoes, total)
}

func (c *Controller) durationSeconds(m Mode) int {
	return int(DurationFor(c.settings, m) / time.Second)
}

func (c *Controller) render() {
	if c.display != nil {
		c.display.Render(c.State())
	}
}
