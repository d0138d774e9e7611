// Package notify implements the completion alarm and notification sinks
// for a terminal session. Notifications are queued and drained by the UI
// loop; nothing here calls back into it.
package notify

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/sadopc/focusflow/internal/pomodoro"
)

var ErrPermissionDenied = errors.New("notifications not permitted")

const bell = "\a"

// Notification is one queued message.
type Notification struct {
	Title string
	Body  string
	At    time.Time
}

type Option func(*Sink)

// WithBell rings the terminal bell on w for every alarm. A nil writer
// disables the bell.
func WithBell(w io.Writer) Option {
	return func(s *Sink) { s.bell = w }
}

// WithPrompt replaces the permission prompt. It is asked at most once.
func WithPrompt(prompt func() pomodoro.Permission) Option {
	return func(s *Sink) {
		if prompt != nil {
			s.prompt = prompt
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Sink) {
		if now != nil {
			s.now = now
		}
	}
}

// Sink implements pomodoro.Alarm and pomodoro.Notifier.
type Sink struct {
	mu      sync.Mutex
	enabled bool
	perm    pomodoro.Permission
	prompt  func() pomodoro.Permission
	queue   []Notification
	alarms  int

	bell   io.Writer
	now    func() time.Time
	logger *slog.Logger
}

// New returns a sink. When enabled is false every permission request is
// denied and nothing is queued.
func New(enabled bool, opts ...Option) *Sink {
	s := &Sink{
		enabled: enabled,
		perm:    pomodoro.PermissionDefault,
		prompt:  func() pomodoro.Permission { return pomodoro.PermissionGranted },
		now:     time.Now,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if !enabled {
		s.perm = pomodoro.PermissionDenied
	}
	return s
}

func (s *Sink) Alarm(ended pomodoro.Mode) {
	s.mu.Lock()
	s.alarms++
	w := s.bell
	s.mu.Unlock()

	s.logger.Debug("alarm", "ended", ended.String())
	if w == nil {
		return
	}
	if _, err := io.WriteString(w, bell); err != nil {
		s.logger.Warn("ringing bell", "error", err)
	}
}

// alarmCount returns how many alarms fired.
func (s *Sink) alarmCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alarms
}

func (s *Sink) Permission() pomodoro.Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perm
}

// RequestPermission asks once and remembers the answer.
func (s *Sink) RequestPermission() pomodoro.Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.perm != pomodoro.PermissionDefault {
		return s.perm
	}
	s.perm = s.prompt()
	s.logger.Info("notification permission", "permission", s.perm.String())
	return s.perm
}

func (s *Sink) Notify(title, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.perm != pomodoro.PermissionGranted {
		return ErrPermissionDenied
	}
	s.queue = append(s.queue, Notification{Title: title, Body: body, At: s.now()})
	return nil
}

// Drain returns and clears the queued notifications.
func (s *Sink) Drain() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queue
	s.queue = nil
	return q
}
