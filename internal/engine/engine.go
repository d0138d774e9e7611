// Package engine owns the authoritative countdown. It runs on its own
// goroutine, receives commands through a FIFO mailbox and reports every
// elapsed second on an ordered event channel, so a stalled caller never
// skews the count.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const defaultEventBuffer = 64

// Ticker is the subset of *time.Ticker the engine relies on.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker wraps time.NewTicker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Option configures an Engine.
type Option func(*Engine)

// WithInterval sets the length of one tick. Defaults to one second.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithTicker replaces the ticker factory.
func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(e *Engine) {
		if newTicker != nil {
			e.newTicker = newTicker
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine is the countdown actor. Send is safe from any goroutine; all
// countdown state is touched only by the goroutine running Run.
type Engine struct {
	interval  time.Duration
	newTicker func(time.Duration) Ticker
	logger    *slog.Logger

	inbox  *mailbox
	events chan Event
	once   sync.Once

	// owned by Run
	running   bool
	remaining int
	ticker    Ticker
	tickC     <-chan time.Time
}

// New creates an engine. Call Run to start processing commands.
func New(opts ...Option) *Engine {
	e := &Engine{
		interval:  time.Second,
		newTicker: NewTimeTicker,
		logger:    slog.New(slog.DiscardHandler),
		inbox:     newMailbox(),
		events:    make(chan Event, defaultEventBuffer),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Send enqueues cmd. It never blocks; commands are processed in send order.
func (e *Engine) Send(cmd Command) {
	e.inbox.push(cmd)
}

// Events returns the event stream. It is closed when Run returns.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// Run processes commands and ticks until ctx is cancelled. It must be
// called at most once; later calls return immediately.
func (e *Engine) Run(ctx context.Context) {
	first := false
	e.once.Do(func() { first = true })
	if !first {
		return
	}
	defer close(e.events)
	defer e.stopCountdown()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.inbox.ready:
			for _, cmd := range e.inbox.drain() {
				if !e.handle(ctx, cmd) {
					return
				}
			}
		case <-e.tickC:
			if !e.tick(ctx) {
				return
			}
		}
	}
}

// handle applies one command. It returns false once ctx is done.
func (e *Engine) handle(ctx context.Context, cmd Command) bool {
	if err := cmd.Validate(); err != nil {
		e.logger.Warn("ignoring command", "action", string(cmd.Action), "error", err)
		return true
	}

	switch cmd.Action {
	case ActionStart:
		if e.running {
			e.logger.Debug("start ignored, countdown already running", "remaining", e.remaining)
			return true
		}
		e.remaining = cmd.Payload.Time
		e.startCountdown()

	case ActionPause:
		if !e.running {
			return true
		}
		e.stopCountdown()

	case ActionResume:
		if e.running || e.remaining <= 0 {
			return true
		}
		e.startCountdown()

	case ActionReset, ActionStop:
		e.stopCountdown()
		e.remaining = 0
		if cmd.Payload != nil {
			e.remaining = cmd.Payload.Time
		}
		return e.emit(ctx, Event{Action: ActionTick, Time: e.remaining})
	}
	return true
}

func (e *Engine) tick(ctx context.Context) bool {
	if !e.running {
		return true
	}
	e.remaining--
	if e.remaining > 0 {
		return e.emit(ctx, Event{Action: ActionTick, Time: e.remaining})
	}

	e.remaining = 0
	e.stopCountdown()
	if !e.emit(ctx, Event{Action: ActionTick, Time: 0}) {
		return false
	}
	return e.emit(ctx, Event{Action: ActionComplete})
}

func (e *Engine) startCountdown() {
	e.ticker = e.newTicker(e.interval)
	e.tickC = e.ticker.C()
	e.running = true
}

// stopCountdown cancels the active ticker. Its channel is dropped from the
// select loop, so a value it already buffered is never delivered.
func (e *Engine) stopCountdown() {
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
	}
	e.tickC = nil
	e.running = false
}

func (e *Engine) emit(ctx context.Context, ev Event) bool {
	select {
	case e.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
