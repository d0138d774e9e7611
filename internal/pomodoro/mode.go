package pomodoro

import (
	"fmt"
	"strings"
)

// LongBreakEvery is the number of completed focus phases between long breaks.
const LongBreakEvery = 4

type Mode int

const (
	ModeFocus Mode = iota
	ModeShortBreak
	ModeLongBreak
)

// Modes lists every mode in rotation order.
var Modes = []Mode{ModeFocus, ModeShortBreak, ModeLongBreak}

// String returns the stored form of m.
func (m Mode) String() string {
	switch m {
	case ModeFocus:
		return "focus"
	case ModeShortBreak:
		return "short_break"
	case ModeLongBreak:
		return "long_break"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Label returns the human-readable name of m.
func (m Mode) Label() string {
	switch m {
	case ModeFocus:
		return "Focus"
	case ModeShortBreak:
		return "Short Break"
	case ModeLongBreak:
		return "Long Break"
	}
	return m.String()
}

func (m Mode) valid() bool {
	return m >= ModeFocus && m <= ModeLongBreak
}

// ParseMode accepts the stored form as well as "short" and "long".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "focus":
		return ModeFocus, nil
	case "short_break", "short", "shortbreak":
		return ModeShortBreak, nil
	case "long_break", "long", "longbreak":
		return ModeLongBreak, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// NextMode returns the mode that follows ended. completedFocus is the
// focus counter after it has been incremented for ended.
func NextMode(ended Mode, completedFocus int) Mode {
	switch ended {
	case ModeFocus:
		if completedFocus > 0 && completedFocus%LongBreakEvery == 0 {
			return ModeLongBreak
		}
		return ModeShortBreak
	case ModeShortBreak, ModeLongBreak:
		return ModeFocus
	}
	panic(fmt.Sprintf("pomodoro: next mode for %v", ended))
}

type Status int

const (
	StatusStopped Status = iota
	StatusRunning
	StatusPaused
)

func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}
