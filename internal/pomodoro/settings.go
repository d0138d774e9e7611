package pomodoro

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Settings holds the configured length of each mode in minutes.
type Settings struct {
	FocusMinutes      int
	ShortBreakMinutes int
	LongBreakMinutes  int
}

func DefaultSettings() Settings {
	return Settings{FocusMinutes: 25, ShortBreakMinutes: 5, LongBreakMinutes: 15}
}

func (s Settings) Validate() error {
	var errs []error
	if s.FocusMinutes <= 0 {
		errs = append(errs, fmt.Errorf("focus minutes must be positive, got %d", s.FocusMinutes))
	}
	if s.ShortBreakMinutes <= 0 {
		errs = append(errs, fmt.Errorf("short break minutes must be positive, got %d", s.ShortBreakMinutes))
	}
	if s.LongBreakMinutes <= 0 {
		errs = append(errs, fmt.Errorf("long break minutes must be positive, got %d", s.LongBreakMinutes))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
	}
	return nil
}

// Minutes returns the configured minutes for m. It panics on a mode
// outside the enum.
func (s Settings) Minutes(m Mode) int {
	switch m {
	case ModeFocus:
		return s.FocusMinutes
	case ModeShortBreak:
		return s.ShortBreakMinutes
	case ModeLongBreak:
		return s.LongBreakMinutes
	}
	panic(fmt.Sprintf("pomodoro: no duration for %v", m))
}

func DurationFor(s Settings, m Mode) time.Duration {
	return time.Duration(s.Minutes(m)) * time.Minute
}
