package config

import (
	"fmt"
	"slices"
	"strings"
)

// MaxTimerMinutes bounds every timer duration.
const MaxTimerMinutes = 240

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

func ValidThemes() []string {
	return []string{"dark", "light"}
}

func ValidExportFormats() []string {
	return []string{"csv", "json", "yaml"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateTimer()...)
	errors = append(errors, c.validateExport()...)
	errors = append(errors, c.validateTUI()...)
	return errors
}

func (c *Config) validateLogging() []ValidationError {
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		return []ValidationError{{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		}}
	}
	return nil
}

func (c *Config) validateTimer() []ValidationError {
	var errors []ValidationError
	fields := []struct {
		name  string
		value int
	}{
		{"timer.focus_minutes", c.Timer.FocusMinutes},
		{"timer.short_break_minutes", c.Timer.ShortBreakMinutes},
		{"timer.long_break_minutes", c.Timer.LongBreakMinutes},
	}
	for _, f := range fields {
		switch {
		case f.value <= 0:
			errors = append(errors, ValidationError{Field: f.name, Value: f.value, Message: "must be positive"})
		case f.value > MaxTimerMinutes:
			errors = append(errors, ValidationError{
				Field:   f.name,
				Value:   f.value,
				Message: fmt.Sprintf("exceeds maximum of %d minutes", MaxTimerMinutes),
			})
		}
	}
	return errors
}

func (c *Config) validateExport() []ValidationError {
	if c.Export.Format != "" && !slices.Contains(ValidExportFormats(), c.Export.Format) {
		return []ValidationError{{
			Field:   "export.format",
			Value:   c.Export.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidExportFormats(), ", ")),
		}}
	}
	return nil
}

func (c *Config) validateTUI() []ValidationError {
	if c.TUI.Theme != "" && !slices.Contains(ValidThemes(), c.TUI.Theme) {
		return []ValidationError{{
			Field:   "tui.theme",
			Value:   c.TUI.Theme,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidThemes(), ", ")),
		}}
	}
	return nil
}
