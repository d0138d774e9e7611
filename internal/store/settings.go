package store

import (
	"errors"
	"fmt"
	"strconv"
)

// Keys of the settings table.
const (
	SettingFocusMinutes      = "focus_minutes"
	SettingShortBreakMinutes = "short_break_minutes"
	SettingLongBreakMinutes  = "long_break_minutes"
	SettingUsername          = "username"
	SettingTheme             = "theme"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, notFound(err))
	}
	return value, nil
}

// GetIntSetting returns the setting parsed as an integer, or fallback when
// it is missing.
func (s *Store) GetIntSetting(key string, fallback int) (int, error) {
	v, err := s.GetSetting(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fallback, nil
		}
		return fallback, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("setting %q: %w", key, err)
	}
	return n, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// SetSettings writes all values in one transaction.
func (s *Store) SetSettings(values map[string]string) error {
	return s.withTx(func(exec execer) error {
		for k, v := range values {
			if _, err := exec.Exec(
				`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
				k, v,
			); err != nil {
				return fmt.Errorf("set setting %q: %w", k, err)
			}
		}
		return nil
	})
}

// SeedSettings stores defaults for keys that have no value yet.
func (s *Store) SeedSettings(defaults map[string]string) error {
	return s.withTx(func(exec execer) error {
		for k, v := range defaults {
			if _, err := exec.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, k, v); err != nil {
				return fmt.Errorf("seed setting %q: %w", k, err)
			}
		}
		return nil
	})
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}
