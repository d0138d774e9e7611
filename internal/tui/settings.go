package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusflow/internal/config"
	"github.com/sadopc/focusflow/internal/pomodoro"
	"github.com/sadopc/focusflow/internal/store"
)

// settingRows fixes the order and labels of the settings list.
var settingRows = []struct {
	key   string
	label string
}{
	{store.SettingFocusMinutes, "Focus"},
	{store.SettingShortBreakMinutes, "Short break"},
	{store.SettingLongBreakMinutes, "Long break"},
	{store.SettingUsername, "Name"},
	{store.SettingTheme, "Theme"},
}

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	values     map[string]string
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	focus      *string
	shortBreak *string
	longBreak  *string
	username   *string
	theme      *string
}

func newSettingsModel(s *store.Store) settingsModel {
	f, sb, lb, u, th := "", "", "", "", ""
	return settingsModel{
		store:      s,
		values:     map[string]string{},
		focus:      &f,
		shortBreak: &sb,
		longBreak:  &lb,
		username:   &u,
		theme:      &th,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
	err      error
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, err := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings, err: err}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if _, ok := msg.(settingsDataMsg); !ok && s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		if msg.err != nil {
			return s, errStatus("Loading settings", msg.err)
		}
		values := make(map[string]string, len(msg.settings))
		for _, st := range msg.settings {
			values[st.Key] = st.Value
		}
		s.values = values
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) getVal(k, fallback string) string {
	if v, ok := s.values[k]; ok && v != "" {
		return v
	}
	return fallback
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	defaults := pomodoro.DefaultSettings()
	*s.focus = s.getVal(store.SettingFocusMinutes, strconv.Itoa(defaults.FocusMinutes))
	*s.shortBreak = s.getVal(store.SettingShortBreakMinutes, strconv.Itoa(defaults.ShortBreakMinutes))
	*s.longBreak = s.getVal(store.SettingLongBreakMinutes, strconv.Itoa(defaults.LongBreakMinutes))
	*s.username = s.getVal(store.SettingUsername, "")
	*s.theme = s.getVal(store.SettingTheme, currentTheme)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Focus (min)").Value(s.focus).Validate(validateMinutes),
			huh.NewInput().Title("Short break (min)").Value(s.shortBreak).Validate(validateMinutes),
			huh.NewInput().Title("Long break (min)").Value(s.longBreak).Validate(validateMinutes),
		).Title("Timer"),
		huh.NewGroup(
			huh.NewInput().Title("Your name").Placeholder(defaultUsername).Value(s.username),
			huh.NewSelect[string]().Title("Theme").
				Options(
					huh.NewOption("Dark", themeDark),
					huh.NewOption("Light", themeLight),
				).Value(s.theme),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validateMinutes(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 || n > config.MaxTimerMinutes {
		return fmt.Errorf("enter a number from 1 to %d", config.MaxTimerMinutes)
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		return s, s.save()
	}

	return s, cmd
}

// formSettings parses the timer fields of the form.
func (s settingsModel) formSettings() (pomodoro.Settings, error) {
	var out pomodoro.Settings
	fields := []struct {
		raw *string
		dst *int
	}{
		{s.focus, &out.FocusMinutes},
		{s.shortBreak, &out.ShortBreakMinutes},
		{s.longBreak, &out.LongBreakMinutes},
	}
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(*f.raw))
		if err != nil {
			return pomodoro.Settings{}, fmt.Errorf("parse minutes %q: %w", *f.raw, err)
		}
		*f.dst = n
	}
	return out, out.Validate()
}

func (s settingsModel) save() tea.Cmd {
	settings, err := s.formSettings()
	if err != nil {
		return errStatus("Saving settings", err)
	}
	username := strings.TrimSpace(*s.username)
	theme := *s.theme

	err = s.store.SetSettings(map[string]string{
		store.SettingFocusMinutes:      strconv.Itoa(settings.FocusMinutes),
		store.SettingShortBreakMinutes: strconv.Itoa(settings.ShortBreakMinutes),
		store.SettingLongBreakMinutes:  strconv.Itoa(settings.LongBreakMinutes),
		store.SettingUsername:          username,
		store.SettingTheme:             theme,
	})
	if err != nil {
		return errStatus("Saving settings", err)
	}
	return tea.Batch(
		s.refresh(),
		func() tea.Msg {
			return settingsSavedMsg{settings: settings, username: username, theme: theme}
		},
	)
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	rows := []string{title, ""}
	for _, r := range settingRows {
		label := lipgloss.NewStyle().Width(16).Render(r.label)
		value := highlightStyle.Render(formatSettingValue(r.key, s.values[r.key]))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.SettingFocusMinutes, store.SettingShortBreakMinutes, store.SettingLongBreakMinutes:
		if _, err := strconv.Atoi(v); err == nil {
			return v + " min"
		}
	case store.SettingUsername:
		if v == "" {
			return defaultUsername
		}
	}
	if v == "" {
		return "-"
	}
	return v
}
