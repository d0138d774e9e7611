package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusflow/internal/store"
)

type tasksModel struct {
	store  *store.Store
	width  int
	height int

	tasks    []store.Task
	cursor   int
	activeID *int64

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formTitle    *string
	formEstimate *string
}

func newTasksModel(s *store.Store) tasksModel {
	title, estimate := "", "1"
	return tasksModel{
		store:        s,
		formTitle:    &title,
		formEstimate: &estimate,
	}
}

func (t *tasksModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

type tasksDataMsg struct {
	tasks []store.Task
	err   error
}

func (t tasksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		tasks, err := t.store.ListTasks("")
		return tasksDataMsg{tasks: tasks, err: err}
	}
}

func (t tasksModel) isActive(id int64) bool {
	return t.activeID != nil && *t.activeID == id
}

func (t tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if _, ok := msg.(tasksDataMsg); !ok && t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		if msg.err != nil {
			return t, errStatus("Loading tasks", msg.err)
		}
		t.tasks = msg.tasks
		if t.cursor >= len(t.tasks) {
			t.cursor = max(0, len(t.tasks)-1)
		}
		return t, nil

	case tea.KeyMsg:
		return t.updateList(msg)
	}
	return t, nil
}

func (t tasksModel) updateList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if t.cursor > 0 {
			t.cursor--
		}
	case key.Matches(msg, keys.Down):
		if t.cursor < len(t.tasks)-1 {
			t.cursor++
		}
	case key.Matches(msg, keys.New):
		return t.showNewTaskForm()
	case key.Matches(msg, keys.Enter):
		if len(t.tasks) == 0 {
			return t, nil
		}
		task := t.tasks[t.cursor]
		if t.isActive(task.ID) {
			t.activeID = nil
			return t, func() tea.Msg { return activeTaskMsg{} }
		}
		id := task.ID
		t.activeID = &id
		return t, func() tea.Msg { return activeTaskMsg{id: &id, title: task.Title} }
	case key.Matches(msg, keys.Advance):
		if len(t.tasks) == 0 {
			return t, nil
		}
		if _, err := t.store.AdvanceTask(t.tasks[t.cursor].ID); err != nil {
			return t, errStatus("Updating task", err)
		}
		return t, t.refresh()
	case key.Matches(msg, keys.Delete):
		if len(t.tasks) == 0 {
			return t, nil
		}
		task := t.tasks[t.cursor]
		if err := t.store.DeleteTask(task.ID); err != nil {
			return t, errStatus("Deleting task", err)
		}
		if t.isActive(task.ID) {
			t.activeID = nil
		}
		return t, tea.Batch(
			t.refresh(),
			func() tea.Msg { return taskDeletedMsg{id: task.ID} },
		)
	}
	return t, nil
}

func (t tasksModel) showNewTaskForm() (tasksModel, tea.Cmd) {
	*t.formTitle = ""
	*t.formEstimate = "1"

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(t.formTitle).Validate(validateTitle),
			huh.NewInput().
				Title(fmt.Sprintf("Estimated pomodoros (%d-%d)", store.MinEstimate, store.MaxEstimate)).
				Value(t.formEstimate).
				Validate(validateEstimate),
		),
	).WithShowHelp(true).WithShowErrors(true)

	t.formActive = true
	return t, t.form.Init()
}

func validateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("title is required")
	}
	return nil
}

func validateEstimate(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < store.MinEstimate || n > store.MaxEstimate {
		return fmt.Errorf("enter a number from %d to %d", store.MinEstimate, store.MaxEstimate)
	}
	return nil
}

func (t tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.formActive = false
		t.form = nil
		return t, t.createTask(*t.formTitle, *t.formEstimate)
	}

	return t, cmd
}

func (t tasksModel) createTask(title, estimate string) tea.Cmd {
	n, err := strconv.Atoi(strings.TrimSpace(estimate))
	if err != nil {
		return errStatus("Adding task", err)
	}
	task, err := t.store.CreateTask(title, n)
	if err != nil {
		return errStatus("Adding task", err)
	}
	return tea.Batch(
		t.refresh(),
		func() tea.Msg { return statusMsg{text: "Added " + task.Title} },
	)
}

func errStatus(action string, err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("%s: %v", action, err), isError: true}
	}
}

func (t tasksModel) view() string {
	w := t.width - 4

	if t.formActive && t.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Task"), "", t.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Tasks")
	if len(t.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks yet. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-32s %-7s %s", "", "Title", "Status", "Est.")))

	for i, task := range t.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == t.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		marker := " "
		if t.isActive(task.ID) {
			marker = accentStyle.Render("★")
		}
		row := style.Render(fmt.Sprintf("%s%s  %-32s ", cursor, marker, truncate(task.Title, 32))) +
			statusStyle(task.Status).Render(fmt.Sprintf("%-7s", task.Status)) +
			mutedStyle.Render(fmt.Sprintf(" %d", task.EstimatedPomodoros))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  enter: set active  a: advance  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func statusStyle(s store.TaskStatus) lipgloss.Style {
	switch s {
	case store.TaskDoing:
		return warningStyle
	case store.TaskDone:
		return successStyle
	}
	return mutedStyle
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
