package store

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidTask = errors.New("invalid task")

const taskColumns = `id, title, status, estimated_pomodoros, created_at, updated_at`

func validateTask(title string, estimate int) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if estimate < MinEstimate || estimate > MaxEstimate {
		return "", fmt.Errorf("%w: estimate must be between %d and %d, got %d", ErrInvalidTask, MinEstimate, MaxEstimate, estimate)
	}
	return title, nil
}

func (s *Store) CreateTask(title string, estimate int) (*Task, error) {
	title, err := validateTask(title, estimate)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO tasks (title, status, estimated_pomodoros, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		title, TaskTodo, estimate, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetTask(id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var t Task
	var status, createdAt, updatedAt string
	if err := row.Scan(&t.ID, &t.Title, &status, &t.EstimatedPomodoros, &createdAt, &updatedAt); err != nil {
		return Task{}, err
	}
	t.Status = TaskStatus(status)
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return t, nil
}

func (s *Store) GetTask(id int64) (*Task, error) {
	t, err := scanTask(s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, notFound(err))
	}
	return &t, nil
}

// ListTasks returns tasks in creation order. An empty status lists all.
func (s *Store) ListTasks(status TaskStatus) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// TaskTitles maps every task id to its title.
func (s *Store) TaskTitles() (map[int64]string, error) {
	rows, err := s.db.Query(`SELECT id, title FROM tasks`)
	if err != nil {
		return nil, fmt.Errorf("list task titles: %w", err)
	}
	defer rows.Close()

	titles := make(map[int64]string)
	for rows.Next() {
		var id int64
		var title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, err
		}
		titles[id] = title
	}
	return titles, rows.Err()
}

func (s *Store) UpdateTask(id int64, title string, estimate int) error {
	title, err := validateTask(title, estimate)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`UPDATE tasks SET title = ?, estimated_pomodoros = ?, updated_at = ? WHERE id = ?`,
		title, estimate, now, id,
	)
	return checkAffected(res, err, "update task", id)
}

func (s *Store) SetTaskStatus(id int64, status TaskStatus) error {
	if _, err := ParseTaskStatus(string(status)); err != nil {
		return fmt.Errorf("set task %d status: %w", id, err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`, status, now, id,
	)
	return checkAffected(res, err, "set task status", id)
}

// AdvanceTask moves a task to its next board status.
func (s *Store) AdvanceTask(id int64) (*Task, error) {
	t, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}
	if err := s.SetTaskStatus(id, t.Status.Next()); err != nil {
		return nil, err
	}
	return s.GetTask(id)
}

// DeleteTask removes the task. Its time logs are kept.
func (s *Store) DeleteTask(id int64) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	return checkAffected(res, err, "delete task", id)
}
