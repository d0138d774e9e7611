package store

import (
	"fmt"
	"time"
)

type TaskStatus string

const (
	TaskTodo  TaskStatus = "todo"
	TaskDoing TaskStatus = "doing"
	TaskDone  TaskStatus = "done"
)

// Next returns the status that follows s on the board: todo, doing, done
// and back to todo.
func (s TaskStatus) Next() TaskStatus {
	switch s {
	case TaskTodo:
		return TaskDoing
	case TaskDoing:
		return TaskDone
	default:
		return TaskTodo
	}
}

func ParseTaskStatus(v string) (TaskStatus, error) {
	switch st := TaskStatus(v); st {
	case TaskTodo, TaskDoing, TaskDone:
		return st, nil
	}
	return "", fmt.Errorf("unknown task status %q", v)
}

const (
	MinEstimate = 1
	MaxEstimate = 10
)

type Task struct {
	ID                 int64
	Title              string
	Status             TaskStatus
	EstimatedPomodoros int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TimeLog records one completed phase. Mode holds the stored form of the
// phase's mode ("focus", "short_break", "long_break").
type TimeLog struct {
	ID              int64
	TaskID          *int64
	Mode            string
	StartAt         time.Time
	EndAt           time.Time
	DurationMinutes int
	Completed       bool
	DayKey          string
	CreatedAt       time.Time
}

type Setting struct {
	Key   string
	Value string
}

// LogFilter is used to filter time logs in queries. Day keys compare
// lexically, FromDay inclusive and ToDay inclusive.
type LogFilter struct {
	DayKey  string
	FromDay string
	ToDay   string
	Mode    string
	TaskID  *int64
	Limit   int
}

// DailyTotal aggregates completed logs of one mode per day.
type DailyTotal struct {
	DayKey   string
	Minutes  int
	Sessions int
}
