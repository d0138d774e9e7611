// Package analytics derives the daily focus score and time distributions
// from stored time logs.
package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sadopc/focusflow/internal/pomodoro"
	"github.com/sadopc/focusflow/internal/store"
)

// FocusTargetMinutes is the amount of focus that earns a full score.
const FocusTargetMinutes = 240

const unknownTask = "Unknown"

// FocusScore maps focus minutes to 0..100.
func FocusScore(focusMinutes int) int {
	if focusMinutes <= 0 {
		return 0
	}
	score := int(math.Round(float64(focusMinutes) / FocusTargetMinutes * 100))
	return min(100, score)
}

type TaskMinutes struct {
	Title   string
	Minutes int
}

// TaskDistribution sums minutes per task title. Logs without a task are
// skipped and tasks missing from titles are grouped as "Unknown". The
// result is ordered by minutes, largest first.
func TaskDistribution(logs []store.TimeLog, titles map[int64]string) []TaskMinutes {
	sums := make(map[string]int)
	for _, l := range logs {
		if l.TaskID == nil {
			continue
		}
		title, ok := titles[*l.TaskID]
		if !ok {
			title = unknownTask
		}
		sums[title] += l.DurationMinutes
	}

	out := make([]TaskMinutes, 0, len(sums))
	for title, m := range sums {
		out = append(out, TaskMinutes{Title: title, Minutes: m})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes > out[j].Minutes
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// Summary describes one day.
type Summary struct {
	DayKey        string
	FocusMinutes  int
	FocusSessions int
	BreakMinutes  int
	Score         int
	Tasks         []TaskMinutes
}

// Summarize aggregates the logs of one day. Only completed focus-mode logs
// count towards the score.
func Summarize(dayKey string, logs []store.TimeLog, titles map[int64]string) Summary {
	s := Summary{DayKey: dayKey}
	focus := pomodoro.ModeFocus.String()
	for _, l := range logs {
		if !l.Completed {
			continue
		}
		if l.Mode == focus {
			s.FocusMinutes += l.DurationMinutes
			s.FocusSessions++
		} else {
			s.BreakMinutes += l.DurationMinutes
		}
	}
	s.Score = FocusScore(s.FocusMinutes)
	s.Tasks = TaskDistribution(logs, titles)
	return s
}

// DayTotal is the focus time of one calendar day.
type DayTotal struct {
	DayKey  string
	Label   string
	Minutes int
}

// FillDays returns one entry per day for the days ending at end, oldest
// first, taking minutes from totals and zero for missing days.
func FillDays(totals []store.DailyTotal, end time.Time, days int) []DayTotal {
	byDay := make(map[string]int, len(totals))
	for _, t := range totals {
		byDay[t.DayKey] = t.Minutes
	}
	out := make([]DayTotal, 0, days)
	for i := days - 1; i >= 0; i-- {
		d := end.AddDate(0, 0, -i)
		key := pomodoro.DayKey(d)
		out = append(out, DayTotal{DayKey: key, Label: d.Format("Mon"), Minutes: byDay[key]})
	}
	return out
}

// Source is the part of the store analytics reads from.
type Source interface {
	ListLogs(ctx context.Context, f store.LogFilter) ([]store.TimeLog, error)
	DailyTotals(ctx context.Context, mode, fromDay, toDay string) ([]store.DailyTotal, error)
	TaskTitles() (map[int64]string, error)
}

// Report is everything the analytics view shows.
type Report struct {
	Today Summary
	Week  []DayTotal
}

// Load builds the report for the day containing now and the six days
// before it.
func Load(ctx context.Context, src Source, now time.Time) (Report, error) {
	today := pomodoro.DayKey(now)
	logs, err := src.ListLogs(ctx, store.LogFilter{DayKey: today})
	if err != nil {
		return Report{}, fmt.Errorf("load today's logs: %w", err)
	}
	titles, err := src.TaskTitles()
	if err != nil {
		return Report{}, fmt.Errorf("load task titles: %w", err)
	}

	const days = 7
	from := pomodoro.DayKey(now.AddDate(0, 0, -(days - 1)))
	totals, err := src.DailyTotals(ctx, pomodoro.ModeFocus.String(), from, today)
	if err != nil {
		return Report{}, fmt.Errorf("load weekly totals: %w", err)
	}

	return Report{
		Today: Summarize(today, logs, titles),
		Week:  FillDays(totals, now, days),
	}, nil
}
