package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const logColumns = `id, task_id, mode, start_at, end_at, duration_minutes, completed, day_key, created_at`

// CreateLog appends a time log. Logs are never updated afterwards.
func (s *Store) CreateLog(ctx context.Context, l TimeLog) (*TimeLog, error) {
	if l.Mode == "" {
		l.Mode = "focus"
	}
	completed := 0
	if l.Completed {
		completed = 1
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO time_logs (task_id, mode, start_at, end_at, duration_minutes, completed, day_key, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.TaskID, l.Mode,
		l.StartAt.UTC().Format(time.RFC3339), l.EndAt.UTC().Format(time.RFC3339),
		l.DurationMinutes, completed, l.DayKey, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert time log: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetLog(ctx, id)
}

func scanLog(row rowScanner) (TimeLog, error) {
	var l TimeLog
	var taskID sql.NullInt64
	var startAt, endAt, createdAt string
	var completed int
	if err := row.Scan(&l.ID, &taskID, &l.Mode, &startAt, &endAt, &l.DurationMinutes, &completed, &l.DayKey, &createdAt); err != nil {
		return TimeLog{}, err
	}
	if taskID.Valid {
		id := taskID.Int64
		l.TaskID = &id
	}
	l.Completed = completed == 1
	l.StartAt, _ = time.Parse(time.RFC3339, startAt)
	l.EndAt, _ = time.Parse(time.RFC3339, endAt)
	l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return l, nil
}

func (s *Store) GetLog(ctx context.Context, id int64) (*TimeLog, error) {
	l, err := scanLog(s.db.QueryRowContext(ctx, `SELECT `+logColumns+` FROM time_logs WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get time log %d: %w", id, notFound(err))
	}
	return &l, nil
}

// ListLogs returns matching logs oldest first.
func (s *Store) ListLogs(ctx context.Context, f LogFilter) ([]TimeLog, error) {
	query := `SELECT ` + logColumns + ` FROM time_logs WHERE 1=1`
	var args []any

	if f.DayKey != "" {
		query += ` AND day_key = ?`
		args = append(args, f.DayKey)
	}
	if f.FromDay != "" {
		query += ` AND day_key >= ?`
		args = append(args, f.FromDay)
	}
	if f.ToDay != "" {
		query += ` AND day_key <= ?`
		args = append(args, f.ToDay)
	}
	if f.Mode != "" {
		query += ` AND mode = ?`
		args = append(args, f.Mode)
	}
	if f.TaskID != nil {
		query += ` AND task_id = ?`
		args = append(args, *f.TaskID)
	}
	query += ` ORDER BY end_at, id`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list time logs: %w", err)
	}
	defer rows.Close()

	var logs []TimeLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// DailyTotals sums completed logs of mode per day key in [fromDay, toDay].
// Days without logs are omitted.
func (s *Store) DailyTotals(ctx context.Context, mode, fromDay, toDay string) ([]DailyTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day_key, COALESCE(SUM(duration_minutes), 0), COUNT(*)
		FROM time_logs
		WHERE completed = 1 AND mode = ?
		  AND day_key >= ? AND day_key <= ?
		GROUP BY day_key
		ORDER BY day_key`,
		mode, fromDay, toDay,
	)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	defer rows.Close()

	var totals []DailyTotal
	for rows.Next() {
		var d DailyTotal
		if err := rows.Scan(&d.DayKey, &d.Minutes, &d.Sessions); err != nil {
			return nil, err
		}
		totals = append(totals, d)
	}
	return totals, rows.Err()
}

// CountLogs returns the number of completed logs of mode on dayKey.
func (s *Store) CountLogs(ctx context.Context, mode, dayKey string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM time_logs WHERE completed = 1 AND mode = ? AND day_key = ?`,
		mode, dayKey,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count time logs: %w", err)
	}
	return n, nil
}
