package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/claude/gymbot/internal/bodyarea"
	"github.com/claude/gymbot/internal/models"
)

// SQLite is the default Store backend: a single local database file. A mutex
// serializes gateway calls so the cron-driven milestone check never races a
// workout commit.
type SQLite struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenSQLite opens the database file (creating parent directories) and
// mirrors the body-area seed table. Migrations must have run first.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.seedBodyAreas(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) seedBodyAreas() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("seeding body areas: %w", err)
	}
	defer tx.Rollback()

	for _, m := range bodyarea.Seed() {
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO move_body_areas (move_key, display_label, body_area) VALUES (?, ?, ?)`,
			m.Key, m.Label, m.Area,
		); err != nil {
			return fmt.Errorf("seeding body areas: %w", err)
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CommitWorkout stores the workout and all its entries in one transaction.
func (s *SQLite) CommitWorkout(ctx context.Context, w *models.Workout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning commit: %w", err)
	}
	defer tx.Rollback()

	loggedAt := formatTime(w.LoggedAt)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO workouts (id, logged_at, sets, note) VALUES (?, ?, ?, ?)`,
		w.ID.String(), loggedAt, len(w.Entries), w.Note,
	); err != nil {
		return fmt.Errorf("inserting workout: %w", err)
	}

	for i, e := range w.Entries {
		weight := sql.NullFloat64{}
		if e.WeightLb != nil {
			weight = sql.NullFloat64{Float64: *e.WeightLb, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO workout_entries (id, workout_id, seq, label_key, label, reps, weight_lb, logged_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), w.ID.String(), i, bodyarea.Key(e.Label), e.Label, e.Reps, weight, loggedAt,
		); err != nil {
			return fmt.Errorf("inserting workout entry: %w", err)
		}
	}

	return tx.Commit()
}

// ListWorkouts returns workouts committed at or after since, oldest first,
// with their entries in original order.
func (s *SQLite) ListWorkouts(ctx context.Context, since time.Time) ([]models.Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, logged_at, note FROM workouts WHERE logged_at >= ? ORDER BY logged_at ASC`,
		formatTime(since),
	)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var workouts []models.Workout
	index := map[string]int{}
	for rows.Next() {
		var id, loggedAt, note string
		if err := rows.Scan(&id, &loggedAt, &note); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		wid, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parsing workout id %q: %w", id, err)
		}
		ts, err := parseTime(loggedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing workout time %q: %w", loggedAt, err)
		}
		index[id] = len(workouts)
		workouts = append(workouts, models.Workout{ID: wid, LoggedAt: ts, Note: note})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	entryRows, err := s.db.QueryContext(ctx,
		`SELECT workout_id, label, reps, weight_lb FROM workout_entries
		 WHERE logged_at >= ? ORDER BY workout_id, seq ASC`,
		formatTime(since),
	)
	if err != nil {
		return nil, fmt.Errorf("querying workout entries: %w", err)
	}
	defer entryRows.Close()

	for entryRows.Next() {
		var workoutID, label string
		var reps int
		var weight sql.NullFloat64
		if err := entryRows.Scan(&workoutID, &label, &reps, &weight); err != nil {
			return nil, fmt.Errorf("scanning workout entry: %w", err)
		}
		i, ok := index[workoutID]
		if !ok {
			continue
		}
		entry := models.WorkoutEntry{Label: label, Reps: reps}
		if weight.Valid {
			w := weight.Float64
			entry.WeightLb = &w
		}
		workouts[i].Entries = append(workouts[i].Entries, entry)
	}
	return workouts, entryRows.Err()
}

// CountWorkoutsBetween counts workouts in [start, end).
func (s *SQLite) CountWorkoutsBetween(ctx context.Context, start, end time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM workouts WHERE logged_at >= ? AND logged_at < ?`,
		formatTime(start), formatTime(end),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting workouts: %w", err)
	}
	return n, nil
}

// RecordSnooze stores a snooze event.
func (s *SQLite) RecordSnooze(ctx context.Context, ev models.SnoozeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snoozes (id, milestone, logged_at, reason) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), ev.Milestone, formatTime(ev.LoggedAt), ev.Reason,
	)
	if err != nil {
		return fmt.Errorf("inserting snooze: %w", err)
	}
	return nil
}

// ListSnoozes returns snoozes recorded at or after since, oldest first.
func (s *SQLite) ListSnoozes(ctx context.Context, since time.Time) ([]models.SnoozeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT milestone, logged_at, reason FROM snoozes WHERE logged_at >= ? ORDER BY logged_at ASC`,
		formatTime(since),
	)
	if err != nil {
		return nil, fmt.Errorf("querying snoozes: %w", err)
	}
	defer rows.Close()

	var events []models.SnoozeEvent
	for rows.Next() {
		var ev models.SnoozeEvent
		var loggedAt string
		if err := rows.Scan(&ev.Milestone, &loggedAt, &ev.Reason); err != nil {
			return nil, fmt.Errorf("scanning snooze: %w", err)
		}
		ts, err := parseTime(loggedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing snooze time %q: %w", loggedAt, err)
		}
		ev.LoggedAt = ts
		events = append(events, ev)
	}
	return events, rows.Err()
}

// CountSnoozesBetween counts snoozes in [start, end).
func (s *SQLite) CountSnoozesBetween(ctx context.Context, start, end time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM snoozes WHERE logged_at >= ? AND logged_at < ?`,
		formatTime(start), formatTime(end),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting snoozes: %w", err)
	}
	return n, nil
}

// SentMilestones returns the milestone numbers already fired for a week.
func (s *SQLite) SentMilestones(ctx context.Context, weekStart string) (map[int]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT milestone FROM weekly_nudges WHERE week_start = ?`, weekStart,
	)
	if err != nil {
		return nil, fmt.Errorf("querying sent milestones: %w", err)
	}
	defer rows.Close()

	sent := map[int]bool{}
	for rows.Next() {
		var m int
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scanning milestone: %w", err)
		}
		sent[m] = true
	}
	return sent, rows.Err()
}

// MarkMilestoneSent records a fired milestone. Idempotent.
func (s *SQLite) MarkMilestoneSent(ctx context.Context, weekStart string, milestone int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO weekly_nudges (week_start, milestone, sent_at) VALUES (?, ?, ?)`,
		weekStart, milestone, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("marking milestone sent: %w", err)
	}
	return nil
}

// SetsByLabelBetween aggregates sets per workout label in [start, end),
// ordered by set count descending then label.
func (s *SQLite) SetsByLabelBetween(ctx context.Context, start, end time.Time) ([]LabelCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT MAX(label), COUNT(*), SUM(reps), SUM(reps * COALESCE(weight_lb, 0))
		 FROM workout_entries
		 WHERE logged_at >= ? AND logged_at < ?
		 GROUP BY label_key
		 ORDER BY COUNT(*) DESC, MAX(label) ASC`,
		formatTime(start), formatTime(end),
	)
	if err != nil {
		return nil, fmt.Errorf("aggregating sets by label: %w", err)
	}
	defer rows.Close()

	var result []LabelCount
	for rows.Next() {
		var c LabelCount
		if err := rows.Scan(&c.Label, &c.Sets, &c.Reps, &c.Volume); err != nil {
			return nil, fmt.Errorf("scanning label count: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// SetsByAreaBetween aggregates sets per body area in [start, end) using the
// seeded mapping table; unmapped labels group under "unmapped".
func (s *SQLite) SetsByAreaBetween(ctx context.Context, start, end time.Time) ([]AreaCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(m.body_area, 'unmapped'), COUNT(*), SUM(e.reps), SUM(e.reps * COALESCE(e.weight_lb, 0))
		 FROM workout_entries e
		 LEFT JOIN move_body_areas m ON m.move_key = e.label_key
		 WHERE e.logged_at >= ? AND e.logged_at < ?
		 GROUP BY COALESCE(m.body_area, 'unmapped')
		 ORDER BY COUNT(*) DESC, COALESCE(m.body_area, 'unmapped') ASC`,
		formatTime(start), formatTime(end),
	)
	if err != nil {
		return nil, fmt.Errorf("aggregating sets by area: %w", err)
	}
	defer rows.Close()

	var result []AreaCount
	for rows.Next() {
		var c AreaCount
		if err := rows.Scan(&c.Area, &c.Sets, &c.Reps, &c.Volume); err != nil {
			return nil, fmt.Errorf("scanning area count: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// Totals returns all-time workout, snooze, set, and volume totals.
func (s *SQLite) Totals(ctx context.Context) (*Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &Totals{}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workouts`).Scan(&t.Workouts); err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snoozes`).Scan(&t.Snoozes); err != nil {
		return nil, fmt.Errorf("counting snoozes: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(sets), 0) FROM workouts`).Scan(&t.Sets); err != nil {
		return nil, fmt.Errorf("summing sets: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(reps * COALESCE(weight_lb, 0)), 0) FROM workout_entries`,
	).Scan(&t.TotalVolume); err != nil {
		return nil, fmt.Errorf("summing volume: %w", err)
	}
	return t, nil
}

// DailyActivity returns per-day workout/set/snooze counts in [start, end).
func (s *SQLite) DailyActivity(ctx context.Context, start, end time.Time) ([]DayActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	days := map[string]*DayActivity{}
	var order []string
	get := func(day string) *DayActivity {
		if d, ok := days[day]; ok {
			return d
		}
		d := &DayActivity{Day: day}
		days[day] = d
		order = append(order, day)
		return d
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT substr(logged_at, 1, 10), COUNT(*), COALESCE(SUM(sets), 0)
		 FROM workouts WHERE logged_at >= ? AND logged_at < ?
		 GROUP BY substr(logged_at, 1, 10) ORDER BY 1 ASC`,
		formatTime(start), formatTime(end),
	)
	if err != nil {
		return nil, fmt.Errorf("aggregating daily workouts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var day string
		var workouts, sets int
		if err := rows.Scan(&day, &workouts, &sets); err != nil {
			return nil, fmt.Errorf("scanning daily workouts: %w", err)
		}
		d := get(day)
		d.Workouts = workouts
		d.Sets = sets
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	snoozeRows, err := s.db.QueryContext(ctx,
		`SELECT substr(logged_at, 1, 10), COUNT(*)
		 FROM snoozes WHERE logged_at >= ? AND logged_at < ?
		 GROUP BY substr(logged_at, 1, 10) ORDER BY 1 ASC`,
		formatTime(start), formatTime(end),
	)
	if err != nil {
		return nil, fmt.Errorf("aggregating daily snoozes: %w", err)
	}
	defer snoozeRows.Close()
	for snoozeRows.Next() {
		var day string
		var snoozes int
		if err := snoozeRows.Scan(&day, &snoozes); err != nil {
			return nil, fmt.Errorf("scanning daily snoozes: %w", err)
		}
		get(day).Snoozes = snoozes
	}
	if err := snoozeRows.Err(); err != nil {
		return nil, err
	}

	sort.Strings(order)
	result := make([]DayActivity, 0, len(order))
	for _, day := range order {
		result = append(result, *days[day])
	}
	return result, nil
}

// MonthlyReportSent reports whether the report for a month has been sent.
func (s *SQLite) MonthlyReportSent(ctx context.Context, monthStart string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM monthly_reports WHERE month_start = ?`, monthStart,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking monthly report: %w", err)
	}
	return n > 0, nil
}

// MarkMonthlyReportSent records that a month's report went out. Idempotent.
func (s *SQLite) MarkMonthlyReportSent(ctx context.Context, monthStart string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO monthly_reports (month_start, sent_at) VALUES (?, ?)`,
		monthStart, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("marking monthly report sent: %w", err)
	}
	return nil
}

// Compile-time check: *SQLite satisfies Store.
var _ Store = (*SQLite)(nil)
