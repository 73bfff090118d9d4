package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/claude/gymbot/internal/bodyarea"
	"github.com/claude/gymbot/internal/models"
)

// Postgres is the hosted Store backend, used when the bot runs as a webhook
// behind a managed database instead of a local file.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool, pings it, and mirrors the body-area seed
// table. Migrations must have run first.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.seedBodyAreas(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) seedBodyAreas(ctx context.Context) error {
	batch := &pgx.Batch{}
	for _, m := range bodyarea.Seed() {
		batch.Queue(
			`INSERT INTO move_body_areas (move_key, display_label, body_area) VALUES ($1, $2, $3)
			 ON CONFLICT (move_key) DO UPDATE SET display_label = excluded.display_label, body_area = excluded.body_area`,
			m.Key, m.Label, m.Area,
		)
	}
	if err := p.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seeding body areas: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// CommitWorkout stores the workout and all its entries in one transaction.
func (p *Postgres) CommitWorkout(ctx context.Context, w *models.Workout) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning commit: %w", err)
	}
	defer tx.Rollback(ctx)

	loggedAt := formatTime(w.LoggedAt)
	if _, err := tx.Exec(ctx,
		`INSERT INTO workouts (id, logged_at, sets, note) VALUES ($1, $2, $3, $4)`,
		w.ID.String(), loggedAt, len(w.Entries), w.Note,
	); err != nil {
		return fmt.Errorf("inserting workout: %w", err)
	}

	for i, e := range w.Entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO workout_entries (id, workout_id, seq, label_key, label, reps, weight_lb, logged_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.NewString(), w.ID.String(), i, bodyarea.Key(e.Label), e.Label, e.Reps, e.WeightLb, loggedAt,
		); err != nil {
			return fmt.Errorf("inserting workout entry: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ListWorkouts returns workouts committed at or after since, oldest first.
func (p *Postgres) ListWorkouts(ctx context.Context, since time.Time) ([]models.Workout, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, logged_at, note FROM workouts WHERE logged_at >= $1 ORDER BY logged_at ASC`,
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

	entryRows, err := p.pool.Query(ctx,
		`SELECT workout_id, label, reps, weight_lb FROM workout_entries
		 WHERE logged_at >= $1 ORDER BY workout_id, seq ASC`,
		formatTime(since),
	)
	if err != nil {
		return nil, fmt.Errorf("querying workout entries: %w", err)
	}
	defer entryRows.Close()

	for entryRows.Next() {
		var workoutID, label string
		var reps int
		var weight *float64
		if err := entryRows.Scan(&workoutID, &label, &reps, &weight); err != nil {
			return nil, fmt.Errorf("scanning workout entry: %w", err)
		}
		i, ok := index[workoutID]
		if !ok {
			continue
		}
		workouts[i].Entries = append(workouts[i].Entries, models.WorkoutEntry{Label: label, Reps: reps, WeightLb: weight})
	}
	return workouts, entryRows.Err()
}

// CountWorkoutsBetween counts workouts in [start, end).
func (p *Postgres) CountWorkoutsBetween(ctx context.Context, start, end time.Time) (int, error) {
	var n int
	err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workouts WHERE logged_at >= $1 AND logged_at < $2`,
		formatTime(start), formatTime(end),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting workouts: %w", err)
	}
	return n, nil
}

// RecordSnooze stores a snooze event.
func (p *Postgres) RecordSnooze(ctx context.Context, ev models.SnoozeEvent) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO snoozes (id, milestone, logged_at, reason) VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), ev.Milestone, formatTime(ev.LoggedAt), ev.Reason,
	)
	if err != nil {
		return fmt.Errorf("inserting snooze: %w", err)
	}
	return nil
}

// ListSnoozes returns snoozes recorded at or after since, oldest first.
func (p *Postgres) ListSnoozes(ctx context.Context, since time.Time) ([]models.SnoozeEvent, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT milestone, logged_at, reason FROM snoozes WHERE logged_at >= $1 ORDER BY logged_at ASC`,
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
func (p *Postgres) CountSnoozesBetween(ctx context.Context, start, end time.Time) (int, error) {
	var n int
	err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM snoozes WHERE logged_at >= $1 AND logged_at < $2`,
		formatTime(start), formatTime(end),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting snoozes: %w", err)
	}
	return n, nil
}

// SentMilestones returns the milestone numbers already fired for a week.
func (p *Postgres) SentMilestones(ctx context.Context, weekStart string) (map[int]bool, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT milestone FROM weekly_nudges WHERE week_start = $1`, weekStart,
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
func (p *Postgres) MarkMilestoneSent(ctx context.Context, weekStart string, milestone int) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO weekly_nudges (week_start, milestone, sent_at) VALUES ($1, $2, $3)
		 ON CONFLICT (week_start, milestone) DO NOTHING`,
		weekStart, milestone, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("marking milestone sent: %w", err)
	}
	return nil
}

// SetsByLabelBetween aggregates sets per workout label in [start, end).
func (p *Postgres) SetsByLabelBetween(ctx context.Context, start, end time.Time) ([]LabelCount, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT MAX(label), COUNT(*), SUM(reps), SUM(reps * COALESCE(weight_lb, 0))
		 FROM workout_entries
		 WHERE logged_at >= $1 AND logged_at < $2
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

// SetsByAreaBetween aggregates sets per body area in [start, end).
func (p *Postgres) SetsByAreaBetween(ctx context.Context, start, end time.Time) ([]AreaCount, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT COALESCE(m.body_area, 'unmapped'), COUNT(*), SUM(e.reps), SUM(e.reps * COALESCE(e.weight_lb, 0))
		 FROM workout_entries e
		 LEFT JOIN move_body_areas m ON m.move_key = e.label_key
		 WHERE e.logged_at >= $1 AND e.logged_at < $2
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
func (p *Postgres) Totals(ctx context.Context) (*Totals, error) {
	t := &Totals{}
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM workouts`).Scan(&t.Workouts); err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM snoozes`).Scan(&t.Snoozes); err != nil {
		return nil, fmt.Errorf("counting snoozes: %w", err)
	}
	if err := p.pool.QueryRow(ctx, `SELECT COALESCE(SUM(sets), 0) FROM workouts`).Scan(&t.Sets); err != nil {
		return nil, fmt.Errorf("summing sets: %w", err)
	}
	if err := p.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(reps * COALESCE(weight_lb, 0)), 0) FROM workout_entries`,
	).Scan(&t.TotalVolume); err != nil {
		return nil, fmt.Errorf("summing volume: %w", err)
	}
	return t, nil
}

// DailyActivity returns per-day workout/set/snooze counts in [start, end).
func (p *Postgres) DailyActivity(ctx context.Context, start, end time.Time) ([]DayActivity, error) {
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

	rows, err := p.pool.Query(ctx,
		`SELECT substr(logged_at, 1, 10), COUNT(*), COALESCE(SUM(sets), 0)
		 FROM workouts WHERE logged_at >= $1 AND logged_at < $2
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

	snoozeRows, err := p.pool.Query(ctx,
		`SELECT substr(logged_at, 1, 10), COUNT(*)
		 FROM snoozes WHERE logged_at >= $1 AND logged_at < $2
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
func (p *Postgres) MonthlyReportSent(ctx context.Context, monthStart string) (bool, error) {
	var n int
	err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM monthly_reports WHERE month_start = $1`, monthStart,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking monthly report: %w", err)
	}
	return n > 0, nil
}

// MarkMonthlyReportSent records that a month's report went out. Idempotent.
func (p *Postgres) MarkMonthlyReportSent(ctx context.Context, monthStart string) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO monthly_reports (month_start, sent_at) VALUES ($1, $2)
		 ON CONFLICT (month_start) DO NOTHING`,
		monthStart, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("marking monthly report sent: %w", err)
	}
	return nil
}

// Compile-time check: *Postgres satisfies Store.
var _ Store = (*Postgres)(nil)
