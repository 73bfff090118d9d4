// Package storage is the persistence gateway for workout history, snoozes,
// and milestone bookkeeping. Two backends implement Store: SQLite (default,
// local single-process deployments) and Postgres (hosted). Each call is
// atomic; CommitWorkout writes the workout and all its entries in one
// transaction or not at all.
package storage

import (
	"context"
	"time"

	"github.com/claude/gymbot/internal/models"
)

// timeLayout is how timestamps are stored: RFC 3339 in UTC, so TEXT-column
// comparisons stay lexicographic on both backends.
const timeLayout = time.RFC3339

// LabelCount aggregates sets for one workout label.
type LabelCount struct {
	Label  string  `json:"label"`
	Sets   int     `json:"sets"`
	Reps   int     `json:"reps"`
	Volume float64 `json:"volume"`
}

// AreaCount aggregates sets for one body area.
type AreaCount struct {
	Area   string  `json:"area"`
	Sets   int     `json:"sets"`
	Reps   int     `json:"reps"`
	Volume float64 `json:"volume"`
}

// Totals holds all-time stats for the /status command.
type Totals struct {
	Workouts    int     `json:"workouts"`
	Snoozes     int     `json:"snoozes"`
	Sets        int     `json:"sets"`
	TotalVolume float64 `json:"total_volume"`
}

// DayActivity is one day's workout/snooze counts, the unit the external
// chart renderer consumes.
type DayActivity struct {
	Day      string `json:"day"` // YYYY-MM-DD
	Workouts int    `json:"workouts"`
	Sets     int    `json:"sets"`
	Snoozes  int    `json:"snoozes"`
}

// Store is the persistence gateway consumed by the bot, evaluator, and
// reporting. Implementations serialize concurrent calls so the timer-driven
// milestone check never observes a half-committed week.
type Store interface {
	CommitWorkout(ctx context.Context, w *models.Workout) error
	ListWorkouts(ctx context.Context, since time.Time) ([]models.Workout, error)
	CountWorkoutsBetween(ctx context.Context, start, end time.Time) (int, error)

	RecordSnooze(ctx context.Context, ev models.SnoozeEvent) error
	ListSnoozes(ctx context.Context, since time.Time) ([]models.SnoozeEvent, error)
	CountSnoozesBetween(ctx context.Context, start, end time.Time) (int, error)

	// Sent-milestone bookkeeping, keyed by the Monday date of the week.
	SentMilestones(ctx context.Context, weekStart string) (map[int]bool, error)
	MarkMilestoneSent(ctx context.Context, weekStart string, milestone int) error

	SetsByLabelBetween(ctx context.Context, start, end time.Time) ([]LabelCount, error)
	SetsByAreaBetween(ctx context.Context, start, end time.Time) ([]AreaCount, error)
	Totals(ctx context.Context) (*Totals, error)
	DailyActivity(ctx context.Context, start, end time.Time) ([]DayActivity, error)

	// Monthly report bookkeeping, keyed by the first-of-month date.
	MonthlyReportSent(ctx context.Context, monthStart string) (bool, error)
	MarkMonthlyReportSent(ctx context.Context, monthStart string) error

	Close() error
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
