// Package nudge implements the weekly deadline evaluator: three workout-count
// milestones per Monday-start week, each firing at most once. The evaluator
// is a pure function of the clock, the week's committed workout count, and
// the already-sent set; persistence of the sent set lives in storage.
package nudge

import (
	"fmt"
	"time"
)

// Milestone is one weekly workout-count deadline.
type Milestone struct {
	Number    int    // 1, 2 or 3
	Required  int    // workouts that must be logged before the deadline
	DayOffset int    // days after Monday (0 = Monday)
	Hour      int
	Minute    int
	Label     string // human-readable deadline, e.g. "Tuesday 8:00 PM"
}

// Milestones holds the weekly schedule: workout 1 by Tuesday evening,
// 2 by Thursday evening, 3 by Sunday afternoon.
var Milestones = []Milestone{
	{Number: 1, Required: 1, DayOffset: 1, Hour: 20, Minute: 0, Label: "Tuesday 8:00 PM"},
	{Number: 2, Required: 2, DayOffset: 3, Hour: 20, Minute: 0, Label: "Thursday 8:00 PM"},
	{Number: 3, Required: 3, DayOffset: 6, Hour: 16, Minute: 0, Label: "Sunday 4:00 PM"},
}

// WeekStart returns Monday 00:00 of now's week, in now's location. Monday
// 00:00 is the rollover point that resets all milestone sent flags.
func WeekStart(now time.Time) time.Time {
	daysSinceMonday := (int(now.Weekday()) + 6) % 7
	d := now.AddDate(0, 0, -daysSinceMonday)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())
}

// WeekEnd returns the following Monday 00:00.
func WeekEnd(now time.Time) time.Time {
	return WeekStart(now).AddDate(0, 0, 7)
}

// WeekKey renders the week start as the date string used to key persisted
// sent-milestone rows.
func WeekKey(now time.Time) string {
	return WeekStart(now).Format("2006-01-02")
}

// Deadline returns the milestone's deadline within the given week.
func (m Milestone) Deadline(weekStart time.Time) time.Time {
	d := weekStart.AddDate(0, 0, m.DayOffset)
	return time.Date(d.Year(), d.Month(), d.Day(), m.Hour, m.Minute, 0, 0, weekStart.Location())
}

// Due evaluates which milestones should fire now. countBefore reports the
// number of workouts committed before a given deadline; sent is the set of
// milestone numbers already fired this week. Evaluation is idempotent: the
// caller marks each returned milestone as sent before the next tick.
func Due(now time.Time, countBefore func(deadline time.Time) (int, error), sent map[int]bool) ([]Milestone, error) {
	weekStart := WeekStart(now)

	var due []Milestone
	for _, m := range Milestones {
		if sent[m.Number] {
			continue
		}
		deadline := m.Deadline(weekStart)
		if now.Before(deadline) {
			continue
		}
		done, err := countBefore(deadline)
		if err != nil {
			return nil, fmt.Errorf("counting workouts for milestone %d: %w", m.Number, err)
		}
		if done >= m.Required {
			continue
		}
		due = append(due, m)
	}
	return due, nil
}
