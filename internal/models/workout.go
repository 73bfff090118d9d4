package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutEntry is a single logged set: a workout label plus reps and an
// optional weight. WeightLb is nil when the set was logged without a weight
// (bodyweight work), which is distinct from an explicit 0.
type WorkoutEntry struct {
	Label    string   `json:"label"`
	Reps     int      `json:"reps"`
	WeightLb *float64 `json:"weight_lb,omitempty"`
}

// Volume returns reps × weight for the set. Weightless sets contribute 0.
func (e WorkoutEntry) Volume() float64 {
	if e.WeightLb == nil {
		return 0
	}
	return float64(e.Reps) * *e.WeightLb
}

// Workout is one committed draft session: the ordered entries finished in a
// single sitting, timestamped at finish time. Workouts are historical records
// and are never updated or deleted.
type Workout struct {
	ID       uuid.UUID      `json:"id"`
	LoggedAt time.Time      `json:"logged_at"`
	Note     string         `json:"note,omitempty"`
	Entries  []WorkoutEntry `json:"entries"`
}

// SetCount returns the number of sets in the workout.
func (w Workout) SetCount() int {
	return len(w.Entries)
}

// SnoozeEvent records a dismissed or skipped check-in. Milestone is 1-3 when
// the snooze answered a weekly deadline nudge, 0 for a manual button snooze.
type SnoozeEvent struct {
	Milestone int       `json:"milestone"`
	LoggedAt  time.Time `json:"logged_at"`
	Reason    string    `json:"reason,omitempty"`
}
