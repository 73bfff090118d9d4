// Package report aggregates stored workouts into period summaries: the data
// behind /summary, the monthly recap, and the chart endpoints. Pure reads;
// no side effects beyond gateway queries.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/claude/gymbot/internal/bodyarea"
	"github.com/claude/gymbot/internal/storage"
)

// Period selects the summary window.
type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
)

// ErrUnknownPeriod is returned for period strings outside week/month/quarter.
var ErrUnknownPeriod = errors.New("unknown period")

// ParsePeriod normalizes a user-supplied period string.
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodWeek, "":
		return PeriodWeek, nil
	case PeriodMonth:
		return PeriodMonth, nil
	case PeriodQuarter:
		return PeriodQuarter, nil
	}
	return "", ErrUnknownPeriod
}

// Window returns the rolling window ending at anchor: 7, 30, or 90 days.
func (p Period) Window(anchor time.Time) (start, end time.Time) {
	switch p {
	case PeriodMonth:
		return anchor.AddDate(0, 0, -30), anchor
	case PeriodQuarter:
		return anchor.AddDate(0, 0, -90), anchor
	default:
		return anchor.AddDate(0, 0, -7), anchor
	}
}

// Label is the human description used in summary headers.
func (p Period) Label() string {
	return "past " + string(p)
}

// Summary is the aggregation consumed by the bot and the chart API.
type Summary struct {
	Period      Period               `json:"period"`
	Start       time.Time            `json:"start"`
	End         time.Time            `json:"end"`
	Workouts    int                  `json:"workouts"`
	Snoozes     int                  `json:"snoozes"`
	TotalSets   int                  `json:"total_sets"`
	TotalVolume float64              `json:"total_volume"`
	ByLabel     []storage.LabelCount `json:"by_label"`
	ByArea      []storage.AreaCount  `json:"by_area"`
}

// Summarize aggregates the window ending at anchor.
func Summarize(ctx context.Context, st storage.Store, p Period, anchor time.Time) (*Summary, error) {
	start, end := p.Window(anchor)
	return summarizeWindow(ctx, st, p, start, end)
}

func summarizeWindow(ctx context.Context, st storage.Store, p Period, start, end time.Time) (*Summary, error) {
	workouts, err := st.CountWorkoutsBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("summarizing workouts: %w", err)
	}
	snoozes, err := st.CountSnoozesBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("summarizing snoozes: %w", err)
	}
	byLabel, err := st.SetsByLabelBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("summarizing by label: %w", err)
	}
	byArea, err := st.SetsByAreaBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("summarizing by area: %w", err)
	}

	s := &Summary{
		Period:   p,
		Start:    start,
		End:      end,
		Workouts: workouts,
		Snoozes:  snoozes,
		ByLabel:  byLabel,
		ByArea:   byArea,
	}
	for _, c := range byLabel {
		s.TotalSets += c.Sets
		s.TotalVolume += c.Volume
	}
	return s, nil
}

// Lines renders the summary as chat text.
func (s *Summary) Lines() []string {
	lines := []string{
		fmt.Sprintf("Workout summary (%s)", s.Period.Label()),
		fmt.Sprintf("Window: %s to %s", s.Start.Format("2006-01-02"), s.End.Format("2006-01-02")),
		fmt.Sprintf("Workouts: %d", s.Workouts),
		fmt.Sprintf("Skips (snoozes): %d", s.Snoozes),
		fmt.Sprintf("Total sets: %d", s.TotalSets),
		fmt.Sprintf("Total volume: %.1f", s.TotalVolume),
		"",
	}
	lines = append(lines, breakdownLines("By workout type:", labelPairs(s.ByLabel))...)
	lines = append(lines, "")
	lines = append(lines, breakdownLines("By body area:", areaPairs(s.ByArea))...)
	return lines
}

type pair struct {
	name string
	sets int
}

func labelPairs(counts []storage.LabelCount) []pair {
	out := make([]pair, 0, len(counts))
	for _, c := range counts {
		out = append(out, pair{c.Label, c.Sets})
	}
	return out
}

func areaPairs(counts []storage.AreaCount) []pair {
	out := make([]pair, 0, len(counts))
	for _, c := range counts {
		out = append(out, pair{c.Area, c.Sets})
	}
	return out
}

func breakdownLines(title string, values []pair) []string {
	lines := []string{title}
	if len(values) == 0 {
		return append(lines, "- none")
	}
	for _, v := range values {
		lines = append(lines, fmt.Sprintf("- %s: %d", v.name, v.sets))
	}
	return lines
}

// MonthlyWindow returns the previous calendar month relative to now: the
// month-start date key, the [start, end) bounds, and a "January 2026" label.
func MonthlyWindow(now time.Time) (key string, start, end time.Time, label string) {
	currentStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prevStart := currentStart.AddDate(0, -1, 0)
	return prevStart.Format("2006-01-02"), prevStart, currentStart, prevStart.Format("January 2006")
}

// MonthlyReport builds the previous month's recap text.
func MonthlyReport(ctx context.Context, st storage.Store, now time.Time) (string, error) {
	_, start, end, label := MonthlyWindow(now)
	s, err := summarizeWindow(ctx, st, PeriodMonth, start, end)
	if err != nil {
		return "", err
	}

	workouts, err := st.ListWorkouts(ctx, start)
	if err != nil {
		return "", fmt.Errorf("listing workouts: %w", err)
	}

	lines := []string{
		fmt.Sprintf("Monthly summary (%s)", label),
		fmt.Sprintf("Workouts done: %d", s.Workouts),
		fmt.Sprintf("Workouts skipped (snoozes): %d", s.Snoozes),
		fmt.Sprintf("Total sets: %d", s.TotalSets),
		"",
		"Workouts completed:",
	}
	listed := 0
	for _, w := range workouts {
		if !w.LoggedAt.Before(end) {
			continue
		}
		listed++
		ts := w.LoggedAt.Format("2006-01-02 15:04:05")
		if note := strings.TrimSpace(w.Note); note != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s (%d set(s))", ts, note, w.SetCount()))
		} else {
			lines = append(lines, fmt.Sprintf("- %s: %d set(s)", ts, w.SetCount()))
		}
	}
	if listed == 0 {
		lines = append(lines, "- none")
	}

	lines = append(lines, "")
	lines = append(lines, breakdownLines("By workout type:", labelPairs(s.ByLabel))...)
	lines = append(lines, "")
	lines = append(lines, breakdownLines("By body area:", areaPairs(s.ByArea))...)
	return strings.Join(lines, "\n"), nil
}

// FocusSuggestion names tracked body areas not trained in the past 7 days,
// in nudge priority order.
func FocusSuggestion(ctx context.Context, st storage.Store, now time.Time) (string, error) {
	byArea, err := st.SetsByAreaBetween(ctx, now.AddDate(0, 0, -7), now)
	if err != nil {
		return "", fmt.Errorf("computing focus: %w", err)
	}

	trained := map[string]bool{}
	for _, c := range byArea {
		if c.Sets > 0 {
			trained[c.Area] = true
		}
	}

	var missing []string
	for _, area := range bodyarea.NudgePriority {
		if !trained[area] {
			missing = append(missing, area)
		}
	}

	switch len(missing) {
	case 0:
		return "You've trained chest, back, shoulders, legs, and core in the past 7 days.", nil
	case 1:
		return fmt.Sprintf("Suggested focus: %s (not trained in the past 7 days).", missing[0]), nil
	default:
		return "Suggested focus order (not trained in the past 7 days): " + strings.Join(missing, " > ") + ".", nil
	}
}
