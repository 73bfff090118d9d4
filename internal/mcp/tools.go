package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/gymbot/internal/nudge"
	"github.com/claude/gymbot/internal/report"
)

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// sinceOrDefault parses an optional start date, defaulting to days ago.
func sinceOrDefault(s string, days int) (time.Time, error) {
	if s == "" {
		return time.Now().AddDate(0, 0, -days), nil
	}
	return parseFlexTime(s)
}

// --- Tool definitions ---

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("List logged workouts with their entries (label, weight, reps). Each workout includes its timestamp and set count."),
	mcp.WithString("since", mcp.Description("Earliest date to include (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
)

var toolGetSummary = mcp.NewTool("get_summary",
	mcp.WithDescription("Aggregate workout summary for a rolling window: workout/snooze counts, total sets and volume, and breakdowns by workout type and body area."),
	mcp.WithString("period", mcp.Description("Summary window: week (7 days), month (30 days), or quarter (90 days). Defaults to week."), mcp.Enum("week", "month", "quarter")),
)

var toolGetStatus = mcp.NewTool("get_status",
	mcp.WithDescription("Current week's progress against the 3-workout goal, including which milestone deadlines have passed."),
)

var toolGetSnoozes = mcp.NewTool("get_snoozes",
	mcp.WithDescription("List snooze (skip) events with timestamps and reasons."),
	mcp.WithString("since", mcp.Description("Earliest date to include (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
)

// --- Tool handlers ---

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	since, err := sinceOrDefault(req.GetString("since", ""), 30)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	workouts, err := h.st.ListWorkouts(ctx, since)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("encoding failed: " + err.Error()), nil
	}
	return result, nil
}

func (h *handlers) getSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	period, err := report.ParsePeriod(req.GetString("period", ""))
	if err != nil {
		return mcp.NewToolResultError("period must be week, month, or quarter"), nil
	}

	summary, err := report.Summarize(ctx, h.st, period, time.Now())
	if err != nil {
		h.log.Error("mcp get_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(summary)
	if err != nil {
		return mcp.NewToolResultError("encoding failed: " + err.Error()), nil
	}
	return result, nil
}

func (h *handlers) getStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	now := time.Now()
	weekStart := nudge.WeekStart(now)

	count, err := h.st.CountWorkoutsBetween(ctx, weekStart, nudge.WeekEnd(now))
	if err != nil {
		h.log.Error("mcp get_status", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	type milestoneStatus struct {
		Number   int    `json:"number"`
		Required int    `json:"required"`
		Deadline string `json:"deadline"`
		Passed   bool   `json:"passed"`
	}
	milestones := make([]milestoneStatus, 0, len(nudge.Milestones))
	for _, m := range nudge.Milestones {
		deadline := m.Deadline(weekStart)
		milestones = append(milestones, milestoneStatus{
			Number:   m.Number,
			Required: m.Required,
			Deadline: deadline.Format(time.RFC3339),
			Passed:   !now.Before(deadline),
		})
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"week_start": nudge.WeekKey(now),
		"workouts":   count,
		"goal":       3,
		"milestones": milestones,
	})
	if err != nil {
		return mcp.NewToolResultError("encoding failed: " + err.Error()), nil
	}
	return result, nil
}

func (h *handlers) getSnoozes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	since, err := sinceOrDefault(req.GetString("since", ""), 30)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	snoozes, err := h.st.ListSnoozes(ctx, since)
	if err != nil {
		h.log.Error("mcp get_snoozes", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(snoozes)
	if err != nil {
		return mcp.NewToolResultError("encoding failed: " + err.Error()), nil
	}
	return result, nil
}
