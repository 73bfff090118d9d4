package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/gymbot/internal/nudge"
	"github.com/claude/gymbot/internal/report"
)

// CheckDeadlineNudges evaluates the weekly milestones against the workout
// log and sends at most one reminder per milestone per week. Safe to call as
// often as the scheduler likes; the weekly_nudges table makes it idempotent.
func (b *Bot) CheckDeadlineNudges(ctx context.Context) error {
	now := b.now()
	weekStart := nudge.WeekStart(now)
	weekKey := nudge.WeekKey(now)

	sent, err := b.store.SentMilestones(ctx, weekKey)
	if err != nil {
		return fmt.Errorf("loading sent milestones: %w", err)
	}

	due, err := nudge.Due(now, func(deadline time.Time) (int, error) {
		return b.store.CountWorkoutsBetween(ctx, weekStart, deadline)
	}, sent)
	if err != nil {
		return fmt.Errorf("evaluating milestones: %w", err)
	}

	for _, m := range due {
		focus, ferr := report.FocusSuggestion(ctx, b.store, now)
		if ferr != nil {
			b.log.Error("focus suggestion failed", "error", ferr)
			focus = ""
		}

		text := fmt.Sprintf(
			"Deadline passed: workout %d of 3 was due by %s.\nDid you train?",
			m.Number, m.Label,
		)
		if focus != "" {
			text += "\n\n" + focus
		}
		b.send(text, reminderKeyboard(m.Number))

		if err := b.store.MarkMilestoneSent(ctx, weekKey, m.Number); err != nil {
			return fmt.Errorf("marking milestone %d sent: %w", m.Number, err)
		}
		b.log.Info("deadline nudge sent", "week", weekKey, "milestone", m.Number)
	}
	return nil
}

// MorningGreeting sends the daily greeting with a quote and, on the first of
// the month, the previous month's recap.
func (b *Bot) MorningGreeting(ctx context.Context) error {
	now := b.now()

	q := b.quotes.Morning(ctx, now)
	b.send("Good morning.\n"+q+"\n\nChoose an action:", mainMenuKeyboard())

	if now.Day() != 1 {
		return nil
	}

	monthKey, _, _, _ := report.MonthlyWindow(now)
	done, err := b.store.MonthlyReportSent(ctx, monthKey)
	if err != nil {
		return fmt.Errorf("checking monthly report: %w", err)
	}
	if done {
		return nil
	}

	text, err := report.MonthlyReport(ctx, b.store, now)
	if err != nil {
		return fmt.Errorf("building monthly report: %w", err)
	}
	b.send(text)

	if err := b.store.MarkMonthlyReportSent(ctx, monthKey); err != nil {
		return fmt.Errorf("marking monthly report sent: %w", err)
	}
	b.log.Info("monthly report sent", "month", monthKey)
	return nil
}
