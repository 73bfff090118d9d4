package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/claude/gymbot/internal/bodyarea"
	"github.com/claude/gymbot/internal/draft"
	"github.com/claude/gymbot/internal/models"
	"github.com/claude/gymbot/internal/nudge"
	"github.com/claude/gymbot/internal/parser"
	"github.com/claude/gymbot/internal/report"
)

const (
	msgStorageUnavailable = "Storage hiccup. Please try again in a moment."
	msgNoDraft            = "No workout in progress. Tap 'I trained' or use /log to start."
	msgParseHint          = "Include workout type plus sets, for example " +
		"'bench press 20x8, 30x8' or 'bench press 20lb x8, 30lbx8'."
	msgDraftPrompt = "Send one or more entries with workout type + sets.\n" +
		"Examples: 'bench press 20x8, 30x8' or 'squat 135lb x5, 155x5'.\n" +
		"When done, tap Finish Workout."
)

var menuTriggers = map[string]bool{"hi": true, "hello": true, "hey": true, "menu": true, "start": true}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		b.sendStart()
	case "log":
		b.commandLog(ctx, strings.TrimSpace(msg.CommandArguments()))
	case "remindme":
		b.send("Gym check-in: did you train?", reminderKeyboard(0))
	case "status":
		b.sendStatus(ctx)
	case "summary":
		b.sendSummary(ctx, strings.TrimSpace(msg.CommandArguments()))
	case "summary_week":
		b.sendSummary(ctx, "week")
	case "summary_month":
		b.sendSummary(ctx, "month")
	case "summary_quarter":
		b.sendSummary(ctx, "quarter")
	}
}

func (b *Bot) handleText(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	b.mu.Lock()
	awaiting := b.awaiting
	b.mu.Unlock()

	if !awaiting {
		if menuTriggers[strings.ToLower(text)] {
			b.send("What do you want to do?", mainMenuKeyboard())
		}
		return
	}

	b.appendToDraft(text)
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	// Ack the tap so the client stops its spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.log.Error("callback ack failed", "error", err)
	}

	if strings.HasPrefix(q.Data, cbSnoozePrefix) {
		milestone, err := strconv.Atoi(strings.TrimPrefix(q.Data, cbSnoozePrefix))
		if err != nil || milestone < 0 || milestone > 3 {
			milestone = 0
		}
		b.snooze(ctx, milestone)
		return
	}

	switch q.Data {
	case cbDidWorkout:
		b.openDraft()
	case cbSummaryWeek:
		b.sendSummary(ctx, "week")
	case cbSummaryMonth:
		b.sendSummary(ctx, "month")
	case cbFinishWorkout:
		b.finishDraft(ctx)
	case cbUndoEntry:
		b.undoDraftEntry()
	case cbCancelWorkout:
		b.cancelDraft()
	}
}

func (b *Bot) sendStart() {
	b.send(
		"Gym supervisor active. Goal: 3 workouts per week.\n\n"+
			"Deadlines:\n"+
			"- Workout 1 by Tuesday 8:00 PM\n"+
			"- Workout 2 by Thursday 8:00 PM\n"+
			"- Workout 3 by Sunday 4:00 PM\n\n"+
			"Commands:\n"+
			"/log <workout type> <weight>x<reps> ... - quick one-message log\n"+
			"/remindme - send check-in now\n"+
			"/status - show weekly + total stats\n"+
			"/summary <week|month|quarter> - workout breakdown",
		mainMenuKeyboard(),
	)
}

// openDraft begins (or resumes) the guided log. An active draft survives a
// second "I trained" tap rather than being replaced.
func (b *Bot) openDraft() {
	b.mu.Lock()
	resumed := b.draft != nil && !b.draft.Empty()
	if b.draft == nil {
		b.draft = draft.New()
	}
	b.awaiting = true
	pending := b.draft.SetCount()
	b.mu.Unlock()

	if resumed {
		b.send(fmt.Sprintf("Resuming your draft (%d set(s) pending).\n%s", pending, msgDraftPrompt), draftKeyboard())
		return
	}
	b.send("Great. "+msgDraftPrompt, draftKeyboard())
}

func (b *Bot) appendToDraft(text string) {
	entries, err := parser.Parse(text)
	if err != nil {
		var perr *parser.ParseError
		if errors.As(err, &perr) && perr.Token != text {
			b.send(fmt.Sprintf("I couldn't parse %q. %s", perr.Token, msgParseHint), draftKeyboard())
			return
		}
		b.send("I couldn't parse that. "+msgParseHint, draftKeyboard())
		return
	}

	b.mu.Lock()
	if b.draft == nil {
		b.draft = draft.New()
	}
	b.draft.Append(entries, text)
	total := b.draft.SetCount()
	b.mu.Unlock()

	b.send(fmt.Sprintf("Added %s: %d set(s). Current draft: %d set(s).", entries[0].Label, len(entries), total), draftKeyboard())
}

func (b *Bot) undoDraftEntry() {
	b.mu.Lock()
	if b.draft == nil {
		b.mu.Unlock()
		b.send("No workout in progress. Tap 'I trained' to start.")
		return
	}
	removed, err := b.draft.UndoLast()
	total := b.draft.SetCount()
	b.mu.Unlock()

	if err != nil {
		b.send("No entries to undo yet.", draftKeyboard())
		return
	}
	b.send(fmt.Sprintf("Removed last entry (%d set(s)). Current draft: %d set(s).", removed, total), draftKeyboard())
}

func (b *Bot) cancelDraft() {
	b.mu.Lock()
	b.draft = nil
	b.awaiting = false
	b.mu.Unlock()
	b.send("Workout draft canceled.")
}

func (b *Bot) finishDraft(ctx context.Context) {
	b.mu.Lock()
	if b.draft == nil {
		b.mu.Unlock()
		b.send(msgNoDraft, mainMenuKeyboard())
		return
	}
	entries, note, err := b.draft.Finish()
	if err != nil {
		b.mu.Unlock()
		b.send("No reps/weight entries collected yet. Send entries first.", draftKeyboard())
		return
	}
	b.draft = nil
	b.awaiting = false
	b.mu.Unlock()

	b.commitAndConfirm(ctx, entries, note, "Workout saved")
}

// commandLog handles /log: with arguments it is a one-message quick log,
// without it opens the guided draft.
func (b *Bot) commandLog(ctx context.Context, args string) {
	if args == "" {
		b.openDraft()
		return
	}

	entries, err := parser.Parse(args)
	if err != nil {
		b.send("Couldn't parse entry. Example: /log bench press 20x8, 30x8")
		return
	}
	b.commitAndConfirm(ctx, entries, args, "Workout logged")
}

// commitAndConfirm persists one workout and reports the running totals.
// Either every entry is stored or none: a gateway failure leaves nothing
// half-committed and asks the user to retry.
func (b *Bot) commitAndConfirm(ctx context.Context, entries []models.WorkoutEntry, note, verb string) {
	w := &models.Workout{
		ID:       uuid.New(),
		LoggedAt: b.now(),
		Note:     strings.TrimSpace(note),
		Entries:  entries,
	}
	if err := b.store.CommitWorkout(ctx, w); err != nil {
		b.log.Error("workout commit failed", "error", err)
		b.send(msgStorageUnavailable, mainMenuKeyboard())
		return
	}

	totalSets := w.SetCount()
	if totals, err := b.store.Totals(ctx); err == nil {
		totalSets = totals.Sets
	} else {
		b.log.Error("totals query failed", "error", err)
	}

	b.send(fmt.Sprintf("%s: %d set(s). Total sets logged: %d.\n%s",
		verb, len(entries), totalSets, areaSummary(entries)), mainMenuKeyboard())
}

// areaSummary formats per-body-area set counts for one workout.
func areaSummary(entries []models.WorkoutEntry) string {
	counts := map[string]int{}
	for _, e := range entries {
		counts[bodyarea.Lookup(e.Label)]++
	}

	areas := make([]string, 0, len(counts))
	for area := range counts {
		areas = append(areas, area)
	}
	sort.Slice(areas, func(i, j int) bool {
		if counts[areas[i]] != counts[areas[j]] {
			return counts[areas[i]] > counts[areas[j]]
		}
		return areas[i] < areas[j]
	})

	parts := make([]string, 0, len(areas))
	for _, area := range areas {
		parts = append(parts, fmt.Sprintf("%s %d", area, counts[area]))
	}
	return "Sets by body area: " + strings.Join(parts, ", ") + "."
}

func (b *Bot) sendStatus(ctx context.Context) {
	now := b.now()
	weekStart := nudge.WeekStart(now)
	weekEnd := nudge.WeekEnd(now)

	weekly, err := b.store.CountWorkoutsBetween(ctx, weekStart, weekEnd)
	if err != nil {
		b.log.Error("weekly count failed", "error", err)
		b.send(msgStorageUnavailable)
		return
	}
	totals, err := b.store.Totals(ctx)
	if err != nil {
		b.log.Error("totals query failed", "error", err)
		b.send(msgStorageUnavailable)
		return
	}

	avgSets, avgVolume := 0.0, 0.0
	if totals.Workouts > 0 {
		avgSets = float64(totals.Sets) / float64(totals.Workouts)
		avgVolume = totals.TotalVolume / float64(totals.Workouts)
	}

	b.send(strings.Join([]string{
		fmt.Sprintf("This week: %d/3 workouts", weekly),
		fmt.Sprintf("Workouts (all-time): %d", totals.Workouts),
		fmt.Sprintf("Snoozes (all-time): %d", totals.Snoozes),
		fmt.Sprintf("Total sets: %d", totals.Sets),
		fmt.Sprintf("Avg sets/workout: %.1f", avgSets),
		fmt.Sprintf("Total volume: %.1f", totals.TotalVolume),
		fmt.Sprintf("Avg volume/workout: %.1f", avgVolume),
	}, "\n"))
}

func (b *Bot) sendSummary(ctx context.Context, periodArg string) {
	period, err := report.ParsePeriod(periodArg)
	if err != nil {
		b.send("Unknown period. Use: /summary week, /summary month, or /summary quarter.")
		return
	}

	summary, err := report.Summarize(ctx, b.store, period, b.now())
	if err != nil {
		b.log.Error("summary failed", "period", period, "error", err)
		b.send(msgStorageUnavailable)
		return
	}
	b.send(strings.Join(summary.Lines(), "\n"), mainMenuKeyboard())
}

func (b *Bot) snooze(ctx context.Context, milestone int) {
	ev := models.SnoozeEvent{Milestone: milestone, LoggedAt: b.now(), Reason: "button_snooze"}
	if err := b.store.RecordSnooze(ctx, ev); err != nil {
		b.log.Error("snooze record failed", "error", err)
		b.send(msgStorageUnavailable)
		return
	}

	minutes := int(b.opts.SnoozeAfter / time.Minute)
	b.send(fmt.Sprintf("Snooze logged. I will remind you again in %d minutes.", minutes))

	time.AfterFunc(b.opts.SnoozeAfter, func() {
		b.send("Gym check-in. Tap I trained to log your workout or snooze.", reminderKeyboard(milestone))
	})
}
