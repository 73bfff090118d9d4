package bot

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/claude/gymbot/internal/models"
	"github.com/claude/gymbot/internal/quote"
	"github.com/claude/gymbot/internal/storage"
)

const ownerID int64 = 7

// tuesdayEvening is past the first milestone deadline of its week.
var tuesdayEvening = time.Date(2026, 8, 25, 20, 1, 0, 0, time.UTC)

// fakeAPI records outbound messages instead of talking to Telegram.
type fakeAPI struct {
	sent    []tgbotapi.MessageConfig
	updates chan tgbotapi.Update
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	if f.updates == nil {
		f.updates = make(chan tgbotapi.Update)
	}
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatal("no messages sent")
	}
	return f.sent[len(f.sent)-1].Text
}

func newTestBot(t *testing.T, now time.Time) (*Bot, *fakeAPI, storage.Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	if err := storage.RunMigrations("sqlite://"+path, "../../migrations"); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	store, err := storage.OpenSQLite(path)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	api := &fakeAPI{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	b := New(api, store, quote.New("", ""), Options{
		OwnerID:     ownerID,
		Zone:        time.UTC,
		SnoozeAfter: time.Hour,
		Now:         func() time.Time { return now },
	}, log)
	return b, api, store
}

func textUpdate(from int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: from},
		Chat: &tgbotapi.Chat{ID: from},
		Text: text,
	}}
}

func commandUpdate(from int64, text string) tgbotapi.Update {
	u := textUpdate(from, text)
	cmdLen := len(text)
	if i := strings.IndexByte(text, ' '); i > 0 {
		cmdLen = i
	}
	u.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}}
	return u
}

func callbackUpdate(from int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb",
		From: &tgbotapi.User{ID: from},
		Data: data,
	}}
}

// TestNonOwnerDroppedSilently verifies updates from other senders produce no
// reply and no state change.
func TestNonOwnerDroppedSilently(t *testing.T) {
	b, api, _ := newTestBot(t, tuesdayEvening)
	ctx := context.Background()

	b.HandleUpdate(ctx, textUpdate(99, "hi"))
	b.HandleUpdate(ctx, commandUpdate(99, "/status"))
	b.HandleUpdate(ctx, callbackUpdate(99, cbDidWorkout))

	if len(api.sent) != 0 {
		t.Errorf("non-owner triggered %d replies", len(api.sent))
	}
}

// TestMenuTriggers verifies greeting words open the menu only when no draft
// is awaiting input.
func TestMenuTriggers(t *testing.T) {
	b, api, _ := newTestBot(t, tuesdayEvening)
	ctx := context.Background()

	b.HandleUpdate(ctx, textUpdate(ownerID, "hi"))
	if len(api.sent) != 1 || !strings.Contains(api.lastText(t), "What do you want to do?") {
		t.Fatalf("greeting did not open menu: %+v", api.sent)
	}

	b.HandleUpdate(ctx, textUpdate(ownerID, "random chatter"))
	if len(api.sent) != 1 {
		t.Errorf("non-trigger text produced a reply")
	}
}

// TestDraftFlow walks the full guided log: open, append, undo, re-append,
// finish, and verifies the workout lands in storage.
func TestDraftFlow(t *testing.T) {
	b, api, store := newTestBot(t, tuesdayEvening)
	ctx := context.Background()

	b.HandleUpdate(ctx, callbackUpdate(ownerID, cbDidWorkout))
	if !strings.Contains(api.lastText(t), "Finish Workout") {
		t.Fatalf("draft prompt missing: %q", api.lastText(t))
	}

	b.HandleUpdate(ctx, textUpdate(ownerID, "bench press 20x8, 30x8"))
	if !strings.Contains(api.lastText(t), "Current draft: 2 set(s)") {
		t.Fatalf("append reply = %q", api.lastText(t))
	}

	b.HandleUpdate(ctx, textUpdate(ownerID, "pull ups 12"))
	if !strings.Contains(api.lastText(t), "Current draft: 3 set(s)") {
		t.Fatalf("second append reply = %q", api.lastText(t))
	}

	b.HandleUpdate(ctx, callbackUpdate(ownerID, cbUndoEntry))
	if !strings.Contains(api.lastText(t), "Current draft: 2 set(s)") {
		t.Fatalf("undo reply = %q", api.lastText(t))
	}

	b.HandleUpdate(ctx, callbackUpdate(ownerID, cbFinishWorkout))
	if !strings.Contains(api.lastText(t), "Workout saved: 2 set(s)") {
		t.Fatalf("finish reply = %q", api.lastText(t))
	}
	if !strings.Contains(api.lastText(t), "chest 2") {
		t.Errorf("finish reply missing area summary: %q", api.lastText(t))
	}

	workouts, err := store.ListWorkouts(ctx, tuesdayEvening.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(workouts) != 1 || len(workouts[0].Entries) != 2 {
		t.Fatalf("stored workouts = %+v", workouts)
	}
	if workouts[0].Note != "bench press 20x8, 30x8" {
		t.Errorf("note = %q", workouts[0].Note)
	}
}

// TestDraftResume verifies a second "I trained" tap resumes the pending
// draft instead of discarding it.
func TestDraftResume(t *testing.T) {
	b, api, _ := newTestBot(t, tuesdayEvening)
	ctx := context.Background()

	b.HandleUpdate(ctx, callbackUpdate(ownerID, cbDidWorkout))
	b.HandleUpdate(ctx, textUpdate(ownerID, "bench press 20x8"))
	b.HandleUpdate(ctx, callbackUpdate(ownerID, cbDidWorkout))

	if !strings.Contains(api.lastText(t), "Resuming your draft (1 set(s) pending)") {
		t.Errorf("resume reply = %q", api.lastText(t))
	}
}

// TestDraftParseFailureLeavesDraftIntact verifies a bad token rejects the
// whole message without touching accumulated entries.
func TestDraftParseFailureLeavesDraftIntact(t *testing.T) {
	b, api, _ := newTestBot(t, tuesdayEvening)
	ctx := context.Background()

	b.HandleUpdate(ctx, callbackUpdate(ownerID, cbDidWorkout))
	b.HandleUpdate(ctx, textUpdate(ownerID, "bench press 20x8"))
	b.HandleUpdate(ctx, textUpdate(ownerID, "bench press 20x8, banana"))

	if !strings.Contains(api.lastText(t), "couldn't parse") {
		t.Fatalf("parse failure reply = %q", api.lastText(t))
	}

	b.HandleUpdate(ctx, callbackUpdate(ownerID, cbFinishWorkout))
	if !strings.Contains(api.lastText(t), "Workout saved: 1 set(s)") {
		t.Errorf("finish after failed message = %q", api.lastText(t))
	}
}

// TestFinishEmptyDraft verifies finishing with no entries commits nothing.
func TestFinishEmptyDraft(t *testing.T) {
	b, api, store := newTestBot(t, tuesdayEvening)
	ctx := context.Background()

	b.HandleUpdate(ctx, callbackUpdate(ownerID, cbDidWorkout))
	b.HandleUpdate(ctx, callbackUpdate(ownerID, cbFinishWorkout))

	if !strings.Contains(api.lastText(t), "No reps/weight entries collected yet") {
		t.Fatalf("empty finish reply = %q", api.lastText(t))
	}
	n, err := store.CountWorkoutsBetween(ctx, tuesdayEvening.Add(-time.Hour), tuesdayEvening.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("empty draft committed %d workouts", n)
	}
}

// TestCancelDraft verifies cancel discards pending entries.
func TestCancelDraft(t *testing.T) {
	b, api, _ := newTestBot(t, tuesdayEvening)
	ctx := context.Background()

	b.HandleUpdate(ctx, callbackUpdate(ownerID, cbDidWorkout))
	b.HandleUpdate(ctx, textUpdate(ownerID, "bench press 20x8"))
	b.HandleUpdate(ctx, callbackUpdate(ownerID, cbCancelWorkout))

	if !strings.Contains(api.lastText(t), "canceled") {
		t.Fatalf("cancel reply = %q", api.lastText(t))
	}

	b.HandleUpdate(ctx, callbackUpdate(ownerID, cbDidWorkout))
	if strings.Contains(api.lastText(t), "Resuming") {
		t.Errorf("draft survived cancel: %q", api.lastText(t))
	}
}

// TestQuickLogCommand verifies /log with arguments commits in one step.
func TestQuickLogCommand(t *testing.T) {
	b, api, store := newTestBot(t, tuesdayEvening)
	ctx := context.Background()

	b.HandleUpdate(ctx, commandUpdate(ownerID, "/log squat 135x5, 155x5"))
	if !strings.Contains(api.lastText(t), "Workout logged: 2 set(s)") {
		t.Fatalf("quick log reply = %q", api.lastText(t))
	}

	n, err := store.CountWorkoutsBetween(ctx, tuesdayEvening.Add(-time.Hour), tuesdayEvening.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("stored workouts = %d, want 1", n)
	}
}

// TestSnoozeRecorded verifies the snooze button persists a snooze event
// carrying the milestone it answered.
func TestSnoozeRecorded(t *testing.T) {
	b, api, store := newTestBot(t, tuesdayEvening)
	ctx := context.Background()

	b.HandleUpdate(ctx, callbackUpdate(ownerID, cbSnoozePrefix+"1"))
	if !strings.Contains(api.lastText(t), "remind you again in 60 minutes") {
		t.Fatalf("snooze reply = %q", api.lastText(t))
	}

	events, err := store.ListSnoozes(ctx, tuesdayEvening.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Reason != "button_snooze" || events[0].Milestone != 1 {
		t.Errorf("snoozes = %+v", events)
	}
}

// TestStatusCommand verifies /status reports weekly progress and totals.
func TestStatusCommand(t *testing.T) {
	b, api, _ := newTestBot(t, tuesdayEvening)
	ctx := context.Background()

	b.HandleUpdate(ctx, commandUpdate(ownerID, "/log squat 135x5"))
	b.HandleUpdate(ctx, commandUpdate(ownerID, "/status"))

	text := api.lastText(t)
	for _, want := range []string{"This week: 1/3 workouts", "Workouts (all-time): 1", "Total sets: 1"} {
		if !strings.Contains(text, want) {
			t.Errorf("status missing %q:\n%s", want, text)
		}
	}
}

// TestDeadlineNudgeFiresOnce verifies a missed milestone nudges exactly once
// and includes a focus suggestion.
func TestDeadlineNudgeFiresOnce(t *testing.T) {
	b, api, _ := newTestBot(t, tuesdayEvening)
	ctx := context.Background()

	if err := b.CheckDeadlineNudges(ctx); err != nil {
		t.Fatal(err)
	}
	if len(api.sent) != 1 {
		t.Fatalf("first check sent %d messages, want 1", len(api.sent))
	}
	text := api.lastText(t)
	if !strings.Contains(text, "workout 1 of 3 was due by Tuesday 8:00 PM") {
		t.Errorf("nudge text = %q", text)
	}
	if !strings.Contains(text, "Suggested focus") {
		t.Errorf("nudge missing focus suggestion: %q", text)
	}

	if err := b.CheckDeadlineNudges(ctx); err != nil {
		t.Fatal(err)
	}
	if len(api.sent) != 1 {
		t.Errorf("second check re-sent the nudge")
	}
}

// TestDeadlineNudgeSkippedWhenMet verifies no nudge goes out when the
// milestone count was reached before its deadline.
func TestDeadlineNudgeSkippedWhenMet(t *testing.T) {
	b, api, store := newTestBot(t, tuesdayEvening)
	ctx := context.Background()

	// Logged Monday evening, well before the Tuesday 20:00 deadline.
	w := &models.Workout{
		ID:       uuid.New(),
		LoggedAt: time.Date(2026, 8, 24, 18, 0, 0, 0, time.UTC),
		Entries:  []models.WorkoutEntry{{Label: "squat", Reps: 5}},
	}
	if err := store.CommitWorkout(ctx, w); err != nil {
		t.Fatal(err)
	}

	if err := b.CheckDeadlineNudges(ctx); err != nil {
		t.Fatal(err)
	}
	if len(api.sent) != 0 {
		t.Errorf("nudge fired despite met milestone: %q", api.lastText(t))
	}
}

// TestMorningGreeting verifies the daily greeting carries a quote, and the
// monthly recap goes out exactly once on the first of the month.
func TestMorningGreeting(t *testing.T) {
	firstOfMonth := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	b, api, _ := newTestBot(t, firstOfMonth)
	ctx := context.Background()

	if err := b.MorningGreeting(ctx); err != nil {
		t.Fatal(err)
	}
	if len(api.sent) != 2 {
		t.Fatalf("first-of-month greeting sent %d messages, want greeting + report", len(api.sent))
	}
	if !strings.Contains(api.sent[0].Text, "Good morning.") {
		t.Errorf("greeting = %q", api.sent[0].Text)
	}
	if !strings.Contains(api.sent[1].Text, "Monthly summary (August 2026)") {
		t.Errorf("report = %q", api.sent[1].Text)
	}

	if err := b.MorningGreeting(ctx); err != nil {
		t.Fatal(err)
	}
	if len(api.sent) != 3 {
		t.Errorf("second greeting resent the monthly report (%d messages)", len(api.sent))
	}
}

// TestMorningGreetingMidMonth verifies ordinary days get only the greeting.
func TestMorningGreetingMidMonth(t *testing.T) {
	b, api, _ := newTestBot(t, tuesdayEvening)
	if err := b.MorningGreeting(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(api.sent) != 1 {
		t.Errorf("mid-month greeting sent %d messages, want 1", len(api.sent))
	}
}
