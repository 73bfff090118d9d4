package draft

import (
	"errors"
	"testing"

	"github.com/claude/gymbot/internal/models"
)

func weight(v float64) *float64 { return &v }

func benchBatch() []models.WorkoutEntry {
	return []models.WorkoutEntry{
		{Label: "bench press", Reps: 8, WeightLb: weight(20)},
		{Label: "bench press", Reps: 8, WeightLb: weight(30)},
	}
}

func pullupBatch() []models.WorkoutEntry {
	return []models.WorkoutEntry{
		{Label: "pull ups", Reps: 12},
	}
}

// TestAppendAndFinish verifies entries accumulate in order across messages
// and Finish clears the session.
func TestAppendAndFinish(t *testing.T) {
	s := New()
	s.Append(benchBatch(), "bench press 20x8, 30x8")
	s.Append(pullupBatch(), "pull ups 12")

	if got := s.SetCount(); got != 3 {
		t.Fatalf("SetCount = %d, want 3", got)
	}

	entries, note, err := s.Finish()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Label != "bench press" || entries[2].Label != "pull ups" {
		t.Errorf("entry order wrong: %q ... %q", entries[0].Label, entries[2].Label)
	}
	if note != "bench press 20x8, 30x8 | pull ups 12" {
		t.Errorf("note = %q", note)
	}
	if !s.Empty() {
		t.Error("session not cleared after Finish")
	}
}

// TestUndoLastRemovesWholeBatch verifies undo drops exactly the last
// message's entries, restoring the pre-append state.
func TestUndoLastRemovesWholeBatch(t *testing.T) {
	s := New()
	s.Append(benchBatch(), "bench press 20x8, 30x8")
	s.Append(pullupBatch(), "pull ups 12")

	removed, err := s.UndoLast()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if got := s.SetCount(); got != 2 {
		t.Errorf("SetCount after undo = %d, want 2", got)
	}

	removed, err = s.UndoLast()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if !s.Empty() {
		t.Error("session not empty after undoing everything")
	}
}

// TestUndoEmpty verifies undo on an empty draft reports ErrEmptyDraft.
func TestUndoEmpty(t *testing.T) {
	s := New()
	if _, err := s.UndoLast(); !errors.Is(err, ErrEmptyDraft) {
		t.Errorf("UndoLast on empty = %v, want ErrEmptyDraft", err)
	}
}

// TestFinishEmpty verifies an empty draft cannot be committed.
func TestFinishEmpty(t *testing.T) {
	s := New()
	if _, _, err := s.Finish(); !errors.Is(err, ErrEmptyDraft) {
		t.Errorf("Finish on empty = %v, want ErrEmptyDraft", err)
	}

	s.Append(benchBatch(), "bench press 20x8, 30x8")
	if _, err := s.UndoLast(); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Finish(); !errors.Is(err, ErrEmptyDraft) {
		t.Errorf("Finish after undoing everything = %v, want ErrEmptyDraft", err)
	}
}

// TestAppendIgnoresEmptyBatch verifies a zero-entry append creates no undo
// point.
func TestAppendIgnoresEmptyBatch(t *testing.T) {
	s := New()
	s.Append(nil, "noise")
	if !s.Empty() {
		t.Error("empty append changed the session")
	}
	if _, err := s.UndoLast(); !errors.Is(err, ErrEmptyDraft) {
		t.Errorf("UndoLast = %v, want ErrEmptyDraft", err)
	}
}

// TestReset verifies Reset discards all pending entries.
func TestReset(t *testing.T) {
	s := New()
	s.Append(benchBatch(), "bench press 20x8, 30x8")
	s.Reset()
	if !s.Empty() {
		t.Error("session not empty after Reset")
	}
}
