// Package draft implements the in-progress workout accumulator. A session
// collects parsed entries across one or more messages until the user
// finishes, undoes, or cancels. Sessions are transient: nothing here touches
// the persistence layer.
package draft

import (
	"errors"
	"strings"

	"github.com/claude/gymbot/internal/models"
)

// ErrEmptyDraft is returned by Undo on a draft with no batches and by Finish
// on a draft that never received entries.
var ErrEmptyDraft = errors.New("draft is empty")

// batch is the unit of undo: all entries appended by one message.
type batch struct {
	entries []models.WorkoutEntry
	source  string
}

// Session accumulates pending entries for one in-progress workout. It is not
// safe for concurrent use; the bot serializes access per owner.
type Session struct {
	batches []batch
}

// New returns an empty draft session.
func New() *Session {
	return &Session{}
}

// Append records one message's worth of entries as a single undo point.
func (s *Session) Append(entries []models.WorkoutEntry, sourceText string) {
	if len(entries) == 0 {
		return
	}
	s.batches = append(s.batches, batch{entries: entries, source: strings.TrimSpace(sourceText)})
}

// UndoLast removes exactly the entries added by the most recent Append and
// reports how many sets were dropped.
func (s *Session) UndoLast() (int, error) {
	if len(s.batches) == 0 {
		return 0, ErrEmptyDraft
	}
	last := s.batches[len(s.batches)-1]
	s.batches = s.batches[:len(s.batches)-1]
	return len(last.entries), nil
}

// SetCount returns the number of pending sets across all batches.
func (s *Session) SetCount() int {
	n := 0
	for _, b := range s.batches {
		n += len(b.entries)
	}
	return n
}

// Empty reports whether the draft has no pending entries.
func (s *Session) Empty() bool {
	return s.SetCount() == 0
}

// Finish returns the full ordered entry sequence plus a note joining the
// source messages, and clears the session. The caller commits the result;
// an empty draft fails before any commit can happen.
func (s *Session) Finish() ([]models.WorkoutEntry, string, error) {
	if s.Empty() {
		return nil, "", ErrEmptyDraft
	}

	var entries []models.WorkoutEntry
	var sources []string
	for _, b := range s.batches {
		entries = append(entries, b.entries...)
		if b.source != "" {
			sources = append(sources, b.source)
		}
	}
	s.batches = nil
	return entries, strings.Join(sources, " | "), nil
}

// Reset discards all pending entries.
func (s *Session) Reset() {
	s.batches = nil
}
