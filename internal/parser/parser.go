// Package parser converts free-text workout messages into structured set
// entries. A message is a workout label followed by comma-separated set
// tokens, e.g. "bench press 20x8, 30x8" or "pull ups 12, 10".
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/claude/gymbot/internal/bodyarea"
	"github.com/claude/gymbot/internal/models"
)

// Sanity bounds on a single set. Numbers outside these ranges are almost
// certainly typos, so the whole message is rejected.
const (
	maxReps     = 100
	maxWeightLb = 2000
)

// ParseError reports the token that made a message unparseable. The draft is
// left untouched when a message fails; the user corrects and resends.
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Token, e.Reason)
}

var (
	firstDigitRe = regexp.MustCompile(`\d`)

	// weightRepsRe matches: 20x8, 20lb x8, 135 lb x 5, 22.5@8
	weightRepsRe = regexp.MustCompile(`(?i)^(\d{1,4}(?:\.\d+)?)\s*(?:lbs?)?\s*[x@]\s*(\d{1,3})$`)

	// bareRepsRe matches a reps-only token: 12
	bareRepsRe = regexp.MustCompile(`^(\d{1,3})$`)
)

// Parse converts one message into entries. All tokens share the message's
// leading label. Any malformed token fails the entire message — no partial
// entries are ever returned alongside an error.
func Parse(text string) ([]models.WorkoutEntry, error) {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil, &ParseError{Token: text, Reason: "empty message"}
	}

	loc := firstDigitRe.FindStringIndex(clean)
	if loc == nil {
		return nil, &ParseError{Token: clean, Reason: "no set tokens found"}
	}

	label := bodyarea.NormalizeLabel(strings.Trim(clean[:loc[0]], " :-,"))
	if label == "" {
		return nil, &ParseError{Token: clean, Reason: "missing workout label"}
	}

	var entries []models.WorkoutEntry
	for _, raw := range strings.Split(clean[loc[0]:], ",") {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		entry, err := parseSetToken(label, token)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, &ParseError{Token: clean, Reason: "no set tokens found"}
	}
	return entries, nil
}

// parseSetToken parses one comma-separated token: either "<weight>x<reps>"
// (optional lb suffix on the weight, cosmetic only) or a bare "<reps>".
func parseSetToken(label, token string) (models.WorkoutEntry, error) {
	if m := weightRepsRe.FindStringSubmatch(token); m != nil {
		weight, err := strconv.ParseFloat(m[1], 64)
		if err != nil || weight <= 0 || weight > maxWeightLb {
			return models.WorkoutEntry{}, &ParseError{Token: token, Reason: "weight out of range"}
		}
		reps, err := strconv.Atoi(m[2])
		if err != nil || reps < 1 || reps > maxReps {
			return models.WorkoutEntry{}, &ParseError{Token: token, Reason: "reps out of range"}
		}
		return models.WorkoutEntry{Label: label, Reps: reps, WeightLb: &weight}, nil
	}

	if m := bareRepsRe.FindStringSubmatch(token); m != nil {
		reps, err := strconv.Atoi(m[1])
		if err != nil || reps < 1 || reps > maxReps {
			return models.WorkoutEntry{}, &ParseError{Token: token, Reason: "reps out of range"}
		}
		// Weight stays nil: logged without a weight, not at weight 0.
		return models.WorkoutEntry{Label: label, Reps: reps}, nil
	}

	return models.WorkoutEntry{}, &ParseError{Token: token, Reason: "expected <weight>x<reps> or <reps>"}
}

// Canonical renders entries back into the parser's input form. Parsing the
// canonical form yields the same entries.
func Canonical(entries []models.WorkoutEntry) string {
	if len(entries) == 0 {
		return ""
	}
	tokens := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.WeightLb != nil {
			tokens = append(tokens, strconv.FormatFloat(*e.WeightLb, 'f', -1, 64)+"x"+strconv.Itoa(e.Reps))
		} else {
			tokens = append(tokens, strconv.Itoa(e.Reps))
		}
	}
	return entries[0].Label + " " + strings.Join(tokens, ", ")
}
