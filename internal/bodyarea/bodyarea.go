// Package bodyarea holds the static workout-label → body-area reference
// mapping used by reporting and nudge focus suggestions. The mapping is
// read-only; unknown labels resolve to AreaUnmapped.
package bodyarea

import (
	"regexp"
	"strings"
)

const (
	AreaChest     = "chest"
	AreaBack      = "back"
	AreaShoulders = "shoulders"
	AreaLegs      = "legs"
	AreaArms      = "arms"
	AreaCore      = "core"
	AreaFullBody  = "full_body"
	AreaCardio    = "cardio"

	// AreaUnmapped is returned for labels outside the seed table.
	AreaUnmapped = "unmapped"
)

// Tracked lists the areas that count toward weekly coverage.
var Tracked = []string{AreaChest, AreaShoulders, AreaBack, AreaLegs, AreaCore}

// NudgePriority orders untrained areas in nudge focus suggestions.
var NudgePriority = []string{AreaChest, AreaBack, AreaShoulders, AreaLegs, AreaCore}

// Mapping is one seed row: canonical key, display label, body area.
type Mapping struct {
	Key   string
	Label string
	Area  string
}

var (
	spaceRe    = regexp.MustCompile(`\s+`)
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizeLabel lowercases and collapses whitespace for display.
func NormalizeLabel(s string) string {
	return spaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// Key reduces a label to its canonical lookup key: lowercase alphanumerics
// only, so "Bench Press", "bench-press" and "benchpress" collide.
func Key(s string) string {
	return nonAlnumRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "")
}

// Lookup returns the body area for a workout label, or AreaUnmapped.
func Lookup(label string) string {
	if area, ok := areaByKey[Key(label)]; ok {
		return area
	}
	return AreaUnmapped
}

// DisplayLabel returns the canonical display label for a key, falling back
// to the key itself for unmapped workouts.
func DisplayLabel(key string) string {
	if label, ok := labelByKey[key]; ok {
		return label
	}
	return key
}

// Seed returns the full mapping table in a stable order, for mirroring into
// the persistence layer.
func Seed() []Mapping {
	out := make([]Mapping, 0, len(seed))
	for _, row := range seed {
		out = append(out, Mapping{Key: Key(row[0]), Label: NormalizeLabel(row[0]), Area: row[1]})
	}
	return out
}

var (
	areaByKey  = map[string]string{}
	labelByKey = map[string]string{}
)

func init() {
	for _, row := range seed {
		k := Key(row[0])
		areaByKey[k] = row[1]
		labelByKey[k] = NormalizeLabel(row[0])
	}
}

// seed pairs workout labels with their coarse anatomical grouping.
var seed = [][2]string{
	// Chest
	{"bench press", AreaChest},
	{"barbell bench press", AreaChest},
	{"dumbbell bench press", AreaChest},
	{"incline bench press", AreaChest},
	{"decline bench press", AreaChest},
	{"incline dumbbell press", AreaChest},
	{"decline dumbbell press", AreaChest},
	{"machine chest press", AreaChest},
	{"chest press", AreaChest},
	{"smith machine bench press", AreaChest},
	{"push up", AreaChest},
	{"pushup", AreaChest},
	{"weighted push up", AreaChest},
	{"chest dip", AreaChest},
	{"dips", AreaChest},
	{"cable fly", AreaChest},
	{"cable crossover", AreaChest},
	{"pec deck", AreaChest},
	{"pec fly", AreaChest},
	{"dumbbell fly", AreaChest},
	{"svend press", AreaChest},
	// Back
	{"pull up", AreaBack},
	{"pullup", AreaBack},
	{"pull ups", AreaBack},
	{"chin up", AreaBack},
	{"lat pulldown", AreaBack},
	{"wide grip lat pulldown", AreaBack},
	{"close grip lat pulldown", AreaBack},
	{"seated cable row", AreaBack},
	{"seated row", AreaBack},
	{"barbell row", AreaBack},
	{"bent over row", AreaBack},
	{"dumbbell row", AreaBack},
	{"single arm dumbbell row", AreaBack},
	{"pendlay row", AreaBack},
	{"t bar row", AreaBack},
	{"inverted row", AreaBack},
	{"chest supported row", AreaBack},
	{"face pull", AreaShoulders},
	{"facepull", AreaShoulders},
	{"straight arm pulldown", AreaBack},
	{"back extension", AreaBack},
	{"hyperextension", AreaBack},
	{"reverse hyper", AreaBack},
	{"good morning", AreaBack},
	{"rack pull", AreaBack},
	{"deadlift", AreaLegs},
	{"sumo deadlift", AreaBack},
	{"romanian deadlift", AreaBack},
	{"rdl", AreaBack},
	// Shoulders
	{"overhead press", AreaShoulders},
	{"shoulder press", AreaShoulders},
	{"barbell overhead press", AreaShoulders},
	{"dumbbell shoulder press", AreaShoulders},
	{"seated dumbbell press", AreaShoulders},
	{"military press", AreaShoulders},
	{"arnold press", AreaShoulders},
	{"push press", AreaShoulders},
	{"landmine press", AreaShoulders},
	{"lateral raise", AreaShoulders},
	{"side lateral raise", AreaShoulders},
	{"front raise", AreaShoulders},
	{"rear delt fly", AreaShoulders},
	{"reverse fly", AreaShoulders},
	{"upright row", AreaShoulders},
	{"cable lateral raise", AreaShoulders},
	{"shrug", AreaShoulders},
	{"dumbbell shrug", AreaShoulders},
	{"barbell shrug", AreaShoulders},
	// Legs
	{"squat", AreaLegs},
	{"back squat", AreaLegs},
	{"front squat", AreaLegs},
	{"high bar squat", AreaLegs},
	{"low bar squat", AreaLegs},
	{"box squat", AreaLegs},
	{"pause squat", AreaLegs},
	{"goblet squat", AreaLegs},
	{"hack squat", AreaLegs},
	{"smith machine squat", AreaLegs},
	{"leg press", AreaLegs},
	{"leg extension", AreaLegs},
	{"leg curl", AreaLegs},
	{"seated leg curl", AreaLegs},
	{"lying leg curl", AreaLegs},
	{"nordic curl", AreaLegs},
	{"walking lunge", AreaLegs},
	{"lunge", AreaLegs},
	{"reverse lunge", AreaLegs},
	{"split squat", AreaLegs},
	{"bulgarian split squat", AreaLegs},
	{"step up", AreaLegs},
	{"pistol squat", AreaLegs},
	{"sissy squat", AreaLegs},
	{"calf raise", AreaLegs},
	{"standing calf raise", AreaLegs},
	{"seated calf raise", AreaLegs},
	{"donkey calf raise", AreaLegs},
	{"adductor machine", AreaLegs},
	{"abductor machine", AreaLegs},
	{"hip adduction", AreaLegs},
	{"hip abduction", AreaLegs},
	{"glute bridge", AreaLegs},
	{"hip thrust", AreaLegs},
	// Arms
	{"barbell curl", AreaArms},
	{"dumbbell curl", AreaArms},
	{"dumbell curl", AreaArms},
	{"curl", AreaArms},
	{"alternating dumbbell curl", AreaArms},
	{"hammer curl", AreaArms},
	{"preacher curl", AreaArms},
	{"incline dumbbell curl", AreaArms},
	{"concentration curl", AreaArms},
	{"cable curl", AreaArms},
	{"ez bar curl", AreaArms},
	{"reverse curl", AreaArms},
	{"tricep pushdown", AreaArms},
	{"triceps pushdown", AreaArms},
	{"pushdown", AreaArms},
	{"rope pushdown", AreaArms},
	{"overhead tricep extension", AreaArms},
	{"overhead triceps extension", AreaArms},
	{"skull crusher", AreaArms},
	{"lying tricep extension", AreaArms},
	{"close grip bench press", AreaArms},
	{"close grip push up", AreaArms},
	{"bench dip", AreaArms},
	{"cable tricep extension", AreaArms},
	{"tricep kickback", AreaArms},
	{"triceps kickback", AreaArms},
	{"wrist curl", AreaArms},
	{"reverse wrist curl", AreaArms},
	{"farmer carry", AreaArms},
	// Core
	{"plank", AreaCore},
	{"side plank", AreaCore},
	{"crunch", AreaCore},
	{"sit up", AreaCore},
	{"v up", AreaCore},
	{"dead bug", AreaCore},
	{"hollow hold", AreaCore},
	{"mountain climber", AreaCore},
	{"russian twist", AreaCore},
	{"hanging leg raise", AreaCore},
	{"leg raise", AreaCore},
	{"ab wheel", AreaCore},
	{"ab rollout", AreaCore},
	{"cable crunch", AreaCore},
	{"pallof press", AreaCore},
	{"wood chop", AreaCore},
	{"back plank", AreaCore},
	{"bird dog", AreaCore},
	{"toes to bar", AreaCore},
	// Full body / athletic
	{"clean", AreaFullBody},
	{"power clean", AreaFullBody},
	{"hang clean", AreaFullBody},
	{"snatch", AreaFullBody},
	{"power snatch", AreaFullBody},
	{"clean and jerk", AreaFullBody},
	{"thruster", AreaFullBody},
	{"burpee", AreaFullBody},
	{"man maker", AreaFullBody},
	{"kettlebell swing", AreaFullBody},
	{"turkish get up", AreaFullBody},
	{"wall ball", AreaFullBody},
	{"sled push", AreaFullBody},
	{"sled pull", AreaFullBody},
	{"bear crawl", AreaFullBody},
	{"battle rope", AreaFullBody},
	// Cardio conditioning
	{"run", AreaCardio},
	{"treadmill run", AreaCardio},
	{"jog", AreaCardio},
	{"sprint", AreaCardio},
	{"bike", AreaCardio},
	{"cycling", AreaCardio},
	{"stationary bike", AreaCardio},
	{"spin bike", AreaCardio},
	{"row", AreaCardio},
	{"rowing", AreaCardio},
	{"erg row", AreaCardio},
	{"jump rope", AreaCardio},
	{"stairmaster", AreaCardio},
	{"elliptical", AreaCardio},
	{"ski erg", AreaCardio},
}
