package app

import (
	"sort"
	"strconv"
	"strings"

	"quiznight-service/internal/config"
	"quiznight-service/internal/domain"
)

// Grader classifies answer parts. It is pure: every call receives the
// accumulated reference values as explicit grading context.
type Grader struct {
	bandFloor     int
	bandCeiling   int
	pointsCorrect int
	pointsPerfect int
}

func NewGrader(rules config.Game) *Grader {
	return &Grader{
		bandFloor:     rules.BandFloor,
		bandCeiling:   rules.BandCeiling,
		pointsCorrect: rules.PointsCorrect,
		pointsPerfect: rules.PointsPerfect,
	}
}

// GradePart returns the classification and point delta for one answer part.
// refs is the ordered set of previously revealed numeric answers.
func (g *Grader) GradePart(part domain.QuestionPart, guess string, refs []int) (domain.Mark, int) {
	if part.Kind == domain.PartYear {
		if target, err := strconv.Atoi(strings.TrimSpace(part.Answer)); err == nil {
			return g.gradeYear(target, guess, refs)
		}
		// Catalog rows without a numeric answer fall back to exact matching.
	}
	return g.gradeExact(part.Answer, guess)
}

func (g *Grader) gradeExact(reference, guess string) (domain.Mark, int) {
	want := Normalize(reference)
	got := Normalize(guess)
	if got != "" && got == want {
		return domain.MarkCorrect, g.pointsCorrect
	}
	return domain.MarkIncorrect, 0
}

// gradeYear classifies a numeric guess against the band spanned by the
// nearest known reference values around the target.
func (g *Grader) gradeYear(target int, guess string, refs []int) (domain.Mark, int) {
	value, err := strconv.Atoi(strings.TrimSpace(guess))
	if err != nil {
		return domain.MarkIncorrect, 0
	}
	if value == target {
		return domain.MarkPerfect, g.pointsPerfect
	}
	lower, upper := g.band(target, refs)
	if value >= lower && value <= upper {
		return domain.MarkCorrect, g.pointsCorrect
	}
	return domain.MarkIncorrect, 0
}

// band returns the inclusive interval between the greatest reference value
// below the target and the least above it, falling back to the configured
// floor and ceiling when no neighbor exists yet.
func (g *Grader) band(target int, refs []int) (int, int) {
	lower, upper := g.bandFloor, g.bandCeiling
	for _, r := range refs {
		if r < target && r > lower {
			lower = r
		}
		if r > target && r < upper {
			upper = r
		}
	}
	return lower, upper
}

// Normalize trims, lowercases and collapses inner whitespace.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// InsertReference adds a value to the ordered reference set, keeping it
// sorted and free of duplicates so repeated capture is a no-op.
func InsertReference(refs []int, value int) []int {
	i := sort.SearchInts(refs, value)
	if i < len(refs) && refs[i] == value {
		return refs
	}
	refs = append(refs, 0)
	copy(refs[i+1:], refs[i:])
	refs[i] = value
	return refs
}
