package app

import (
	"testing"

	"quiznight-service/internal/config"
	"quiznight-service/internal/domain"
)

func testRules() config.Game {
	rules := config.Game{}
	rules.ApplyDefaults()
	return rules
}

func TestExactGrading(t *testing.T) {
	grader := NewGrader(testRules())
	part := domain.QuestionPart{Answer: "Paris", Kind: domain.PartExact}

	cases := []struct {
		guess string
		want  domain.Mark
		delta int
	}{
		{"paris ", domain.MarkCorrect, 1},
		{"  PARIS", domain.MarkCorrect, 1},
		{"Pariss", domain.MarkIncorrect, 0},
		{"", domain.MarkIncorrect, 0},
	}
	for _, tc := range cases {
		mark, delta := grader.GradePart(part, tc.guess, nil)
		if mark != tc.want || delta != tc.delta {
			t.Fatalf("guess %q: got (%s, %d), want (%s, %d)", tc.guess, mark, delta, tc.want, tc.delta)
		}
	}
}

func TestYearBandGrading(t *testing.T) {
	grader := NewGrader(testRules())
	part := domain.QuestionPart{Answer: "1975", Kind: domain.PartYear}
	refs := []int{1960, 1980}

	cases := []struct {
		guess string
		want  domain.Mark
		delta int
	}{
		{"1975", domain.MarkPerfect, 2},
		{"1968", domain.MarkCorrect, 1}, // band is [1960, 1980]
		{"1960", domain.MarkCorrect, 1}, // inclusive bounds
		{"1980", domain.MarkCorrect, 1},
		{"1955", domain.MarkIncorrect, 0},
		{"1981", domain.MarkIncorrect, 0},
		{"", domain.MarkIncorrect, 0},
		{"nineteen", domain.MarkIncorrect, 0},
	}
	for _, tc := range cases {
		mark, delta := grader.GradePart(part, tc.guess, refs)
		if mark != tc.want || delta != tc.delta {
			t.Fatalf("guess %q: got (%s, %d), want (%s, %d)", tc.guess, mark, delta, tc.want, tc.delta)
		}
	}
}

func TestYearBandNarrowsAsReferencesAccumulate(t *testing.T) {
	grader := NewGrader(testRules())
	part := domain.QuestionPart{Answer: "1977", Kind: domain.PartYear}

	// Before 1975 is revealed the lower neighbor is 1960.
	if mark, _ := grader.GradePart(part, "1965", []int{1960, 1980}); mark != domain.MarkCorrect {
		t.Fatalf("expected correct before narrowing, got %s", mark)
	}
	// After 1975 joins the context the band shrinks to [1975, 1980].
	refs := InsertReference([]int{1960, 1980}, 1975)
	if mark, _ := grader.GradePart(part, "1965", refs); mark != domain.MarkIncorrect {
		t.Fatalf("expected incorrect after narrowing, got %s", mark)
	}
	if mark, _ := grader.GradePart(part, "1976", refs); mark != domain.MarkCorrect {
		t.Fatalf("expected correct inside narrowed band, got %s", mark)
	}
}

func TestYearBandSentinels(t *testing.T) {
	grader := NewGrader(testRules())
	part := domain.QuestionPart{Answer: "1975", Kind: domain.PartYear}

	// No context: the band spans the configured floor and ceiling.
	if mark, _ := grader.GradePart(part, "1950", nil); mark != domain.MarkCorrect {
		t.Fatalf("expected floor to be inclusive")
	}
	if mark, _ := grader.GradePart(part, "2025", nil); mark != domain.MarkCorrect {
		t.Fatalf("expected ceiling to be inclusive")
	}
	if mark, _ := grader.GradePart(part, "1949", nil); mark != domain.MarkIncorrect {
		t.Fatalf("expected below floor to be incorrect")
	}
}

func TestInsertReferenceKeepsSortedSet(t *testing.T) {
	refs := []int(nil)
	for _, v := range []int{1980, 1960, 1975, 1975, 1960} {
		refs = InsertReference(refs, v)
	}
	want := []int{1960, 1975, 1980}
	if len(refs) != len(want) {
		t.Fatalf("expected %v, got %v", want, refs)
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, refs)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  The   Beatles "); got != "the beatles" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}
