package domain

import "time"

// MaxParts is the number of answer slots a question can have. Questions
// with a single part leave the second slot unused.
const MaxParts = 2

// Mark classifies one answer part of one team for the current round.
type Mark string

const (
	MarkUngraded  Mark = "ungraded"
	MarkPerfect   Mark = "perfect"
	MarkCorrect   Mark = "correct"
	MarkIncorrect Mark = "incorrect"
	MarkLate      Mark = "late"
)

// Awarding reports whether the mark carried a point award.
func (m Mark) Awarding() bool {
	return m == MarkPerfect || m == MarkCorrect
}

// Phase controls answer visibility and the late-submission policy.
type Phase string

const (
	PhaseHidden   Phase = "hidden"
	PhaseRevealed Phase = "revealed"
)

// Team holds one team's session score and its current-round submission.
// Answers, Marks and Submitted are round-scoped: they are only meaningful
// between a round opening and the next advance, which clears them.
//
// Submitted distinguishes "never submitted this round" from "submitted
// blanks"; the empty-redo exemption needs both states.
type Team struct {
	Name      string           `json:"name"`
	Points    int              `json:"points"`
	Answers   [MaxParts]string `json:"answers"`
	Marks     [MaxParts]Mark   `json:"marks"`
	Submitted bool             `json:"submitted"`
}

// NewTeam returns a team with zero points and an open round.
func NewTeam(name string) Team {
	t := Team{Name: name}
	t.ClearRound()
	return t
}

// ClearRound resets the round-scoped fields, keeping points.
func (t *Team) ClearRound() {
	t.Answers = [MaxParts]string{}
	t.Marks = [MaxParts]Mark{MarkUngraded, MarkUngraded}
	t.Submitted = false
}

// RoundState is the singleton record driving the round lifecycle.
// ReferenceValues accumulates every numeric answer revealed so far; it is
// the grading context for all future year questions and only grows until
// an explicit reset.
type RoundState struct {
	Phase           Phase `json:"phase"`
	ActiveQuestion  int   `json:"activeQuestion"` // index into the catalog, -1 before the first question
	ReferenceValues []int `json:"referenceValues"`
}

// PartKind selects the grading rule for a question part.
type PartKind string

const (
	// PartExact grades by normalized string equality.
	PartExact PartKind = "exact"
	// PartYear grades numerically against the band of known reference values.
	PartYear PartKind = "year"
)

// QuestionPart is one prompt with its canonical answer.
type QuestionPart struct {
	Prompt string   `json:"prompt"`
	Answer string   `json:"answer"`
	Kind   PartKind `json:"kind"`
}

// Question is read-only reference data, externally supplied and ordered.
type Question struct {
	ID    string         `json:"id"`
	Parts []QuestionPart `json:"parts"`
}

// Submission is the decoded wire message. It is never persisted as its
// own entity; it is consumed into the team record.
type Submission struct {
	TeamName string
	Answers  []string
}

// Blank reports whether every submitted part is empty.
func (s Submission) Blank() bool {
	for _, a := range s.Answers {
		if a != "" {
			return false
		}
	}
	return true
}

// ScoreboardRow is one team's line on the projector view.
type ScoreboardRow struct {
	Name    string           `json:"name"`
	Points  int              `json:"points"`
	Answers [MaxParts]string `json:"answers"`
	Marks   [MaxParts]Mark   `json:"marks"`
}

// RankingEntry is one line of the points ranking.
type RankingEntry struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// Scoreboard is the read model served to presentation layers. It is an
// eventually consistent snapshot; no cross-record consistency is owed
// beyond per-team atomicity.
type Scoreboard struct {
	Phase          Phase           `json:"phase"`
	ActiveQuestion *Question       `json:"activeQuestion,omitempty"`
	Rows           []ScoreboardRow `json:"rows"`
	Ranking        []RankingEntry  `json:"ranking"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
