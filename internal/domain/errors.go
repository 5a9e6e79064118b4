package domain

import "errors"

var (
	// ErrUnknownTeam is returned for submissions from names that were never provisioned.
	ErrUnknownTeam = errors.New("unknown team")
	// ErrDuplicateSubmission is returned when a team already submitted this round.
	// Expected under at-least-once delivery; callers discard, they do not escalate.
	ErrDuplicateSubmission = errors.New("duplicate submission")
	// ErrLateSubmission is returned when answers arrive after the reveal and the
	// late policy disallows them.
	ErrLateSubmission = errors.New("submission after reveal")
	// ErrQuestionsExhausted signals that advance was requested past the last question.
	ErrQuestionsExhausted = errors.New("no questions remaining")
	// ErrNoActiveQuestion is returned when grading runs before a round was opened.
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrUnknownQuestionPart is returned for an operator grade on a part the
	// active question does not have.
	ErrUnknownQuestionPart = errors.New("question part out of range")
)
