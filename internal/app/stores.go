package app

import (
	"context"

	"quiznight-service/internal/domain"
)

// ScoreStore is the persistence contract the coordinator grades through.
// Team and round-state writes replace the whole record; implementations
// must never expose a half-updated record to readers.
type ScoreStore interface {
	// GetTeam returns domain.ErrUnknownTeam for unprovisioned names.
	GetTeam(ctx context.Context, name string) (domain.Team, error)
	UpsertTeam(ctx context.Context, team domain.Team) error
	// ListTeams returns all teams ordered by name.
	ListTeams(ctx context.Context) ([]domain.Team, error)
	GetRoundState(ctx context.Context) (domain.RoundState, error)
	SetRoundState(ctx context.Context, state domain.RoundState) error
}

// QuestionCatalog loads the ordered question set (from cache/backing store).
type QuestionCatalog interface {
	Questions(ctx context.Context) ([]domain.Question, error)
}
