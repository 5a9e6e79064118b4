package memory

import (
	"context"
	"sort"
	"sync"

	"quiznight-service/internal/domain"
)

// ScoreStore is an in-memory implementation of app.ScoreStore, used for
// demos and tests. Records are copied on the way in and out so callers
// never share mutable state with the store.
type ScoreStore struct {
	mu    sync.RWMutex
	teams map[string]domain.Team
	state domain.RoundState
}

func NewScoreStore(initial domain.RoundState) *ScoreStore {
	return &ScoreStore{
		teams: make(map[string]domain.Team),
		state: initial,
	}
}

func (s *ScoreStore) GetTeam(_ context.Context, name string) (domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team, ok := s.teams[name]
	if !ok {
		return domain.Team{}, domain.ErrUnknownTeam
	}
	return team, nil
}

func (s *ScoreStore) UpsertTeam(_ context.Context, team domain.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[team.Name] = team
	return nil
}

func (s *ScoreStore) ListTeams(_ context.Context) ([]domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	teams := make([]domain.Team, 0, len(s.teams))
	for _, t := range s.teams {
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams, nil
}

func (s *ScoreStore) GetRoundState(_ context.Context) (domain.RoundState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := s.state
	state.ReferenceValues = append([]int(nil), s.state.ReferenceValues...)
	return state, nil
}

func (s *ScoreStore) SetRoundState(_ context.Context, state domain.RoundState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state.ReferenceValues = append([]int(nil), state.ReferenceValues...)
	s.state = state
	return nil
}
