package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"quiznight-service/internal/domain"
)

const (
	teamKeyPrefix = "game:team:"
	teamSetKey    = "game:teams"
	roundKey      = "game:round"
)

// ScoreStore keeps teams and the round-state singleton in Redis. Each
// record is one JSON value written with a single SET, which is what gives
// readers per-record atomicity.
type ScoreStore struct {
	client       *redis.Client
	defaultState domain.RoundState
}

// NewScoreStore returns a store that reports defaultState until the first
// explicit round-state write.
func NewScoreStore(client *redis.Client, defaultState domain.RoundState) *ScoreStore {
	return &ScoreStore{client: client, defaultState: defaultState}
}

func (s *ScoreStore) GetTeam(ctx context.Context, name string) (domain.Team, error) {
	raw, err := s.client.Get(ctx, teamKeyPrefix+name).Result()
	if err == redis.Nil {
		return domain.Team{}, domain.ErrUnknownTeam
	}
	if err != nil {
		return domain.Team{}, fmt.Errorf("get team: %w", err)
	}
	var team domain.Team
	if err := json.Unmarshal([]byte(raw), &team); err != nil {
		return domain.Team{}, fmt.Errorf("decode team: %w", err)
	}
	return team, nil
}

func (s *ScoreStore) UpsertTeam(ctx context.Context, team domain.Team) error {
	raw, err := json.Marshal(team)
	if err != nil {
		return fmt.Errorf("encode team: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, teamKeyPrefix+team.Name, raw, 0)
	pipe.SAdd(ctx, teamSetKey, team.Name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("persist team: %w", err)
	}
	return nil
}

func (s *ScoreStore) ListTeams(ctx context.Context) ([]domain.Team, error) {
	names, err := s.client.SMembers(ctx, teamSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list team names: %w", err)
	}
	sort.Strings(names)

	teams := make([]domain.Team, 0, len(names))
	for _, name := range names {
		team, err := s.GetTeam(ctx, name)
		if err == domain.ErrUnknownTeam {
			// Name set and record can drift if a key was deleted by hand.
			continue
		}
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, nil
}

func (s *ScoreStore) GetRoundState(ctx context.Context) (domain.RoundState, error) {
	raw, err := s.client.Get(ctx, roundKey).Result()
	if err == redis.Nil {
		return s.defaultState, nil
	}
	if err != nil {
		return domain.RoundState{}, fmt.Errorf("get round state: %w", err)
	}
	var state domain.RoundState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return domain.RoundState{}, fmt.Errorf("decode round state: %w", err)
	}
	return state, nil
}

func (s *ScoreStore) SetRoundState(ctx context.Context, state domain.RoundState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode round state: %w", err)
	}
	if err := s.client.Set(ctx, roundKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("persist round state: %w", err)
	}
	return nil
}
