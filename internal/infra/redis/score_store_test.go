package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiznight-service/internal/domain"
)

func newTestStore(t *testing.T) *ScoreStore {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewScoreStore(client, domain.RoundState{Phase: domain.PhaseHidden, ActiveQuestion: 0})
}

func TestScoreStoreTeamRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.GetTeam(ctx, "Team 1"); err != domain.ErrUnknownTeam {
		t.Fatalf("expected unknown team, got %v", err)
	}

	team := domain.NewTeam("Team 1")
	team.Points = 4
	team.Answers[0] = "Paris"
	team.Marks[0] = domain.MarkCorrect
	team.Submitted = true
	if err := store.UpsertTeam(ctx, team); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := store.GetTeam(ctx, "Team 1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Points != 4 || got.Answers[0] != "Paris" || got.Marks[0] != domain.MarkCorrect || !got.Submitted {
		t.Fatalf("unexpected round trip: %+v", got)
	}
}

func TestScoreStoreListsTeamsOrderedByName(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, name := range []string{"Team B", "Team A", "Team C"} {
		if err := store.UpsertTeam(ctx, domain.NewTeam(name)); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	teams, err := store.ListTeams(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"Team A", "Team B", "Team C"}
	if len(teams) != len(want) {
		t.Fatalf("expected %d teams, got %d", len(want), len(teams))
	}
	for i, name := range want {
		if teams[i].Name != name {
			t.Fatalf("expected %v, got %+v", want, teams)
		}
	}
}

func TestScoreStoreRoundStateDefaultsUntilWritten(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	state, err := store.GetRoundState(ctx)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if state.Phase != domain.PhaseHidden || state.ActiveQuestion != 0 {
		t.Fatalf("expected default state, got %+v", state)
	}

	state.Phase = domain.PhaseRevealed
	state.ActiveQuestion = 3
	state.ReferenceValues = []int{1960, 1975}
	if err := store.SetRoundState(ctx, state); err != nil {
		t.Fatalf("set state: %v", err)
	}

	got, err := store.GetRoundState(ctx)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if got.Phase != domain.PhaseRevealed || got.ActiveQuestion != 3 || len(got.ReferenceValues) != 2 {
		t.Fatalf("unexpected state: %+v", got)
	}
}
