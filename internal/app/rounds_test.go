package app_test

import (
	"context"
	"errors"
	"testing"

	"quiznight-service/internal/config"
	"quiznight-service/internal/domain"
)

func TestAdvanceClearsRoundAndMovesPointer(t *testing.T) {
	ctx := context.Background()
	coordinator, store := newTestCoordinator(t, config.Game{}, "Team 1", "Team 2")

	if err := coordinator.Process(ctx, domain.Submission{TeamName: "Team 1", Answers: []string{"Paris", "1975"}}); err != nil {
		t.Fatalf("process: %v", err)
	}
	pointsBefore := mustGetTeam(t, store, "Team 1").Points
	if pointsBefore == 0 {
		t.Fatalf("expected points before advance")
	}

	if err := coordinator.Advance(ctx); err != nil {
		t.Fatalf("advance: %v", err)
	}

	state, err := store.GetRoundState(ctx)
	if err != nil {
		t.Fatalf("round state: %v", err)
	}
	if state.ActiveQuestion != 1 {
		t.Fatalf("expected pointer at 1, got %d", state.ActiveQuestion)
	}
	if len(state.ReferenceValues) != 1 || state.ReferenceValues[0] != 1975 {
		t.Fatalf("expected closed question's year captured, got %v", state.ReferenceValues)
	}

	for _, name := range []string{"Team 1", "Team 2"} {
		team := mustGetTeam(t, store, name)
		if team.Submitted || team.Answers[0] != "" || team.Marks[0] != domain.MarkUngraded {
			t.Fatalf("expected cleared round for %s, got %+v", name, team)
		}
	}
	// Points survive the advance.
	if mustGetTeam(t, store, "Team 1").Points != pointsBefore {
		t.Fatalf("advance must not touch points")
	}
}

func TestAdvanceFeedsGradingContext(t *testing.T) {
	ctx := context.Background()
	coordinator, store := newTestCoordinator(t, config.Game{}, "Team 1")

	if err := store.SetRoundState(ctx, domain.RoundState{
		Phase:           domain.PhaseHidden,
		ActiveQuestion:  0,
		ReferenceValues: []int{1960, 1980},
	}); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	// q1's year part is 1975; a guess in [1960, 1980] is correct.
	if err := coordinator.Process(ctx, domain.Submission{TeamName: "Team 1", Answers: []string{"x", "1968"}}); err != nil {
		t.Fatalf("process: %v", err)
	}
	if team := mustGetTeam(t, store, "Team 1"); team.Marks[1] != domain.MarkCorrect {
		t.Fatalf("expected correct year guess, got %v", team.Marks)
	}

	if err := coordinator.Advance(ctx); err != nil {
		t.Fatalf("advance: %v", err)
	}

	// q2's year is 1977; 1975 now bounds the band from below.
	if err := coordinator.Process(ctx, domain.Submission{TeamName: "Team 1", Answers: []string{"1965"}}); err != nil {
		t.Fatalf("process: %v", err)
	}
	if team := mustGetTeam(t, store, "Team 1"); team.Marks[0] != domain.MarkIncorrect {
		t.Fatalf("expected 1965 outside narrowed band, got %v", team.Marks)
	}
}

func TestAdvancePastLastQuestionIsTerminal(t *testing.T) {
	ctx := context.Background()
	coordinator, store := newTestCoordinator(t, config.Game{}, "Team 1")

	if err := coordinator.Advance(ctx); err != nil {
		t.Fatalf("first advance: %v", err)
	}
	if err := coordinator.Advance(ctx); !errors.Is(err, domain.ErrQuestionsExhausted) {
		t.Fatalf("expected exhausted, got %v", err)
	}
	// A repeated call keeps reporting the terminal condition without
	// moving the pointer or duplicating reference values.
	if err := coordinator.Advance(ctx); !errors.Is(err, domain.ErrQuestionsExhausted) {
		t.Fatalf("expected exhausted again, got %v", err)
	}

	state, err := store.GetRoundState(ctx)
	if err != nil {
		t.Fatalf("round state: %v", err)
	}
	if state.ActiveQuestion != 1 {
		t.Fatalf("pointer must stay at the last question, got %d", state.ActiveQuestion)
	}
	want := []int{1975, 1977}
	if len(state.ReferenceValues) != len(want) {
		t.Fatalf("expected %v, got %v", want, state.ReferenceValues)
	}
	for i := range want {
		if state.ReferenceValues[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, state.ReferenceValues)
		}
	}
}

func TestAdvanceAutoHides(t *testing.T) {
	ctx := context.Background()
	coordinator, store := newTestCoordinator(t, config.Game{AutoHideOnAdvance: true}, "Team 1")

	if err := coordinator.SetPhase(ctx, domain.PhaseRevealed); err != nil {
		t.Fatalf("set phase: %v", err)
	}
	if err := coordinator.Advance(ctx); err != nil {
		t.Fatalf("advance: %v", err)
	}
	state, _ := store.GetRoundState(ctx)
	if state.Phase != domain.PhaseHidden {
		t.Fatalf("expected auto-hide, got %s", state.Phase)
	}
}

func TestSetPhaseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	coordinator, store := newTestCoordinator(t, config.Game{})

	if err := coordinator.SetPhase(ctx, domain.PhaseRevealed); err != nil {
		t.Fatalf("set phase: %v", err)
	}
	if err := coordinator.SetPhase(ctx, domain.PhaseRevealed); err != nil {
		t.Fatalf("repeated set phase: %v", err)
	}
	state, _ := store.GetRoundState(ctx)
	if state.Phase != domain.PhaseRevealed {
		t.Fatalf("expected revealed, got %s", state.Phase)
	}
}

func TestResetZeroesSession(t *testing.T) {
	ctx := context.Background()
	coordinator, store := newTestCoordinator(t, config.Game{}, "Team 1", "Team 2")

	if err := coordinator.Process(ctx, domain.Submission{TeamName: "Team 1", Answers: []string{"Paris", "1975"}}); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := coordinator.Advance(ctx); err != nil {
		t.Fatalf("advance: %v", err)
	}

	if err := coordinator.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	for _, name := range []string{"Team 1", "Team 2"} {
		team := mustGetTeam(t, store, name)
		if team.Points != 0 || team.Submitted || team.Marks[0] != domain.MarkUngraded {
			t.Fatalf("expected zeroed team %s, got %+v", name, team)
		}
	}
	state, _ := store.GetRoundState(ctx)
	if state.ActiveQuestion != 0 || len(state.ReferenceValues) != 0 || state.Phase != domain.PhaseHidden {
		t.Fatalf("expected pristine round state, got %+v", state)
	}
}
