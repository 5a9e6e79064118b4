package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"quiznight-service/internal/domain"
)

// Round lifecycle and operator actions. These take the session barrier in
// write mode: clearing round fields must never interleave with a grading
// write for the question being closed out.

// SetPhase switches answer visibility. Setting the current phase again is
// a side-effect-free success.
func (c *Coordinator) SetPhase(ctx context.Context, phase domain.Phase) error {
	c.barrier.Lock()
	defer c.barrier.Unlock()

	state, err := c.store.GetRoundState(ctx)
	if err != nil {
		return err
	}
	if state.Phase == phase {
		return nil
	}
	state.Phase = phase
	if err := c.store.SetRoundState(ctx, state); err != nil {
		return err
	}
	c.log.Info("phase changed", zap.String("phase", string(phase)))
	c.broadcast(ctx)
	return nil
}

// Advance closes the active question and opens the next one: the closed
// question's numeric answers join the reference set, every team's round
// fields are cleared, and the pointer moves forward. At the end of the
// catalog the reference capture and the clear still happen, but the
// pointer stays and ErrQuestionsExhausted is reported to the operator.
func (c *Coordinator) Advance(ctx context.Context) error {
	c.barrier.Lock()
	defer c.barrier.Unlock()

	questions, err := c.catalog.Questions(ctx)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	state, err := c.store.GetRoundState(ctx)
	if err != nil {
		return err
	}

	// Capture before clearing. The reference set is deduplicated, so a
	// doubled advance cannot add the closed question's value twice.
	if state.ActiveQuestion >= 0 && state.ActiveQuestion < len(questions) {
		state.ReferenceValues = captureReferences(state.ReferenceValues, questions[state.ActiveQuestion])
	}
	if c.rules.AutoHideOnAdvance {
		state.Phase = domain.PhaseHidden
	}
	if err := c.store.SetRoundState(ctx, state); err != nil {
		return fmt.Errorf("persist reference values: %w", err)
	}

	if err := c.clearRounds(ctx); err != nil {
		return err
	}

	if state.ActiveQuestion+1 >= len(questions) {
		c.log.Info("question catalog exhausted", zap.Int("active", state.ActiveQuestion))
		c.broadcast(ctx)
		return domain.ErrQuestionsExhausted
	}
	state.ActiveQuestion++
	if err := c.store.SetRoundState(ctx, state); err != nil {
		return fmt.Errorf("persist question pointer: %w", err)
	}
	c.log.Info("round advanced", zap.Int("active", state.ActiveQuestion))
	c.broadcast(ctx)
	return nil
}

// Reset wipes the whole session: points, round fields, reference values
// and the question pointer. Explicit operator action only.
func (c *Coordinator) Reset(ctx context.Context) error {
	c.barrier.Lock()
	defer c.barrier.Unlock()

	teams, err := c.store.ListTeams(ctx)
	if err != nil {
		return err
	}
	for _, t := range teams {
		t.Points = 0
		t.ClearRound()
		if err := c.store.UpsertTeam(ctx, t); err != nil {
			return fmt.Errorf("reset team %s: %w", t.Name, err)
		}
	}
	state := domain.RoundState{
		Phase:          domain.PhaseHidden,
		ActiveQuestion: c.rules.StartQuestion,
	}
	if err := c.store.SetRoundState(ctx, state); err != nil {
		return err
	}
	c.log.Info("session reset")
	c.broadcast(ctx)
	return nil
}

// SubmitOperatorGrade overrides the automatic grade for one part, for
// question types the engine cannot judge. A part moving to correct from a
// non-awarding mark earns the correct-answer points; overriding to
// incorrect rewrites the mark but never subtracts.
func (c *Coordinator) SubmitOperatorGrade(ctx context.Context, teamName string, part int, correct bool) error {
	c.barrier.RLock()
	defer c.barrier.RUnlock()

	unlock := c.lockTeam(teamName)
	defer unlock()

	state, err := c.store.GetRoundState(ctx)
	if err != nil {
		return err
	}
	question, err := c.activeQuestion(ctx, state)
	if err != nil {
		return err
	}
	if part < 0 || part >= len(question.Parts) || part >= domain.MaxParts {
		return domain.ErrUnknownQuestionPart
	}

	team, err := c.store.GetTeam(ctx, teamName)
	if err != nil {
		return err
	}

	if correct {
		if !team.Marks[part].Awarding() {
			team.Points += c.grader.pointsCorrect
		}
		team.Marks[part] = domain.MarkCorrect
	} else {
		team.Marks[part] = domain.MarkIncorrect
	}

	if err := c.store.UpsertTeam(ctx, team); err != nil {
		return fmt.Errorf("persist operator grade: %w", err)
	}
	c.log.Info("operator grade applied",
		zap.String("team", teamName), zap.Int("part", part), zap.Bool("correct", correct))
	c.broadcast(ctx)
	return nil
}

func (c *Coordinator) clearRounds(ctx context.Context) error {
	teams, err := c.store.ListTeams(ctx)
	if err != nil {
		return err
	}
	for _, t := range teams {
		t.ClearRound()
		if err := c.store.UpsertTeam(ctx, t); err != nil {
			return fmt.Errorf("clear round for %s: %w", t.Name, err)
		}
	}
	return nil
}

// captureReferences folds a question's numeric answers into the set.
func captureReferences(refs []int, q domain.Question) []int {
	for _, p := range q.Parts {
		if p.Kind != domain.PartYear {
			continue
		}
		if v, err := strconv.Atoi(strings.TrimSpace(p.Answer)); err == nil {
			refs = InsertReference(refs, v)
		}
	}
	return refs
}
