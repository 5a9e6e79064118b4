package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"quiznight-service/internal/config"
	"quiznight-service/internal/domain"
)

// Coordinator is the orchestration core: it consumes decoded submissions,
// grades them against the active question, owns the round lifecycle and
// publishes scoreboard snapshots to subscribers.
//
// Locking: grading holds the session barrier in read mode plus a per-team
// mutex, so distinct teams grade in parallel while duplicate sends from
// one team are serialized. Advance and Reset take the barrier in write
// mode and can never interleave with an in-flight grade.
type Coordinator struct {
	store   ScoreStore
	catalog QuestionCatalog
	grader  *Grader
	rules   config.Game
	log     *zap.Logger
	now     func() time.Time

	barrier sync.RWMutex

	teamMu    sync.Mutex
	teamLocks map[string]*sync.Mutex

	subMu       sync.Mutex
	subscribers map[chan domain.Scoreboard]struct{}
}

func NewCoordinator(store ScoreStore, catalog QuestionCatalog, rules config.Game, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		store:       store,
		catalog:     catalog,
		grader:      NewGrader(rules),
		rules:       rules,
		log:         log,
		now:         time.Now,
		teamLocks:   make(map[string]*sync.Mutex),
		subscribers: make(map[chan domain.Scoreboard]struct{}),
	}
}

// HandleSubmission decodes and processes one raw message from the queue.
// It never propagates failures to the transport: a malformed or rejected
// submission is logged and dropped so consumption keeps going.
func (c *Coordinator) HandleSubmission(ctx context.Context, raw []byte) {
	sub, err := c.DecodeSubmission(raw)
	if err != nil {
		c.log.Warn("dropping undecodable submission", zap.Error(err))
		return
	}
	if err := c.Process(ctx, sub); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateSubmission):
			c.log.Debug("duplicate submission discarded", zap.String("team", sub.TeamName))
		case errors.Is(err, domain.ErrUnknownTeam):
			c.log.Warn("submission from unknown team", zap.String("team", sub.TeamName))
		case errors.Is(err, domain.ErrLateSubmission):
			c.log.Info("late submission marked", zap.String("team", sub.TeamName))
		default:
			c.log.Error("submission processing failed", zap.String("team", sub.TeamName), zap.Error(err))
		}
		return
	}
	c.broadcast(ctx)
}

// DecodeSubmission parses the wire form teamName<SEP>part1[<SEP>part2].
func (c *Coordinator) DecodeSubmission(raw []byte) (domain.Submission, error) {
	fields := strings.Split(string(raw), c.rules.Delimiter)
	if len(fields) < 2 || len(fields) > 1+domain.MaxParts {
		return domain.Submission{}, fmt.Errorf("malformed submission: %d fields", len(fields))
	}
	name := strings.TrimSpace(fields[0])
	if name == "" {
		return domain.Submission{}, fmt.Errorf("malformed submission: empty team name")
	}
	answers := make([]string, len(fields)-1)
	for i, f := range fields[1:] {
		answers[i] = strings.TrimSpace(f)
	}
	return domain.Submission{TeamName: name, Answers: answers}, nil
}

// Process validates, grades and persists one submission. The returned
// error classifies rejected submissions (duplicate, unknown team, late);
// the caller decides how loudly to report each.
func (c *Coordinator) Process(ctx context.Context, sub domain.Submission) error {
	c.barrier.RLock()
	defer c.barrier.RUnlock()

	unlock := c.lockTeam(sub.TeamName)
	defer unlock()

	team, err := c.store.GetTeam(ctx, sub.TeamName)
	if err != nil {
		return err
	}
	state, err := c.store.GetRoundState(ctx)
	if err != nil {
		return fmt.Errorf("load round state: %w", err)
	}

	if team.Submitted && !c.emptyRedoAllowed(team, sub) {
		return domain.ErrDuplicateSubmission
	}

	if state.Phase == domain.PhaseRevealed && !c.rules.AcceptLateAnswers {
		for i := range team.Marks {
			if team.Marks[i] == domain.MarkUngraded {
				team.Marks[i] = domain.MarkLate
			}
		}
		team.Submitted = true
		if err := c.store.UpsertTeam(ctx, team); err != nil {
			return fmt.Errorf("persist late marks: %w", err)
		}
		return domain.ErrLateSubmission
	}

	question, err := c.activeQuestion(ctx, state)
	if err != nil {
		return err
	}

	for i := 0; i < domain.MaxParts && i < len(sub.Answers); i++ {
		team.Answers[i] = sub.Answers[i]
	}
	team.Submitted = true

	// A blank send under the redo policy is stored ungraded so the team
	// keeps its one shot at a real submission.
	if sub.Blank() && c.rules.AllowEmptyRedo {
		if err := c.store.UpsertTeam(ctx, team); err != nil {
			return fmt.Errorf("persist blank submission: %w", err)
		}
		return nil
	}

	for i := 0; i < len(question.Parts) && i < domain.MaxParts; i++ {
		if team.Marks[i] != domain.MarkUngraded {
			// Already graded this round; the award stays as it is.
			continue
		}
		mark, delta := c.grader.GradePart(question.Parts[i], team.Answers[i], state.ReferenceValues)
		team.Marks[i] = mark
		team.Points += delta
	}

	if err := c.store.UpsertTeam(ctx, team); err != nil {
		return fmt.Errorf("persist graded team: %w", err)
	}
	return nil
}

func (c *Coordinator) emptyRedoAllowed(team domain.Team, sub domain.Submission) bool {
	if !c.rules.AllowEmptyRedo || sub.Blank() {
		return false
	}
	for _, a := range team.Answers {
		if a != "" {
			return false
		}
	}
	for _, m := range team.Marks {
		if m != domain.MarkUngraded {
			return false
		}
	}
	return true
}

func (c *Coordinator) activeQuestion(ctx context.Context, state domain.RoundState) (domain.Question, error) {
	if state.ActiveQuestion < 0 {
		return domain.Question{}, domain.ErrNoActiveQuestion
	}
	questions, err := c.catalog.Questions(ctx)
	if err != nil {
		return domain.Question{}, fmt.Errorf("load questions: %w", err)
	}
	if state.ActiveQuestion >= len(questions) {
		return domain.Question{}, domain.ErrNoActiveQuestion
	}
	return questions[state.ActiveQuestion], nil
}

// lockTeam serializes grading per team name.
func (c *Coordinator) lockTeam(name string) func() {
	c.teamMu.Lock()
	mu, ok := c.teamLocks[name]
	if !ok {
		mu = &sync.Mutex{}
		c.teamLocks[name] = mu
	}
	c.teamMu.Unlock()
	mu.Lock()
	return mu.Unlock
}

// Scoreboard builds the read model for presentation layers.
func (c *Coordinator) Scoreboard(ctx context.Context) (domain.Scoreboard, error) {
	state, err := c.store.GetRoundState(ctx)
	if err != nil {
		return domain.Scoreboard{}, err
	}
	teams, err := c.store.ListTeams(ctx)
	if err != nil {
		return domain.Scoreboard{}, err
	}

	board := domain.Scoreboard{
		Phase:     state.Phase,
		UpdatedAt: c.now(),
	}
	if q, err := c.activeQuestion(ctx, state); err == nil {
		board.ActiveQuestion = &q
	}

	board.Rows = make([]domain.ScoreboardRow, 0, len(teams))
	board.Ranking = make([]domain.RankingEntry, 0, len(teams))
	for _, t := range teams {
		board.Rows = append(board.Rows, domain.ScoreboardRow{
			Name:    t.Name,
			Points:  t.Points,
			Answers: t.Answers,
			Marks:   t.Marks,
		})
		board.Ranking = append(board.Ranking, domain.RankingEntry{Name: t.Name, Points: t.Points})
	}
	sort.Slice(board.Ranking, func(i, j int) bool {
		if board.Ranking[i].Points != board.Ranking[j].Points {
			return board.Ranking[i].Points > board.Ranking[j].Points
		}
		return board.Ranking[i].Name < board.Ranking[j].Name
	})
	return board, nil
}

// Subscribe returns a channel receiving scoreboard snapshots. The caller
// must invoke the returned cancel function to avoid leaks.
func (c *Coordinator) Subscribe(ctx context.Context) (<-chan domain.Scoreboard, func(), error) {
	initial, err := c.Scoreboard(ctx)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.Scoreboard, 8)
	c.subMu.Lock()
	c.subscribers[ch] = struct{}{}
	c.subMu.Unlock()

	ch <- initial

	cancel := func() {
		c.subMu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.subMu.Unlock()
	}
	return ch, cancel, nil
}

func (c *Coordinator) broadcast(ctx context.Context) {
	board, err := c.Scoreboard(ctx)
	if err != nil {
		c.log.Warn("scoreboard snapshot failed", zap.Error(err))
		return
	}

	c.subMu.Lock()
	defer c.subMu.Unlock()
	for ch := range c.subscribers {
		select {
		case ch <- board:
		default:
			// Drop the stale snapshot so a slow reader never blocks grading.
			select {
			case <-ch:
			default:
			}
			ch <- board
		}
	}
}
