package memory

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"quiznight-service/internal/domain"
)

type countingLoader struct {
	calls int32
	inner QuestionLoader
}

func (l *countingLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	atomic.AddInt32(&l.calls, 1)
	return l.inner.LoadQuestions(ctx)
}

func TestQuestionCatalogCachesWithinTTL(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{inner: NewStaticQuestionLoader([]domain.Question{{ID: "q1"}})}
	catalog := NewQuestionCatalog(loader, time.Minute)

	for i := 0; i < 3; i++ {
		questions, err := catalog.Questions(ctx)
		if err != nil {
			t.Fatalf("questions: %v", err)
		}
		if len(questions) != 1 || questions[0].ID != "q1" {
			t.Fatalf("unexpected questions: %+v", questions)
		}
	}
	if got := atomic.LoadInt32(&loader.calls); got != 1 {
		t.Fatalf("expected a single loader call, got %d", got)
	}
}
