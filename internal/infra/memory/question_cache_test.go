package memory

import (
	"context"
	"testing"
	"time"

	"interview-coach-service/internal/domain"
	"interview-coach-service/internal/questiongen"
)

func TestQuestionCacheCaches(t *testing.T) {
	source := &countingSource{Source: questiongen.NewStaticSource(questiongen.BuiltinQuestions())}
	cache := NewQuestionCache(source, time.Minute)

	qs, err := cache.LoadQuestions(context.Background(), domain.QuestionCoding)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(qs) == 0 {
		t.Fatalf("expected questions")
	}
	if source.calls != 1 {
		t.Fatalf("expected source once, got %d", source.calls)
	}

	if _, err := cache.LoadQuestions(context.Background(), domain.QuestionCoding); err != nil {
		t.Fatalf("load 2: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected cache hit, source calls %d", source.calls)
	}
}

type countingSource struct {
	questiongen.Source
	calls int
}

func (s *countingSource) LoadQuestions(ctx context.Context, qt domain.QuestionType) ([]domain.QuestionDescriptor, error) {
	s.calls++
	return s.Source.LoadQuestions(ctx, qt)
}
