package app_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"interview-coach-service/internal/analytics"
	"interview-coach-service/internal/app"
	"interview-coach-service/internal/domain"
	"interview-coach-service/internal/evaluation"
	"interview-coach-service/internal/infra/memory"
)

func TestProgressZeroSessions(t *testing.T) {
	ctx := context.Background()
	progress := app.NewProgressService(memory.NewSessionStore(), nil, analytics.New(analytics.DefaultThresholds()))

	sum, err := progress.GetUserProgress(ctx, "newcomer")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if sum.TotalSessions != 0 || sum.AverageScore != 0 {
		t.Fatalf("expected empty summary, got %+v", sum)
	}

	path, err := progress.GetLearningPath(ctx, "newcomer")
	if err != nil {
		t.Fatalf("learning path: %v", err)
	}
	if path.CurrentLevel != domain.LevelBeginner || len(path.FocusAreas) == 0 {
		t.Fatalf("expected beginner path with focus areas, got %+v", path)
	}

	if _, err := progress.GetUserProgress(ctx, " "); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestProgressReflectsCompletedSessions(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	cache := memory.NewProgressCache(time.Hour)
	sessions := app.NewSessionService(store, &stubGenerator{}, evaluation.NewEngine(nil, evaluation.DefaultConfig()),
		app.WithProgressCache(cache))
	progress := app.NewProgressService(store, cache, analytics.New(analytics.DefaultThresholds()))

	first := runSession(t, sessions, "short answer about caching")
	before, err := progress.GetUserProgress(ctx, "u1")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if before.CompletedSessions != 1 {
		t.Fatalf("expected 1 completed session, got %d", before.CompletedSessions)
	}

	second := runSession(t, sessions, detailedBehavioralAnswer)
	after, err := progress.GetUserProgress(ctx, "u1")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if after.CompletedSessions != 2 {
		t.Fatalf("expected cache invalidation to expose the second session, got %d", after.CompletedSessions)
	}

	cmp, err := progress.CompareSessions(ctx, first.ID, second.ID)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	wantDelta := second.Metrics.AverageScore - first.Metrics.AverageScore
	if !near(cmp.ScoreDelta, wantDelta) {
		t.Fatalf("expected delta %.2f, got %.2f", wantDelta, cmp.ScoreDelta)
	}

	analyticsView, err := progress.GetProgressAnalytics(ctx, "u1", domain.PeriodAll)
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if analyticsView.Scores.Count != 2 || len(analyticsView.ScoreSeries) != 2 {
		t.Fatalf("unexpected analytics %+v", analyticsView)
	}

	milestones, err := progress.GetMilestones(ctx, "u1")
	if err != nil {
		t.Fatalf("milestones: %v", err)
	}
	for _, m := range milestones {
		if m.ID == "first-session" && !m.Achieved {
			t.Fatalf("expected first-session milestone achieved")
		}
	}
}

func TestProgressRecomputeIsShared(t *testing.T) {
	store := &countingStore{SessionStore: memory.NewSessionStore(), release: make(chan struct{})}
	progress := app.NewProgressService(store, memory.NewProgressCache(time.Hour), analytics.New(analytics.DefaultThresholds()))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := progress.GetUserProgress(context.Background(), "u1"); err != nil {
				t.Errorf("progress: %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(store.release)
	wg.Wait()

	if _, err := progress.GetUserProgress(context.Background(), "u1"); err != nil {
		t.Fatalf("progress: %v", err)
	}
	if n := store.lists.Load(); n != 1 {
		t.Fatalf("expected one recomputation, got %d", n)
	}
}

func TestProgressRecomputeDoesNotCacheAcrossInvalidation(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{SessionStore: memory.NewSessionStore(), release: make(chan struct{})}
	cache := memory.NewProgressCache(time.Hour)
	progress := app.NewProgressService(store, cache, analytics.New(analytics.DefaultThresholds()))

	done := make(chan error, 1)
	go func() {
		_, err := progress.GetUserProgress(ctx, "u1")
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for store.lists.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("recompute never reached the store")
		}
		time.Sleep(5 * time.Millisecond)
	}
	// a completion lands while the recompute holds its snapshot
	if err := cache.InvalidateProgress(ctx, "u1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	close(store.release)
	if err := <-done; err != nil {
		t.Fatalf("progress: %v", err)
	}

	if _, ok, _ := cache.GetProgress(ctx, "u1"); ok {
		t.Fatalf("expected summary computed before the invalidation to stay uncached")
	}
}

type countingStore struct {
	*memory.SessionStore
	release chan struct{}
	lists   atomic.Int32
}

func (s *countingStore) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	s.lists.Add(1)
	<-s.release
	return s.SessionStore.ListByUser(ctx, userID)
}

func runSession(t *testing.T, service *app.SessionService, answer string) *domain.Session {
	t.Helper()
	ctx := context.Background()
	session := createSession(t, service, map[domain.QuestionType]int{domain.QuestionBehavioral: 1})
	if _, err := service.StartSession(ctx, session.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, _, err := service.SubmitAnswer(ctx, session.ID, domain.AnswerSubmission{Answer: answer, TimeSpent: time.Minute}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	done, err := service.CompleteSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	return done
}
