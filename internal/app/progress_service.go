package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"interview-coach-service/internal/analytics"
	"interview-coach-service/internal/domain"
	"interview-coach-service/internal/metrics"
)

// ProgressService answers read-only progress queries over persisted sessions.
// Summaries are served from the optional cache; concurrent misses for the same
// user share a single recomputation.
type ProgressService struct {
	store  SessionRepository
	cache  ProgressCache
	engine *analytics.Engine
	group  singleflight.Group
	now    func() time.Time
	logger *slog.Logger
}

// NewProgressService wires the service; cache may be nil.
func NewProgressService(store SessionRepository, cache ProgressCache, engine *analytics.Engine) *ProgressService {
	return &ProgressService{
		store:  store,
		cache:  cache,
		engine: engine,
		now:    time.Now,
		logger: slog.Default().With(slog.String("component", "progress")),
	}
}

// GetUserProgress returns the progress summary of userID. A user without
// sessions gets an empty summary.
func (p *ProgressService) GetUserProgress(ctx context.Context, userID string) (domain.ProgressSummary, error) {
	if err := checkUser(userID); err != nil {
		return domain.ProgressSummary{}, err
	}
	if p.cache != nil {
		sum, ok, err := p.cache.GetProgress(ctx, userID)
		switch {
		case err != nil:
			p.logger.Warn("progress cache read failed", slog.String("user_id", userID), slog.String("error", err.Error()))
		case ok:
			metrics.ProgressCache.WithLabelValues("hit").Inc()
			return sum, nil
		}
		metrics.ProgressCache.WithLabelValues("miss").Inc()
	}

	v, err, _ := p.group.Do(userID, func() (any, error) {
		gen, cacheable := int64(0), p.cache != nil
		if cacheable {
			var err error
			if gen, err = p.cache.ProgressGeneration(ctx, userID); err != nil {
				p.logger.Warn("progress cache generation read failed", slog.String("user_id", userID), slog.String("error", err.Error()))
				cacheable = false
			}
		}
		sessions, err := p.store.ListByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		sum := p.engine.Summarize(userID, sessions)
		if cacheable {
			if err := p.cache.PutProgress(ctx, userID, gen, sum); err != nil {
				p.logger.Warn("progress cache write failed", slog.String("user_id", userID), slog.String("error", err.Error()))
			}
		}
		return sum, nil
	})
	if err != nil {
		return domain.ProgressSummary{}, err
	}
	return v.(domain.ProgressSummary), nil
}

// GetProgressAnalytics computes analytics over the given period ending now.
func (p *ProgressService) GetProgressAnalytics(ctx context.Context, userID string, period domain.Period) (domain.ProgressAnalytics, error) {
	if err := checkUser(userID); err != nil {
		return domain.ProgressAnalytics{}, err
	}
	sessions, err := p.store.ListByUser(ctx, userID)
	if err != nil {
		return domain.ProgressAnalytics{}, fmt.Errorf("list sessions: %w", err)
	}
	return p.engine.Analyze(userID, sessions, period, p.now().UTC()), nil
}

// CompareSessions compares session b against the baseline a.
func (p *ProgressService) CompareSessions(ctx context.Context, a, b string) (domain.SessionComparison, error) {
	first, err := p.store.Get(ctx, a)
	if err != nil {
		return domain.SessionComparison{}, err
	}
	second, err := p.store.Get(ctx, b)
	if err != nil {
		return domain.SessionComparison{}, err
	}
	return p.engine.Compare(first, second)
}

// GetLearningPath recommends a practice plan for userID.
func (p *ProgressService) GetLearningPath(ctx context.Context, userID string) (domain.LearningPath, error) {
	if err := checkUser(userID); err != nil {
		return domain.LearningPath{}, err
	}
	sessions, err := p.store.ListByUser(ctx, userID)
	if err != nil {
		return domain.LearningPath{}, fmt.Errorf("list sessions: %w", err)
	}
	return p.engine.LearningPath(userID, sessions), nil
}

// GetMilestones evaluates every milestone against the current summary.
func (p *ProgressService) GetMilestones(ctx context.Context, userID string) ([]domain.MilestoneStatus, error) {
	sum, err := p.GetUserProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.engine.Milestones(sum), nil
}

func checkUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return domain.ErrUserNotFound
	}
	return nil
}
