package app

import (
	"context"

	"interview-coach-service/internal/domain"
	"interview-coach-service/internal/evaluation"
)

// SessionRepository abstracts how interview sessions are stored (in-memory, Redis, Postgres, SQLite).
// Put is a whole-record replacement guarded by the session version: it fails with
// domain.ErrVersionConflict when the stored version differs from s.Version (zero
// meaning "not stored yet") and advances s.Version on success.
type SessionRepository interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Session, error)
}

// ProgressCache holds derived progress summaries. It is an optimization only;
// every summary can be recomputed from the SessionRepository.
//
// Every invalidation advances the user's generation. PutProgress stores the
// summary only while the generation still equals gen, so a recompute that
// started before an invalidation cannot cache what it read.
type ProgressCache interface {
	GetProgress(ctx context.Context, userID string) (domain.ProgressSummary, bool, error)
	ProgressGeneration(ctx context.Context, userID string) (int64, error)
	PutProgress(ctx context.Context, userID string, gen int64, summary domain.ProgressSummary) error
	InvalidateProgress(ctx context.Context, userID string) error
}

// QuestionGenerator returns up to req.Count questions of req.Type.
type QuestionGenerator interface {
	Generate(ctx context.Context, req domain.QuestionRequest) ([]domain.QuestionDescriptor, error)
}

// Evaluator scores one answer.
type Evaluator interface {
	Evaluate(ctx context.Context, req evaluation.Request) (*domain.AnswerEvaluation, error)
}

// CompletionPublisher is notified after a session is completed and persisted.
type CompletionPublisher interface {
	PublishCompleted(ctx context.Context, s *domain.Session) error
}
