package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"interview-coach-service/internal/analytics"
	"interview-coach-service/internal/domain"
	"interview-coach-service/internal/evaluation"
	"interview-coach-service/internal/metrics"
)

// operation names, used in errors, logs and metric labels
const (
	OpCreate   = "create"
	OpStart    = "start"
	OpSubmit   = "submit"
	OpSkip     = "skip"
	OpComplete = "complete"
)

// CreateSessionRequest describes a new session.
type CreateSessionRequest struct {
	UserID          string
	Candidate       domain.CandidateMeta
	Role            string
	ExperienceLevel string
	Mode            domain.SessionMode
	QuestionCounts  map[domain.QuestionType]int
}

// SessionService owns the session state machine:
// scheduled → in_progress → completed, never backwards.
type SessionService struct {
	store     SessionRepository
	generator QuestionGenerator
	evaluator Evaluator
	cache     ProgressCache
	publisher CompletionPublisher

	locks  *keyedMutex
	hub    *hub
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// SessionOption customizes a SessionService.
type SessionOption func(*SessionService)

// WithProgressCache invalidates cache entries whenever a session completes.
func WithProgressCache(c ProgressCache) SessionOption {
	return func(s *SessionService) { s.cache = c }
}

// WithCompletionPublisher announces completed sessions.
func WithCompletionPublisher(p CompletionPublisher) SessionOption {
	return func(s *SessionService) { s.publisher = p }
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionService) { s.now = now }
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(fn func() string) SessionOption {
	return func(s *SessionService) { s.newID = fn }
}

func NewSessionService(store SessionRepository, generator QuestionGenerator, evaluator Evaluator, opts ...SessionOption) *SessionService {
	s := &SessionService{
		store:     store,
		generator: generator,
		evaluator: evaluator,
		locks:     newKeyedMutex(),
		hub:       newHub(),
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    slog.Default().With(slog.String("component", "sessions")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession pulls questions for every requested type and stores a scheduled session.
//
// When a type comes back empty nothing is stored and a fatal *domain.PartialGenerationError
// is returned. When some types come back short the session is stored with the questions
// that were returned and is returned together with a non-fatal *domain.PartialGenerationError.
func (s *SessionService) CreateSession(ctx context.Context, req CreateSessionRequest) (*domain.Session, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	mode := req.Mode
	if mode == "" {
		mode = domain.ModePractice
	}
	if _, err := domain.ParseSessionMode(string(mode)); err != nil {
		return nil, err
	}
	role := firstNonEmpty(req.Role, req.Candidate.TargetRole)
	level := firstNonEmpty(req.ExperienceLevel, req.Candidate.ExperienceLevel)

	counts := make(map[domain.QuestionType]int, len(req.QuestionCounts))
	for raw, n := range req.QuestionCounts {
		qt, err := domain.ParseQuestionType(string(raw))
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: negative question count for %s", domain.ErrInvalidInput, raw)
		}
		counts[qt] += n
	}
	var requested []domain.QuestionType
	for _, qt := range domain.QuestionTypes {
		if counts[qt] > 0 {
			requested = append(requested, qt)
		}
	}
	if len(requested) == 0 {
		return nil, fmt.Errorf("%w: at least one question is required", domain.ErrInvalidInput)
	}

	var (
		responses []domain.QuestionResponse
		partial   = &domain.PartialGenerationError{}
	)
	for _, qt := range requested {
		want := counts[qt]
		questions, err := s.generator.Generate(ctx, domain.QuestionRequest{
			Role:            role,
			ExperienceLevel: level,
			Type:            qt,
			Count:           want,
			Candidate:       req.Candidate,
		})
		if err != nil {
			return nil, fmt.Errorf("generate %s questions: %w", qt, err)
		}
		if len(questions) > want {
			questions = questions[:want]
		}
		if len(questions) < want {
			partial.Shortfalls = append(partial.Shortfalls, domain.GenerationShortfall{Type: qt, Requested: want, Returned: len(questions)})
			if len(questions) == 0 {
				partial.Fatal = true
			}
		}
		for _, q := range questions {
			if q.Type == "" {
				q.Type = qt
			}
			responses = append(responses, domain.QuestionResponse{
				Index:           len(responses),
				QuestionID:      q.ID,
				QuestionText:    q.Text,
				Type:            q.Type,
				Difficulty:      q.Difficulty,
				SkillsTested:    append([]string(nil), q.SkillsTested...),
				ExpectedOutline: q.ExpectedOutline,
			})
		}
	}
	if partial.Fatal {
		metrics.SessionTransitions.WithLabelValues(OpCreate, "error").Inc()
		s.logger.Warn("question generation came back empty", slog.String("user_id", req.UserID), slog.String("error", partial.Error()))
		return nil, partial
	}

	sessionType := domain.SessionMixed
	if len(requested) == 1 {
		sessionType = domain.SessionType(requested[0])
	}
	session := &domain.Session{
		ID:              s.newID(),
		UserID:          req.UserID,
		Candidate:       req.Candidate,
		TargetRole:      role,
		ExperienceLevel: level,
		Type:            sessionType,
		Mode:            mode,
		Responses:       responses,
		Status:          domain.StatusScheduled,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.store.Put(ctx, session); err != nil {
		metrics.SessionTransitions.WithLabelValues(OpCreate, "error").Inc()
		return nil, fmt.Errorf("store session: %w", err)
	}
	metrics.SessionTransitions.WithLabelValues(OpCreate, "ok").Inc()
	s.logger.Info("session created",
		slog.String("session_id", session.ID),
		slog.String("user_id", session.UserID),
		slog.Int("questions", len(responses)))

	if len(partial.Shortfalls) > 0 {
		return session.Clone(), partial
	}
	return session.Clone(), nil
}

// StartSession moves a scheduled session to in_progress.
func (s *SessionService) StartSession(ctx context.Context, id string) (*domain.Session, error) {
	session, err := s.mutate(ctx, id, OpStart, func(session *domain.Session) error {
		if session.Status != domain.StatusScheduled {
			return &domain.InvalidTransitionError{SessionID: id, Op: OpStart, From: session.Status}
		}
		now := s.now().UTC()
		session.Status = domain.StatusInProgress
		session.StartedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.ActiveSessions.Inc()
	return session, nil
}

// SubmitAnswer evaluates the answer to the current question, stores it and advances the cursor.
// Reaching the end never completes the session.
func (s *SessionService) SubmitAnswer(ctx context.Context, id string, sub domain.AnswerSubmission) (*domain.Session, *domain.AnswerEvaluation, error) {
	// once accepted, the evaluation is either stored or the whole call fails
	ctx = context.WithoutCancel(ctx)

	var ev *domain.AnswerEvaluation
	session, err := s.mutate(ctx, id, OpSubmit, func(session *domain.Session) error {
		cur, err := s.cursor(session, OpSubmit, sub.QuestionIndex)
		if err != nil {
			return err
		}
		ev, err = s.evaluator.Evaluate(ctx, evaluation.Request{
			QuestionText:    cur.QuestionText,
			QuestionType:    cur.Type,
			ExpectedOutline: cur.ExpectedOutline,
			SkillsTested:    cur.SkillsTested,
			Answer:          sub.Answer,
			Role:            session.TargetRole,
		})
		if err != nil {
			return fmt.Errorf("evaluate answer: %w", err)
		}
		answer := sub.Answer
		at := s.now().UTC()
		cur.Answer = &answer
		cur.TimeSpent = sub.TimeSpent
		cur.AnsweredAt = &at
		cur.Evaluation = ev
		session.CurrentIndex++
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return session, ev.Clone(), nil
}

// SkipQuestion marks the current question skipped and advances the cursor.
// questionIndex, when set, must equal the cursor.
func (s *SessionService) SkipQuestion(ctx context.Context, id string, questionIndex *int) (*domain.Session, error) {
	return s.mutate(ctx, id, OpSkip, func(session *domain.Session) error {
		cur, err := s.cursor(session, OpSkip, questionIndex)
		if err != nil {
			return err
		}
		at := s.now().UTC()
		cur.Skipped = true
		cur.AnsweredAt = &at
		session.CurrentIndex++
		return nil
	})
}

// CompleteSession computes the final metrics exactly once and closes the session.
func (s *SessionService) CompleteSession(ctx context.Context, id string) (*domain.Session, error) {
	session, err := s.mutate(ctx, id, OpComplete, func(session *domain.Session) error {
		if session.Status != domain.StatusInProgress {
			return &domain.InvalidTransitionError{SessionID: id, Op: OpComplete, From: session.Status}
		}
		now := s.now().UTC()
		session.Metrics = analytics.SessionMetrics(session, now)
		session.Status = domain.StatusCompleted
		session.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.ActiveSessions.Dec()

	// the completion is stored; follow-ups must not depend on the caller staying connected
	ctx = context.WithoutCancel(ctx)
	if s.cache != nil {
		if err := s.cache.InvalidateProgress(ctx, session.UserID); err != nil {
			s.logger.Error("invalidate progress cache", slog.String("user_id", session.UserID), slog.String("error", err.Error()))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishCompleted(ctx, session); err != nil {
			s.logger.Error("publish session completed", slog.String("session_id", id), slog.String("error", err.Error()))
		}
	}
	s.logger.Info("session completed",
		slog.String("session_id", id),
		slog.Float64("average_score", session.Metrics.AverageScore),
		slog.Int("answered", session.Metrics.QuestionsAnswered),
		slog.Int("skipped", session.Metrics.QuestionsSkipped))
	return session, nil
}

// GetCurrentQuestion returns the question under the cursor, or nil when the
// session is completed or every question was resolved.
func (s *SessionService) GetCurrentQuestion(ctx context.Context, id string) (*domain.QuestionResponse, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Current() == nil {
		return nil, nil
	}
	return session.Current(), nil
}

// GetSession loads a session by id.
func (s *SessionService) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	return s.store.Get(ctx, id)
}

// ListUserSessions returns every session of userID.
func (s *SessionService) ListUserSessions(ctx context.Context, userID string) ([]*domain.Session, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUserNotFound
	}
	return s.store.ListByUser(ctx, userID)
}

// Subscribe returns a channel that receives every accepted change of a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *SessionService) Subscribe(ctx context.Context, id string) (<-chan SessionUpdate, func(), error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.hub.subscribe(id)
	return ch, cancel, nil
}

// cursor validates that session accepts a submit or skip and returns the current response.
func (s *SessionService) cursor(session *domain.Session, op string, questionIndex *int) (*domain.QuestionResponse, error) {
	if session.Status != domain.StatusInProgress {
		return nil, &domain.InvalidTransitionError{SessionID: session.ID, Op: op, From: session.Status}
	}
	cur := session.Current()
	if cur == nil {
		return nil, domain.ErrNoCurrentQuestion
	}
	if cur.Resolved() {
		return nil, fmt.Errorf("question %d already resolved: %w", cur.Index, domain.ErrOutOfOrderSubmission)
	}
	if questionIndex != nil && *questionIndex != session.CurrentIndex {
		return nil, fmt.Errorf("question %d targeted, current is %d: %w", *questionIndex, session.CurrentIndex, domain.ErrOutOfOrderSubmission)
	}
	return cur, nil
}

// mutate serializes a read-modify-write of one session. fn works on a private
// copy; nothing is stored when it fails.
func (s *SessionService) mutate(ctx context.Context, id, op string, fn func(*domain.Session) error) (*domain.Session, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.store.Get(ctx, id)
	if err != nil {
		metrics.SessionTransitions.WithLabelValues(op, "error").Inc()
		return nil, err
	}
	before := session.Status
	if err := fn(session); err != nil {
		metrics.SessionTransitions.WithLabelValues(op, "rejected").Inc()
		s.logger.Debug("session operation rejected",
			slog.String("session_id", id),
			slog.String("op", op),
			slog.String("status", string(before)),
			slog.String("error", err.Error()))
		return nil, err
	}
	if session.Status.Rank() < before.Rank() || session.CurrentIndex > len(session.Responses) {
		return nil, fmt.Errorf("%s would break session %s invariants: %w", op, id, domain.ErrInvalidState)
	}
	if err := s.store.Put(ctx, session); err != nil {
		metrics.SessionTransitions.WithLabelValues(op, "error").Inc()
		if !errors.Is(err, domain.ErrVersionConflict) {
			s.logger.Error("store session", slog.String("session_id", id), slog.String("op", op), slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("store session: %w", err)
	}
	metrics.SessionTransitions.WithLabelValues(op, "ok").Inc()
	s.hub.publish(SessionUpdate{Op: op, Session: session})
	return session.Clone(), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
