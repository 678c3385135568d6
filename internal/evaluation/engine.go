package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"interview-coach-service/internal/domain"
	"interview-coach-service/internal/llm"
	"interview-coach-service/internal/metrics"
)

// scoring paths, used as metric labels
const (
	pathLLM      = "llm"
	pathFallback = "fallback"
	pathShort    = "short"
)

// Config tunes the engine.
type Config struct {
	// Timeout bounds the model call; the rule engine answers when it elapses.
	Timeout time.Duration
	// MinAnswerLength is the trimmed character count below which the model is skipped.
	MinAnswerLength int
	MaxTokens       int
	Temperature     float64
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:         20 * time.Second,
		MinAnswerLength: 20,
		MaxTokens:       1024,
		Temperature:     0.2,
	}
}

// Request is the input for scoring one answer.
type Request struct {
	QuestionText    string
	QuestionType    domain.QuestionType
	ExpectedOutline string
	SkillsTested    []string
	Answer          string
	Role            string
}

// Engine scores answers with a language model and falls back to local rules
// whenever the model is unavailable, slow or returns something unusable.
// An Engine never fails because of the model.
type Engine struct {
	provider llm.Provider
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

// NewEngine creates an engine. A nil provider means rules only.
func NewEngine(provider llm.Provider, cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MinAnswerLength <= 0 {
		cfg.MinAnswerLength = def.MinAnswerLength
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	return &Engine{
		provider: provider,
		cfg:      cfg,
		logger:   slog.Default().With(slog.String("component", "evaluation")),
		now:      time.Now,
	}
}

// Evaluate scores one answer. The only error is ErrInvalidInput for a request
// without question text.
func (e *Engine) Evaluate(ctx context.Context, req Request) (*domain.AnswerEvaluation, error) {
	if strings.TrimSpace(req.QuestionText) == "" {
		return nil, fmt.Errorf("%w: question text is required", domain.ErrInvalidInput)
	}
	qt := req.QuestionType
	if _, ok := weightTables[qt]; !ok {
		qt = domain.QuestionTechnical
	}
	start := e.now()
	answer := strings.TrimSpace(req.Answer)
	features := extractFeatures(qt, answer, req.SkillsTested)
	extra := roleCriteria(qt, req.Role)

	var (
		ev   *domain.AnswerEvaluation
		path string
	)
	switch {
	case features.chars < e.cfg.MinAnswerLength:
		path = pathShort
		ev = e.build(qt, insufficientScores(features, e.cfg.MinAnswerLength, extra),
			insufficientFeedback(features), features, domain.SourceRules)
	case e.provider == nil:
		path = pathFallback
		ev = e.byRules(qt, features, extra)
	default:
		var err error
		ev, err = e.byModel(ctx, req, qt, features, extra)
		path = pathLLM
		if err != nil {
			e.logger.Warn("model evaluation unavailable, scoring with rules",
				slog.String("question_type", string(qt)),
				slog.String("reason", err.Error()))
			path = pathFallback
			ev = e.byRules(qt, features, extra)
		}
	}

	metrics.Evaluations.WithLabelValues(path, string(qt)).Inc()
	metrics.EvaluationDuration.WithLabelValues(path).Observe(e.now().Sub(start).Seconds())
	return ev, nil
}

func (e *Engine) byRules(qt domain.QuestionType, f answerFeatures, extra []domain.Criterion) *domain.AnswerEvaluation {
	scores := ruleScores(qt, f, extra)
	return e.build(qt, scores, ruleFeedback(qt, scores, f), f, domain.SourceRules)
}

func (e *Engine) byModel(ctx context.Context, req Request, qt domain.QuestionType, f answerFeatures, extra []domain.Criterion) (*domain.AnswerEvaluation, error) {
	msg, err := buildEvaluationMessage(req, qt)
	if err != nil {
		return nil, fmt.Errorf("build evaluation prompt: %w", err)
	}

	ctx, cancel := context.WithTimeout(llm.WithPurpose(ctx, "answer-evaluation"), e.cfg.Timeout)
	defer cancel()

	resp, err := e.provider.Generate(ctx, llm.UserPrompt(evaluationSystemPrompt, msg, schemaFor(qt), e.cfg.MaxTokens, e.cfg.Temperature))
	if err != nil {
		return nil, err
	}

	var out evaluationOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse evaluation output: %w", err)
	}

	keep := append(append([]domain.Criterion{}, domain.CoreCriteria...), extra...)
	scores := make(map[domain.Criterion]float64, len(keep))
	for _, c := range keep {
		v, ok := out.Scores[string(c)]
		if !ok {
			return nil, fmt.Errorf("evaluation output is missing %s", c)
		}
		if v < 0 || v > 10 {
			return nil, fmt.Errorf("evaluation output score %s=%v out of range", c, v)
		}
		scores[c] = round1(v)
	}

	ev := e.build(qt, scores, sanitizeFeedback(out.Feedback), f, domain.SourceLLM)
	if matched := knownSkills(out.MatchedSkills, req.SkillsTested); matched != nil {
		ev.MatchedSkills, ev.MissingSkills = matched, subtractSkills(req.SkillsTested, matched)
	}
	return ev, nil
}

func (e *Engine) build(qt domain.QuestionType, scores map[domain.Criterion]float64, feedback []domain.FeedbackItem, f answerFeatures, src domain.EvaluationSource) *domain.AnswerEvaluation {
	overall := OverallScore(qt, scores)
	return &domain.AnswerEvaluation{
		QuestionType:    qt,
		CriterionScores: scores,
		OverallScore:    overall,
		Tier:            TierFor(overall),
		Feedback:        ensureFeedback(feedback, f),
		MatchedSkills:   f.matched,
		MissingSkills:   f.missing,
		Source:          src,
		EvaluatedAt:     e.now().UTC(),
	}
}

// knownSkills keeps the model's matched skills that were actually tested,
// in the tested order. It returns nil when nothing was tested.
func knownSkills(reported, tested []string) []string {
	if len(tested) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(reported))
	for _, s := range reported {
		seen[strings.ToLower(strings.TrimSpace(s))] = true
	}
	out := []string{}
	for _, s := range tested {
		if seen[strings.ToLower(strings.TrimSpace(s))] {
			out = append(out, s)
		}
	}
	return out
}

func subtractSkills(all, matched []string) []string {
	in := make(map[string]bool, len(matched))
	for _, s := range matched {
		in[s] = true
	}
	var out []string
	for _, s := range all {
		if strings.TrimSpace(s) != "" && !in[s] {
			out = append(out, s)
		}
	}
	return out
}
