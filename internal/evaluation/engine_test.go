package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-coach-service/internal/domain"
	"interview-coach-service/internal/llm"
)

const goodBehavioralAnswer = `At my previous company we had a situation where two teams disagreed on an API contract.
My role was to unblock the release, so I organized a short design review with both leads.
I proposed a versioned endpoint because it let both teams ship independently.
As a result we released on time and reduced integration bugs by half, and I learned to involve stakeholders earlier.`

func modelOutput(t *testing.T, score float64, feedback []feedbackOutput, matched []string) json.RawMessage {
	t.Helper()
	scores := map[string]float64{}
	for _, c := range append(append([]domain.Criterion{}, domain.CoreCriteria...), domain.CriterionLeadership, domain.CriterionScalability) {
		scores[string(c)] = score
	}
	if feedback == nil {
		feedback = []feedbackOutput{}
	}
	if matched == nil {
		matched = []string{}
	}
	raw, err := json.Marshal(evaluationOutput{Scores: scores, Feedback: feedback, MatchedSkills: matched})
	require.NoError(t, err)
	return raw
}

func TestWeightTablesSumToOne(t *testing.T) {
	for _, qt := range domain.QuestionTypes {
		var sum float64
		for _, w := range WeightsFor(qt) {
			sum += w.Weight
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "weights of %s", qt)
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score float64
		want  domain.ScoreTier
	}{
		{100, domain.TierExcellent},
		{85, domain.TierExcellent},
		{84.99, domain.TierGood},
		{70, domain.TierGood},
		{50, domain.TierFair},
		{49.9, domain.TierPoor},
		{0, domain.TierPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.score), "score %v", tt.score)
	}
}

func TestOverallScore_Technical(t *testing.T) {
	scores := map[domain.Criterion]float64{
		domain.CriterionTechnicalAccuracy: 8,
		domain.CriterionCompleteness:      6,
		domain.CriterionDepth:             5,
		domain.CriterionCommunication:     9,
	}
	// 10 * (0.4*8 + 0.25*6 + 0.2*5 + 0.15*9) = 70.5
	assert.Equal(t, 70.5, OverallScore(domain.QuestionTechnical, scores))
	assert.Equal(t, OverallScore(domain.QuestionTechnical, scores), OverallScore("unknown", scores))
}

func TestEvaluate_EmptyAnswer(t *testing.T) {
	mock := llm.NewMockProvider()
	engine := NewEngine(mock, DefaultConfig())

	ev, err := engine.Evaluate(context.Background(), Request{
		QuestionText: "Explain how a hash map handles collisions.",
		QuestionType: domain.QuestionTechnical,
		Answer:       "   ",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, mock.CallCount(), "empty answers must not reach the model")
	assert.Less(t, ev.OverallScore, 20.0)
	assert.Equal(t, domain.TierPoor, ev.Tier)
	for c, v := range ev.CriterionScores {
		assert.LessOrEqual(t, v, 2.0, "criterion %s", c)
	}

	insufficient := false
	for _, f := range ev.Feedback {
		if f.Kind == domain.FeedbackWeakness && strings.Contains(strings.ToLower(f.Text), "insufficient") {
			insufficient = true
		}
	}
	assert.True(t, insufficient, "expected an insufficient-content weakness, got %+v", ev.Feedback)
	assertFeedbackInvariant(t, ev)
}

func TestEvaluate_ShortAnswerBoundedByTwo(t *testing.T) {
	engine := NewEngine(nil, DefaultConfig())

	ev, err := engine.Evaluate(context.Background(), Request{
		QuestionText: "What is a mutex?",
		QuestionType: domain.QuestionTechnical,
		Answer:       "a lock",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceRules, ev.Source)
	assert.LessOrEqual(t, ev.OverallScore, 20.0)
	assert.Greater(t, ev.OverallScore, 0.0)
}

func TestEvaluate_MissingQuestionText(t *testing.T) {
	_, err := NewEngine(nil, DefaultConfig()).Evaluate(context.Background(), Request{Answer: "anything at all here"})
	require.True(t, errors.Is(err, domain.ErrInvalidInput), "got %v", err)
}

func TestEvaluate_ModelPath(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: modelOutput(t, 8, []feedbackOutput{
		{Kind: "strength", Priority: "low", Criterion: "structure", Text: "Clear STAR structure."},
		{Kind: "weakness", Priority: "medium", Criterion: "depth", Text: "Quantify the trade-offs."},
		{Kind: "suggestion", Priority: "low", Criterion: "vibes", Text: "Mention how you followed up."},
	}, []string{"Conflict Resolution"})})
	engine := NewEngine(mock, DefaultConfig())

	ev, err := engine.Evaluate(context.Background(), Request{
		QuestionText: "Tell me about a conflict you resolved.",
		QuestionType: domain.QuestionBehavioral,
		SkillsTested: []string{"conflict resolution", "communication"},
		Answer:       goodBehavioralAnswer,
		Role:         "Engineering Manager",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SourceLLM, ev.Source)
	assert.Equal(t, 80.0, ev.OverallScore)
	assert.Equal(t, domain.TierGood, ev.Tier)
	assert.Contains(t, ev.CriterionScores, domain.CriterionLeadership)
	assert.NotContains(t, ev.CriterionScores, domain.CriterionScalability)
	require.Len(t, ev.Feedback, 3)
	assert.Empty(t, ev.Feedback[2].Criterion, "unknown criteria are dropped")
	assert.Equal(t, []string{"conflict resolution"}, ev.MatchedSkills)
	assert.Equal(t, []string{"communication"}, ev.MissingSkills)

	require.Equal(t, 1, mock.CallCount())
	assert.Equal(t, "answer-evaluation-behavioral", mock.Calls[0].Schema.Name)
}

func TestEvaluate_ModelPathWithoutFeedbackSynthesizesItems(t *testing.T) {
	cases := []struct {
		name     string
		feedback []feedbackOutput
	}{
		{name: "empty", feedback: nil},
		{name: "all dropped", feedback: []feedbackOutput{
			{Kind: "strength", Priority: "low", Criterion: "structure", Text: "   "},
			{Kind: "weakness", Priority: "medium", Criterion: "depth", Text: "\t"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Content: modelOutput(t, 7, tc.feedback, nil)})
			engine := NewEngine(mock, DefaultConfig())

			ev, err := engine.Evaluate(context.Background(), Request{
				QuestionText: "Tell me about a conflict you resolved.",
				QuestionType: domain.QuestionBehavioral,
				Answer:       goodBehavioralAnswer,
			})
			require.NoError(t, err)

			assert.Equal(t, domain.SourceLLM, ev.Source)
			assert.Equal(t, 70.0, ev.OverallScore)
			for _, f := range ev.Feedback {
				assert.NotEmpty(t, strings.TrimSpace(f.Text))
			}
			assertFeedbackInvariant(t, ev)
		})
	}
}

func TestEvaluate_FallsBackOnMalformedOutput(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"scores":{"depth":"great"}}`)})
	engine := NewEngine(mock, DefaultConfig())

	ev, err := engine.Evaluate(context.Background(), Request{
		QuestionText: "Tell me about a conflict you resolved.",
		QuestionType: domain.QuestionBehavioral,
		Answer:       goodBehavioralAnswer,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceRules, ev.Source)
	assert.Greater(t, ev.OverallScore, 0.0)
	assertFeedbackInvariant(t, ev)
}

func TestEvaluate_FallsBackOnTimeout(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Delay: time.Second, Content: modelOutput(t, 9, nil, nil)})
	cfg := DefaultConfig()
	cfg.Timeout = 20 * time.Millisecond
	engine := NewEngine(mock, cfg)

	start := time.Now()
	ev, err := engine.Evaluate(context.Background(), Request{
		QuestionText: "Design a URL shortener.",
		QuestionType: domain.QuestionSystemDesign,
		Answer:       "I would put a stateless API service behind a load balancer, store mappings in a sharded database and cache hot keys.",
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, domain.SourceRules, ev.Source)
	assert.Contains(t, ev.CriterionScores, domain.CriterionScalability)
}

func TestEvaluate_FallsBackWhenProviderDown(t *testing.T) {
	engine := NewEngine(llm.NewMockProvider(), DefaultConfig())

	ev, err := engine.Evaluate(context.Background(), Request{
		QuestionText: "Explain how a hash map handles collisions.",
		QuestionType: domain.QuestionTechnical,
		SkillsTested: []string{"hashing", "chaining"},
		Answer:       "Each bucket keeps a linked list, which is called chaining. When two keys hash to the same bucket they are appended to the list.",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceRules, ev.Source)
	assert.Equal(t, []string{"chaining"}, ev.MatchedSkills)
	assert.Equal(t, []string{"hashing"}, ev.MissingSkills)
}

func TestEvaluate_OverallRecomputableFromScores(t *testing.T) {
	engine := NewEngine(nil, DefaultConfig())
	answers := []string{
		"",
		"short one",
		goodBehavioralAnswer,
		"First I would clarify the requirements with the customer, then I would assess options because the deadline is fixed. I would monitor the outcome.",
	}
	for _, qt := range domain.QuestionTypes {
		for _, a := range answers {
			ev, err := engine.Evaluate(context.Background(), Request{QuestionText: "Q?", QuestionType: qt, Answer: a})
			require.NoError(t, err)

			var sum float64
			for _, w := range WeightsFor(qt) {
				sum += w.Weight * ev.CriterionScores[w.Criterion]
			}
			assert.InDelta(t, math.Round(sum*1000)/100, ev.OverallScore, 0.01, "%s %q", qt, a)
			assert.GreaterOrEqual(t, ev.OverallScore, 0.0)
			assert.LessOrEqual(t, ev.OverallScore, 100.0)
			assert.Equal(t, TierFor(ev.OverallScore), ev.Tier)
			assertFeedbackInvariant(t, ev)
		}
	}
}

func TestEvaluate_BetterAnswerScoresHigher(t *testing.T) {
	engine := NewEngine(nil, DefaultConfig())
	weak, err := engine.Evaluate(context.Background(), Request{
		QuestionText: "Tell me about a conflict you resolved.",
		QuestionType: domain.QuestionBehavioral,
		Answer:       "I talked to them and it was fine in the end.",
	})
	require.NoError(t, err)
	strong, err := engine.Evaluate(context.Background(), Request{
		QuestionText: "Tell me about a conflict you resolved.",
		QuestionType: domain.QuestionBehavioral,
		Answer:       goodBehavioralAnswer,
	})
	require.NoError(t, err)
	assert.Greater(t, strong.OverallScore, weak.OverallScore)
}

func assertFeedbackInvariant(t *testing.T, ev *domain.AnswerEvaluation) {
	t.Helper()
	var positive, improve bool
	for _, f := range ev.Feedback {
		switch f.Kind {
		case domain.FeedbackStrength:
			positive = true
		case domain.FeedbackWeakness:
			improve = true
		case domain.FeedbackSuggestion:
			positive, improve = true, true
		}
	}
	assert.GreaterOrEqual(t, len(ev.Feedback), 2)
	assert.True(t, positive, "missing strength or suggestion: %+v", ev.Feedback)
	assert.True(t, improve, "missing weakness or suggestion: %+v", ev.Feedback)
}
