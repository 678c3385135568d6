package domain

import "time"

// Criterion is one scoring dimension of an answer (0-10).
type Criterion string

const (
	CriterionTechnicalAccuracy Criterion = "technical_accuracy"
	CriterionCompleteness      Criterion = "completeness"
	CriterionClarity           Criterion = "clarity"
	CriterionCommunication     Criterion = "communication"
	CriterionProblemSolving    Criterion = "problem_solving"
	CriterionStructure         Criterion = "structure"
	CriterionDepth             Criterion = "depth"
	CriterionCriticalThinking  Criterion = "critical_thinking"
	CriterionLeadership        Criterion = "leadership"
	CriterionScalability       Criterion = "scalability"
)

// CoreCriteria are scored for every answer.
var CoreCriteria = []Criterion{
	CriterionTechnicalAccuracy,
	CriterionCompleteness,
	CriterionClarity,
	CriterionCommunication,
	CriterionProblemSolving,
	CriterionStructure,
	CriterionDepth,
	CriterionCriticalThinking,
}

// ScoreTier is the coarse band of an overall score.
type ScoreTier string

const (
	TierExcellent ScoreTier = "excellent"
	TierGood      ScoreTier = "good"
	TierFair      ScoreTier = "fair"
	TierPoor      ScoreTier = "poor"
)

// FeedbackKind categorizes a feedback item.
type FeedbackKind string

const (
	FeedbackStrength   FeedbackKind = "strength"
	FeedbackWeakness   FeedbackKind = "weakness"
	FeedbackSuggestion FeedbackKind = "suggestion"
)

// FeedbackPriority ranks how urgently a feedback item should be acted on.
type FeedbackPriority string

const (
	PriorityHigh   FeedbackPriority = "high"
	PriorityMedium FeedbackPriority = "medium"
	PriorityLow    FeedbackPriority = "low"
)

// FeedbackItem is one categorized remark on an answer.
type FeedbackItem struct {
	Kind      FeedbackKind     `json:"kind"`
	Priority  FeedbackPriority `json:"priority"`
	Criterion Criterion        `json:"criterion,omitempty"`
	Text      string           `json:"text"`
}

// Area is the label used when ranking recurring strengths and weaknesses.
func (f FeedbackItem) Area() string {
	if f.Criterion != "" {
		return string(f.Criterion)
	}
	return f.Text
}

// EvaluationSource records which scoring path produced an evaluation.
type EvaluationSource string

const (
	SourceLLM   EvaluationSource = "llm"
	SourceRules EvaluationSource = "rules"
)

// AnswerEvaluation is the immutable scoring result of one answer.
type AnswerEvaluation struct {
	QuestionType    QuestionType          `json:"questionType"`
	CriterionScores map[Criterion]float64 `json:"criterionScores"`
	OverallScore    float64               `json:"overallScore"`
	Tier            ScoreTier             `json:"tier"`
	Feedback        []FeedbackItem        `json:"feedback"`
	MatchedSkills   []string              `json:"matchedSkills,omitempty"`
	MissingSkills   []string              `json:"missingSkills,omitempty"`
	Source          EvaluationSource      `json:"source"`
	EvaluatedAt     time.Time             `json:"evaluatedAt"`
}

// Clone deep-copies the evaluation.
func (e *AnswerEvaluation) Clone() *AnswerEvaluation {
	if e == nil {
		return nil
	}
	out := *e
	if e.CriterionScores != nil {
		out.CriterionScores = make(map[Criterion]float64, len(e.CriterionScores))
		for k, v := range e.CriterionScores {
			out.CriterionScores[k] = v
		}
	}
	out.Feedback = append([]FeedbackItem(nil), e.Feedback...)
	out.MatchedSkills = cloneStrings(e.MatchedSkills)
	out.MissingSkills = cloneStrings(e.MissingSkills)
	return &out
}
