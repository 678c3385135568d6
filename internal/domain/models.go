package domain

import (
	"fmt"
	"strings"
	"time"
)

// QuestionType is the closed set of interview question categories.
type QuestionType string

const (
	QuestionTechnical    QuestionType = "technical"
	QuestionBehavioral   QuestionType = "behavioral"
	QuestionSituational  QuestionType = "situational"
	QuestionSystemDesign QuestionType = "system_design"
	QuestionCoding       QuestionType = "coding"
)

// QuestionTypes lists every question type in canonical order.
var QuestionTypes = []QuestionType{
	QuestionTechnical,
	QuestionBehavioral,
	QuestionSituational,
	QuestionSystemDesign,
	QuestionCoding,
}

// ParseQuestionType accepts the canonical names plus hyphenated/space variants ("system-design").
func ParseQuestionType(raw string) (QuestionType, error) {
	norm := strings.ToLower(strings.TrimSpace(raw))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for _, qt := range QuestionTypes {
		if string(qt) == norm {
			return qt, nil
		}
	}
	return "", fmt.Errorf("%w: unknown question type %q", ErrInvalidInput, raw)
}

// Difficulty is the tier a question was generated at.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// SessionStatus is the state-machine status of a session.
type SessionStatus string

const (
	StatusScheduled  SessionStatus = "scheduled"
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
)

// Rank orders statuses so transitions can be checked for monotonicity.
func (s SessionStatus) Rank() int {
	switch s {
	case StatusScheduled:
		return 0
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	}
	return -1
}

// SessionMode describes how the session is run.
type SessionMode string

const (
	ModePractice   SessionMode = "practice"
	ModeMock       SessionMode = "mock"
	ModeReal       SessionMode = "real"
	ModeAssessment SessionMode = "assessment"
)

// ParseSessionMode validates a mode, defaulting empty input to practice.
func ParseSessionMode(raw string) (SessionMode, error) {
	switch m := SessionMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return ModePractice, nil
	case ModePractice, ModeMock, ModeReal, ModeAssessment:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown session mode %q", ErrInvalidInput, raw)
}

// SessionType is derived from the requested question mix: a single question type, or "mixed".
type SessionType string

const SessionMixed SessionType = "mixed"

// CandidateMeta carries who the session is for.
type CandidateMeta struct {
	Name            string   `json:"name,omitempty"`
	TargetRole      string   `json:"targetRole"`
	ExperienceLevel string   `json:"experienceLevel"`
	Skills          []string `json:"skills,omitempty"`
	ResumeSummary   string   `json:"resumeSummary,omitempty"`
}

// QuestionDescriptor is what the question-generation collaborator returns.
type QuestionDescriptor struct {
	ID              string       `json:"id,omitempty"`
	Text            string       `json:"text"`
	Type            QuestionType `json:"type"`
	Difficulty      Difficulty   `json:"difficulty"`
	SkillsTested    []string     `json:"skillsTested,omitempty"`
	ExpectedOutline string       `json:"expectedOutline,omitempty"`
}

// QuestionRequest asks the collaborator for Count questions of one type.
type QuestionRequest struct {
	Role            string
	ExperienceLevel string
	Type            QuestionType
	Count           int
	Candidate       CandidateMeta
}

// QuestionResponse is one question within a session plus its answer and evaluation.
// It is written exactly once, by a submit or a skip.
type QuestionResponse struct {
	Index           int               `json:"index"`
	QuestionID      string            `json:"questionId,omitempty"`
	QuestionText    string            `json:"questionText"`
	Type            QuestionType      `json:"type"`
	Difficulty      Difficulty        `json:"difficulty"`
	SkillsTested    []string          `json:"skillsTested,omitempty"`
	ExpectedOutline string            `json:"expectedOutline,omitempty"`
	Answer          *string           `json:"answer,omitempty"`
	TimeSpent       time.Duration     `json:"timeSpent"`
	Skipped         bool              `json:"skipped"`
	AnsweredAt      *time.Time        `json:"answeredAt,omitempty"`
	Evaluation      *AnswerEvaluation `json:"evaluation,omitempty"`
}

// Resolved reports whether the response was already submitted or skipped.
func (r *QuestionResponse) Resolved() bool {
	return r.Skipped || r.Answer != nil
}

// Evaluated reports whether the response carries a score that counts toward averages.
func (r *QuestionResponse) Evaluated() bool {
	return !r.Skipped && r.Evaluation != nil
}

// SessionMetrics is computed exactly once, at completion.
type SessionMetrics struct {
	AverageScore       float64               `json:"averageScore"`
	TechnicalAverage   float64               `json:"technicalAverage"`
	BehavioralAverage  float64               `json:"behavioralAverage"`
	Duration           time.Duration         `json:"duration"`
	QuestionsTotal     int                   `json:"questionsTotal"`
	QuestionsAnswered  int                   `json:"questionsAnswered"`
	QuestionsSkipped   int                   `json:"questionsSkipped"`
	CriterionAverages  map[Criterion]float64 `json:"criterionAverages,omitempty"`
	Strengths          []string              `json:"strengths,omitempty"`
	Weaknesses         []string              `json:"weaknesses,omitempty"`
	TierCounts         map[ScoreTier]int     `json:"tierCounts,omitempty"`
	EvaluationFallback int                   `json:"evaluationFallback"`
}

// Session is one practice-interview attempt.
type Session struct {
	ID              string             `json:"id"`
	UserID          string             `json:"userId"`
	Candidate       CandidateMeta      `json:"candidate"`
	TargetRole      string             `json:"targetRole"`
	ExperienceLevel string             `json:"experienceLevel"`
	Type            SessionType        `json:"type"`
	Mode            SessionMode        `json:"mode"`
	Responses       []QuestionResponse `json:"responses"`
	Status          SessionStatus      `json:"status"`
	CurrentIndex    int                `json:"currentIndex"`
	CreatedAt       time.Time          `json:"createdAt"`
	StartedAt       *time.Time         `json:"startedAt,omitempty"`
	CompletedAt     *time.Time         `json:"completedAt,omitempty"`
	Metrics         *SessionMetrics    `json:"metrics,omitempty"`
	// Version is advanced by the store on every successful write.
	Version int64 `json:"version"`
}

// Current returns the response under the cursor, or nil when there is none.
func (s *Session) Current() *QuestionResponse {
	if s.Status == StatusCompleted || s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Responses) {
		return nil
	}
	return &s.Responses[s.CurrentIndex]
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Candidate.Skills = cloneStrings(s.Candidate.Skills)
	out.StartedAt = cloneTime(s.StartedAt)
	out.CompletedAt = cloneTime(s.CompletedAt)
	if s.Responses != nil {
		out.Responses = make([]QuestionResponse, len(s.Responses))
		for i, r := range s.Responses {
			r.SkillsTested = cloneStrings(r.SkillsTested)
			if r.Answer != nil {
				a := *r.Answer
				r.Answer = &a
			}
			r.AnsweredAt = cloneTime(r.AnsweredAt)
			r.Evaluation = r.Evaluation.Clone()
			out.Responses[i] = r
		}
	}
	if s.Metrics != nil {
		m := *s.Metrics
		m.Strengths = cloneStrings(s.Metrics.Strengths)
		m.Weaknesses = cloneStrings(s.Metrics.Weaknesses)
		if s.Metrics.CriterionAverages != nil {
			m.CriterionAverages = make(map[Criterion]float64, len(s.Metrics.CriterionAverages))
			for k, v := range s.Metrics.CriterionAverages {
				m.CriterionAverages[k] = v
			}
		}
		if s.Metrics.TierCounts != nil {
			m.TierCounts = make(map[ScoreTier]int, len(s.Metrics.TierCounts))
			for k, v := range s.Metrics.TierCounts {
				m.TierCounts[k] = v
			}
		}
		out.Metrics = &m
	}
	return &out
}

// AnswerSubmission is a caller's answer to the current question.
// QuestionIndex, when set, must equal the session cursor.
type AnswerSubmission struct {
	Answer        string
	TimeSpent     time.Duration
	QuestionIndex *int
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
