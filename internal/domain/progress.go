package domain

import (
	"fmt"
	"strings"
	"time"
)

// AreaCount is a recurring strength or weakness with how often it was seen.
type AreaCount struct {
	Area  string `json:"area"`
	Count int    `json:"count"`
}

// ProgressSummary is a derived view over one user's sessions. It is never edited directly.
type ProgressSummary struct {
	UserID                 string        `json:"userId"`
	TotalSessions          int           `json:"totalSessions"`
	CompletedSessions      int           `json:"completedSessions"`
	TotalQuestionsAnswered int           `json:"totalQuestionsAnswered"`
	TotalQuestionsSkipped  int           `json:"totalQuestionsSkipped"`
	TotalPracticeTime      time.Duration `json:"totalPracticeTime"`
	AverageScore           float64       `json:"averageScore"`
	BestScore              float64       `json:"bestScore"`
	WorstScore             float64       `json:"worstScore"`
	TechnicalAverage       float64       `json:"technicalAverage"`
	BehavioralAverage      float64       `json:"behavioralAverage"`
	ImprovementRate        float64       `json:"improvementRate"`
	Strengths              []AreaCount   `json:"strengths,omitempty"`
	Weaknesses             []AreaCount   `json:"weaknesses,omitempty"`
	RecentSessionIDs       []string      `json:"recentSessionIds,omitempty"`
	BestSessionID          string        `json:"bestSessionId,omitempty"`
	WorstSessionID         string        `json:"worstSessionId,omitempty"`
}

// Period is an analytics time window.
type Period string

const (
	PeriodWeek    Period = "7d"
	PeriodMonth   Period = "30d"
	PeriodQuarter Period = "90d"
	PeriodAll     Period = "all"
)

// ParsePeriod accepts "7d", "30d", "90d", "all" and the bare day counts.
func ParsePeriod(raw string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "7d", "7", "week":
		return PeriodWeek, nil
	case "30d", "30", "month", "":
		return PeriodMonth, nil
	case "90d", "90", "quarter":
		return PeriodQuarter, nil
	case "all", "all-time", "all_time":
		return PeriodAll, nil
	}
	return "", fmt.Errorf("%w: unknown period %q", ErrInvalidInput, raw)
}

// Days returns the window length, or 0 for all-time.
func (p Period) Days() int {
	switch p {
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 30
	case PeriodQuarter:
		return 90
	}
	return 0
}

// Bucket aggregates sessions sharing a type or mode.
type Bucket struct {
	Sessions     int     `json:"sessions"`
	AverageScore float64 `json:"averageScore"`
}

// Distribution summarizes a set of scores.
type Distribution struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"stdDev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// SeriesPoint is one point of a trend line.
type SeriesPoint struct {
	Date      time.Time `json:"date"`
	SessionID string    `json:"sessionId"`
	Value     float64   `json:"value"`
}

// ProgressAnalytics is the windowed analytics view.
type ProgressAnalytics struct {
	UserID            string                 `json:"userId"`
	Period            Period                 `json:"period"`
	From              *time.Time             `json:"from,omitempty"`
	To                time.Time              `json:"to"`
	Summary           ProgressSummary        `json:"summary"`
	ByType            map[SessionType]Bucket `json:"byType"`
	ByMode            map[SessionMode]Bucket `json:"byMode"`
	Scores            Distribution           `json:"scores"`
	CriterionAverages map[Criterion]float64  `json:"criterionAverages,omitempty"`
	ScoreSeries       []SeriesPoint          `json:"scoreSeries"`
	QuestionSeries    []SeriesPoint          `json:"questionSeries"`
}

// CriterionDelta is the change of one criterion average between two sessions.
type CriterionDelta struct {
	Criterion Criterion `json:"criterion"`
	Before    float64   `json:"before"`
	After     float64   `json:"after"`
	Delta     float64   `json:"delta"`
}

// SessionComparison compares a baseline session with a later one.
type SessionComparison struct {
	UserID           string           `json:"userId"`
	BaselineID       string           `json:"baselineId"`
	ComparedID       string           `json:"comparedId"`
	ScoreDelta       float64          `json:"scoreDelta"`
	TimeDelta        time.Duration    `json:"timeDelta"`
	TechnicalDelta   float64          `json:"technicalDelta"`
	BehavioralDelta  float64          `json:"behavioralDelta"`
	ConsistencyScore float64          `json:"consistencyScore"`
	CriterionDeltas  []CriterionDelta `json:"criterionDeltas,omitempty"`
	ImprovementAreas []string         `json:"improvementAreas,omitempty"`
	DeclineAreas     []string         `json:"declineAreas,omitempty"`
}

// SkillLevel classifies a user's current standing.
type SkillLevel string

const (
	LevelBeginner     SkillLevel = "beginner"
	LevelIntermediate SkillLevel = "intermediate"
	LevelAdvanced     SkillLevel = "advanced"
)

// FocusArea is one recommended area of practice.
type FocusArea struct {
	Area       string   `json:"area"`
	Priority   string   `json:"priority"`
	Activities []string `json:"activities"`
}

// LearningPath is a recommended practice plan.
type LearningPath struct {
	UserID              string         `json:"userId"`
	CurrentLevel        SkillLevel     `json:"currentLevel"`
	TargetLevel         SkillLevel     `json:"targetLevel"`
	AverageScore        float64        `json:"averageScore"`
	TargetScore         float64        `json:"targetScore"`
	CompletedSessions   int            `json:"completedSessions"`
	FocusAreas          []FocusArea    `json:"focusAreas"`
	RecommendedTypes    []QuestionType `json:"recommendedTypes"`
	SessionsPerWeek     int            `json:"sessionsPerWeek"`
	EstimatedWeeks      int            `json:"estimatedWeeks"`
	NextMilestoneID     string         `json:"nextMilestoneId,omitempty"`
	RecommendedSessions int            `json:"recommendedSessions"`
}

// MilestoneMetric names the summary field a milestone is measured against.
type MilestoneMetric string

const (
	MetricCompletedSessions MilestoneMetric = "completed_sessions"
	MetricAverageScore      MilestoneMetric = "average_score"
	MetricQuestionsAnswered MilestoneMetric = "questions_answered"
	MetricImprovementRate   MilestoneMetric = "improvement_rate"
	MetricBestScore         MilestoneMetric = "best_score"
)

// Milestone is a named achievement with a numeric threshold.
type Milestone struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Metric      MilestoneMetric `json:"metric"`
	Threshold   float64         `json:"threshold"`
}

// MilestoneStatus is a milestone evaluated against a summary.
type MilestoneStatus struct {
	Milestone
	Achieved     bool    `json:"achieved"`
	CurrentValue float64 `json:"currentValue"`
	Progress     float64 `json:"progress"`
}
