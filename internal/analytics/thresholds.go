// Package analytics derives progress summaries, trends, comparisons, learning
// paths and milestones from persisted sessions. Every function is a pure
// function of its inputs.
package analytics

import (
	"interview-coach-service/internal/domain"
)

// Thresholds are the tunable constants behind level classification, cadence
// and milestones.
type Thresholds struct {
	BeginnerMinSessions int     `yaml:"beginner_min_sessions"`
	BeginnerMaxScore    float64 `yaml:"beginner_max_score"`
	AdvancedMinSessions int     `yaml:"advanced_min_sessions"`
	AdvancedMinScore    float64 `yaml:"advanced_min_score"`
	// MasteryScore is the target for users who are already advanced.
	MasteryScore float64 `yaml:"mastery_score"`

	SessionsPerWeek int     `yaml:"sessions_per_week"`
	PointsPerWeek   float64 `yaml:"points_per_week"`

	RecentSessions int `yaml:"recent_sessions"`
	TopAreas       int `yaml:"top_areas"`
	FocusAreas     int `yaml:"focus_areas"`

	Milestones []domain.Milestone `yaml:"milestones"`
}

// DefaultThresholds returns the built-in defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BeginnerMinSessions: 3,
		BeginnerMaxScore:    60,
		AdvancedMinSessions: 10,
		AdvancedMinScore:    80,
		MasteryScore:        90,
		SessionsPerWeek:     3,
		PointsPerWeek:       2,
		RecentSessions:      5,
		TopAreas:            5,
		FocusAreas:          3,
		Milestones:          DefaultMilestones(),
	}
}

// DefaultMilestones is the built-in achievement list.
func DefaultMilestones() []domain.Milestone {
	return []domain.Milestone{
		{ID: "first-session", Title: "First Steps", Description: "Complete your first practice session", Metric: domain.MetricCompletedSessions, Threshold: 1},
		{ID: "ten-sessions", Title: "Dedicated Learner", Description: "Complete 10 practice sessions", Metric: domain.MetricCompletedSessions, Threshold: 10},
		{ID: "twenty-five-sessions", Title: "Interview Veteran", Description: "Complete 25 practice sessions", Metric: domain.MetricCompletedSessions, Threshold: 25},
		{ID: "average-80", Title: "High Achiever", Description: "Reach an average score of 80 or more", Metric: domain.MetricAverageScore, Threshold: 80},
		{ID: "questions-100", Title: "Century", Description: "Answer 100 questions", Metric: domain.MetricQuestionsAnswered, Threshold: 100},
		{ID: "improvement-20", Title: "On the Rise", Description: "Improve your scores by 20%", Metric: domain.MetricImprovementRate, Threshold: 20},
	}
}

// withDefaults fills zero fields from DefaultThresholds.
func (t Thresholds) withDefaults() Thresholds {
	d := DefaultThresholds()
	if t.BeginnerMinSessions <= 0 {
		t.BeginnerMinSessions = d.BeginnerMinSessions
	}
	if t.BeginnerMaxScore <= 0 {
		t.BeginnerMaxScore = d.BeginnerMaxScore
	}
	if t.AdvancedMinSessions <= 0 {
		t.AdvancedMinSessions = d.AdvancedMinSessions
	}
	if t.AdvancedMinScore <= 0 {
		t.AdvancedMinScore = d.AdvancedMinScore
	}
	if t.MasteryScore <= 0 {
		t.MasteryScore = d.MasteryScore
	}
	if t.SessionsPerWeek <= 0 {
		t.SessionsPerWeek = d.SessionsPerWeek
	}
	if t.PointsPerWeek <= 0 {
		t.PointsPerWeek = d.PointsPerWeek
	}
	if t.RecentSessions <= 0 {
		t.RecentSessions = d.RecentSessions
	}
	if t.TopAreas <= 0 {
		t.TopAreas = d.TopAreas
	}
	if t.FocusAreas <= 0 {
		t.FocusAreas = d.FocusAreas
	}
	if len(t.Milestones) == 0 {
		t.Milestones = d.Milestones
	}
	return t
}

// Engine computes analytics with a fixed set of thresholds.
type Engine struct {
	th Thresholds
}

// New creates an Engine; zero threshold fields take their defaults.
func New(th Thresholds) *Engine {
	return &Engine{th: th.withDefaults()}
}

// Thresholds returns the effective thresholds.
func (e *Engine) Thresholds() Thresholds {
	return e.th
}
