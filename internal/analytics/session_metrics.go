package analytics

import (
	"time"

	"interview-coach-service/internal/domain"
)

// maxSessionAreas caps the strengths and weaknesses kept on a session.
const maxSessionAreas = 5

// SessionMetrics computes the aggregate metrics of a session finishing at end.
// Skipped responses count toward totals but never toward averages, and every
// average is zero when nothing was evaluated.
func SessionMetrics(s *domain.Session, end time.Time) *domain.SessionMetrics {
	m := &domain.SessionMetrics{
		QuestionsTotal:    len(s.Responses),
		CriterionAverages: map[domain.Criterion]float64{},
		TierCounts:        map[domain.ScoreTier]int{},
	}

	var (
		all, technical, behavioral []float64
		criteria                   = map[domain.Criterion][]float64{}
		strengths, weaknesses      []string
		spent                      time.Duration
	)
	for i := range s.Responses {
		r := &s.Responses[i]
		spent += r.TimeSpent
		if r.Skipped {
			m.QuestionsSkipped++
			continue
		}
		if r.Answer != nil {
			m.QuestionsAnswered++
		}
		if !r.Evaluated() {
			continue
		}
		ev := r.Evaluation
		all = append(all, ev.OverallScore)
		switch r.Type {
		case domain.QuestionTechnical:
			technical = append(technical, ev.OverallScore)
		case domain.QuestionBehavioral:
			behavioral = append(behavioral, ev.OverallScore)
		}
		for c, v := range ev.CriterionScores {
			criteria[c] = append(criteria[c], v)
		}
		m.TierCounts[ev.Tier]++
		if ev.Source == domain.SourceRules {
			m.EvaluationFallback++
		}
		for _, f := range ev.Feedback {
			switch f.Kind {
			case domain.FeedbackStrength:
				strengths = append(strengths, f.Area())
			case domain.FeedbackWeakness:
				weaknesses = append(weaknesses, f.Area())
			}
		}
	}

	m.AverageScore = round2(mean(all))
	m.TechnicalAverage = round2(mean(technical))
	m.BehavioralAverage = round2(mean(behavioral))
	for c, vs := range criteria {
		m.CriterionAverages[c] = round2(mean(vs))
	}
	m.Strengths = areaNames(rankAreas(strengths, maxSessionAreas))
	m.Weaknesses = areaNames(rankAreas(weaknesses, maxSessionAreas))

	if s.StartedAt != nil && end.After(*s.StartedAt) {
		m.Duration = end.Sub(*s.StartedAt)
	} else {
		m.Duration = spent
	}
	return m
}

func areaNames(areas []domain.AreaCount) []string {
	if len(areas) == 0 {
		return nil
	}
	out := make([]string, len(areas))
	for i, a := range areas {
		out[i] = a.Area
	}
	return out
}
