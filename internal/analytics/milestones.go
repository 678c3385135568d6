package analytics

import (
	"math"

	"interview-coach-service/internal/domain"
)

// Milestones evaluates every configured milestone against sum.
func (e *Engine) Milestones(sum domain.ProgressSummary) []domain.MilestoneStatus {
	out := make([]domain.MilestoneStatus, 0, len(e.th.Milestones))
	for _, m := range e.th.Milestones {
		v := metricValue(sum, m.Metric)
		st := domain.MilestoneStatus{
			Milestone:    m,
			CurrentValue: v,
			Achieved:     v >= m.Threshold,
		}
		if m.Threshold > 0 {
			st.Progress = round2(math.Max(0, math.Min(100, v/m.Threshold*100)))
		} else {
			st.Progress = 100
		}
		out = append(out, st)
	}
	return out
}

func metricValue(sum domain.ProgressSummary, metric domain.MilestoneMetric) float64 {
	switch metric {
	case domain.MetricCompletedSessions:
		return float64(sum.CompletedSessions)
	case domain.MetricAverageScore:
		return sum.AverageScore
	case domain.MetricQuestionsAnswered:
		return float64(sum.TotalQuestionsAnswered)
	case domain.MetricImprovementRate:
		return sum.ImprovementRate
	case domain.MetricBestScore:
		return sum.BestScore
	}
	return 0
}
