package analytics

import (
	"time"

	"interview-coach-service/internal/domain"
)

// Analyze computes windowed analytics ending at now. Sessions count toward the
// window by completion time, or by creation time when not completed.
func (e *Engine) Analyze(userID string, sessions []*domain.Session, period domain.Period, now time.Time) domain.ProgressAnalytics {
	out := domain.ProgressAnalytics{
		UserID:            userID,
		Period:            period,
		To:                now,
		ByType:            map[domain.SessionType]domain.Bucket{},
		ByMode:            map[domain.SessionMode]domain.Bucket{},
		CriterionAverages: map[domain.Criterion]float64{},
		ScoreSeries:       []domain.SeriesPoint{},
		QuestionSeries:    []domain.SeriesPoint{},
	}

	inWindow := sessions
	if days := period.Days(); days > 0 {
		from := now.AddDate(0, 0, -days)
		out.From = &from
		inWindow = make([]*domain.Session, 0, len(sessions))
		for _, s := range sessions {
			if s == nil {
				continue
			}
			at := completedAt(s)
			if !at.Before(from) && !at.After(now) {
				inWindow = append(inWindow, s)
			}
		}
	}
	out.Summary = e.Summarize(userID, inWindow)

	done := completed(userID, inWindow)
	var (
		scores   []float64
		byType   = map[domain.SessionType][]float64{}
		byMode   = map[domain.SessionMode][]float64{}
		criteria = map[domain.Criterion][]float64{}
	)
	for _, s := range done {
		avg := s.Metrics.AverageScore
		scores = append(scores, avg)
		byType[s.Type] = append(byType[s.Type], avg)
		byMode[s.Mode] = append(byMode[s.Mode], avg)
		for _, r := range s.Responses {
			if !r.Evaluated() {
				continue
			}
			for c, v := range r.Evaluation.CriterionScores {
				criteria[c] = append(criteria[c], v)
			}
		}

		at := completedAt(s)
		out.ScoreSeries = append(out.ScoreSeries, domain.SeriesPoint{Date: at, SessionID: s.ID, Value: avg})
		out.QuestionSeries = append(out.QuestionSeries, domain.SeriesPoint{Date: at, SessionID: s.ID, Value: float64(s.Metrics.QuestionsAnswered)})
	}

	for t, xs := range byType {
		out.ByType[t] = domain.Bucket{Sessions: len(xs), AverageScore: round2(mean(xs))}
	}
	for m, xs := range byMode {
		out.ByMode[m] = domain.Bucket{Sessions: len(xs), AverageScore: round2(mean(xs))}
	}
	for c, xs := range criteria {
		out.CriterionAverages[c] = round2(mean(xs))
	}
	out.Scores = distribution(scores)
	return out
}
