package analytics

import (
	"sort"
	"time"

	"interview-coach-service/internal/domain"
)

// completed returns the user's completed sessions ordered by completion time,
// oldest first. Sessions of other users are ignored.
func completed(userID string, sessions []*domain.Session) []*domain.Session {
	out := make([]*domain.Session, 0, len(sessions))
	for _, s := range sessions {
		if s == nil || s.UserID != userID || s.Status != domain.StatusCompleted || s.Metrics == nil {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return completedAt(out[i]).Before(completedAt(out[j]))
	})
	return out
}

func completedAt(s *domain.Session) time.Time {
	if s.CompletedAt != nil {
		return *s.CompletedAt
	}
	return s.CreatedAt
}

// Summarize computes the progress summary of userID over sessions.
func (e *Engine) Summarize(userID string, sessions []*domain.Session) domain.ProgressSummary {
	sum := domain.ProgressSummary{UserID: userID}
	for _, s := range sessions {
		if s != nil && s.UserID == userID {
			sum.TotalSessions++
		}
	}

	done := completed(userID, sessions)
	sum.CompletedSessions = len(done)
	if len(done) == 0 {
		return sum
	}

	var (
		scores                []float64
		technical, behavioral []float64
		strengths, weaknesses []string
	)
	for i, s := range done {
		m := s.Metrics
		sum.TotalQuestionsAnswered += m.QuestionsAnswered
		sum.TotalQuestionsSkipped += m.QuestionsSkipped
		sum.TotalPracticeTime += m.Duration
		scores = append(scores, m.AverageScore)
		strengths = append(strengths, m.Strengths...)
		weaknesses = append(weaknesses, m.Weaknesses...)

		for _, r := range s.Responses {
			if !r.Evaluated() {
				continue
			}
			switch r.Type {
			case domain.QuestionTechnical:
				technical = append(technical, r.Evaluation.OverallScore)
			case domain.QuestionBehavioral:
				behavioral = append(behavioral, r.Evaluation.OverallScore)
			}
		}

		if i == 0 || m.AverageScore > sum.BestScore {
			sum.BestScore, sum.BestSessionID = m.AverageScore, s.ID
		}
		if i == 0 || m.AverageScore < sum.WorstScore {
			sum.WorstScore, sum.WorstSessionID = m.AverageScore, s.ID
		}
	}

	sum.AverageScore = round2(mean(scores))
	sum.TechnicalAverage = round2(mean(technical))
	sum.BehavioralAverage = round2(mean(behavioral))
	sum.ImprovementRate = improvementRate(scores)
	sum.Strengths = rankAreas(strengths, e.th.TopAreas)
	sum.Weaknesses = rankAreas(weaknesses, e.th.TopAreas)

	for i := len(done) - 1; i >= 0 && len(sum.RecentSessionIDs) < e.th.RecentSessions; i-- {
		sum.RecentSessionIDs = append(sum.RecentSessionIDs, done[i].ID)
	}
	return sum
}

// improvementRate compares the most recent third of chronologically ordered
// scores with the earliest third, as a percentage of the earliest. It is zero
// with fewer than three scores or a zero baseline.
func improvementRate(scores []float64) float64 {
	if len(scores) < 3 {
		return 0
	}
	third := len(scores) / 3
	early := mean(scores[:third])
	if early == 0 {
		return 0
	}
	recent := mean(scores[len(scores)-third:])
	return round2((recent - early) / early * 100)
}
