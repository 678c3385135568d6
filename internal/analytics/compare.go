package analytics

import (
	"fmt"
	"sort"

	"interview-coach-service/internal/domain"
)

// Compare reports how session b moved relative to the baseline a. Both
// sessions must be completed and belong to the same user.
func (e *Engine) Compare(a, b *domain.Session) (domain.SessionComparison, error) {
	if a == nil || b == nil {
		return domain.SessionComparison{}, domain.ErrSessionNotFound
	}
	if a.UserID != b.UserID {
		return domain.SessionComparison{}, fmt.Errorf("compare %s and %s: %w", a.ID, b.ID, domain.ErrCrossUserComparison)
	}
	for _, s := range []*domain.Session{a, b} {
		if s.Status != domain.StatusCompleted || s.Metrics == nil {
			return domain.SessionComparison{}, &domain.InvalidTransitionError{SessionID: s.ID, Op: "compare", From: s.Status}
		}
	}

	ma, mb := a.Metrics, b.Metrics
	cmp := domain.SessionComparison{
		UserID:          a.UserID,
		BaselineID:      a.ID,
		ComparedID:      b.ID,
		ScoreDelta:      round2(mb.AverageScore - ma.AverageScore),
		TimeDelta:       mb.Duration - ma.Duration,
		TechnicalDelta:  round2(mb.TechnicalAverage - ma.TechnicalAverage),
		BehavioralDelta: round2(mb.BehavioralAverage - ma.BehavioralAverage),
	}

	var pooled []float64
	for _, s := range []*domain.Session{a, b} {
		for _, r := range s.Responses {
			if r.Evaluated() {
				pooled = append(pooled, r.Evaluation.OverallScore)
			}
		}
	}
	cmp.ConsistencyScore = consistency(pooled)

	for _, c := range criterionOrder(ma.CriterionAverages, mb.CriterionAverages) {
		before, okA := ma.CriterionAverages[c]
		after, okB := mb.CriterionAverages[c]
		if !okA || !okB {
			continue
		}
		cmp.CriterionDeltas = append(cmp.CriterionDeltas, domain.CriterionDelta{
			Criterion: c, Before: before, After: after, Delta: round2(after - before),
		})
	}

	deltas := append([]domain.CriterionDelta(nil), cmp.CriterionDeltas...)
	sort.SliceStable(deltas, func(i, j int) bool { return deltas[i].Delta > deltas[j].Delta })
	for _, d := range deltas {
		if d.Delta > 0 {
			cmp.ImprovementAreas = append(cmp.ImprovementAreas, string(d.Criterion))
		}
	}
	for i := len(deltas) - 1; i >= 0; i-- {
		if deltas[i].Delta < 0 {
			cmp.DeclineAreas = append(cmp.DeclineAreas, string(deltas[i].Criterion))
		}
	}
	return cmp, nil
}

// consistency maps the variance of per-question scores into (0, 100]; identical
// scores give 100.
func consistency(scores []float64) float64 {
	return round2(100 / (1 + variance(scores)/100))
}

// criterionOrder lists criteria present in either map, known criteria first in
// their canonical order.
func criterionOrder(a, b map[domain.Criterion]float64) []domain.Criterion {
	seen := map[domain.Criterion]bool{}
	var out []domain.Criterion
	known := append(append([]domain.Criterion{}, domain.CoreCriteria...), domain.CriterionLeadership, domain.CriterionScalability)
	for _, c := range known {
		_, inA := a[c]
		_, inB := b[c]
		if inA || inB {
			out = append(out, c)
			seen[c] = true
		}
	}
	var rest []domain.Criterion
	for _, m := range []map[domain.Criterion]float64{a, b} {
		for c := range m {
			if !seen[c] {
				rest = append(rest, c)
				seen[c] = true
			}
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(out, rest...)
}
