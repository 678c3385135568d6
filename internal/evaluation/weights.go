// Package evaluation scores a single interview answer against weighted criteria.
package evaluation

import (
	"math"
	"strings"

	"interview-coach-service/internal/domain"
)

// Weight is one criterion's share of the overall score.
type Weight struct {
	Criterion domain.Criterion
	Weight    float64
}

// weightTables is resolved once per evaluation; each table sums to 1.0.
var weightTables = map[domain.QuestionType][]Weight{
	domain.QuestionTechnical: {
		{domain.CriterionTechnicalAccuracy, 0.40},
		{domain.CriterionCompleteness, 0.25},
		{domain.CriterionDepth, 0.20},
		{domain.CriterionCommunication, 0.15},
	},
	domain.QuestionCoding: {
		{domain.CriterionTechnicalAccuracy, 0.30},
		{domain.CriterionProblemSolving, 0.30},
		{domain.CriterionCommunication, 0.20},
		{domain.CriterionCompleteness, 0.20},
	},
	domain.QuestionSystemDesign: {
		{domain.CriterionCompleteness, 0.30},
		{domain.CriterionProblemSolving, 0.25},
		{domain.CriterionDepth, 0.25},
		{domain.CriterionCommunication, 0.20},
	},
	domain.QuestionBehavioral: {
		{domain.CriterionCommunication, 0.30},
		{domain.CriterionStructure, 0.25},
		{domain.CriterionCompleteness, 0.25},
		{domain.CriterionDepth, 0.20},
	},
	domain.QuestionSituational: {
		{domain.CriterionProblemSolving, 0.35},
		{domain.CriterionCriticalThinking, 0.25},
		{domain.CriterionCommunication, 0.20},
		{domain.CriterionCompleteness, 0.20},
	},
}

// WeightsFor returns the weight table of qt. Unknown types use the technical table.
func WeightsFor(qt domain.QuestionType) []Weight {
	if w, ok := weightTables[qt]; ok {
		return w
	}
	return weightTables[domain.QuestionTechnical]
}

// OverallScore is 10 * Σ(weight * criterion score), rounded to two decimals and
// clamped to [0, 100]. Criteria missing from scores count as zero.
func OverallScore(qt domain.QuestionType, scores map[domain.Criterion]float64) float64 {
	var sum float64
	for _, w := range WeightsFor(qt) {
		sum += w.Weight * clampScore(scores[w.Criterion])
	}
	return round2(clamp(sum*10, 0, 100))
}

// TierFor maps an overall score to its band.
func TierFor(overall float64) domain.ScoreTier {
	switch {
	case overall >= 85:
		return domain.TierExcellent
	case overall >= 70:
		return domain.TierGood
	case overall >= 50:
		return domain.TierFair
	}
	return domain.TierPoor
}

// roleCriteria returns the role-specific criteria that apply to this question.
func roleCriteria(qt domain.QuestionType, role string) []domain.Criterion {
	var out []domain.Criterion
	if (qt == domain.QuestionBehavioral || qt == domain.QuestionSituational) && isLeadershipRole(role) {
		out = append(out, domain.CriterionLeadership)
	}
	if qt == domain.QuestionSystemDesign || strings.Contains(strings.ToLower(role), "architect") {
		out = append(out, domain.CriterionScalability)
	}
	return out
}

func isLeadershipRole(role string) bool {
	r := strings.ToLower(role)
	for _, k := range []string{"lead", "manager", "head of", "director", "principal", "staff", "vp", "chief"} {
		if strings.Contains(r, k) {
			return true
		}
	}
	return false
}

func clampScore(v float64) float64 {
	return clamp(v, 0, 10)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
