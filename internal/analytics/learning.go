package analytics

import (
	"math"
	"sort"

	"interview-coach-service/internal/domain"
)

var focusActivities = map[string][]string{
	string(domain.CriterionTechnicalAccuracy): {"Review core concepts for your target role", "Explain one concept aloud each day without notes"},
	string(domain.CriterionCompleteness):      {"Outline every part of the question before answering", "Compare your answers with the expected outline"},
	string(domain.CriterionClarity):           {"Lead with a one-sentence answer", "Record and replay answers to cut filler"},
	string(domain.CriterionCommunication):     {"Practice timed answers out loud", "Narrate your thinking during coding questions"},
	string(domain.CriterionProblemSolving):    {"Break problems into steps before solving", "Practice situational and coding questions"},
	string(domain.CriterionStructure):         {"Use the STAR format for behavioral answers", "Prepare five STAR stories in advance"},
	string(domain.CriterionDepth):             {"Add one trade-off and one example to every answer", "Study how systems you use work internally"},
	string(domain.CriterionCriticalThinking):  {"State alternatives before choosing one", "Name the risks of your proposed approach"},
	string(domain.CriterionLeadership):        {"Prepare stories about influencing without authority", "Describe how you mentored or unblocked others"},
	string(domain.CriterionScalability):       {"Practice capacity estimates", "Review sharding, caching and replication patterns"},
}

var defaultActivities = []string{"Complete a mixed practice session", "Review the feedback of your last session"}

// LearningPath recommends a practice plan for userID. A user without completed
// sessions gets a beginner plan.
func (e *Engine) LearningPath(userID string, sessions []*domain.Session) domain.LearningPath {
	sum := e.Summarize(userID, sessions)
	level := e.level(sum)

	path := domain.LearningPath{
		UserID:            userID,
		CurrentLevel:      level,
		AverageScore:      sum.AverageScore,
		CompletedSessions: sum.CompletedSessions,
		SessionsPerWeek:   e.th.SessionsPerWeek,
	}

	var targetSessions int
	switch level {
	case domain.LevelBeginner:
		path.TargetLevel = domain.LevelIntermediate
		path.TargetScore = e.th.BeginnerMaxScore
		targetSessions = e.th.BeginnerMinSessions
	case domain.LevelIntermediate:
		path.TargetLevel = domain.LevelAdvanced
		path.TargetScore = e.th.AdvancedMinScore
		targetSessions = e.th.AdvancedMinSessions
	default:
		path.TargetLevel = domain.LevelAdvanced
		path.TargetScore = e.th.MasteryScore
		targetSessions = sum.CompletedSessions
	}

	scoreGap := math.Max(0, path.TargetScore-sum.AverageScore)
	sessionGap := targetSessions - sum.CompletedSessions
	if sessionGap < 0 {
		sessionGap = 0
	}
	weeksForScore := int(math.Ceil(scoreGap / e.th.PointsPerWeek))
	weeksForSessions := int(math.Ceil(float64(sessionGap) / float64(e.th.SessionsPerWeek)))
	path.EstimatedWeeks = max(weeksForScore, weeksForSessions)
	path.RecommendedSessions = max(sessionGap, path.EstimatedWeeks*e.th.SessionsPerWeek)

	for i, w := range sum.Weaknesses {
		if i >= e.th.FocusAreas {
			break
		}
		path.FocusAreas = append(path.FocusAreas, domain.FocusArea{
			Area:       w.Area,
			Priority:   focusPriority(i),
			Activities: activitiesFor(w.Area),
		})
	}
	if len(path.FocusAreas) == 0 {
		path.FocusAreas = []domain.FocusArea{{Area: "fundamentals", Priority: "high", Activities: defaultActivities}}
	}

	path.RecommendedTypes = e.recommendedTypes(userID, sessions)

	for _, st := range e.Milestones(sum) {
		if !st.Achieved {
			path.NextMilestoneID = st.ID
			break
		}
	}
	return path
}

func (e *Engine) level(sum domain.ProgressSummary) domain.SkillLevel {
	switch {
	case sum.CompletedSessions < e.th.BeginnerMinSessions || sum.AverageScore < e.th.BeginnerMaxScore:
		return domain.LevelBeginner
	case sum.AverageScore >= e.th.AdvancedMinScore && sum.CompletedSessions >= e.th.AdvancedMinSessions:
		return domain.LevelAdvanced
	}
	return domain.LevelIntermediate
}

// recommendedTypes lists unpracticed question types first, then the weakest
// practiced ones.
func (e *Engine) recommendedTypes(userID string, sessions []*domain.Session) []domain.QuestionType {
	const limit = 3
	byType := map[domain.QuestionType][]float64{}
	for _, s := range completed(userID, sessions) {
		for _, r := range s.Responses {
			if r.Evaluated() {
				byType[r.Type] = append(byType[r.Type], r.Evaluation.OverallScore)
			}
		}
	}

	var out []domain.QuestionType
	var practiced []domain.QuestionType
	for _, qt := range domain.QuestionTypes {
		if _, ok := byType[qt]; ok {
			practiced = append(practiced, qt)
		} else {
			out = append(out, qt)
		}
	}
	sort.SliceStable(practiced, func(i, j int) bool {
		return mean(byType[practiced[i]]) < mean(byType[practiced[j]])
	})
	out = append(out, practiced...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func focusPriority(rank int) string {
	switch rank {
	case 0:
		return "high"
	case 1:
		return "medium"
	}
	return "low"
}

func activitiesFor(area string) []string {
	if a, ok := focusActivities[area]; ok {
		return a
	}
	return defaultActivities
}
