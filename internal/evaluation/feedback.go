package evaluation

import (
	"fmt"
	"sort"
	"strings"

	"interview-coach-service/internal/domain"
)

var criterionLabels = map[domain.Criterion]string{
	domain.CriterionTechnicalAccuracy: "technical accuracy",
	domain.CriterionCompleteness:      "completeness",
	domain.CriterionClarity:           "clarity",
	domain.CriterionCommunication:     "communication",
	domain.CriterionProblemSolving:    "problem solving",
	domain.CriterionStructure:         "structure",
	domain.CriterionDepth:             "depth",
	domain.CriterionCriticalThinking:  "critical thinking",
	domain.CriterionLeadership:        "leadership",
	domain.CriterionScalability:       "scalability",
}

var weaknessAdvice = map[domain.Criterion]string{
	domain.CriterionTechnicalAccuracy: "Use precise terminology and make sure the core facts are correct.",
	domain.CriterionCompleteness:      "Cover every part of the question before going deep on one aspect.",
	domain.CriterionClarity:           "Use shorter sentences and state the main point first.",
	domain.CriterionCommunication:     "Walk the interviewer through your answer step by step.",
	domain.CriterionProblemSolving:    "Describe the approach explicitly: break the problem down and explain each step.",
	domain.CriterionStructure:         "Organize the answer with a clear beginning, middle and end.",
	domain.CriterionDepth:             "Go beyond the definition with trade-offs and a concrete example.",
	domain.CriterionCriticalThinking:  "Explain why you chose this approach and what alternatives you considered.",
	domain.CriterionLeadership:        "Show how you influenced, aligned or supported other people.",
	domain.CriterionScalability:       "Discuss how the design behaves as load grows and where it breaks.",
}

// ruleFeedback derives feedback from the rule scores and answer features.
func ruleFeedback(qt domain.QuestionType, scores map[domain.Criterion]float64, f answerFeatures) []domain.FeedbackItem {
	type scored struct {
		c domain.Criterion
		v float64
	}
	weighted := make([]scored, 0, 4)
	for _, w := range WeightsFor(qt) {
		weighted = append(weighted, scored{w.Criterion, scores[w.Criterion]})
	}
	sort.SliceStable(weighted, func(i, j int) bool { return weighted[i].v > weighted[j].v })

	var items []domain.FeedbackItem
	if best := weighted[0]; best.v >= 6 {
		items = append(items, domain.FeedbackItem{
			Kind:      domain.FeedbackStrength,
			Priority:  domain.PriorityLow,
			Criterion: best.c,
			Text:      fmt.Sprintf("Good %s in this answer.", criterionLabels[best.c]),
		})
	}
	if len(f.matched) > 0 {
		items = append(items, domain.FeedbackItem{
			Kind:     domain.FeedbackStrength,
			Priority: domain.PriorityLow,
			Text:     "You addressed " + strings.Join(f.matched, ", ") + ".",
		})
	}

	weak := 0
	for i := len(weighted) - 1; i >= 0 && weak < 2; i-- {
		s := weighted[i]
		if s.v >= 5 {
			break
		}
		priority := domain.PriorityMedium
		if s.v < 3 {
			priority = domain.PriorityHigh
		}
		items = append(items, domain.FeedbackItem{
			Kind:      domain.FeedbackWeakness,
			Priority:  priority,
			Criterion: s.c,
			Text:      weaknessAdvice[s.c],
		})
		weak++
	}

	if len(f.missing) > 0 {
		items = append(items, domain.FeedbackItem{
			Kind:     domain.FeedbackSuggestion,
			Priority: domain.PriorityHigh,
			Text:     "Cover the key skills this question tests: " + strings.Join(f.missing, ", ") + ".",
		})
	}
	if qt == domain.QuestionBehavioral && scores[domain.CriterionStructure] < 6 {
		items = append(items, domain.FeedbackItem{
			Kind:      domain.FeedbackSuggestion,
			Priority:  domain.PriorityMedium,
			Criterion: domain.CriterionStructure,
			Text:      "Use the STAR format: Situation, Task, Action and Result.",
		})
	}
	if f.exampleHits == 0 && f.words >= 30 {
		items = append(items, domain.FeedbackItem{
			Kind:     domain.FeedbackSuggestion,
			Priority: domain.PriorityLow,
			Text:     "Add a concrete example from your experience.",
		})
	}
	return items
}

// insufficientFeedback flags an answer too short to assess.
func insufficientFeedback(f answerFeatures) []domain.FeedbackItem {
	text := "Insufficient content: no answer was provided."
	if f.chars > 0 {
		text = fmt.Sprintf("Insufficient content: the answer is only %d characters long and could not be assessed.", f.chars)
	}
	return []domain.FeedbackItem{
		{Kind: domain.FeedbackWeakness, Priority: domain.PriorityHigh, Criterion: domain.CriterionCompleteness, Text: text},
		{Kind: domain.FeedbackSuggestion, Priority: domain.PriorityHigh, Text: "Start with a direct one-sentence answer, then expand with reasoning and an example."},
	}
}

// ensureFeedback guarantees at least one strength-or-suggestion, at least one
// weakness-or-suggestion and at least two items overall.
func ensureFeedback(items []domain.FeedbackItem, f answerFeatures) []domain.FeedbackItem {
	var positive, improve bool
	for _, it := range items {
		switch it.Kind {
		case domain.FeedbackStrength:
			positive = true
		case domain.FeedbackWeakness:
			improve = true
		case domain.FeedbackSuggestion:
			positive, improve = true, true
		}
	}
	if !positive {
		switch {
		case f.words == 0:
			items = append(items, domain.FeedbackItem{Kind: domain.FeedbackSuggestion, Priority: domain.PriorityHigh,
				Text: "Start with a direct one-sentence answer, then expand with reasoning and an example."})
		case f.words < 30:
			items = append(items, domain.FeedbackItem{Kind: domain.FeedbackStrength, Priority: domain.PriorityLow,
				Text: "You gave a direct answer to the question."})
		default:
			items = append(items, domain.FeedbackItem{Kind: domain.FeedbackStrength, Priority: domain.PriorityLow,
				Text: "You gave a substantial answer to build on."})
		}
	}
	if !improve {
		if f.words < 30 {
			items = append(items, domain.FeedbackItem{Kind: domain.FeedbackWeakness, Priority: domain.PriorityMedium,
				Criterion: domain.CriterionDepth,
				Text:      fmt.Sprintf("The answer is brief (%d words); interviewers expect more detail.", f.words)})
		} else {
			items = append(items, domain.FeedbackItem{Kind: domain.FeedbackSuggestion, Priority: domain.PriorityLow,
				Text: "Close with a measurable result or a lesson learned."})
		}
	}
	if len(items) < 2 {
		items = append(items, domain.FeedbackItem{Kind: domain.FeedbackSuggestion, Priority: domain.PriorityLow,
			Text: "Practice answering this type of question aloud within two minutes."})
	}
	return items
}

// sanitizeFeedback drops malformed model items and normalizes the rest.
func sanitizeFeedback(raw []feedbackOutput) []domain.FeedbackItem {
	items := make([]domain.FeedbackItem, 0, len(raw))
	for _, r := range raw {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}
		item := domain.FeedbackItem{
			Kind:     domain.FeedbackKind(r.Kind),
			Priority: domain.FeedbackPriority(r.Priority),
			Text:     text,
		}
		switch item.Kind {
		case domain.FeedbackStrength, domain.FeedbackWeakness, domain.FeedbackSuggestion:
		default:
			continue
		}
		switch item.Priority {
		case domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow:
		default:
			item.Priority = domain.PriorityMedium
		}
		if c := domain.Criterion(strings.TrimSpace(r.Criterion)); criterionLabels[c] != "" {
			item.Criterion = c
		}
		items = append(items, item)
	}
	return items
}
