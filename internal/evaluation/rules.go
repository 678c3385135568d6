package evaluation

import (
	"strings"
	"unicode"

	"interview-coach-service/internal/domain"
)

// idealWords is the answer length at which the length signal saturates.
var idealWords = map[domain.QuestionType]float64{
	domain.QuestionTechnical:    120,
	domain.QuestionBehavioral:   150,
	domain.QuestionSituational:  120,
	domain.QuestionSystemDesign: 200,
	domain.QuestionCoding:       100,
}

type markerGroup struct {
	name    string
	phrases []string
}

// structural markers per question type; STAR for behavioral and situational answers
var structureMarkers = map[domain.QuestionType][]markerGroup{
	domain.QuestionBehavioral: {
		{"situation", []string{"situation", "when i was", "at my previous", "at my last", "context", "background", "once"}},
		{"task", []string{"task", "my role", "responsible for", "goal was", "i needed to", "challenge"}},
		{"action", []string{"i decided", "i led", "i implemented", "i worked", "i organized", "i built", "i proposed", "i created", "i set up", "action"}},
		{"result", []string{"result", "outcome", "as a result", "we achieved", "improved", "reduced", "increased", "learned", "impact"}},
	},
	domain.QuestionSituational: {
		{"assess", []string{"first", "understand", "clarify", "gather", "assess"}},
		{"options", []string{"option", "alternative", "could", "either"}},
		{"action", []string{"i would", "i'd", "my approach", "i will"}},
		{"follow-up", []string{"follow up", "monitor", "measure", "outcome", "result"}},
	},
	domain.QuestionTechnical: {
		{"definition", []string{"is a", "refers to", "means", "defined as"}},
		{"sequence", []string{"first", "second", "then", "next", "finally"}},
		{"mechanism", []string{"works by", "under the hood", "internally", "because"}},
		{"summary", []string{"in summary", "overall", "in short", "to summarize"}},
	},
	domain.QuestionSystemDesign: {
		{"requirements", []string{"requirement", "users", "traffic", "capacity", "read", "write"}},
		{"components", []string{"service", "database", "cache", "queue", "load balancer", "api"}},
		{"scaling", []string{"scale", "shard", "replica", "partition", "horizontal", "cdn"}},
		{"tradeoffs", []string{"trade-off", "tradeoff", "consistency", "availability", "latency", "bottleneck"}},
	},
	domain.QuestionCoding: {
		{"approach", []string{"approach", "algorithm", "iterate", "loop", "recursion", "hash", "map", "array", "pointer", "stack"}},
		{"complexity", []string{"complexity", "o(n", "o(1", "o(log", "linear", "quadratic"}},
		{"testing", []string{"edge case", "test", "empty", "null", "boundary", "invalid input"}},
	},
}

var (
	reasoningMarkers  = []string{"because", "therefore", "trade-off", "tradeoff", "however", "alternatively", "considered", "the reason", "which means", "so that", "pros", "cons"}
	exampleMarkers    = []string{"for example", "for instance", "e.g.", "such as", "in my experience", "at my"}
	leadershipMarkers = []string{"led", "mentored", "coordinated", "stakeholder", "team", "delegated", "ownership", "aligned", "coached"}
)

// answerFeatures are the signals the rule engine scores from.
type answerFeatures struct {
	chars         int
	words         int
	sentences     int
	groupsHit     int
	groupsTotal   int
	hitGroups     map[string]bool
	reasoningHits int
	exampleHits   int
	leadHits      int
	matched       []string
	missing       []string
	hasSkills     bool
}

func extractFeatures(qt domain.QuestionType, answer string, skills []string) answerFeatures {
	lower := strings.ToLower(answer)
	f := answerFeatures{
		chars:     len([]rune(strings.TrimSpace(answer))),
		words:     len(strings.Fields(answer)),
		sentences: countSentences(answer),
		hitGroups: map[string]bool{},
	}

	groups := structureMarkers[qt]
	if groups == nil {
		groups = structureMarkers[domain.QuestionTechnical]
	}
	f.groupsTotal = len(groups)
	for _, g := range groups {
		if containsAny(lower, g.phrases) > 0 {
			f.groupsHit++
			f.hitGroups[g.name] = true
		}
	}
	f.reasoningHits = containsAny(lower, reasoningMarkers)
	f.exampleHits = containsAny(lower, exampleMarkers)
	f.leadHits = containsAny(lower, leadershipMarkers)

	tokens := tokenSet(lower)
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		f.hasSkills = true
		if skillMentioned(strings.ToLower(s), lower, tokens) {
			f.matched = append(f.matched, s)
		} else {
			f.missing = append(f.missing, s)
		}
	}
	return f
}

// ruleScores computes every applicable criterion from the extracted features.
func ruleScores(qt domain.QuestionType, f answerFeatures, extra []domain.Criterion) map[domain.Criterion]float64 {
	ideal := idealWords[qt]
	if ideal == 0 {
		ideal = idealWords[domain.QuestionTechnical]
	}
	words := float64(f.words)

	length := 10 * minf(1, words/ideal)
	keyword := length * 0.8
	if f.hasSkills {
		keyword = 10 * float64(len(f.matched)) / float64(len(f.matched)+len(f.missing))
	}
	structure := 2.0
	if f.groupsTotal > 0 {
		structure = 2 + 8*float64(f.groupsHit)/float64(f.groupsTotal)
	}
	clarity := sentenceScore(f) * minf(1, words/15)
	reasoning := minf(10, 3+2.5*float64(f.reasoningHits)) * minf(1, words/30)
	example := 0.0
	if f.exampleHits > 0 {
		example = 2
	}

	scores := map[domain.Criterion]float64{
		domain.CriterionTechnicalAccuracy: 0.6*keyword + 0.4*length,
		domain.CriterionCompleteness:      0.5*length + 0.5*keyword,
		domain.CriterionClarity:           clarity,
		domain.CriterionCommunication:     0.5*clarity + 0.5*length,
		domain.CriterionProblemSolving:    0.4*structure + 0.3*keyword + 0.3*reasoning,
		domain.CriterionStructure:         structure,
		domain.CriterionDepth:             0.6*length + 0.2*structure + example,
		domain.CriterionCriticalThinking:  reasoning,
	}
	for _, c := range extra {
		switch c {
		case domain.CriterionLeadership:
			scores[c] = minf(10, 2+2*float64(f.leadHits)) * minf(1, words/30)
		case domain.CriterionScalability:
			s := 2.0
			if f.hitGroups["scaling"] {
				s += 4
			}
			if f.hitGroups["tradeoffs"] {
				s += 3
			}
			scores[c] = s * minf(1, words/40)
		}
	}
	for c, v := range scores {
		scores[c] = round1(clampScore(v))
	}
	return scores
}

// insufficientScores scores answers below the minimum length: at most 2 per criterion.
func insufficientScores(f answerFeatures, minLength int, extra []domain.Criterion) map[domain.Criterion]float64 {
	v := 0.0
	if minLength > 0 {
		v = round1(2 * minf(1, float64(f.chars)/float64(minLength)))
	}
	scores := make(map[domain.Criterion]float64, len(domain.CoreCriteria)+len(extra))
	for _, c := range domain.CoreCriteria {
		scores[c] = v
	}
	for _, c := range extra {
		scores[c] = v
	}
	return scores
}

func sentenceScore(f answerFeatures) float64 {
	if f.sentences == 0 || f.words == 0 {
		return 0
	}
	avg := float64(f.words) / float64(f.sentences)
	switch {
	case avg >= 8 && avg <= 25:
		return 9
	case avg < 8:
		return 6
	case avg > 40:
		return 4
	}
	return 7
}

func countSentences(s string) int {
	n := 0
	inSentence := false
	for _, r := range s {
		switch {
		case r == '.' || r == '!' || r == '?':
			if inSentence {
				n++
			}
			inSentence = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			inSentence = true
		}
	}
	if inSentence {
		n++
	}
	return n
}

func containsAny(lower string, phrases []string) int {
	hits := 0
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			hits++
		}
	}
	return hits
}

func tokenSet(lower string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	}) {
		set[tok] = struct{}{}
	}
	return set
}

// skillMentioned matches multi-word skills as phrases and single words as tokens,
// tolerating a plural "s".
func skillMentioned(skill, lower string, tokens map[string]struct{}) bool {
	if strings.ContainsAny(skill, " -/.") {
		return strings.Contains(lower, skill)
	}
	if _, ok := tokens[skill]; ok {
		return true
	}
	_, ok := tokens[skill+"s"]
	return ok
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
