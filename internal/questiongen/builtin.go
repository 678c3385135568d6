package questiongen

import "interview-coach-service/internal/domain"

// BuiltinQuestions is the bank shipped with the service.
func BuiltinQuestions() []domain.QuestionDescriptor {
	return []domain.QuestionDescriptor{
		{ID: "tech-http", Type: domain.QuestionTechnical, Difficulty: domain.DifficultyEasy,
			Text:            "What happens between typing a URL into a browser and the page rendering?",
			SkillsTested:    []string{"dns", "tcp", "http"},
			ExpectedOutline: "DNS resolution, TCP and TLS handshake, HTTP request and response, parsing and rendering."},
		{ID: "tech-index", Type: domain.QuestionTechnical, Difficulty: domain.DifficultyMedium,
			Text:            "How does a database index speed up queries, and what does it cost?",
			SkillsTested:    []string{"indexing", "b-tree", "writes"},
			ExpectedOutline: "B-tree lookup instead of full scan, selectivity, slower writes and extra storage, covering indexes."},
		{ID: "tech-concurrency", Type: domain.QuestionTechnical, Difficulty: domain.DifficultyHard,
			Text:            "Explain the difference between concurrency and parallelism and how you would avoid data races.",
			SkillsTested:    []string{"concurrency", "locking", "race"},
			ExpectedOutline: "Interleaving vs simultaneous execution, shared state, mutexes, channels, immutability, race detectors."},
		{ID: "beh-conflict", Type: domain.QuestionBehavioral, Difficulty: domain.DifficultyEasy,
			Text:            "Tell me about a time you disagreed with a teammate. How did you resolve it?",
			SkillsTested:    []string{"communication", "collaboration"},
			ExpectedOutline: "Situation, the disagreement, actions taken to understand and align, outcome and lesson."},
		{ID: "beh-failure", Type: domain.QuestionBehavioral, Difficulty: domain.DifficultyMedium,
			Text:            "Describe a project that did not go as planned. What did you learn?",
			SkillsTested:    []string{"ownership", "reflection"},
			ExpectedOutline: "Context, what went wrong, personal responsibility, corrective actions, lessons applied later."},
		{ID: "beh-influence", Type: domain.QuestionBehavioral, Difficulty: domain.DifficultyHard,
			Text:            "Tell me about a time you changed the direction of a team without formal authority.",
			SkillsTested:    []string{"leadership", "influence", "stakeholder"},
			ExpectedOutline: "Situation, why the change mattered, how support was built, measurable result."},
		{ID: "sit-deadline", Type: domain.QuestionSituational, Difficulty: domain.DifficultyEasy,
			Text:            "You realize you will miss a deadline by two days. What do you do?",
			SkillsTested:    []string{"prioritization", "communication"},
			ExpectedOutline: "Assess impact, inform stakeholders early, propose options such as scope cuts, follow up."},
		{ID: "sit-incident", Type: domain.QuestionSituational, Difficulty: domain.DifficultyMedium,
			Text:            "Production is down and the on-call engineer is unreachable. How do you handle it?",
			SkillsTested:    []string{"incident", "triage", "rollback"},
			ExpectedOutline: "Triage and communicate, mitigate first with rollback, find root cause, postmortem."},
		{ID: "sit-tradeoff", Type: domain.QuestionSituational, Difficulty: domain.DifficultyHard,
			Text:            "Product wants a feature next week that you believe will create serious technical debt. What would you do?",
			SkillsTested:    []string{"negotiation", "tradeoff", "debt"},
			ExpectedOutline: "Understand the business need, quantify the debt, propose alternatives, agree on a payback plan."},
		{ID: "sd-shortener", Type: domain.QuestionSystemDesign, Difficulty: domain.DifficultyEasy,
			Text:            "Design a URL shortening service.",
			SkillsTested:    []string{"hashing", "database", "cache"},
			ExpectedOutline: "Requirements and scale, id generation, storage schema, redirect path with caching, analytics."},
		{ID: "sd-feed", Type: domain.QuestionSystemDesign, Difficulty: domain.DifficultyMedium,
			Text:            "Design the news feed of a social network.",
			SkillsTested:    []string{"fan-out", "cache", "ranking"},
			ExpectedOutline: "Write vs read fan-out, celebrity problem, feed cache, ranking, pagination."},
		{ID: "sd-ratelimit", Type: domain.QuestionSystemDesign, Difficulty: domain.DifficultyHard,
			Text:            "Design a distributed rate limiter for a public API.",
			SkillsTested:    []string{"token bucket", "consistency", "redis"},
			ExpectedOutline: "Algorithms, per-key counters in a shared store, consistency vs latency, failure modes."},
		{ID: "code-reverse", Type: domain.QuestionCoding, Difficulty: domain.DifficultyEasy,
			Text:            "Reverse a singly linked list. Walk me through your approach.",
			SkillsTested:    []string{"pointer", "iteration"},
			ExpectedOutline: "Iterate with prev/current/next pointers, O(n) time, O(1) space, empty and single-node cases."},
		{ID: "code-twosum", Type: domain.QuestionCoding, Difficulty: domain.DifficultyMedium,
			Text:            "Given an array and a target, find two numbers that add up to the target.",
			SkillsTested:    []string{"hash", "complexity"},
			ExpectedOutline: "Brute force O(n^2), hash map of complements for O(n), duplicates and no-solution cases."},
		{ID: "code-lru", Type: domain.QuestionCoding, Difficulty: domain.DifficultyHard,
			Text:            "Implement an LRU cache with O(1) get and put.",
			SkillsTested:    []string{"hash", "linked list", "complexity"},
			ExpectedOutline: "Hash map plus doubly linked list, move-to-front on access, evict tail at capacity."},
	}
}
