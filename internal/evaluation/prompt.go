package evaluation

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"interview-coach-service/internal/domain"
	"interview-coach-service/internal/llm"
)

const evaluationSystemPrompt = `You are an experienced technical interviewer grading a candidate's answer.

Score every criterion from 0 to 10 where 0 means absent and 10 means exemplary:
- technical_accuracy: correctness of facts and terminology
- completeness: coverage of what the question asks and the expected outline
- clarity: how easy the answer is to follow
- communication: overall delivery for an interview setting
- problem_solving: quality of the approach to the problem
- structure: logical organisation (STAR for behavioral answers)
- depth: detail, trade-offs and concrete examples
- critical_thinking: reasoning, alternatives considered, risks identified
- leadership: ownership and influence over others (score 0 if not relevant)
- scalability: reasoning about growth and limits (score 0 if not relevant)

Then give feedback items. Each item has a kind (strength, weakness, suggestion),
a priority (high, medium, low), the criterion it relates to (or an empty string)
and one sentence of text addressed to the candidate.

Rules:
- Judge only the answer given; do not reward length alone.
- Give at least one strength or suggestion and at least one weakness or suggestion.
- List the tested skills the answer demonstrates in matched_skills.
- Respond with JSON matching the schema, nothing else.`

var evaluationTmpl = template.Must(template.New("evaluation").Parse(
	`Question type: {{.Type}}
{{- if .Role}}
Target role: {{.Role}}
{{- end}}
Question: {{.Question}}
{{- if .Outline}}
Expected outline: {{.Outline}}
{{- end}}
{{- if .Skills}}
Skills tested: {{.Skills}}
{{- end}}
Weighted criteria for this question type: {{.Weights}}

Candidate answer:
"""
{{.Answer}}
"""`))

func buildEvaluationMessage(req Request, qt domain.QuestionType) (string, error) {
	weights := make([]string, 0, 4)
	for _, w := range WeightsFor(qt) {
		weights = append(weights, fmt.Sprintf("%s %.0f%%", w.Criterion, w.Weight*100))
	}
	var buf bytes.Buffer
	err := evaluationTmpl.Execute(&buf, map[string]string{
		"Type":     string(qt),
		"Role":     req.Role,
		"Question": req.QuestionText,
		"Outline":  req.ExpectedOutline,
		"Skills":   strings.Join(req.SkillsTested, ", "),
		"Weights":  strings.Join(weights, ", "),
		"Answer":   req.Answer,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// evaluationOutput is the raw model response.
type evaluationOutput struct {
	Scores        map[string]float64 `json:"scores"`
	Feedback      []feedbackOutput   `json:"feedback"`
	MatchedSkills []string           `json:"matched_skills"`
}

type feedbackOutput struct {
	Kind      string `json:"kind"`
	Priority  string `json:"priority"`
	Criterion string `json:"criterion"`
	Text      string `json:"text"`
}

// schemaFor builds the response schema of one question type. All properties are
// required so strict structured-output modes accept it.
func schemaFor(qt domain.QuestionType) *llm.Schema {
	criteria := append(append([]domain.Criterion{}, domain.CoreCriteria...),
		domain.CriterionLeadership, domain.CriterionScalability)

	props := make(map[string]any, len(criteria))
	required := make([]any, 0, len(criteria))
	for _, c := range criteria {
		props[string(c)] = map[string]any{"type": "number", "minimum": 0, "maximum": 10}
		required = append(required, string(c))
	}

	return &llm.Schema{
		Name:        "answer-evaluation-" + strings.ReplaceAll(string(qt), "_", "-"),
		Description: "Per-criterion scores and feedback for a " + string(qt) + " interview answer",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"scores": map[string]any{
					"type":                 "object",
					"properties":           props,
					"required":             required,
					"additionalProperties": false,
				},
				"feedback": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"kind":      map[string]any{"type": "string", "enum": []any{"strength", "weakness", "suggestion"}},
							"priority":  map[string]any{"type": "string", "enum": []any{"high", "medium", "low"}},
							"criterion": map[string]any{"type": "string"},
							"text":      map[string]any{"type": "string", "minLength": 1},
						},
						"required":             []any{"kind", "priority", "criterion", "text"},
						"additionalProperties": false,
					},
				},
				"matched_skills": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required":             []any{"scores", "feedback", "matched_skills"},
			"additionalProperties": false,
		},
	}
}
