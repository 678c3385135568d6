package questiongen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/google/uuid"

	"interview-coach-service/internal/domain"
	"interview-coach-service/internal/llm"
)

// Config tunes the LLM generator.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{MaxTokens: 2048, Temperature: 0.7}
}

// LLMGenerator asks the language model for interview questions.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

func NewLLMGenerator(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

const generationSystemPrompt = `You are an experienced interviewer preparing questions for a practice interview.
Write questions that are realistic for the role and experience level, answerable verbally
in two to five minutes, and distinct from each other. For every question list the skills it
tests and a short outline of what a strong answer covers. Respond with JSON only.`

var generationTmpl = template.Must(template.New("generation").Parse(
	`Write {{.Count}} {{.Type}} interview questions.
Role: {{.Role}}
Experience level: {{.Level}}
Preferred difficulty: {{.Difficulty}}
{{- if .Skills}}
Candidate skills: {{.Skills}}
{{- end}}
{{- if .Resume}}
Resume summary: {{.Resume}}
{{- end}}`))

// QuestionSchema is the response schema of a generation request.
var QuestionSchema = &llm.Schema{
	Name:        "interview-questions",
	Description: "A list of generated interview questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text":             map[string]any{"type": "string", "minLength": 10},
						"difficulty":       map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
						"skills_tested":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"expected_outline": map[string]any{"type": "string"},
					},
					"required":             []any{"text", "difficulty", "skills_tested", "expected_outline"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

type generationOutput struct {
	Questions []struct {
		Text            string   `json:"text"`
		Difficulty      string   `json:"difficulty"`
		SkillsTested    []string `json:"skills_tested"`
		ExpectedOutline string   `json:"expected_outline"`
	} `json:"questions"`
}

// Generate returns the questions the model produced; it may return fewer than requested.
func (g *LLMGenerator) Generate(ctx context.Context, req domain.QuestionRequest) ([]domain.QuestionDescriptor, error) {
	ctx = llm.WithPurpose(ctx, "question-gen")

	var buf bytes.Buffer
	err := generationTmpl.Execute(&buf, map[string]any{
		"Count":      req.Count,
		"Type":       strings.ReplaceAll(string(req.Type), "_", " "),
		"Role":       req.Role,
		"Level":      req.ExperienceLevel,
		"Difficulty": DifficultyFor(req.ExperienceLevel),
		"Skills":     strings.Join(req.Candidate.Skills, ", "),
		"Resume":     req.Candidate.ResumeSummary,
	})
	if err != nil {
		return nil, fmt.Errorf("build generation prompt: %w", err)
	}

	resp, err := g.provider.Generate(ctx, llm.UserPrompt(generationSystemPrompt, buf.String(), QuestionSchema, g.config.MaxTokens, g.config.Temperature))
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw generationOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	out := make([]domain.QuestionDescriptor, 0, len(raw.Questions))
	for _, q := range raw.Questions {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			continue
		}
		out = append(out, domain.QuestionDescriptor{
			ID:              uuid.NewString(),
			Text:            text,
			Type:            req.Type,
			Difficulty:      domain.Difficulty(q.Difficulty),
			SkillsTested:    q.SkillsTested,
			ExpectedOutline: q.ExpectedOutline,
		})
	}
	return out, nil
}
