package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"interview-coach-service/internal/domain"
	"interview-coach-service/internal/evaluation"
	"interview-coach-service/internal/llm"
)

// NewEvaluateCmd scores a single answer and prints the evaluation as JSON.
func NewEvaluateCmd(configPath *string) *cobra.Command {
	var (
		question   string
		qtype      string
		answer     string
		answerFile string
		outline    string
		role       string
		skills     []string
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score one interview answer and print the evaluation",
		Example: `  interview-coach evaluate --question "Tell me about a conflict" --type behavioral --answer "..."
  interview-coach evaluate --question "Design a rate limiter" --type system-design --answer-file answer.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			qt, err := domain.ParseQuestionType(qtype)
			if err != nil {
				return err
			}
			if answerFile != "" {
				raw, err := os.ReadFile(answerFile)
				if err != nil {
					return fmt.Errorf("read answer file: %w", err)
				}
				answer = string(raw)
			}

			provider, err := llm.NewProvider(cmd.Context(), cfg.LLMConfig(), slog.Default())
			if err != nil {
				return err
			}
			ev, err := evaluation.NewEngine(provider, cfg.EvaluationConfig()).Evaluate(cmd.Context(), evaluation.Request{
				QuestionText:    question,
				QuestionType:    qt,
				ExpectedOutline: outline,
				SkillsTested:    skills,
				Answer:          strings.TrimSpace(answer),
				Role:            role,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(ev)
		},
	}
	cmd.Flags().StringVar(&question, "question", "", "question text (required)")
	cmd.Flags().StringVar(&qtype, "type", "technical", "question type: technical, behavioral, situational, system_design, coding")
	cmd.Flags().StringVar(&answer, "answer", "", "answer text")
	cmd.Flags().StringVar(&answerFile, "answer-file", "", "read the answer from a file")
	cmd.Flags().StringVar(&outline, "outline", "", "expected answer outline")
	cmd.Flags().StringVar(&role, "role", "", "target role")
	cmd.Flags().StringSliceVar(&skills, "skills", nil, "skills the question tests, comma separated")
	_ = cmd.MarkFlagRequired("question")
	return cmd
}
