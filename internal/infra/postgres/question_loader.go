package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"interview-coach-service/internal/domain"
)

// QuestionLoader loads question-bank JSONB from Postgres.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context, qt domain.QuestionType) ([]domain.QuestionDescriptor, error) {
	rows, err := l.pool.Query(ctx, `SELECT data FROM question_bank WHERE question_type=$1 ORDER BY id`, string(qt))
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var out []domain.QuestionDescriptor
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		var q domain.QuestionDescriptor
		if err := json.Unmarshal(raw, &q); err != nil {
			return nil, fmt.Errorf("unmarshal question: %w", err)
		}
		if q.Type == "" {
			q.Type = qt
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return out, nil
}

// SeedQuestions upserts questions into the bank.
func (l *QuestionLoader) SeedQuestions(ctx context.Context, questions []domain.QuestionDescriptor) error {
	for _, q := range questions {
		raw, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("marshal question %s: %w", q.ID, err)
		}
		_, err = l.pool.Exec(ctx, `
INSERT INTO question_bank (id, question_type, difficulty, data)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET question_type = EXCLUDED.question_type, difficulty = EXCLUDED.difficulty, data = EXCLUDED.data`,
			q.ID, string(q.Type), string(q.Difficulty), raw)
		if err != nil {
			return fmt.Errorf("seed question %s: %w", q.ID, err)
		}
	}
	return nil
}
