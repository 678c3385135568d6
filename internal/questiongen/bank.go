// Package questiongen provides question-generation adapters: a language-model
// generator and a question bank used when no model is configured.
package questiongen

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"interview-coach-service/internal/domain"
)

// Source loads the bank questions of one type.
type Source interface {
	LoadQuestions(ctx context.Context, qt domain.QuestionType) ([]domain.QuestionDescriptor, error)
}

// BankGenerator serves questions from a Source. Questions matching the
// requested difficulty come first; the order within a tier is stable per role
// so repeated sessions of the same candidate see the same rotation.
type BankGenerator struct {
	source Source
}

func NewBankGenerator(source Source) *BankGenerator {
	return &BankGenerator{source: source}
}

// Generate returns at most req.Count questions, fewer when the bank runs out.
func (g *BankGenerator) Generate(ctx context.Context, req domain.QuestionRequest) ([]domain.QuestionDescriptor, error) {
	if req.Count <= 0 {
		return nil, nil
	}
	all, err := g.source.LoadQuestions(ctx, req.Type)
	if err != nil {
		return nil, fmt.Errorf("load %s questions: %w", req.Type, err)
	}

	want := DifficultyFor(req.ExperienceLevel)
	seed := strings.ToLower(req.Role)
	ranked := append([]domain.QuestionDescriptor(nil), all...)
	sort.SliceStable(ranked, func(i, j int) bool {
		mi, mj := ranked[i].Difficulty == want, ranked[j].Difficulty == want
		if mi != mj {
			return mi
		}
		return rotation(seed, ranked[i]) < rotation(seed, ranked[j])
	})
	if len(ranked) > req.Count {
		ranked = ranked[:req.Count]
	}
	for i := range ranked {
		ranked[i].SkillsTested = append([]string(nil), ranked[i].SkillsTested...)
	}
	return ranked, nil
}

func rotation(seed string, q domain.QuestionDescriptor) uint32 {
	h := fnv.New32a()
	h.Write([]byte(seed))
	h.Write([]byte(q.ID))
	h.Write([]byte(q.Text))
	return h.Sum32()
}

// DifficultyFor maps an experience level to the preferred question difficulty.
func DifficultyFor(level string) domain.Difficulty {
	l := strings.ToLower(level)
	switch {
	case strings.Contains(l, "junior"), strings.Contains(l, "entry"), strings.Contains(l, "intern"), strings.Contains(l, "graduate"):
		return domain.DifficultyEasy
	case strings.Contains(l, "senior"), strings.Contains(l, "lead"), strings.Contains(l, "staff"), strings.Contains(l, "principal"):
		return domain.DifficultyHard
	}
	return domain.DifficultyMedium
}

// StaticSource is a Source backed by an in-memory list (useful for tests/demos).
type StaticSource struct {
	byType map[domain.QuestionType][]domain.QuestionDescriptor
}

func NewStaticSource(questions []domain.QuestionDescriptor) *StaticSource {
	s := &StaticSource{byType: make(map[domain.QuestionType][]domain.QuestionDescriptor)}
	for _, q := range questions {
		s.byType[q.Type] = append(s.byType[q.Type], q)
	}
	return s
}

func (s *StaticSource) LoadQuestions(_ context.Context, qt domain.QuestionType) ([]domain.QuestionDescriptor, error) {
	return s.byType[qt], nil
}
