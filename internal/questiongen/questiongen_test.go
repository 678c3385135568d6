package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"interview-coach-service/internal/domain"
	"interview-coach-service/internal/llm"
)

func TestBankGeneratorPrefersDifficulty(t *testing.T) {
	gen := NewBankGenerator(NewStaticSource(BuiltinQuestions()))

	qs, err := gen.Generate(context.Background(), domain.QuestionRequest{
		Role:            "Backend Engineer",
		ExperienceLevel: "senior",
		Type:            domain.QuestionTechnical,
		Count:           2,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	if qs[0].Difficulty != domain.DifficultyHard {
		t.Fatalf("expected hard question first for a senior, got %s", qs[0].Difficulty)
	}
	for _, q := range qs {
		if q.Type != domain.QuestionTechnical {
			t.Fatalf("unexpected type %s", q.Type)
		}
	}
}

func TestBankGeneratorRunsShort(t *testing.T) {
	gen := NewBankGenerator(NewStaticSource(BuiltinQuestions()))
	qs, err := gen.Generate(context.Background(), domain.QuestionRequest{Type: domain.QuestionCoding, Count: 10})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(qs) != 3 {
		t.Fatalf("expected the 3 bank coding questions, got %d", len(qs))
	}
}

func TestBankGeneratorStableOrder(t *testing.T) {
	gen := NewBankGenerator(NewStaticSource(BuiltinQuestions()))
	req := domain.QuestionRequest{Role: "SRE", Type: domain.QuestionSituational, Count: 3}
	a, _ := gen.Generate(context.Background(), req)
	b, _ := gen.Generate(context.Background(), req)
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("expected stable order, got %s vs %s at %d", a[i].ID, b[i].ID, i)
		}
	}
}

func TestLLMGenerator(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"questions":[
		{"text":"Explain how garbage collection works in Go.","difficulty":"medium","skills_tested":["gc","memory"],"expected_outline":"Tri-color mark and sweep."},
		{"text":"What is a goroutine leak and how do you find one?","difficulty":"hard","skills_tested":["goroutines"],"expected_outline":"Blocked goroutines, pprof."}
	]}`)})
	gen := NewLLMGenerator(mock, DefaultConfig())

	qs, err := gen.Generate(context.Background(), domain.QuestionRequest{Role: "Go developer", Type: domain.QuestionTechnical, Count: 2})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(qs) != 2 || qs[0].ID == "" || qs[1].Type != domain.QuestionTechnical {
		t.Fatalf("unexpected questions %+v", qs)
	}
	if mock.Calls[0].Schema != QuestionSchema {
		t.Fatalf("expected question schema on request")
	}
}

func TestFallbackGeneratorPadsFromBank(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"questions":[
		{"text":"Tell me about your proudest project.","difficulty":"easy","skills_tested":[],"expected_outline":""}
	]}`)})
	gen := NewFallbackGenerator(NewLLMGenerator(mock, DefaultConfig()), NewBankGenerator(NewStaticSource(BuiltinQuestions())))

	qs, err := gen.Generate(context.Background(), domain.QuestionRequest{Type: domain.QuestionBehavioral, Count: 3})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(qs) != 3 {
		t.Fatalf("expected padding to 3 questions, got %d", len(qs))
	}
	if qs[0].Text != "Tell me about your proudest project." {
		t.Fatalf("expected model question first, got %q", qs[0].Text)
	}
}

func TestFallbackGeneratorPrimaryDown(t *testing.T) {
	gen := NewFallbackGenerator(NewLLMGenerator(llm.NewMockProvider(), DefaultConfig()), NewBankGenerator(NewStaticSource(BuiltinQuestions())))
	qs, err := gen.Generate(context.Background(), domain.QuestionRequest{Type: domain.QuestionSystemDesign, Count: 2})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 bank questions, got %d", len(qs))
	}
}

type failingSource struct{}

func (failingSource) LoadQuestions(context.Context, domain.QuestionType) ([]domain.QuestionDescriptor, error) {
	return nil, errors.New("db down")
}

func TestBankGeneratorSourceError(t *testing.T) {
	_, err := NewBankGenerator(failingSource{}).Generate(context.Background(), domain.QuestionRequest{Type: domain.QuestionCoding, Count: 1})
	if err == nil {
		t.Fatalf("expected source error")
	}
}
