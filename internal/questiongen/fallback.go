package questiongen

import (
	"context"
	"log/slog"

	"interview-coach-service/internal/domain"
)

// Generator is the question-generation collaborator contract.
type Generator interface {
	Generate(ctx context.Context, req domain.QuestionRequest) ([]domain.QuestionDescriptor, error)
}

// FallbackGenerator tries the primary generator and pads any shortfall from the
// secondary one. A primary failure is logged and served entirely by the secondary.
type FallbackGenerator struct {
	primary   Generator
	secondary Generator
	logger    *slog.Logger
}

func NewFallbackGenerator(primary, secondary Generator) *FallbackGenerator {
	return &FallbackGenerator{
		primary:   primary,
		secondary: secondary,
		logger:    slog.Default().With(slog.String("component", "questiongen")),
	}
}

func (g *FallbackGenerator) Generate(ctx context.Context, req domain.QuestionRequest) ([]domain.QuestionDescriptor, error) {
	out, err := g.primary.Generate(ctx, req)
	if err != nil {
		g.logger.Warn("question generation failed, using question bank",
			slog.String("question_type", string(req.Type)),
			slog.String("error", err.Error()))
		out = nil
	}
	if len(out) >= req.Count {
		return out[:req.Count], nil
	}

	pad := req
	pad.Count = req.Count - len(out)
	extra, err := g.secondary.Generate(ctx, pad)
	if err != nil {
		if len(out) > 0 {
			return out, nil
		}
		return nil, err
	}
	return append(out, extra...), nil
}
