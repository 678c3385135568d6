package llm

import (
	"context"
	"log/slog"
	"time"

	"interview-coach-service/internal/metrics"
)

type contextKey string

const purposeKey contextKey = "llm_purpose"

// WithPurpose labels the context so requests can be attributed in logs and metrics.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label, "unknown" if unset.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

type observedProvider struct {
	inner  Provider
	logger *slog.Logger
}

// WithObservability logs and meters every call to p.
func WithObservability(p Provider, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &observedProvider{inner: p, logger: logger.With(slog.String("component", "llm"))}
}

func (o *observedProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := o.inner.Generate(ctx, req)

	elapsed := time.Since(start)
	metrics.LLMLatency.WithLabelValues(purpose).Observe(elapsed.Seconds())
	metrics.LLMRequests.WithLabelValues(purpose, metrics.Outcome(err)).Inc()

	attrs := []any{
		slog.String("purpose", purpose),
		slog.String("model", o.inner.ModelID()),
		slog.Duration("latency", elapsed),
	}
	if err != nil {
		o.logger.Warn("llm request failed", append(attrs, slog.String("error", err.Error()))...)
		return nil, err
	}
	o.logger.Debug("llm request", append(attrs,
		slog.Int("input_tokens", resp.Usage.InputTokens),
		slog.Int("output_tokens", resp.Usage.OutputTokens))...)
	return resp, nil
}

func (o *observedProvider) ModelID() string {
	return o.inner.ModelID()
}
