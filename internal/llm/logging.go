package llm

import (
	"context"
	"log/slog"
	"time"
)

// LoggingProvider logs every call with its purpose, latency, token usage
// and estimated cost.
type LoggingProvider struct {
	inner Provider
	log   *slog.Logger
}

// WithLogging wraps p with call logging.
func WithLogging(p Provider, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LoggingProvider{inner: p, log: logger.With("component", "llm")}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	attrs := []any{
		"purpose", PurposeFrom(ctx),
		"model", l.inner.ModelID(),
		"latency_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		l.log.Warn("model call failed", append(attrs, "error", err)...)
		return nil, err
	}

	attrs = append(attrs,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"stop", resp.StopReason,
	)
	if c := LookupCost(resp.Model); c != nil {
		attrs = append(attrs, "cost_usd", c.Cost(resp.Usage.InputTokens, resp.Usage.OutputTokens))
	}
	l.log.Debug("model call", attrs...)
	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
