package mentor

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/qpath/qpath/internal/api"
)

// Fallback asks primary and turns to secondary when primary is
// unreachable, answers 5xx, or replies with status "error".
type Fallback struct {
	primary   Advisor
	secondary Advisor
	log       *slog.Logger
}

// WithFallback creates a Fallback advisor.
func WithFallback(primary, secondary Advisor, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fallback{primary: primary, secondary: secondary, log: logger.With("component", "mentor")}
}

func (f *Fallback) Guidance(ctx context.Context, in api.GuidanceRequest) (*api.Guidance, error) {
	return fallback(ctx, f, "guidance",
		func(a Advisor) (*api.Guidance, error) { return a.Guidance(ctx, in) },
		func(g *api.Guidance) bool { return g.Status == StatusError })
}

func (f *Fallback) QuickTips(ctx context.Context, careerArea string) (*api.QuickTips, error) {
	return fallback(ctx, f, "tips",
		func(a Advisor) (*api.QuickTips, error) { return a.QuickTips(ctx, careerArea) },
		func(t *api.QuickTips) bool { return t.Status == StatusError })
}

func (f *Fallback) Recommendations(ctx context.Context, in api.RecommendationRequest) (*api.Recommendations, error) {
	return fallback(ctx, f, "recommendations",
		func(a Advisor) (*api.Recommendations, error) { return a.Recommendations(ctx, in) },
		func(r *api.Recommendations) bool { return r.Status == StatusError })
}

func (f *Fallback) LearningPath(ctx context.Context, in api.LearningPathRequest) (*api.LearningPath, error) {
	return fallback(ctx, f, "learning-path",
		func(a Advisor) (*api.LearningPath, error) { return a.LearningPath(ctx, in) },
		func(p *api.LearningPath) bool { return p.Status == StatusError })
}

// Health counts a primary that is up but not available as failed.
func (f *Fallback) Health(ctx context.Context) (*api.MentorHealth, error) {
	return fallback(ctx, f, "health",
		func(a Advisor) (*api.MentorHealth, error) { return a.Health(ctx) },
		func(h *api.MentorHealth) bool { return !h.Available })
}

func (f *Fallback) Source() string {
	return f.primary.Source() + "+" + f.secondary.Source()
}

func fallback[T any](ctx context.Context, f *Fallback, kind string, call func(Advisor) (*T, error), failed func(*T) bool) (*T, error) {
	out, err := call(f.primary)
	switch {
	case err == nil && !failed(out):
		return out, nil
	case err != nil && !recoverable(err):
		return nil, err
	case ctx.Err() != nil:
		return nil, ctx.Err()
	}

	f.log.Info("mentor falling back",
		"kind", kind, "primary", f.primary.Source(), "secondary", f.secondary.Source(), "error", err)
	alt, altErr := call(f.secondary)
	if altErr != nil {
		if err != nil {
			return nil, errors.Join(err, altErr)
		}
		// The primary's error-status reply is still an answer.
		return out, nil
	}
	return alt, nil
}

// recoverable reports whether err means the primary is unavailable rather
// than that the request itself was wrong.
func recoverable(err error) bool {
	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError || apiErr.StatusCode == http.StatusNotFound
	}
	return false
}
