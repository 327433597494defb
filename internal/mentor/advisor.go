// Package mentor answers Q-Mentor career questions, either through the
// backend's /qmentor endpoints or a locally configured language model.
package mentor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/qpath/qpath/internal/api"
	"github.com/qpath/qpath/internal/config"
	"github.com/qpath/qpath/internal/llm"
	"github.com/qpath/qpath/internal/store"
)

// ServiceName is reported by Health.
const ServiceName = "Q-Mentor AI"

// Statuses carried by mentor replies.
const (
	StatusSuccess     = "success"
	StatusError       = "error"
	StatusOperational = "operational"
	StatusLimited     = "limited"
)

// Advisor answers Q-Mentor questions.
type Advisor interface {
	Guidance(ctx context.Context, in api.GuidanceRequest) (*api.Guidance, error)
	QuickTips(ctx context.Context, careerArea string) (*api.QuickTips, error)
	Recommendations(ctx context.Context, in api.RecommendationRequest) (*api.Recommendations, error)
	LearningPath(ctx context.Context, in api.LearningPathRequest) (*api.LearningPath, error)
	Health(ctx context.Context) (*api.MentorHealth, error)

	// Source names where answers come from: "remote" or a model ID.
	Source() string
}

// ErrUnavailable is returned when no advisor can serve a mode.
var ErrUnavailable = errors.New("Q-Mentor indisponível")

// New assembles the advisor for cfg.Mode. Remote answers go through
// client; local answers through provider, which may be nil when no model
// is configured. Every call is journaled when journal is non-nil.
func New(cfg config.MentorConfig, client *api.Client, provider llm.Provider, journal store.MentorEventRepo, logger *slog.Logger) (Advisor, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var remote, local Advisor
	if client != nil {
		remote = NewRemote(client)
	}
	if provider != nil {
		local = NewLocal(provider)
	}
	if journal != nil {
		if remote != nil {
			remote = WithJournal(remote, journal, logger)
		}
		if local != nil {
			local = WithJournal(local, journal, logger)
		}
	}

	switch cfg.Mode {
	case "remote":
		if remote == nil {
			return nil, fmt.Errorf("remote mentor: %w", ErrUnavailable)
		}
		return remote, nil
	case "local":
		if local == nil {
			return nil, fmt.Errorf("local mentor: no provider configured: %w", ErrUnavailable)
		}
		return local, nil
	case "auto", "":
		switch {
		case remote != nil && local != nil:
			return WithFallback(remote, local, logger), nil
		case remote != nil:
			return remote, nil
		case local != nil:
			return local, nil
		}
		return nil, ErrUnavailable
	default:
		return nil, fmt.Errorf("unknown mentor mode %q", cfg.Mode)
	}
}
