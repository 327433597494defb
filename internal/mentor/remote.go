package mentor

import (
	"context"

	"github.com/qpath/qpath/internal/api"
)

// RemoteBackend is the part of the Session Client the remote advisor uses.
type RemoteBackend interface {
	MentorGuidance(ctx context.Context, in api.GuidanceRequest) (*api.Guidance, error)
	MentorQuickTips(ctx context.Context, careerArea string) (*api.QuickTips, error)
	MentorRecommendations(ctx context.Context, in api.RecommendationRequest) (*api.Recommendations, error)
	MentorLearningPath(ctx context.Context, in api.LearningPathRequest) (*api.LearningPath, error)
	MentorHealth(ctx context.Context) (*api.MentorHealth, error)
}

// Remote asks the backend.
type Remote struct {
	backend RemoteBackend
}

// NewRemote creates a Remote advisor.
func NewRemote(backend RemoteBackend) *Remote {
	return &Remote{backend: backend}
}

func (r *Remote) Guidance(ctx context.Context, in api.GuidanceRequest) (*api.Guidance, error) {
	return r.backend.MentorGuidance(ctx, in)
}

func (r *Remote) QuickTips(ctx context.Context, careerArea string) (*api.QuickTips, error) {
	return r.backend.MentorQuickTips(ctx, careerArea)
}

func (r *Remote) Recommendations(ctx context.Context, in api.RecommendationRequest) (*api.Recommendations, error) {
	return r.backend.MentorRecommendations(ctx, in)
}

func (r *Remote) LearningPath(ctx context.Context, in api.LearningPathRequest) (*api.LearningPath, error) {
	return r.backend.MentorLearningPath(ctx, in)
}

func (r *Remote) Health(ctx context.Context) (*api.MentorHealth, error) {
	return r.backend.MentorHealth(ctx)
}

func (r *Remote) Source() string { return "remote" }
