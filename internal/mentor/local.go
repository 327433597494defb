package mentor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qpath/qpath/internal/api"
	"github.com/qpath/qpath/internal/llm"
)

const (
	guidanceMaxTokens        = 1024
	recommendationsMaxTokens = 1536
	learningPathMaxTokens    = 1536
)

// Local answers with a language model reached through provider.
type Local struct {
	provider llm.Provider
}

// NewLocal creates a Local advisor.
func NewLocal(provider llm.Provider) *Local {
	return &Local{provider: provider}
}

func (l *Local) Guidance(ctx context.Context, in api.GuidanceRequest) (*api.Guidance, error) {
	text, err := l.complete(llm.WithPurpose(ctx, "guidance"), guidancePrompt(in.Query, in.UserProfile), guidanceMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("guidance: %w", err)
	}
	return &api.Guidance{Response: text, Status: StatusSuccess, Query: in.Query}, nil
}

func (l *Local) QuickTips(ctx context.Context, careerArea string) (*api.QuickTips, error) {
	prompt := guidancePrompt(quickTipsQuery(careerArea), map[string]any{"career_area": careerArea})
	text, err := l.complete(llm.WithPurpose(ctx, "quick-tips"), prompt, guidanceMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("quick tips: %w", err)
	}
	return &api.QuickTips{CareerArea: careerArea, Tips: text, Status: StatusSuccess}, nil
}

func (l *Local) Recommendations(ctx context.Context, in api.RecommendationRequest) (*api.Recommendations, error) {
	if in.ExperienceLevel == "" {
		in.ExperienceLevel = "beginner"
	}
	text, err := l.complete(llm.WithPurpose(ctx, "recommendations"),
		recommendationsPrompt(in.CareerArea, in.ExperienceLevel), recommendationsMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}
	return &api.Recommendations{
		Recommendations: parseRecommendations(text),
		Status:          StatusSuccess,
		CareerArea:      in.CareerArea,
		ExperienceLevel: in.ExperienceLevel,
	}, nil
}

func (l *Local) LearningPath(ctx context.Context, in api.LearningPathRequest) (*api.LearningPath, error) {
	if in.CurrentSkills == nil {
		in.CurrentSkills = []string{}
	}
	text, err := l.complete(llm.WithPurpose(ctx, "learning-path"),
		learningPathPrompt(in.CurrentSkills, in.TargetRole), learningPathMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("learning path: %w", err)
	}
	return &api.LearningPath{
		Analysis:      text,
		Status:        StatusSuccess,
		CurrentSkills: in.CurrentSkills,
		TargetRole:    in.TargetRole,
	}, nil
}

// Health reports the local model as configured. It does not call it.
func (l *Local) Health(context.Context) (*api.MentorHealth, error) {
	return &api.MentorHealth{
		Service:   ServiceName,
		Status:    StatusOperational,
		Available: true,
		Message:   fmt.Sprintf("Q-Mentor local usando %s", l.provider.ModelID()),
	}, nil
}

func (l *Local) Source() string { return l.provider.ModelID() }

func (l *Local) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := l.provider.Generate(ctx, llm.UserPrompt(systemPrompt, prompt, maxTokens))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}

// parseRecommendations decodes a recommendations reply. Text that is not
// JSON of the expected shape comes back as raw_response with parsed false.
func parseRecommendations(text string) map[string]any {
	raw := llm.StripCodeFence(text)
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err == nil {
		if llm.ValidateJSON(recommendationsSchema, []byte(raw)) == nil {
			return out
		}
	}
	return map[string]any{"raw_response": text, "parsed": false}
}
