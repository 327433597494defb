package api

import (
	"context"
	"net/http"
	"net/url"
)

// GuidanceRequest asks Q-Mentor a free-form career question.
type GuidanceRequest struct {
	Query       string         `json:"query"`
	UserProfile map[string]any `json:"user_profile,omitempty"`
}

// Guidance is Q-Mentor's answer to a GuidanceRequest.
type Guidance struct {
	Response string `json:"response"`
	Status   string `json:"status"`
	Query    string `json:"query"`
}

// RecommendationRequest asks for quantum-safe technology recommendations.
type RecommendationRequest struct {
	CareerArea      string `json:"career_area"`
	ExperienceLevel string `json:"experience_level"`
}

// Recommendations is the reply to a RecommendationRequest. The
// recommendations map holds technologies, skills, courses, projects and
// roadmap, or raw_response when the model output was not JSON.
type Recommendations struct {
	Recommendations map[string]any `json:"recommendations"`
	Status          string         `json:"status"`
	CareerArea      string         `json:"career_area"`
	ExperienceLevel string         `json:"experience_level"`
}

// LearningPathRequest asks for a skill-gap analysis.
type LearningPathRequest struct {
	CurrentSkills []string `json:"current_skills"`
	TargetRole    string   `json:"target_role"`
}

// LearningPath is the reply to a LearningPathRequest.
type LearningPath struct {
	Analysis      string   `json:"analysis"`
	Status        string   `json:"status"`
	CurrentSkills []string `json:"current_skills"`
	TargetRole    string   `json:"target_role"`
}

// QuickTips are short tips for a career area.
type QuickTips struct {
	CareerArea string `json:"career_area"`
	Tips       string `json:"tips"`
	Status     string `json:"status"`
}

// MentorHealth reports whether the backend's mentor model is configured.
type MentorHealth struct {
	Service   string `json:"service"`
	Status    string `json:"status"`
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

// MentorGuidance asks Q-Mentor a question.
func (c *Client) MentorGuidance(ctx context.Context, in GuidanceRequest) (*Guidance, error) {
	g, err := call[Guidance](ctx, c, "/qmentor/guidance", RequestOptions{
		Method: http.MethodPost,
		Body:   JSON(in),
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// MentorRecommendations asks Q-Mentor for recommendations.
func (c *Client) MentorRecommendations(ctx context.Context, in RecommendationRequest) (*Recommendations, error) {
	if in.ExperienceLevel == "" {
		in.ExperienceLevel = "beginner"
	}
	r, err := call[Recommendations](ctx, c, "/qmentor/quantum-recommendations", RequestOptions{
		Method: http.MethodPost,
		Body:   JSON(in),
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// MentorLearningPath asks Q-Mentor for a learning path analysis.
func (c *Client) MentorLearningPath(ctx context.Context, in LearningPathRequest) (*LearningPath, error) {
	if in.CurrentSkills == nil {
		in.CurrentSkills = []string{}
	}
	p, err := call[LearningPath](ctx, c, "/qmentor/learning-path", RequestOptions{
		Method: http.MethodPost,
		Body:   JSON(in),
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// MentorQuickTips fetches quick tips for a career area.
func (c *Client) MentorQuickTips(ctx context.Context, careerArea string) (*QuickTips, error) {
	t, err := call[QuickTips](ctx, c, "/qmentor/quick-tips/"+url.PathEscape(careerArea), RequestOptions{})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// MentorHealth checks the backend mentor service.
func (c *Client) MentorHealth(ctx context.Context) (*MentorHealth, error) {
	h, err := call[MentorHealth](ctx, c, "/qmentor/health", RequestOptions{})
	if err != nil {
		return nil, err
	}
	return &h, nil
}
