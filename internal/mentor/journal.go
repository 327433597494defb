package mentor

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/qpath/qpath/internal/api"
	"github.com/qpath/qpath/internal/store"
)

// Event kinds recorded in the journal.
const (
	KindGuidance        = "guidance"
	KindTips            = "tips"
	KindRecommendations = "recommendations"
	KindLearningPath    = "learning-path"
	KindHealth          = "health"
)

// Journal records every call of the wrapped advisor as a mentor event.
// Recording failures are logged and never fail the call.
type Journal struct {
	inner Advisor
	repo  store.MentorEventRepo
	log   *slog.Logger
	now   func() time.Time
}

// WithJournal wraps a with journaling into repo.
func WithJournal(a Advisor, repo store.MentorEventRepo, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Journal{inner: a, repo: repo, log: logger.With("component", "mentor"), now: time.Now}
}

func (j *Journal) Guidance(ctx context.Context, in api.GuidanceRequest) (*api.Guidance, error) {
	start := j.now()
	out, err := j.inner.Guidance(ctx, in)
	j.record(ctx, KindGuidance, in.Query, start, err, func() (string, string) { return out.Response, out.Status })
	return out, err
}

func (j *Journal) QuickTips(ctx context.Context, careerArea string) (*api.QuickTips, error) {
	start := j.now()
	out, err := j.inner.QuickTips(ctx, careerArea)
	j.record(ctx, KindTips, careerArea, start, err, func() (string, string) { return out.Tips, out.Status })
	return out, err
}

func (j *Journal) Recommendations(ctx context.Context, in api.RecommendationRequest) (*api.Recommendations, error) {
	start := j.now()
	out, err := j.inner.Recommendations(ctx, in)
	prompt := in.CareerArea
	if in.ExperienceLevel != "" {
		prompt += " (" + in.ExperienceLevel + ")"
	}
	j.record(ctx, KindRecommendations, prompt, start, err, func() (string, string) {
		b, _ := json.Marshal(out.Recommendations)
		return string(b), out.Status
	})
	return out, err
}

func (j *Journal) LearningPath(ctx context.Context, in api.LearningPathRequest) (*api.LearningPath, error) {
	start := j.now()
	out, err := j.inner.LearningPath(ctx, in)
	prompt := strings.Join(in.CurrentSkills, ", ") + " → " + in.TargetRole
	j.record(ctx, KindLearningPath, prompt, start, err, func() (string, string) { return out.Analysis, out.Status })
	return out, err
}

func (j *Journal) Health(ctx context.Context) (*api.MentorHealth, error) {
	start := j.now()
	out, err := j.inner.Health(ctx)
	j.record(ctx, KindHealth, "", start, err, func() (string, string) {
		status := StatusSuccess
		if !out.Available {
			status = StatusError
		}
		return out.Message, status
	})
	return out, err
}

func (j *Journal) Source() string { return j.inner.Source() }

// record appends one event. answer is only called when err is nil.
func (j *Journal) record(ctx context.Context, kind, prompt string, start time.Time, err error, answer func() (string, string)) {
	ev := store.MentorEventData{
		Kind:      kind,
		Source:    j.inner.Source(),
		LatencyMs: j.now().Sub(start).Milliseconds(),
		Prompt:    prompt,
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	} else {
		text, status := answer()
		ev.Answer = text
		ev.Success = status != StatusError
		if !ev.Success {
			ev.ErrorMessage = text
		}
	}

	// The journal outlives a cancelled caller.
	if appendErr := j.repo.Append(context.WithoutCancel(ctx), ev); appendErr != nil {
		j.log.Warn("mentor journal append failed", "kind", kind, "error", appendErr)
	}
}
