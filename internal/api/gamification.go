package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// GamificationProfile returns the current user's XP and streak counters.
func (c *Client) GamificationProfile(ctx context.Context) (*GamificationProfile, error) {
	p, err := call[GamificationProfile](ctx, c, "/gamification/profile", RequestOptions{})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ProfileDetails returns the aggregated profile page payload.
func (c *Client) ProfileDetails(ctx context.Context) (*ProfileDetails, error) {
	d, err := call[ProfileDetails](ctx, c, "/gamification/profile/details", RequestOptions{})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Dashboard returns tasks, weekly progress and the track summary.
func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	d, err := call[Dashboard](ctx, c, "/gamification/dashboard", RequestOptions{})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ToggleTask sets a task's completion flag.
func (c *Client) ToggleTask(ctx context.Context, id int, completed bool) (*Task, error) {
	t, err := call[Task](ctx, c, "/gamification/tasks/"+strconv.Itoa(id), RequestOptions{
		Method: http.MethodPatch,
		Body:   JSON(map[string]bool{"completed": completed}),
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SyncTasks replaces the user's task list with tasks.
func (c *Client) SyncTasks(ctx context.Context, tasks []TaskPayload) ([]Task, error) {
	if tasks == nil {
		tasks = []TaskPayload{}
	}
	return call[[]Task](ctx, c, "/gamification/tasks", RequestOptions{
		Method: http.MethodPut,
		Body:   JSON(tasks),
	})
}

// LogPomodoroSession records a finished focus block.
func (c *Client) LogPomodoroSession(ctx context.Context, minutes int) (*GamificationProfile, error) {
	p, err := call[GamificationProfile](ctx, c, "/gamification/pomodoro-session", RequestOptions{
		Method: http.MethodPost,
		Query:  url.Values{"duration_minutes": {strconv.Itoa(minutes)}},
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// AddXP awards XP for an activity.
func (c *Client) AddXP(ctx context.Context, activity ActivityType, amount int, description string) (*GamificationProfile, error) {
	q := url.Values{
		"xp_amount":     {strconv.Itoa(amount)},
		"activity_type": {string(activity)},
	}
	if description != "" {
		q.Set("description", description)
	}
	p, err := call[GamificationProfile](ctx, c, "/gamification/add-xp", RequestOptions{
		Method: http.MethodPost,
		Query:  q,
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CompleteTrilha records a completed track.
func (c *Client) CompleteTrilha(ctx context.Context, name string, xp int) (*GamificationProfile, error) {
	q := url.Values{"trilha_name": {name}}
	if xp > 0 {
		q.Set("xp_earned", strconv.Itoa(xp))
	}
	p, err := call[GamificationProfile](ctx, c, "/gamification/complete-trilha", RequestOptions{
		Method: http.MethodPost,
		Query:  q,
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Rewards lists the user's rewards.
func (c *Client) Rewards(ctx context.Context) ([]Reward, error) {
	return call[[]Reward](ctx, c, "/gamification/rewards", RequestOptions{})
}

// CreateReward adds a reward.
func (c *Client) CreateReward(ctx context.Context, condition, reward string) (*Reward, error) {
	r, err := call[Reward](ctx, c, "/gamification/rewards", RequestOptions{
		Method: http.MethodPost,
		Body:   JSON(map[string]string{"condition": condition, "reward": reward}),
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateReward changes a reward.
func (c *Client) UpdateReward(ctx context.Context, id int, in RewardUpdate) (*Reward, error) {
	r, err := call[Reward](ctx, c, "/gamification/rewards/"+strconv.Itoa(id), RequestOptions{
		Method: http.MethodPatch,
		Body:   JSON(in),
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ActivityLogs returns a page of the user's XP history.
func (c *Client) ActivityLogs(ctx context.Context, skip, limit int) ([]ActivityLog, error) {
	return call[[]ActivityLog](ctx, c, "/gamification/activity-logs", RequestOptions{
		Query: url.Values{
			"skip":  {strconv.Itoa(skip)},
			"limit": {strconv.Itoa(limit)},
		},
	})
}

// Leaderboard returns the top users by XP.
func (c *Client) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	return call[[]LeaderboardEntry](ctx, c, "/gamification/leaderboard", RequestOptions{
		Query: url.Values{"limit": {strconv.Itoa(limit)}},
	})
}
