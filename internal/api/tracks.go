package api

import (
	"context"
	"net/http"
	"strconv"
)

// Tracks returns every track with modules, lessons and the user's progress.
func (c *Client) Tracks(ctx context.Context) ([]Track, error) {
	return call[[]Track](ctx, c, "/tracks/", RequestOptions{})
}

// TrackSummary returns per-track progress.
func (c *Client) TrackSummary(ctx context.Context) ([]TrackSummary, error) {
	return call[[]TrackSummary](ctx, c, "/tracks/summary", RequestOptions{})
}

// UpdateLessonCompletion marks a lesson complete or incomplete and reports
// the backend's success flag.
func (c *Client) UpdateLessonCompletion(ctx context.Context, lessonID int, completed bool) (bool, error) {
	out, err := call[struct {
		Success bool `json:"success"`
	}](ctx, c, "/tracks/lessons/"+strconv.Itoa(lessonID), RequestOptions{
		Method: http.MethodPatch,
		Body:   JSON(map[string]bool{"completed": completed}),
	})
	return out.Success, err
}
