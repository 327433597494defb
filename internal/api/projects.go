package api

import (
	"context"
	"net/http"
	"strconv"
)

// Projects lists the current user's project hub submissions.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	return call[[]Project](ctx, c, "/projects/my-submissions", RequestOptions{})
}

// Project fetches one submission.
func (c *Client) Project(ctx context.Context, id int) (*Project, error) {
	p, err := call[Project](ctx, c, "/projects/submission/"+strconv.Itoa(id), RequestOptions{})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SubmitProject creates a submission.
func (c *Client) SubmitProject(ctx context.Context, in ProjectInput) (*Project, error) {
	p, err := call[Project](ctx, c, "/projects/submit", RequestOptions{
		Method: http.MethodPost,
		Body:   JSON(in),
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProject changes a submission.
func (c *Client) UpdateProject(ctx context.Context, id int, in ProjectUpdate) (*Project, error) {
	p, err := call[Project](ctx, c, "/projects/submission/"+strconv.Itoa(id), RequestOptions{
		Method: http.MethodPut,
		Body:   JSON(in),
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}
