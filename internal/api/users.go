package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ListUsers returns a page of users.
func (c *Client) ListUsers(ctx context.Context, skip, limit int) ([]User, error) {
	return call[[]User](ctx, c, "/users/", RequestOptions{
		Query: url.Values{
			"skip":  {strconv.Itoa(skip)},
			"limit": {strconv.Itoa(limit)},
		},
	})
}

// User fetches a single user by ID.
func (c *Client) User(ctx context.Context, id int) (*User, error) {
	u, err := call[User](ctx, c, "/users/"+strconv.Itoa(id), RequestOptions{})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile changes the current user's account fields.
func (c *Client) UpdateProfile(ctx context.Context, in UserUpdate) (*User, error) {
	u, err := call[User](ctx, c, "/users/me", RequestOptions{
		Method: http.MethodPut,
		Body:   JSON(in),
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Health checks backend liveness. It lives at the server root, outside the
// versioned API prefix.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	h, err := call[Health](ctx, c, c.serverRoot()+"/health", RequestOptions{Anonymous: true})
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// ServerInfo fetches the backend root document, including its version.
func (c *Client) ServerInfo(ctx context.Context) (*ServerInfo, error) {
	info, err := call[ServerInfo](ctx, c, c.serverRoot()+"/", RequestOptions{Anonymous: true})
	if err != nil {
		return nil, err
	}
	return &info, nil
}
