package backend

import (
	"context"
	"net/http"
)

// GetUser fetches a user by ID.
func (c *Client) GetUser(ctx context.Context, token, userID string) (*User, error) {
	data, err := c.call(ctx, http.MethodGet, "/users/"+userID, token, nil)
	if err != nil {
		return nil, err
	}
	return decodeUser(data)
}

// UpdateUser applies a partial profile update and returns the fresh record.
func (c *Client) UpdateUser(ctx context.Context, token, userID string, fields map[string]any) (*User, error) {
	data, err := c.call(ctx, http.MethodPut, "/users/"+userID, token, fields)
	if err != nil {
		return nil, err
	}
	return decodeUser(data)
}
