package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// Reviews fetches up to limit cached clinic reviews. Failures here are
// non-critical; callers keep whatever they last loaded.
func (c *Client) Reviews(ctx context.Context, limit int) ([]Review, error) {
	path := "/reviews"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	data, err := c.call(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	var wrapped struct {
		Reviews []Review `json:"reviews"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Reviews != nil {
		return wrapped.Reviews, nil
	}
	var list []Review
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("backend: decode reviews: %w", err)
	}
	return list, nil
}

// PlaceDetails fetches the clinic's public listing summary.
func (c *Client) PlaceDetails(ctx context.Context) (*PlaceDetails, error) {
	data, err := c.call(ctx, http.MethodGet, "/reviews/place-details", "", nil)
	if err != nil {
		return nil, err
	}
	var details PlaceDetails
	if err := json.Unmarshal(data, &details); err != nil {
		return nil, fmt.Errorf("backend: decode place details: %w", err)
	}
	return &details, nil
}

// RefreshReviews asks the backend to refetch its review cache.
func (c *Client) RefreshReviews(ctx context.Context) error {
	_, err := c.call(ctx, http.MethodPost, "/reviews/refresh", "", nil)
	return err
}
