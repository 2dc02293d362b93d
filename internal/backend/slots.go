package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// SlotRequest is the payload for creating or updating a slot. Admin only.
type SlotRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Location  string `json:"location"`
}

// GenerateSlotsRequest asks the backend to bulk-create slots over a range.
type GenerateSlotsRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Location  string `json:"location,omitempty"`
}

// AvailableSlots lists open slots for a date (YYYY-MM-DD).
func (c *Client) AvailableSlots(ctx context.Context, token, date string) ([]Slot, error) {
	q := url.Values{"date": {date}}
	data, err := c.call(ctx, http.MethodGet, "/slots/available?"+q.Encode(), token, nil)
	if err != nil {
		return nil, err
	}
	return decodeSlots(data)
}

// AllSlots lists every slot without pagination; the admin dashboard pages
// through the result locally.
func (c *Client) AllSlots(ctx context.Context, token string) ([]Slot, error) {
	data, err := c.call(ctx, http.MethodGet, "/slots/all", token, nil)
	if err != nil {
		return nil, err
	}
	return decodeSlots(data)
}

// Slots lists slots with backend-side filtering.
func (c *Client) Slots(ctx context.Context, token string, params url.Values) ([]Slot, error) {
	path := "/slots"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	data, err := c.call(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	return decodeSlots(data)
}

// CreateSlot adds a bookable window. Admin only.
func (c *Client) CreateSlot(ctx context.Context, token string, req SlotRequest) (*Slot, error) {
	data, err := c.call(ctx, http.MethodPost, "/slots", token, req)
	if err != nil {
		return nil, err
	}
	var slot Slot
	if err := json.Unmarshal(data, &slot); err != nil {
		return nil, fmt.Errorf("backend: decode slot: %w", err)
	}
	return &slot, nil
}

// UpdateSlot modifies a slot. Admin only.
func (c *Client) UpdateSlot(ctx context.Context, token, id string, req SlotRequest) error {
	_, err := c.call(ctx, http.MethodPut, "/slots/"+id, token, req)
	return err
}

// DeleteSlot removes a slot. Admin only.
func (c *Client) DeleteSlot(ctx context.Context, token, id string) error {
	_, err := c.call(ctx, http.MethodDelete, "/slots/"+id, token, nil)
	return err
}

// GenerateSlots bulk-creates slots for a date range. Admin only.
func (c *Client) GenerateSlots(ctx context.Context, token string, req GenerateSlotsRequest) error {
	_, err := c.call(ctx, http.MethodPost, "/slots/generate", token, req)
	return err
}

// decodeSlots accepts both {slots: [...]} and a bare array, matching the two
// shapes the backend has shipped.
func decodeSlots(data json.RawMessage) ([]Slot, error) {
	var wrapped struct {
		Slots []Slot `json:"slots"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Slots != nil {
		return wrapped.Slots, nil
	}
	var list []Slot
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("backend: decode slots: %w", err)
	}
	return list, nil
}
