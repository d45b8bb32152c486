package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	domain "github.com/cploetz77/port-to-port-map-generator/pkg/types"
)

// EventsResponse is the body of GET /api/v1/events.
type EventsResponse struct {
	Events   []domain.Event `json:"events"`
	Count    int            `json:"count"`
	Capacity int            `json:"capacity"`
}

// ListEvents returns up to limit recent webhook events, most recent first.
// A limit of zero returns everything the server holds.
func (c *Client) ListEvents(ctx context.Context, limit int) (*EventsResponse, error) {
	path := "/api/v1/events"
	if limit > 0 {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(limit))
		path += "?" + q.Encode()
	}

	var resp EventsResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return &resp, nil
}

// QuotaResponse is the body of GET /api/v1/quota.
type QuotaResponse struct {
	DailyLimit int64     `json:"daily_limit"`
	DailyUsed  int64     `json:"daily_used"`
	Remaining  int64     `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
}

// Quota returns the server's Apify run quota status.
func (c *Client) Quota(ctx context.Context) (*QuotaResponse, error) {
	var resp QuotaResponse
	if err := c.get(ctx, "/api/v1/quota", &resp); err != nil {
		return nil, fmt.Errorf("getting quota: %w", err)
	}
	return &resp, nil
}
