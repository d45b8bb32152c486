package client

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/cploetz77/port-to-port-map-generator/pkg/types"
)

// ResolveResponse is the body of POST /api/v1/resolve.
type ResolveResponse struct {
	Result   *domain.ResolutionResult  `json:"result"`
	Fields   []domain.LineItemProperty `json:"fields"`
	Resolved domain.ResolvedFields     `json:"resolved"`
}

// Resolve asks the server to resolve an order paid webhook body without
// recording it. A failed resolution is an *APIError with status 422.
func (c *Client) Resolve(ctx context.Context, order []byte) (*ResolveResponse, error) {
	var resp ResolveResponse
	if err := c.post(ctx, "/api/v1/resolve", json.RawMessage(order), &resp); err != nil {
		return nil, fmt.Errorf("resolving order: %w", err)
	}
	return &resp, nil
}
