package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cploetz77/port-to-port-map-generator/internal/apify"
)

// QuotaHandler provides the Apify run quota status endpoint.
type QuotaHandler struct {
	rl *apify.RunLimiter
}

// NewQuotaHandler creates a new QuotaHandler.
func NewQuotaHandler(rl *apify.RunLimiter) *QuotaHandler {
	return &QuotaHandler{rl: rl}
}

// QuotaOutput is the response body for the quota endpoint.
type QuotaOutput struct {
	Body struct {
		DailyLimit int64     `json:"daily_limit" example:"500"                  doc:"Configured daily task run limit"`
		DailyUsed  int64     `json:"daily_used"  example:"12"                   doc:"Task runs started in the current 24-hour window"`
		Remaining  int64     `json:"remaining"   example:"488"                  doc:"Task runs remaining in the current window"`
		ResetAt    time.Time `json:"reset_at"    example:"2025-06-16T14:30:00Z" doc:"When the current 24-hour window expires"`
	}
}

// GetQuota returns the current Apify run quota status.
func (h *QuotaHandler) GetQuota(_ context.Context, _ *struct{}) (*QuotaOutput, error) {
	resp := &QuotaOutput{}
	if h.rl == nil {
		return resp, nil
	}

	q := h.rl.Quota()
	resp.Body.DailyLimit = q.Limit
	resp.Body.DailyUsed = q.Used
	resp.Body.Remaining = q.Remaining
	resp.Body.ResetAt = q.ResetAt

	return resp, nil
}

// RegisterQuotaRoutes registers the quota endpoint with the Huma API.
func RegisterQuotaRoutes(api huma.API, h *QuotaHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-quota",
		Method:      http.MethodGet,
		Path:        "/api/v1/quota",
		Summary:     "Get Apify run quota status",
		Description: "Returns the current daily task run usage, remaining quota, and window reset time.",
		Tags:        []string{"apify"},
	}, h.GetQuota)
}
