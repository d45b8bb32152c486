package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cploetz77/port-to-port-map-generator/internal/api/handlers"
	"github.com/cploetz77/port-to-port-map-generator/internal/apify"
)

type quotaBody struct {
	DailyLimit int64     `json:"daily_limit"`
	DailyUsed  int64     `json:"daily_used"`
	Remaining  int64     `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
}

func TestGetQuota(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		rl           *apify.RunLimiter
		preRuns      int
		wantLimit    int64
		wantUsed     int64
		wantRemain   int64
		wantResetSet bool
	}{
		{
			name: "nil run limiter returns zeroes",
		},
		{
			name:         "fresh run limiter",
			rl:           apify.NewRunLimiter(100, 10, 500),
			wantLimit:    500,
			wantRemain:   500,
			wantResetSet: true,
		},
		{
			name:         "run limiter with usage",
			rl:           apify.NewRunLimiter(100, 10, 20),
			preRuns:      3,
			wantLimit:    20,
			wantUsed:     3,
			wantRemain:   17,
			wantResetSet: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.rl != nil {
				for range tt.preRuns {
					require.NoError(t, tt.rl.AcquireRun(t.Context()))
				}
			}

			_, api := humatest.New(t)
			handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(tt.rl))

			resp := api.Get("/api/v1/quota")
			require.Equal(t, http.StatusOK, resp.Code)

			var got quotaBody
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
			assert.Equal(t, tt.wantLimit, got.DailyLimit)
			assert.Equal(t, tt.wantUsed, got.DailyUsed)
			assert.Equal(t, tt.wantRemain, got.Remaining)
			assert.Equal(t, tt.wantResetSet, !got.ResetAt.IsZero())
		})
	}
}

func TestGetQuota_ResetAtValue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	rl := apify.NewRunLimiter(
		1, 5, 500,
		apify.WithRunLimiterNowFunc(func() time.Time { return now }),
	)

	_, api := humatest.New(t)
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(rl))

	resp := api.Get("/api/v1/quota")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "2025-06-16T14:30:00Z")
}
