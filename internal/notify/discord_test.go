package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAlert(kind Kind) AlertPayload {
	return AlertPayload{
		Kind:       kind,
		OrderID:    "820982911946154508",
		OrderName:  "#1042",
		Email:      "traveler@example.com",
		ShopDomain: "cruise-maps.myshopify.com",
		CruiseLine: "Carnival",
		ShipName:   "Carnival Celebration",
		SailDate:   "2025-12-06",
		Detail:     "apify dataset is empty",
	}
}

func TestDiscordNotifier_SendAlert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		alert      AlertPayload
		statusCode int
		wantErr    bool
		errMsg     string
		wantColor  int
		wantTitle  string
		wantField  string
	}{
		{
			name:       "failure uses red",
			alert:      testAlert(KindResolutionFailed),
			statusCode: http.StatusNoContent,
			wantColor:  colorRed,
			wantTitle:  "Port resolution failed for #1042",
			wantField:  "Error",
		},
		{
			name:       "degraded match uses orange",
			alert:      testAlert(KindDegradedMatch),
			statusCode: http.StatusNoContent,
			wantColor:  colorOrange,
			wantTitle:  "Unverified itinerary for #1042",
			wantField:  "Used Record",
		},
		{
			name:       "discord returns 429 rate limited",
			alert:      testAlert(KindResolutionFailed),
			statusCode: http.StatusTooManyRequests,
			wantErr:    true,
			errMsg:     "rate limited",
		},
		{
			name:       "discord returns 400 error",
			alert:      testAlert(KindResolutionFailed),
			statusCode: http.StatusBadRequest,
			wantErr:    true,
			errMsg:     "discord returned 400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var received discordWebhookPayload

			srv := httptest.NewServer(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
					assert.Equal(t, http.MethodPost, r.Method)

					err := json.NewDecoder(r.Body).Decode(&received)
					assert.NoError(t, err)

					w.WriteHeader(tt.statusCode)
				}),
			)
			defer srv.Close()

			d := NewDiscordNotifier(srv.URL)
			err := d.SendAlert(context.Background(), &tt.alert)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}

			require.NoError(t, err)
			require.Len(t, received.Embeds, 1)

			embed := received.Embeds[0]
			assert.Equal(t, tt.wantColor, embed.Color)
			assert.Equal(t, tt.wantTitle, embed.Title)

			fieldMap := make(map[string]string)
			for _, f := range embed.Fields {
				fieldMap[f.Name] = f.Value
			}
			assert.Equal(t, "#1042", fieldMap["Order"])
			assert.Equal(t, "Carnival Celebration", fieldMap["Ship"])
			assert.Equal(t, tt.alert.Detail, fieldMap[tt.wantField])
		})
	}
}

func TestBuildEmbed_FallbacksAndTruncation(t *testing.T) {
	t.Parallel()

	alert := &AlertPayload{
		Kind:    KindResolutionFailed,
		OrderID: "42",
		Detail:  strings.Repeat("x", 2000),
	}

	embed := buildEmbed(alert)
	assert.Equal(t, "Port resolution failed for 42", embed.Title)

	fieldMap := make(map[string]string)
	for _, f := range embed.Fields {
		fieldMap[f.Name] = f.Value
	}
	assert.Equal(t, "-", fieldMap["Ship"])
	assert.Len(t, fieldMap["Error"], maxFieldLen)
	assert.True(t, strings.HasSuffix(fieldMap["Error"], "..."))
}

func TestDiscordNotifier_NetworkError(t *testing.T) {
	t.Parallel()

	d := NewDiscordNotifier("http://127.0.0.1:1") // nothing listening
	alert := testAlert(KindResolutionFailed)
	err := d.SendAlert(context.Background(), &alert)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending discord webhook")
}

func TestDiscordNotifier_InvalidWebhookURL(t *testing.T) {
	t.Parallel()

	d := NewDiscordNotifier("://not-a-valid-url")
	alert := testAlert(KindResolutionFailed)
	err := d.SendAlert(context.Background(), &alert)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating discord request")
}
