package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	colorRed    = 0xE74C3C // resolution failed
	colorOrange = 0xE67E22 // degraded match
)

// maxFieldLen is Discord's limit for an embed field value.
const maxFieldLen = 1024

// DiscordNotifier implements Notifier via Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// SendAlert sends a single alert as a Discord embed.
func (d *DiscordNotifier) SendAlert(ctx context.Context, alert *AlertPayload) error {
	payload := discordWebhookPayload{
		Embeds: []discordEmbed{buildEmbed(alert)},
	}
	return d.post(ctx, payload)
}

func buildEmbed(alert *AlertPayload) discordEmbed {
	order := alert.OrderName
	if order == "" {
		order = alert.OrderID
	}

	embed := discordEmbed{
		Fields: []discordEmbedField{
			{Name: "Order", Value: orDash(order), Inline: true},
			{Name: "Customer", Value: orDash(alert.Email), Inline: true},
			{Name: "Shop", Value: orDash(alert.ShopDomain), Inline: true},
			{Name: "Cruise Line", Value: orDash(alert.CruiseLine), Inline: true},
			{Name: "Ship", Value: orDash(alert.ShipName), Inline: true},
			{Name: "Sail Date", Value: orDash(alert.SailDate), Inline: true},
		},
	}

	switch alert.Kind {
	case KindDegradedMatch:
		embed.Title = fmt.Sprintf("Unverified itinerary for %s", order)
		embed.Color = colorOrange
		embed.Description = "No scraped sailing matched the booking; ports were taken from the first record."
		embed.Fields = append(embed.Fields, discordEmbedField{Name: "Used Record", Value: truncate(orDash(alert.Detail))})
	default:
		embed.Title = fmt.Sprintf("Port resolution failed for %s", order)
		embed.Color = colorRed
		embed.Fields = append(embed.Fields, discordEmbedField{Name: "Error", Value: truncate(orDash(alert.Detail))})
	}

	return embed
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string) string {
	if len(s) <= maxFieldLen {
		return s
	}
	return s[:maxFieldLen-3] + "..."
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("discord rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
