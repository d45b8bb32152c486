package notify

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoOpNotifier_SendAlert(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n := NewNoOpNotifier(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	err := n.SendAlert(context.Background(), &AlertPayload{
		Kind:    KindResolutionFailed,
		OrderID: "820982911946154508",
		Detail:  "apify dataset is empty",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "notification discarded")
	assert.Contains(t, buf.String(), "820982911946154508")
}

// compile-time interface checks.
var (
	_ Notifier = (*NoOpNotifier)(nil)
	_ Notifier = (*DiscordNotifier)(nil)
)
