package cmd

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cploetz77/port-to-port-map-generator/internal/apify"
	"github.com/cploetz77/port-to-port-map-generator/internal/config"
	"github.com/cploetz77/port-to-port-map-generator/internal/engine"
	"github.com/cploetz77/port-to-port-map-generator/internal/notify"
)

// service holds the components built from the service config.
type service struct {
	tasks      *apify.TaskClient
	runLimiter *apify.RunLimiter
	pipeline   *engine.Pipeline
	notifier   notify.Notifier
}

func newService(cfg *config.Config, log *slog.Logger) (*service, error) {
	rl := apify.NewRunLimiter(
		cfg.Apify.RateLimit.PerSecond,
		cfg.Apify.RateLimit.Burst,
		cfg.Apify.RateLimit.DailyLimit,
	)

	tasks, err := apify.NewTaskClient(
		cfg.Apify.Token,
		cfg.Apify.TaskID,
		apify.WithBaseURL(cfg.Apify.BaseURL),
		apify.WithWaitForFinish(cfg.Apify.WaitForFinish),
		apify.WithHTTPClient(&http.Client{Timeout: cfg.Apify.Timeout}),
		apify.WithRunLimiter(rl),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apify client: %w", err)
	}

	var n notify.Notifier
	if cfg.Notifications.Discord.Enabled {
		n = notify.NewDiscordNotifier(cfg.Notifications.Discord.WebhookURL)
		log.Info("discord notifications enabled")
	} else {
		n = notify.NewNoOpNotifier(log)
	}

	return &service{
		tasks:      tasks,
		runLimiter: rl,
		pipeline:   engine.NewPipeline(tasks, engine.WithLogger(log)),
		notifier:   n,
	}, nil
}
