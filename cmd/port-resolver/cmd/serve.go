package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/cploetz77/port-to-port-map-generator/internal/api/handlers"
	"github.com/cploetz77/port-to-port-map-generator/internal/api/middleware"
	"github.com/cploetz77/port-to-port-map-generator/internal/config"
	"github.com/cploetz77/port-to-port-map-generator/internal/engine"
	"github.com/cploetz77/port-to-port-map-generator/internal/eventlog"
	"github.com/cploetz77/port-to-port-map-generator/pkg/logger"
)

const (
	webhookPath     = "/webhooks/order-paid"
	shutdownTimeout = 10 * time.Second
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook server and readiness probe",
		RunE:  runServe,
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	svc, err := newService(cfg, log)
	if err != nil {
		return err
	}

	events := eventlog.New(cfg.Events.Capacity)

	var readiness handlers.Readiness = engine.AlwaysReady{}
	if cfg.Probe.IsEnabled() {
		sched, err := engine.NewScheduler(svc.tasks, cfg.Probe.Interval, log)
		if err != nil {
			return fmt.Errorf("creating scheduler: %w", err)
		}
		sched.Start()
		defer func() { <-sched.Stop().Done() }()
		readiness = sched
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(
		middleware.RequestLog(log),
		middleware.Metrics(),
		middleware.Recovery(log, webhookPath),
	)

	health := handlers.NewHealthHandler(readiness)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	webhook := handlers.NewWebhookHandler(
		svc.pipeline,
		events,
		handlers.WithNotifier(svc.notifier, engine.AlertPolicy{
			NotifyOnDegraded: cfg.Notifications.NotifyOnDegraded,
		}),
		handlers.WithLogger(log),
	)
	e.POST(webhookPath, webhook.OrderPaid)

	eventsHandler := handlers.NewEventsHandler(events)
	e.GET("/debug/events", eventsHandler.Debug)

	api := humaecho.New(e, huma.DefaultConfig("Port Resolver API", Version))
	handlers.RegisterEventRoutes(api, eventsHandler)
	handlers.RegisterResolveRoutes(api, handlers.NewResolveHandler(svc.pipeline))
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(svc.runLimiter))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server",
		"addr", addr,
		"apify_task", cfg.Apify.TaskID,
		"probe", cfg.Probe.IsEnabled(),
		"event_capacity", events.Capacity(),
	)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}
