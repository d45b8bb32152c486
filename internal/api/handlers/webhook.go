package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cploetz77/port-to-port-map-generator/internal/engine"
	"github.com/cploetz77/port-to-port-map-generator/internal/metrics"
	"github.com/cploetz77/port-to-port-map-generator/internal/notify"
	domain "github.com/cploetz77/port-to-port-map-generator/pkg/types"
)

// Shopify webhook headers.
const (
	HeaderTopic      = "X-Shopify-Topic"
	HeaderShopDomain = "X-Shopify-Shop-Domain"
)

// EventRecorder stores processed webhook events.
type EventRecorder interface {
	Add(e domain.Event) domain.Event
}

// WebhookHandler receives order paid webhooks.
type WebhookHandler struct {
	resolver OrderResolver
	events   EventRecorder
	notifier notify.Notifier
	policy   engine.AlertPolicy
	log      *slog.Logger
}

// WebhookOption configures the WebhookHandler.
type WebhookOption func(*WebhookHandler)

// WithNotifier sets the notifier used for failed and degraded resolutions.
func WithNotifier(n notify.Notifier, policy engine.AlertPolicy) WebhookOption {
	return func(h *WebhookHandler) {
		h.notifier = n
		h.policy = policy
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) WebhookOption {
	return func(h *WebhookHandler) {
		h.log = l
	}
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(r OrderResolver, events EventRecorder, opts ...WebhookOption) *WebhookHandler {
	h := &WebhookHandler{
		resolver: r,
		events:   events,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OrderPaid handles POST /webhooks/order-paid. The outcome is recorded in
// the event log and the sender always gets 200 so it does not redeliver.
//
// @Summary Order paid webhook
// @Description Resolves the order's port list and records the outcome. Always answers 200.
// @Tags webhooks
// @Accept json
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /webhooks/order-paid [post]
func (h *WebhookHandler) OrderPaid(c echo.Context) error {
	req := c.Request()
	topic := req.Header.Get(HeaderTopic)
	shop := req.Header.Get(HeaderShopDomain)

	metrics.WebhooksReceivedTotal.WithLabelValues(topicLabel(topic)).Inc()

	event := domain.Event{
		Topic:      topic,
		ShopDomain: shop,
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		event.Status = domain.EventFailed
		event.Error = "reading request body: " + err.Error()
		stored := h.events.Add(event)
		h.log.Error("webhook body unreadable", "event_id", stored.ID, "error", err)
		return c.String(http.StatusOK, "OK")
	}

	res, resErr := h.resolver.Run(req.Context(), body)
	fillEvent(&event, res, resErr)
	stored := h.events.Add(event)

	h.log.Info("webhook processed",
		"event_id", stored.ID,
		"topic", topic,
		"shop", shop,
		"order_id", stored.OrderID,
		"status", stored.Status,
	)

	h.alert(req.Context(), shop, res, resErr)

	return c.String(http.StatusOK, "OK")
}

func (h *WebhookHandler) alert(ctx context.Context, shop string, res *engine.Resolution, resErr error) {
	// Alerts outlive the webhook request.
	ctx = context.WithoutCancel(ctx)
	if err := engine.ProcessAlert(ctx, h.notifier, h.policy, shop, res, resErr); err != nil {
		h.log.Error("sending alert failed", "error", err)
	}
}

func fillEvent(e *domain.Event, res *engine.Resolution, resErr error) {
	if resErr != nil {
		e.Status = domain.EventFailed
		e.Error = resErr.Error()

		var rerr *engine.ResolutionError
		if errors.As(resErr, &rerr) {
			fillOrder(e, rerr.Order)
			e.Fields = rerr.Fields
			e.Resolved = rerr.Resolved
		}
		return
	}

	e.Status = domain.EventProcessed
	fillOrder(e, res.Order)
	e.Fields = res.Fields
	resolved := res.Resolved
	e.Resolved = &resolved
	e.Result = res.Result
}

func fillOrder(e *domain.Event, o *domain.Order) {
	if o == nil {
		return
	}
	e.OrderID = string(o.ID)
	e.OrderName = string(o.Name)
	e.Email = string(o.Email)
	e.FinancialStatus = string(o.FinancialStatus)
}

func topicLabel(topic string) string {
	if topic == "" {
		return "unknown"
	}
	return topic
}
