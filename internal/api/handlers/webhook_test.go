package handlers_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cploetz77/port-to-port-map-generator/internal/api/handlers"
	"github.com/cploetz77/port-to-port-map-generator/internal/apify"
	"github.com/cploetz77/port-to-port-map-generator/internal/engine"
	"github.com/cploetz77/port-to-port-map-generator/internal/eventlog"
	"github.com/cploetz77/port-to-port-map-generator/internal/notify"
	domain "github.com/cploetz77/port-to-port-map-generator/pkg/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingScraper records how many runs were requested.
type countingScraper struct {
	mu    sync.Mutex
	calls int
	out   *apify.RunOutput
	err   error
}

func (s *countingScraper) Run(context.Context, apify.RunInput) (*apify.RunOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.out, s.err
}

// recordingNotifier keeps every alert it is sent.
type recordingNotifier struct {
	mu     sync.Mutex
	alerts []notify.AlertPayload
	err    error
}

func (n *recordingNotifier) SendAlert(_ context.Context, a *notify.AlertPayload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, *a)
	return n.err
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func postWebhook(t *testing.T, h *handlers.WebhookHandler, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/order-paid", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(handlers.HeaderTopic, "orders/paid")
	req.Header.Set(handlers.HeaderShopDomain, "cruise-maps.myshopify.com")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.OrderPaid(c))
	return rec
}

func TestOrderPaid_CustomerOverride(t *testing.T) {
	t.Parallel()

	scraper := &countingScraper{}
	log := eventlog.New(10)
	notifier := &recordingNotifier{}
	h := handlers.NewWebhookHandler(
		engine.NewPipeline(scraper, engine.WithLogger(quietLogger())),
		log,
		handlers.WithNotifier(notifier, engine.AlertPolicy{NotifyOnDegraded: true}),
		handlers.WithLogger(quietLogger()),
	)

	rec := postWebhook(t, h, strings.NewReader(overrideOrder))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Zero(t, scraper.calls)
	assert.Empty(t, notifier.alerts)

	events := log.Recent(0)
	require.Len(t, events, 1)
	ev := events[0]
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.ReceivedAt.IsZero())
	assert.Equal(t, domain.EventProcessed, ev.Status)
	assert.Equal(t, "orders/paid", ev.Topic)
	assert.Equal(t, "cruise-maps.myshopify.com", ev.ShopDomain)
	assert.Equal(t, "820982911946154508", ev.OrderID)
	assert.Equal(t, "#1042", ev.OrderName)
	assert.Equal(t, "traveler@example.com", ev.Email)
	assert.Equal(t, "paid", ev.FinancialStatus)
	assert.Len(t, ev.Fields, 4)
	require.NotNil(t, ev.Resolved)
	assert.True(t, ev.Resolved.PortsChanged)
	require.NotNil(t, ev.Result)
	assert.Equal(t, domain.SourceCustomerOverride, ev.Result.Source)
	assert.Equal(t, domain.PortList{"Miami", "Cozumel"}, ev.Result.Ports)
	assert.Empty(t, ev.Error)
}

func TestOrderPaid_FailureStillAnswersOK(t *testing.T) {
	t.Parallel()

	log := eventlog.New(10)
	notifier := &recordingNotifier{}
	h := handlers.NewWebhookHandler(
		engine.NewPipeline(&countingScraper{err: apify.ErrEmptyDataset}, engine.WithLogger(quietLogger())),
		log,
		handlers.WithNotifier(notifier, engine.AlertPolicy{}),
		handlers.WithLogger(quietLogger()),
	)

	rec := postWebhook(t, h, strings.NewReader(scrapeOrder))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	events := log.Recent(0)
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, domain.EventFailed, ev.Status)
	assert.Contains(t, ev.Error, "apify dataset is empty")
	assert.Equal(t, "#1043", ev.OrderName)
	assert.Len(t, ev.Fields, 3)
	require.NotNil(t, ev.Resolved)
	require.NotNil(t, ev.Resolved.SailDate)
	assert.Equal(t, "2025-12-06", *ev.Resolved.SailDate)
	assert.Nil(t, ev.Result)

	require.Len(t, notifier.alerts, 1)
	assert.Equal(t, notify.KindResolutionFailed, notifier.alerts[0].Kind)
	assert.Equal(t, "cruise-maps.myshopify.com", notifier.alerts[0].ShopDomain)
}

func TestOrderPaid_MalformedBody(t *testing.T) {
	t.Parallel()

	log := eventlog.New(10)
	h := handlers.NewWebhookHandler(
		engine.NewPipeline(&countingScraper{}, engine.WithLogger(quietLogger())),
		log,
		handlers.WithLogger(quietLogger()),
	)

	rec := postWebhook(t, h, strings.NewReader(`{"id": `))

	assert.Equal(t, http.StatusOK, rec.Code)
	events := log.Recent(0)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventFailed, events[0].Status)
	assert.Contains(t, events[0].Error, "invalid order payload")
	assert.Empty(t, events[0].OrderID)
}

func TestOrderPaid_UnreadableBody(t *testing.T) {
	t.Parallel()

	log := eventlog.New(10)
	scraper := &countingScraper{}
	h := handlers.NewWebhookHandler(
		engine.NewPipeline(scraper, engine.WithLogger(quietLogger())),
		log,
		handlers.WithLogger(quietLogger()),
	)

	rec := postWebhook(t, h, failingReader{})

	assert.Equal(t, http.StatusOK, rec.Code)
	events := log.Recent(0)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventFailed, events[0].Status)
	assert.Contains(t, events[0].Error, "reading request body")
	assert.Zero(t, scraper.calls)
}

func TestOrderPaid_NotifierErrorIgnored(t *testing.T) {
	t.Parallel()

	log := eventlog.New(10)
	h := handlers.NewWebhookHandler(
		engine.NewPipeline(&countingScraper{err: apify.ErrEmptyDataset}, engine.WithLogger(quietLogger())),
		log,
		handlers.WithNotifier(&recordingNotifier{err: errors.New("discord down")}, engine.AlertPolicy{}),
		handlers.WithLogger(quietLogger()),
	)

	rec := postWebhook(t, h, strings.NewReader(scrapeOrder))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, log.Len())
}

func TestOrderPaid_EventLogEvictsOldest(t *testing.T) {
	t.Parallel()

	log := eventlog.New(2)
	h := handlers.NewWebhookHandler(
		engine.NewPipeline(&countingScraper{}, engine.WithLogger(quietLogger())),
		log,
		handlers.WithLogger(quietLogger()),
	)

	for _, name := range []string{"#1", "#2", "#3"} {
		body := `{"id": 1, "name": "` + name + `", "line_items": []}`
		postWebhook(t, h, strings.NewReader(body))
	}

	events := log.Recent(0)
	require.Len(t, events, 2)
	assert.Equal(t, "#3", events[0].OrderName)
	assert.Equal(t, "#2", events[1].OrderName)
}
