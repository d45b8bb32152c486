package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/labstack/echo/v4"

	domain "github.com/cploetz77/port-to-port-map-generator/pkg/types"
)

// EventSource lists recently recorded webhook events, most recent first.
type EventSource interface {
	Recent(limit int) []domain.Event
	Capacity() int
}

// EventsHandler exposes the recent-events log.
type EventsHandler struct {
	events EventSource
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(events EventSource) *EventsHandler {
	return &EventsHandler{events: events}
}

// ListEventsInput holds the query parameters for the events endpoint.
type ListEventsInput struct {
	Limit int `query:"limit" minimum:"0" default:"0" doc:"Maximum events to return (0 for all held)" example:"5"`
}

// ListEventsOutput is the response body for the events endpoint.
type ListEventsOutput struct {
	Body struct {
		Events   []domain.Event `json:"events"   doc:"Recent webhook events, most recent first"`
		Count    int            `json:"count"    doc:"Number of events returned"              example:"3"`
		Capacity int            `json:"capacity" doc:"Maximum number of events held"          example:"20"`
	}
}

// ListEvents returns the most recent webhook events.
func (h *EventsHandler) ListEvents(_ context.Context, input *ListEventsInput) (*ListEventsOutput, error) {
	events := h.events.Recent(input.Limit)
	if events == nil {
		events = []domain.Event{}
	}

	out := &ListEventsOutput{}
	out.Body.Events = events
	out.Body.Count = len(events)
	out.Body.Capacity = h.events.Capacity()
	return out, nil
}

// Debug handles GET /debug/events with indented JSON for reading in a
// browser or terminal.
//
// @Summary Recent events (debug)
// @Description Returns the recent-events log as indented JSON, most recent first.
// @Tags debug
// @Produce json
// @Param limit query int false "Maximum events to return"
// @Success 200 {array} domain.Event
// @Failure 400 {object} ErrorResponse
// @Router /debug/events [get]
func (h *EventsHandler) Debug(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a non-negative integer"})
		}
		limit = n
	}

	events := h.events.Recent(limit)
	if events == nil {
		events = []domain.Event{}
	}
	return c.JSONPretty(http.StatusOK, events, "  ")
}

// RegisterEventRoutes registers the events endpoint with the Huma API.
func RegisterEventRoutes(api huma.API, h *EventsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/api/v1/events",
		Summary:     "List recent webhook events",
		Description: "Returns the in-memory log of recently processed order webhooks, most recent first.",
		Tags:        []string{"events"},
	}, h.ListEvents)
}
