package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Readiness reports whether the service can resolve orders.
type Readiness interface {
	Ready() bool
}

// probeReporter is implemented by readiness sources backed by a probe.
type probeReporter interface {
	LastProbe() time.Time
}

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	readiness Readiness
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(r Readiness) *HealthHandler {
	return &HealthHandler{readiness: r}
}

// Healthz returns 200 if the process is running.
//
// @Summary Liveness check
// @Description Returns 200 if the process is running.
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /healthz [get]
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz returns 200 if the last scrape task probe succeeded, 503 otherwise.
//
// @Summary Readiness check
// @Description Returns 200 if the scrape task is reachable, 503 otherwise.
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 503 {object} StatusResponse
// @Router /readyz [get]
func (h *HealthHandler) Readyz(c echo.Context) error {
	if h.readiness == nil {
		return c.JSON(http.StatusServiceUnavailable, StatusResponse{Status: "unavailable"})
	}

	resp := StatusResponse{Status: "ready"}
	if pr, ok := h.readiness.(probeReporter); ok {
		if at := pr.LastProbe(); !at.IsZero() {
			resp.LastProbe = &at
		}
	}

	if !h.readiness.Ready() {
		resp.Status = "unavailable"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}
