// Package handlers implements the HTTP surface of the port resolver: the
// order paid webhook, health and readiness, and the typed /api/v1 routes.
package handlers

import "time"

// ErrorResponse is the body of plain echo error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"limit must be a non-negative integer"`
}

// StatusResponse is the body of the health endpoints. LastProbe is set on
// readiness responses once the Apify task has been probed.
type StatusResponse struct {
	Status    string     `json:"status"               example:"ready"`
	LastProbe *time.Time `json:"last_probe,omitempty" example:"2025-06-15T14:30:00Z"`
}
