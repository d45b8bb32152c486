// Package notify defines the notification interface and implementations
// for surfacing resolution problems to operators.
package notify

import (
	"context"
)

// Kind classifies an operator alert.
type Kind string

// Alert kinds.
const (
	KindResolutionFailed Kind = "resolution_failed"
	KindDegradedMatch    Kind = "degraded_match"
)

// AlertPayload contains the data needed to tell an operator that an order
// needs attention.
type AlertPayload struct {
	Kind       Kind
	OrderID    string
	OrderName  string
	Email      string
	ShopDomain string
	CruiseLine string
	ShipName   string
	SailDate   string
	// Detail is the error message for failures or the matched record for
	// degraded matches.
	Detail string
}

// Notifier defines the interface for sending operator alerts.
type Notifier interface {
	SendAlert(ctx context.Context, alert *AlertPayload) error
}
