// Package apify provides a client for running the cruise itinerary scrape
// as an Apify actor task, abstracted behind an interface for testability.
package apify

import (
	"context"

	domain "github.com/cploetz77/port-to-port-map-generator/pkg/types"
)

// RunInput identifies the sailing to scrape.
type RunInput struct {
	CruiseLine  string
	ShipName    string
	ISOSailDate string
}

// RunOutput holds a finished run's dataset.
type RunOutput struct {
	RunID     string
	DatasetID string
	Dataset   []domain.SailingRecord
}

// Scraper runs the itinerary scrape for one sailing.
type Scraper interface {
	Run(ctx context.Context, in RunInput) (*RunOutput, error)
}

// Prober checks that the configured task is reachable with the
// configured credentials.
type Prober interface {
	Probe(ctx context.Context) error
}
