// Package engine resolves the itinerary for a paid order: it extracts the
// booking fields from the order's first line item and returns either the
// customer's override ports or the ports of the scraped sailing.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cploetz77/port-to-port-map-generator/internal/apify"
	"github.com/cploetz77/port-to-port-map-generator/internal/metrics"
	"github.com/cploetz77/port-to-port-map-generator/pkg/fields"
	"github.com/cploetz77/port-to-port-map-generator/pkg/logger"
	"github.com/cploetz77/port-to-port-map-generator/pkg/sailing"
	domain "github.com/cploetz77/port-to-port-map-generator/pkg/types"
)

// minOverridePorts is the number of customer ports needed before the
// override replaces the scrape.
const minOverridePorts = 2

// ErrInvalidPayload is returned when the webhook body is not a JSON order.
var ErrInvalidPayload = errors.New("invalid order payload")

// ErrNoLineItems is returned when the order carries no line items.
var ErrNoLineItems = errors.New("order has no line items")

// ResolutionError is returned for any failed resolution. It carries
// whatever had been derived before the failure so callers can record it.
type ResolutionError struct {
	Order    *domain.Order
	Fields   []domain.LineItemProperty
	Resolved *domain.ResolvedFields
	Err      error
}

func (e *ResolutionError) Error() string {
	return e.Err.Error()
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Resolution is a successful resolution together with its inputs.
type Resolution struct {
	Order    *domain.Order
	Fields   []domain.LineItemProperty
	Resolved domain.ResolvedFields
	Result   *domain.ResolutionResult
}

// Pipeline turns webhook bodies into port lists.
type Pipeline struct {
	scraper apify.Scraper
	log     *slog.Logger
	nowFunc func() time.Time
}

// PipelineOption configures the Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.log = l
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		p.nowFunc = f
	}
}

// NewPipeline creates a Pipeline that scrapes through s.
func NewPipeline(s apify.Scraper, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		scraper: s,
		log:     slog.Default(),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Resolve decodes an order paid webhook body and resolves its port list.
// Any failure is a *ResolutionError.
func (p *Pipeline) Resolve(ctx context.Context, body []byte) (*domain.ResolutionResult, error) {
	res, err := p.Run(ctx, body)
	if err != nil {
		return nil, err
	}
	return res.Result, nil
}

// Run is Resolve but also returns the decoded order and derived fields.
func (p *Pipeline) Run(ctx context.Context, body []byte) (*Resolution, error) {
	var order domain.Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, p.fail(&ResolutionError{Err: fmt.Errorf("%w: %w", ErrInvalidPayload, err)})
	}
	return p.ResolveOrder(ctx, &order)
}

// ResolveOrder resolves the port list of an already decoded order. Only
// the first line item is considered.
func (p *Pipeline) ResolveOrder(ctx context.Context, order *domain.Order) (*Resolution, error) {
	start := p.nowFunc()
	log := logger.ForOrder(p.log, string(order.ID), string(order.Name))

	if len(order.LineItems) == 0 {
		return nil, p.fail(&ResolutionError{Order: order, Err: ErrNoLineItems})
	}

	props := fields.Extract(&order.LineItems[0])
	resolved := fields.Resolve(props)

	log.Debug("booking fields resolved",
		"fields", len(props),
		"cruise_line", deref(resolved.CruiseLine),
		"ship", deref(resolved.ShipName),
		"sail_date", deref(resolved.SailDate),
		"ports_changed", resolved.PortsChanged,
		"override_ports", len(resolved.OverridePorts),
	)

	res := &Resolution{Order: order, Fields: props, Resolved: resolved}

	if resolved.PortsChanged && len(resolved.OverridePorts) >= minOverridePorts {
		res.Result = &domain.ResolutionResult{
			Source: domain.SourceCustomerOverride,
			Ports:  domain.PortList(resolved.OverridePorts),
		}
		p.succeed(log, res.Result, start)
		return res, nil
	}

	result, err := p.scrape(ctx, log, &resolved)
	if err != nil {
		return nil, p.fail(&ResolutionError{
			Order:    order,
			Fields:   props,
			Resolved: &resolved,
			Err:      err,
		})
	}
	res.Result = result
	p.succeed(log, result, start)
	return res, nil
}

func (p *Pipeline) scrape(
	ctx context.Context,
	log *slog.Logger,
	resolved *domain.ResolvedFields,
) (*domain.ResolutionResult, error) {
	in := apify.RunInput{
		CruiseLine:  deref(resolved.CruiseLine),
		ShipName:    deref(resolved.ShipName),
		ISOSailDate: deref(resolved.SailDate),
	}
	if in.ShipName == "" || in.ISOSailDate == "" {
		log.Warn("scraping with incomplete sailing", "ship", in.ShipName, "sail_date", in.ISOSailDate)
	}

	out, err := p.scraper.Run(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("running itinerary scrape: %w", err)
	}

	match, err := sailing.FindMatch(out.Dataset, in.ShipName, in.ISOSailDate)
	if err != nil {
		return nil, err
	}

	meta := match.Metadata(len(out.Dataset))
	meta.RunID = out.RunID
	meta.DatasetID = out.DatasetID

	if match.Degraded {
		metrics.DegradedMatchesTotal.Inc()
		log.Warn("no dataset record matched sailing, using first record",
			"ship", in.ShipName,
			"sail_date", in.ISOSailDate,
			"used_ship", meta.ShipName,
			"used_date", meta.CruiseDate,
			"dataset_size", meta.DatasetSize,
			"run_id", meta.RunID,
		)
	}

	ports, err := sailing.ExtractPorts(match.Record)
	if err != nil {
		return nil, err
	}

	return &domain.ResolutionResult{
		Source: domain.SourceApifyScrape,
		Ports:  ports,
		Match:  meta,
	}, nil
}

func (p *Pipeline) succeed(log *slog.Logger, result *domain.ResolutionResult, start time.Time) {
	source := string(result.Source)
	metrics.ResolutionsTotal.WithLabelValues(source).Inc()
	metrics.ResolutionDuration.WithLabelValues(source).Observe(p.nowFunc().Sub(start).Seconds())
	metrics.PortsPerResolution.Observe(float64(len(result.Ports)))

	log.Info("ports resolved", "source", source, "ports", len(result.Ports))
}

func (p *Pipeline) fail(err *ResolutionError) *ResolutionError {
	reason := FailureReason(err)
	metrics.ResolutionFailuresTotal.WithLabelValues(reason).Inc()

	log := p.log
	if err.Order != nil {
		log = logger.ForOrder(log, string(err.Order.ID), string(err.Order.Name))
	}
	log.Error("port resolution failed", "reason", reason, "error", err.Err)
	return err
}

// FailureReason classifies a resolution error into a short metric label.
func FailureReason(err error) string {
	var (
		credsErr   *apify.MissingCredentialsError
		runErr     *apify.ScrapeRunFailedError
		datasetErr *apify.DatasetFetchFailedError
		portsErr   *sailing.NoPortsExtractedError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, ErrNoLineItems):
		return "no_line_items"
	case errors.As(err, &credsErr), errors.Is(err, apify.ErrMissingCredentials):
		return "missing_credentials"
	case errors.Is(err, apify.ErrRunQuotaExhausted):
		return "run_quota"
	case errors.As(err, &runErr):
		return "run_failed"
	case errors.As(err, &datasetErr):
		return "dataset_fetch_failed"
	case errors.Is(err, apify.ErrEmptyDataset):
		return "empty_dataset"
	case errors.Is(err, sailing.ErrNoSailingRecords):
		return "no_sailing_records"
	case errors.As(err, &portsErr):
		return "no_ports_extracted"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "other"
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
