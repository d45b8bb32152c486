package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cploetz77/port-to-port-map-generator/internal/apify"
	"github.com/cploetz77/port-to-port-map-generator/internal/metrics"
)

const defaultProbeTimeout = 15 * time.Second

// Scheduler periodically probes the scrape task and tracks whether the
// service is ready to resolve orders.
type Scheduler struct {
	cron    *cron.Cron
	prober  apify.Prober
	log     *slog.Logger
	timeout time.Duration

	ready     atomic.Bool
	lastProbe atomic.Pointer[time.Time]
}

// NewScheduler creates a Scheduler that runs p every probeInterval. The
// service is not ready until the first probe succeeds.
func NewScheduler(
	p apify.Prober,
	probeInterval time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:    c,
		prober:  p,
		log:     log,
		timeout: defaultProbeTimeout,
	}

	if _, err := c.AddFunc(
		"@every "+probeInterval.String(),
		s.runProbe,
	); err != nil {
		return nil, err
	}

	return s, nil
}

// Start runs one probe immediately, then begins the schedule.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	go s.runProbe()
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// Ready reports whether the most recent probe succeeded.
func (s *Scheduler) Ready() bool {
	return s.ready.Load()
}

// LastProbe returns when the last probe finished, or the zero time.
func (s *Scheduler) LastProbe() time.Time {
	if t := s.lastProbe.Load(); t != nil {
		return *t
	}
	return time.Time{}
}

func (s *Scheduler) runProbe() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.prober.Probe(ctx)
	now := time.Now()
	s.lastProbe.Store(&now)

	if err != nil {
		if s.ready.Swap(false) {
			s.log.Warn("scrape task probe failed, service not ready", "error", err)
		} else {
			s.log.Debug("scrape task probe failed", "error", err)
		}
		metrics.ApifyUp.Set(0)
		return
	}

	if !s.ready.Swap(true) {
		s.log.Info("scrape task reachable, service ready")
	}
	metrics.ApifyUp.Set(1)
}

// AlwaysReady is a readiness source for when probing is disabled.
type AlwaysReady struct{}

// Ready always returns true.
func (AlwaysReady) Ready() bool { return true }
