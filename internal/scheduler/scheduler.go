package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/resort-conditions-aggregation/internal/conditions"
)

// Prober is the part of the conditions Service the scheduler drives.
type Prober interface {
	Probe(ctx context.Context, resort conditions.Resort) []conditions.ProbeResult
}

// Scheduler periodically probes every configured upstream and records its availability.
// Results are only logged and exported as metrics; nothing is stored.
type Scheduler struct {
	scheduler *gocron.Scheduler
	prober    Prober
	resort    conditions.Resort
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.SugaredLogger
}

// New creates a new Scheduler. A non-positive interval disables probing.
func New(prober Prober, resort conditions.Resort, interval, timeout time.Duration, logger *zap.SugaredLogger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		prober:    prober,
		resort:    resort,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start schedules the periodic probe and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("scheduler: probe interval not set; upstream probing disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		s.RunOnce()
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce probes every upstream once and returns the number of failing sources.
func (s *Scheduler) RunOnce() int {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	failing := 0
	for _, r := range s.prober.Probe(ctx, s.resort) {
		if r.Err != nil {
			failing++
			s.logger.Warnw("scheduler: upstream probe failed", "kind", r.Kind, "source", r.Source, "error", r.Err)
			continue
		}
		s.logger.Debugw("scheduler: upstream probe succeeded", "kind", r.Kind, "source", r.Source)
	}
	s.logger.Infow("scheduler: completed upstream probe", "failing", failing)
	return failing
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
