package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Refresher fetches and stores weather for one city.
type Refresher interface {
	Refresh(ctx context.Context, city string) error
}

// Scheduler periodically refreshes the stored weather of watched cities.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	cities    []string
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler. timeout bounds one refresh round.
func New(cities []string, interval, timeout time.Duration, refresher Refresher, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		cities:    cities,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// With no cities configured nothing is scheduled.
func (s *Scheduler) Start() error {
	if len(s.cities) == 0 {
		s.logger.Info("scheduler: no watch cities configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "cities", s.cities, "interval", interval)
	return nil
}

// RunOnce refreshes every watched city in order. A failed city is logged
// and does not stop the round.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.logger.Debug("scheduler: refreshing watched cities")
	failed := 0
	for _, city := range s.cities {
		if err := s.refresher.Refresh(ctx, city); err != nil {
			failed++
			s.logger.Error("scheduler: refresh failed", "city", city, "error", err)
		}
	}
	s.logger.Info("scheduler: refresh completed", "cities", len(s.cities), "failed", failed)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
