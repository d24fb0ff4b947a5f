// Package scheduler triggers price refreshes on a cron schedule.
package scheduler

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Trigger is the name recorded on scheduled refresh runs.
const Trigger = "schedule"

// Refresher starts a refresh without waiting for it. The refresh orchestrator
// implements it and applies its own mutual exclusion and debounce.
type Refresher interface {
	RefreshAsync(trigger string)
}

// Scheduler runs Refresher on a cron spec. The spec accepts the standard five
// fields and descriptors such as "@every 5m" or "@hourly".
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	enabled bool
	logger  zerolog.Logger
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// New creates a Scheduler. An empty spec yields a disabled scheduler whose
// Start and Stop do nothing.
func New(spec string, refresher Refresher, logger zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		spec:   strings.TrimSpace(spec),
		logger: logger.With().Str("component", "scheduler").Logger(),
	}
	if s.spec == "" {
		return s, nil
	}

	s.cron = cron.New(cron.WithParser(parser))
	if _, err := s.cron.AddFunc(s.spec, func() {
		s.logger.Debug().Msg("Scheduled refresh triggered")
		refresher.RefreshAsync(Trigger)
	}); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", s.spec, err)
	}
	s.enabled = true
	return s, nil
}

// Enabled reports whether a schedule is configured.
func (s *Scheduler) Enabled() bool {
	return s.enabled
}

// Start begins firing in the background.
func (s *Scheduler) Start() {
	if !s.enabled {
		s.logger.Info().Msg("Scheduled refresh disabled")
		return
	}
	s.cron.Start()
	s.logger.Info().Str("schedule", s.spec).Msg("Scheduled refresh started")
}

// Stop prevents further runs and waits for a job in progress to return. Since
// jobs only start an asynchronous refresh, this returns promptly.
func (s *Scheduler) Stop() {
	if !s.enabled {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Scheduled refresh stopped")
}
