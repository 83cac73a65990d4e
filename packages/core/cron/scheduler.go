package cron

import (
	"context"
	"time"

	"foosilator/packages/core/services"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PurgeGrantsSpec runs at minute 0 of every hour (seconds precision).
const PurgeGrantsSpec = "0 0 * * * *"

const jobTimeout = 5 * time.Minute

type Scheduler struct {
	cron        *cron.Cron
	maintenance *services.MaintenanceService
}

func NewScheduler(maintenance *services.MaintenanceService) *Scheduler {
	c := cron.New(cron.WithSeconds(), cron.WithLogger(cronLogger{logger: log.Logger}))

	return &Scheduler{
		cron:        c,
		maintenance: maintenance,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	log.Info().Msg("Starting cron scheduler")

	if _, err := s.cron.AddFunc(PurgeGrantsSpec, s.runPurgeGrants); err != nil {
		log.Error().Err(err).Str("spec", PurgeGrantsSpec).Msg("Error scheduling grant purge job")
		return err
	}

	s.cron.Start()
	log.Info().Int("jobs", len(s.cron.Entries())).Msg("Cron scheduler started")
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping cron scheduler")
	<-s.cron.Stop().Done()
	log.Info().Msg("Cron scheduler stopped")
}

// RunNow runs every job once, synchronously.
func (s *Scheduler) RunNow() {
	log.Info().Msg("Manually triggering maintenance jobs")
	s.runPurgeGrants()
}

func (s *Scheduler) runPurgeGrants() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	// Failures are logged by the service, the next run retries.
	_, _ = s.maintenance.PurgeExpiredGrants(ctx)
}

// cronLogger sends the scheduler's own messages to zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
