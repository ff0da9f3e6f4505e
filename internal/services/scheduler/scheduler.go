// Package scheduler runs background maintenance on a cron schedule.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/relist/internal/common"
	"github.com/ternarybob/relist/internal/interfaces"
	"github.com/ternarybob/relist/internal/models"
	"github.com/ternarybob/relist/internal/pipeline"
)

// Scheduler owns the cron runner. Two maintenance entries: the stale-job
// sweep (runs interrupted by a restart stay "running" in storage forever
// unless something reaps them) and the storage value log GC.
type Scheduler struct {
	cron       *cron.Cron
	store      *pipeline.Store
	storageGC  func() error
	threshold  time.Duration
	schedule   string
	gcSchedule string
	enabled    bool
	logger     arbor.ILogger
}

// New creates the scheduler from configuration. storageGC may be nil when
// the storage backend has nothing to compact.
func New(cfg common.SchedulerConfig, store *pipeline.Store, storageGC func() error, logger arbor.ILogger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		store:      store,
		storageGC:  storageGC,
		threshold:  common.ParseDurationOr(cfg.StaleJobThreshold, 30*time.Minute),
		schedule:   cfg.StaleJobSchedule,
		gcSchedule: cfg.StorageGCSchedule,
		enabled:    cfg.Enabled,
		logger:     logger,
	}
}

// Start registers the maintenance entries and starts the cron runner.
func (s *Scheduler) Start() error {
	if !s.enabled {
		s.logger.Info().Msg("Scheduler disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.sweepStaleJobs); err != nil {
		return err
	}

	if s.storageGC != nil && s.gcSchedule != "" {
		if _, err := s.cron.AddFunc(s.gcSchedule, s.runStorageGC); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", s.schedule).
		Str("threshold", s.threshold.String()).
		Msg("Scheduler started")
	return nil
}

// Stop stops the cron runner and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// sweepStaleJobs fails any job that has been running longer than the
// threshold. Such jobs lost their goroutine to a crash or restart and will
// never finish on their own.
func (s *Scheduler) sweepStaleJobs() {
	ctx := context.Background()
	cutoff := time.Now().Add(-s.threshold)

	jobs, err := s.store.List(ctx, &interfaces.JobListOptions{Status: models.JobStatusRunning})
	if err != nil {
		s.logger.Error().Err(err).Msg("Stale job sweep failed to list jobs")
		return
	}

	swept := 0
	for _, job := range jobs {
		if job.StartedAt == nil || job.StartedAt.After(cutoff) {
			continue
		}
		if _, err := s.store.SetStatus(ctx, job.ID, models.JobStatusFailed, "job abandoned: exceeded stale threshold"); err != nil {
			s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to fail stale job")
			continue
		}
		swept++
	}

	if swept > 0 {
		s.logger.Info().Int("swept", swept).Msg("Reaped stale pipeline jobs")
	}
}

// runStorageGC compacts the storage value log.
func (s *Scheduler) runStorageGC() {
	if err := s.storageGC(); err != nil {
		s.logger.Warn().Err(err).Msg("Storage value log GC failed")
	}
}
