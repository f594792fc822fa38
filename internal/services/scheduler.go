package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// PipelineRunner is the rebuild entry point the scheduler drives.
type PipelineRunner interface {
	RunAll(ctx context.Context) error
}

// SchedulerService runs the nightly pipeline rebuild on a cron schedule.
// Runs are serialized: a rebuild that overruns into the next trigger
// causes the trigger to be skipped, never overlapped.
type SchedulerService struct {
	pipeline PipelineRunner
	cache    *CacheService
	logger   *logrus.Logger
	cron     *cron.Cron
	schedule string

	mu        sync.Mutex
	isRunning bool

	rebuildMu sync.Mutex

	// statusMu guards the last-run record. Stop blocks on the cron
	// drain while holding mu, so a finishing rebuild must not need mu.
	statusMu  sync.Mutex
	lastRun   time.Time
	lastError string
}

func NewSchedulerService(
	pipeline PipelineRunner,
	cache *CacheService,
	schedule string,
	logger *logrus.Logger,
) *SchedulerService {
	return &SchedulerService{
		pipeline: pipeline,
		cache:    cache,
		logger:   logger,
		cron:     cron.New(),
		schedule: schedule,
	}
}

// Start registers the rebuild job and begins the cron loop.
func (s *SchedulerService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if _, err := s.cron.AddFunc(s.schedule, s.runRebuild); err != nil {
		return fmt.Errorf("failed to schedule pipeline rebuild: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	s.logger.WithField("schedule", s.schedule).Info("Pipeline scheduler started")
	return nil
}

// Stop halts the cron loop and waits for an in-flight rebuild to finish.
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.logger.Info("Pipeline scheduler stopped")
}

func (s *SchedulerService) runRebuild() {
	if !s.rebuildMu.TryLock() {
		s.logger.Warn("Previous rebuild still running, skipping this trigger")
		return
	}
	defer s.rebuildMu.Unlock()

	err := s.pipeline.RunAll(context.Background())

	s.statusMu.Lock()
	s.lastRun = time.Now().UTC()
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
	}
	s.statusMu.Unlock()

	if err != nil {
		s.logger.WithError(err).Error("Scheduled pipeline rebuild failed")
		return
	}

	// Cached boards were built from the previous caches.
	if s.cache != nil {
		if err := s.cache.Flush(); err != nil {
			s.logger.WithError(err).Warn("Failed to flush prediction cache after rebuild")
		}
	}
}

// RunNow triggers a rebuild outside the schedule, in the background.
func (s *SchedulerService) RunNow() {
	go s.runRebuild()
}

// Status reports scheduler state for the health endpoint.
func (s *SchedulerService) Status() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	nextRuns := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		nextRuns = append(nextRuns, entry.Next)
	}

	status := map[string]interface{}{
		"is_running": s.isRunning,
		"schedule":   s.schedule,
		"next_runs":  nextRuns,
	}

	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	if !s.lastRun.IsZero() {
		status["last_run"] = s.lastRun
	}
	if s.lastError != "" {
		status["last_error"] = s.lastError
	}
	return status
}
