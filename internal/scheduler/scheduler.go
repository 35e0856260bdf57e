package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/ranking-engine/internal/models"
	"github.com/yourusername/ranking-engine/internal/service"
)

// RankingRunner is the part of the ranking service the scheduler drives
type RankingRunner interface {
	RecomputeDiscipline(ctx context.Context, discipline string) (*service.RecomputeSummary, error)
	Snapshot(ctx context.Context, discipline string) (*service.SnapshotSummary, error)
}

// Options configures the nightly ranking job
type Options struct {
	Disciplines []string
	Schedule    string
	Snapshot    bool
	Timeout     time.Duration
	Location    *time.Location
	MaxAttempts int
	RetryDelay  time.Duration
}

// Scheduler manages the scheduled ranking recompute and snapshot jobs
type Scheduler struct {
	cron      *cron.Cron
	ranking   RankingRunner
	opts      Options
	logger    *logrus.Entry
	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID
}

// NewScheduler creates a new scheduler
func NewScheduler(ranking RankingRunner, opts Options, logger *logrus.Logger) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 5 * time.Second
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(opts.Location)),
		ranking: ranking,
		opts:    opts,
		logger:  logger.WithField("component", "scheduler"),
		jobIDs:  make([]cron.EntryID, 0),
	}
}

// ScheduleRankingJobs registers one recompute (and optional snapshot) job
// per configured discipline.
func (s *Scheduler) ScheduleRankingJobs() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	for _, discipline := range s.opts.Disciplines {
		discipline := discipline
		entryID, err := s.cron.AddFunc(s.opts.Schedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
			defer cancel()
			s.RunDiscipline(ctx, discipline)
		})
		if err != nil {
			return fmt.Errorf("failed to add job for %s: %w", discipline, err)
		}
		s.jobIDs = append(s.jobIDs, entryID)
		s.logger.WithFields(logrus.Fields{
			"discipline": discipline,
			"schedule":   s.opts.Schedule,
		}).Info("Scheduled ranking job")
	}

	return nil
}

// RunDiscipline recomputes a discipline, retrying retryable failures, and
// takes the daily snapshot when enabled. It reports whether the run succeeded.
func (s *Scheduler) RunDiscipline(ctx context.Context, discipline string) bool {
	log := s.logger.WithFields(logrus.Fields{
		"run_id":     uuid.NewString(),
		"discipline": discipline,
	})

	var err error
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		var summary *service.RecomputeSummary
		summary, err = s.ranking.RecomputeDiscipline(ctx, discipline)
		if err == nil {
			log.WithField("inserted", summary.Inserted).Info("Scheduled recompute finished")
			break
		}
		if !models.IsRetryable(err) || attempt == s.opts.MaxAttempts {
			break
		}
		log.WithError(err).WithField("attempt", attempt).Warn("Scheduled recompute failed, retrying")
		select {
		case <-ctx.Done():
			log.WithError(ctx.Err()).Error("Scheduled recompute abandoned")
			return false
		case <-time.After(time.Duration(attempt) * s.opts.RetryDelay):
		}
	}
	if err != nil {
		log.WithError(err).Error("Scheduled recompute failed")
		return false
	}

	if !s.opts.Snapshot {
		return true
	}
	if _, err := s.ranking.Snapshot(ctx, discipline); err != nil {
		log.WithError(err).Error("Scheduled snapshot failed")
		return false
	}
	return true
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled job run
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() && !entry.Next.IsZero() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}
