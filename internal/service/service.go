// Package service runs the scoring computations against storage: scope
// recomputes, snapshots, standings reads and class lookups.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/ranking-engine/internal/database"
	"github.com/yourusername/ranking-engine/internal/logger"
	"github.com/yourusername/ranking-engine/internal/metrics"
	"github.com/yourusername/ranking-engine/internal/models"
	"github.com/yourusername/ranking-engine/internal/scoring"
)

// TxRunner provides the transactional primitives services depend on.
// *database.DB satisfies it.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(context.Context) error) error
	WithSnapshot(ctx context.Context, fn func(context.Context) error) error
	AcquireScopeLock(ctx context.Context, scope string) error
}

// TablesSource serves the active scoring tables.
type TablesSource interface {
	Current() *scoring.Tables
}

// Clock returns the current time in the ranking timezone.
type Clock func() time.Time

// StandingsInvalidator drops cached standings after a recompute.
type StandingsInvalidator interface {
	Invalidate(seriesID int64)
}

var _ TxRunner = (*database.DB)(nil)

// RecomputeSummary describes a committed scope recompute.
type RecomputeSummary struct {
	Scope         string        `json:"scope"`
	AsOf          time.Time     `json:"as_of"`
	TablesVersion string        `json:"tables_version"`
	Deleted       int64         `json:"deleted"`
	Inserted      int           `json:"inserted"`
	Fallbacks     int           `json:"fallbacks"`
	Duration      time.Duration `json:"duration"`
}

// DisciplineScope is the lock key shared by every writer of a discipline.
func DisciplineScope(discipline string) string {
	return "discipline:" + discipline
}

// SeriesScope is the lock key of a series' club points.
func SeriesScope(seriesID int64) string {
	return fmt.Sprintf("series:%d", seriesID)
}

// calendarDay maps t to midnight UTC of its local calendar date, matching
// how DATE columns are scanned.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// runRecompute executes fn as one locked transaction and converts failures
// into *models.RecomputeError. The scope's previous rows survive any error.
func runRecompute(
	ctx context.Context,
	tx TxRunner,
	log *logger.RankingLogger,
	kind, table string,
	summary *RecomputeSummary,
	fn func(ctx context.Context) error,
) error {
	start := time.Now()
	log.LogRecomputeStarted(summary.Scope, summary.AsOf, summary.TablesVersion)

	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := tx.AcquireScopeLock(ctx, summary.Scope); err != nil {
			return err
		}
		return fn(ctx)
	})
	summary.Duration = time.Since(start)
	metrics.RecordRecompute(kind, err, summary.Duration.Seconds())

	if err != nil {
		rerr := &models.RecomputeError{
			Scope:     summary.Scope,
			Retryable: database.IsRetryable(err),
			Err:       err,
		}
		log.LogRecomputeFailed(summary.Scope, err, rerr.Retryable)
		return rerr
	}

	metrics.RecordRowsWritten(table, summary.Inserted)
	log.LogRecomputeFinished(summary.Scope, int(summary.Deleted), summary.Inserted, summary.Duration)
	return nil
}

// reportFallbacks logs and counts the fallbacks of a committed recompute.
func reportFallbacks(audit *logger.AuditLogger, scope, tablesVersion string, fallbacks []scoring.Fallback) {
	for _, fb := range fallbacks {
		metrics.RecordFallback(fb.Kind)
		audit.LogFallback(fb.Kind, scope, fb.EventID, fb.RiderID, fb.ClassID, tablesVersion, fb.Detail)
	}
}
