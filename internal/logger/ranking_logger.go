package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// RankingLogger provides dedicated logging for recompute and snapshot runs.
type RankingLogger struct {
	*logrus.Entry
}

// NewRankingLogger creates a new ranking logger.
func NewRankingLogger(baseLogger *logrus.Logger) *RankingLogger {
	return &RankingLogger{
		Entry: baseLogger.WithField("component", "ranking"),
	}
}

// LogRecomputeStarted logs the start of a scope recompute.
func (rl *RankingLogger) LogRecomputeStarted(scope string, asOf time.Time, tablesVersion string) {
	rl.WithFields(logrus.Fields{
		"scope":          scope,
		"as_of":          asOf.Format(time.DateOnly),
		"tables_version": tablesVersion,
	}).Debug("Recompute started")
}

// LogRecomputeFinished logs a committed scope recompute.
func (rl *RankingLogger) LogRecomputeFinished(scope string, deleted, inserted int, duration time.Duration) {
	rl.WithFields(logrus.Fields{
		"scope":       scope,
		"deleted":     deleted,
		"inserted":    inserted,
		"duration_ms": duration.Milliseconds(),
	}).Info("Recompute committed")
}

// LogRecomputeFailed logs a rolled back scope recompute.
func (rl *RankingLogger) LogRecomputeFailed(scope string, err error, retryable bool) {
	rl.WithFields(logrus.Fields{
		"scope":     scope,
		"retryable": retryable,
	}).WithError(err).Error("Recompute rolled back")
}

// LogSnapshotWritten logs a snapshot run. skipped is true when a snapshot
// for the same discipline and date already existed.
func (rl *RankingLogger) LogSnapshotWritten(discipline string, date time.Time, runID string, rows int, skipped bool) {
	entry := rl.WithFields(logrus.Fields{
		"discipline":    discipline,
		"snapshot_date": date.Format(time.DateOnly),
		"run_id":        runID,
		"rows":          rows,
	})
	if skipped {
		entry.Info("Snapshot already taken for date, skipping")
		return
	}
	entry.Info("Snapshot written")
}

// LogStandingsServed logs a standings read.
func (rl *RankingLogger) LogStandingsServed(kind string, seriesID int64, rows int, cached bool) {
	rl.WithFields(logrus.Fields{
		"kind":      kind,
		"series_id": seriesID,
		"rows":      rows,
		"cached":    cached,
	}).Debug("Standings served")
}
