package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/ranking-engine/internal/logger"
	"github.com/yourusername/ranking-engine/internal/metrics"
	"github.com/yourusername/ranking-engine/internal/models"
	"github.com/yourusername/ranking-engine/internal/repository"
	"github.com/yourusername/ranking-engine/internal/scoring"
)

// RankingService maintains the rolling individual ranking per discipline
type RankingService struct {
	repos       *repository.Repositories
	tx          TxRunner
	tables      TablesSource
	clock       Clock
	log         *logger.RankingLogger
	audit       *logger.AuditLogger
	invalidator StandingsInvalidator
}

// NewRankingService creates a new ranking service
func NewRankingService(
	repos *repository.Repositories,
	tx TxRunner,
	tables TablesSource,
	clock Clock,
	baseLogger *logrus.Logger,
) *RankingService {
	return &RankingService{
		repos:  repos,
		tx:     tx,
		tables: tables,
		clock:  clock,
		log:    logger.NewRankingLogger(baseLogger),
		audit:  logger.NewAuditLogger(baseLogger),
	}
}

// WithInvalidator registers the standings cache to clear when an event of a
// series is recomputed.
func (s *RankingService) WithInvalidator(inv StandingsInvalidator) *RankingService {
	s.invalidator = inv
	return s
}

// SnapshotSummary describes a snapshot run.
type SnapshotSummary struct {
	RunID      uuid.UUID `json:"run_id"`
	Discipline string    `json:"discipline"`
	Date       time.Time `json:"date"`
	Rows       int       `json:"rows"`
	Skipped    bool      `json:"skipped"`
}

func validateDiscipline(discipline string) error {
	if strings.TrimSpace(discipline) == "" {
		return fmt.Errorf("%w: discipline is required", models.ErrInvalidArgument)
	}
	return nil
}

func (s *RankingService) newSummary(scope string, tables *scoring.Tables) *RecomputeSummary {
	return &RecomputeSummary{
		Scope:         scope,
		AsOf:          calendarDay(s.clock()),
		TablesVersion: tables.Version,
	}
}

// RecomputeDiscipline replaces every ranking point of a discipline with
// values computed from the events inside the rolling window.
func (s *RankingService) RecomputeDiscipline(ctx context.Context, discipline string) (*RecomputeSummary, error) {
	if err := validateDiscipline(discipline); err != nil {
		return nil, err
	}
	tables := s.tables.Current()
	summary := s.newSummary(DisciplineScope(discipline), tables)
	calc := scoring.NewCalculator(tables, summary.AsOf)

	var fallbacks []scoring.Fallback
	err := runRecompute(ctx, s.tx, s.log, "discipline", "ranking_points", summary, func(ctx context.Context) error {
		fallbacks = nil

		events, err := s.repos.Event.ListByDiscipline(ctx, discipline, tables.WindowStart(summary.AsOf), summary.AsOf)
		if err != nil {
			return err
		}
		data, err := loadEventData(ctx, s.repos, tables, events)
		if err != nil {
			return err
		}

		var rows []models.RankingPoint
		for _, event := range events {
			points, fb := calc.EventPoints(*event, data.results[event.ID])
			rows = append(rows, points...)
			fallbacks = append(fallbacks, fb...)
		}

		if summary.Deleted, err = s.repos.RankingPoint.DeleteByDiscipline(ctx, discipline); err != nil {
			return err
		}
		if err := s.repos.RankingPoint.InsertBatch(ctx, rows); err != nil {
			return err
		}
		summary.Inserted = len(rows)
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary.Fallbacks = len(fallbacks)
	reportFallbacks(s.audit, summary.Scope, summary.TablesVersion, fallbacks)
	return summary, nil
}

// RecomputeEvent replaces only the ranking points of one event. It takes the
// discipline lock so it never interleaves with a discipline recompute.
func (s *RankingService) RecomputeEvent(ctx context.Context, eventID int64) (*RecomputeSummary, error) {
	event, err := s.repos.Event.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	tables := s.tables.Current()
	summary := s.newSummary(DisciplineScope(event.Discipline), tables)
	calc := scoring.NewCalculator(tables, summary.AsOf)

	var fallbacks []scoring.Fallback
	err = runRecompute(ctx, s.tx, s.log, "event", "ranking_points", summary, func(ctx context.Context) error {
		data, err := loadEventData(ctx, s.repos, tables, []*models.Event{event})
		if err != nil {
			return err
		}

		var rows []models.RankingPoint
		rows, fallbacks = calc.EventPoints(*event, data.results[event.ID])

		if summary.Deleted, err = s.repos.RankingPoint.DeleteByEvent(ctx, event.ID); err != nil {
			return err
		}
		if err := s.repos.RankingPoint.InsertBatch(ctx, rows); err != nil {
			return err
		}
		summary.Inserted = len(rows)
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary.Fallbacks = len(fallbacks)
	reportFallbacks(s.audit, summary.Scope, summary.TablesVersion, fallbacks)
	if s.invalidator != nil && event.SeriesID != nil {
		s.invalidator.Invalidate(*event.SeriesID)
	}
	return summary, nil
}

// Ranking returns the current ranking of a discipline ordered by position.
func (s *RankingService) Ranking(ctx context.Context, discipline string) ([]models.RankingEntry, error) {
	if err := validateDiscipline(discipline); err != nil {
		return nil, err
	}

	var entries []models.RankingEntry
	err := s.tx.WithSnapshot(ctx, func(ctx context.Context) error {
		points, err := s.currentPoints(ctx, discipline)
		if err != nil {
			return err
		}
		entries = scoring.RankRiders(points)
		return s.attachRiders(ctx, entries)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s ranking: %w", discipline, err)
	}

	metrics.UpdateRankedRiders(discipline, len(entries))
	return entries, nil
}

// currentPoints reads the stored rows of a discipline aged to today, so rows
// written by earlier recomputes never count outside the window or with a
// stale time multiplier.
func (s *RankingService) currentPoints(ctx context.Context, discipline string) ([]models.RankingPoint, error) {
	points, err := s.repos.RankingPoint.ListByDiscipline(ctx, discipline)
	if err != nil {
		return nil, err
	}
	return scoring.NewCalculator(s.tables.Current(), s.clock()).Reage(points), nil
}

func (s *RankingService) attachRiders(ctx context.Context, entries []models.RankingEntry) error {
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.RiderID
	}
	riders, err := s.repos.Rider.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range entries {
		if rider, ok := riders[entries[i].RiderID]; ok {
			entries[i].RiderName = rider.FullName()
			entries[i].Club = rider.ClubName
		}
	}
	return nil
}

// Snapshot appends today's ranking of a discipline to the snapshot history.
// A second call for the same discipline and day writes nothing.
func (s *RankingService) Snapshot(ctx context.Context, discipline string) (*SnapshotSummary, error) {
	if err := validateDiscipline(discipline); err != nil {
		return nil, err
	}
	summary := &SnapshotSummary{
		RunID:      uuid.New(),
		Discipline: discipline,
		Date:       calendarDay(s.clock()),
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.tx.AcquireScopeLock(ctx, DisciplineScope(discipline)); err != nil {
			return err
		}
		exists, err := s.repos.Snapshot.Exists(ctx, discipline, summary.Date)
		if err != nil {
			return err
		}
		if exists {
			summary.Skipped = true
			return nil
		}

		points, err := s.currentPoints(ctx, discipline)
		if err != nil {
			return err
		}
		previous, err := s.repos.Snapshot.LatestPositionsBefore(ctx, discipline, summary.Date)
		if err != nil {
			return err
		}
		rows := scoring.BuildSnapshots(summary.RunID, discipline, summary.Date, scoring.RankRiders(points), previous)
		if err := s.repos.Snapshot.InsertBatch(ctx, rows); err != nil {
			return err
		}
		summary.Rows = len(rows)
		return nil
	})
	if err != nil {
		metrics.RecordSnapshot(metrics.OutcomeFailure)
		return nil, fmt.Errorf("failed to snapshot %s ranking: %w", discipline, err)
	}

	if summary.Skipped {
		metrics.RecordSnapshot(metrics.OutcomeSkipped)
	} else {
		metrics.RecordSnapshot(metrics.OutcomeSuccess)
		metrics.RecordRowsWritten("ranking_snapshots", summary.Rows)
	}
	s.log.LogSnapshotWritten(discipline, summary.Date, summary.RunID.String(), summary.Rows, summary.Skipped)
	return summary, nil
}

// SnapshotAt returns the snapshot of a discipline taken on date.
func (s *RankingService) SnapshotAt(ctx context.Context, discipline string, date time.Time) ([]models.RankingSnapshot, error) {
	if err := validateDiscipline(discipline); err != nil {
		return nil, err
	}
	var rows []models.RankingSnapshot
	err := s.tx.WithSnapshot(ctx, func(ctx context.Context) error {
		var err error
		rows, err = s.repos.Snapshot.ListByDate(ctx, discipline, calendarDay(date))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s snapshot: %w", discipline, err)
	}
	return rows, nil
}
