package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/ranking-engine/internal/database"
	"github.com/yourusername/ranking-engine/internal/models"
)

// PostgresSnapshotRepository implements SnapshotRepository for PostgreSQL
type PostgresSnapshotRepository struct {
	db *database.DB
}

// NewPostgresSnapshotRepository creates a new snapshot repository
func NewPostgresSnapshotRepository(db *database.DB) SnapshotRepository {
	return &PostgresSnapshotRepository{db: db}
}

// Exists reports whether a snapshot was already taken for discipline on date
func (r *PostgresSnapshotRepository) Exists(ctx context.Context, discipline string, date time.Time) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM ranking_snapshots WHERE discipline = $1 AND snapshot_date = $2::date)`

	var exists bool
	if err := r.db.Querier(ctx).QueryRow(ctx, query, discipline, date).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check snapshot: %w", err)
	}
	return exists, nil
}

// LatestPositionsBefore returns rider positions from the most recent
// snapshot strictly before date
func (r *PostgresSnapshotRepository) LatestPositionsBefore(ctx context.Context, discipline string, date time.Time) (map[int64]int, error) {
	query := `
		SELECT rider_id, position
		FROM ranking_snapshots
		WHERE discipline = $1
		  AND snapshot_date = (
			SELECT MAX(snapshot_date) FROM ranking_snapshots
			WHERE discipline = $1 AND snapshot_date < $2::date
		  )
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query, discipline, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query previous snapshot: %w", err)
	}
	defer rows.Close()

	positions := make(map[int64]int)
	for rows.Next() {
		var riderID int64
		var position int
		if err := rows.Scan(&riderID, &position); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot position: %w", err)
		}
		positions[riderID] = position
	}
	return positions, rows.Err()
}

// InsertBatch appends snapshot rows
func (r *PostgresSnapshotRepository) InsertBatch(ctx context.Context, rows []models.RankingSnapshot) error {
	query := `
		INSERT INTO ranking_snapshots (
			run_id, rider_id, discipline, snapshot_date, total_points, events_count,
			position, previous_position, position_change
		) VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9)
	`

	batch := &pgx.Batch{}
	for i := range rows {
		s := &rows[i]
		batch.Queue(query,
			s.RunID, s.RiderID, s.Discipline, s.SnapshotDate, s.TotalPoints.String(), s.EventsCount,
			s.Position, s.PreviousPosition, s.PositionChange,
		)
	}

	if err := sendBatch(ctx, r.db.Querier(ctx), batch); err != nil {
		return fmt.Errorf("failed to insert ranking snapshot: %w", err)
	}
	return nil
}

// ListByDate returns the snapshot of discipline taken on date, best first
func (r *PostgresSnapshotRepository) ListByDate(ctx context.Context, discipline string, date time.Time) ([]models.RankingSnapshot, error) {
	query := `
		SELECT run_id, rider_id, discipline, snapshot_date, total_points::text, events_count,
		       position, previous_position, position_change
		FROM ranking_snapshots
		WHERE discipline = $1 AND snapshot_date = $2::date
		ORDER BY position, rider_id
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query, discipline, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking snapshot: %w", err)
	}
	defer rows.Close()

	var snapshots []models.RankingSnapshot
	for rows.Next() {
		var s models.RankingSnapshot
		var total string
		if err := rows.Scan(
			&s.RunID, &s.RiderID, &s.Discipline, &s.SnapshotDate, &total, &s.EventsCount,
			&s.Position, &s.PreviousPosition, &s.PositionChange,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ranking snapshot: %w", err)
		}
		if s.TotalPoints, err = parseDecimal("total_points", total); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
