package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/ranking-engine/internal/database"
	"github.com/yourusername/ranking-engine/internal/models"
)

// PostgresClubPointsRepository implements ClubPointsRepository for PostgreSQL
type PostgresClubPointsRepository struct {
	db *database.DB
}

// NewPostgresClubPointsRepository creates a new club points repository
func NewPostgresClubPointsRepository(db *database.DB) ClubPointsRepository {
	return &PostgresClubPointsRepository{db: db}
}

// DeleteBySeries removes a series' club points, optionally limited to one club
func (r *PostgresClubPointsRepository) DeleteBySeries(ctx context.Context, seriesID int64, clubID *int64) (int64, error) {
	query := `DELETE FROM club_rider_points WHERE series_id = $1 AND ($2::bigint IS NULL OR club_id = $2)`

	tag, err := r.db.Querier(ctx).Exec(ctx, query, seriesID, clubID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete club points: %w", err)
	}
	return tag.RowsAffected(), nil
}

// InsertBatch inserts club point rows in a single round trip
func (r *PostgresClubPointsRepository) InsertBatch(ctx context.Context, rows []models.ClubRiderPoints) error {
	query := `
		INSERT INTO club_rider_points (
			rider_id, club_id, event_id, series_id, class_id, original_points,
			rider_rank_in_club, percentage_applied, club_points, tables_version, fallback_reason
		) VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8::numeric, $9::numeric, $10, $11)
	`

	batch := &pgx.Batch{}
	for i := range rows {
		c := &rows[i]
		batch.Queue(query,
			c.RiderID, c.ClubID, c.EventID, c.SeriesID, c.ClassID, c.OriginalPoints.String(),
			c.RiderRankInClub, c.PercentageApplied.String(), c.ClubPoints.String(), c.TablesVersion, c.FallbackReason,
		)
	}

	if err := sendBatch(ctx, r.db.Querier(ctx), batch); err != nil {
		return fmt.Errorf("failed to insert club points: %w", err)
	}
	return nil
}

// ListBySeries returns a series' club points ordered by club, event and rank
func (r *PostgresClubPointsRepository) ListBySeries(ctx context.Context, seriesID int64) ([]models.ClubRiderPoints, error) {
	query := `
		SELECT rider_id, club_id, event_id, series_id, class_id, original_points::text,
		       rider_rank_in_club, percentage_applied::text, club_points::text,
		       tables_version, fallback_reason
		FROM club_rider_points
		WHERE series_id = $1
		ORDER BY club_id, event_id, class_id, rider_rank_in_club
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query, seriesID)
	if err != nil {
		return nil, fmt.Errorf("failed to query club points: %w", err)
	}
	defer rows.Close()

	var points []models.ClubRiderPoints
	for rows.Next() {
		var c models.ClubRiderPoints
		var original, pct, club string
		if err := rows.Scan(
			&c.RiderID, &c.ClubID, &c.EventID, &c.SeriesID, &c.ClassID, &original,
			&c.RiderRankInClub, &pct, &club, &c.TablesVersion, &c.FallbackReason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan club points: %w", err)
		}
		if c.OriginalPoints, err = parseDecimal("original_points", original); err != nil {
			return nil, err
		}
		if c.PercentageApplied, err = parseDecimal("percentage_applied", pct); err != nil {
			return nil, err
		}
		if c.ClubPoints, err = parseDecimal("club_points", club); err != nil {
			return nil, err
		}
		points = append(points, c)
	}
	return points, rows.Err()
}
