package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/ranking-engine/internal/database"
	"github.com/yourusername/ranking-engine/internal/models"
)

// PostgresRankingPointRepository implements RankingPointRepository for PostgreSQL
type PostgresRankingPointRepository struct {
	db *database.DB
}

// NewPostgresRankingPointRepository creates a new ranking point repository
func NewPostgresRankingPointRepository(db *database.DB) RankingPointRepository {
	return &PostgresRankingPointRepository{db: db}
}

// DeleteByDiscipline removes every ranking point of a discipline
func (r *PostgresRankingPointRepository) DeleteByDiscipline(ctx context.Context, discipline string) (int64, error) {
	tag, err := r.db.Querier(ctx).Exec(ctx, `DELETE FROM ranking_points WHERE discipline = $1`, discipline)
	if err != nil {
		return 0, fmt.Errorf("failed to delete ranking points: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteByEvent removes the ranking points of one event
func (r *PostgresRankingPointRepository) DeleteByEvent(ctx context.Context, eventID int64) (int64, error) {
	tag, err := r.db.Querier(ctx).Exec(ctx, `DELETE FROM ranking_points WHERE event_id = $1`, eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete ranking points: %w", err)
	}
	return tag.RowsAffected(), nil
}

// InsertBatch inserts ranking points in a single round trip
func (r *PostgresRankingPointRepository) InsertBatch(ctx context.Context, points []models.RankingPoint) error {
	query := `
		INSERT INTO ranking_points (
			rider_id, event_id, class_id, discipline, event_date, original_points, field_size,
			field_multiplier, event_level_multiplier, time_multiplier, ranking_points,
			as_of, tables_version, fallback_reason
		) VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8::numeric, $9::numeric, $10::numeric, $11::numeric, $12, $13, $14)
	`

	batch := &pgx.Batch{}
	for i := range points {
		p := &points[i]
		batch.Queue(query,
			p.RiderID, p.EventID, p.ClassID, p.Discipline, p.EventDate, p.OriginalPoints.String(), p.FieldSize,
			p.FieldMultiplier.String(), p.EventLevelMultiplier.String(), p.TimeMultiplier.String(), p.RankingPoints.String(),
			p.AsOf, p.TablesVersion, p.FallbackReason,
		)
	}

	if err := sendBatch(ctx, r.db.Querier(ctx), batch); err != nil {
		return fmt.Errorf("failed to insert ranking points: %w", err)
	}
	return nil
}

// ListByDiscipline returns a discipline's ranking points ordered by rider
func (r *PostgresRankingPointRepository) ListByDiscipline(ctx context.Context, discipline string) ([]models.RankingPoint, error) {
	query := `
		SELECT rider_id, event_id, class_id, discipline, event_date, original_points::text, field_size,
		       field_multiplier::text, event_level_multiplier::text, time_multiplier::text,
		       ranking_points::text, as_of, tables_version, fallback_reason
		FROM ranking_points
		WHERE discipline = $1
		ORDER BY rider_id, event_id, class_id
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query, discipline)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking points: %w", err)
	}
	defer rows.Close()

	var points []models.RankingPoint
	for rows.Next() {
		var p models.RankingPoint
		var original, field, level, timeMult, ranking string
		if err := rows.Scan(
			&p.RiderID, &p.EventID, &p.ClassID, &p.Discipline, &p.EventDate, &original, &p.FieldSize,
			&field, &level, &timeMult, &ranking, &p.AsOf, &p.TablesVersion, &p.FallbackReason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ranking point: %w", err)
		}
		if p.OriginalPoints, err = parseDecimal("original_points", original); err != nil {
			return nil, err
		}
		if p.FieldMultiplier, err = parseDecimal("field_multiplier", field); err != nil {
			return nil, err
		}
		if p.EventLevelMultiplier, err = parseDecimal("event_level_multiplier", level); err != nil {
			return nil, err
		}
		if p.TimeMultiplier, err = parseDecimal("time_multiplier", timeMult); err != nil {
			return nil, err
		}
		if p.RankingPoints, err = parseDecimal("ranking_points", ranking); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
