package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/ranking-engine/internal/database"
	"github.com/yourusername/ranking-engine/internal/models"
)

const resultColumns = `id, rider_id, event_id, class_id, position, status, points::text, run1_time, run2_time, finish_time`

// PostgresResultRepository implements ResultRepository for PostgreSQL
type PostgresResultRepository struct {
	db *database.DB
}

// NewPostgresResultRepository creates a new result repository
func NewPostgresResultRepository(db *database.DB) ResultRepository {
	return &PostgresResultRepository{db: db}
}

func scanResult(row pgx.Row) (models.Result, error) {
	var result models.Result
	var status string
	var points *string
	if err := row.Scan(
		&result.ID, &result.RiderID, &result.EventID, &result.ClassID, &result.Position,
		&status, &points, &result.Run1Time, &result.Run2Time, &result.FinishTime,
	); err != nil {
		return result, err
	}
	result.Status = models.ResultStatus(status)

	parsed, err := parseNullDecimal("points", points)
	if err != nil {
		return result, err
	}
	result.Points = parsed

	if err := models.ValidateRecord(&result); err != nil {
		return result, fmt.Errorf("result %d: %w", result.ID, err)
	}
	return result, nil
}

// ListByEvent returns an event's results ordered by id
func (r *PostgresResultRepository) ListByEvent(ctx context.Context, eventID int64) ([]models.Result, error) {
	grouped, err := r.ListByEvents(ctx, []int64{eventID})
	if err != nil {
		return nil, err
	}
	return grouped[eventID], nil
}

// ListByEvents returns the results of several events keyed by event id
func (r *PostgresResultRepository) ListByEvents(ctx context.Context, eventIDs []int64) (map[int64][]models.Result, error) {
	grouped := make(map[int64][]models.Result, len(eventIDs))
	if len(eventIDs) == 0 {
		return grouped, nil
	}

	query := `
		SELECT ` + resultColumns + `
		FROM results
		WHERE event_id = ANY($1)
		ORDER BY event_id, id
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		grouped[result.EventID] = append(grouped[result.EventID], result)
	}
	return grouped, rows.Err()
}
