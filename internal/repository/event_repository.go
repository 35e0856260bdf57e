package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/ranking-engine/internal/database"
	"github.com/yourusername/ranking-engine/internal/models"
)

const (
	errScanEvent = "failed to scan event: %w"
	eventColumns = `id, name, date, discipline, series_id, event_level, discipline_format, point_scale_id`
)

// PostgresEventRepository implements EventRepository for PostgreSQL
type PostgresEventRepository struct {
	db *database.DB
}

// NewPostgresEventRepository creates a new event repository
func NewPostgresEventRepository(db *database.DB) EventRepository {
	return &PostgresEventRepository{db: db}
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var event models.Event
	var level, format string
	if err := row.Scan(
		&event.ID, &event.Name, &event.Date, &event.Discipline, &event.SeriesID,
		&level, &format, &event.PointScaleID,
	); err != nil {
		return nil, err
	}
	event.Level = models.EventLevel(level)
	event.Format = models.DisciplineFormat(format)
	if err := models.ValidateRecord(&event); err != nil {
		return nil, fmt.Errorf("event %d: %w", event.ID, err)
	}
	return &event, nil
}

// GetByID retrieves an event by ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.db.Querier(ctx).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", models.ErrEventNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// ListByDiscipline returns a discipline's events dated within [from, to]
func (r *PostgresEventRepository) ListByDiscipline(ctx context.Context, discipline string, from, to time.Time) ([]*models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE discipline = $1 AND date >= $2::date AND date <= $3::date
		ORDER BY date, id
	`
	return r.list(ctx, query, discipline, from, to)
}

// ListBySeries returns a series' events in date order
func (r *PostgresEventRepository) ListBySeries(ctx context.Context, seriesID int64) ([]*models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE series_id = $1
		ORDER BY date, id
	`
	return r.list(ctx, query, seriesID)
}

func (r *PostgresEventRepository) list(ctx context.Context, query string, args ...any) ([]*models.Event, error) {
	rows, err := r.db.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanEvent, err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// PostgresSeriesRepository implements SeriesRepository for PostgreSQL
type PostgresSeriesRepository struct {
	db *database.DB
}

// NewPostgresSeriesRepository creates a new series repository
func NewPostgresSeriesRepository(db *database.DB) SeriesRepository {
	return &PostgresSeriesRepository{db: db}
}

// GetByID retrieves a series by ID
func (r *PostgresSeriesRepository) GetByID(ctx context.Context, id int64) (*models.Series, error) {
	query := `SELECT id, name, year, discipline, best_results_count FROM series WHERE id = $1`

	var series models.Series
	err := r.db.Querier(ctx).QueryRow(ctx, query, id).Scan(
		&series.ID, &series.Name, &series.Year, &series.Discipline, &series.BestResultsCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", models.ErrSeriesNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get series: %w", err)
	}
	if err := models.ValidateRecord(&series); err != nil {
		return nil, fmt.Errorf("series %d: %w", id, err)
	}
	return &series, nil
}
