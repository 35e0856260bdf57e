package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/yourusername/ranking-engine/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Event        EventRepository
	Series       SeriesRepository
	Result       ResultRepository
	Rider        RiderRepository
	Club         ClubRepository
	Class        ClassRepository
	PointScale   PointScaleRepository
	RankingPoint RankingPointRepository
	Snapshot     SnapshotRepository
	ClubPoints   ClubPointsRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Event:        NewPostgresEventRepository(db),
		Series:       NewPostgresSeriesRepository(db),
		Result:       NewPostgresResultRepository(db),
		Rider:        NewPostgresRiderRepository(db),
		Club:         NewPostgresClubRepository(db),
		Class:        NewPostgresClassRepository(db),
		PointScale:   NewPostgresPointScaleRepository(db),
		RankingPoint: NewPostgresRankingPointRepository(db),
		Snapshot:     NewPostgresSnapshotRepository(db),
		ClubPoints:   NewPostgresClubPointsRepository(db),
	}, nil
}

// Numeric columns are selected as ::text and parsed here so no precision
// is lost on the way through float64.

func parseDecimal(column, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to parse %s %q: %w", column, raw, err)
	}
	return d, nil
}

func parseNullDecimal(column string, raw *string) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	d, err := parseDecimal(column, *raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// sendBatch executes every queued statement and reports the first failure.
func sendBatch(ctx context.Context, q database.Querier, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	results := q.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
	}
	return results.Close()
}
