package repository

import (
	"context"
	"time"

	"github.com/yourusername/ranking-engine/internal/models"
)

// EventRepository reads race days from the race management tables
type EventRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	ListByDiscipline(ctx context.Context, discipline string, from, to time.Time) ([]*models.Event, error)
	ListBySeries(ctx context.Context, seriesID int64) ([]*models.Event, error)
}

// SeriesRepository reads series definitions
type SeriesRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Series, error)
}

// ResultRepository reads per-rider event results
type ResultRepository interface {
	ListByEvent(ctx context.Context, eventID int64) ([]models.Result, error)
	ListByEvents(ctx context.Context, eventIDs []int64) (map[int64][]models.Result, error)
}

// RiderRepository reads riders together with their club name
type RiderRepository interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Rider, error)
}

// ClubRepository reads clubs
type ClubRepository interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Club, error)
}

// ClassRepository reads class definitions
type ClassRepository interface {
	ListAll(ctx context.Context) ([]models.ClassDefinition, error)
}

// PointScaleRepository reads point scales with their values
type PointScaleRepository interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.PointScale, error)
}

// RankingPointRepository owns the derived ranking_points table
type RankingPointRepository interface {
	DeleteByDiscipline(ctx context.Context, discipline string) (int64, error)
	DeleteByEvent(ctx context.Context, eventID int64) (int64, error)
	InsertBatch(ctx context.Context, points []models.RankingPoint) error
	ListByDiscipline(ctx context.Context, discipline string) ([]models.RankingPoint, error)
}

// SnapshotRepository owns the append-only ranking_snapshots table
type SnapshotRepository interface {
	Exists(ctx context.Context, discipline string, date time.Time) (bool, error)
	LatestPositionsBefore(ctx context.Context, discipline string, date time.Time) (map[int64]int, error)
	InsertBatch(ctx context.Context, rows []models.RankingSnapshot) error
	ListByDate(ctx context.Context, discipline string, date time.Time) ([]models.RankingSnapshot, error)
}

// ClubPointsRepository owns the derived club_rider_points table
type ClubPointsRepository interface {
	DeleteBySeries(ctx context.Context, seriesID int64, clubID *int64) (int64, error)
	InsertBatch(ctx context.Context, rows []models.ClubRiderPoints) error
	ListBySeries(ctx context.Context, seriesID int64) ([]models.ClubRiderPoints, error)
}
