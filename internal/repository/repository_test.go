package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ranking-engine/internal/database"
	"github.com/yourusername/ranking-engine/internal/models"
)

var errRollback = errors.New("rollback test data")

func TestNewRepositoriesRequiresDB(t *testing.T) {
	repos, err := NewRepositories(nil)
	assert.Error(t, err)
	assert.Nil(t, repos)
}

func TestParseDecimal(t *testing.T) {
	d, err := parseDecimal("points", "12.3450")
	require.NoError(t, err)
	assert.Equal(t, "12.345", d.String())

	_, err = parseDecimal("points", "NaN-ish")
	assert.ErrorContains(t, err, "points")

	none, err := parseNullDecimal("points", nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

// withSeed runs fn inside a transaction that is always rolled back, so
// integration tests leave no rows behind.
func withSeed(t *testing.T, fn func(ctx context.Context, db *database.DB, repos *Repositories)) {
	t.Helper()
	db := database.SetupTestDB(t)
	repos, err := NewRepositories(db)
	require.NoError(t, err)

	err = db.WithTransaction(context.Background(), func(ctx context.Context) error {
		fn(ctx, db, repos)
		return errRollback
	})
	require.ErrorIs(t, err, errRollback)
}

func seedExec(t *testing.T, ctx context.Context, db *database.DB, sql string, args ...any) int64 {
	t.Helper()
	var id int64
	require.NoError(t, db.Querier(ctx).QueryRow(ctx, sql+" RETURNING id", args...).Scan(&id))
	return id
}

func TestEventAndResultRepositories(t *testing.T) {
	withSeed(t, func(ctx context.Context, db *database.DB, repos *Repositories) {
		clubID := seedExec(t, ctx, db, `INSERT INTO clubs (name) VALUES ('CK Test')`)
		riderID := seedExec(t, ctx, db,
			`INSERT INTO riders (firstname, lastname, birth_year, gender, club_id) VALUES ('Anna', 'Berg', 1990, 'K', $1)`, clubID)
		eventID := seedExec(t, ctx, db,
			`INSERT INTO events (name, date, discipline, event_level) VALUES ('Opener', '2026-05-01', 'enduro', 'national')`)
		seedExec(t, ctx, db,
			`INSERT INTO results (rider_id, event_id, position, status, points, finish_time) VALUES ($1, $2, 1, 'finished', 100.50, 1234.5)`,
			riderID, eventID)

		event, err := repos.Event.GetByID(ctx, eventID)
		require.NoError(t, err)
		assert.Equal(t, "enduro", event.Discipline)
		assert.Equal(t, models.FormatSingleRun, event.Format)

		events, err := repos.Event.ListByDiscipline(ctx, "enduro",
			time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.NotEmpty(t, events)

		results, err := repos.Result.ListByEvent(ctx, eventID)
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.NotNil(t, results[0].Points)
		assert.Equal(t, "100.5", results[0].Points.String())

		riders, err := repos.Rider.GetByIDs(ctx, []int64{riderID})
		require.NoError(t, err)
		require.Contains(t, riders, riderID)
		assert.Equal(t, models.GenderFemale, riders[riderID].Gender)
		assert.Equal(t, "CK Test", riders[riderID].ClubName)
	})
}

func TestEventNotFound(t *testing.T) {
	withSeed(t, func(ctx context.Context, _ *database.DB, repos *Repositories) {
		_, err := repos.Event.GetByID(ctx, -1)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestRankingPointsRoundTripExactly(t *testing.T) {
	withSeed(t, func(ctx context.Context, _ *database.DB, repos *Repositories) {
		day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		point := models.RankingPoint{
			RiderID: 900001, EventID: 900001, ClassID: 900001, Discipline: "probe",
			EventDate: day, OriginalPoints: decimal.RequireFromString("87.125"), FieldSize: 12,
			FieldMultiplier: decimal.RequireFromString("0.9"), EventLevelMultiplier: decimal.NewFromInt(1),
			TimeMultiplier: decimal.NewFromInt(1), RankingPoints: decimal.RequireFromString("78.41"),
			AsOf: day, TablesVersion: "test",
		}

		require.NoError(t, repos.RankingPoint.InsertBatch(ctx, []models.RankingPoint{point}))

		stored, err := repos.RankingPoint.ListByDiscipline(ctx, "probe")
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.True(t, point.OriginalPoints.Equal(stored[0].OriginalPoints))
		assert.True(t, point.RankingPoints.Equal(stored[0].RankingPoints))

		deleted, err := repos.RankingPoint.DeleteByDiscipline(ctx, "probe")
		require.NoError(t, err)
		assert.EqualValues(t, 1, deleted)
	})
}

func TestSnapshotPreviousPositions(t *testing.T) {
	withSeed(t, func(ctx context.Context, _ *database.DB, repos *Repositories) {
		first := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		second := first.AddDate(0, 0, 1)
		row := models.RankingSnapshot{
			RunID: uuid.New(), RiderID: 900001, Discipline: "probe", SnapshotDate: first,
			TotalPoints: decimal.NewFromInt(50), EventsCount: 1, Position: 3,
		}
		require.NoError(t, repos.Snapshot.InsertBatch(ctx, []models.RankingSnapshot{row}))

		exists, err := repos.Snapshot.Exists(ctx, "probe", first)
		require.NoError(t, err)
		assert.True(t, exists)

		previous, err := repos.Snapshot.LatestPositionsBefore(ctx, "probe", second)
		require.NoError(t, err)
		assert.Equal(t, map[int64]int{900001: 3}, previous)

		none, err := repos.Snapshot.LatestPositionsBefore(ctx, "probe", first)
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestClubPointsDeleteScopedToClub(t *testing.T) {
	withSeed(t, func(ctx context.Context, _ *database.DB, repos *Repositories) {
		rows := []models.ClubRiderPoints{
			{RiderID: 1, ClubID: 10, EventID: 5, SeriesID: 900001, ClassID: 2, OriginalPoints: decimal.NewFromInt(100),
				RiderRankInClub: 1, PercentageApplied: decimal.NewFromInt(100), ClubPoints: decimal.NewFromInt(100), TablesVersion: "test"},
			{RiderID: 2, ClubID: 11, EventID: 5, SeriesID: 900001, ClassID: 2, OriginalPoints: decimal.NewFromInt(80),
				RiderRankInClub: 1, PercentageApplied: decimal.NewFromInt(100), ClubPoints: decimal.NewFromInt(80), TablesVersion: "test"},
		}
		require.NoError(t, repos.ClubPoints.InsertBatch(ctx, rows))

		club := int64(10)
		deleted, err := repos.ClubPoints.DeleteBySeries(ctx, 900001, &club)
		require.NoError(t, err)
		assert.EqualValues(t, 1, deleted)

		left, err := repos.ClubPoints.ListBySeries(ctx, 900001)
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.EqualValues(t, 11, left[0].ClubID)
	})
}

func TestClubPointsKeyedBySeries(t *testing.T) {
	withSeed(t, func(ctx context.Context, _ *database.DB, repos *Repositories) {
		row := models.ClubRiderPoints{RiderID: 1, ClubID: 10, EventID: 5, SeriesID: 900001, ClassID: 2,
			OriginalPoints: decimal.NewFromInt(100), RiderRankInClub: 1, PercentageApplied: decimal.NewFromInt(100),
			ClubPoints: decimal.NewFromInt(100), TablesVersion: "test"}
		moved := row
		moved.SeriesID = 900002

		require.NoError(t, repos.ClubPoints.InsertBatch(ctx, []models.ClubRiderPoints{row}))
		require.NoError(t, repos.ClubPoints.InsertBatch(ctx, []models.ClubRiderPoints{moved}))

		deleted, err := repos.ClubPoints.DeleteBySeries(ctx, 900002, nil)
		require.NoError(t, err)
		assert.EqualValues(t, 1, deleted)

		left, err := repos.ClubPoints.ListBySeries(ctx, 900001)
		require.NoError(t, err)
		assert.Len(t, left, 1)
	})
}
