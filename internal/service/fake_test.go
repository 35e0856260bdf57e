package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/ranking-engine/internal/database"
	"github.com/yourusername/ranking-engine/internal/models"
	"github.com/yourusername/ranking-engine/internal/repository"
	"github.com/yourusername/ranking-engine/internal/scoring"
)

// memStore is an in-memory stand-in for the PostgreSQL tables.
type memStore struct {
	mu            sync.Mutex
	events        map[int64]*models.Event
	series        map[int64]*models.Series
	results       []models.Result
	riders        map[int64]*models.Rider
	clubs         map[int64]*models.Club
	classes       []models.ClassDefinition
	scales        map[int64]*models.PointScale
	rankingPoints []models.RankingPoint
	snapshots     []models.RankingSnapshot
	clubPoints    []models.ClubRiderPoints
}

type derivedState struct {
	rankingPoints []models.RankingPoint
	snapshots     []models.RankingSnapshot
	clubPoints    []models.ClubRiderPoints
}

func (s *memStore) saveDerived() derivedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return derivedState{
		rankingPoints: slices.Clone(s.rankingPoints),
		snapshots:     slices.Clone(s.snapshots),
		clubPoints:    slices.Clone(s.clubPoints),
	}
}

func (s *memStore) restoreDerived(state derivedState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rankingPoints = state.rankingPoints
	s.snapshots = state.snapshots
	s.clubPoints = state.clubPoints
}

func (s *memStore) repositories() *repository.Repositories {
	return &repository.Repositories{
		Event:        fakeEvents{s},
		Series:       fakeSeries{s},
		Result:       fakeResults{s},
		Rider:        fakeRiders{s},
		Club:         fakeClubs{s},
		Class:        fakeClasses{s},
		PointScale:   fakeScales{s},
		RankingPoint: fakeRankingPoints{s},
		Snapshot:     fakeSnapshots{s},
		ClubPoints:   fakeClubPoints{s},
	}
}

type fakeEvents struct{ s *memStore }

func (f fakeEvents) GetByID(_ context.Context, id int64) (*models.Event, error) {
	if e, ok := f.s.events[id]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %d", models.ErrEventNotFound, id)
}

func (f fakeEvents) ListByDiscipline(_ context.Context, discipline string, from, to time.Time) ([]*models.Event, error) {
	return f.filter(func(e *models.Event) bool {
		return e.Discipline == discipline && !e.Date.Before(from) && !e.Date.After(to)
	}), nil
}

func (f fakeEvents) ListBySeries(_ context.Context, seriesID int64) ([]*models.Event, error) {
	return f.filter(func(e *models.Event) bool {
		return e.SeriesID != nil && *e.SeriesID == seriesID
	}), nil
}

func (f fakeEvents) filter(keep func(*models.Event) bool) []*models.Event {
	var out []*models.Event
	for _, e := range f.s.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b *models.Event) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

type fakeSeries struct{ s *memStore }

func (f fakeSeries) GetByID(_ context.Context, id int64) (*models.Series, error) {
	if series, ok := f.s.series[id]; ok {
		return series, nil
	}
	return nil, fmt.Errorf("%w: %d", models.ErrSeriesNotFound, id)
}

type fakeResults struct{ s *memStore }

func (f fakeResults) ListByEvent(ctx context.Context, eventID int64) ([]models.Result, error) {
	grouped, err := f.ListByEvents(ctx, []int64{eventID})
	return grouped[eventID], err
}

func (f fakeResults) ListByEvents(_ context.Context, eventIDs []int64) (map[int64][]models.Result, error) {
	grouped := make(map[int64][]models.Result)
	for _, r := range f.s.results {
		if slices.Contains(eventIDs, r.EventID) {
			grouped[r.EventID] = append(grouped[r.EventID], r)
		}
	}
	return grouped, nil
}

type fakeRiders struct{ s *memStore }

func (f fakeRiders) GetByIDs(_ context.Context, ids []int64) (map[int64]*models.Rider, error) {
	out := make(map[int64]*models.Rider)
	for _, id := range ids {
		if r, ok := f.s.riders[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

type fakeClubs struct{ s *memStore }

func (f fakeClubs) GetByIDs(_ context.Context, ids []int64) (map[int64]*models.Club, error) {
	out := make(map[int64]*models.Club)
	for _, id := range ids {
		if c, ok := f.s.clubs[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

type fakeClasses struct{ s *memStore }

func (f fakeClasses) ListAll(context.Context) ([]models.ClassDefinition, error) {
	return slices.Clone(f.s.classes), nil
}

type fakeScales struct{ s *memStore }

func (f fakeScales) GetByIDs(_ context.Context, ids []int64) (map[int64]*models.PointScale, error) {
	out := make(map[int64]*models.PointScale)
	for _, id := range ids {
		if scale, ok := f.s.scales[id]; ok {
			out[id] = scale
		}
	}
	return out, nil
}

type fakeRankingPoints struct{ s *memStore }

func (f fakeRankingPoints) DeleteByDiscipline(_ context.Context, discipline string) (int64, error) {
	return f.delete(func(p models.RankingPoint) bool { return p.Discipline == discipline }), nil
}

func (f fakeRankingPoints) DeleteByEvent(_ context.Context, eventID int64) (int64, error) {
	return f.delete(func(p models.RankingPoint) bool { return p.EventID == eventID }), nil
}

func (f fakeRankingPoints) delete(match func(models.RankingPoint) bool) int64 {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	before := len(f.s.rankingPoints)
	f.s.rankingPoints = slices.DeleteFunc(f.s.rankingPoints, match)
	return int64(before - len(f.s.rankingPoints))
}

func (f fakeRankingPoints) InsertBatch(_ context.Context, points []models.RankingPoint) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.rankingPoints = append(f.s.rankingPoints, points...)
	return nil
}

func (f fakeRankingPoints) ListByDiscipline(_ context.Context, discipline string) ([]models.RankingPoint, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.RankingPoint
	for _, p := range f.s.rankingPoints {
		if p.Discipline == discipline {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b models.RankingPoint) int {
		if c := cmp.Compare(a.RiderID, b.RiderID); c != 0 {
			return c
		}
		if c := cmp.Compare(a.EventID, b.EventID); c != 0 {
			return c
		}
		return cmp.Compare(a.ClassID, b.ClassID)
	})
	return out, nil
}

type fakeSnapshots struct{ s *memStore }

func (f fakeSnapshots) Exists(_ context.Context, discipline string, date time.Time) (bool, error) {
	for _, row := range f.s.snapshots {
		if row.Discipline == discipline && row.SnapshotDate.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeSnapshots) LatestPositionsBefore(_ context.Context, discipline string, date time.Time) (map[int64]int, error) {
	var latest time.Time
	for _, row := range f.s.snapshots {
		if row.Discipline == discipline && row.SnapshotDate.Before(date) && row.SnapshotDate.After(latest) {
			latest = row.SnapshotDate
		}
	}
	positions := make(map[int64]int)
	for _, row := range f.s.snapshots {
		if row.Discipline == discipline && row.SnapshotDate.Equal(latest) {
			positions[row.RiderID] = row.Position
		}
	}
	return positions, nil
}

func (f fakeSnapshots) InsertBatch(_ context.Context, rows []models.RankingSnapshot) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.snapshots = append(f.s.snapshots, rows...)
	return nil
}

func (f fakeSnapshots) ListByDate(_ context.Context, discipline string, date time.Time) ([]models.RankingSnapshot, error) {
	var out []models.RankingSnapshot
	for _, row := range f.s.snapshots {
		if row.Discipline == discipline && row.SnapshotDate.Equal(date) {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeClubPoints struct{ s *memStore }

func (f fakeClubPoints) DeleteBySeries(_ context.Context, seriesID int64, clubID *int64) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	before := len(f.s.clubPoints)
	f.s.clubPoints = slices.DeleteFunc(f.s.clubPoints, func(c models.ClubRiderPoints) bool {
		return c.SeriesID == seriesID && (clubID == nil || c.ClubID == *clubID)
	})
	return int64(before - len(f.s.clubPoints)), nil
}

type clubPointsKey struct {
	series, rider, club, event, class int64
}

func clubKey(c models.ClubRiderPoints) clubPointsKey {
	return clubPointsKey{c.SeriesID, c.RiderID, c.ClubID, c.EventID, c.ClassID}
}

// InsertBatch enforces the club_rider_points primary key.
func (f fakeClubPoints) InsertBatch(_ context.Context, rows []models.ClubRiderPoints) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	seen := make(map[clubPointsKey]bool, len(f.s.clubPoints)+len(rows))
	for _, c := range f.s.clubPoints {
		seen[clubKey(c)] = true
	}
	for _, c := range rows {
		if seen[clubKey(c)] {
			return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
		}
		seen[clubKey(c)] = true
	}
	f.s.clubPoints = append(f.s.clubPoints, rows...)
	return nil
}

func (f fakeClubPoints) ListBySeries(_ context.Context, seriesID int64) ([]models.ClubRiderPoints, error) {
	var out []models.ClubRiderPoints
	for _, c := range f.s.clubPoints {
		if c.SeriesID == seriesID {
			out = append(out, c)
		}
	}
	return out, nil
}

// fakeTx restores derived tables when fn fails, like a rolled back transaction.
type fakeTx struct {
	store *memStore
	locks []string
	inTx  bool
}

func (f *fakeTx) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	if f.inTx {
		return fn(ctx)
	}
	saved := f.store.saveDerived()
	f.inTx = true
	defer func() { f.inTx = false }()
	if err := fn(ctx); err != nil {
		f.store.restoreDerived(saved)
		return err
	}
	return nil
}

func (f *fakeTx) WithSnapshot(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (f *fakeTx) AcquireScopeLock(_ context.Context, scope string) error {
	if !f.inTx {
		return database.ErrNoTransaction
	}
	f.locks = append(f.locks, scope)
	return nil
}

// MockTxRunner mocks the transaction runner and runs fn directly
type MockTxRunner struct {
	mock.Mock
}

func (m *MockTxRunner) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	if err := m.Called(ctx).Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

func (m *MockTxRunner) WithSnapshot(ctx context.Context, fn func(context.Context) error) error {
	if err := m.Called(ctx).Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

func (m *MockTxRunner) AcquireScopeLock(ctx context.Context, scope string) error {
	return m.Called(ctx, scope).Error(0)
}

type staticTables struct{ tables *scoring.Tables }

func (s staticTables) Current() *scoring.Tables { return s.tables }

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func testLogger() *logrus.Logger {
	log, _ := test.NewNullLogger()
	return log
}

func ptr[T any](v T) *T { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Reference fixture, computed as of 2026-06-15:
//
//	event 101 2026-05-01 national, series 7: riders 1/2/3 with 100/80/60 stored points
//	event 102 2025-03-01 unknown level, no series: rider 1 with 50 points, sole finisher
//	event 103 2024-01-01 national: outside the 24 month window
//	event 104 2026-05-20 regional, series 7, scale 1: rider 2 first, rider 1 second, rider 3 dnf
const (
	testSeriesID = int64(7)
	clubAlpha    = int64(10)
	clubBeta     = int64(11)
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func newFixture() *memStore {
	series := testSeriesID
	scale := int64(1)
	male := models.GenderMale

	return &memStore{
		series: map[int64]*models.Series{
			testSeriesID: {ID: testSeriesID, Name: "Enduro Cup 2026", Year: 2026, Discipline: "enduro"},
		},
		events: map[int64]*models.Event{
			101: {ID: 101, Name: "Opener", Date: day(2026, 5, 1), Discipline: "enduro", SeriesID: &series,
				Level: models.EventLevelNational, Format: models.FormatSingleRun},
			102: {ID: 102, Name: "Invitational", Date: day(2025, 3, 1), Discipline: "enduro",
				Level: "invitational", Format: models.FormatSingleRun},
			103: {ID: 103, Name: "Old Race", Date: day(2024, 1, 1), Discipline: "enduro",
				Level: models.EventLevelNational, Format: models.FormatSingleRun},
			104: {ID: 104, Name: "Round Two", Date: day(2026, 5, 20), Discipline: "enduro", SeriesID: &series,
				Level: models.EventLevelRegional, Format: models.FormatSingleRun, PointScaleID: &scale},
		},
		riders: map[int64]*models.Rider{
			1: {ID: 1, FirstName: "Erik", LastName: "Lind", BirthYear: ptr(1990), Gender: male, ClubID: ptr(clubAlpha), ClubName: "CK Alpha"},
			2: {ID: 2, FirstName: "Olof", LastName: "Sand", BirthYear: ptr(1992), Gender: male, ClubID: ptr(clubAlpha), ClubName: "CK Alpha"},
			3: {ID: 3, FirstName: "Nils", LastName: "Berg", BirthYear: ptr(1985), Gender: male, ClubID: ptr(clubBeta), ClubName: "CK Beta"},
		},
		clubs: map[int64]*models.Club{
			clubAlpha: {ID: clubAlpha, Name: "CK Alpha"},
			clubBeta:  {ID: clubBeta, Name: "CK Beta"},
		},
		classes: []models.ClassDefinition{
			{ID: 1, Name: "Men Open", Gender: models.GenderMale, Disciplines: []string{"enduro"}, SortOrder: 1,
				Active: true, AwardsPoints: true, SeriesEligible: true, RankingType: models.RankingByTime},
		},
		scales: map[int64]*models.PointScale{
			1: {ID: 1, Name: "Standard", Active: true, Values: []models.PointScaleValue{
				{Position: 1, Points: dec("100")},
				{Position: 2, Points: dec("80")},
			}},
		},
		results: []models.Result{
			{ID: 1, RiderID: 1, EventID: 101, Position: ptr(1), Status: models.StatusFinished, Points: ptr(dec("100"))},
			{ID: 2, RiderID: 2, EventID: 101, Position: ptr(2), Status: models.StatusFinished, Points: ptr(dec("80"))},
			{ID: 3, RiderID: 3, EventID: 101, Position: ptr(3), Status: models.StatusFinished, Points: ptr(dec("60"))},
			{ID: 4, RiderID: 1, EventID: 102, Position: ptr(1), Status: models.StatusFinished, Points: ptr(dec("50"))},
			{ID: 5, RiderID: 1, EventID: 103, Position: ptr(1), Status: models.StatusFinished, Points: ptr(dec("100"))},
			{ID: 6, RiderID: 2, EventID: 104, Position: ptr(1), Status: models.StatusFinished},
			{ID: 7, RiderID: 1, EventID: 104, Position: ptr(2), Status: models.StatusFinished},
			{ID: 8, RiderID: 3, EventID: 104, Status: models.StatusDNF},
		},
	}
}
