package scoring

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ranking-engine/internal/models"
)

func awardingClass(id int64) *models.ClassDefinition {
	c := testClass(id, models.GenderAll, nil, nil)
	return &c
}

func enrichedFinisher(id, riderID int64, class *models.ClassDefinition, points string) EnrichedResult {
	er := EnrichedResult{
		Result:    models.Result{ID: id, RiderID: riderID, EventID: 1, Status: models.StatusFinished},
		Class:     class,
		Points:    dec(points),
		HasPoints: true,
	}
	if class != nil {
		er.ClassID = int64P(class.ID)
	}
	return er
}

func TestEventPointsSoleFinisher(t *testing.T) {
	asOf := date(2026, time.June, 1)
	event := models.Event{ID: 1, Date: date(2026, time.March, 1), Discipline: "enduro", Level: models.EventLevelNational}
	class := awardingClass(10)

	rows, fallbacks := NewCalculator(DefaultTables(), asOf).EventPoints(event, []EnrichedResult{
		enrichedFinisher(1, 100, class, "100"),
	})

	require.Len(t, rows, 1)
	assert.Empty(t, fallbacks)
	assert.Equal(t, 1, rows[0].FieldSize)
	assertDecimal(t, "1", rows[0].FieldMultiplier)
	assertDecimal(t, "1", rows[0].TimeMultiplier)
	assertDecimal(t, "100", rows[0].RankingPoints)
	assert.Equal(t, "default", rows[0].TablesVersion)
	assert.Equal(t, asOf, rows[0].AsOf)
}

func TestEventPointsMultipliers(t *testing.T) {
	asOf := date(2026, time.June, 1)
	class := awardingClass(10)
	results := []EnrichedResult{
		enrichedFinisher(1, 100, class, "100"),
		enrichedFinisher(2, 101, class, "77.77"),
		enrichedFinisher(3, 102, class, "0"),
	}
	dnf := enrichedFinisher(4, 103, class, "10")
	dnf.Status = models.StatusDNF
	results = append(results, dnf)

	recent := models.Event{ID: 1, Date: date(2026, time.January, 1), Discipline: "enduro", Level: models.EventLevelRegional}
	rows, _ := NewCalculator(DefaultTables(), asOf).EventPoints(recent, results)

	require.Len(t, rows, 2)
	assert.Equal(t, int64(100), rows[0].RiderID)
	assert.Equal(t, 3, rows[0].FieldSize)
	assertDecimal(t, "0.8", rows[0].FieldMultiplier)
	assertDecimal(t, "0.5", rows[0].EventLevelMultiplier)
	assertDecimal(t, "40", rows[0].RankingPoints)
	// 77.77 * 0.8 * 0.5 = 31.108
	assertDecimal(t, "31.11", rows[1].RankingPoints)

	older := recent
	older.Date = date(2025, time.February, 1)
	rows, _ = NewCalculator(DefaultTables(), asOf).EventPoints(older, results)
	require.Len(t, rows, 2)
	assertDecimal(t, "0.5", rows[0].TimeMultiplier)
	assertDecimal(t, "20", rows[0].RankingPoints)
}

func TestEventPointsExcludesOldResults(t *testing.T) {
	asOf := date(2026, time.June, 1)
	event := models.Event{ID: 1, Date: date(2024, time.May, 31), Discipline: "enduro", Level: models.EventLevelNational}

	rows, fallbacks := NewCalculator(DefaultTables(), asOf).EventPoints(event, []EnrichedResult{
		enrichedFinisher(1, 100, awardingClass(10), "100"),
	})

	assert.Empty(t, rows)
	assert.Empty(t, fallbacks)
}

func TestEventPointsEligibility(t *testing.T) {
	asOf := date(2026, time.June, 1)
	event := models.Event{ID: 1, Date: date(2026, time.May, 1), Discipline: "enduro", Level: models.EventLevelNational}
	noAward := awardingClass(11)
	noAward.AwardsPoints = false
	unknownPoints := enrichedFinisher(3, 102, awardingClass(10), "0")
	unknownPoints.HasPoints = false

	rows, _ := NewCalculator(DefaultTables(), asOf).EventPoints(event, []EnrichedResult{
		enrichedFinisher(1, 100, noAward, "50"),
		enrichedFinisher(2, 101, nil, "50"),
		unknownPoints,
	})

	assert.Empty(t, rows)
}

func TestEventPointsUnknownLevelFallback(t *testing.T) {
	asOf := date(2026, time.June, 1)
	event := models.Event{ID: 5, Date: date(2026, time.May, 1), Discipline: "enduro", Level: "continental"}

	rows, fallbacks := NewCalculator(DefaultTables(), asOf).EventPoints(event, []EnrichedResult{
		enrichedFinisher(1, 100, awardingClass(10), "60"),
	})

	require.Len(t, rows, 1)
	assertDecimal(t, "1", rows[0].EventLevelMultiplier)
	assert.Equal(t, models.FallbackUnknownEventLevel, rows[0].FallbackReason)
	require.Len(t, fallbacks, 1)
	assert.Equal(t, int64(5), fallbacks[0].EventID)
}

func TestEventPointsInjectedFieldCurve(t *testing.T) {
	asOf := date(2026, time.June, 1)
	event := models.Event{ID: 1, Date: date(2026, time.May, 1), Discipline: "enduro", Level: models.EventLevelNational}
	class := awardingClass(10)

	calc := NewCalculator(DefaultTables(), asOf).WithFieldMultiplier(func(int) decimal.Decimal {
		return dec("2")
	})
	rows, _ := calc.EventPoints(event, []EnrichedResult{enrichedFinisher(1, 100, class, "10")})

	require.Len(t, rows, 1)
	assertDecimal(t, "20", rows[0].RankingPoints)
}

func TestEventPointsIsIdempotent(t *testing.T) {
	asOf := time.Date(2026, time.June, 1, 8, 0, 0, 0, time.UTC)
	event := models.Event{ID: 1, Date: date(2025, time.October, 1), Discipline: "enduro", Level: models.EventLevelNational}
	class := awardingClass(10)
	results := []EnrichedResult{
		enrichedFinisher(2, 101, class, "33.33"),
		enrichedFinisher(1, 100, class, "50"),
	}

	first, _ := NewCalculator(DefaultTables(), asOf).EventPoints(event, results)
	second, _ := NewCalculator(DefaultTables(), asOf.Add(6*time.Hour)).EventPoints(event, results)

	assert.Equal(t, first, second)
}

func TestReage(t *testing.T) {
	stored := []models.RankingPoint{
		{RiderID: 1, EventID: 1, EventDate: date(2025, time.May, 1), OriginalPoints: dec("100"),
			FieldMultiplier: dec("1"), EventLevelMultiplier: dec("1.2"), TimeMultiplier: dec("1"), RankingPoints: dec("120")},
		{RiderID: 1, EventID: 2, EventDate: date(2024, time.May, 1), OriginalPoints: dec("80"),
			FieldMultiplier: dec("1"), EventLevelMultiplier: dec("1"), TimeMultiplier: dec("0.5"), RankingPoints: dec("40")},
		{RiderID: 2, EventID: 3, EventDate: date(2026, time.March, 1), OriginalPoints: dec("33.33"),
			FieldMultiplier: dec("1.1"), EventLevelMultiplier: dec("1"), TimeMultiplier: dec("1"), RankingPoints: dec("36.66")},
	}

	aged := NewCalculator(DefaultTables(), date(2026, time.June, 15)).Reage(stored)

	require.Len(t, aged, 2)
	assert.Equal(t, int64(1), aged[0].EventID)
	assertDecimal(t, "0.5", aged[0].TimeMultiplier)
	assertDecimal(t, "60", aged[0].RankingPoints)
	assert.Equal(t, int64(3), aged[1].EventID)
	assertDecimal(t, "36.66", aged[1].RankingPoints)
	assertDecimal(t, "120", stored[0].RankingPoints)
}

func TestRankRiders(t *testing.T) {
	points := []models.RankingPoint{
		{RiderID: 3, EventID: 1, RankingPoints: dec("30")},
		{RiderID: 1, EventID: 1, RankingPoints: dec("25")},
		{RiderID: 1, EventID: 2, RankingPoints: dec("25")},
		{RiderID: 2, EventID: 1, RankingPoints: dec("50")},
	}

	entries := RankRiders(points)

	require.Len(t, entries, 3)
	assert.Equal(t, int64(1), entries[0].RiderID)
	assert.Equal(t, 2, entries[0].EventsCount)
	assert.Equal(t, int64(2), entries[1].RiderID)
	assert.Equal(t, []int{1, 1, 3}, []int{entries[0].Position, entries[1].Position, entries[2].Position})
}

func TestBuildSnapshots(t *testing.T) {
	runID := uuid.New()
	entries := []models.RankingEntry{
		{RiderID: 1, TotalPoints: dec("90"), EventsCount: 3, Position: 1},
		{RiderID: 2, TotalPoints: dec("80"), EventsCount: 2, Position: 2},
	}

	snapshots := BuildSnapshots(runID, "enduro", time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC), entries, map[int64]int{1: 4, 2: 2})

	require.Len(t, snapshots, 2)
	assert.Equal(t, runID, snapshots[0].RunID)
	assert.Equal(t, date(2026, time.June, 1), snapshots[0].SnapshotDate)
	require.NotNil(t, snapshots[0].PositionChange)
	assert.Equal(t, 3, *snapshots[0].PositionChange)
	assert.Equal(t, 4, *snapshots[0].PreviousPosition)
	assert.Equal(t, 0, *snapshots[1].PositionChange)

	fresh := BuildSnapshots(runID, "enduro", date(2026, time.June, 1), entries, nil)
	assert.Nil(t, fresh[0].PreviousPosition)
	assert.Nil(t, fresh[0].PositionChange)
}
