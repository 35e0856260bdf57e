package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesEntry(riderID, eventID int64, day int, points string) SeriesEntry {
	return SeriesEntry{
		RiderID:   riderID,
		EventID:   eventID,
		EventDate: date(2026, time.May, day),
		ClassID:   1,
		Points:    dec(points),
	}
}

func TestAggregateSeriesBestN(t *testing.T) {
	entries := []SeriesEntry{
		seriesEntry(1, 10, 1, "100"),
		seriesEntry(1, 11, 8, "90"),
		seriesEntry(1, 12, 15, "80"),
	}

	totals := AggregateSeries(entries, intP(2))

	require.Len(t, totals, 1)
	assertDecimal(t, "190", totals[0].Total)
	assert.ElementsMatch(t, []int64{10, 11}, totals[0].CountedEventIDs)
	require.Len(t, totals[0].EventScores, 3)
	assert.Equal(t, int64(10), totals[0].EventScores[0].EventID)
	assert.True(t, totals[0].EventScores[1].Counted)
	assert.False(t, totals[0].EventScores[2].Counted)
}

func TestAggregateSeriesCountedLength(t *testing.T) {
	entries := []SeriesEntry{
		seriesEntry(1, 10, 1, "10"),
		seriesEntry(1, 11, 2, "20"),
		seriesEntry(1, 12, 3, "30"),
		seriesEntry(1, 13, 4, "40"),
		seriesEntry(2, 10, 1, "50"),
		seriesEntry(3, 10, 1, "5"),
		seriesEntry(3, 11, 2, "5"),
	}

	for _, n := range []int{1, 2, 3, 5} {
		totals := AggregateSeries(entries, intP(n))
		events := map[int64]int{1: 4, 2: 1, 3: 2}
		for _, total := range totals {
			assert.Len(t, total.CountedEventIDs, min(n, events[total.RiderID]), "rider %d best %d", total.RiderID, n)
		}
	}

	all := AggregateSeries(entries, nil)
	for _, total := range all {
		if total.RiderID == 1 {
			assertDecimal(t, "100", total.Total)
			assert.Len(t, total.CountedEventIDs, 4)
		}
	}
}

func TestAggregateSeriesTies(t *testing.T) {
	entries := []SeriesEntry{
		seriesEntry(3, 10, 1, "30"),
		seriesEntry(2, 10, 1, "50"),
		seriesEntry(1, 10, 1, "25"),
		seriesEntry(1, 11, 2, "25"),
	}

	totals := AggregateSeries(entries, nil)

	require.Len(t, totals, 3)
	// rider 1 has more counted events and is listed first among the tie
	assert.Equal(t, []int64{1, 2, 3}, []int64{totals[0].RiderID, totals[1].RiderID, totals[2].RiderID})
	assert.Equal(t, []int{1, 1, 3}, []int{totals[0].Position, totals[1].Position, totals[2].Position})
}

func TestAggregateSeriesKeepsBestScorePerEvent(t *testing.T) {
	entries := []SeriesEntry{
		seriesEntry(1, 10, 1, "40"),
		seriesEntry(1, 10, 1, "70"),
		seriesEntry(1, 11, 2, "10"),
	}

	totals := AggregateSeries(entries, nil)

	require.Len(t, totals, 1)
	assertDecimal(t, "80", totals[0].Total)
	assert.Len(t, totals[0].EventScores, 2)
}

func TestAggregateSeriesEqualPointsCountedByDate(t *testing.T) {
	entries := []SeriesEntry{
		seriesEntry(1, 12, 20, "50"),
		seriesEntry(1, 11, 10, "50"),
		seriesEntry(1, 10, 30, "50"),
	}

	totals := AggregateSeries(entries, intP(2))

	assert.Equal(t, []int64{11, 12}, totals[0].CountedEventIDs)
	assertDecimal(t, "100", totals[0].Total)
}
