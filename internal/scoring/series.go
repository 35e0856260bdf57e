package scoring

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/ranking-engine/internal/models"
)

// SeriesEntry is one qualifying result of a rider in a series.
type SeriesEntry struct {
	RiderID   int64
	EventID   int64
	EventDate time.Time
	ClassID   int64
	Points    decimal.Decimal
	Position  *int
}

// RiderTotal is a rider's aggregated series result.
type RiderTotal struct {
	RiderID         int64
	EventScores     []models.EventScore
	CountedEventIDs []int64
	Total           decimal.Decimal
	Position        int
}

// QualifiesForSeries reports whether an enriched result counts in series
// standings and club points.
func QualifiesForSeries(r EnrichedResult) bool {
	return r.IsFinished() && r.HasPoints && r.Class != nil && r.Class.SeriesEligible
}

// AggregateSeries applies the best-N rule per rider and labels positions.
// A nil bestN counts every event. The result is ordered by position.
func AggregateSeries(entries []SeriesEntry, bestN *int) []RiderTotal {
	perRider := make(map[int64]map[int64]SeriesEntry)
	for _, e := range entries {
		events, ok := perRider[e.RiderID]
		if !ok {
			events = make(map[int64]SeriesEntry)
			perRider[e.RiderID] = events
		}
		if current, seen := events[e.EventID]; !seen || e.Points.GreaterThan(current.Points) {
			events[e.EventID] = e
		}
	}

	totals := make([]RiderTotal, 0, len(perRider))
	for riderID, events := range perRider {
		totals = append(totals, riderTotal(riderID, events, bestN))
	}

	positions := RankByTotal(totals, func(t RiderTotal) RankKey {
		return RankKey{Total: t.Total, Count: len(t.CountedEventIDs), ID: t.RiderID}
	})
	for i := range totals {
		totals[i].Position = positions[i]
	}
	return totals
}

func riderTotal(riderID int64, events map[int64]SeriesEntry, bestN *int) RiderTotal {
	scores := make([]SeriesEntry, 0, len(events))
	for _, e := range events {
		scores = append(scores, e)
	}
	slices.SortFunc(scores, func(a, b SeriesEntry) int {
		if c := b.Points.Cmp(a.Points); c != 0 {
			return c
		}
		if c := a.EventDate.Compare(b.EventDate); c != 0 {
			return c
		}
		return cmp.Compare(a.EventID, b.EventID)
	})

	kept := len(scores)
	if bestN != nil && *bestN < kept {
		kept = *bestN
	}

	total := RiderTotal{RiderID: riderID, Total: decimal.Zero}
	counted := make(map[int64]bool, kept)
	for _, e := range scores[:kept] {
		total.Total = total.Total.Add(e.Points)
		total.CountedEventIDs = append(total.CountedEventIDs, e.EventID)
		counted[e.EventID] = true
	}
	if total.CountedEventIDs == nil {
		total.CountedEventIDs = []int64{}
	}

	slices.SortFunc(scores, func(a, b SeriesEntry) int {
		if c := a.EventDate.Compare(b.EventDate); c != 0 {
			return c
		}
		return cmp.Compare(a.EventID, b.EventID)
	})
	total.EventScores = make([]models.EventScore, 0, len(scores))
	for _, e := range scores {
		total.EventScores = append(total.EventScores, models.EventScore{
			EventID:  e.EventID,
			Points:   e.Points,
			Position: e.Position,
			Counted:  counted[e.EventID],
		})
	}
	return total
}
