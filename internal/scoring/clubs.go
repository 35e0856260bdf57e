package scoring

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/yourusername/ranking-engine/internal/models"
)

var hundred = decimal.NewFromInt(100)

// ClubEntry is a club member's raw points at one event in one class.
type ClubEntry struct {
	RiderID int64
	ClubID  int64
	EventID int64
	ClassID int64
	Points  decimal.Decimal
}

// ClubTotal is a club's aggregated series result.
type ClubTotal struct {
	ClubID      int64
	EventScores []models.EventScore
	RidersCount int
	Total       decimal.Decimal
	Position    int
}

type clubGroupKey struct {
	clubID  int64
	eventID int64
	classID int64
}

// ClubPoints ranks riders inside each (club, event, class) and applies the
// percentage-by-rank table. Rows are ordered by club, event, class and rank.
func ClubPoints(entries []ClubEntry, seriesID int64, tables *Tables) ([]models.ClubRiderPoints, []Fallback) {
	groups := make(map[clubGroupKey][]ClubEntry)
	for _, e := range entries {
		key := clubGroupKey{clubID: e.ClubID, eventID: e.EventID, classID: e.ClassID}
		groups[key] = append(groups[key], e)
	}

	keys := make([]clubGroupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b clubGroupKey) int {
		if c := cmp.Compare(a.clubID, b.clubID); c != 0 {
			return c
		}
		if c := cmp.Compare(a.eventID, b.eventID); c != 0 {
			return c
		}
		return cmp.Compare(a.classID, b.classID)
	})

	var (
		rows      []models.ClubRiderPoints
		fallbacks []Fallback
	)
	for _, key := range keys {
		group := groups[key]
		slices.SortFunc(group, func(a, b ClubEntry) int {
			if c := b.Points.Cmp(a.Points); c != 0 {
				return c
			}
			return cmp.Compare(a.RiderID, b.RiderID)
		})
		for i, e := range group {
			rank := i + 1
			pct, ok := tables.ClubPercentage(rank)
			reason := ""
			if !ok {
				reason = models.FallbackMissingRankPercentage
				fallbacks = append(fallbacks, Fallback{
					Kind:    models.FallbackMissingRankPercentage,
					EventID: e.EventID,
					RiderID: e.RiderID,
					ClassID: e.ClassID,
					Detail:  fmt.Sprintf("no club percentage for rank %d, using 0%%", rank),
				})
			}
			rows = append(rows, models.ClubRiderPoints{
				RiderID:           e.RiderID,
				ClubID:            e.ClubID,
				EventID:           e.EventID,
				SeriesID:          seriesID,
				ClassID:           e.ClassID,
				OriginalPoints:    e.Points,
				RiderRankInClub:   rank,
				PercentageApplied: pct,
				ClubPoints:        e.Points.Mul(pct).Div(hundred).Round(2),
				TablesVersion:     tables.Version,
				FallbackReason:    reason,
			})
		}
	}
	return rows, fallbacks
}

// ClubStandings sums club points per club and labels positions. Event
// scores are ordered by event id; callers reorder by date when needed.
func ClubStandings(rows []models.ClubRiderPoints) []ClubTotal {
	type accumulator struct {
		total  decimal.Decimal
		events map[int64]decimal.Decimal
		riders map[int64]struct{}
	}
	perClub := make(map[int64]*accumulator)
	for _, row := range rows {
		acc, ok := perClub[row.ClubID]
		if !ok {
			acc = &accumulator{
				events: make(map[int64]decimal.Decimal),
				riders: make(map[int64]struct{}),
			}
			perClub[row.ClubID] = acc
		}
		acc.total = acc.total.Add(row.ClubPoints)
		acc.events[row.EventID] = acc.events[row.EventID].Add(row.ClubPoints)
		acc.riders[row.RiderID] = struct{}{}
	}

	totals := make([]ClubTotal, 0, len(perClub))
	for clubID, acc := range perClub {
		total := ClubTotal{
			ClubID:      clubID,
			RidersCount: len(acc.riders),
			Total:       acc.total,
		}
		for eventID, points := range acc.events {
			total.EventScores = append(total.EventScores, models.EventScore{
				EventID: eventID,
				Points:  points,
				Counted: true,
			})
		}
		slices.SortFunc(total.EventScores, func(a, b models.EventScore) int {
			return cmp.Compare(a.EventID, b.EventID)
		})
		totals = append(totals, total)
	}

	positions := RankByTotal(totals, func(t ClubTotal) RankKey {
		return RankKey{Total: t.Total, Count: len(t.EventScores), ID: t.ClubID}
	})
	for i := range totals {
		totals[i].Position = positions[i]
	}
	return totals
}
