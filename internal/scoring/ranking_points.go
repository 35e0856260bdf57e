package scoring

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/ranking-engine/internal/models"
)

// Fallback records a computation that used a configuration default.
type Fallback struct {
	Kind    string
	EventID int64
	RiderID int64
	ClassID int64
	Detail  string
}

// Calculator turns enriched results into ranking point rows as of one day.
type Calculator struct {
	tables *Tables
	asOf   time.Time
	field  FieldMultiplierFunc
}

// NewCalculator returns a Calculator using the field curve from tables.
func NewCalculator(tables *Tables, asOf time.Time) *Calculator {
	return &Calculator{
		tables: tables,
		asOf:   Day(asOf),
		field:  StepFieldMultiplier(tables.Field),
	}
}

// WithFieldMultiplier replaces the field size curve.
func (c *Calculator) WithFieldMultiplier(f FieldMultiplierFunc) *Calculator {
	c.field = f
	return c
}

// AsOf returns the computation day.
func (c *Calculator) AsOf() time.Time {
	return c.asOf
}

// EventPoints computes the ranking point rows of one event.
// Results outside the window, unfinished, without positive points or in a
// class that does not award points produce no row.
func (c *Calculator) EventPoints(event models.Event, results []EnrichedResult) ([]models.RankingPoint, []Fallback) {
	timeMultiplier, inWindow := c.tables.TimeMultiplier(event.Date, c.asOf)
	if !inWindow {
		return nil, nil
	}

	var fallbacks []Fallback
	levelMultiplier, known := c.tables.LevelMultiplier(event.Level)
	reason := ""
	if !known {
		reason = models.FallbackUnknownEventLevel
		fallbacks = append(fallbacks, Fallback{
			Kind:    models.FallbackUnknownEventLevel,
			EventID: event.ID,
			Detail:  fmt.Sprintf("event level %q has no multiplier, using 1.0", event.Level),
		})
	}

	fieldSizes := make(map[int64]int)
	for _, r := range results {
		if r.ClassID != nil && r.IsFinished() {
			fieldSizes[*r.ClassID]++
		}
	}

	var rows []models.RankingPoint
	for _, r := range results {
		if !r.IsFinished() || !r.HasPoints || !r.Points.IsPositive() {
			continue
		}
		if r.Class == nil || !r.Class.AwardsPoints {
			continue
		}
		fieldSize := fieldSizes[*r.ClassID]
		fieldMultiplier := c.field(fieldSize)
		rows = append(rows, models.RankingPoint{
			RiderID:              r.RiderID,
			EventID:              event.ID,
			ClassID:              *r.ClassID,
			Discipline:           event.Discipline,
			EventDate:            Day(event.Date),
			OriginalPoints:       r.Points,
			FieldSize:            fieldSize,
			FieldMultiplier:      fieldMultiplier,
			EventLevelMultiplier: levelMultiplier,
			TimeMultiplier:       timeMultiplier,
			RankingPoints: r.Points.
				Mul(fieldMultiplier).
				Mul(levelMultiplier).
				Mul(timeMultiplier).
				Round(2),
			AsOf:           c.asOf,
			TablesVersion:  c.tables.Version,
			FallbackReason: reason,
		})
	}

	slices.SortFunc(rows, func(a, b models.RankingPoint) int {
		if c := cmp.Compare(a.RiderID, b.RiderID); c != 0 {
			return c
		}
		return cmp.Compare(a.ClassID, b.ClassID)
	})
	if len(rows) == 0 {
		return nil, fallbacks
	}
	return rows, fallbacks
}

// Reage applies the time decay of the computation day to stored rows.
// Rows whose event has left the window are dropped.
func (c *Calculator) Reage(points []models.RankingPoint) []models.RankingPoint {
	aged := make([]models.RankingPoint, 0, len(points))
	for _, p := range points {
		timeMultiplier, inWindow := c.tables.TimeMultiplier(p.EventDate, c.asOf)
		if !inWindow {
			continue
		}
		if !timeMultiplier.Equal(p.TimeMultiplier) {
			p.TimeMultiplier = timeMultiplier
			p.RankingPoints = p.OriginalPoints.
				Mul(p.FieldMultiplier).
				Mul(p.EventLevelMultiplier).
				Mul(timeMultiplier).
				Round(2)
		}
		aged = append(aged, p)
	}
	return aged
}

// RankRiders sums ranking points per rider and labels positions.
func RankRiders(points []models.RankingPoint) []models.RankingEntry {
	byRider := make(map[int64]*models.RankingEntry)
	for _, p := range points {
		entry, ok := byRider[p.RiderID]
		if !ok {
			entry = &models.RankingEntry{RiderID: p.RiderID}
			byRider[p.RiderID] = entry
		}
		entry.TotalPoints = entry.TotalPoints.Add(p.RankingPoints)
		entry.EventsCount++
	}

	entries := make([]models.RankingEntry, 0, len(byRider))
	for _, entry := range byRider {
		entries = append(entries, *entry)
	}
	positions := RankByTotal(entries, func(e models.RankingEntry) RankKey {
		return RankKey{Total: e.TotalPoints, Count: e.EventsCount, ID: e.RiderID}
	})
	for i := range entries {
		entries[i].Position = positions[i]
	}
	return entries
}

// BuildSnapshots converts a ranking into snapshot rows. previous maps rider
// id to the position in the latest earlier snapshot of the discipline.
func BuildSnapshots(runID uuid.UUID, discipline string, date time.Time, entries []models.RankingEntry, previous map[int64]int) []models.RankingSnapshot {
	snapshots := make([]models.RankingSnapshot, 0, len(entries))
	for _, e := range entries {
		s := models.RankingSnapshot{
			RunID:        runID,
			RiderID:      e.RiderID,
			Discipline:   discipline,
			SnapshotDate: Day(date),
			TotalPoints:  e.TotalPoints,
			EventsCount:  e.EventsCount,
			Position:     e.Position,
		}
		if prev, ok := previous[e.RiderID]; ok {
			change := prev - e.Position
			s.PreviousPosition = &prev
			s.PositionChange = &change
		}
		snapshots = append(snapshots, s)
	}
	return snapshots
}
