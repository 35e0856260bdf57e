package scoring

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/yourusername/ranking-engine/internal/models"
)

// EnrichedResult is a result with its effective class and raw points.
// The stored Result is never modified.
type EnrichedResult struct {
	models.Result
	ClassID   *int64
	Class     *models.ClassDefinition
	Points    decimal.Decimal
	HasPoints bool
}

// Enricher derives effective class and raw points for an event's results.
type Enricher struct {
	classes []models.ClassDefinition
	index   ClassIndex
	tables  *Tables
}

// NewEnricher builds an Enricher over the current class table.
func NewEnricher(classes []models.ClassDefinition, tables *Tables) *Enricher {
	return &Enricher{
		classes: classes,
		index:   NewClassIndex(classes),
		tables:  tables,
	}
}

// EnrichEvent resolves every result of event. Classes are resolved as of the
// event date; a stored class_id always wins. Raw points come from the result
// when present, otherwise from scale (nil when the event has none).
func (e *Enricher) EnrichEvent(event models.Event, results []models.Result, riders map[int64]*models.Rider, scale *ScaleLookup) []EnrichedResult {
	enriched := make([]EnrichedResult, len(results))
	for i, r := range results {
		er := EnrichedResult{Result: r}
		er.ClassID = e.effectiveClass(event, r, riders[r.RiderID])
		if er.ClassID != nil {
			if class, ok := e.index[*er.ClassID]; ok {
				er.Class = &class
			}
		}
		enriched[i] = er
	}

	var run1, run2 map[int64]int
	if event.Format.IsTwoRun() {
		run1 = runPositions(enriched, func(r models.Result) *float64 { return r.Run1Time })
		run2 = runPositions(enriched, func(r models.Result) *float64 { return r.Run2Time })
	}

	for i := range enriched {
		er := &enriched[i]
		switch {
		case er.Result.Points != nil:
			er.Points, er.HasPoints = *er.Result.Points, true
		case scale == nil:
			er.HasPoints = false
		case !er.IsFinished():
			er.Points, er.HasPoints = decimal.Zero, true
		case event.Format.IsTwoRun():
			er.Points = scale.TwoRunPoints(event.Format, intPtr(run1, er.ID), intPtr(run2, er.ID))
			er.HasPoints = true
		case er.Position != nil:
			er.Points, er.HasPoints = scale.Points(*er.Position), true
		default:
			er.Points, er.HasPoints = decimal.Zero, true
		}
	}
	return enriched
}

func (e *Enricher) effectiveClass(event models.Event, r models.Result, rider *models.Rider) *int64 {
	if r.ClassID != nil {
		id := *r.ClassID
		return &id
	}
	if rider == nil {
		return nil
	}
	q := ClassQuery{
		BirthYear:  rider.BirthYear,
		Gender:     rider.Gender,
		AsOf:       event.Date,
		Discipline: event.Discipline,
	}
	if e.tables != nil {
		q.Eligible = e.tables.LicensePredicate(rider, event.Date)
	}
	id, ok := ResolveClass(e.classes, q)
	if !ok {
		return nil
	}
	return &id
}

// runPositions orders finished results with a run time within each effective
// class and labels them by ascending time. Equal times share a position.
func runPositions(results []EnrichedResult, runTime func(models.Result) *float64) map[int64]int {
	groups := make(map[int64][]EnrichedResult)
	for _, r := range results {
		if r.ClassID == nil || !r.IsFinished() || runTime(r.Result) == nil {
			continue
		}
		groups[*r.ClassID] = append(groups[*r.ClassID], r)
	}

	positions := make(map[int64]int)
	for _, group := range groups {
		slices.SortStableFunc(group, func(a, b EnrichedResult) int {
			if c := cmp.Compare(*runTime(a.Result), *runTime(b.Result)); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
		labels := AssignPositions(len(group), func(i int) bool {
			return *runTime(group[i].Result) == *runTime(group[i-1].Result)
		})
		for i, r := range group {
			positions[r.ID] = labels[i]
		}
	}
	return positions
}

func intPtr(m map[int64]int, key int64) *int {
	v, ok := m[key]
	if !ok {
		return nil
	}
	return &v
}
