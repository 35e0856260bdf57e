package service

import (
	"context"
	"fmt"

	"github.com/yourusername/ranking-engine/internal/models"
	"github.com/yourusername/ranking-engine/internal/repository"
	"github.com/yourusername/ranking-engine/internal/scoring"
)

// eventData is the enriched source data of a set of events.
type eventData struct {
	results map[int64][]scoring.EnrichedResult
	riders  map[int64]*models.Rider
	classes []models.ClassDefinition
}

// loadEventData reads results, riders, classes and point scales for events
// and resolves every result's effective class and raw points.
func loadEventData(ctx context.Context, repos *repository.Repositories, tables *scoring.Tables, events []*models.Event) (*eventData, error) {
	data := &eventData{results: make(map[int64][]scoring.EnrichedResult, len(events))}
	if len(events) == 0 {
		return data, nil
	}

	eventIDs := make([]int64, 0, len(events))
	var scaleIDs []int64
	for _, event := range events {
		eventIDs = append(eventIDs, event.ID)
		if event.PointScaleID != nil {
			scaleIDs = append(scaleIDs, *event.PointScaleID)
		}
	}

	results, err := repos.Result.ListByEvents(ctx, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}

	seen := make(map[int64]bool)
	var riderIDs []int64
	for _, rs := range results {
		for _, r := range rs {
			if !seen[r.RiderID] {
				seen[r.RiderID] = true
				riderIDs = append(riderIDs, r.RiderID)
			}
		}
	}
	if data.riders, err = repos.Rider.GetByIDs(ctx, riderIDs); err != nil {
		return nil, fmt.Errorf("failed to load riders: %w", err)
	}
	if data.classes, err = repos.Class.ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to load classes: %w", err)
	}
	scales, err := repos.PointScale.GetByIDs(ctx, scaleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load point scales: %w", err)
	}

	enricher := scoring.NewEnricher(data.classes, tables)
	for _, event := range events {
		var lookup *scoring.ScaleLookup
		if event.PointScaleID != nil {
			lookup = scoring.NewScaleLookup(scales[*event.PointScaleID])
		}
		data.results[event.ID] = enricher.EnrichEvent(*event, results[event.ID], data.riders, lookup)
	}
	return data, nil
}

func eventSummaries(events []*models.Event) []models.EventSummary {
	summaries := make([]models.EventSummary, 0, len(events))
	for _, e := range events {
		summaries = append(summaries, models.EventSummary{ID: e.ID, Name: e.Name, Date: e.Date})
	}
	return summaries
}
