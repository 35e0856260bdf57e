package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/ranking-engine/internal/logger"
	"github.com/yourusername/ranking-engine/internal/metrics"
	"github.com/yourusername/ranking-engine/internal/models"
	"github.com/yourusername/ranking-engine/internal/repository"
	"github.com/yourusername/ranking-engine/internal/scoring"
)

// StandingsQuery selects a series standings table.
// A nil BestN falls back to the series' best_results_count.
type StandingsQuery struct {
	SeriesID int64
	ClassID  *int64
	BestN    *int
}

func (q StandingsQuery) cacheKey(tablesVersion string) string {
	class, best := "all", "default"
	if q.ClassID != nil {
		class = fmt.Sprint(*q.ClassID)
	}
	if q.BestN != nil {
		best = fmt.Sprint(*q.BestN)
	}
	return fmt.Sprintf("%s%s:best:%s:v:%s", seriesKeyPrefix(q.SeriesID), class, best, tablesVersion)
}

func seriesKeyPrefix(seriesID int64) string {
	return fmt.Sprintf("series:%d:class:", seriesID)
}

// StandingsService computes series standings with best-N selection and
// caches them until the series is recomputed.
type StandingsService struct {
	repos  *repository.Repositories
	tx     TxRunner
	tables TablesSource
	cache  *cache.Cache
	log    *logger.RankingLogger
}

// NewStandingsService creates a new standings service
func NewStandingsService(
	repos *repository.Repositories,
	tx TxRunner,
	tables TablesSource,
	ttl, cleanupInterval time.Duration,
	baseLogger *logrus.Logger,
) *StandingsService {
	return &StandingsService{
		repos:  repos,
		tx:     tx,
		tables: tables,
		cache:  cache.New(ttl, cleanupInterval),
		log:    logger.NewRankingLogger(baseLogger),
	}
}

// SeriesStandings returns the standings of a series ordered by position.
func (s *StandingsService) SeriesStandings(ctx context.Context, q StandingsQuery) (*models.SeriesStandingsView, error) {
	if q.BestN != nil && *q.BestN < 1 {
		return nil, fmt.Errorf("%w: best results count must be >= 1, got %d", models.ErrInvalidArgument, *q.BestN)
	}

	tables := s.tables.Current()
	key := q.cacheKey(tables.Version)
	if cached, found := s.cache.Get(key); found {
		metrics.RecordCacheLookup(true)
		view := cached.(*models.SeriesStandingsView)
		s.log.LogStandingsServed("series", q.SeriesID, len(view.Standings), true)
		return view, nil
	}
	metrics.RecordCacheLookup(false)

	var view *models.SeriesStandingsView
	err := s.tx.WithSnapshot(ctx, func(ctx context.Context) error {
		var err error
		view, err = s.compute(ctx, q, tables)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.SetDefault(key, view)
	s.log.LogStandingsServed("series", q.SeriesID, len(view.Standings), false)
	return view, nil
}

func (s *StandingsService) compute(ctx context.Context, q StandingsQuery, tables *scoring.Tables) (*models.SeriesStandingsView, error) {
	series, err := s.repos.Series.GetByID(ctx, q.SeriesID)
	if err != nil {
		return nil, err
	}
	events, err := s.repos.Event.ListBySeries(ctx, q.SeriesID)
	if err != nil {
		return nil, fmt.Errorf("failed to load series events: %w", err)
	}
	data, err := loadEventData(ctx, s.repos, tables, events)
	if err != nil {
		return nil, err
	}

	var entries []scoring.SeriesEntry
	for _, event := range events {
		for _, r := range data.results[event.ID] {
			if !scoring.QualifiesForSeries(r) {
				continue
			}
			if q.ClassID != nil && *r.ClassID != *q.ClassID {
				continue
			}
			entries = append(entries, scoring.SeriesEntry{
				RiderID:   r.RiderID,
				EventID:   event.ID,
				EventDate: event.Date,
				ClassID:   *r.ClassID,
				Points:    r.Points,
				Position:  r.Position,
			})
		}
	}

	bestN := q.BestN
	if bestN == nil {
		bestN = series.BestResultsCount
	}

	totals := scoring.AggregateSeries(entries, bestN)
	view := &models.SeriesStandingsView{
		SeriesID:    series.ID,
		SeriesName:  series.Name,
		ClassID:     q.ClassID,
		BestResults: bestN,
		Events:      eventSummaries(events),
		Standings:   make([]models.SeriesStanding, 0, len(totals)),
	}
	for _, t := range totals {
		standing := models.SeriesStanding{
			RiderID:         t.RiderID,
			EventScores:     t.EventScores,
			CountedEventIDs: t.CountedEventIDs,
			TotalPoints:     t.Total,
			Position:        t.Position,
		}
		if rider, ok := data.riders[t.RiderID]; ok {
			standing.RiderName = rider.FullName()
			standing.Club = rider.ClubName
		}
		view.Standings = append(view.Standings, standing)
	}
	return view, nil
}

// Invalidate drops every cached table of a series.
func (s *StandingsService) Invalidate(seriesID int64) {
	prefix := seriesKeyPrefix(seriesID)
	for key := range s.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			s.cache.Delete(key)
		}
	}
}

// Flush drops every cached table.
func (s *StandingsService) Flush() {
	s.cache.Flush()
}
