package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/ranking-engine/internal/logger"
	"github.com/yourusername/ranking-engine/internal/models"
	"github.com/yourusername/ranking-engine/internal/repository"
	"github.com/yourusername/ranking-engine/internal/scoring"
)

// ClubService redistributes individual series points to clubs
type ClubService struct {
	repos       *repository.Repositories
	tx          TxRunner
	tables      TablesSource
	clock       Clock
	log         *logger.RankingLogger
	audit       *logger.AuditLogger
	invalidator StandingsInvalidator
}

// NewClubService creates a new club service
func NewClubService(
	repos *repository.Repositories,
	tx TxRunner,
	tables TablesSource,
	clock Clock,
	baseLogger *logrus.Logger,
) *ClubService {
	return &ClubService{
		repos:  repos,
		tx:     tx,
		tables: tables,
		clock:  clock,
		log:    logger.NewRankingLogger(baseLogger),
		audit:  logger.NewAuditLogger(baseLogger),
	}
}

// WithInvalidator registers the standings cache to clear after a recompute.
func (s *ClubService) WithInvalidator(inv StandingsInvalidator) *ClubService {
	s.invalidator = inv
	return s
}

// RecomputeClubPoints replaces the club points of a series. A non-nil clubID
// limits the replace to that club's rows.
func (s *ClubService) RecomputeClubPoints(ctx context.Context, seriesID int64, clubID *int64) (*RecomputeSummary, error) {
	if _, err := s.repos.Series.GetByID(ctx, seriesID); err != nil {
		return nil, err
	}
	tables := s.tables.Current()
	summary := &RecomputeSummary{
		Scope:         SeriesScope(seriesID),
		AsOf:          calendarDay(s.clock()),
		TablesVersion: tables.Version,
	}

	var fallbacks []scoring.Fallback
	err := runRecompute(ctx, s.tx, s.log, "series", "club_rider_points", summary, func(ctx context.Context) error {
		events, err := s.repos.Event.ListBySeries(ctx, seriesID)
		if err != nil {
			return err
		}
		data, err := loadEventData(ctx, s.repos, tables, events)
		if err != nil {
			return err
		}

		var entries []scoring.ClubEntry
		for _, event := range events {
			for _, r := range data.results[event.ID] {
				if !scoring.QualifiesForSeries(r) {
					continue
				}
				rider, ok := data.riders[r.RiderID]
				if !ok || rider.ClubID == nil {
					continue
				}
				if clubID != nil && *rider.ClubID != *clubID {
					continue
				}
				entries = append(entries, scoring.ClubEntry{
					RiderID: r.RiderID,
					ClubID:  *rider.ClubID,
					EventID: event.ID,
					ClassID: *r.ClassID,
					Points:  r.Points,
				})
			}
		}

		var rows []models.ClubRiderPoints
		rows, fallbacks = scoring.ClubPoints(entries, seriesID, tables)

		if summary.Deleted, err = s.repos.ClubPoints.DeleteBySeries(ctx, seriesID, clubID); err != nil {
			return err
		}
		if err := s.repos.ClubPoints.InsertBatch(ctx, rows); err != nil {
			return err
		}
		summary.Inserted = len(rows)
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary.Fallbacks = len(fallbacks)
	reportFallbacks(s.audit, summary.Scope, summary.TablesVersion, fallbacks)
	if s.invalidator != nil {
		s.invalidator.Invalidate(seriesID)
	}
	return summary, nil
}

// ClubStandings returns the club table of a series ordered by position.
func (s *ClubService) ClubStandings(ctx context.Context, seriesID int64) (*models.ClubStandingsView, error) {
	var view *models.ClubStandingsView
	err := s.tx.WithSnapshot(ctx, func(ctx context.Context) error {
		series, err := s.repos.Series.GetByID(ctx, seriesID)
		if err != nil {
			return err
		}
		events, err := s.repos.Event.ListBySeries(ctx, seriesID)
		if err != nil {
			return err
		}
		rows, err := s.repos.ClubPoints.ListBySeries(ctx, seriesID)
		if err != nil {
			return err
		}

		totals := scoring.ClubStandings(rows)
		clubIDs := make([]int64, len(totals))
		for i, t := range totals {
			clubIDs[i] = t.ClubID
		}
		clubs, err := s.repos.Club.GetByIDs(ctx, clubIDs)
		if err != nil {
			return err
		}

		order := make(map[int64]int, len(events))
		for i, e := range events {
			order[e.ID] = i
		}

		view = &models.ClubStandingsView{
			SeriesID:   series.ID,
			SeriesName: series.Name,
			Events:     eventSummaries(events),
			Standings:  make([]models.ClubStanding, 0, len(totals)),
		}
		for _, t := range totals {
			slices.SortStableFunc(t.EventScores, func(a, b models.EventScore) int {
				return cmp.Compare(order[a.EventID], order[b.EventID])
			})
			standing := models.ClubStanding{
				ClubID:      t.ClubID,
				EventScores: t.EventScores,
				RidersCount: t.RidersCount,
				TotalPoints: t.Total,
				Position:    t.Position,
			}
			if club, ok := clubs[t.ClubID]; ok {
				standing.ClubName = club.Name
			}
			view.Standings = append(view.Standings, standing)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read club standings: %w", err)
	}

	s.log.LogStandingsServed("clubs", seriesID, len(view.Standings), false)
	return view, nil
}
