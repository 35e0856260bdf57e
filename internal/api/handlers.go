// Package api serves the ranking and standings read contracts as JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/ranking-engine/internal/models"
	"github.com/yourusername/ranking-engine/internal/service"
)

// RankingReader reads discipline rankings and their snapshots
type RankingReader interface {
	Ranking(ctx context.Context, discipline string) ([]models.RankingEntry, error)
	SnapshotAt(ctx context.Context, discipline string, date time.Time) ([]models.RankingSnapshot, error)
}

// StandingsReader reads series standings
type StandingsReader interface {
	SeriesStandings(ctx context.Context, q service.StandingsQuery) (*models.SeriesStandingsView, error)
}

// ClubReader reads club standings
type ClubReader interface {
	ClubStandings(ctx context.Context, seriesID int64) (*models.ClubStandingsView, error)
}

// Classifier resolves a rider's class
type Classifier interface {
	Classify(ctx context.Context, riderID int64, discipline string, on time.Time) (*models.ClassDefinition, error)
}

// Handler serves the read endpoints
type Handler struct {
	ranking   RankingReader
	standings StandingsReader
	clubs     ClubReader
	classes   Classifier
	clock     service.Clock
	logger    *logrus.Entry
}

// NewHandler creates a new API handler
func NewHandler(ranking RankingReader, standings StandingsReader, clubs ClubReader, classes Classifier, clock service.Clock, logger *logrus.Logger) *Handler {
	return &Handler{
		ranking:   ranking,
		standings: standings,
		clubs:     clubs,
		classes:   classes,
		clock:     clock,
		logger:    logger.WithField("component", "api"),
	}
}

// Routes sets up the routes for the read API.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/rankings/{discipline}", h.GetRanking)
	r.Get("/rankings/{discipline}/snapshots/{date}", h.GetSnapshot)
	r.Get("/series/{seriesID}/standings", h.GetSeriesStandings)
	r.Get("/series/{seriesID}/clubs", h.GetClubStandings)
	r.Get("/riders/{riderID}/class", h.GetRiderClass)
	return r
}

// GetRanking returns the current ranking of a discipline.
func (h *Handler) GetRanking(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.ranking.Ranking(r.Context(), chi.URLParam(r, "discipline"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, ranking)
}

// GetSnapshot returns a stored ranking snapshot.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(time.DateOnly, chi.URLParam(r, "date"))
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: date must be YYYY-MM-DD", models.ErrInvalidArgument))
		return
	}
	rows, err := h.ranking.SnapshotAt(r.Context(), chi.URLParam(r, "discipline"), date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, rows)
}

// GetSeriesStandings returns a series table. Optional query parameters:
// class_id and best.
func (h *Handler) GetSeriesStandings(w http.ResponseWriter, r *http.Request) {
	seriesID, err := pathID(r, "seriesID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	q := service.StandingsQuery{SeriesID: seriesID}

	if raw := r.URL.Query().Get("class_id"); raw != "" {
		classID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: class_id must be an integer", models.ErrInvalidArgument))
			return
		}
		q.ClassID = &classID
	}
	if raw := r.URL.Query().Get("best"); raw != "" {
		best, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: best must be an integer", models.ErrInvalidArgument))
			return
		}
		q.BestN = &best
	}

	view, err := h.standings.SeriesStandings(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, view)
}

// GetClubStandings returns the club table of a series.
func (h *Handler) GetClubStandings(w http.ResponseWriter, r *http.Request) {
	seriesID, err := pathID(r, "seriesID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := h.clubs.ClubStandings(r.Context(), seriesID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, view)
}

// GetRiderClass returns the class a rider races in for ?discipline= on
// ?date= (default today). An unclassified rider yields 404.
func (h *Handler) GetRiderClass(w http.ResponseWriter, r *http.Request) {
	riderID, err := pathID(r, "riderID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	on := h.clock()
	if raw := r.URL.Query().Get("date"); raw != "" {
		if on, err = time.Parse(time.DateOnly, raw); err != nil {
			h.writeError(w, r, fmt.Errorf("%w: date must be YYYY-MM-DD", models.ErrInvalidArgument))
			return
		}
	}

	class, err := h.classes.Classify(r.Context(), riderID, r.URL.Query().Get("discipline"), on)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if class == nil {
		http.Error(w, "rider is unclassified", http.StatusNotFound)
		return
	}
	h.writeJSON(w, class)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", models.ErrInvalidArgument, name)
	}
	return id, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WithError(err).Warn("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidArgument):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
	}
	http.Error(w, err.Error(), status)
}
