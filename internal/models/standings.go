package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventSummary is the event header of a standings table.
type EventSummary struct {
	ID   int64     `json:"id"`
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// EventScore is a competitor's points at one event of a series.
type EventScore struct {
	EventID  int64           `json:"event_id"`
	Points   decimal.Decimal `json:"points"`
	Position *int            `json:"position,omitempty"`
	Counted  bool            `json:"counted"`
}

// SeriesStanding is one rider's line in a series table.
type SeriesStanding struct {
	RiderID         int64           `json:"rider_id"`
	RiderName       string          `json:"rider_name"`
	Club            string          `json:"club"`
	EventScores     []EventScore    `json:"event_scores"`
	CountedEventIDs []int64         `json:"counted_event_ids"`
	TotalPoints     decimal.Decimal `json:"total_points"`
	Position        int             `json:"position"`
}

// SeriesStandingsView is the standings query contract for a series.
type SeriesStandingsView struct {
	SeriesID    int64            `json:"series_id"`
	SeriesName  string           `json:"series_name"`
	ClassID     *int64           `json:"class_id,omitempty"`
	BestResults *int             `json:"best_results,omitempty"`
	Events      []EventSummary   `json:"events"`
	Standings   []SeriesStanding `json:"standings"`
}

// ClubRiderPoints is the share of one rider's result credited to their club.
// Rows are fully derived and replaced on every recompute of their scope.
type ClubRiderPoints struct {
	RiderID           int64           `db:"rider_id" json:"rider_id"`
	ClubID            int64           `db:"club_id" json:"club_id"`
	EventID           int64           `db:"event_id" json:"event_id"`
	SeriesID          int64           `db:"series_id" json:"series_id"`
	ClassID           int64           `db:"class_id" json:"class_id"`
	OriginalPoints    decimal.Decimal `db:"original_points" json:"original_points"`
	RiderRankInClub   int             `db:"rider_rank_in_club" json:"rider_rank_in_club"`
	PercentageApplied decimal.Decimal `db:"percentage_applied" json:"percentage_applied"`
	ClubPoints        decimal.Decimal `db:"club_points" json:"club_points"`
	TablesVersion     string          `db:"tables_version" json:"tables_version"`
	FallbackReason    string          `db:"fallback_reason" json:"fallback_reason,omitempty"`
}

// ClubStanding is one club's line in a series club table.
type ClubStanding struct {
	ClubID      int64           `json:"club_id"`
	ClubName    string          `json:"club_name"`
	EventScores []EventScore    `json:"event_scores"`
	RidersCount int             `json:"riders_count"`
	TotalPoints decimal.Decimal `json:"total_points"`
	Position    int             `json:"position"`
}

// ClubStandingsView is the club standings query contract for a series.
type ClubStandingsView struct {
	SeriesID   int64          `json:"series_id"`
	SeriesName string         `json:"series_name"`
	Events     []EventSummary `json:"events"`
	Standings  []ClubStanding `json:"standings"`
}
