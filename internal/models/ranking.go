package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fallback reasons recorded on derived rows that used a configuration default.
const (
	FallbackUnknownEventLevel     = "unknown_event_level"
	FallbackMissingRankPercentage = "missing_rank_percentage"
)

// RankingPoint is the time-decayed ranking value of one qualifying result.
// Rows are fully derived and replaced on every recompute of their scope.
type RankingPoint struct {
	RiderID              int64           `db:"rider_id" json:"rider_id"`
	EventID              int64           `db:"event_id" json:"event_id"`
	ClassID              int64           `db:"class_id" json:"class_id"`
	Discipline           string          `db:"discipline" json:"discipline"`
	EventDate            time.Time       `db:"event_date" json:"event_date"`
	OriginalPoints       decimal.Decimal `db:"original_points" json:"original_points"`
	FieldSize            int             `db:"field_size" json:"field_size"`
	FieldMultiplier      decimal.Decimal `db:"field_multiplier" json:"field_multiplier"`
	EventLevelMultiplier decimal.Decimal `db:"event_level_multiplier" json:"event_level_multiplier"`
	TimeMultiplier       decimal.Decimal `db:"time_multiplier" json:"time_multiplier"`
	RankingPoints        decimal.Decimal `db:"ranking_points" json:"ranking_points"`
	AsOf                 time.Time       `db:"as_of" json:"as_of"`
	TablesVersion        string          `db:"tables_version" json:"tables_version"`
	FallbackReason       string          `db:"fallback_reason" json:"fallback_reason,omitempty"`
}

// RankingEntry is one rider's line in a discipline ranking.
type RankingEntry struct {
	RiderID     int64           `json:"rider_id"`
	RiderName   string          `json:"rider_name,omitempty"`
	Club        string          `json:"club,omitempty"`
	TotalPoints decimal.Decimal `json:"total_points"`
	EventsCount int             `json:"events_count"`
	Position    int             `json:"position"`
}

// RankingSnapshot is an immutable point-in-time ranking row.
type RankingSnapshot struct {
	RunID            uuid.UUID       `db:"run_id" json:"run_id"`
	RiderID          int64           `db:"rider_id" json:"rider_id"`
	Discipline       string          `db:"discipline" json:"discipline"`
	SnapshotDate     time.Time       `db:"snapshot_date" json:"snapshot_date"`
	TotalPoints      decimal.Decimal `db:"total_points" json:"total_points"`
	EventsCount      int             `db:"events_count" json:"events_count"`
	Position         int             `db:"position" json:"position"`
	PreviousPosition *int            `db:"previous_position" json:"previous_position"`
	PositionChange   *int            `db:"position_change" json:"position_change"`
}
