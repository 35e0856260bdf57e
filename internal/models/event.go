package models

import "time"

// EventLevel is an event's competitive tier.
type EventLevel string

const (
	EventLevelNational    EventLevel = "national"
	EventLevelRegional    EventLevel = "regional"
	EventLevelSportmotion EventLevel = "sportmotion"
)

// DisciplineFormat selects how run points combine for an event.
type DisciplineFormat string

const (
	FormatSingleRun   DisciplineFormat = "single_run"
	FormatTwoRunSum   DisciplineFormat = "two_run_sum"
	FormatTwoRunFinal DisciplineFormat = "two_run_final"
)

// IsTwoRun reports whether results carry separate run-1/run-2 times.
func (f DisciplineFormat) IsTwoRun() bool {
	return f == FormatTwoRunSum || f == FormatTwoRunFinal
}

// Event represents a single race day
type Event struct {
	ID           int64            `db:"id" json:"id" validate:"required,gt=0"`
	Name         string           `db:"name" json:"name"`
	Date         time.Time        `db:"date" json:"date" validate:"required"`
	Discipline   string           `db:"discipline" json:"discipline" validate:"required"`
	SeriesID     *int64           `db:"series_id" json:"series_id"`
	Level        EventLevel       `db:"event_level" json:"event_level"`
	Format       DisciplineFormat `db:"discipline_format" json:"discipline_format" validate:"omitempty,oneof=single_run two_run_sum two_run_final"`
	PointScaleID *int64           `db:"point_scale_id" json:"point_scale_id"`
}

// Series groups events into a season
type Series struct {
	ID               int64  `db:"id" json:"id" validate:"required,gt=0"`
	Name             string `db:"name" json:"name" validate:"required"`
	Year             int    `db:"year" json:"year"`
	Discipline       string `db:"discipline" json:"discipline"`
	BestResultsCount *int   `db:"best_results_count" json:"best_results_count" validate:"omitempty,gt=0"`
}
