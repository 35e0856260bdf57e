package models

import (
	"slices"

	"github.com/shopspring/decimal"
)

// RankingType controls how a class's result list is ordered on display.
type RankingType string

const (
	RankingByTime RankingType = "time"
	RankingByName RankingType = "name"
	RankingByBib  RankingType = "bib"
)

// ClassDefinition describes an eligibility class such as "Men 19-34"
type ClassDefinition struct {
	ID             int64       `db:"id" json:"id" validate:"required,gt=0"`
	Name           string      `db:"name" json:"name" validate:"required"`
	Gender         Gender      `db:"gender" json:"gender" validate:"required,oneof=M F ALL"`
	MinAge         *int        `db:"min_age" json:"min_age" validate:"omitempty,gte=0"`
	MaxAge         *int        `db:"max_age" json:"max_age" validate:"omitempty,gte=0"`
	Disciplines    []string    `db:"disciplines" json:"disciplines"`
	SortOrder      int         `db:"sort_order" json:"sort_order"`
	Active         bool        `db:"active" json:"active"`
	AwardsPoints   bool        `db:"awards_points" json:"awards_points"`
	SeriesEligible bool        `db:"series_eligible" json:"series_eligible"`
	RankingType    RankingType `db:"ranking_type" json:"ranking_type" validate:"omitempty,oneof=time name bib"`
}

// HasDiscipline reports whether the class runs in the given discipline.
func (c *ClassDefinition) HasDiscipline(discipline string) bool {
	return slices.Contains(c.Disciplines, discipline)
}

// PointScale is a named position → points table
type PointScale struct {
	ID         int64             `db:"id" json:"id" validate:"required,gt=0"`
	Name       string            `db:"name" json:"name" validate:"required"`
	Discipline string            `db:"discipline" json:"discipline"`
	Active     bool              `db:"active" json:"active"`
	Values     []PointScaleValue `db:"-" json:"values" validate:"dive"`
}

// PointScaleValue is one row of a point scale.
// Run1Points/Run2Points are only meaningful for two-run formats.
type PointScaleValue struct {
	Position   int             `db:"position" json:"position" validate:"required,gt=0"`
	Points     decimal.Decimal `db:"points" json:"points"`
	Run1Points decimal.Decimal `db:"run1_points" json:"run1_points"`
	Run2Points decimal.Decimal `db:"run2_points" json:"run2_points"`
}
