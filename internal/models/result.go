package models

import "github.com/shopspring/decimal"

// ResultStatus represents how a rider's race ended
type ResultStatus string

const (
	StatusFinished ResultStatus = "finished"
	StatusDNF      ResultStatus = "dnf"
	StatusDNS      ResultStatus = "dns"
	StatusDQ       ResultStatus = "dq"
)

// Result represents one rider's outcome at one event
type Result struct {
	ID         int64            `db:"id" json:"id" validate:"required,gt=0"`
	RiderID    int64            `db:"rider_id" json:"rider_id" validate:"required,gt=0"`
	EventID    int64            `db:"event_id" json:"event_id" validate:"required,gt=0"`
	ClassID    *int64           `db:"class_id" json:"class_id"`
	Position   *int             `db:"position" json:"position" validate:"omitempty,gt=0"`
	Status     ResultStatus     `db:"status" json:"status" validate:"required,oneof=finished dnf dns dq"`
	Points     *decimal.Decimal `db:"points" json:"points"` // nil: derive from the event's point scale
	Run1Time   *float64         `db:"run1_time" json:"run1_time" validate:"omitempty,gte=0"`
	Run2Time   *float64         `db:"run2_time" json:"run2_time" validate:"omitempty,gte=0"`
	FinishTime *float64         `db:"finish_time" json:"finish_time" validate:"omitempty,gte=0"`
}

// IsFinished reports whether the rider completed the event.
func (r *Result) IsFinished() bool {
	return r.Status == StatusFinished
}
