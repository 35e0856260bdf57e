package scoring

import (
	"time"

	"github.com/shopspring/decimal"
)

// FieldMultiplierFunc maps the number of finishers in an (event, class) to
// the field multiplier. Implementations must be pure.
type FieldMultiplierFunc func(fieldSize int) decimal.Decimal

// StepFieldMultiplier builds a FieldMultiplierFunc from a step curve.
// Fields of zero or one finisher are neutral (1.0).
func StepFieldMultiplier(curve FieldCurve) FieldMultiplierFunc {
	one := decimal.NewFromInt(1)
	return func(fieldSize int) decimal.Decimal {
		if fieldSize <= 1 {
			return one
		}
		multiplier := one
		for _, step := range curve.Steps {
			if fieldSize < step.MinSize {
				break
			}
			multiplier = step.Multiplier
		}
		if curve.Floor.IsPositive() && multiplier.LessThan(curve.Floor) {
			multiplier = curve.Floor
		}
		if curve.Cap.IsPositive() && multiplier.GreaterThan(curve.Cap) {
			multiplier = curve.Cap
		}
		return multiplier
	}
}

// TimeMultiplier returns the decay factor for a result dated eventDate when
// computing at asOf. ok is false when the result is outside the window,
// including results dated after asOf.
func (t *Tables) TimeMultiplier(eventDate, asOf time.Time) (multiplier decimal.Decimal, ok bool) {
	event := Day(eventDate)
	today := Day(asOf)
	if event.After(today) {
		return decimal.Zero, false
	}
	for _, band := range t.TimeBands {
		if !event.Before(today.AddDate(0, -band.MaxAgeMonths, 0)) {
			return band.Multiplier, true
		}
	}
	return decimal.Zero, false
}
