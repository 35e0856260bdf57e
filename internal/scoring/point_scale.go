package scoring

import (
	"github.com/shopspring/decimal"

	"github.com/yourusername/ranking-engine/internal/models"
)

// ScaleLookup resolves finishing positions to points for one point scale.
// A nil *ScaleLookup yields 0 for every position.
type ScaleLookup struct {
	values map[int]models.PointScaleValue
}

// NewScaleLookup indexes a scale's values by position.
func NewScaleLookup(scale *models.PointScale) *ScaleLookup {
	if scale == nil {
		return nil
	}
	values := make(map[int]models.PointScaleValue, len(scale.Values))
	for _, v := range scale.Values {
		values[v.Position] = v
	}
	return &ScaleLookup{values: values}
}

// Points returns the single-run points for position, 0 when unmapped.
func (l *ScaleLookup) Points(position int) decimal.Decimal {
	if v, ok := l.lookup(position); ok {
		return v.Points
	}
	return decimal.Zero
}

// TwoRunPoints combines run points according to format. A nil position
// contributes 0.
func (l *ScaleLookup) TwoRunPoints(format models.DisciplineFormat, run1Pos, run2Pos *int) decimal.Decimal {
	run2 := decimal.Zero
	if run2Pos != nil {
		if v, ok := l.lookup(*run2Pos); ok {
			run2 = v.Run2Points
		}
	}
	if format == models.FormatTwoRunFinal {
		return run2
	}
	run1 := decimal.Zero
	if run1Pos != nil {
		if v, ok := l.lookup(*run1Pos); ok {
			run1 = v.Run1Points
		}
	}
	return run1.Add(run2)
}

func (l *ScaleLookup) lookup(position int) (models.PointScaleValue, bool) {
	if l == nil {
		return models.PointScaleValue{}, false
	}
	v, ok := l.values[position]
	return v, ok
}
