package scoring

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/ranking-engine/internal/models"
)

// TimeBand gives results up to MaxAgeMonths old the band's multiplier.
type TimeBand struct {
	MaxAgeMonths int
	Multiplier   decimal.Decimal
}

// FieldStep applies Multiplier to fields of at least MinSize finishers.
type FieldStep struct {
	MinSize    int
	Multiplier decimal.Decimal
}

// FieldCurve is a step function over field size clamped to [Floor, Cap].
type FieldCurve struct {
	Steps []FieldStep
	Floor decimal.Decimal
	Cap   decimal.Decimal
}

// Tables holds every organizer-tunable lookup the engine consumes.
// A Tables value is immutable once published; reloads build a new one.
type Tables struct {
	Version         string
	TimeBands       []TimeBand
	Field           FieldCurve
	EventLevels     map[models.EventLevel]decimal.Decimal
	ClubPercentages map[int]decimal.Decimal
	// LicenseMatrix restricts a class to riders holding one of the listed
	// license types. Classes without an entry accept any rider.
	LicenseMatrix map[int64][]string
}

// DefaultTables returns the tables used when no scoring file is configured.
func DefaultTables() *Tables {
	return &Tables{
		Version: "default",
		TimeBands: []TimeBand{
			{MaxAgeMonths: 12, Multiplier: decimal.NewFromInt(1)},
			{MaxAgeMonths: 24, Multiplier: decimal.RequireFromString("0.5")},
		},
		Field: FieldCurve{
			Steps: []FieldStep{
				{MinSize: 2, Multiplier: decimal.RequireFromString("0.8")},
				{MinSize: 5, Multiplier: decimal.RequireFromString("0.9")},
				{MinSize: 10, Multiplier: decimal.NewFromInt(1)},
				{MinSize: 20, Multiplier: decimal.RequireFromString("1.1")},
				{MinSize: 40, Multiplier: decimal.RequireFromString("1.2")},
			},
			Floor: decimal.RequireFromString("0.8"),
			Cap:   decimal.RequireFromString("1.2"),
		},
		EventLevels: map[models.EventLevel]decimal.Decimal{
			models.EventLevelNational:    decimal.NewFromInt(1),
			models.EventLevelRegional:    decimal.RequireFromString("0.5"),
			models.EventLevelSportmotion: decimal.RequireFromString("0.5"),
		},
		ClubPercentages: map[int]decimal.Decimal{
			1: decimal.NewFromInt(100),
			2: decimal.NewFromInt(50),
		},
		LicenseMatrix: map[int64][]string{},
	}
}

// Validate checks the tables for internal consistency and normalizes
// band and step order.
func (t *Tables) Validate() error {
	var errs []error
	if t.Version == "" {
		errs = append(errs, errors.New("version is required"))
	}
	if len(t.TimeBands) == 0 {
		errs = append(errs, errors.New("at least one time band is required"))
	}
	for _, band := range t.TimeBands {
		if band.MaxAgeMonths <= 0 {
			errs = append(errs, fmt.Errorf("time band max_age_months must be positive, got %d", band.MaxAgeMonths))
		}
		if band.Multiplier.IsNegative() {
			errs = append(errs, fmt.Errorf("time band multiplier must not be negative, got %s", band.Multiplier))
		}
	}
	if t.Field.Floor.IsPositive() && t.Field.Cap.IsPositive() && t.Field.Floor.GreaterThan(t.Field.Cap) {
		errs = append(errs, fmt.Errorf("field floor %s exceeds cap %s", t.Field.Floor, t.Field.Cap))
	}
	for _, step := range t.Field.Steps {
		if step.MinSize < 0 {
			errs = append(errs, fmt.Errorf("field step min_size must not be negative, got %d", step.MinSize))
		}
	}
	for rank, pct := range t.ClubPercentages {
		if rank < 1 {
			errs = append(errs, fmt.Errorf("club percentage rank must be >= 1, got %d", rank))
		}
		if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
			errs = append(errs, fmt.Errorf("club percentage for rank %d must be within 0-100, got %s", rank, pct))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid scoring tables: %w", errors.Join(errs...))
	}

	slices.SortFunc(t.TimeBands, func(a, b TimeBand) int { return a.MaxAgeMonths - b.MaxAgeMonths })
	slices.SortFunc(t.Field.Steps, func(a, b FieldStep) int { return a.MinSize - b.MinSize })
	return nil
}

// WindowMonths is the length of the rolling ranking window.
func (t *Tables) WindowMonths() int {
	if len(t.TimeBands) == 0 {
		return 0
	}
	return t.TimeBands[len(t.TimeBands)-1].MaxAgeMonths
}

// WindowStart returns the oldest event date still inside the window at asOf.
func (t *Tables) WindowStart(asOf time.Time) time.Time {
	return Day(asOf).AddDate(0, -t.WindowMonths(), 0)
}

// LevelMultiplier returns the multiplier for an event level.
// ok is false when the level is not configured; the neutral 1.0 is returned then.
func (t *Tables) LevelMultiplier(level models.EventLevel) (multiplier decimal.Decimal, ok bool) {
	if m, found := t.EventLevels[level]; found {
		return m, true
	}
	return decimal.NewFromInt(1), false
}

// ClubPercentage returns the percentage credited for a rank within a club.
// ok is false when the rank has no entry; 0% is returned then.
func (t *Tables) ClubPercentage(rank int) (pct decimal.Decimal, ok bool) {
	if p, found := t.ClubPercentages[rank]; found {
		return p, true
	}
	return decimal.Zero, false
}

// LicensePredicate returns the extra class filter for a rider, or nil when
// the matrix is empty.
func (t *Tables) LicensePredicate(rider *models.Rider, on time.Time) func(models.ClassDefinition) bool {
	if len(t.LicenseMatrix) == 0 || rider == nil {
		return nil
	}
	return func(class models.ClassDefinition) bool {
		allowed, restricted := t.LicenseMatrix[class.ID]
		if !restricted {
			return true
		}
		if !rider.HasValidLicense(on) {
			return false
		}
		return slices.Contains(allowed, rider.LicenseType)
	}
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
