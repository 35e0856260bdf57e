package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ranking-engine/internal/models"
)

func TestStepFieldMultiplier(t *testing.T) {
	f := StepFieldMultiplier(DefaultTables().Field)

	tests := []struct {
		fieldSize int
		want      string
	}{
		{fieldSize: 0, want: "1"},
		{fieldSize: 1, want: "1"},
		{fieldSize: 2, want: "0.8"},
		{fieldSize: 4, want: "0.8"},
		{fieldSize: 7, want: "0.9"},
		{fieldSize: 10, want: "1"},
		{fieldSize: 25, want: "1.1"},
		{fieldSize: 500, want: "1.2"},
	}
	for _, tt := range tests {
		assertDecimal(t, tt.want, f(tt.fieldSize), "field size", tt.fieldSize)
	}
}

func TestStepFieldMultiplierClamps(t *testing.T) {
	f := StepFieldMultiplier(FieldCurve{
		Steps: []FieldStep{{MinSize: 2, Multiplier: dec("0.3")}, {MinSize: 50, Multiplier: dec("3")}},
		Floor: dec("0.75"),
		Cap:   dec("1.5"),
	})

	assertDecimal(t, "0.75", f(3))
	assertDecimal(t, "1.5", f(60))
}

func TestTimeMultiplier(t *testing.T) {
	tables := DefaultTables()
	asOf := time.Date(2026, time.June, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		eventDate time.Time
		want      string
		wantOK    bool
	}{
		{name: "same day", eventDate: date(2026, time.June, 15), want: "1", wantOK: true},
		{name: "five months", eventDate: date(2026, time.January, 10), want: "1", wantOK: true},
		{name: "exactly twelve months", eventDate: date(2025, time.June, 15), want: "1", wantOK: true},
		{name: "just over twelve months", eventDate: date(2025, time.June, 14), want: "0.5", wantOK: true},
		{name: "fifteen months", eventDate: date(2025, time.March, 1), want: "0.5", wantOK: true},
		{name: "exactly twenty-four months", eventDate: date(2024, time.June, 15), want: "0.5", wantOK: true},
		{name: "beyond twenty-four months", eventDate: date(2024, time.June, 14), wantOK: false},
		{name: "future event", eventDate: date(2026, time.June, 16), wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tables.TimeMultiplier(tt.eventDate, asOf)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assertDecimal(t, tt.want, got)
			}
		})
	}
}

func TestTablesLookups(t *testing.T) {
	tables := DefaultTables()

	m, ok := tables.LevelMultiplier(models.EventLevelRegional)
	assert.True(t, ok)
	assertDecimal(t, "0.5", m)

	m, ok = tables.LevelMultiplier(models.EventLevel("continental"))
	assert.False(t, ok)
	assertDecimal(t, "1", m)

	pct, ok := tables.ClubPercentage(2)
	assert.True(t, ok)
	assertDecimal(t, "50", pct)

	pct, ok = tables.ClubPercentage(3)
	assert.False(t, ok)
	assertDecimal(t, "0", pct)

	assert.Equal(t, 24, tables.WindowMonths())
	assert.Equal(t, date(2024, time.June, 15), tables.WindowStart(date(2026, time.June, 15)))
}

func TestTablesValidate(t *testing.T) {
	tables := DefaultTables()
	tables.TimeBands = []TimeBand{
		{MaxAgeMonths: 24, Multiplier: dec("0.5")},
		{MaxAgeMonths: 12, Multiplier: dec("1")},
	}
	require.NoError(t, tables.Validate())
	assert.Equal(t, 12, tables.TimeBands[0].MaxAgeMonths)

	bad := DefaultTables()
	bad.Version = ""
	bad.ClubPercentages[0] = dec("120")
	bad.Field.Floor = dec("2")
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version is required")
	assert.Contains(t, err.Error(), "rank must be >= 1")
	assert.Contains(t, err.Error(), "within 0-100")
	assert.Contains(t, err.Error(), "exceeds cap")

	empty := DefaultTables()
	empty.TimeBands = nil
	assert.Error(t, empty.Validate())
}
