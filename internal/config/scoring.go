package config

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/ranking-engine/internal/models"
	"github.com/yourusername/ranking-engine/internal/scoring"
)

// yamlDecimal keeps the literal text of a YAML number so 0.1 stays exact.
type yamlDecimal struct {
	decimal.Decimal
}

func (d *yamlDecimal) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := decimal.NewFromString(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %q is not a number", value.Line, value.Value)
	}
	d.Decimal = parsed
	return nil
}

type tablesFile struct {
	Version   string `yaml:"version"`
	TimeBands []struct {
		MaxAgeMonths int         `yaml:"max_age_months"`
		Multiplier   yamlDecimal `yaml:"multiplier"`
	} `yaml:"time_bands"`
	Field struct {
		Floor yamlDecimal `yaml:"floor"`
		Cap   yamlDecimal `yaml:"cap"`
		Steps []struct {
			MinSize    int         `yaml:"min_size"`
			Multiplier yamlDecimal `yaml:"multiplier"`
		} `yaml:"steps"`
	} `yaml:"field"`
	EventLevels     map[string]yamlDecimal `yaml:"event_levels"`
	ClubPercentages map[int]yamlDecimal    `yaml:"club_percentages"`
	LicenseMatrix   map[int64][]string     `yaml:"license_matrix"`
}

// ParseTables decodes and validates a scoring tables document.
func ParseTables(data []byte) (*scoring.Tables, error) {
	var file tablesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse scoring tables: %w", err)
	}

	tables := &scoring.Tables{
		Version: file.Version,
		Field: scoring.FieldCurve{
			Floor: file.Field.Floor.Decimal,
			Cap:   file.Field.Cap.Decimal,
		},
		EventLevels:     make(map[models.EventLevel]decimal.Decimal, len(file.EventLevels)),
		ClubPercentages: make(map[int]decimal.Decimal, len(file.ClubPercentages)),
		LicenseMatrix:   file.LicenseMatrix,
	}
	for _, band := range file.TimeBands {
		tables.TimeBands = append(tables.TimeBands, scoring.TimeBand{
			MaxAgeMonths: band.MaxAgeMonths,
			Multiplier:   band.Multiplier.Decimal,
		})
	}
	for _, step := range file.Field.Steps {
		tables.Field.Steps = append(tables.Field.Steps, scoring.FieldStep{
			MinSize:    step.MinSize,
			Multiplier: step.Multiplier.Decimal,
		})
	}
	for level, m := range file.EventLevels {
		tables.EventLevels[models.EventLevel(level)] = m.Decimal
	}
	for rank, pct := range file.ClubPercentages {
		tables.ClubPercentages[rank] = pct.Decimal
	}
	if tables.LicenseMatrix == nil {
		tables.LicenseMatrix = map[int64][]string{}
	}

	if err := tables.Validate(); err != nil {
		return nil, err
	}
	return tables, nil
}

// LoadTables reads the scoring tables file at path. An empty path yields
// the built-in defaults.
func LoadTables(path string) (*scoring.Tables, error) {
	if path == "" {
		return scoring.DefaultTables(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scoring tables %s: %w", path, err)
	}
	return ParseTables(data)
}

// TablesProvider publishes the active scoring tables. Readers always see
// a complete Tables value; a reload swaps the pointer.
type TablesProvider struct {
	current atomic.Pointer[scoring.Tables]
}

// NewTablesProvider creates a provider serving initial.
func NewTablesProvider(initial *scoring.Tables) *TablesProvider {
	p := &TablesProvider{}
	p.current.Store(initial)
	return p
}

// Current returns the active tables.
func (p *TablesProvider) Current() *scoring.Tables {
	return p.current.Load()
}

// Store replaces the active tables.
func (p *TablesProvider) Store(tables *scoring.Tables) {
	p.current.Store(tables)
}
