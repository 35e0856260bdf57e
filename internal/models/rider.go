package models

import (
	"strings"
	"time"
)

// Gender is a rider's gender code or a class's gender filter.
type Gender string

const (
	GenderUnknown Gender = ""
	GenderMale    Gender = "M"
	GenderFemale  Gender = "F"
	GenderAll     Gender = "ALL"
)

// NormalizeGender maps free-form gender codes to the canonical values.
// K (kvinna) and W are accepted as female synonyms.
func NormalizeGender(raw string) Gender {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "M":
		return GenderMale
	case "F", "K", "W":
		return GenderFemale
	case "ALL":
		return GenderAll
	default:
		return GenderUnknown
	}
}

// Rider represents a registered participant
type Rider struct {
	ID                int64      `db:"id" json:"id" validate:"required,gt=0"`
	FirstName         string     `db:"firstname" json:"firstname"`
	LastName          string     `db:"lastname" json:"lastname"`
	BirthYear         *int       `db:"birth_year" json:"birth_year" validate:"omitempty,gte=1900,lte=2100"`
	Gender            Gender     `db:"gender" json:"gender" validate:"omitempty,oneof=M F"`
	ClubID            *int64     `db:"club_id" json:"club_id"`
	ClubName          string     `db:"club_name" json:"club_name"`
	LicenseType       string     `db:"license_type" json:"license_type"`
	LicenseValidUntil *time.Time `db:"license_valid_until" json:"license_valid_until"`
}

// FullName returns "First Last" with surrounding blanks trimmed.
func (r *Rider) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// HasValidLicense reports whether the rider's license covers the given date.
// A rider without an expiry date is treated as licensed.
func (r *Rider) HasValidLicense(on time.Time) bool {
	if r.LicenseValidUntil == nil {
		return true
	}
	return !r.LicenseValidUntil.Before(truncateDay(on))
}

// Club represents a club riders can belong to
type Club struct {
	ID   int64  `db:"id" json:"id" validate:"required,gt=0"`
	Name string `db:"name" json:"name" validate:"required"`
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
