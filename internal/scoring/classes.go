package scoring

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/yourusername/ranking-engine/internal/models"
)

// Age bounds used to measure the span of a class with an open bound.
const (
	openMinAge = 0
	openMaxAge = math.MaxInt
)

// ClassQuery describes the rider being classified.
type ClassQuery struct {
	BirthYear  *int
	Gender     models.Gender
	AsOf       time.Time
	Discipline string
	// Eligible is an optional extra filter, typically the license matrix.
	Eligible func(models.ClassDefinition) bool
}

// ResolveClass picks the single best matching class for q.
// It returns false when the rider cannot be classified.
func ResolveClass(classes []models.ClassDefinition, q ClassQuery) (int64, bool) {
	if q.BirthYear == nil {
		return 0, false
	}
	gender := models.NormalizeGender(string(q.Gender))
	if gender != models.GenderMale && gender != models.GenderFemale {
		return 0, false
	}
	age := q.AsOf.Year() - *q.BirthYear

	candidates := make([]models.ClassDefinition, 0, len(classes))
	for _, class := range classes {
		if !class.Active || !class.HasDiscipline(q.Discipline) {
			continue
		}
		if !genderMatches(class.Gender, gender) {
			continue
		}
		if class.MinAge != nil && age < *class.MinAge {
			continue
		}
		if class.MaxAge != nil && age > *class.MaxAge {
			continue
		}
		if q.Eligible != nil && !q.Eligible(class) {
			continue
		}
		candidates = append(candidates, class)
	}
	if len(candidates) == 0 {
		return 0, false
	}

	best := slices.MinFunc(candidates, func(a, b models.ClassDefinition) int {
		if c := cmp.Compare(a.SortOrder, b.SortOrder); c != 0 {
			return c
		}
		if c := cmp.Compare(ageSpan(a), ageSpan(b)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return best.ID, true
}

func genderMatches(classGender, riderGender models.Gender) bool {
	if classGender == models.GenderAll {
		return true
	}
	return models.NormalizeGender(string(classGender)) == riderGender
}

func ageSpan(class models.ClassDefinition) int {
	lower, upper := openMinAge, openMaxAge
	if class.MinAge != nil && *class.MinAge > lower {
		lower = *class.MinAge
	}
	if class.MaxAge != nil {
		upper = *class.MaxAge
	}
	return upper - lower
}

// ClassIndex looks up class definitions by id.
type ClassIndex map[int64]models.ClassDefinition

// NewClassIndex indexes classes by id.
func NewClassIndex(classes []models.ClassDefinition) ClassIndex {
	index := make(ClassIndex, len(classes))
	for _, class := range classes {
		index[class.ID] = class
	}
	return index
}
