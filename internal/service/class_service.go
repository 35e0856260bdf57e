package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/ranking-engine/internal/models"
	"github.com/yourusername/ranking-engine/internal/repository"
	"github.com/yourusername/ranking-engine/internal/scoring"
)

// ClassService answers class eligibility questions for single riders
type ClassService struct {
	repos  *repository.Repositories
	tables TablesSource
}

// NewClassService creates a new class service
func NewClassService(repos *repository.Repositories, tables TablesSource) *ClassService {
	return &ClassService{repos: repos, tables: tables}
}

// Classify returns the class a rider would race in for discipline on date.
// A nil class with a nil error means the rider is unclassified.
func (s *ClassService) Classify(ctx context.Context, riderID int64, discipline string, on time.Time) (*models.ClassDefinition, error) {
	if err := validateDiscipline(discipline); err != nil {
		return nil, err
	}

	riders, err := s.repos.Rider.GetByIDs(ctx, []int64{riderID})
	if err != nil {
		return nil, err
	}
	rider, ok := riders[riderID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", models.ErrRiderNotFound, riderID)
	}

	classes, err := s.repos.Class.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	id, ok := scoring.ResolveClass(classes, scoring.ClassQuery{
		BirthYear:  rider.BirthYear,
		Gender:     rider.Gender,
		AsOf:       on,
		Discipline: discipline,
		Eligible:   s.tables.Current().LicensePredicate(rider, on),
	})
	if !ok {
		return nil, nil
	}
	class := scoring.NewClassIndex(classes)[id]
	return &class, nil
}
