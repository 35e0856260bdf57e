package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/ranking-engine/internal/database"
	"github.com/yourusername/ranking-engine/internal/models"
)

// PostgresClassRepository implements ClassRepository for PostgreSQL
type PostgresClassRepository struct {
	db *database.DB
}

// NewPostgresClassRepository creates a new class repository
func NewPostgresClassRepository(db *database.DB) ClassRepository {
	return &PostgresClassRepository{db: db}
}

// ListAll returns every class definition, active or not.
// Resolution filters on Active itself so stored class ids stay resolvable.
func (r *PostgresClassRepository) ListAll(ctx context.Context) ([]models.ClassDefinition, error) {
	query := `
		SELECT id, name, gender, min_age, max_age, disciplines, sort_order,
		       active, awards_points, series_eligible, ranking_type
		FROM class_definitions
		ORDER BY sort_order, id
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query classes: %w", err)
	}
	defer rows.Close()

	var classes []models.ClassDefinition
	for rows.Next() {
		var class models.ClassDefinition
		var gender, rankingType string
		if err := rows.Scan(
			&class.ID, &class.Name, &gender, &class.MinAge, &class.MaxAge, &class.Disciplines,
			&class.SortOrder, &class.Active, &class.AwardsPoints, &class.SeriesEligible, &rankingType,
		); err != nil {
			return nil, fmt.Errorf("failed to scan class: %w", err)
		}
		class.Gender = models.Gender(gender)
		class.RankingType = models.RankingType(rankingType)
		if err := models.ValidateRecord(&class); err != nil {
			return nil, fmt.Errorf("class %d: %w", class.ID, err)
		}
		classes = append(classes, class)
	}
	return classes, rows.Err()
}

// PostgresPointScaleRepository implements PointScaleRepository for PostgreSQL
type PostgresPointScaleRepository struct {
	db *database.DB
}

// NewPostgresPointScaleRepository creates a new point scale repository
func NewPostgresPointScaleRepository(db *database.DB) PointScaleRepository {
	return &PostgresPointScaleRepository{db: db}
}

// GetByIDs loads point scales and their values keyed by scale id
func (r *PostgresPointScaleRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.PointScale, error) {
	scales := make(map[int64]*models.PointScale, len(ids))
	if len(ids) == 0 {
		return scales, nil
	}
	q := r.db.Querier(ctx)

	rows, err := q.Query(ctx, `SELECT id, name, discipline, active FROM point_scales WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query point scales: %w", err)
	}
	for rows.Next() {
		var scale models.PointScale
		if err := rows.Scan(&scale.ID, &scale.Name, &scale.Discipline, &scale.Active); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan point scale: %w", err)
		}
		scales[scale.ID] = &scale
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	query := `
		SELECT scale_id, position, points::text, run1_points::text, run2_points::text
		FROM point_scale_values
		WHERE scale_id = ANY($1)
		ORDER BY scale_id, position
	`
	rows, err = q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query point scale values: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var scaleID int64
		var value models.PointScaleValue
		var points, run1, run2 string
		if err := rows.Scan(&scaleID, &value.Position, &points, &run1, &run2); err != nil {
			return nil, fmt.Errorf("failed to scan point scale value: %w", err)
		}
		if value.Points, err = parseDecimal("points", points); err != nil {
			return nil, err
		}
		if value.Run1Points, err = parseDecimal("run1_points", run1); err != nil {
			return nil, err
		}
		if value.Run2Points, err = parseDecimal("run2_points", run2); err != nil {
			return nil, err
		}
		if scale, ok := scales[scaleID]; ok {
			scale.Values = append(scale.Values, value)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for id, scale := range scales {
		if err := models.ValidateRecord(scale); err != nil {
			return nil, fmt.Errorf("point scale %d: %w", id, err)
		}
	}
	return scales, nil
}
