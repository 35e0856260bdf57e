package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/ranking-engine/internal/database"
	"github.com/yourusername/ranking-engine/internal/models"
)

// PostgresRiderRepository implements RiderRepository for PostgreSQL
type PostgresRiderRepository struct {
	db *database.DB
}

// NewPostgresRiderRepository creates a new rider repository
func NewPostgresRiderRepository(db *database.DB) RiderRepository {
	return &PostgresRiderRepository{db: db}
}

// GetByIDs loads riders keyed by id. Unknown ids are absent from the map.
func (r *PostgresRiderRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Rider, error) {
	riders := make(map[int64]*models.Rider, len(ids))
	if len(ids) == 0 {
		return riders, nil
	}

	query := `
		SELECT r.id, r.firstname, r.lastname, r.birth_year, COALESCE(r.gender, ''),
		       r.club_id, COALESCE(c.name, ''), r.license_type, r.license_valid_until
		FROM riders r
		LEFT JOIN clubs c ON c.id = r.club_id
		WHERE r.id = ANY($1)
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query riders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rider models.Rider
		var gender string
		if err := rows.Scan(
			&rider.ID, &rider.FirstName, &rider.LastName, &rider.BirthYear, &gender,
			&rider.ClubID, &rider.ClubName, &rider.LicenseType, &rider.LicenseValidUntil,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rider: %w", err)
		}
		rider.Gender = models.NormalizeGender(gender)
		if err := models.ValidateRecord(&rider); err != nil {
			return nil, fmt.Errorf("rider %d: %w", rider.ID, err)
		}
		riders[rider.ID] = &rider
	}
	return riders, rows.Err()
}

// PostgresClubRepository implements ClubRepository for PostgreSQL
type PostgresClubRepository struct {
	db *database.DB
}

// NewPostgresClubRepository creates a new club repository
func NewPostgresClubRepository(db *database.DB) ClubRepository {
	return &PostgresClubRepository{db: db}
}

// GetByIDs loads clubs keyed by id
func (r *PostgresClubRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Club, error) {
	clubs := make(map[int64]*models.Club, len(ids))
	if len(ids) == 0 {
		return clubs, nil
	}

	rows, err := r.db.Querier(ctx).Query(ctx, `SELECT id, name FROM clubs WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query clubs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var club models.Club
		if err := rows.Scan(&club.ID, &club.Name); err != nil {
			return nil, fmt.Errorf("failed to scan club: %w", err)
		}
		clubs[club.ID] = &club
	}
	return clubs, rows.Err()
}
