package database

import (
	"context"
	"fmt"

	"github.com/yourusername/ranking-engine/internal/config"
)

// requiredTables must exist before the engine can run.
var requiredTables = []string{
	"riders", "clubs", "series", "events", "results",
	"class_definitions", "point_scales", "point_scale_values",
	"ranking_points", "ranking_snapshots", "club_rider_points",
}

// Initialize creates a database connection pool and verifies the schema is migrated
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	missing, err := db.missingTables(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to inspect schema: %w", err)
	}
	if len(missing) > 0 {
		db.Close()
		return nil, fmt.Errorf("schema is not migrated, missing tables %v: run migrations/0001_init.up.sql", missing)
	}

	return db, nil
}

func (db *DB) missingTables(ctx context.Context) ([]string, error) {
	var missing []string
	for _, table := range requiredTables {
		var exists bool
		if err := db.pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", "public."+table).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			missing = append(missing, table)
		}
	}
	return missing, nil
}
