package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/agendly/scheduler-api/internal/model"
)

type locationRepository struct {
	BaseRepository
}

func NewLocationRepository(db *sqlx.DB) *locationRepository {
	return &locationRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *locationRepository) Create(ctx context.Context, location *model.Location) error {
	query := `
		INSERT INTO locations (id, name, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		location.ID,
		location.Name,
		location.Capacity,
		location.CreatedAt,
		location.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}
	return nil
}

func (r *locationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	query := `
		SELECT id, name, capacity, created_at, updated_at, deleted_at
		FROM locations WHERE id = $1
	`
	var location model.Location
	if err := r.db.GetContext(ctx, &location, query, id); err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return &location, nil
}

func (r *locationRepository) Update(ctx context.Context, location *model.Location) error {
	query := `
		UPDATE locations SET name = $1, capacity = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query,
		location.Name,
		location.Capacity,
		location.UpdatedAt,
		location.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("location not found")
	}
	return nil
}

func (r *locationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("location not found")
	}
	return nil
}

func (r *locationRepository) List(ctx context.Context) ([]*model.Location, error) {
	query := `
		SELECT id, name, capacity, created_at, updated_at, deleted_at
		FROM locations ORDER BY name ASC
	`
	var locations []*model.Location
	if err := r.db.SelectContext(ctx, &locations, query); err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}
