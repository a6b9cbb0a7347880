package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/agendly/scheduler-api/internal/model"
)

type availabilityRepository struct {
	BaseRepository
}

func NewAvailabilityRepository(db *sqlx.DB) *availabilityRepository {
	return &availabilityRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *availabilityRepository) WindowsFor(ctx context.Context, professionalID uuid.UUID, weekday time.Weekday) ([]*model.AvailabilityWindow, error) {
	query := `
		SELECT id, professional_id, weekday, start_time, end_time, location_id,
			   created_at, updated_at, deleted_at
		FROM availability_windows
		WHERE professional_id = $1 AND weekday = $2
		ORDER BY start_time ASC
	`
	var windows []*model.AvailabilityWindow
	if err := r.db.SelectContext(ctx, &windows, query, professionalID, int(weekday)); err != nil {
		return nil, fmt.Errorf("failed to get availability windows: %w", err)
	}
	return windows, nil
}

func (r *availabilityRepository) Create(ctx context.Context, window *model.AvailabilityWindow) error {
	query := `
		INSERT INTO availability_windows (
			id, professional_id, weekday, start_time, end_time, location_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		window.ID,
		window.ProfessionalID,
		int(window.Weekday),
		window.StartTime,
		window.EndTime,
		window.LocationID,
		window.CreatedAt,
		window.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create availability window: %w", err)
	}
	return nil
}

func (r *availabilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM availability_windows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete availability window: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("availability window not found")
	}
	return nil
}

func (r *availabilityRepository) ListForProfessional(ctx context.Context, professionalID uuid.UUID) ([]*model.AvailabilityWindow, error) {
	query := `
		SELECT id, professional_id, weekday, start_time, end_time, location_id,
			   created_at, updated_at, deleted_at
		FROM availability_windows
		WHERE professional_id = $1
		ORDER BY weekday ASC, start_time ASC
	`
	var windows []*model.AvailabilityWindow
	if err := r.db.SelectContext(ctx, &windows, query, professionalID); err != nil {
		return nil, fmt.Errorf("failed to list availability windows: %w", err)
	}
	return windows, nil
}
