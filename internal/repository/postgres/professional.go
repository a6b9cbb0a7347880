package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/agendly/scheduler-api/internal/model"
)

type professionalRepository struct {
	BaseRepository
}

func NewProfessionalRepository(db *sqlx.DB) *professionalRepository {
	return &professionalRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *professionalRepository) Create(ctx context.Context, professional *model.Professional) error {
	query := `
		INSERT INTO professionals (
			id, name, email, password_hash, allow_overbooking, slot_interval_mins,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		professional.ID,
		professional.Name,
		professional.Email,
		professional.PasswordHash,
		professional.AllowOverbooking,
		professional.SlotIntervalMins,
		professional.CreatedAt,
		professional.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create professional: %w", err)
	}
	return nil
}

func (r *professionalRepository) Get(ctx context.Context, id uuid.UUID) (*model.Professional, error) {
	query := `
		SELECT id, name, email, password_hash, allow_overbooking, slot_interval_mins,
			   created_at, updated_at, deleted_at
		FROM professionals WHERE id = $1
	`
	var professional model.Professional
	if err := r.db.GetContext(ctx, &professional, query, id); err != nil {
		return nil, fmt.Errorf("failed to get professional: %w", err)
	}
	return &professional, nil
}

func (r *professionalRepository) GetByEmail(ctx context.Context, email string) (*model.Professional, error) {
	query := `
		SELECT id, name, email, password_hash, allow_overbooking, slot_interval_mins,
			   created_at, updated_at, deleted_at
		FROM professionals WHERE email = $1
	`
	var professional model.Professional
	if err := r.db.GetContext(ctx, &professional, query, email); err != nil {
		return nil, fmt.Errorf("failed to get professional by email: %w", err)
	}
	return &professional, nil
}

func (r *professionalRepository) List(ctx context.Context) ([]*model.Professional, error) {
	query := `
		SELECT id, name, email, password_hash, allow_overbooking, slot_interval_mins,
			   created_at, updated_at, deleted_at
		FROM professionals ORDER BY name ASC
	`
	var professionals []*model.Professional
	if err := r.db.SelectContext(ctx, &professionals, query); err != nil {
		return nil, fmt.Errorf("failed to list professionals: %w", err)
	}
	return professionals, nil
}
