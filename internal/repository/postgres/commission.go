package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/agendly/scheduler-api/internal/model"
)

type commissionRepository struct {
	BaseRepository
}

func NewCommissionRepository(db *sqlx.DB) *commissionRepository {
	return &commissionRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *commissionRepository) RulesFor(ctx context.Context, professionalID uuid.UUID) ([]*model.CommissionRule, error) {
	query := `
		SELECT id, professional_id, service_id, type, value, calculation_basis,
			   created_at, updated_at, deleted_at
		FROM commission_rules
		WHERE professional_id = $1
	`
	var rules []*model.CommissionRule
	if err := r.db.SelectContext(ctx, &rules, query, professionalID); err != nil {
		return nil, fmt.Errorf("failed to get commission rules: %w", err)
	}
	return rules, nil
}

func (r *commissionRepository) CreateRule(ctx context.Context, rule *model.CommissionRule) error {
	query := `
		INSERT INTO commission_rules (
			id, professional_id, service_id, type, value, calculation_basis,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		rule.ID,
		rule.ProfessionalID,
		rule.ServiceID,
		rule.Type,
		rule.Value,
		rule.Basis,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create commission rule: %w", err)
	}
	return nil
}

func (r *commissionRepository) DeleteRule(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM commission_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete commission rule: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("commission rule not found")
	}
	return nil
}

// GetEntryByAppointment returns nil without error when no entry exists;
// at most one can, by the unique constraint on appointment_id.
func (r *commissionRepository) GetEntryByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.CommissionEntry, error) {
	query := `
		SELECT id, appointment_id, professional_id, amount, status,
			   created_at, updated_at, deleted_at
		FROM commission_entries
		WHERE appointment_id = $1
	`
	var entry model.CommissionEntry
	if err := r.db.GetContext(ctx, &entry, query, appointmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get commission entry: %w", err)
	}
	return &entry, nil
}

func (r *commissionRepository) CreateEntry(ctx context.Context, entry *model.CommissionEntry) error {
	query := `
		INSERT INTO commission_entries (
			id, appointment_id, professional_id, amount, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.AppointmentID,
		entry.ProfessionalID,
		entry.Amount,
		entry.Status,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create commission entry: %w", err)
	}
	return nil
}

func (r *commissionRepository) UpdateEntry(ctx context.Context, entry *model.CommissionEntry) error {
	query := `
		UPDATE commission_entries
		SET amount = $1, professional_id = $2, status = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		entry.Amount,
		entry.ProfessionalID,
		entry.Status,
		time.Now(),
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update commission entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("commission entry not found")
	}
	return nil
}

func (r *commissionRepository) DeleteEntryByAppointment(ctx context.Context, appointmentID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM commission_entries WHERE appointment_id = $1`, appointmentID)
	if err != nil {
		return fmt.Errorf("failed to delete commission entry: %w", err)
	}
	return nil
}

func (r *commissionRepository) ListEntries(ctx context.Context, professionalID uuid.UUID, status model.CommissionEntryStatus) ([]*model.CommissionEntry, error) {
	query := `
		SELECT id, appointment_id, professional_id, amount, status,
			   created_at, updated_at, deleted_at
		FROM commission_entries
		WHERE professional_id = $1
	`
	args := []interface{}{professionalID}

	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	var entries []*model.CommissionEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list commission entries: %w", err)
	}
	return entries, nil
}
