package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/agendly/scheduler-api/internal/model"
)

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) *appointmentRepository {
	return &appointmentRepository{BaseRepository: NewBaseRepository(db)}
}

const appointmentColumns = `
	id, kind, professional_id, patient_id, service_id, location_id,
	invoice_id, start_time, end_time, status, price, original_price,
	discount, addition, payment_method, is_extra, notes,
	recurrence_group_id, created_at, updated_at, deleted_at
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, kind, professional_id, patient_id, service_id, location_id,
			start_time, end_time, status, price, original_price,
			discount, addition, payment_method, is_extra, notes,
			recurrence_group_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.Kind,
		appointment.ProfessionalID,
		appointment.PatientID,
		appointment.ServiceID,
		appointment.LocationID,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.Price,
		appointment.OriginalPrice,
		appointment.Discount,
		appointment.Addition,
		appointment.PaymentMethod,
		appointment.IsExtra,
		appointment.Notes,
		appointment.RecurrenceGroupID,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET start_time = $1, end_time = $2, service_id = $3, location_id = $4,
			price = $5, original_price = $6, discount = $7, addition = $8,
			payment_method = $9, is_extra = $10, notes = $11, status = $12,
			updated_at = $13
		WHERE id = $14
	`
	result, err := r.db.ExecContext(ctx, query,
		appointment.StartTime,
		appointment.EndTime,
		appointment.ServiceID,
		appointment.LocationID,
		appointment.Price,
		appointment.OriginalPrice,
		appointment.Discount,
		appointment.Addition,
		appointment.PaymentMethod,
		appointment.IsExtra,
		appointment.Notes,
		appointment.Status,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}
	return nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + appointmentColumns

	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, status, time.Now(), id); err != nil {
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}
	return nil
}

func (r *appointmentRepository) DeleteByGroup(ctx context.Context, groupID uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE recurrence_group_id = $1`, groupID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete recurrence group: %w", err)
	}
	return result.RowsAffected()
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters.ProfessionalID != nil {
		query += fmt.Sprintf(" AND professional_id = $%d", argCount)
		args = append(args, *filters.ProfessionalID)
		argCount++
	}
	if filters.PatientID != nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, *filters.PatientID)
		argCount++
	}
	if filters.LocationID != nil {
		query += fmt.Sprintf(" AND location_id = $%d", argCount)
		args = append(args, *filters.LocationID)
		argCount++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}
	if !filters.From.IsZero() {
		query += fmt.Sprintf(" AND end_time > $%d", argCount)
		args = append(args, filters.From)
		argCount++
	}
	if !filters.To.IsZero() {
		query += fmt.Sprintf(" AND start_time < $%d", argCount)
		args = append(args, filters.To)
		argCount++
	}

	query += " ORDER BY start_time ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// FindForDay returns every record touching the professional's calendar
// day, including global blocks, which belong to no one and block everyone.
func (r *appointmentRepository) FindForDay(ctx context.Context, professionalID uuid.UUID, day time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE (professional_id = $1 OR (kind = 'block' AND professional_id IS NULL))
		AND start_time < $2 AND end_time > $3
	`
	args := []interface{}{professionalID, dayEnd, dayStart}

	if excludeID != nil {
		query += " AND id != $4"
		args = append(args, *excludeID)
	}
	query += " ORDER BY start_time ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find day bookings: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) CountOverlappingAtLocation(ctx context.Context, locationID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM appointments
		WHERE location_id = $1
		AND status != 'cancelled'
		AND start_time < $2 AND end_time > $3
	`
	args := []interface{}{locationID, end, start}

	if excludeID != nil {
		query += " AND id != $4"
		args = append(args, *excludeID)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count location occupancy: %w", err)
	}
	return count, nil
}
