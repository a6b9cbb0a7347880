package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/agendly/scheduler-api/internal/model"
)

type invoiceRepository struct {
	BaseRepository
}

func NewInvoiceRepository(db *sqlx.DB) *invoiceRepository {
	return &invoiceRepository{BaseRepository: NewBaseRepository(db)}
}

// InvoiceForAppointment follows the appointment's invoice link. nil means
// the appointment has not been billed.
func (r *invoiceRepository) InvoiceForAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Invoice, error) {
	query := `
		SELECT i.id, i.payment_method, i.installments, i.applied_fee_rate
		FROM invoices i
		JOIN appointments a ON a.invoice_id = i.id
		WHERE a.id = $1
	`
	var invoice model.Invoice
	if err := r.db.GetContext(ctx, &invoice, query, appointmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &invoice, nil
}

func (r *invoiceRepository) FeeFor(ctx context.Context, method string, installments int) (*model.PaymentFee, error) {
	query := `
		SELECT id, method, installments, fee_percent, created_at, updated_at, deleted_at
		FROM payment_method_fees
		WHERE method = $1 AND installments = $2
	`
	var fee model.PaymentFee
	if err := r.db.GetContext(ctx, &fee, query, method, installments); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment fee: %w", err)
	}
	return &fee, nil
}

func (r *invoiceRepository) ListFees(ctx context.Context) ([]*model.PaymentFee, error) {
	query := `
		SELECT id, method, installments, fee_percent, created_at, updated_at, deleted_at
		FROM payment_method_fees
		ORDER BY method ASC, installments ASC
	`
	var fees []*model.PaymentFee
	if err := r.db.SelectContext(ctx, &fees, query); err != nil {
		return nil, fmt.Errorf("failed to list payment fees: %w", err)
	}
	return fees, nil
}
