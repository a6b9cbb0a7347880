package commission

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/agendly/scheduler-api/internal/model"
	"github.com/agendly/scheduler-api/internal/repository"
	"github.com/agendly/scheduler-api/pkg/logger"
)

// Fee-schedule rows change rarely; cache them briefly to keep the ledger
// recalculation path off the database for repeated methods.
const feeCacheTTL = 5 * time.Minute

type Service struct {
	commissions repository.CommissionRepository
	invoices    repository.InvoiceRepository
	feeCache    *gocache.Cache
	logger      *logger.Logger
}

func NewService(commissions repository.CommissionRepository, invoices repository.InvoiceRepository, logger *logger.Logger) *Service {
	return &Service{
		commissions: commissions,
		invoices:    invoices,
		feeCache:    gocache.New(feeCacheTTL, 2*feeCacheTTL),
		logger:      logger,
	}
}

// HandleStatusChange reacts to an appointment status write. Only the
// transition into or out of completed has ledger side effects.
func (s *Service) HandleStatusChange(ctx context.Context, appt *model.Appointment) error {
	if appt.Status == model.AppointmentStatusCompleted {
		return s.Recalculate(ctx, appt)
	}
	return s.removePending(ctx, appt.ID)
}

// HandleEdit reacts to price/service/professional edits while the
// appointment stays completed.
func (s *Service) HandleEdit(ctx context.Context, appt *model.Appointment) error {
	if appt.Status != model.AppointmentStatusCompleted {
		return nil
	}
	return s.Recalculate(ctx, appt)
}

// HandleDeletion clears a pending ledger entry for a removed appointment.
// A paid entry stays: money already moved.
func (s *Service) HandleDeletion(ctx context.Context, appointmentID uuid.UUID) error {
	return s.removePending(ctx, appointmentID)
}

// Recalculate computes and upserts the ledger entry for a completed
// appointment. Commission is gated on a finalized invoice: a
// completed-but-unbilled appointment commissions nothing.
func (s *Service) Recalculate(ctx context.Context, appt *model.Appointment) error {
	if appt.Status != model.AppointmentStatusCompleted || appt.ProfessionalID == nil {
		return nil
	}

	existing, err := s.commissions.GetEntryByAppointment(ctx, appt.ID)
	if err != nil {
		return fmt.Errorf("failed to load commission entry: %w", err)
	}
	if existing != nil && existing.Status == model.CommissionEntryPaid {
		// Paid entries are immutable, even when the price later changes.
		return nil
	}

	invoice, err := s.invoices.InvoiceForAppointment(ctx, appt.ID)
	if err != nil {
		return fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		return nil
	}

	rule, err := s.resolveRule(ctx, *appt.ProfessionalID, appt.ServiceID)
	if err != nil {
		return err
	}
	if rule == nil {
		// No rule at all: an orphaned pending entry must not survive.
		return s.removePending(ctx, appt.ID)
	}

	basis := appt.Price
	if rule.Basis == model.CommissionBasisNet {
		feePercent, err := s.resolveFeePercent(ctx, invoice)
		if err != nil {
			return err
		}
		basis = appt.Price - appt.Price*feePercent/100
	}

	amount := rule.Value
	if rule.Type == model.CommissionTypePercentage {
		amount = basis * rule.Value / 100
	}

	if existing != nil {
		existing.Amount = amount
		existing.ProfessionalID = *appt.ProfessionalID
		if err := s.commissions.UpdateEntry(ctx, existing); err != nil {
			return fmt.Errorf("failed to update commission entry: %w", err)
		}
		return nil
	}

	entry := &model.CommissionEntry{
		AppointmentID:  appt.ID,
		ProfessionalID: *appt.ProfessionalID,
		Amount:         amount,
		Status:         model.CommissionEntryPending,
	}
	entry.ID = uuid.New()
	if err := s.commissions.CreateEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to create commission entry: %w", err)
	}
	return nil
}

// resolveRule is an ordered lookup: exact-service rule first, then the
// professional's null-service default.
func (s *Service) resolveRule(ctx context.Context, professionalID uuid.UUID, serviceID *uuid.UUID) (*model.CommissionRule, error) {
	rules, err := s.commissions.RulesFor(ctx, professionalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load commission rules: %w", err)
	}

	if serviceID != nil {
		for _, r := range rules {
			if r.ServiceID != nil && *r.ServiceID == *serviceID {
				return r, nil
			}
		}
	}
	for _, r := range rules {
		if r.ServiceID == nil {
			return r, nil
		}
	}
	return nil, nil
}

// resolveFeePercent prefers the fee rate recorded on the invoice at
// payment time, falling back to the schedule keyed by method and
// installment count.
func (s *Service) resolveFeePercent(ctx context.Context, invoice *model.Invoice) (float64, error) {
	if invoice.FeeRate != nil {
		return *invoice.FeeRate, nil
	}
	if invoice.PaymentMethod == "" {
		return 0, nil
	}

	installments := invoice.Installments
	if installments < 1 {
		installments = 1
	}

	cacheKey := fmt.Sprintf("%s:%d", invoice.PaymentMethod, installments)
	if cached, found := s.feeCache.Get(cacheKey); found {
		return cached.(float64), nil
	}

	fee, err := s.invoices.FeeFor(ctx, invoice.PaymentMethod, installments)
	if err != nil {
		return 0, fmt.Errorf("failed to load payment fee: %w", err)
	}
	if fee == nil {
		return 0, nil
	}

	s.feeCache.Set(cacheKey, fee.FeePercent, gocache.DefaultExpiration)
	return fee.FeePercent, nil
}

func (s *Service) removePending(ctx context.Context, appointmentID uuid.UUID) error {
	existing, err := s.commissions.GetEntryByAppointment(ctx, appointmentID)
	if err != nil {
		return fmt.Errorf("failed to load commission entry: %w", err)
	}
	if existing == nil || existing.Status == model.CommissionEntryPaid {
		return nil
	}
	if err := s.commissions.DeleteEntryByAppointment(ctx, appointmentID); err != nil {
		return fmt.Errorf("failed to delete commission entry: %w", err)
	}
	return nil
}

func (s *Service) ListEntries(ctx context.Context, professionalID uuid.UUID, status model.CommissionEntryStatus) ([]*model.CommissionEntry, error) {
	return s.commissions.ListEntries(ctx, professionalID, status)
}

func (s *Service) CreateRule(ctx context.Context, rule *model.CommissionRule) error {
	rule.ID = uuid.New()
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = time.Now()
	return s.commissions.CreateRule(ctx, rule)
}

func (s *Service) DeleteRule(ctx context.Context, id uuid.UUID) error {
	return s.commissions.DeleteRule(ctx, id)
}

func (s *Service) RulesFor(ctx context.Context, professionalID uuid.UUID) ([]*model.CommissionRule, error) {
	return s.commissions.RulesFor(ctx, professionalID)
}

func (s *Service) ListFees(ctx context.Context) ([]*model.PaymentFee, error) {
	return s.invoices.ListFees(ctx)
}
