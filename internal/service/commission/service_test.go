package commission

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendly/scheduler-api/internal/model"
	"github.com/agendly/scheduler-api/pkg/logger"
)

type fakeCommissionRepo struct {
	rules   []*model.CommissionRule
	entries map[uuid.UUID]*model.CommissionEntry
}

func newFakeCommissionRepo() *fakeCommissionRepo {
	return &fakeCommissionRepo{entries: map[uuid.UUID]*model.CommissionEntry{}}
}

func (r *fakeCommissionRepo) RulesFor(ctx context.Context, professionalID uuid.UUID) ([]*model.CommissionRule, error) {
	var out []*model.CommissionRule
	for _, rule := range r.rules {
		if rule.ProfessionalID == professionalID {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r *fakeCommissionRepo) CreateRule(ctx context.Context, rule *model.CommissionRule) error {
	r.rules = append(r.rules, rule)
	return nil
}

func (r *fakeCommissionRepo) DeleteRule(ctx context.Context, id uuid.UUID) error {
	for i, rule := range r.rules {
		if rule.ID == id {
			r.rules = append(r.rules[:i], r.rules[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("not found")
}

func (r *fakeCommissionRepo) GetEntryByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.CommissionEntry, error) {
	e, ok := r.entries[appointmentID]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *fakeCommissionRepo) CreateEntry(ctx context.Context, e *model.CommissionEntry) error {
	cp := *e
	r.entries[e.AppointmentID] = &cp
	return nil
}

func (r *fakeCommissionRepo) UpdateEntry(ctx context.Context, e *model.CommissionEntry) error {
	cp := *e
	r.entries[e.AppointmentID] = &cp
	return nil
}

func (r *fakeCommissionRepo) DeleteEntryByAppointment(ctx context.Context, appointmentID uuid.UUID) error {
	delete(r.entries, appointmentID)
	return nil
}

func (r *fakeCommissionRepo) ListEntries(ctx context.Context, professionalID uuid.UUID, status model.CommissionEntryStatus) ([]*model.CommissionEntry, error) {
	var out []*model.CommissionEntry
	for _, e := range r.entries {
		if e.ProfessionalID != professionalID {
			continue
		}
		if status != "" && e.Status != status {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type fakeInvoiceRepo struct {
	invoices map[uuid.UUID]*model.Invoice
	fees     []*model.PaymentFee
	feeLoads int
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: map[uuid.UUID]*model.Invoice{}}
}

func (r *fakeInvoiceRepo) InvoiceForAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Invoice, error) {
	inv, ok := r.invoices[appointmentID]
	if !ok {
		return nil, nil
	}
	return inv, nil
}

func (r *fakeInvoiceRepo) FeeFor(ctx context.Context, method string, installments int) (*model.PaymentFee, error) {
	r.feeLoads++
	for _, f := range r.fees {
		if f.Method == method && f.Installments == installments {
			return f, nil
		}
	}
	return nil, nil
}

func (r *fakeInvoiceRepo) ListFees(ctx context.Context) ([]*model.PaymentFee, error) {
	return r.fees, nil
}

type commissionEnv struct {
	commissions *fakeCommissionRepo
	invoices    *fakeInvoiceRepo
	svc         *Service
	profID      uuid.UUID
}

func newCommissionEnv() *commissionEnv {
	env := &commissionEnv{
		commissions: newFakeCommissionRepo(),
		invoices:    newFakeInvoiceRepo(),
		profID:      uuid.New(),
	}
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	env.svc = NewService(env.commissions, env.invoices, log)
	return env
}

func (e *commissionEnv) addRule(serviceID *uuid.UUID, ruleType model.CommissionType, value float64, basis model.CommissionBasis) {
	e.commissions.rules = append(e.commissions.rules, &model.CommissionRule{
		Base:           model.Base{ID: uuid.New()},
		ProfessionalID: e.profID,
		ServiceID:      serviceID,
		Type:           ruleType,
		Value:          value,
		Basis:          basis,
	})
}

func (e *commissionEnv) completed(price float64, serviceID *uuid.UUID) *model.Appointment {
	return &model.Appointment{
		Base:           model.Base{ID: uuid.New()},
		Kind:           model.KindAppointment,
		ProfessionalID: &e.profID,
		ServiceID:      serviceID,
		Price:          price,
		Status:         model.AppointmentStatusCompleted,
	}
}

func (e *commissionEnv) invoiceFor(appointmentID uuid.UUID, method string, installments int, feeRate *float64) {
	e.invoices.invoices[appointmentID] = &model.Invoice{
		ID:            uuid.New(),
		PaymentMethod: method,
		Installments:  installments,
		FeeRate:       feeRate,
	}
}

func TestRecalculateGrossPercentage(t *testing.T) {
	env := newCommissionEnv()
	env.addRule(nil, model.CommissionTypePercentage, 40, model.CommissionBasisGross)
	appt := env.completed(200, nil)
	env.invoiceFor(appt.ID, "cash", 1, nil)

	require.NoError(t, env.svc.Recalculate(context.Background(), appt))

	entry := env.commissions.entries[appt.ID]
	require.NotNil(t, entry)
	assert.Equal(t, 80.0, entry.Amount)
	assert.Equal(t, model.CommissionEntryPending, entry.Status)
	assert.Equal(t, env.profID, entry.ProfessionalID)
}

func TestRecalculateNetDeductsFee(t *testing.T) {
	env := newCommissionEnv()
	env.addRule(nil, model.CommissionTypePercentage, 40, model.CommissionBasisNet)
	appt := env.completed(200, nil)
	rate := 5.0
	env.invoiceFor(appt.ID, "credit_card", 1, &rate)

	require.NoError(t, env.svc.Recalculate(context.Background(), appt))

	// 200 - 5% fee = 190 basis, 40% of that.
	entry := env.commissions.entries[appt.ID]
	require.NotNil(t, entry)
	assert.InDelta(t, 76.0, entry.Amount, 1e-9)
}

func TestRecalculateNetFeeScheduleFallback(t *testing.T) {
	env := newCommissionEnv()
	env.addRule(nil, model.CommissionTypePercentage, 40, model.CommissionBasisNet)
	env.invoices.fees = append(env.invoices.fees, &model.PaymentFee{
		Base: model.Base{ID: uuid.New()}, Method: "credit_card", Installments: 2, FeePercent: 3,
	})
	appt := env.completed(200, nil)
	// No rate recorded on the invoice, so the schedule applies.
	env.invoiceFor(appt.ID, "credit_card", 2, nil)

	require.NoError(t, env.svc.Recalculate(context.Background(), appt))

	entry := env.commissions.entries[appt.ID]
	require.NotNil(t, entry)
	assert.InDelta(t, 77.6, entry.Amount, 1e-9)

	// A second pass hits the fee cache instead of the store.
	delete(env.commissions.entries, appt.ID)
	require.NoError(t, env.svc.Recalculate(context.Background(), appt))
	assert.Equal(t, 1, env.invoices.feeLoads)
}

func TestRecalculateFixedAmount(t *testing.T) {
	env := newCommissionEnv()
	env.addRule(nil, model.CommissionTypeFixed, 30, model.CommissionBasisGross)
	appt := env.completed(200, nil)
	env.invoiceFor(appt.ID, "cash", 1, nil)

	require.NoError(t, env.svc.Recalculate(context.Background(), appt))

	entry := env.commissions.entries[appt.ID]
	require.NotNil(t, entry)
	assert.Equal(t, 30.0, entry.Amount)
}

func TestRecalculateRequiresInvoice(t *testing.T) {
	env := newCommissionEnv()
	env.addRule(nil, model.CommissionTypePercentage, 40, model.CommissionBasisGross)
	appt := env.completed(200, nil)

	// Completed but unbilled commissions nothing.
	require.NoError(t, env.svc.Recalculate(context.Background(), appt))
	assert.Empty(t, env.commissions.entries)
}

func TestRecalculatePaidEntryImmutable(t *testing.T) {
	env := newCommissionEnv()
	env.addRule(nil, model.CommissionTypePercentage, 40, model.CommissionBasisGross)
	appt := env.completed(200, nil)
	env.invoiceFor(appt.ID, "cash", 1, nil)
	env.commissions.entries[appt.ID] = &model.CommissionEntry{
		Base:           model.Base{ID: uuid.New()},
		AppointmentID:  appt.ID,
		ProfessionalID: env.profID,
		Amount:         10,
		Status:         model.CommissionEntryPaid,
	}

	require.NoError(t, env.svc.Recalculate(context.Background(), appt))
	assert.Equal(t, 10.0, env.commissions.entries[appt.ID].Amount)
}

func TestRecalculateExactServiceRuleWins(t *testing.T) {
	env := newCommissionEnv()
	serviceID := uuid.New()
	env.addRule(nil, model.CommissionTypePercentage, 40, model.CommissionBasisGross)
	env.addRule(&serviceID, model.CommissionTypePercentage, 10, model.CommissionBasisGross)
	appt := env.completed(200, &serviceID)
	env.invoiceFor(appt.ID, "cash", 1, nil)

	require.NoError(t, env.svc.Recalculate(context.Background(), appt))

	entry := env.commissions.entries[appt.ID]
	require.NotNil(t, entry)
	assert.Equal(t, 20.0, entry.Amount)
}

func TestRecalculateNoRuleClearsPending(t *testing.T) {
	env := newCommissionEnv()
	appt := env.completed(200, nil)
	env.invoiceFor(appt.ID, "cash", 1, nil)
	env.commissions.entries[appt.ID] = &model.CommissionEntry{
		Base:           model.Base{ID: uuid.New()},
		AppointmentID:  appt.ID,
		ProfessionalID: env.profID,
		Amount:         50,
		Status:         model.CommissionEntryPending,
	}

	require.NoError(t, env.svc.Recalculate(context.Background(), appt))
	assert.Empty(t, env.commissions.entries)
}

func TestRecalculateUpdatesExistingPending(t *testing.T) {
	env := newCommissionEnv()
	env.addRule(nil, model.CommissionTypePercentage, 40, model.CommissionBasisGross)
	appt := env.completed(300, nil)
	env.invoiceFor(appt.ID, "cash", 1, nil)
	env.commissions.entries[appt.ID] = &model.CommissionEntry{
		Base:           model.Base{ID: uuid.New()},
		AppointmentID:  appt.ID,
		ProfessionalID: env.profID,
		Amount:         80,
		Status:         model.CommissionEntryPending,
	}

	require.NoError(t, env.svc.Recalculate(context.Background(), appt))
	assert.Equal(t, 120.0, env.commissions.entries[appt.ID].Amount)
}

func TestHandleStatusChangeRevertClearsPending(t *testing.T) {
	env := newCommissionEnv()
	appt := env.completed(200, nil)
	appt.Status = model.AppointmentStatusScheduled
	env.commissions.entries[appt.ID] = &model.CommissionEntry{
		Base:           model.Base{ID: uuid.New()},
		AppointmentID:  appt.ID,
		ProfessionalID: env.profID,
		Amount:         80,
		Status:         model.CommissionEntryPending,
	}

	require.NoError(t, env.svc.HandleStatusChange(context.Background(), appt))
	assert.Empty(t, env.commissions.entries)
}

func TestHandleDeletionKeepsPaid(t *testing.T) {
	env := newCommissionEnv()
	apptID := uuid.New()
	env.commissions.entries[apptID] = &model.CommissionEntry{
		Base:           model.Base{ID: uuid.New()},
		AppointmentID:  apptID,
		ProfessionalID: env.profID,
		Amount:         80,
		Status:         model.CommissionEntryPaid,
	}

	require.NoError(t, env.svc.HandleDeletion(context.Background(), apptID))
	assert.Len(t, env.commissions.entries, 1)
}

func TestHandleEditIgnoresNonCompleted(t *testing.T) {
	env := newCommissionEnv()
	env.addRule(nil, model.CommissionTypePercentage, 40, model.CommissionBasisGross)
	appt := env.completed(200, nil)
	appt.Status = model.AppointmentStatusScheduled
	env.invoiceFor(appt.ID, "cash", 1, nil)

	require.NoError(t, env.svc.HandleEdit(context.Background(), appt))
	assert.Empty(t, env.commissions.entries)
}
