package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agendly/scheduler-api/internal/model"
)

// In-memory stores backing the package tests.

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
	failCreates  int
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: map[uuid.UUID]*model.Appointment{}}
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	if r.failCreates > 0 {
		r.failCreates--
		return fmt.Errorf("insert rejected")
	}
	cp := *a
	r.appointments[a.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	a, ok := r.appointments[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAppointmentRepo) Update(ctx context.Context, a *model.Appointment) error {
	if _, ok := r.appointments[a.ID]; !ok {
		return fmt.Errorf("not found")
	}
	cp := *a
	r.appointments[a.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	a, ok := r.appointments[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	a.Status = status
	cp := *a
	return &cp, nil
}

func (r *fakeAppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.appointments[id]; !ok {
		return fmt.Errorf("not found")
	}
	delete(r.appointments, id)
	return nil
}

func (r *fakeAppointmentRepo) DeleteByGroup(ctx context.Context, groupID uuid.UUID) (int64, error) {
	var n int64
	for id, a := range r.appointments {
		if a.RecurrenceGroupID != nil && *a.RecurrenceGroupID == groupID {
			delete(r.appointments, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeAppointmentRepo) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range r.appointments {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) FindForDay(ctx context.Context, professionalID uuid.UUID, day time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var out []*model.Appointment
	for _, a := range r.appointments {
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		mine := a.ProfessionalID != nil && *a.ProfessionalID == professionalID
		globalBlock := a.Kind == model.KindBlock && a.ProfessionalID == nil
		if !mine && !globalBlock {
			continue
		}
		if a.StartTime.Before(dayEnd) && a.EndTime.After(dayStart) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) CountOverlappingAtLocation(ctx context.Context, locationID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (int, error) {
	count := 0
	for _, a := range r.appointments {
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if a.LocationID == nil || *a.LocationID != locationID || !a.Occupies() {
			continue
		}
		if a.StartTime.Before(end) && a.EndTime.After(start) {
			count++
		}
	}
	return count, nil
}

type fakeAvailabilityRepo struct {
	windows []*model.AvailabilityWindow
}

func (r *fakeAvailabilityRepo) WindowsFor(ctx context.Context, professionalID uuid.UUID, weekday time.Weekday) ([]*model.AvailabilityWindow, error) {
	var out []*model.AvailabilityWindow
	for _, w := range r.windows {
		if w.ProfessionalID == professionalID && w.Weekday == weekday {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *fakeAvailabilityRepo) Create(ctx context.Context, w *model.AvailabilityWindow) error {
	r.windows = append(r.windows, w)
	return nil
}

func (r *fakeAvailabilityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i, w := range r.windows {
		if w.ID == id {
			r.windows = append(r.windows[:i], r.windows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("not found")
}

func (r *fakeAvailabilityRepo) ListForProfessional(ctx context.Context, professionalID uuid.UUID) ([]*model.AvailabilityWindow, error) {
	var out []*model.AvailabilityWindow
	for _, w := range r.windows {
		if w.ProfessionalID == professionalID {
			out = append(out, w)
		}
	}
	return out, nil
}

type fakeLocationRepo struct {
	locations map[uuid.UUID]*model.Location
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{locations: map[uuid.UUID]*model.Location{}}
}

func (r *fakeLocationRepo) Create(ctx context.Context, l *model.Location) error {
	r.locations[l.ID] = l
	return nil
}

func (r *fakeLocationRepo) Get(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	l, ok := r.locations[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return l, nil
}

func (r *fakeLocationRepo) Update(ctx context.Context, l *model.Location) error {
	r.locations[l.ID] = l
	return nil
}

func (r *fakeLocationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.locations, id)
	return nil
}

func (r *fakeLocationRepo) List(ctx context.Context) ([]*model.Location, error) {
	var out []*model.Location
	for _, l := range r.locations {
		out = append(out, l)
	}
	return out, nil
}

type fakeProfessionalRepo struct {
	professionals map[uuid.UUID]*model.Professional
}

func newFakeProfessionalRepo() *fakeProfessionalRepo {
	return &fakeProfessionalRepo{professionals: map[uuid.UUID]*model.Professional{}}
}

func (r *fakeProfessionalRepo) Create(ctx context.Context, p *model.Professional) error {
	r.professionals[p.ID] = p
	return nil
}

func (r *fakeProfessionalRepo) Get(ctx context.Context, id uuid.UUID) (*model.Professional, error) {
	p, ok := r.professionals[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (r *fakeProfessionalRepo) GetByEmail(ctx context.Context, email string) (*model.Professional, error) {
	for _, p := range r.professionals {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (r *fakeProfessionalRepo) List(ctx context.Context) ([]*model.Professional, error) {
	var out []*model.Professional
	for _, p := range r.professionals {
		out = append(out, p)
	}
	return out, nil
}

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
}

func (r *fakeOutboxRepo) Create(ctx context.Context, e *model.OutboxEvent) error {
	r.events = append(r.events, e)
	return nil
}

func (r *fakeOutboxRepo) GetPendingWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	var out []*model.OutboxEvent
	for _, e := range r.events {
		if e.Status == model.OutboxStatusPending && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeOutboxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, retryCount int) error {
	for _, e := range r.events {
		if e.ID == id {
			e.Status = status
			e.RetryCount = retryCount
			return nil
		}
	}
	return fmt.Errorf("not found")
}

type fakeAuditRepo struct {
	logs []*model.AuditLog
}

func (r *fakeAuditRepo) Create(ctx context.Context, l *model.AuditLog) error {
	r.logs = append(r.logs, l)
	return nil
}

func (r *fakeAuditRepo) List(ctx context.Context, entityType string, entityID uuid.UUID) ([]*model.AuditLog, error) {
	var out []*model.AuditLog
	for _, l := range r.logs {
		if l.EntityType == entityType && l.EntityID == entityID {
			out = append(out, l)
		}
	}
	return out, nil
}

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
