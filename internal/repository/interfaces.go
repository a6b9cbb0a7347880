package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agendly/scheduler-api/internal/model"
)

// All repository interfaces in one file
type (
	// AppointmentRepository handles appointment and block persistence.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error)
		Delete(ctx context.Context, id uuid.UUID) error
		DeleteByGroup(ctx context.Context, groupID uuid.UUID) (int64, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// FindForDay returns every record touching the professional's day,
		// including blocks and global (nil-professional) blocks.
		FindForDay(ctx context.Context, professionalID uuid.UUID, day time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error)
		CountOverlappingAtLocation(ctx context.Context, locationID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (int, error)
	}

	AvailabilityRepository interface {
		WindowsFor(ctx context.Context, professionalID uuid.UUID, weekday time.Weekday) ([]*model.AvailabilityWindow, error)
		Create(ctx context.Context, window *model.AvailabilityWindow) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListForProfessional(ctx context.Context, professionalID uuid.UUID) ([]*model.AvailabilityWindow, error)
	}

	LocationRepository interface {
		Create(ctx context.Context, location *model.Location) error
		Get(ctx context.Context, id uuid.UUID) (*model.Location, error)
		Update(ctx context.Context, location *model.Location) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Location, error)
	}

	CommissionRepository interface {
		RulesFor(ctx context.Context, professionalID uuid.UUID) ([]*model.CommissionRule, error)
		CreateRule(ctx context.Context, rule *model.CommissionRule) error
		DeleteRule(ctx context.Context, id uuid.UUID) error
		GetEntryByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.CommissionEntry, error)
		CreateEntry(ctx context.Context, entry *model.CommissionEntry) error
		UpdateEntry(ctx context.Context, entry *model.CommissionEntry) error
		DeleteEntryByAppointment(ctx context.Context, appointmentID uuid.UUID) error
		ListEntries(ctx context.Context, professionalID uuid.UUID, status model.CommissionEntryStatus) ([]*model.CommissionEntry, error)
	}

	// InvoiceRepository is the read-only billing view.
	InvoiceRepository interface {
		InvoiceForAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Invoice, error)
		FeeFor(ctx context.Context, method string, installments int) (*model.PaymentFee, error)
		ListFees(ctx context.Context) ([]*model.PaymentFee, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, retryCount int) error
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, entityType string, entityID uuid.UUID) ([]*model.AuditLog, error)
	}

	ProfessionalRepository interface {
		Create(ctx context.Context, professional *model.Professional) error
		Get(ctx context.Context, id uuid.UUID) (*model.Professional, error)
		GetByEmail(ctx context.Context, email string) (*model.Professional, error)
		List(ctx context.Context) ([]*model.Professional, error)
	}
)
