package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentKind string

const (
	KindAppointment AppointmentKind = "appointment"
	KindBlock       AppointmentKind = "block"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCheckedIn AppointmentStatus = "checked_in"
	AppointmentStatusAttended  AppointmentStatus = "attended"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// ValidStatus reports whether s is one of the recognized lifecycle statuses.
func ValidStatus(s AppointmentStatus) bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed,
		AppointmentStatusCheckedIn, AppointmentStatusAttended,
		AppointmentStatusCompleted, AppointmentStatusCancelled,
		AppointmentStatusNoShow:
		return true
	}
	return false
}

// Appointment is either a patient appointment or a block. A block with a
// nil ProfessionalID is global and occupies the slot for everyone.
type Appointment struct {
	Base
	Kind              AppointmentKind   `db:"kind" json:"kind"`
	ProfessionalID    *uuid.UUID        `db:"professional_id" json:"professional_id,omitempty"`
	PatientID         *uuid.UUID        `db:"patient_id" json:"patient_id,omitempty"`
	ServiceID         *uuid.UUID        `db:"service_id" json:"service_id,omitempty"`
	LocationID        *uuid.UUID        `db:"location_id" json:"location_id,omitempty"`
	InvoiceID         *uuid.UUID        `db:"invoice_id" json:"invoice_id,omitempty"`
	StartTime         time.Time         `db:"start_time" json:"start_time"`
	EndTime           time.Time         `db:"end_time" json:"end_time"`
	Status            AppointmentStatus `db:"status" json:"status"`
	Price             float64           `db:"price" json:"price"`
	OriginalPrice     float64           `db:"original_price" json:"original_price"`
	Discount          float64           `db:"discount" json:"discount"`
	Addition          float64           `db:"addition" json:"addition"`
	PaymentMethod     *string           `db:"payment_method" json:"payment_method,omitempty"`
	IsExtra           bool              `db:"is_extra" json:"is_extra"`
	Notes             string            `db:"notes" json:"notes,omitempty"`
	RecurrenceGroupID *uuid.UUID        `db:"recurrence_group_id" json:"recurrence_group_id,omitempty"`
}

// FinalPrice applies the pricing invariant: never below zero.
func FinalPrice(original, discount, addition float64) float64 {
	p := original - discount + addition
	if p < 0 {
		return 0
	}
	return p
}

// Occupies reports whether the record still holds its slot.
func (a *Appointment) Occupies() bool {
	return a.Status != AppointmentStatusCancelled
}

type RecurrenceEndType string

const (
	RecurrenceEndCount RecurrenceEndType = "count"
	RecurrenceEndDate  RecurrenceEndType = "date"
)

// RecurrenceSpec describes a weekly repetition pattern for a booking.
type RecurrenceSpec struct {
	Weekdays []time.Weekday    `json:"weekdays" validate:"required,min=1"`
	EndType  RecurrenceEndType `json:"end_type" validate:"required,oneof=count date"`
	Count    int               `json:"count" validate:"omitempty,min=1,max=50"`
	EndDate  string            `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

type CreateBookingRequest struct {
	Kind               AppointmentKind `json:"kind" validate:"omitempty,oneof=appointment block"`
	ProfessionalID     *uuid.UUID      `json:"professional_id"`
	PatientID          *uuid.UUID      `json:"patient_id"`
	ServiceID          *uuid.UUID      `json:"service_id"`
	LocationID         *uuid.UUID      `json:"location_id"`
	Date               string          `json:"date" validate:"required,datetime=2006-01-02"`
	Time               string          `json:"time" validate:"required"`
	DurationMinutes    int             `json:"duration_minutes" validate:"required,min=1"`
	OriginalPrice      float64         `json:"original_price" validate:"min=0"`
	Discount           float64         `json:"discount" validate:"min=0"`
	Addition           float64         `json:"addition" validate:"min=0"`
	PaymentMethod      *string         `json:"payment_method"`
	Notes              string          `json:"notes" validate:"max=1000"`
	IsExtra            bool            `json:"is_extra"`
	ForceBlockOverride bool            `json:"force_block_override"`
	Recurrence         *RecurrenceSpec `json:"recurrence"`
}

type RescheduleRequest struct {
	Date               string          `json:"date" validate:"required,datetime=2006-01-02"`
	Time               string          `json:"time" validate:"required"`
	DurationMinutes    int             `json:"duration_minutes" validate:"required,min=1"`
	ServiceID          *uuid.UUID      `json:"service_id"`
	LocationID         *uuid.UUID      `json:"location_id"`
	OriginalPrice      *float64        `json:"original_price" validate:"omitempty,min=0"`
	Discount           *float64        `json:"discount" validate:"omitempty,min=0"`
	Addition           *float64        `json:"addition" validate:"omitempty,min=0"`
	Notes              *string         `json:"notes"`
	IsExtra            bool            `json:"is_extra"`
	ForceBlockOverride bool            `json:"force_block_override"`
	// RegenerateFuture re-expands the series from the day after this
	// occurrence, keeping the same recurrence group.
	RegenerateFuture *RecurrenceSpec `json:"regenerate_future"`
}

type UpdateStatusRequest struct {
	Status AppointmentStatus `json:"status" validate:"required"`
}

type AppointmentFilters struct {
	ProfessionalID *uuid.UUID
	PatientID      *uuid.UUID
	LocationID     *uuid.UUID
	Status         AppointmentStatus
	From           time.Time
	To             time.Time
}

// BatchResult aggregates the outcome of a recurring booking: callers can
// tell total failure, partial success and full success apart.
type BatchResult struct {
	SuccessCount int            `json:"success_count"`
	FailCount    int            `json:"fail_count"`
	Errors       []string       `json:"errors,omitempty"`
	Warning      string         `json:"warning,omitempty"`
	GroupID      *uuid.UUID     `json:"recurrence_group_id,omitempty"`
	Created      []*Appointment `json:"created,omitempty"`
}
