package model

import (
	"github.com/google/uuid"
)

type CommissionType string

const (
	CommissionTypePercentage CommissionType = "percentage"
	CommissionTypeFixed      CommissionType = "fixed"
)

type CommissionBasis string

const (
	CommissionBasisGross CommissionBasis = "gross"
	CommissionBasisNet   CommissionBasis = "net"
)

// CommissionRule maps a professional (and optionally one service) to a
// payout formula. A nil ServiceID marks the professional's default rule.
type CommissionRule struct {
	Base
	ProfessionalID uuid.UUID       `db:"professional_id" json:"professional_id"`
	ServiceID      *uuid.UUID      `db:"service_id" json:"service_id,omitempty"`
	Type           CommissionType  `db:"type" json:"type"`
	Value          float64         `db:"value" json:"value"`
	Basis          CommissionBasis `db:"calculation_basis" json:"calculation_basis"`
}

type CommissionEntryStatus string

const (
	CommissionEntryPending CommissionEntryStatus = "pending"
	CommissionEntryPaid    CommissionEntryStatus = "paid"
)

// CommissionEntry is one ledger row; at most one exists per appointment
// (unique constraint on appointment_id). Paid entries are immutable.
type CommissionEntry struct {
	Base
	AppointmentID  uuid.UUID             `db:"appointment_id" json:"appointment_id"`
	ProfessionalID uuid.UUID             `db:"professional_id" json:"professional_id"`
	Amount         float64               `db:"amount" json:"amount"`
	Status         CommissionEntryStatus `db:"status" json:"status"`
}

type CreateCommissionRuleRequest struct {
	ProfessionalID uuid.UUID       `json:"professional_id" validate:"required"`
	ServiceID      *uuid.UUID      `json:"service_id"`
	Type           CommissionType  `json:"type" validate:"required,oneof=percentage fixed"`
	Value          float64         `json:"value" validate:"min=0"`
	Basis          CommissionBasis `json:"calculation_basis" validate:"required,oneof=gross net"`
}
