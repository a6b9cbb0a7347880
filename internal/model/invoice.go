package model

import (
	"github.com/google/uuid"
)

// Invoice is the read-only billing view the scheduler consumes. FeeRate,
// when recorded at payment time, takes precedence over the fee schedule.
type Invoice struct {
	ID            uuid.UUID `db:"id" json:"id"`
	PaymentMethod string    `db:"payment_method" json:"payment_method"`
	Installments  int       `db:"installments" json:"installments"`
	FeeRate       *float64  `db:"applied_fee_rate" json:"applied_fee_rate,omitempty"`
}

// PaymentFee is one row of the fee schedule keyed by payment method and
// installment count.
type PaymentFee struct {
	Base
	Method       string  `db:"method" json:"method"`
	Installments int     `db:"installments" json:"installments"`
	FeePercent   float64 `db:"fee_percent" json:"fee_percent"`
}
