package model

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilityWindow is one working interval for a professional on a
// weekday. Times are wall-clock "HH:MM" strings; several windows per
// weekday may exist and may overlap.
type AvailabilityWindow struct {
	Base
	ProfessionalID uuid.UUID    `db:"professional_id" json:"professional_id"`
	Weekday        time.Weekday `db:"weekday" json:"weekday"`
	StartTime      string       `db:"start_time" json:"start_time"`
	EndTime        string       `db:"end_time" json:"end_time"`
	LocationID     *uuid.UUID   `db:"location_id" json:"location_id,omitempty"`
}

type CreateWindowRequest struct {
	ProfessionalID uuid.UUID  `json:"professional_id" validate:"required"`
	Weekday        int        `json:"weekday" validate:"min=0,max=6"`
	StartTime      string     `json:"start_time" validate:"required"`
	EndTime        string     `json:"end_time" validate:"required"`
	LocationID     *uuid.UUID `json:"location_id"`
}

type FreeSlotsRequest struct {
	ProfessionalID  uuid.UUID `form:"professional_id" validate:"required"`
	Date            string    `form:"date" validate:"required,datetime=2006-01-02"`
	DurationMinutes int       `form:"duration_minutes" validate:"required,min=1"`
}
