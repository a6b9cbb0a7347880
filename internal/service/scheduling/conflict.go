package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agendly/scheduler-api/internal/model"
	"github.com/agendly/scheduler-api/internal/repository"
	"github.com/agendly/scheduler-api/pkg/errors"
)

type CheckStatus int

const (
	CheckOk CheckStatus = iota
	CheckHardError
	CheckNeedsConfirmation
)

// Confirmation contexts returned to the client for override re-submission.
const (
	ConfirmBlockOverride = "block_override"
	ConfirmBlockBury     = "block_bury"
)

// CheckResult is the tri-state outcome of conflict detection. A
// NeedsConfirmation is a pause, not a failure: the caller may re-submit
// with explicit override intent.
type CheckResult struct {
	Status  CheckStatus
	Err     *errors.AppError
	Message string
	Context string
	Warning string
}

func resultOk() CheckResult {
	return CheckResult{Status: CheckOk}
}

func resultHard(err *errors.AppError) CheckResult {
	return CheckResult{Status: CheckHardError, Err: err}
}

func resultConfirm(message, context string) CheckResult {
	return CheckResult{Status: CheckNeedsConfirmation, Message: message, Context: context}
}

// Candidate is one occurrence under validation.
type Candidate struct {
	Range          TimeRange
	Kind           model.AppointmentKind
	ProfessionalID *uuid.UUID
	PatientID      *uuid.UUID
	LocationID     *uuid.UUID
	// RequesterID identifies who is booking; only a block's owner may
	// confirm a booking over it.
	RequesterID uuid.UUID
	// BlockOverride signals already-confirmed intent to book over the
	// requester's own block.
	BlockOverride bool
	// SkipOverlap bypasses the general overlap check (extra/fit-in
	// bookings and allow-overbooking professionals). Capacity is still
	// enforced.
	SkipOverlap bool
	ExcludeID   *uuid.UUID
}

// ConflictDetector checks a candidate against existing bookings, blocks
// and location capacity. Checks run in a fixed order because later error
// messages assume the earlier checks already passed.
type ConflictDetector struct {
	appointments repository.AppointmentRepository
	locations    repository.LocationRepository
}

func NewConflictDetector(appointments repository.AppointmentRepository, locations repository.LocationRepository) *ConflictDetector {
	return &ConflictDetector{appointments: appointments, locations: locations}
}

// Check returns the domain outcome; the error return is reserved for
// store failures.
func (d *ConflictDetector) Check(ctx context.Context, c Candidate) (CheckResult, error) {
	var existing []*model.Appointment
	if c.ProfessionalID != nil {
		var err error
		existing, err = d.appointments.FindForDay(ctx, *c.ProfessionalID, c.Range.Start, c.ExcludeID)
		if err != nil {
			return CheckResult{}, fmt.Errorf("failed to load existing bookings: %w", err)
		}
	}

	if res := d.checkBlockPermission(c, existing); res.Status != CheckOk {
		return res, nil
	}

	if !c.SkipOverlap {
		if res := d.checkOverlap(c, existing); res.Status != CheckOk {
			return res, nil
		}
	}

	res, err := d.checkCapacity(ctx, c)
	if err != nil {
		return CheckResult{}, err
	}
	if res.Status != CheckOk {
		return res, nil
	}

	res = resultOk()
	res.Warning = duplicatePatientWarning(c, existing)
	return res, nil
}

// checkBlockPermission runs even for extra/fit-in bookings. A global block
// (no owner) and another professional's block are hard stops; the
// requester's own block asks for confirmation once.
func (d *ConflictDetector) checkBlockPermission(c Candidate, existing []*model.Appointment) CheckResult {
	for _, e := range existing {
		if e.Kind != model.KindBlock || !e.Occupies() {
			continue
		}
		if !c.Range.Overlaps(TimeRange{Start: e.StartTime, End: e.EndTime}) {
			continue
		}
		if e.ProfessionalID == nil || *e.ProfessionalID != c.RequesterID {
			return resultHard(errors.NewPermission("time is blocked; only the owning professional can fit bookings into this period"))
		}
		if !c.BlockOverride {
			return resultConfirm("this time is blocked on your schedule, book over it anyway?", ConfirmBlockOverride)
		}
	}
	return resultOk()
}

func (d *ConflictDetector) checkOverlap(c Candidate, existing []*model.Appointment) CheckResult {
	for _, e := range existing {
		if !e.Occupies() {
			continue
		}
		if !c.Range.Overlaps(TimeRange{Start: e.StartTime, End: e.EndTime}) {
			continue
		}
		if c.Kind == model.KindBlock {
			if e.Kind == model.KindAppointment {
				return resultConfirm("creating this block would bury existing appointments, force it anyway?", ConfirmBlockBury)
			}
			continue
		}
		return resultHard(errors.NewConflict(describeConflict(e)))
	}
	return resultOk()
}

// checkCapacity always runs: a full room is a physical constraint and no
// override flag lifts it. Capacity zero means unlimited.
func (d *ConflictDetector) checkCapacity(ctx context.Context, c Candidate) (CheckResult, error) {
	if c.LocationID == nil {
		return resultOk(), nil
	}

	loc, err := d.locations.Get(ctx, *c.LocationID)
	if err != nil {
		return CheckResult{}, fmt.Errorf("failed to get location: %w", err)
	}
	if loc.Capacity <= 0 {
		return resultOk(), nil
	}

	count, err := d.appointments.CountOverlappingAtLocation(ctx, *c.LocationID, c.Range.Start, c.Range.End, c.ExcludeID)
	if err != nil {
		return CheckResult{}, fmt.Errorf("failed to count location occupancy: %w", err)
	}
	if count >= loc.Capacity {
		return resultHard(errors.NewConflict(fmt.Sprintf("location full, capacity %d", loc.Capacity))), nil
	}
	return resultOk(), nil
}

func duplicatePatientWarning(c Candidate, existing []*model.Appointment) string {
	if c.Kind != model.KindAppointment || c.PatientID == nil {
		return ""
	}
	for _, e := range existing {
		if e.PatientID != nil && *e.PatientID == *c.PatientID && e.Occupies() {
			return "patient already has a booking on this day"
		}
	}
	return ""
}

func describeConflict(e *model.Appointment) string {
	window := fmt.Sprintf("%s-%s",
		e.StartTime.Format("15:04"),
		e.EndTime.Format("15:04"))

	msg := fmt.Sprintf("conflicts with an existing booking %s on %s",
		window, e.StartTime.Format("2006-01-02"))
	if e.PatientID != nil {
		msg = fmt.Sprintf("conflicts with patient %s booked %s on %s",
			e.PatientID, window, e.StartTime.Format("2006-01-02"))
	}
	if e.LocationID != nil {
		msg += fmt.Sprintf(" at location %s", e.LocationID)
	}
	return msg
}

// dayOf truncates t to its calendar day.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
