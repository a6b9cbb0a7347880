package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agendly/scheduler-api/internal/email"
	"github.com/agendly/scheduler-api/internal/model"
	"github.com/agendly/scheduler-api/internal/repository"
	"github.com/agendly/scheduler-api/internal/service/audit"
	"github.com/agendly/scheduler-api/internal/service/commission"
	apperrors "github.com/agendly/scheduler-api/pkg/errors"
	"github.com/agendly/scheduler-api/pkg/logger"
	"github.com/agendly/scheduler-api/pkg/metrics"
)

const (
	slotLockTTL     = 10 * time.Second
	maxSampleErrors = 3
)

// Confirmation asks the caller to re-submit with explicit override intent.
type Confirmation struct {
	Message string `json:"message"`
	Context string `json:"context"`
}

// Service orchestrates booking requests: expand the recurrence, validate
// every occurrence against committed data, then commit. There is no
// ambient multi-row transaction; atomicity for hard failures comes from
// the two full passes, and late commit failures are reported
// per-occurrence instead of rolling back the batch.
type Service struct {
	appointments  repository.AppointmentRepository
	availability  repository.AvailabilityRepository
	professionals repository.ProfessionalRepository
	outbox        repository.OutboxRepository
	detector      *ConflictDetector
	commissions   *commission.Service
	auditor       *audit.Service
	locker        SlotLocker
	emails        email.Service
	metrics       *metrics.Metrics
	logger        *logger.Logger
}

func NewService(
	appointments repository.AppointmentRepository,
	availability repository.AvailabilityRepository,
	professionals repository.ProfessionalRepository,
	outbox repository.OutboxRepository,
	detector *ConflictDetector,
	commissions *commission.Service,
	auditor *audit.Service,
	locker SlotLocker,
	emails email.Service,
	m *metrics.Metrics,
	logger *logger.Logger,
) *Service {
	return &Service{
		appointments:  appointments,
		availability:  availability,
		professionals: professionals,
		outbox:        outbox,
		detector:      detector,
		commissions:   commissions,
		auditor:       auditor,
		locker:        locker,
		emails:        emails,
		metrics:       m,
		logger:        logger,
	}
}

// Book validates and commits a booking request, single or recurring. The
// Confirmation return is non-nil when an occurrence needs explicit
// override intent; nothing has been written in that case.
func (s *Service) Book(ctx context.Context, requesterID uuid.UUID, req *model.CreateBookingRequest) (*model.BatchResult, *Confirmation, error) {
	kind := req.Kind
	if kind == "" {
		kind = model.KindAppointment
	}

	if kind == model.KindAppointment {
		if req.ProfessionalID == nil {
			return nil, nil, apperrors.NewValidation("professional is required")
		}
		if req.PatientID == nil {
			return nil, nil, apperrors.NewValidation("patient is required")
		}
		if req.ServiceID == nil {
			return nil, nil, apperrors.NewValidation("service is required")
		}
	}

	startMins, err := MinutesOfDay(req.Time)
	if err != nil {
		return nil, nil, err
	}
	day, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		return nil, nil, apperrors.NewValidation("invalid date, expected YYYY-MM-DD")
	}

	duration := time.Duration(req.DurationMinutes) * time.Minute
	first := day.Add(time.Duration(startMins) * time.Minute)

	var occurrences []Occurrence
	var groupID *uuid.UUID
	if req.Recurrence != nil {
		exp, err := ExpandRecurrence(first, duration, req.Recurrence, false)
		if err != nil {
			return nil, nil, err
		}
		occurrences = exp.Occurrences
		groupID = &exp.GroupID
	} else {
		occurrences = []Occurrence{{Start: first, End: first.Add(duration)}}
	}

	override, blockOverride, err := s.resolveOverrides(ctx, req.ProfessionalID, req.IsExtra, req.ForceBlockOverride)
	if err != nil {
		return nil, nil, err
	}
	skipAvailability := kind == model.KindBlock || override

	if release := s.lockPartitions(ctx, req.ProfessionalID, occurrences); release != nil {
		defer release()
	}

	warning, confirm, err := s.validateBatch(ctx, requesterID, kind, req, occurrences, startMins, skipAvailability, override, blockOverride, nil)
	if err != nil || confirm != nil {
		return nil, confirm, err
	}

	result := s.commitBatch(ctx, requesterID, kind, req, occurrences, groupID)
	result.Warning = warning
	result.GroupID = groupID

	if s.metrics != nil {
		s.metrics.BookingBatchSize.Observe(float64(len(occurrences)))
	}
	if result.SuccessCount > 0 {
		s.notifyBooking(ctx, req.ProfessionalID, result.SuccessCount, occurrences[0].Start)
	}
	return result, nil, nil
}

// notifyBooking sends a best-effort confirmation to the professional.
// Failures are logged; the booking already committed.
func (s *Service) notifyBooking(ctx context.Context, professionalID *uuid.UUID, bookings int, first time.Time) {
	if s.emails == nil || professionalID == nil {
		return
	}
	prof, err := s.professionals.Get(ctx, *professionalID)
	if err != nil {
		s.logger.Error(err, "failed to load professional for notification")
		return
	}
	go func() {
		if err := s.emails.SendBookingConfirmation(context.Background(), prof.Email, prof.Name, bookings, first.Format("2006-01-02")); err != nil {
			s.logger.Error(err, "failed to send booking confirmation", "email", prof.Email)
		}
	}()
}

// validateBatch is pass 1: every occurrence is checked against committed
// data only. Any hard error or confirmation aborts the whole batch before
// anything is written.
func (s *Service) validateBatch(
	ctx context.Context,
	requesterID uuid.UUID,
	kind model.AppointmentKind,
	req *model.CreateBookingRequest,
	occurrences []Occurrence,
	startMins int,
	skipAvailability, override, blockOverride bool,
	excludeID *uuid.UUID,
) (string, *Confirmation, error) {
	started := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ValidationLatency.Observe(time.Since(started).Seconds())
		}
	}()

	var warning string
	endMins := startMins + req.DurationMinutes

	for _, occ := range occurrences {
		if kind == model.KindAppointment && !skipAvailability {
			windows, err := s.availability.WindowsFor(ctx, *req.ProfessionalID, occ.Start.Weekday())
			if err != nil {
				return "", nil, fmt.Errorf("failed to load availability: %w", err)
			}
			if aerr := ResolveAvailability(windows, startMins, endMins); aerr != nil {
				s.countValidated("availability_rejected")
				return "", nil, withOccurrenceDate(aerr, occ.Start)
			}
		}

		res, err := s.detector.Check(ctx, Candidate{
			Range:          TimeRange{Start: occ.Start, End: occ.End},
			Kind:           kind,
			ProfessionalID: req.ProfessionalID,
			PatientID:      req.PatientID,
			LocationID:     req.LocationID,
			RequesterID:    requesterID,
			BlockOverride:  blockOverride,
			SkipOverlap:    override,
			ExcludeID:      excludeID,
		})
		if err != nil {
			return "", nil, err
		}

		switch res.Status {
		case CheckHardError:
			s.countValidated("conflict_rejected")
			if s.metrics != nil {
				s.metrics.ConflictsDetected.WithLabelValues(string(kind)).Inc()
			}
			return "", nil, res.Err
		case CheckNeedsConfirmation:
			s.countValidated("needs_confirmation")
			return "", &Confirmation{Message: res.Message, Context: res.Context}, nil
		}

		if res.Warning != "" {
			warning = res.Warning
		}
		s.countValidated("ok")
	}

	return warning, nil, nil
}

// commitBatch is pass 2, reached only when pass 1 fully succeeded. An
// insert failure here is recorded and the rest of the batch continues; a
// late collision with a concurrent request surfaces this way.
func (s *Service) commitBatch(
	ctx context.Context,
	requesterID uuid.UUID,
	kind model.AppointmentKind,
	req *model.CreateBookingRequest,
	occurrences []Occurrence,
	groupID *uuid.UUID,
) *model.BatchResult {
	result := &model.BatchResult{}
	now := time.Now()

	for _, occ := range occurrences {
		appt := &model.Appointment{
			Base:              model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			Kind:              kind,
			ProfessionalID:    req.ProfessionalID,
			LocationID:        req.LocationID,
			StartTime:         occ.Start,
			EndTime:           occ.End,
			Status:            model.AppointmentStatusScheduled,
			OriginalPrice:     req.OriginalPrice,
			Discount:          req.Discount,
			Addition:          req.Addition,
			Price:             model.FinalPrice(req.OriginalPrice, req.Discount, req.Addition),
			PaymentMethod:     req.PaymentMethod,
			IsExtra:           req.IsExtra,
			Notes:             req.Notes,
			RecurrenceGroupID: groupID,
		}
		if kind == model.KindAppointment {
			appt.PatientID = req.PatientID
			appt.ServiceID = req.ServiceID
		}

		if err := s.appointments.Create(ctx, appt); err != nil {
			result.FailCount++
			storeErr := apperrors.FromStore(err)
			if len(result.Errors) < maxSampleErrors {
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s: %s", occ.Start.Format("2006-01-02"), storeErr.Message))
			}
			s.logger.Error(err, "booking commit failed", "start", occ.Start)
			if s.metrics != nil {
				s.metrics.BookingsFailed.Inc()
			}
			continue
		}

		result.SuccessCount++
		result.Created = append(result.Created, appt)
		if s.metrics != nil {
			s.metrics.BookingsCommitted.Inc()
		}

		s.publishCalendarEvent(ctx, model.EventCalendarCreated, appt)
		s.recordAudit(ctx, requesterID, "create", appt)
		if appt.Discount != 0 || appt.Addition != 0 {
			if err := s.auditor.Record(ctx, &requesterID, "price_adjustment", "appointment", appt.ID, map[string]interface{}{
				"original_price": appt.OriginalPrice,
				"discount":       appt.Discount,
				"addition":       appt.Addition,
				"price":          appt.Price,
			}); err != nil {
				s.logger.Error(err, "failed to audit price adjustment", "appointment_id", appt.ID)
			}
		}
	}

	return result
}

// Reschedule moves or re-prices one appointment. When RegenerateFuture is
// set, the remainder of the series is re-expanded starting the day after
// this occurrence and committed with the usual two-pass contract.
func (s *Service) Reschedule(ctx context.Context, requesterID, id uuid.UUID, req *model.RescheduleRequest) (*model.Appointment, *model.BatchResult, *Confirmation, error) {
	appt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, nil, nil, apperrors.NewNotFound("appointment", err)
	}

	startMins, err := MinutesOfDay(req.Time)
	if err != nil {
		return nil, nil, nil, err
	}
	day, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		return nil, nil, nil, apperrors.NewValidation("invalid date, expected YYYY-MM-DD")
	}

	duration := time.Duration(req.DurationMinutes) * time.Minute
	newStart := day.Add(time.Duration(startMins) * time.Minute)
	newEnd := newStart.Add(duration)

	override, blockOverride, err := s.resolveOverrides(ctx, appt.ProfessionalID, req.IsExtra, req.ForceBlockOverride)
	if err != nil {
		return nil, nil, nil, err
	}
	skipAvailability := appt.Kind == model.KindBlock || override

	if appt.Kind == model.KindAppointment && !skipAvailability && appt.ProfessionalID != nil {
		windows, err := s.availability.WindowsFor(ctx, *appt.ProfessionalID, newStart.Weekday())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to load availability: %w", err)
		}
		if aerr := ResolveAvailability(windows, startMins, startMins+req.DurationMinutes); aerr != nil {
			return nil, nil, nil, aerr
		}
	}

	res, err := s.detector.Check(ctx, Candidate{
		Range:          TimeRange{Start: newStart, End: newEnd},
		Kind:           appt.Kind,
		ProfessionalID: appt.ProfessionalID,
		PatientID:      appt.PatientID,
		LocationID:     pickLocation(req.LocationID, appt.LocationID),
		RequesterID:    requesterID,
		BlockOverride:  blockOverride,
		SkipOverlap:    override,
		ExcludeID:      &id,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	switch res.Status {
	case CheckHardError:
		return nil, nil, nil, res.Err
	case CheckNeedsConfirmation:
		return nil, nil, &Confirmation{Message: res.Message, Context: res.Context}, nil
	}

	appt.StartTime = newStart
	appt.EndTime = newEnd
	appt.IsExtra = req.IsExtra
	if req.ServiceID != nil {
		appt.ServiceID = req.ServiceID
	}
	if req.LocationID != nil {
		appt.LocationID = req.LocationID
	}
	if req.Notes != nil {
		appt.Notes = *req.Notes
	}
	if req.OriginalPrice != nil {
		appt.OriginalPrice = *req.OriginalPrice
	}
	if req.Discount != nil {
		appt.Discount = *req.Discount
	}
	if req.Addition != nil {
		appt.Addition = *req.Addition
	}
	appt.Price = model.FinalPrice(appt.OriginalPrice, appt.Discount, appt.Addition)
	appt.UpdatedAt = time.Now()

	if err := s.appointments.Update(ctx, appt); err != nil {
		return nil, nil, nil, apperrors.FromStore(err)
	}

	// Price or service edits while completed must re-derive the ledger.
	if err := s.commissions.HandleEdit(ctx, appt); err != nil {
		return nil, nil, nil, err
	}

	s.publishCalendarEvent(ctx, model.EventCalendarUpdated, appt)
	s.recordAudit(ctx, requesterID, "reschedule", appt)

	var batch *model.BatchResult
	if req.RegenerateFuture != nil {
		batch, err = s.regenerateFuture(ctx, requesterID, appt, req, newStart, duration, startMins, skipAvailability, override, blockOverride)
		if err != nil {
			return appt, nil, nil, err
		}
	}

	return appt, batch, nil, nil
}

func (s *Service) regenerateFuture(
	ctx context.Context,
	requesterID uuid.UUID,
	head *model.Appointment,
	req *model.RescheduleRequest,
	newStart time.Time,
	duration time.Duration,
	startMins int,
	skipAvailability, override, blockOverride bool,
) (*model.BatchResult, error) {
	spec := *req.RegenerateFuture
	if spec.EndType == model.RecurrenceEndCount {
		// The edited occurrence counts as the first of the series.
		spec.Count--
		if spec.Count <= 0 {
			return nil, nil
		}
	}

	exp, err := ExpandRecurrence(newStart, duration, &spec, true)
	if err != nil {
		return nil, err
	}

	groupID := head.RecurrenceGroupID
	if groupID == nil {
		groupID = &exp.GroupID
	}

	createReq := &model.CreateBookingRequest{
		Kind:            head.Kind,
		ProfessionalID:  head.ProfessionalID,
		PatientID:       head.PatientID,
		ServiceID:       head.ServiceID,
		LocationID:      head.LocationID,
		DurationMinutes: req.DurationMinutes,
		OriginalPrice:   head.OriginalPrice,
		Discount:        head.Discount,
		Addition:        head.Addition,
		PaymentMethod:   head.PaymentMethod,
		Notes:           head.Notes,
		IsExtra:         head.IsExtra,
	}

	if release := s.lockPartitions(ctx, head.ProfessionalID, exp.Occurrences); release != nil {
		defer release()
	}

	warning, confirm, err := s.validateBatch(ctx, requesterID, head.Kind, createReq, exp.Occurrences, startMins, skipAvailability, override, blockOverride, nil)
	if err != nil {
		return nil, err
	}
	if confirm != nil {
		return nil, apperrors.NewConflict(confirm.Message)
	}

	result := s.commitBatch(ctx, requesterID, head.Kind, createReq, exp.Occurrences, groupID)
	result.Warning = warning
	result.GroupID = groupID
	return result, nil
}

// UpdateStatus writes a lifecycle transition and lets the commission
// ledger react to it.
func (s *Service) UpdateStatus(ctx context.Context, requesterID, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	if !model.ValidStatus(status) {
		return nil, apperrors.NewValidation(fmt.Sprintf("unknown status %q", status))
	}

	appt, err := s.appointments.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}

	if err := s.commissions.HandleStatusChange(ctx, appt); err != nil {
		return nil, err
	}
	if s.metrics != nil && status == model.AppointmentStatusCompleted {
		s.metrics.CommissionsWritten.Inc()
	}

	s.publishCalendarEvent(ctx, model.EventCalendarUpdated, appt)
	s.recordAudit(ctx, requesterID, "status_change", appt)
	return appt, nil
}

func (s *Service) Delete(ctx context.Context, requesterID, id uuid.UUID) error {
	appt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return apperrors.NewNotFound("appointment", err)
	}

	if err := s.appointments.Delete(ctx, id); err != nil {
		return apperrors.FromStore(err)
	}
	if err := s.commissions.HandleDeletion(ctx, id); err != nil {
		return err
	}

	s.publishCalendarEvent(ctx, model.EventCalendarDeleted, appt)
	s.recordAudit(ctx, requesterID, "delete", appt)
	return nil
}

// DeleteGroup removes a whole recurrence series by its group id.
func (s *Service) DeleteGroup(ctx context.Context, requesterID, groupID uuid.UUID) (int64, error) {
	count, err := s.appointments.DeleteByGroup(ctx, groupID)
	if err != nil {
		return 0, apperrors.FromStore(err)
	}

	s.publishGroupEvent(ctx, groupID, count)
	if err := s.auditor.Record(ctx, &requesterID, "delete_group", "recurrence_group", groupID, map[string]interface{}{
		"deleted": count,
	}); err != nil {
		s.logger.Error(err, "failed to audit group deletion", "group_id", groupID)
	}
	return count, nil
}

// FreeSlots enumerates open start times for a professional, date and
// duration.
func (s *Service) FreeSlots(ctx context.Context, req *model.FreeSlotsRequest) ([]string, error) {
	day, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		return nil, apperrors.NewValidation("invalid date, expected YYYY-MM-DD")
	}

	windows, err := s.availability.WindowsFor(ctx, req.ProfessionalID, day.Weekday())
	if err != nil {
		return nil, fmt.Errorf("failed to load availability: %w", err)
	}
	existing, err := s.appointments.FindForDay(ctx, req.ProfessionalID, day, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	return FreeSlots(windows, existing, req.DurationMinutes)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewNotFound("appointment", err)
	}
	return appt, nil
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.appointments.List(ctx, filters)
}

// resolveOverrides folds the explicit flags with the professional's
// allow-overbooking setting. The block-confirmation bypass never comes
// from allow-overbooking: only explicit intent counts there.
func (s *Service) resolveOverrides(ctx context.Context, professionalID *uuid.UUID, isExtra, forceBlockOverride bool) (override, blockOverride bool, err error) {
	blockOverride = isExtra || forceBlockOverride
	override = blockOverride

	if professionalID != nil {
		prof, err := s.professionals.Get(ctx, *professionalID)
		if err != nil {
			return false, false, apperrors.NewNotFound("professional", err)
		}
		if prof.AllowOverbooking {
			override = true
		}
	}
	return override, blockOverride, nil
}

// lockPartitions takes the advisory (professional, date) locks for the
// batch. Failure to acquire degrades to lock-free validation: the
// two-pass protocol still bounds the damage.
func (s *Service) lockPartitions(ctx context.Context, professionalID *uuid.UUID, occurrences []Occurrence) func() {
	if s.locker == nil || professionalID == nil {
		return nil
	}

	seen := map[string]bool{}
	var keys []string
	for _, occ := range occurrences {
		key := LockKey(*professionalID, dayOf(occ.Start))
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	release, acquired, err := s.locker.Acquire(ctx, keys, slotLockTTL)
	if err != nil || !acquired {
		if err != nil {
			s.logger.Error(err, "slot lock acquisition failed, proceeding unlocked")
		} else {
			s.logger.Warn("slot partition busy, proceeding unlocked")
		}
		return nil
	}
	return release
}

func (s *Service) publishCalendarEvent(ctx context.Context, eventType string, appt *model.Appointment) {
	payload, err := json.Marshal(appt)
	if err != nil {
		s.logger.Error(err, "failed to marshal calendar event", "appointment_id", appt.ID)
		return
	}
	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payload,
		Status:    model.OutboxStatusPending,
		CreatedAt: time.Now(),
	}
	// Calendar sync is best-effort: a failed outbox write is logged and
	// never surfaces as a booking failure.
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error(err, "failed to enqueue calendar event", "appointment_id", appt.ID)
	}
}

func (s *Service) publishGroupEvent(ctx context.Context, groupID uuid.UUID, count int64) {
	payload, _ := json.Marshal(map[string]interface{}{
		"recurrence_group_id": groupID,
		"deleted":             count,
	})
	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: model.EventCalendarDeleted,
		Payload:   payload,
		Status:    model.OutboxStatusPending,
		CreatedAt: time.Now(),
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error(err, "failed to enqueue calendar event", "group_id", groupID)
	}
}

func (s *Service) recordAudit(ctx context.Context, requesterID uuid.UUID, action string, appt *model.Appointment) {
	if err := s.auditor.Record(ctx, &requesterID, action, "appointment", appt.ID, appt); err != nil {
		s.logger.Error(err, "failed to write audit entry", "appointment_id", appt.ID, "action", action)
	}
}

func (s *Service) countValidated(outcome string) {
	if s.metrics != nil {
		s.metrics.BookingsValidated.WithLabelValues(outcome).Inc()
	}
}

func withOccurrenceDate(err error, start time.Time) error {
	if appErr, ok := err.(*apperrors.AppError); ok {
		return apperrors.NewAvailability(fmt.Sprintf("%s on %s", appErr.Message, start.Format("2006-01-02")))
	}
	return err
}

func pickLocation(requested, current *uuid.UUID) *uuid.UUID {
	if requested != nil {
		return requested
	}
	return current
}
