package availability

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agendly/scheduler-api/internal/model"
	"github.com/agendly/scheduler-api/internal/repository"
	"github.com/agendly/scheduler-api/internal/service/scheduling"
	apperrors "github.com/agendly/scheduler-api/pkg/errors"
)

// Service manages the weekly working windows bookings are validated
// against.
type Service struct {
	windows repository.AvailabilityRepository
}

func NewService(windows repository.AvailabilityRepository) *Service {
	return &Service{windows: windows}
}

func (s *Service) CreateWindow(ctx context.Context, req *model.CreateWindowRequest) (*model.AvailabilityWindow, error) {
	start, err := scheduling.MinutesOfDay(req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := scheduling.MinutesOfDay(req.EndTime)
	if err != nil {
		return nil, err
	}
	if end <= start {
		return nil, apperrors.NewValidation("window end must be after its start")
	}

	now := time.Now()
	window := &model.AvailabilityWindow{
		Base:           model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		ProfessionalID: req.ProfessionalID,
		Weekday:        time.Weekday(req.Weekday),
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		LocationID:     req.LocationID,
	}
	if err := s.windows.Create(ctx, window); err != nil {
		return nil, apperrors.FromStore(err)
	}
	return window, nil
}

func (s *Service) DeleteWindow(ctx context.Context, id uuid.UUID) error {
	if err := s.windows.Delete(ctx, id); err != nil {
		return apperrors.NewNotFound("availability window", err)
	}
	return nil
}

func (s *Service) ListForProfessional(ctx context.Context, professionalID uuid.UUID) ([]*model.AvailabilityWindow, error) {
	return s.windows.ListForProfessional(ctx, professionalID)
}
