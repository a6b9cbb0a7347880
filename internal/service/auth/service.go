package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agendly/scheduler-api/internal/email"
	"github.com/agendly/scheduler-api/internal/model"
	"github.com/agendly/scheduler-api/internal/repository"
	"github.com/agendly/scheduler-api/pkg/auth"
	apperrors "github.com/agendly/scheduler-api/pkg/errors"
	"github.com/agendly/scheduler-api/pkg/logger"
	"github.com/agendly/scheduler-api/pkg/security"
)

const bcryptCost = 12

type Service struct {
	professionals repository.ProfessionalRepository
	jwtSvc        auth.JWTService
	hasher        security.PasswordHasher
	emailSvc      email.Service
	logger        *logger.Logger
}

func NewService(
	professionals repository.ProfessionalRepository,
	jwtSvc auth.JWTService,
	emailSvc email.Service,
	logger *logger.Logger,
) *Service {
	return &Service{
		professionals: professionals,
		jwtSvc:        jwtSvc,
		hasher:        security.NewBcryptHasher(bcryptCost),
		emailSvc:      emailSvc,
		logger:        logger,
	}
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	prof, err := s.professionals.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	if err := s.hasher.Compare(prof.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	token, err := s.jwtSvc.GenerateToken(prof.ID, prof.Email)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}

	return &model.LoginResponse{
		Token:        token,
		Professional: *prof,
	}, nil
}

// CreateProfessional registers a professional and sends a welcome email
// out of band.
func (s *Service) CreateProfessional(ctx context.Context, name, emailAddr, password string, allowOverbooking bool) (*model.Professional, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.NewValidation(err.Error())
	}

	now := time.Now()
	prof := &model.Professional{
		Base:             model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:             name,
		Email:            emailAddr,
		PasswordHash:     hash,
		AllowOverbooking: allowOverbooking,
	}
	if err := s.professionals.Create(ctx, prof); err != nil {
		return nil, apperrors.FromStore(err)
	}

	if s.emailSvc != nil {
		go func() {
			body := "Welcome to Agendly, " + name + ". Your scheduling account is ready."
			if err := s.emailSvc.SendCustom(context.Background(), emailAddr, "Welcome to Agendly", body); err != nil {
				s.logger.Error(err, "failed to send welcome email", "email", emailAddr)
			}
		}()
	}

	return prof, nil
}
