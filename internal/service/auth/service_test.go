package auth

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendly/scheduler-api/internal/model"
	pkgauth "github.com/agendly/scheduler-api/pkg/auth"
	apperrors "github.com/agendly/scheduler-api/pkg/errors"
	"github.com/agendly/scheduler-api/pkg/logger"
)

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

func newTestService() (*Service, *fakeProfessionalRepo, pkgauth.JWTService) {
	repo := newFakeProfessionalRepo()
	jwtSvc := pkgauth.NewJWTService("test-secret", 1)
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	return NewService(repo, jwtSvc, nil, log), repo, jwtSvc
}

func TestLogin(t *testing.T) {
	svc, _, jwtSvc := newTestService()

	prof, err := svc.CreateProfessional(context.Background(), "Dr. Silva", "silva@example.com", "correct-horse", false)
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", prof.PasswordHash)

	resp, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "silva@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, prof.ID, resp.Professional.ID)

	claims, err := jwtSvc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, prof.ID, claims.ProfessionalID)
	assert.Equal(t, "silva@example.com", claims.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateProfessional(context.Background(), "Dr. Silva", "silva@example.com", "correct-horse", false)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &model.LoginRequest{
		Email:    "silva@example.com",
		Password: "battery-staple",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.Code(err))
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.Code(err))
}
