package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/medicare-dental/clinic-portal/internal/data"
	domainauth "github.com/medicare-dental/clinic-portal/internal/domain/auth"
)

// PatientRegistrar is the write operation registration depends on.
type PatientRegistrar interface {
	Register(ctx context.Context, req *data.RegisterPatientRequest) (*data.PatientIdentity, error)
}

// RegistrationServiceOptions groups dependencies for RegistrationService.
type RegistrationServiceOptions struct {
	Patients PatientRegistrar
	Logger   *slog.Logger
}

// RegistrationService creates new patient accounts. Accounts start in Pending
// status; the front desk activates them, so a fresh registration cannot log
// in until approved.
type RegistrationService struct {
	patients PatientRegistrar
	logger   *slog.Logger
}

// ErrEmailTaken is returned when the email is already registered.
var ErrEmailTaken = data.ErrEmailTaken

const minPasswordLength = 8

// NewRegistrationService constructs a new RegistrationService.
func NewRegistrationService(opts RegistrationServiceOptions) *RegistrationService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistrationService{patients: opts.Patients, logger: logger}
}

// RegisterPatientInput carries patient self-registration fields.
type RegisterPatientInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// RegisterPatient validates the input, hashes the password, and creates the
// patient row.
func (s *RegistrationService) RegisterPatient(ctx context.Context, in RegisterPatientInput) (domainauth.User, error) {
	if strings.TrimSpace(in.FirstName) == "" {
		return domainauth.User{}, errors.New("first name is required and cannot be empty")
	}
	if strings.TrimSpace(in.LastName) == "" {
		return domainauth.User{}, errors.New("last name is required and cannot be empty")
	}
	if strings.TrimSpace(in.Email) == "" {
		return domainauth.User{}, errors.New("email is required and cannot be empty")
	}
	if len(in.Password) < minPasswordLength {
		return domainauth.User{}, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domainauth.User{}, fmt.Errorf("hash password: %w", err)
	}

	p, err := s.patients.Register(ctx, &data.RegisterPatientRequest{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return domainauth.User{}, err
	}

	s.logger.InfoContext(ctx, "patient registered", "patient_id", p.ID)

	return domainauth.User{
		ID:    p.ID,
		Name:  domainauth.FullName(p.FirstName, p.LastName),
		Email: p.Email,
		Role:  domainauth.RolePatient,
	}, nil
}
