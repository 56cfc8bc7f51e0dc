package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/medicare-dental/clinic-portal/internal/data"
	domainauth "github.com/medicare-dental/clinic-portal/internal/domain/auth"
	"github.com/medicare-dental/clinic-portal/internal/ports"
)

// PatientCredentialReader is the patient-table credential lookup.
type PatientCredentialReader interface {
	GetCredentialsByEmail(ctx context.Context, email string) (*data.PatientCredentials, error)
}

// PersonnelCredentialReader is the personnel-table credential lookup.
type PersonnelCredentialReader interface {
	GetCredentialsByEmail(ctx context.Context, email string) (*data.PersonnelCredentials, error)
}

// CredentialServiceOptions groups dependencies for CredentialService.
type CredentialServiceOptions struct {
	Patients  PatientCredentialReader
	Personnel PersonnelCredentialReader
	Logger    *slog.Logger
}

// CredentialService verifies email/password logins. Personnel are checked
// first, then patients; the two tables are disjoint by construction. Every
// failure mode collapses into ports.ErrInvalidCredentials so the login
// surface cannot be used to enumerate accounts.
type CredentialService struct {
	patients  PatientCredentialReader
	personnel PersonnelCredentialReader
	logger    *slog.Logger
}

var _ ports.CredentialChecker = (*CredentialService)(nil)

// NewCredentialService constructs a new CredentialService.
func NewCredentialService(opts CredentialServiceOptions) *CredentialService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialService{
		patients:  opts.Patients,
		personnel: opts.Personnel,
		logger:    logger,
	}
}

// Check verifies the credentials and returns the account's identity.
func (s *CredentialService) Check(ctx context.Context, email, password string) (domainauth.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domainauth.User{}, ports.ErrInvalidCredentials
	}

	if user, err := s.checkPersonnel(ctx, email, password); err == nil {
		return user, nil
	} else if !errors.Is(err, data.ErrPersonnelNotFound) {
		return domainauth.User{}, err
	}

	return s.checkPatient(ctx, email, password)
}

func (s *CredentialService) checkPersonnel(ctx context.Context, email, password string) (domainauth.User, error) {
	p, err := s.personnel.GetCredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, data.ErrPersonnelNotFound) {
			return domainauth.User{}, err
		}
		s.logger.WarnContext(ctx, "personnel credential lookup failed", "error", err)
		return domainauth.User{}, ports.ErrInvalidCredentials
	}

	if p.AccountStatus != domainauth.StatusActive {
		return domainauth.User{}, ports.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return domainauth.User{}, ports.ErrInvalidCredentials
	}
	role := domainauth.Role(p.RoleID)
	if !role.Valid() || role.IsPatient() {
		return domainauth.User{}, ports.ErrInvalidCredentials
	}

	return domainauth.User{
		ID:    p.ID,
		Name:  domainauth.FullName(p.FirstName, p.LastName),
		Email: p.Email,
		Role:  role,
	}, nil
}

func (s *CredentialService) checkPatient(ctx context.Context, email, password string) (domainauth.User, error) {
	p, err := s.patients.GetCredentialsByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, data.ErrPatientNotFound) {
			s.logger.WarnContext(ctx, "patient credential lookup failed", "error", err)
		}
		return domainauth.User{}, ports.ErrInvalidCredentials
	}

	if p.AccountStatus != domainauth.StatusActive {
		return domainauth.User{}, ports.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return domainauth.User{}, ports.ErrInvalidCredentials
	}

	return domainauth.User{
		ID:    p.ID,
		Name:  domainauth.FullName(p.FirstName, p.LastName),
		Email: p.Email,
		Role:  domainauth.RolePatient,
	}, nil
}
