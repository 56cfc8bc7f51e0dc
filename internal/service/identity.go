package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/medicare-dental/clinic-portal/internal/data"
	domainauth "github.com/medicare-dental/clinic-portal/internal/domain/auth"
	"github.com/medicare-dental/clinic-portal/internal/ports"
)

// PatientIdentityReader is the patient-table lookup the validator depends on.
type PatientIdentityReader interface {
	GetByID(ctx context.Context, id int) (*data.PatientIdentity, error)
}

// PersonnelIdentityReader is the personnel-table lookup the validator depends on.
type PersonnelIdentityReader interface {
	GetByID(ctx context.Context, id int) (*data.PersonnelIdentity, error)
}

// IdentityServiceOptions groups dependencies for IdentityService.
type IdentityServiceOptions struct {
	Patients  PatientIdentityReader
	Personnel PersonnelIdentityReader
	Logger    *slog.Logger
	// LookupTimeout bounds a single identity lookup. A hung backend fails
	// closed instead of leaving callers waiting indefinitely. Zero means
	// the default of 5s.
	LookupTimeout time.Duration
}

// IdentityService confirms stored sessions against the authoritative identity
// tables. The role carried in the session decides which of two disjoint
// checks runs, never both.
type IdentityService struct {
	patients      PatientIdentityReader
	personnel     PersonnelIdentityReader
	logger        *slog.Logger
	lookupTimeout time.Duration
}

var _ ports.IdentityValidator = (*IdentityService)(nil)

const defaultLookupTimeout = 5 * time.Second

// NewIdentityService constructs a new IdentityService.
func NewIdentityService(opts IdentityServiceOptions) *IdentityService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.LookupTimeout
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	return &IdentityService{
		patients:      opts.Patients,
		personnel:     opts.Personnel,
		logger:        logger,
		lookupTimeout: timeout,
	}
}

// Validate checks that the referenced account still exists and is usable, and
// returns a refreshed User. Every rejection outcome (row missing, account
// unusable, role drift, transport failure) is reported as
// ports.ErrSessionInvalid; transport failures are additionally logged so
// operators can tell outages from real revocations.
func (s *IdentityService) Validate(ctx context.Context, d domainauth.SessionData) (domainauth.User, error) {
	if !d.Complete() {
		return domainauth.User{}, ports.ErrSessionInvalid
	}
	claimed, err := d.ToUser()
	if err != nil {
		return domainauth.User{}, ports.ErrSessionInvalid
	}

	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	if claimed.Role.IsPatient() {
		return s.validatePatient(ctx, claimed.ID)
	}
	return s.validatePersonnel(ctx, claimed)
}

func (s *IdentityService) validatePatient(ctx context.Context, id int) (domainauth.User, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, data.ErrPatientNotFound) {
			s.logger.WarnContext(ctx, "patient identity lookup failed", "patient_id", id, "error", err)
		}
		return domainauth.User{}, ports.ErrSessionInvalid
	}

	switch p.AccountStatus {
	case domainauth.StatusSuspended, domainauth.StatusInactive, domainauth.StatusPending:
		return domainauth.User{}, ports.ErrSessionInvalid
	}

	return domainauth.User{
		ID:    p.ID,
		Name:  domainauth.FullName(p.FirstName, p.LastName),
		Email: p.Email,
		Role:  domainauth.RolePatient,
	}, nil
}

func (s *IdentityService) validatePersonnel(ctx context.Context, claimed domainauth.User) (domainauth.User, error) {
	p, err := s.personnel.GetByID(ctx, claimed.ID)
	if err != nil {
		if !errors.Is(err, data.ErrPersonnelNotFound) {
			s.logger.WarnContext(ctx, "personnel identity lookup failed", "personnel_id", claimed.ID, "error", err)
		}
		return domainauth.User{}, ports.ErrSessionInvalid
	}

	if p.AccountStatus == domainauth.StatusSuspended {
		return domainauth.User{}, ports.ErrSessionInvalid
	}

	// A stale or tampered session must not claim a role the account no
	// longer has.
	if p.RoleID != int(claimed.Role) {
		s.logger.InfoContext(ctx, "session role differs from account role, rejecting",
			"personnel_id", claimed.ID,
			"session_role", int(claimed.Role),
			"account_role", p.RoleID)
		return domainauth.User{}, ports.ErrSessionInvalid
	}

	current := domainauth.Role(p.RoleID)
	if !current.Valid() {
		return domainauth.User{}, fmt.Errorf("personnel %d: %w", p.ID, ports.ErrSessionInvalid)
	}

	// The account's current role is authoritative, not the session's claim.
	return domainauth.User{
		ID:    p.ID,
		Name:  domainauth.FullName(p.FirstName, p.LastName),
		Email: p.Email,
		Role:  current,
	}, nil
}
