package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/medicare-dental/clinic-portal/internal/data"
	domainauth "github.com/medicare-dental/clinic-portal/internal/domain/auth"
	"github.com/medicare-dental/clinic-portal/internal/ports"
)

type stubPatientCredentials struct {
	creds *data.PatientCredentials
	err   error
}

func (s *stubPatientCredentials) GetCredentialsByEmail(_ context.Context, _ string) (*data.PatientCredentials, error) {
	return s.creds, s.err
}

type stubPersonnelCredentials struct {
	creds *data.PersonnelCredentials
	err   error
}

func (s *stubPersonnelCredentials) GetCredentialsByEmail(_ context.Context, _ string) (*data.PersonnelCredentials, error) {
	return s.creds, s.err
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestCredentialService_Check_Personnel(t *testing.T) {
	svc := NewCredentialService(CredentialServiceOptions{
		Patients: &stubPatientCredentials{err: data.ErrPatientNotFound},
		Personnel: &stubPersonnelCredentials{creds: &data.PersonnelCredentials{
			ID:            3,
			FirstName:     "Dana",
			LastName:      "Reyes",
			Email:         "dana.reyes@medicare.dev",
			PasswordHash:  mustHash(t, "correct horse"),
			RoleID:        int(domainauth.RoleDentist),
			AccountStatus: domainauth.StatusActive,
		}},
	})

	user, err := svc.Check(context.Background(), "dana.reyes@medicare.dev", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, 3, user.ID)
	assert.Equal(t, domainauth.RoleDentist, user.Role)
	assert.Equal(t, "Dana Reyes", user.Name)
}

func TestCredentialService_Check_PatientFallback(t *testing.T) {
	// Unknown to the personnel table, so the patient table is consulted.
	svc := NewCredentialService(CredentialServiceOptions{
		Patients: &stubPatientCredentials{creds: &data.PatientCredentials{
			ID:            9,
			FirstName:     "Ana",
			LastName:      "Cruz",
			Email:         "ana.cruz@example.com",
			PasswordHash:  mustHash(t, "s3cret-pass"),
			AccountStatus: domainauth.StatusActive,
		}},
		Personnel: &stubPersonnelCredentials{err: data.ErrPersonnelNotFound},
	})

	user, err := svc.Check(context.Background(), "ana.cruz@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RolePatient, user.Role)
}

func TestCredentialService_Check_WrongPassword(t *testing.T) {
	svc := NewCredentialService(CredentialServiceOptions{
		Patients: &stubPatientCredentials{err: data.ErrPatientNotFound},
		Personnel: &stubPersonnelCredentials{creds: &data.PersonnelCredentials{
			ID:            3,
			PasswordHash:  mustHash(t, "correct horse"),
			RoleID:        int(domainauth.RoleDentist),
			AccountStatus: domainauth.StatusActive,
		}},
	})

	_, err := svc.Check(context.Background(), "dana.reyes@medicare.dev", "wrong")
	assert.ErrorIs(t, err, ports.ErrInvalidCredentials)
}

func TestCredentialService_Check_NonActiveAccounts(t *testing.T) {
	for _, status := range []string{
		domainauth.StatusSuspended,
		domainauth.StatusInactive,
		domainauth.StatusPending,
	} {
		svc := NewCredentialService(CredentialServiceOptions{
			Patients: &stubPatientCredentials{creds: &data.PatientCredentials{
				ID:            9,
				PasswordHash:  mustHash(t, "s3cret-pass"),
				AccountStatus: status,
			}},
			Personnel: &stubPersonnelCredentials{err: data.ErrPersonnelNotFound},
		})

		_, err := svc.Check(context.Background(), "ana.cruz@example.com", "s3cret-pass")
		assert.ErrorIs(t, err, ports.ErrInvalidCredentials, "status %s", status)
	}
}

func TestCredentialService_Check_UnknownEmail(t *testing.T) {
	svc := NewCredentialService(CredentialServiceOptions{
		Patients:  &stubPatientCredentials{err: data.ErrPatientNotFound},
		Personnel: &stubPersonnelCredentials{err: data.ErrPersonnelNotFound},
	})

	_, err := svc.Check(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ports.ErrInvalidCredentials)
}

func TestCredentialService_Check_EmptyInput(t *testing.T) {
	svc := NewCredentialService(CredentialServiceOptions{
		Patients:  &stubPatientCredentials{err: errors.New("must not be called")},
		Personnel: &stubPersonnelCredentials{err: errors.New("must not be called")},
	})

	_, err := svc.Check(context.Background(), "", "password")
	assert.ErrorIs(t, err, ports.ErrInvalidCredentials)

	_, err = svc.Check(context.Background(), "someone@example.com", "")
	assert.ErrorIs(t, err, ports.ErrInvalidCredentials)
}

func TestCredentialService_Check_LookupErrorUniform(t *testing.T) {
	// Backend failures look identical to bad credentials at the login surface.
	svc := NewCredentialService(CredentialServiceOptions{
		Patients:  &stubPatientCredentials{err: data.ErrPatientNotFound},
		Personnel: &stubPersonnelCredentials{err: errors.New("connection refused")},
	})

	_, err := svc.Check(context.Background(), "dana.reyes@medicare.dev", "correct horse")
	assert.ErrorIs(t, err, ports.ErrInvalidCredentials)
}
