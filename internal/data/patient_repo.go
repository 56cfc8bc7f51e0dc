package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/medicare-dental/clinic-portal/internal/data/pgxutil"
	domainauth "github.com/medicare-dental/clinic-portal/internal/domain/auth"
)

// PatientIdentity is the identity-table projection of a patient account.
type PatientIdentity struct {
	ID            int    `db:"id"`
	FirstName     string `db:"first_name"`
	LastName      string `db:"last_name"`
	Email         string `db:"email"`
	AccountStatus string `db:"account_status"`
}

// PatientCredentials extends the identity projection with the password hash,
// used only by the credential checker.
type PatientCredentials struct {
	ID            int    `db:"id"`
	FirstName     string `db:"first_name"`
	LastName      string `db:"last_name"`
	Email         string `db:"email"`
	PasswordHash  string `db:"password_hash"`
	AccountStatus string `db:"account_status"`
}

// RegisterPatientRequest carries the fields for patient self-registration.
type RegisterPatientRequest struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
}

// Validate checks required registration fields.
func (r *RegisterPatientRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" {
		return errors.New("first name is required and cannot be empty")
	}
	if strings.TrimSpace(r.LastName) == "" {
		return errors.New("last name is required and cannot be empty")
	}
	if strings.TrimSpace(r.Email) == "" {
		return errors.New("email is required and cannot be empty")
	}
	if r.PasswordHash == "" {
		return errors.New("password hash is required and cannot be empty")
	}
	return nil
}

// PatientRepo provides database operations against the patients identity table.
type PatientRepo struct {
	DB *sql.DB
}

// NewPatientRepo creates a new PatientRepo.
func NewPatientRepo(db *sql.DB) *PatientRepo {
	return &PatientRepo{DB: db}
}

const patientIdentityColumns = "id, first_name, last_name, email, account_status"

// GetByID retrieves a patient identity by exact id match.
func (r *PatientRepo) GetByID(ctx context.Context, id int) (*PatientIdentity, error) {
	var out PatientIdentity
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+patientIdentityColumns+` FROM patients WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[PatientIdentity])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to get patient by ID: %w", err)
	}
	return &out, nil
}

// GetCredentialsByEmail retrieves a patient's credentials by email.
func (r *PatientRepo) GetCredentialsByEmail(ctx context.Context, email string) (*PatientCredentials, error) {
	var out PatientCredentials
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id, first_name, last_name, email, password_hash, account_status
			FROM patients WHERE lower(email) = lower($1)`, strings.TrimSpace(email))
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[PatientCredentials])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to get patient by email: %w", err)
	}
	return &out, nil
}

// Register inserts a new patient account in Pending status.
func (r *PatientRepo) Register(ctx context.Context, req *RegisterPatientRequest) (*PatientIdentity, error) {
	if req == nil {
		return nil, errors.New("register patient request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out PatientIdentity
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO patients (first_name, last_name, email, password_hash, account_status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+patientIdentityColumns,
			strings.TrimSpace(req.FirstName),
			strings.TrimSpace(req.LastName),
			strings.TrimSpace(req.Email),
			req.PasswordHash,
			domainauth.StatusPending,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[PatientIdentity])
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to register patient: %w", err)
	}
	return &out, nil
}
