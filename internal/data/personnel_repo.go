package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/medicare-dental/clinic-portal/internal/data/pgxutil"
)

// PersonnelIdentity is the identity-table projection of a staff account.
// RoleID is the authoritative role code; sessions claiming a different role
// are rejected by the validator.
type PersonnelIdentity struct {
	ID            int    `db:"id"`
	FirstName     string `db:"first_name"`
	LastName      string `db:"last_name"`
	Email         string `db:"email"`
	RoleID        int    `db:"role_id"`
	AccountStatus string `db:"account_status"`
}

// PersonnelCredentials extends the identity projection with the password hash.
type PersonnelCredentials struct {
	ID            int    `db:"id"`
	FirstName     string `db:"first_name"`
	LastName      string `db:"last_name"`
	Email         string `db:"email"`
	PasswordHash  string `db:"password_hash"`
	RoleID        int    `db:"role_id"`
	AccountStatus string `db:"account_status"`
}

// PersonnelRepo provides database operations against the personnel identity table.
type PersonnelRepo struct {
	DB *sql.DB
}

// NewPersonnelRepo creates a new PersonnelRepo.
func NewPersonnelRepo(db *sql.DB) *PersonnelRepo {
	return &PersonnelRepo{DB: db}
}

// GetByID retrieves a personnel identity by exact id match.
func (r *PersonnelRepo) GetByID(ctx context.Context, id int) (*PersonnelIdentity, error) {
	var out PersonnelIdentity
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id, first_name, last_name, email, role_id, account_status
			FROM personnel WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[PersonnelIdentity])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPersonnelNotFound
		}
		return nil, fmt.Errorf("failed to get personnel by ID: %w", err)
	}
	return &out, nil
}

// GetCredentialsByEmail retrieves a staff member's credentials by email.
func (r *PersonnelRepo) GetCredentialsByEmail(ctx context.Context, email string) (*PersonnelCredentials, error) {
	var out PersonnelCredentials
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id, first_name, last_name, email, password_hash, role_id, account_status
			FROM personnel WHERE lower(email) = lower($1)`, strings.TrimSpace(email))
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[PersonnelCredentials])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPersonnelNotFound
		}
		return nil, fmt.Errorf("failed to get personnel by email: %w", err)
	}
	return &out, nil
}
