package devseed

// Package devseed inserts a small set of development accounts so every role
// has a working login. Passwords are hashed with bcrypt; the plaintext for
// all seeded accounts is "medicare-dev".

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/medicare-dental/clinic-portal/internal/domain/auth"
)

// DevPassword is the plaintext password for every seeded dev account.
const DevPassword = "medicare-dev"

type seedPersonnel struct {
	FirstName string
	LastName  string
	Email     string
	Role      domainauth.Role
	Status    string
}

type seedPatient struct {
	FirstName string
	LastName  string
	Email     string
	Status    string
}

var devPersonnel = []seedPersonnel{
	{FirstName: "Dana", LastName: "Reyes", Email: "dentist@medicare.dev", Role: domainauth.RoleDentist, Status: domainauth.StatusActive},
	{FirstName: "Rico", LastName: "Mendoza", Email: "reception@medicare.dev", Role: domainauth.RoleReceptionist, Status: domainauth.StatusActive},
	{FirstName: "Carla", LastName: "Santos", Email: "cashier@medicare.dev", Role: domainauth.RoleCashier, Status: domainauth.StatusActive},
	{FirstName: "Ivan", LastName: "Torres", Email: "inventory@medicare.dev", Role: domainauth.RoleInventory, Status: domainauth.StatusActive},
	{FirstName: "Alma", LastName: "Villanueva", Email: "admin@medicare.dev", Role: domainauth.RoleAdmin, Status: domainauth.StatusActive},
	// Suspended staff account for exercising the rejection path by hand.
	{FirstName: "Sol", LastName: "Garcia", Email: "suspended@medicare.dev", Role: domainauth.RoleCashier, Status: domainauth.StatusSuspended},
}

var devPatients = []seedPatient{
	{FirstName: "Paolo", LastName: "Cruz", Email: "patient@medicare.dev", Status: domainauth.StatusActive},
	{FirstName: "Nina", LastName: "Lim", Email: "pending@medicare.dev", Status: domainauth.StatusPending},
}

// Run inserts the development accounts, skipping any email that already
// exists. Safe to call on every startup in dev mode.
func Run(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DevPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash dev password: %w", err)
	}

	seeded := 0
	for _, p := range devPersonnel {
		res, execErr := db.ExecContext(ctx, `
			INSERT INTO personnel (first_name, last_name, email, password_hash, role_id, account_status)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT DO NOTHING`,
			p.FirstName, p.LastName, p.Email, string(hash), int(p.Role), p.Status)
		if execErr != nil {
			return fmt.Errorf("seed personnel %s: %w", p.Email, execErr)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			seeded++
		}
	}

	for _, p := range devPatients {
		res, execErr := db.ExecContext(ctx, `
			INSERT INTO patients (first_name, last_name, email, password_hash, account_status)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT DO NOTHING`,
			p.FirstName, p.LastName, p.Email, string(hash), p.Status)
		if execErr != nil {
			return fmt.Errorf("seed patient %s: %w", p.Email, execErr)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			seeded++
		}
	}

	logger.InfoContext(ctx, "dev seed complete", "accounts_inserted", seeded)
	return nil
}
