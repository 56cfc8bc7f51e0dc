package auth

// Package auth contains domain-level types for clinic identity and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Role identifies one of the six fixed account kinds. The integer codes are
// shared with the identity tables (personnel.role_id) and must never change.
type Role int

const (
	RoleUnknown      Role = 0
	RoleDentist      Role = 1
	RoleReceptionist Role = 2
	RoleCashier      Role = 3
	RoleInventory    Role = 4
	RoleAdmin        Role = 5
	RolePatient      Role = 6
)

// ParseRole converts a base-10 role code into a Role. Any value outside the
// six known codes yields an explicit error rather than a silently-accepted
// invalid role.
func ParseRole(s string) (Role, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return RoleUnknown, fmt.Errorf("parse role %q: %w", s, err)
	}
	r := Role(n)
	if !r.Valid() {
		return RoleUnknown, fmt.Errorf("unknown role code %d", n)
	}
	return r, nil
}

// Valid reports whether the role is one of the six known codes.
func (r Role) Valid() bool {
	return r >= RoleDentist && r <= RolePatient
}

// IsPatient reports whether the role is the patient role. Patients are
// validated against a different identity table than personnel.
func (r Role) IsPatient() bool { return r == RolePatient }

// AccountStatus values stored in the identity tables.
const (
	StatusActive    = "Active"
	StatusSuspended = "Suspended"
	StatusInactive  = "Inactive"
	StatusPending   = "Pending"
)

// User is the validated identity for the current session.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// FullName joins first and last name the way the identity tables store them.
func FullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

// SessionData is the serialized, all-strings form of a session as persisted
// in the session store. Parsing back into a User is an explicit fallible step.
type SessionData struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	UserRole  string `json:"user_role"`
	UserEmail string `json:"user_email"`
}

// EncodeUser converts a validated User into its storage form.
func EncodeUser(u User) SessionData {
	return SessionData{
		UserID:    strconv.Itoa(u.ID),
		UserName:  u.Name,
		UserRole:  strconv.Itoa(int(u.Role)),
		UserEmail: u.Email,
	}
}

// Complete reports whether the minimum session fields are present.
// Email is optional; personnel records may lack one.
func (d SessionData) Complete() bool {
	return d.UserID != "" && d.UserName != "" && d.UserRole != ""
}

// ToUser parses the stored string fields into a typed User. It does not check
// that the role is one of the six known codes; the identity validator and the
// route registry both fail closed on unknown roles.
func (d SessionData) ToUser() (User, error) {
	id, err := strconv.Atoi(d.UserID)
	if err != nil {
		return User{}, fmt.Errorf("parse user_id %q: %w", d.UserID, err)
	}
	roleCode, err := strconv.Atoi(d.UserRole)
	if err != nil {
		return User{}, fmt.Errorf("parse user_role %q: %w", d.UserRole, err)
	}
	return User{
		ID:    id,
		Name:  d.UserName,
		Email: d.UserEmail,
		Role:  Role(roleCode),
	}, nil
}

// Session is the server-side record persisted for a signed-in account.
// ID is an opaque session identifier (random URL-safe string).
type Session struct {
	ID        string      `json:"id"`
	Data      SessionData `json:"data"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// User parses the session's stored fields. See SessionData.ToUser.
func (s Session) User() (User, error) { return s.Data.ToUser() }
