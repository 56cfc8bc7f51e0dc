package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// Patient repository sentinels.
	ErrPatientNotFound = errors.New("patient not found")
	ErrEmailTaken      = errors.New("email already registered")

	// Personnel repository sentinels.
	ErrPersonnelNotFound = errors.New("personnel not found")
)
