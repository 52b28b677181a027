package models

import "errors"

// Sentinel errors shared by repositories and handlers. Repositories translate
// driver-level failures (pgx.ErrNoRows, unique constraint violations) into
// these so handlers can map them to HTTP statuses with errors.Is.
var (
	ErrNotFound              = errors.New("not found")
	ErrEmailTaken            = errors.New("email already registered")
	ErrDuplicateRegistration = errors.New("already registered for this event")
)
