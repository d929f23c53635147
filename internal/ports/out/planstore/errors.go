package planstore

import "errors"

var (
	// ErrNotFound is returned when no plan matches the id (and owner, for mutations).
	ErrNotFound      = errors.New("plan not found")
	ErrAlreadyExists = errors.New("plan already exists")
)
