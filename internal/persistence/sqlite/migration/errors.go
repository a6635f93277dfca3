package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMigrationFile indicates a file name that does not follow the naming convention.
	ErrInvalidMigrationFile = errors.New("migration: invalid migration file name")
	// ErrDuplicateVersion indicates two files sharing a version number.
	ErrDuplicateVersion = errors.New("migration: duplicate version")
	// ErrEmptyMigration indicates a file without executable statements.
	ErrEmptyMigration = errors.New("migration: no statements")
	// ErrChecksumMismatch indicates an applied file whose contents changed afterwards.
	ErrChecksumMismatch = errors.New("migration: checksum mismatch")
)

// Error wraps a failure with the migration it happened in.
type Error struct {
	Version   int
	Name      string
	Operation string
	Err       error
}

func (e *Error) Error() string {
	if e.Version > 0 {
		return fmt.Sprintf("migration %03d (%s): %s: %v", e.Version, e.Name, e.Operation, e.Err)
	}
	return fmt.Sprintf("migration (%s): %s: %v", e.Name, e.Operation, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(m Migration, operation string, err error) error {
	return &Error{Version: m.Version, Name: m.Name, Operation: operation, Err: err}
}
