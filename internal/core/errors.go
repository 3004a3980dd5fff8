package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions the shells branch on.
var (
	// ErrOperationInProgress is returned when another import, update or
	// restore holds the operation gate.
	ErrOperationInProgress = errors.New("operation in progress")

	// ErrRestoreNotConfirmed is returned when Restore is called without
	// explicit confirmation from the user.
	ErrRestoreNotConfirmed = errors.New("restore not confirmed")

	// ErrNoPartNumberColumn is returned by ColumnMapping.Validate when the
	// part number column is unmapped.
	ErrNoPartNumberColumn = errors.New("part number column must be mapped")

	// ErrInvalidPartNumber is returned when an imported part number is not
	// valid UTF-8. Cleaning it would make distinct keys collide.
	ErrInvalidPartNumber = errors.New("part number is not valid UTF-8")
)

// ConfigError reports a column mapping document that could not be read,
// decoded or validated.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("column mapping: %v", e.Err)
	}
	return fmt.Sprintf("column mapping %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ImportError reports the failure that aborted an import. The whole
// transaction has been rolled back when this error is returned.
type ImportError struct {
	File string
	Line int // 1-indexed, 0 when the failure is not tied to a line
	Err  error
}

func (e *ImportError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("import failed, rolled back: %s:%d: %v", e.File, e.Line, e.Err)
	case e.File != "":
		return fmt.Sprintf("import failed, rolled back: %s: %v", e.File, e.Err)
	default:
		return fmt.Sprintf("import failed, rolled back: %v", e.Err)
	}
}

func (e *ImportError) Unwrap() error { return e.Err }

// KeyMismatchError reports a comparison between records with different part
// numbers. It indicates a programming error in the caller.
type KeyMismatchError struct {
	Left  string
	Right string
}

func (e *KeyMismatchError) Error() string {
	return fmt.Sprintf("part number mismatch: %q != %q", e.Left, e.Right)
}

// LookupError reports a part number from the original result set that is
// missing from the working set.
type LookupError struct {
	PartNumber string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("part %q missing from working results", e.PartNumber)
}

// FileError reports an unreadable source or an unwritable destination.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// ColumnRangeError reports a mapped column beyond the end of a parsed line.
type ColumnRangeError struct {
	Field  string
	Column int
	Fields int
}

func (e *ColumnRangeError) Error() string {
	return fmt.Sprintf("column out of range: %s column %d, line has %d fields", e.Field, e.Column, e.Fields)
}
