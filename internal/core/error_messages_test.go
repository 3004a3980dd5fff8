package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:     "config error",
			err:      &ConfigError{Path: "m.json", Err: ErrNoPartNumberColumn},
			wantCode: "CFG001",
		},
		{
			name:     "import error",
			err:      &ImportError{File: "a.csv", Line: 3, Err: errors.New("insert: boom")},
			wantCode: "IMP001",
		},
		{
			name:     "column range inside import error",
			err:      &ImportError{File: "a.csv", Line: 3, Err: &ColumnRangeError{Field: "value", Column: 5, Fields: 2}},
			wantCode: "IMP002",
		},
		{
			name:     "invalid part number inside import error",
			err:      &ImportError{File: "a.csv", Line: 1, Err: fmt.Errorf("%w: %q", ErrInvalidPartNumber, "R\xff1")},
			wantCode: "IMP003",
		},
		{
			name:     "key mismatch",
			err:      &KeyMismatchError{Left: "R1", Right: "R2"},
			wantCode: "KEY001",
		},
		{
			name:     "lookup error wrapped",
			err:      fmt.Errorf("save: %w", &LookupError{PartNumber: "R1"}),
			wantCode: "LKP001",
		},
		{
			name:     "file error",
			err:      &FileError{Op: "open", Path: "x.csv", Err: errors.New("permission denied")},
			wantCode: "FILE001",
		},
		{
			name:     "operation in progress",
			err:      ErrOperationInProgress,
			wantCode: "OPS001",
		},
		{
			name:     "restore not confirmed",
			err:      ErrRestoreNotConfirmed,
			wantCode: "OPS002",
		},
		{
			name:     "database locked",
			err:      errors.New("database is locked (5) (SQLITE_BUSY)"),
			wantCode: "DB001",
		},
		{
			name:     "constraint",
			err:      errors.New("NOT NULL constraint failed: parts.partNumber"),
			wantCode: "DB002",
		},
		{
			name:     "deadline",
			err:      fmt.Errorf("query parts: %w", context.DeadlineExceeded),
			wantCode: "DB005",
		},
		{
			name:     "unknown error returns default",
			err:      errors.New("some random internal error"),
			wantCode: "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrOperationInProgress)

	expected := "Another operation is in progress (Code: OPS001). Wait for the running import, update or restore to finish"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"typed error is user facing", &LookupError{PartNumber: "R1"}, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := &FileError{Op: "open", Path: "x", Err: errors.New("nope")}
		userErr := NewUserError(techErr)

		if userErr.Error() != "A file could not be read or written" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, techErr) {
			t.Error("Unwrap() should return original error")
		}
	})
}
