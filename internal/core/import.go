package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"
)

const insertPart = `
INSERT OR IGNORE INTO parts (
	partNumber, deviceType, deviceName, value,
	positiveTolerance, negativeTolerance, caseName, caseIdentifier
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// ImportFrom reads every file in paths and inserts one part per data line.
// Existing part numbers are left untouched. All files share one transaction:
// any failure rolls everything back and returns an *ImportError. The result
// is the number of rows actually inserted.
func (s *PartStore) ImportFrom(ctx context.Context, mapping ColumnMapping, sep string, paths []string) (int, error) {
	if err := mapping.Validate(); err != nil {
		return 0, &ImportError{Err: &ConfigError{Err: err}}
	}
	if sep == "" {
		sep = ","
	}

	var inserted int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertPart)
		if err != nil {
			return &ImportError{Err: fmt.Errorf("prepare insert: %w", err)}
		}
		defer stmt.Close()

		for _, path := range paths {
			n, err := importFile(ctx, stmt, mapping, sep, path)
			if err != nil {
				return err
			}
			inserted += n
		}
		return nil
	})
	if err != nil {
		var ie *ImportError
		if errors.As(err, &ie) {
			return 0, err
		}
		return 0, &ImportError{Err: err}
	}
	return inserted, nil
}

func importFile(ctx context.Context, stmt *sql.Stmt, mapping ColumnMapping, sep, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &ImportError{File: path, Err: &FileError{Op: "open", Path: path, Err: err}}
	}
	defer f.Close()

	reader := wrapForImport(f)
	inserted := 0

	err = eachLine(reader, func(l sourceLine) error {
		if l.Number <= mapping.SkippedRowCount || l.blank() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return &ImportError{File: path, Line: l.Number, Err: err}
		}

		p, ok, err := parsePart(splitLine(l.Text, sep), mapping)
		if err != nil {
			return &ImportError{File: path, Line: l.Number, Err: err}
		}
		if !ok {
			return nil
		}

		res, err := stmt.ExecContext(ctx,
			p.PartNumber, p.DeviceType, p.DeviceName, p.Value,
			p.PositiveTolerance, p.NegativeTolerance, p.CaseName, p.CaseIdentifier,
		)
		if err != nil {
			return &ImportError{File: path, Line: l.Number, Err: fmt.Errorf("insert: %w", err)}
		}
		n, err := res.RowsAffected()
		if err != nil {
			return &ImportError{File: path, Line: l.Number, Err: fmt.Errorf("rows affected: %w", err)}
		}
		inserted += int(n)
		return nil
	})
	if err != nil {
		var ie *ImportError
		if errors.As(err, &ie) {
			return 0, err
		}
		return 0, &ImportError{File: path, Err: &FileError{Op: "read", Path: path, Err: err}}
	}

	slog.Debug("imported file",
		"file", path,
		"inserted", inserted,
		"bytes", reader.BytesRead,
	)
	return inserted, nil
}

// parsePart builds a record from the fields of one line. ok is false when
// the part number field is empty and the line should be skipped. Attribute
// values have invalid UTF-8 bytes replaced; an invalid part number is an
// error.
func parsePart(fields []string, m ColumnMapping) (p PartRecord, ok bool, err error) {
	if p.PartNumber, err = field(fields, "partNumber", m.PartNumberColumn); err != nil {
		return PartRecord{}, false, err
	}
	if p.PartNumber == "" {
		return PartRecord{}, false, nil
	}
	if !utf8.ValidString(p.PartNumber) {
		return PartRecord{}, false, fmt.Errorf("%w: %q", ErrInvalidPartNumber, p.PartNumber)
	}

	for _, f := range []struct {
		name   string
		column int
		dst    *string
	}{
		{"deviceType", m.DeviceTypeColumn, &p.DeviceType},
		{"deviceName", m.DeviceNameColumn, &p.DeviceName},
		{"value", m.ValueColumn, &p.Value},
		{"positiveTolerance", m.PositiveToleranceColumn, &p.PositiveTolerance},
		{"negativeTolerance", m.NegativeToleranceColumn, &p.NegativeTolerance},
		{"caseName", m.CaseColumn, &p.CaseName},
		{"caseIdentifier", m.CaseIdentifierColumn, &p.CaseIdentifier},
	} {
		v, err := field(fields, f.name, f.column)
		if err != nil {
			return PartRecord{}, false, err
		}
		*f.dst = sanitizeText(v)
	}
	return p, true, nil
}
