package core

import (
	"context"
	"database/sql"
	"fmt"
)

const updatePart = `
UPDATE parts SET
	deviceType = ?,
	deviceName = ?,
	value = ?,
	positiveTolerance = ?,
	negativeTolerance = ?,
	caseName = ?,
	caseIdentifier = ?
WHERE partNumber = ?`

// ApplyUpdates writes back every working record that differs from its
// original. Each original must have a working record with the same part
// number or a *LookupError is returned. All updates share one transaction;
// any failure rolls them all back. The result is the number of rows
// rewritten.
func (s *PartStore) ApplyUpdates(ctx context.Context, original, working []PartRecord) (int, error) {
	byKey := make(map[string]PartRecord, len(working))
	for _, w := range working {
		byKey[w.PartNumber] = w
	}

	var updated int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, o := range original {
			w, ok := byKey[o.PartNumber]
			if !ok {
				return &LookupError{PartNumber: o.PartNumber}
			}
			changed, err := Changed(o, w)
			if err != nil {
				return err
			}
			if !changed {
				continue
			}

			res, err := tx.ExecContext(ctx, updatePart,
				w.DeviceType, w.DeviceName, w.Value,
				w.PositiveTolerance, w.NegativeTolerance, w.CaseName, w.CaseIdentifier,
				w.PartNumber,
			)
			if err != nil {
				return fmt.Errorf("update part %q: %w", w.PartNumber, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			updated += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}
