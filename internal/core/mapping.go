package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ColumnMapping describes which 1-based column of a delimited line holds each
// part attribute, and how many leading rows of a file are skipped.
// A column value of 0 leaves the attribute unmapped.
type ColumnMapping struct {
	PartNumberColumn        int `json:"partNumberColumn"`
	DeviceTypeColumn        int `json:"deviceTypeColumn"`
	DeviceNameColumn        int `json:"deviceNameColumn"`
	ValueColumn             int `json:"valueColumn"`
	PositiveToleranceColumn int `json:"positiveToleranceColumn"`
	NegativeToleranceColumn int `json:"negativeToleranceColumn"`
	CaseColumn              int `json:"caseColumn"`
	CaseIdentifierColumn    int `json:"caseIdentifierColumn"`
	DrawingReferenceColumn  int `json:"drawingReferenceColumn"`
	SkippedRowCount         int `json:"skippedRowCount"`
}

// DefaultMapping returns the layout written when no mapping document exists.
func DefaultMapping() ColumnMapping {
	return ColumnMapping{
		DrawingReferenceColumn:  1,
		PartNumberColumn:        2,
		DeviceTypeColumn:        3,
		DeviceNameColumn:        4,
		ValueColumn:             5,
		PositiveToleranceColumn: 6,
		NegativeToleranceColumn: 7,
		CaseColumn:              8,
		CaseIdentifierColumn:    9,
		SkippedRowCount:         1,
	}
}

// mappedColumn pairs a mapping field with its export header label.
type mappedColumn struct {
	Field  string
	Label  string
	Column int
}

// columns lists every mapping field in export header order.
func (m ColumnMapping) columns() []mappedColumn {
	return []mappedColumn{
		{"drawingReference", "Drawing Reference", m.DrawingReferenceColumn},
		{"partNumber", "Part Number", m.PartNumberColumn},
		{"deviceType", "Device Type", m.DeviceTypeColumn},
		{"deviceName", "Device Name", m.DeviceNameColumn},
		{"value", "Value", m.ValueColumn},
		{"positiveTolerance", "Tol+", m.PositiveToleranceColumn},
		{"negativeTolerance", "Tol-", m.NegativeToleranceColumn},
		{"caseName", "Case", m.CaseColumn},
		{"caseIdentifier", "CaseIdentifier", m.CaseIdentifierColumn},
	}
}

// MaxColumn returns the highest mapped column index.
func (m ColumnMapping) MaxColumn() int {
	highest := 0
	for _, c := range m.columns() {
		if c.Column > highest {
			highest = c.Column
		}
	}
	return highest
}

// Validate checks that the part number column is mapped, no column is
// negative, mapped columns are distinct, and the skipped row count is not
// negative. All problems are reported together.
func (m ColumnMapping) Validate() error {
	var errs []error

	if m.PartNumberColumn == 0 {
		errs = append(errs, ErrNoPartNumberColumn)
	}
	if m.SkippedRowCount < 0 {
		errs = append(errs, fmt.Errorf("skippedRowCount (%d) must be non-negative", m.SkippedRowCount))
	}

	seen := make(map[int]string)
	for _, c := range m.columns() {
		if c.Column < 0 {
			errs = append(errs, fmt.Errorf("%sColumn (%d) must be non-negative", c.Field, c.Column))
			continue
		}
		if c.Column == 0 {
			continue
		}
		if other, dup := seen[c.Column]; dup {
			errs = append(errs, fmt.Errorf("%sColumn and %sColumn both use column %d", other, c.Field, c.Column))
			continue
		}
		seen[c.Column] = c.Field
	}

	return errors.Join(errs...)
}

// field returns the trimmed value of a 1-based column, or "" when the
// column is unmapped.
func field(fields []string, name string, column int) (string, error) {
	if column == 0 {
		return "", nil
	}
	if column > len(fields) {
		return "", &ColumnRangeError{Field: name, Column: column, Fields: len(fields)}
	}
	return fields[column-1], nil
}

// splitLine splits a line on sep and trims surrounding whitespace from
// every field.
func splitLine(line, sep string) []string {
	fields := strings.Split(line, sep)
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

// LoadMapping reads the mapping document at path. When the document does not
// exist the defaults are written there and returned. Malformed or invalid
// documents yield a *ConfigError.
func LoadMapping(path string) (ColumnMapping, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		m := DefaultMapping()
		if err := SaveMapping(path, m); err != nil {
			return ColumnMapping{}, err
		}
		return m, nil
	}
	if err != nil {
		return ColumnMapping{}, &ConfigError{Path: path, Err: err}
	}

	// Missing keys keep their default values.
	m := DefaultMapping()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return ColumnMapping{}, &ConfigError{Path: path, Err: fmt.Errorf("decode: %w", err)}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ColumnMapping{}, &ConfigError{Path: path, Err: errors.New("decode: trailing data after mapping object")}
	}
	if err := m.Validate(); err != nil {
		return ColumnMapping{}, &ConfigError{Path: path, Err: err}
	}

	return m, nil
}

// SaveMapping validates m and overwrites the document at path with it.
func SaveMapping(path string, m ColumnMapping) error {
	if err := m.Validate(); err != nil {
		return &ConfigError{Path: path, Err: err}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return &ConfigError{Path: path, Err: fmt.Errorf("encode: %w", err)}
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	if err := writeFileAtomic(path, bytes.NewReader(data)); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	return nil
}
