package core

import (
	"context"
	"fmt"
	"strings"
)

// QueryByPatterns returns every part whose part number contains at least one
// of patterns, ordered by part number. Matching is case-sensitive. An empty
// pattern matches every part; no patterns match nothing.
func (s *PartStore) QueryByPatterns(ctx context.Context, patterns []string) ([]PartRecord, error) {
	if len(patterns) == 0 {
		return []PartRecord{}, nil
	}

	// instr is used over LIKE: sqlite LIKE folds ASCII case.
	clauses := make([]string, len(patterns))
	args := make([]any, 0, 2*len(patterns))
	for i, p := range patterns {
		clauses[i] = "(? = '' OR instr(partNumber, ?) > 0)"
		args = append(args, p, p)
	}
	query := selectParts + " WHERE " + strings.Join(clauses, " OR ") + " ORDER BY partNumber"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query parts: %w", err)
	}
	defer rows.Close()

	parts := []PartRecord{}
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		parts = append(parts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parts: %w", err)
	}
	return parts, nil
}
