package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// newTestStore opens a store with an initialized schema in a temp dir.
func newTestStore(t *testing.T) *PartStore {
	t.Helper()

	store, err := OpenStore(filepath.Join(t.TempDir(), "part_library.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.InitializeSchema(context.Background()); err != nil {
		t.Fatalf("InitializeSchema: %v", err)
	}
	return store
}

// writeTestFile writes content to dir/name and returns the path.
func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// simpleMapping is the three-column layout used across store tests.
func simpleMapping() ColumnMapping {
	return ColumnMapping{
		PartNumberColumn: 1,
		DeviceTypeColumn: 2,
		ValueColumn:      3,
		SkippedRowCount:  0,
	}
}

func mustImport(t *testing.T, store *PartStore, m ColumnMapping, paths ...string) int {
	t.Helper()

	n, err := store.ImportFrom(context.Background(), m, ",", paths)
	if err != nil {
		t.Fatalf("ImportFrom: %v", err)
	}
	return n
}
