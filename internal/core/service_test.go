package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/JonMunkholm/partlib/internal/config"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		Storage: config.StorageConfig{
			DataDir:      dir,
			DatabaseFile: "part_library.db",
			MappingFile:  "part_column_config.json",
		},
		CSV: config.CSVConfig{FieldSeparator: ","},
	}

	svc, err := NewService(cfg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	t.Cleanup(func() { svc.Close() })

	if err := svc.InitializeSchema(context.Background()); err != nil {
		t.Fatalf("InitializeSchema: %v", err)
	}
	if err := svc.SaveMapping(context.Background(), simpleMapping()); err != nil {
		t.Fatalf("SaveMapping: %v", err)
	}
	return svc, dir
}

func TestService_ImportBacksUpAndRestores(t *testing.T) {
	ctx := context.Background()
	svc, dir := newTestService(t)
	src := writeTestFile(t, dir, "bom.csv", "R1,10k,resistor\nR2,22k,resistor\n")

	res, err := svc.Import(ctx, []string{src})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Inserted != 2 || res.Files != 1 || res.ImportID == "" {
		t.Errorf("ImportResult = %+v", res)
	}
	if _, err := os.Stat(filepath.Join(dir, "backup", "part_library.db")); err != nil {
		t.Fatalf("backup not written: %v", err)
	}

	outcome, err := svc.Restore(ctx, true)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if outcome != RestoreRestored {
		t.Errorf("outcome = %v, want restored", outcome)
	}

	rs, err := svc.Query(ctx, []string{""})
	if err != nil {
		t.Fatalf("Query after restore: %v", err)
	}
	if len(rs.Working) != 0 {
		t.Errorf("parts after restore = %d, want 0", len(rs.Working))
	}

	outcome, err = svc.Restore(ctx, true)
	if err != nil {
		t.Fatalf("second Restore: %v", err)
	}
	if outcome != RestoreAlreadyUpToDate {
		t.Errorf("second outcome = %v, want already up to date", outcome)
	}
}

func TestService_RestoreRequiresConfirmation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Restore(context.Background(), false)
	if !errors.Is(err, ErrRestoreNotConfirmed) {
		t.Errorf("err = %v, want ErrRestoreNotConfirmed", err)
	}
}

func TestService_RestoreWithoutBackup(t *testing.T) {
	svc, _ := newTestService(t)

	outcome, err := svc.Restore(context.Background(), true)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if outcome != RestoreNoBackup {
		t.Errorf("outcome = %v, want no backup", outcome)
	}
}

func TestService_GateRejectsConcurrentMutation(t *testing.T) {
	ctx := context.Background()
	svc, dir := newTestService(t)
	src := writeTestFile(t, dir, "bom.csv", "R1,10k,resistor\n")

	if err := svc.gate.TryEnter("import"); err != nil {
		t.Fatal(err)
	}
	defer svc.gate.Leave()

	if _, err := svc.Import(ctx, []string{src}); !errors.Is(err, ErrOperationInProgress) {
		t.Errorf("Import = %v, want ErrOperationInProgress", err)
	}
	if _, err := svc.ApplyUpdates(ctx, nil, nil); !errors.Is(err, ErrOperationInProgress) {
		t.Errorf("ApplyUpdates = %v, want ErrOperationInProgress", err)
	}
	if _, err := svc.Restore(ctx, true); !errors.Is(err, ErrOperationInProgress) {
		t.Errorf("Restore = %v, want ErrOperationInProgress", err)
	}

	// Reads are not gated.
	if _, err := svc.Query(ctx, []string{"R"}); err != nil {
		t.Errorf("Query while gated: %v", err)
	}
}

func TestService_SaveEdits(t *testing.T) {
	ctx := context.Background()
	svc, dir := newTestService(t)
	src := writeTestFile(t, dir, "bom.csv", "R1,10k,resistor\n")
	if _, err := svc.Import(ctx, []string{src}); err != nil {
		t.Fatalf("Import: %v", err)
	}

	rs, err := svc.Query(ctx, []string{"R1"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if err := rs.Edit("R1", func(p *PartRecord) { p.DeviceName = "RC0603FR" }); err != nil {
		t.Fatalf("Edit: %v", err)
	}

	n, err := svc.Save(ctx, rs)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if n != 1 {
		t.Errorf("updated = %d, want 1", n)
	}

	again, _ := svc.Query(ctx, []string{"R1"})
	if again.Working[0].DeviceName != "RC0603FR" {
		t.Errorf("DeviceName = %q, want %q", again.Working[0].DeviceName, "RC0603FR")
	}
}

func TestService_MappingRecovery(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", "{not json"},
		{"trailing garbage", `{"partNumberColumn":2} this is not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, dir := newTestService(t)
			writeTestFile(t, dir, "part_column_config.json", tt.content)

			m, err := svc.Mapping(context.Background())
			if err != nil {
				t.Fatalf("Mapping: %v", err)
			}
			if m != DefaultMapping() {
				t.Errorf("got %+v, want defaults", m)
			}

			reloaded, err := LoadMapping(filepath.Join(dir, "part_column_config.json"))
			if err != nil {
				t.Fatalf("defaults not persisted: %v", err)
			}
			if reloaded != DefaultMapping() {
				t.Errorf("persisted %+v, want defaults", reloaded)
			}
		})
	}
}

func TestService_PreviewAndExport(t *testing.T) {
	ctx := context.Background()
	svc, dir := newTestService(t)
	src := writeTestFile(t, dir, "board.csv", "R1,10k,resistor\n")

	p, err := svc.Preview(src)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if p.Line != "R1,10k,resistor" || p.Marked != "R1(1),10k(2),resistor(3)" {
		t.Errorf("Preview = %+v", p)
	}

	if _, err := svc.Import(ctx, []string{src}); err != nil {
		t.Fatalf("Import: %v", err)
	}
	res, err := svc.Export(ctx, src, "")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Path != filepath.Join(dir, "export", "board.csv.bom.csv") {
		t.Errorf("Path = %q", res.Path)
	}
	if res.Merged != 1 {
		t.Errorf("Merged = %d, want 1", res.Merged)
	}

	st, err := svc.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Parts != 1 || !st.HasBackup {
		t.Errorf("Status = %+v", st)
	}
}
