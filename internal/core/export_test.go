package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func exportMapping() ColumnMapping {
	return ColumnMapping{
		DrawingReferenceColumn: 1,
		PartNumberColumn:       2,
		ValueColumn:            3,
		CaseColumn:             4,
		SkippedRowCount:        1,
	}
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return string(data)
}

func TestExportMerge(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	dir := t.TempDir()

	lib := writeTestFile(t, dir, "library.csv", "Ref,Part,Value,Case\nX,R1,10k,0603\n")
	mustImport(t, store, exportMapping(), lib)

	source := writeTestFile(t, dir, "board.csv",
		"Ref,Part,Value,Case\n"+
			"R7, R1 ,old,old\n"+
			"U1,  NOPE ,x;y , z\n"+
			"\n"+
			"TP1,,,\n")
	outDir := filepath.Join(dir, "out")

	path, err := ExportMerge(ctx, exportMapping(), ",", source, outDir, store)
	if err != nil {
		t.Fatalf("ExportMerge: %v", err)
	}
	if path != filepath.Join(outDir, "board.csv.bom.csv") {
		t.Errorf("path = %q", path)
	}

	want := "Drawing Reference,Part Number,Value,Case\n" +
		"R7,R1,10k,0603\n" +
		"U1,  NOPE ,x;y , z\n" +
		"TP1,,,\n"
	if got := readOutput(t, path); got != want {
		t.Errorf("output =\n%q\nwant\n%q", got, want)
	}
}

func TestExportMerge_UnmatchedLineByteForByte(t *testing.T) {
	store := newTestStore(t)
	dir := t.TempDir()
	line := "C9,\tCAP-X ,  100n\t, 0402  "
	source := writeTestFile(t, dir, "board.csv", "header\r\n"+line+"\r\n")

	res, err := exportMerge(context.Background(), exportMapping(), ",", source, dir, store)
	if err != nil {
		t.Fatalf("exportMerge: %v", err)
	}
	if res.Echoed != 1 || res.Merged != 0 {
		t.Errorf("result = %+v, want 1 echoed", res)
	}

	want := "Drawing Reference,Part Number,Value,Case\r\n" + line + "\r\n"
	if got := readOutput(t, res.Path); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestExportMerge_CarriageReturnTerminators(t *testing.T) {
	store := newTestStore(t)
	dir := t.TempDir()
	source := writeTestFile(t, dir, "mac.csv", "Ref,Part,Value,Case\rU1,NOPE,x,y\rU2,ALSO,x,y\r")

	res, err := exportMerge(context.Background(), exportMapping(), ",", source, dir, store)
	if err != nil {
		t.Fatalf("exportMerge: %v", err)
	}
	want := "Drawing Reference,Part Number,Value,Case\rU1,NOPE,x,y\rU2,ALSO,x,y\r"
	if got := readOutput(t, res.Path); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestExportMerge_ColumnOrderAndOverwrite(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	dir := t.TempDir()

	// Part number last, value first: header and lines follow column order.
	m := ColumnMapping{ValueColumn: 1, DeviceTypeColumn: 2, PartNumberColumn: 3}
	lib := writeTestFile(t, dir, "lib.csv", "10k,resistor,R1\n")
	mustImport(t, store, m, lib)

	source := writeTestFile(t, dir, "board.csv", "?,?,R1\n")
	outDir := filepath.Join(dir, "out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, outDir, "board.csv.bom.csv", "stale content that is longer than the new output\n")

	path, err := ExportMerge(ctx, m, ",", source, outDir, store)
	if err != nil {
		t.Fatalf("ExportMerge: %v", err)
	}

	want := "Value,Device Type,Part Number\n10k,resistor,R1\n"
	if got := readOutput(t, path); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestExportMerge_AfterImportOfSameFile(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	dir := t.TempDir()

	// Non-ASCII key plus an invalid byte in an attribute value.
	source := writeTestFile(t, dir, "board.csv",
		"Ref,Part,Value,Case\n"+
			"R1,Ω-10K,10k\xff,0603\n"+
			"R2,R-22K,22k,0402\n")
	mustImport(t, store, exportMapping(), source)

	res, err := exportMerge(ctx, exportMapping(), ",", source, filepath.Join(dir, "out"), store)
	if err != nil {
		t.Fatalf("exportMerge: %v", err)
	}
	if res.Merged != 2 || res.Echoed != 0 {
		t.Errorf("result = %+v, want every line merged", res)
	}

	want := "Drawing Reference,Part Number,Value,Case\n" +
		"R1,Ω-10K,10k?,0603\n" +
		"R2,R-22K,22k,0402\n"
	if got := readOutput(t, res.Path); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestExportPath(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"/in/board.csv", filepath.Join("out", "board.csv.bom.csv")},
		{"/in/board", filepath.Join("out", "board.bom.csv")},
		{"/in/board.v2.txt", filepath.Join("out", "board.v2.txt.bom.csv")},
	}

	for _, tt := range tests {
		if got := exportPath(tt.source, "out"); got != tt.want {
			t.Errorf("exportPath(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestExportMerge_Errors(t *testing.T) {
	store := newTestStore(t)
	dir := t.TempDir()

	t.Run("missing source", func(t *testing.T) {
		_, err := ExportMerge(context.Background(), exportMapping(), ",", filepath.Join(dir, "none.csv"), dir, store)
		var fe *FileError
		if !errors.As(err, &fe) {
			t.Errorf("err = %v, want *FileError", err)
		}
	})

	t.Run("part number column out of range", func(t *testing.T) {
		source := writeTestFile(t, dir, "short.csv", "header\nonlyone\n")
		_, err := ExportMerge(context.Background(), exportMapping(), ",", source, dir, store)
		var cre *ColumnRangeError
		if !errors.As(err, &cre) {
			t.Errorf("err = %v, want *ColumnRangeError", err)
		}
	})
}
