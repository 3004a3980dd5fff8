package core

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// ExportResult summarizes one export merge.
type ExportResult struct {
	Path   string `json:"path"`
	Merged int    `json:"merged"`
	Echoed int    `json:"echoed"`
}

// ExportMerge re-reads sourcePath and writes outputDir/<name>.bom.csv, where
// name is the source file name including its extension. The output is a
// header of mapped labels followed by one line per data line of the source.
// Lines whose part number is stored are rebuilt from the stored record; every
// other line is copied unchanged. The output file is overwritten.
func ExportMerge(ctx context.Context, mapping ColumnMapping, sep, sourcePath, outputDir string, store *PartStore) (string, error) {
	res, err := exportMerge(ctx, mapping, sep, sourcePath, outputDir, store)
	if err != nil {
		return "", err
	}
	return res.Path, nil
}

func exportMerge(ctx context.Context, mapping ColumnMapping, sep, sourcePath, outputDir string, store *PartStore) (ExportResult, error) {
	if err := mapping.Validate(); err != nil {
		return ExportResult{}, &ConfigError{Err: err}
	}
	if sep == "" {
		sep = ","
	}

	f, err := os.Open(sourcePath)
	if err != nil {
		return ExportResult{}, &FileError{Op: "open", Path: sourcePath, Err: err}
	}
	defer f.Close()

	res := ExportResult{Path: exportPath(sourcePath, outputDir)}

	var (
		out        bytes.Buffer
		terminator = "\n"
		wroteHead  bool
		mergeErr   error
	)
	writeHeader := func() {
		if !wroteHead {
			out.WriteString(mapping.header(sep))
			out.WriteString(terminator)
			wroteHead = true
		}
	}

	err = eachLine(NewBOMSkippingReader(f), func(l sourceLine) error {
		if l.Terminator != "" {
			terminator = l.Terminator
		}
		writeHeader()

		if l.Number <= mapping.SkippedRowCount || l.blank() {
			return nil
		}

		line, merged, err := mergeLine(ctx, mapping, sep, l.Text, store)
		if err != nil {
			mergeErr = fmt.Errorf("%s:%d: %w", sourcePath, l.Number, err)
			return mergeErr
		}
		if merged {
			res.Merged++
		} else {
			res.Echoed++
		}
		out.WriteString(line)
		out.WriteString(terminator)
		return nil
	})
	if mergeErr != nil {
		return ExportResult{}, mergeErr
	}
	if err != nil {
		return ExportResult{}, &FileError{Op: "read", Path: sourcePath, Err: err}
	}
	writeHeader()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return ExportResult{}, &FileError{Op: "create directory", Path: outputDir, Err: err}
	}
	if err := writeFileAtomic(res.Path, &out); err != nil {
		return ExportResult{}, &FileError{Op: "write", Path: res.Path, Err: err}
	}
	return res, nil
}

// exportPath names the merged copy of sourcePath: board.csv becomes
// board.csv.bom.csv.
func exportPath(sourcePath, outputDir string) string {
	return filepath.Join(outputDir, filepath.Base(sourcePath)+".bom.csv")
}

// mergeLine rebuilds text from the stored record for its part number.
// merged is false when the line is echoed unchanged.
func mergeLine(ctx context.Context, mapping ColumnMapping, sep, text string, store *PartStore) (string, bool, error) {
	fields := splitLine(text, sep)

	pn, err := field(fields, "partNumber", mapping.PartNumberColumn)
	if err != nil {
		return "", false, err
	}
	// Import never stores a key that is not valid UTF-8.
	if pn == "" || !utf8.ValidString(pn) {
		return text, false, nil
	}

	part, ok, err := store.GetPart(ctx, pn)
	if err != nil {
		return "", false, err
	}
	if !ok {
		return text, false, nil
	}

	drawingRef, err := field(fields, "drawingReference", mapping.DrawingReferenceColumn)
	if err != nil {
		return "", false, err
	}

	values := map[string]string{
		"drawingReference":  drawingRef,
		"partNumber":        part.PartNumber,
		"deviceType":        part.DeviceType,
		"deviceName":        part.DeviceName,
		"value":             part.Value,
		"positiveTolerance": part.PositiveTolerance,
		"negativeTolerance": part.NegativeTolerance,
		"caseName":          part.CaseName,
		"caseIdentifier":    part.CaseIdentifier,
	}

	cols := mapping.byPosition()
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = values[c.Field]
	}
	return strings.Join(out, sep), true, nil
}

// byPosition returns the mapped columns ordered by column index. Unmapped
// fields are left out.
func (m ColumnMapping) byPosition() []mappedColumn {
	var cols []mappedColumn
	for _, c := range m.columns() {
		if c.Column > 0 {
			cols = append(cols, c)
		}
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].Column < cols[j].Column })
	return cols
}

// header returns the export header line for m.
func (m ColumnMapping) header(sep string) string {
	cols := m.byPosition()
	labels := make([]string, len(cols))
	for i, c := range cols {
		labels[i] = c.Label
	}
	return strings.Join(labels, sep)
}
