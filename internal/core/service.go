package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/JonMunkholm/partlib/internal/config"
	"github.com/JonMunkholm/partlib/internal/logging"
	"github.com/google/uuid"
)

// Service binds the part library engine to configured file locations.
type Service struct {
	dbPath      string
	backupPath  string
	mappingPath string
	exportDir   string
	sep         string

	gate *OperationGate

	// mu guards store. Restore takes it exclusively to swap the file.
	mu    sync.RWMutex
	store *PartStore
}

// NewService opens the store described by cfg. The schema is not touched;
// call InitializeSchema.
func NewService(cfg *config.Config) (*Service, error) {
	s := &Service{
		dbPath:      cfg.Storage.DatabasePath(),
		backupPath:  cfg.Storage.BackupPath(),
		mappingPath: cfg.Storage.MappingPath(),
		exportDir:   cfg.ExportPath(),
		sep:         cfg.CSV.Separator(),
		gate:        NewOperationGate(),
	}

	store, err := OpenStore(s.dbPath)
	if err != nil {
		return nil, err
	}
	s.store = store
	return s, nil
}

// Close releases the store. Safe to call once.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Close()
}

// Separator returns the configured field separator.
func (s *Service) Separator() string {
	return s.sep
}

// ExportDir returns the default export directory.
func (s *Service) ExportDir() string {
	return s.exportDir
}

// WaitIdle blocks until no mutating operation is running.
func (s *Service) WaitIdle(ctx context.Context) error {
	return s.gate.WaitIdle(ctx)
}

// InitializeSchema creates the parts table if needed.
func (s *Service) InitializeSchema(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.InitializeSchema(ctx)
}

// Status reports the library size, file locations and gate state.
func (s *Service) Status(ctx context.Context) (LibraryStatus, error) {
	s.mu.RLock()
	n, err := s.store.Count(ctx)
	s.mu.RUnlock()
	if err != nil {
		return LibraryStatus{}, err
	}

	_, statErr := os.Stat(s.backupPath)
	return LibraryStatus{
		Parts:      n,
		Database:   s.dbPath,
		Backup:     s.backupPath,
		HasBackup:  statErr == nil,
		Operation:  s.gate.Status(),
		Separator:  s.sep,
		MappingDoc: s.mappingPath,
	}, nil
}

// Mapping loads the column mapping. A document that cannot be read or is
// invalid is replaced with the defaults, which are returned.
func (s *Service) Mapping(ctx context.Context) (ColumnMapping, error) {
	m, err := LoadMapping(s.mappingPath)
	if err == nil {
		return m, nil
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		return ColumnMapping{}, err
	}

	logging.FromContext(ctx).Warn("column mapping unusable, restoring defaults",
		"path", s.mappingPath,
		"error", err,
	)
	m = DefaultMapping()
	if err := SaveMapping(s.mappingPath, m); err != nil {
		return ColumnMapping{}, err
	}
	return m, nil
}

// SaveMapping validates and persists m.
func (s *Service) SaveMapping(ctx context.Context, m ColumnMapping) error {
	if err := SaveMapping(s.mappingPath, m); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("column mapping saved", "path", s.mappingPath)
	return nil
}

// Preview returns the first line of path and its marked columns.
func (s *Service) Preview(path string) (Preview, error) {
	line, err := ReadFirstDataLine(path)
	if err != nil {
		return Preview{}, err
	}
	return Preview{Line: line, Marked: MarkColumns(line, s.sep)}, nil
}

// Import backs up the store and imports paths in one transaction.
func (s *Service) Import(ctx context.Context, paths []string) (ImportResult, error) {
	if err := s.gate.TryEnter("import"); err != nil {
		return ImportResult{}, err
	}
	defer s.gate.Leave()

	result := ImportResult{
		ImportID: uuid.New().String(),
		Files:    len(paths),
	}
	logger := logging.WithFields(ctx,
		"import_id", result.ImportID,
		"files", len(paths),
	)
	start := time.Now()

	mapping, err := s.Mapping(ctx)
	if err != nil {
		return result, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := BackupBeforeImport(s.dbPath, s.backupPath); err != nil {
		logger.Error("backup before import failed", "error", err)
		return result, fmt.Errorf("backup before import: %w", err)
	}

	logger.Info("import started")
	inserted, err := s.store.ImportFrom(ctx, mapping, s.sep, paths)
	result.Duration = time.Since(start)
	if err != nil {
		logger.Error("import failed", "error", err, "duration_ms", result.Duration.Milliseconds())
		return result, err
	}

	result.Inserted = inserted
	logger.Info("import completed",
		"inserted", inserted,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// Query returns a ResultSet for the parts matching any of patterns.
func (s *Service) Query(ctx context.Context, patterns []string) (*ResultSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parts, err := s.store.QueryByPatterns(ctx, patterns)
	if err != nil {
		return nil, err
	}
	return NewResultSet(parts), nil
}

// ApplyUpdates writes back the working records that differ from original.
func (s *Service) ApplyUpdates(ctx context.Context, original, working []PartRecord) (int, error) {
	return s.Save(ctx, &ResultSet{Original: original, Working: working})
}

// Save writes back the edits held in rs and refreshes its snapshot.
func (s *Service) Save(ctx context.Context, rs *ResultSet) (int, error) {
	if err := s.gate.TryEnter("update"); err != nil {
		return 0, err
	}
	defer s.gate.Leave()

	s.mu.RLock()
	defer s.mu.RUnlock()

	updated, err := rs.Save(ctx, s.store)
	if err != nil {
		logging.FromContext(ctx).Error("update failed", "error", err)
		return 0, err
	}
	logging.FromContext(ctx).Info("parts updated", "updated", updated)
	return updated, nil
}

// Export merges sourcePath with the stored parts. An empty outputDir uses
// the configured export directory.
func (s *Service) Export(ctx context.Context, sourcePath, outputDir string) (ExportResult, error) {
	if outputDir == "" {
		outputDir = s.exportDir
	}

	mapping, err := s.Mapping(ctx)
	if err != nil {
		return ExportResult{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	res, err := exportMerge(ctx, mapping, s.sep, sourcePath, outputDir, s.store)
	if err != nil {
		logging.FromContext(ctx).Error("export failed", "file", sourcePath, "error", err)
		return ExportResult{}, err
	}
	logging.FromContext(ctx).Info("export completed",
		"file", sourcePath,
		"output", res.Path,
		"merged", res.Merged,
		"echoed", res.Echoed,
	)
	return res, nil
}

// Restore replaces the store with the backup. It refuses to run unless
// confirmed is true. The store is closed around the file swap.
func (s *Service) Restore(ctx context.Context, confirmed bool) (RestoreOutcome, error) {
	if !confirmed {
		return 0, ErrRestoreNotConfirmed
	}
	if err := s.gate.TryEnter("restore"); err != nil {
		return 0, err
	}
	defer s.gate.Leave()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Close(); err != nil {
		return 0, fmt.Errorf("close store: %w", err)
	}

	outcome, restoreErr := Restore(s.dbPath, s.backupPath)

	store, err := OpenStore(s.dbPath)
	if err != nil {
		return 0, errors.Join(restoreErr, err)
	}
	s.store = store

	if restoreErr != nil {
		logging.FromContext(ctx).Error("restore failed", "error", restoreErr)
		return 0, restoreErr
	}
	logging.FromContext(ctx).Info("restore finished", "outcome", outcome.String())
	return outcome, nil
}
